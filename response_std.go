//go:build stdhttp

package bindlike

import (
	"fmt"
	"net/http"
)

// FetchResponse is the response shape returned by fetch operations in this
// build: the standard library's *http.Response, for applications built around
// net/http types. Build without the `stdhttp` tag to get the native *Response.
type FetchResponse = *http.Response

// adaptResponse converts the raw host response into a *http.Response. The
// conversion is 1:1 — status, headers, and body stream pass through — but the
// standard shape is stricter than the host's, so a response it cannot
// represent fails with an *IncompatibleResponseError.
func adaptResponse(raw *HostResponse) (FetchResponse, error) {
	if raw == nil {
		return nil, &IncompatibleResponseError{Reason: "host returned no response"}
	}
	if raw.StatusCode < 100 || raw.StatusCode > 599 {
		return nil, &IncompatibleResponseError{
			Reason: fmt.Sprintf("status code %d outside the HTTP range", raw.StatusCode),
		}
	}
	for name := range raw.Header {
		if !validHeaderName(name) {
			return nil, &IncompatibleResponseError{
				Reason: fmt.Sprintf("header name %q is not a valid HTTP field name", name),
			}
		}
	}
	status := raw.Status
	if status == "" {
		status = fmt.Sprintf("%d %s", raw.StatusCode, http.StatusText(raw.StatusCode))
	}
	body := raw.Body
	if body == nil {
		body = http.NoBody
	}
	return &http.Response{
		StatusCode: raw.StatusCode,
		Status:     status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     raw.Header,
		Body:       body,
	}, nil
}

// validHeaderName reports whether name is a valid HTTP field name (RFC 9110
// token). The standard library assumes callers only put valid names in a
// Header map, so the check happens here, at the boundary.
func validHeaderName(name string) bool {
	if name == "" {
		return false
	}
	for i := 0; i < len(name); i++ {
		if !isTokenChar(name[i]) {
			return false
		}
	}
	return true
}

func isTokenChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '!', '#', '$', '%', '&', '\'', '*', '+', '-', '.', '^', '_', '`', '|', '~':
		return true
	}
	return false
}
