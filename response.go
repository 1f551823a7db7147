package bindlike

import (
	"io"
	"net/http"
)

// Response is the native response abstraction: a thin view over the raw host
// response with no restructuring. Builds with the `stdhttp` tag use
// *net/http.Response instead; see FetchResponse.
type Response struct {
	raw *HostResponse
}

// StatusCode returns the HTTP status code.
func (r *Response) StatusCode() int { return r.raw.StatusCode }

// Status returns the host-provided status line, falling back to the standard
// text for the code.
func (r *Response) Status() string {
	if r.raw.Status != "" {
		return r.raw.Status
	}
	return http.StatusText(r.raw.StatusCode)
}

// Header returns the response headers. The map is the host's own; treat it as
// read-only.
func (r *Response) Header() http.Header { return r.raw.Header }

// URL returns the final request URL as seen by the transport.
func (r *Response) URL() string { return r.raw.URL }

// Body returns the response body stream. The caller owns closing it. The
// stream is the host's, unbuffered.
func (r *Response) Body() io.ReadCloser {
	if r.raw.Body == nil {
		return http.NoBody
	}
	return r.raw.Body
}

// Bytes reads and closes the body.
func (r *Response) Bytes() ([]byte, error) {
	body := r.Body()
	defer body.Close()
	return io.ReadAll(body)
}

// Text reads and closes the body as a string.
func (r *Response) Text() (string, error) {
	b, err := r.Bytes()
	return string(b), err
}
