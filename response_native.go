//go:build !stdhttp

package bindlike

import "errors"

// FetchResponse is the response shape returned by fetch operations in this
// build: the package's native *Response. Build with the `stdhttp` tag to get
// *net/http.Response instead.
type FetchResponse = *Response

// adaptResponse wraps the raw host response without restructuring it. The
// native shape can represent anything the host produces.
func adaptResponse(raw *HostResponse) (FetchResponse, error) {
	if raw == nil {
		return nil, errors.New("host returned no response")
	}
	return &Response{raw: raw}, nil
}
