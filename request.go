package bindlike

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// RedirectPolicy controls how the host treats redirects for one request.
// Following redirects is a host concern; the policy here is carried opaquely
// to the transport.
type RedirectPolicy string

const (
	// RedirectFollow follows redirects up to the host's limit. The zero value
	// of RequestInit behaves as follow.
	RedirectFollow RedirectPolicy = "follow"

	// RedirectManual returns the redirect response itself without following.
	RedirectManual RedirectPolicy = "manual"

	// RedirectError turns a redirect into a transport failure.
	RedirectError RedirectPolicy = "error"
)

// RequestInit is the optional set of options merged into a destination-string
// fetch. The zero value issues a bare GET.
type RequestInit struct {
	Method   string
	Header   http.Header
	Body     io.Reader
	Redirect RedirectPolicy
}

// Request is the canonical request form accepted by the host transport.
// Validation normalizes Method in place: empty defaults to GET and anything
// else is upper-cased. Beyond that the value is not touched once passed to a
// fetch.
type Request struct {
	Method   string
	URL      string
	Header   http.Header
	Body     io.Reader
	Redirect RedirectPolicy
}

// NewRequest builds a canonical request. The method defaults to GET; the URL
// must be absolute.
func NewRequest(method, rawurl string) (*Request, error) {
	r := &Request{Method: method, URL: rawurl, Header: http.Header{}}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Request) validate() error {
	if r.Method == "" {
		r.Method = http.MethodGet
	}
	r.Method = strings.ToUpper(r.Method)
	if !validMethod(r.Method) {
		return errors.New("invalid method " + r.Method)
	}
	u, err := url.Parse(r.URL)
	if err != nil {
		return err
	}
	if !u.IsAbs() || u.Host == "" {
		return errors.New("request URL must be absolute")
	}
	return nil
}

// IntoRequest returns the request itself after validation, so a *Request can
// be passed anywhere an IntoRequest is accepted.
func (r *Request) IntoRequest() (*Request, error) {
	if r == nil {
		return nil, errors.New("nil request")
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

// IntoRequest is any value convertible to the canonical request form.
// Conversion failures surface from a fetch as an InvalidRequestError.
type IntoRequest interface {
	IntoRequest() (*Request, error)
}

// StdRequest adapts a standard library request into an IntoRequest, for
// callers that already build *http.Request values.
type StdRequest struct {
	*http.Request
}

// IntoRequest converts the wrapped *http.Request to the canonical form. The
// body is carried by reference, not copied.
func (s StdRequest) IntoRequest() (*Request, error) {
	if s.Request == nil {
		return nil, errors.New("nil request")
	}
	if s.Request.URL == nil {
		return nil, errors.New("request has no URL")
	}
	r := &Request{
		Method: s.Request.Method,
		URL:    s.Request.URL.String(),
		Header: s.Request.Header,
		Body:   s.Request.Body,
	}
	if err := r.validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func validMethod(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodPost, http.MethodPut,
		http.MethodPatch, http.MethodDelete, http.MethodConnect,
		http.MethodOptions, http.MethodTrace:
		return true
	}
	return false
}
