package bindlike

import (
	"context"
	"errors"
	"io"
	"net/http"
)

// HostResponse is the raw response shape produced by the host transport,
// before adaptation into the build's FetchResponse. Host adapters construct
// it 1:1 from whatever their transport returned; this package never buffers
// or mutates it.
type HostResponse struct {
	StatusCode int
	Status     string
	Header     http.Header
	Body       io.ReadCloser

	// URL is the final request URL as seen by the transport.
	URL string
}

// FetchCapability is the opaque "issue request, await response" primitive the
// host exposes per provisioned Fetcher object. Two calling conventions are
// required: issue by destination string plus options, and issue by prebuilt
// canonical request.
//
// Implementations present whatever credential the binding was provisioned
// with during the transport handshake; nothing at this boundary names or
// selects it. They are assumed safe for concurrent use.
type FetchCapability interface {
	FetchURL(ctx context.Context, url string, init *RequestInit) (*HostResponse, error)
	FetchRequest(ctx context.Context, req *Request) (*HostResponse, error)
}

// Fetcher is a handle on a provisioned fetch capability. It carries no
// mutable state: cloning shares the underlying host object, and a handle may
// be used from any number of goroutines concurrently. Each fetch is
// independent; no ordering is guaranteed between concurrent calls.
type Fetcher struct {
	obj *Object
}

// Object returns the underlying host object, for interoperability with
// generic binding code.
func (f *Fetcher) Object() *Object { return f.obj }

// Clone returns a handle sharing the same underlying host object.
func (f *Fetcher) Clone() *Fetcher { return &Fetcher{obj: f.obj} }

// Same reports whether two handles reference the same underlying host object.
func (f *Fetcher) Same(other *Fetcher) bool {
	return f != nil && other != nil && f.obj.Same(other.obj)
}

// FetcherFromObject wraps an already-verified Fetcher object in a handle. It
// returns a BindingTypeError if the object is not a Fetcher; resolution
// through an Environment performs this check for you.
func FetcherFromObject(obj *Object) (*Fetcher, error) {
	if !InstanceOf(obj, TypeFetcher) {
		return nil, &BindingTypeError{Want: TypeFetcher, Got: obj.TypeName()}
	}
	return &Fetcher{obj: obj}, nil
}

// Fetch issues an authenticated request to url. A nil init issues a bare GET;
// otherwise the options are merged into the request before it is handed to
// the transport. The call blocks until the host completes the network
// exchange or ctx is torn down; no timeout is imposed here.
//
// Transport-level failures — including a handshake the far side rejected, and
// targets the host cannot present the credential to at all — come back as a
// *TransportError carrying the host's diagnostic. An HTTP error status is not
// a failure; it is returned as a response.
func (f *Fetcher) Fetch(ctx context.Context, url string, init *RequestInit) (FetchResponse, error) {
	capability, err := f.capability()
	if err != nil {
		return nil, err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := capability.FetchURL(ctx, url, init)
	if err != nil {
		return nil, &TransportError{URL: url, Err: err}
	}
	return adaptResponse(raw)
}

// FetchRequest issues an authenticated request using an already-built request
// value. Conversion failure surfaces as an *InvalidRequestError; otherwise
// semantics match Fetch.
func (f *Fetcher) FetchRequest(ctx context.Context, into IntoRequest) (FetchResponse, error) {
	capability, err := f.capability()
	if err != nil {
		return nil, err
	}
	if into == nil {
		return nil, &InvalidRequestError{Err: errors.New("nil request")}
	}
	req, err := into.IntoRequest()
	if err != nil {
		return nil, &InvalidRequestError{Err: err}
	}
	if ctx == nil {
		ctx = context.Background()
	}
	raw, err := capability.FetchRequest(ctx, req)
	if err != nil {
		return nil, &TransportError{URL: req.URL, Err: err}
	}
	return adaptResponse(raw)
}

// Capability returns the raw fetch primitive behind the handle, for host
// runtime adapters that bridge it into another execution environment (the
// wasm host, for one). Compute-unit code should use Fetch and FetchRequest,
// which adapt the response into the build's FetchResponse shape.
func (f *Fetcher) Capability() (FetchCapability, bool) {
	capability, err := f.capability()
	return capability, err == nil
}

func (f *Fetcher) capability() (FetchCapability, error) {
	if f == nil || f.obj == nil {
		return nil, &BindingTypeError{Want: TypeFetcher, Got: ""}
	}
	capability, ok := f.obj.impl.(FetchCapability)
	if !ok {
		return nil, &BindingTypeError{Want: TypeFetcher, Got: f.obj.TypeName()}
	}
	return capability, nil
}

// MTLSCertificate is a handle on an mTLS certificate binding. The host
// representation is identical to a plain Fetcher — the type tag models the
// host-visible shape, not the semantic capability — so the fetch surface is
// inherited unchanged. The provisioned client certificate is presented
// automatically during the TLS handshake; nothing here names or selects it.
type MTLSCertificate struct {
	Fetcher
}

// Clone returns a handle sharing the same underlying host object.
func (m *MTLSCertificate) Clone() *MTLSCertificate {
	return &MTLSCertificate{Fetcher{obj: m.obj}}
}
