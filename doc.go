// package bindlike is a Go implementation of a Workers-style binding environment.
//
// It is designed around a single invocation handling a single request and response pair.
// Before an invocation runs, the host provisions a set of named bindings — capability
// objects such as mTLS-authenticated fetchers, service fetchers, and plain text values —
// and hands them to the compute unit as an Environment. The unit resolves bindings by
// name and expected type, and performs fetches through the resolved handles.
//
// The public surface area of this package is intentionally small: it is the guest-facing
// SDK only. Resolution and verification never perform I/O; the only suspension point is
// the network await inside a fetch.
//
// BINDINGS
//
// Binding configuration is operator supplied and may drift from what the code expects: a
// binding can be missing, or present but of the wrong type. Every resolution therefore
// runs a runtime type check against the host object's intrinsic type name before the
// object is trusted, and failures come back as typed errors (BindingMissingError,
// BindingTypeError) rather than a crash at first use.
//
// Note that an mTLS certificate binding and a plain service binding share one host
// representation: both carry the type name "Fetcher". The distinction is entirely in how
// the host provisioned the underlying transport. See MTLSCertificate.
//
// RESPONSE SHAPES
//
// A fetch returns a FetchResponse. By default that is this package's own *Response. When
// built with the `stdhttp` tag it is a *net/http.Response instead, for applications built
// around the standard library's types. Exactly one shape is compiled into a build; there
// is no runtime branch between them.
package bindlike
