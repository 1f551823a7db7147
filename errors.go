package bindlike

import "fmt"

// BindingMissingError is returned when a requested binding name is absent from
// the environment. This is a configuration error: the operator never
// provisioned the binding, or the name is typo'd in code.
type BindingMissingError struct {
	Name string
}

func (e *BindingMissingError) Error() string {
	return fmt.Sprintf("binding %q is not provisioned in this environment", e.Name)
}

// BindingTypeError is returned when a binding exists but its host object is
// not an instance of the requested type.
type BindingTypeError struct {
	Name string
	Want string
	Got  string
}

func (e *BindingTypeError) Error() string {
	return fmt.Sprintf("binding %q is a %s, not a %s", e.Name, e.Got, e.Want)
}

// InvalidRequestError is returned when a caller-supplied value could not be
// converted into the canonical request form.
type InvalidRequestError struct {
	Err error
}

func (e *InvalidRequestError) Error() string {
	return fmt.Sprintf("invalid request: %v", e.Err)
}

func (e *InvalidRequestError) Unwrap() error { return e.Err }

// TransportError is returned when the host's network or handshake layer failed
// to complete the exchange. This includes TLS-level authentication rejection;
// an ordinary HTTP error status is not a TransportError but a successful
// response with a non-2xx status.
type TransportError struct {
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("fetch %q: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// IncompatibleResponseError is returned by standard-mode response adaptation
// when the raw host response cannot be represented as a *http.Response.
type IncompatibleResponseError struct {
	Reason string
}

func (e *IncompatibleResponseError) Error() string {
	return fmt.Sprintf("response cannot be adapted: %s", e.Reason)
}
