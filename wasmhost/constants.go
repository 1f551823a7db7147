package wasmhost

// Status is the code returned from every ABI method. The guest-side SDK maps
// these back onto its own error types. Note that the function type check in
// the version of wasmtime we use requires plain int32 returns, so ABI methods
// return `int32(StatusOK)` and so on rather than Status itself.
type Status int32

const (
	StatusOK             Status = 0
	ErrGeneric           Status = 1
	ErrInvalidArgument   Status = 2
	ErrInvalidHandle     Status = 3
	ErrBufferLength      Status = 4
	ErrUnsupported       Status = 5
	ErrBindingMissing    Status = 6
	ErrBindingType       Status = 7
	ErrInvalidRequest    Status = 8
	ErrTransport         Status = 9
	ErrResponseAdapt     Status = 10
)
