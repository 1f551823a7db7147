package bindlike

// Host type names carried by provisioned objects. Multiple binding kinds may
// share one name when the host represents them identically: an mTLS certificate
// binding is a Fetcher whose transport was provisioned with a client
// certificate, so both it and a plain service binding are tagged TypeFetcher.
const (
	TypeFetcher = "Fetcher"
	TypeText    = "Text"
)

// Object is an opaque reference to a host-provided value. The type name is set
// by the host at provisioning time and is the object's intrinsic type identity;
// sandboxed code cannot change it after construction.
//
// Objects carry no mutable state and may be shared across goroutines. Whether
// the underlying host value is itself safe for concurrent use is an assumption
// made of the host, not something this package verifies.
type Object struct {
	typeName string
	impl     any
}

// NewObject wraps a host value with its intrinsic type name. Called by host
// adapters when provisioning an Environment; compute-unit code has no reason
// to construct objects.
func NewObject(typeName string, impl any) *Object {
	return &Object{typeName: typeName, impl: impl}
}

// TypeName returns the host type name the object was provisioned with.
func (o *Object) TypeName() string {
	if o == nil {
		return ""
	}
	return o.typeName
}

// Same reports whether two objects reference the same underlying host value.
// This is identity, not structural equality: two separately provisioned
// objects with identical contents are not the same.
func (o *Object) Same(other *Object) bool {
	return o != nil && o == other
}

// InstanceOf reports whether obj is an instance of the named host type. It is
// a pure predicate and never panics: a nil object, an empty type name, or any
// other malformed input is simply not an instance.
func InstanceOf(obj *Object, typeName string) bool {
	if obj == nil || typeName == "" {
		return false
	}
	return obj.typeName == typeName
}
