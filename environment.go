package bindlike

import "fmt"

// Environment is the immutable set of named bindings provisioned by the host
// for one invocation context. It is read-only: lookups have no side effects,
// are idempotent, and may run from any number of goroutines without locking.
type Environment struct {
	objects map[string]*Object
}

// NewEnvironment builds an Environment from provisioned objects. The map is
// copied; later mutation of the argument does not affect the environment.
func NewEnvironment(objects map[string]*Object) *Environment {
	copied := make(map[string]*Object, len(objects))
	for name, obj := range objects {
		copied[name] = obj
	}
	return &Environment{objects: copied}
}

// Object resolves a binding by name without any type check. Most callers want
// one of the typed getters instead.
func (e *Environment) Object(name string) (*Object, error) {
	obj, ok := e.objects[name]
	if !ok || obj == nil {
		return nil, &BindingMissingError{Name: name}
	}
	return obj, nil
}

// get resolves name and verifies the found object against typeName. Lookup is
// exact-match and case-sensitive. Every typed getter funnels through here, so
// a handle is never produced without passing InstanceOf for its type.
func (e *Environment) get(name, typeName string) (*Object, error) {
	obj, err := e.Object(name)
	if err != nil {
		return nil, err
	}
	if !InstanceOf(obj, typeName) {
		return nil, &BindingTypeError{Name: name, Want: typeName, Got: obj.TypeName()}
	}
	return obj, nil
}

// Fetcher resolves a service binding: a Fetcher whose transport the host
// pinned to a configured upstream.
func (e *Environment) Fetcher(name string) (*Fetcher, error) {
	obj, err := e.get(name, TypeFetcher)
	if err != nil {
		return nil, err
	}
	return &Fetcher{obj: obj}, nil
}

// MTLSCertificate resolves an mTLS certificate binding. The host shape is the
// same as a plain Fetcher (see the package documentation on type aliasing);
// what differs is that the provisioned transport presents the operator's
// client certificate during the TLS handshake.
func (e *Environment) MTLSCertificate(name string) (*MTLSCertificate, error) {
	obj, err := e.get(name, TypeFetcher)
	if err != nil {
		return nil, err
	}
	return &MTLSCertificate{Fetcher{obj: obj}}, nil
}

// Text resolves a plain text binding (a var or secret).
func (e *Environment) Text(name string) (string, error) {
	obj, err := e.get(name, TypeText)
	if err != nil {
		return "", err
	}
	s, ok := obj.impl.(string)
	if !ok {
		// The tag says Text but the host put something else inside; that is a
		// provisioning bug, not a resolution type mismatch.
		return "", fmt.Errorf("binding %q: provisioned Text value is %T, not a string", name, obj.impl)
	}
	return s, nil
}
