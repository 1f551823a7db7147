package wasmhost

import (
	"errors"

	"github.com/edgekit/bindlike"
)

// bindingGet resolves a named binding against the requested type name and
// returns a fetcher handle. Resolution failures are distinct status codes so
// the guest can tell an unprovisioned binding from a mistyped one.
func (i *Instance) bindingGet(nameAddr, nameSize, typeAddr, typeSize, handleOut int32) int32 {
	name, err := i.memory.ReadString(nameAddr, nameSize)
	if err != nil {
		return int32(ErrInvalidArgument)
	}
	typeName, err := i.memory.ReadString(typeAddr, typeSize)
	if err != nil {
		return int32(ErrInvalidArgument)
	}

	obj, err := i.env.Object(name)
	if err != nil {
		i.abilog.Debug().Msgf("binding_get: name=%q missing", name)
		return int32(ErrBindingMissing)
	}
	if !bindlike.InstanceOf(obj, typeName) {
		i.abilog.Debug().Msgf("binding_get: name=%q want=%q got=%q", name, typeName, obj.TypeName())
		return int32(ErrBindingType)
	}

	// Only fetch-shaped bindings get handles over this ABI; text bindings go
	// through text_get.
	fetcher, err := bindlike.FetcherFromObject(obj)
	if err != nil {
		return int32(ErrUnsupported)
	}

	hid := i.fetchers.Put(fetcher)
	i.abilog.Debug().Msgf("binding_get: name=%q type=%q handle=%d", name, typeName, hid)
	if err := i.memory.PutUint32(uint32(hid), int64(handleOut)); err != nil {
		return int32(ErrGeneric)
	}
	return int32(StatusOK)
}

// textGet copies the value of a text binding into guest memory.
func (i *Instance) textGet(nameAddr, nameSize, bufAddr, bufMaxlen, nwrittenOut int32) int32 {
	name, err := i.memory.ReadString(nameAddr, nameSize)
	if err != nil {
		return int32(ErrInvalidArgument)
	}

	value, err := i.env.Text(name)
	if err != nil {
		var missing *bindlike.BindingMissingError
		if errors.As(err, &missing) {
			i.abilog.Debug().Msgf("text_get: name=%q missing", name)
			return int32(ErrBindingMissing)
		}
		i.abilog.Debug().Msgf("text_get: name=%q not a text binding", name)
		return int32(ErrBindingType)
	}

	if len(value) > int(bufMaxlen) {
		return int32(ErrBufferLength)
	}
	nwritten, err := i.memory.WriteAt([]byte(value), int64(bufAddr))
	if err != nil {
		return int32(ErrGeneric)
	}
	if err := i.memory.PutUint32(uint32(nwritten), int64(nwrittenOut)); err != nil {
		return int32(ErrGeneric)
	}
	return int32(StatusOK)
}
