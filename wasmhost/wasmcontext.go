package wasmhost

import (
	"github.com/bytecodealliance/wasmtime-go"
)

type wasmContext struct {
	store  *wasmtime.Store
	module *wasmtime.Module
	linker *wasmtime.Linker
}

// link builds a fresh store and linker for one invocation and wires the host
// modules into it. Each ABI method purposefully keeps the flat int32
// signature the guest-side declarations use, to make them easy to compare.
func (i *Instance) link(u *Unit) error {
	store := wasmtime.NewStore(u.engine)

	wasicfg := wasmtime.NewWasiConfig()
	wasicfg.InheritStdout()
	wasicfg.InheritStderr()
	store.SetWasi(wasicfg)

	linker := wasmtime.NewLinker(u.engine)
	if err := linker.DefineWasi(); err != nil {
		return err
	}

	type hostFunc struct {
		module string
		name   string
		fn     interface{}
	}
	funcs := []hostFunc{
		// abi_env.go
		{"bindlike_env", "binding_get", i.bindingGet},
		{"bindlike_env", "text_get", i.textGet},

		// abi_http.go
		{"bindlike_http", "req_new", i.reqNew},
		{"bindlike_http", "req_method_set", i.reqMethodSet},
		{"bindlike_http", "req_uri_set", i.reqURISet},
		{"bindlike_http", "req_header_set", i.reqHeaderSet},
		{"bindlike_http", "body_new", i.bodyNew},
		{"bindlike_http", "body_write", i.bodyWrite},
		{"bindlike_http", "body_read", i.bodyRead},
		{"bindlike_http", "body_close", i.bodyClose},
		{"bindlike_http", "fetch_send", i.fetchSend},
		{"bindlike_http", "resp_status_get", i.respStatusGet},
		{"bindlike_http", "resp_header_get", i.respHeaderGet},

		// abi_downstream.go
		{"bindlike_downstream", "method_get", i.downstreamMethodGet},
		{"bindlike_downstream", "uri_get", i.downstreamURIGet},
		{"bindlike_downstream", "respond", i.downstreamRespond},
	}
	for _, hf := range funcs {
		if err := linker.DefineFunc(store, hf.module, hf.name, hf.fn); err != nil {
			return err
		}
	}

	i.wasmctx = &wasmContext{
		store:  store,
		module: u.module,
		linker: linker,
	}
	return nil
}
