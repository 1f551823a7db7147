package wasmhost

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/bytecodealliance/wasmtime-go"
	"github.com/rs/zerolog"

	"github.com/edgekit/bindlike"
)

// Unit is a compiled wasm compute unit. Compilation happens once; each
// invocation gets a fresh Instance with its own store, handle tables, and
// environment reference.
type Unit struct {
	engine *wasmtime.Engine
	module *wasmtime.Module
	log    zerolog.Logger
}

// NewUnit compiles a wasm program.
func NewUnit(wasmbytes []byte, log zerolog.Logger) (*Unit, error) {
	config := wasmtime.NewConfig()
	engine := wasmtime.NewEngineWithConfig(config)
	module, err := wasmtime.NewModule(engine, wasmbytes)
	if err != nil {
		return nil, fmt.Errorf("compile unit: %w", err)
	}
	return &Unit{engine: engine, module: module, log: log}, nil
}

// LoadUnit compiles the wasm program at path.
func LoadUnit(path string, log zerolog.Logger) (*Unit, error) {
	wasmbytes, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read unit: %w", err)
	}
	return NewUnit(wasmbytes, log)
}

// downstream carries the invocation's incoming request facts and the response
// the guest chose to send.
type downstream struct {
	method string
	uri    string

	status     int
	bodyHandle int
	responded  bool
}

// Instance is a single invocation of a Unit. It is not reusable and not safe
// for concurrent use; the gateway creates one per incoming request.
type Instance struct {
	env     *bindlike.Environment
	ctx     context.Context
	wasmctx *wasmContext
	memory  *memory

	fetchers  *fetcherHandles
	requests  *requestHandles
	responses *responseHandles
	bodies    *bodyHandles

	ds     downstream
	abilog zerolog.Logger
}

// Invoke runs the unit once against env, feeding it the incoming request and
// writing whatever the guest responded to w. It satisfies the gateway's Unit
// contract.
func (u *Unit) Invoke(ctx context.Context, env *bindlike.Environment, w http.ResponseWriter, r *http.Request) error {
	i := &Instance{
		env:       env,
		ctx:       ctx,
		fetchers:  &fetcherHandles{},
		requests:  &requestHandles{},
		responses: &responseHandles{},
		bodies:    newBodyHandles(),
		ds: downstream{
			method:     r.Method,
			uri:        r.URL.String(),
			status:     http.StatusOK,
			bodyHandle: -1,
		},
		abilog: u.log.With().Str("component", "abi").Logger(),
	}
	if err := i.link(u); err != nil {
		return fmt.Errorf("link unit: %w", err)
	}
	if err := i.run(); err != nil {
		return err
	}
	return i.writeResponse(w)
}

// run instantiates the module and drives its entrypoint to completion. The
// fetch ABI suspends inside host calls; everything else is compute.
func (i *Instance) run() error {
	store := i.wasmctx.store
	wi, err := i.wasmctx.linker.Instantiate(store, i.wasmctx.module)
	if err != nil {
		return fmt.Errorf("instantiate unit: %w", err)
	}

	memExport := wi.GetExport(store, "memory")
	if memExport == nil || memExport.Memory() == nil {
		return errors.New("unit exports no linear memory")
	}
	i.memory = &memory{mem: memExport.Memory(), store: store}

	start := wi.GetExport(store, "_start")
	if start == nil || start.Func() == nil {
		return errors.New("unit exports no _start entrypoint")
	}
	if _, err := start.Func().Call(store); err != nil {
		return fmt.Errorf("unit trapped: %w", err)
	}
	return nil
}

// writeResponse copies the guest's chosen status and body downstream. A guest
// that never called respond gets an empty 200, matching what an empty handler
// does elsewhere.
func (i *Instance) writeResponse(w http.ResponseWriter) error {
	w.WriteHeader(i.ds.status)
	if i.ds.bodyHandle < 0 {
		return nil
	}
	body := i.bodies.Get(i.ds.bodyHandle)
	if body == nil {
		return nil
	}
	defer body.Close()
	if _, err := io.Copy(w, body); err != nil {
		return fmt.Errorf("write downstream body: %w", err)
	}
	return nil
}
