// Package wasmhost runs wasm compute units against a binding environment.
//
// A unit is compiled once and instantiated fresh for each invocation, with a
// linker exposing two host modules: `bindlike_env` for binding resolution and
// `bindlike_http` for request building, fetching, and response reads. The ABI
// works in handles — small integers naming host-side requests, responses,
// bodies, and fetchers — and every ABI call returns a Status code rather than
// trapping, so a misconfigured binding reaches the guest as a distinct error
// code it can report, not a crash.
//
// Binding resolution and type verification happen host-side through the same
// core Environment the in-process SDK uses; the guest cannot fabricate a
// fetcher handle it was never granted.
package wasmhost
