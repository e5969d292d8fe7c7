// Package lua provides the Lua runtime that extensions run in.
//
// This package wraps the gopher-lua library to provide:
//   - Sandboxed Lua state management
//   - Go-Lua type conversion bridge
//   - Capability grants checked by the host API
//   - Execution timeouts
//
// # State
//
//	state, err := lua.NewState(
//	    lua.WithExecutionTimeout(5 * time.Second),
//	)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer state.Close()
//
//	if err := state.DoFile("init.lua"); err != nil {
//	    log.Fatal(err)
//	}
//
// # Callbacks
//
// Extensions hand functions to the host (change listeners, button
// handlers, dialog callbacks). The host calls them back with Invoke, often
// while the same state is still executing the Lua code that triggered the
// callback. Invoke therefore does not take the state's lock; callers must
// be on the host's single execution path.
//
// # Sandbox
//
// The Sandbox restricts Lua code execution by:
//   - Removing dofile, loadfile, load and loadstring
//   - Leaving io, os and debug unopened
//   - Restricting require to string, table and math
//   - Routing print to a host-supplied function
package lua
