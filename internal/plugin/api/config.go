package api

import (
	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/cadence/internal/plugin/lua"
)

// ConfigModule installs the config table and the defaultConfig proxy.
type ConfigModule struct {
	ctx *Context
	rt  Runtime
	cb  *callbacks
}

// NewConfigModule creates a new config module.
func NewConfigModule(ctx *Context, rt Runtime, extension string) *ConfigModule {
	return &ConfigModule{ctx: ctx, rt: rt, cb: newCallbacks(rt, ctx.Logger, extension)}
}

// Name returns the module name.
func (m *ConfigModule) Name() string {
	return "config"
}

// RequiredCapability returns the capability required for this module.
func (m *ConfigModule) RequiredCapability() plua.Capability {
	return plua.CapabilityConfig
}

// Register registers the module into the Lua state.
func (m *ConfigModule) Register(L *lua.LState) error {
	mod := L.NewTable()
	L.SetField(mod, "getItem", L.NewFunction(m.getItem))
	L.SetField(mod, "setItem", L.NewFunction(m.setItem))
	L.SetField(mod, "listenChange", L.NewFunction(m.listenChange))
	L.SetGlobal("config", mod)

	defaults := L.NewTable()
	mt := L.NewTable()
	L.SetField(mt, "__index", L.NewFunction(m.defaultIndex))
	L.SetField(mt, "__newindex", L.NewFunction(m.defaultNewIndex))
	L.SetMetatable(defaults, mt)
	L.SetGlobal("defaultConfig", defaults)

	return nil
}

// getItem(key) -> value or nil
// Returns the live value, falling back to the default.
func (m *ConfigModule) getItem(L *lua.LState) int {
	key := L.CheckString(1)

	v, ok := m.ctx.Config.GetItem(key)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(m.rt.Bridge().ToLuaValue(v))
	return 1
}

// setItem(key, value) -> nil
// Writes the live value and fires the key's listener. nil deletes.
func (m *ConfigModule) setItem(L *lua.LState) int {
	key := L.CheckString(1)

	v, err := m.rt.Bridge().ToGoValue(L.Get(2))
	if err != nil {
		L.ArgError(2, err.Error())
		return 0
	}

	m.ctx.Config.SetItem(key, v)
	return 0
}

// listenChange(key, fn) -> nil
// Replaces the key's listener. fn receives the new value; nil clears.
func (m *ConfigModule) listenChange(L *lua.LState) int {
	key := L.CheckString(1)
	fn := L.OptFunction(2, nil)

	if fn == nil {
		m.ctx.Config.ListenChange(key, nil)
		return 0
	}

	what := "listenChange " + key
	m.ctx.Config.ListenChange(key, func(v any) {
		m.cb.call(what, fn, m.rt.Bridge().ToLuaValue(v))
	})
	return 0
}

// defaultConfig[key] -> value or nil
func (m *ConfigModule) defaultIndex(L *lua.LState) int {
	key := L.CheckString(2)

	v, ok := m.ctx.Config.Defaults().Get(key)
	if !ok {
		L.Push(lua.LNil)
		return 1
	}
	L.Push(m.rt.Bridge().ToLuaValue(v))
	return 1
}

// defaultConfig[key] = value
// Writes the default layer without notifying listeners. nil deletes.
func (m *ConfigModule) defaultNewIndex(L *lua.LState) int {
	key := L.CheckString(2)

	v, err := m.rt.Bridge().ToGoValue(L.Get(3))
	if err != nil {
		L.ArgError(3, err.Error())
		return 0
	}

	m.ctx.Config.Defaults().Set(key, v)
	return 0
}
