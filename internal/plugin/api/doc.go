// Package api provides the Lua globals exposed to cadence extensions.
//
// Each API module implements the Module interface:
//
//	type Module interface {
//	    Name() string
//	    RequiredCapability() plua.Capability
//	    Register(L *lua.LState) error
//	}
//
// Modules are collected in a Registry, which injects into an extension's
// state only the modules whose capability the extension was granted.
//
// # Globals
//
// The config module ("config" capability):
//
//	config.getItem(key)              -- effective value or nil
//	config.setItem(key, value)       -- nil deletes; fires the key's listener
//	config.listenChange(key, fn)     -- replaces the key's single listener
//	defaultConfig[key] = value       -- writes the default layer, silently
//
// The settings module ("settings" capability):
//
//	SettingsPage.data.push({type = "boolean", text = "...", configItem = "..."}, ...)
//	SettingsPage.data:push(...)
//	#SettingsPage.data
//
// The dialog and menu modules ("ui" capability):
//
//	alert(text, fn?)
//	confirm(text, fn?)               -- fn runs only if accepted
//	prompt(text, fn?)                -- fn receives the input
//	webview(url, {width, height}?, fn?)
//	ContextMenu.new(items):popup({x, y}, {ox, oy}?)
//
// # Callbacks
//
// Functions handed to the host run through Runtime.Invoke. Errors raised
// by them are logged with the extension's name and never propagate to the
// code that triggered the callback.
package api
