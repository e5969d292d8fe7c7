// Package plugin loads cadence extensions.
//
// An extension is Lua code that configures the host: it seeds default
// configuration values, appends rows to the settings page, listens for
// configuration changes, and opens dialogs and context menus.
//
// # Quick Start
//
//	mgr := plugin.NewManager(plugin.ManagerConfig{
//	    Paths: []string{"./extensions"},
//	    API: &api.Context{
//	        Config:  store,
//	        Page:    page,
//	        Dialogs: dialogs,
//	        Logger:  logger,
//	    },
//	})
//	if err := mgr.LoadAll(ctx); err != nil {
//	    logger.Warn("some extensions failed to load", "err", err)
//	}
//
// # Extension Structure
//
// Extensions can be either single-file or directory-based:
//
// Single-file extension:
//
//	extensions/lyrics.lua
//
// Directory extension:
//
//	extensions/lyrics/
//	├── extension.json   # Manifest (optional; extension.yaml also accepted)
//	└── init.lua         # Entry point
//
// # Manifest
//
//	{
//	  "name": "lyrics",
//	  "version": "1.0.0",
//	  "displayName": "Lyrics",
//	  "main": "init.lua",
//	  "capabilities": ["config", "settings"]
//	}
//
// The same fields may be written as YAML in extension.yaml.
//
// # Capabilities
//
//   - config: config.getItem/setItem/listenChange and defaultConfig
//   - settings: SettingsPage.data
//   - ui: alert, confirm, prompt, webview and ContextMenu
//
// Extensions without a manifest are granted every capability.
//
// # Execution
//
// Every extension has its own sandboxed Lua state, but all extension code
// runs on one logical thread: the Manager serializes loading, and host
// code that writes configuration while extensions are live does so inside
// Manager.Do. Listener callbacks run synchronously inside the write.
package plugin
