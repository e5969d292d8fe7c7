// Package config provides the configuration store shared by extensions.
//
// The store is a flat key/value map with a second, lower-priority layer of
// defaults:
//
//	┌─────────────────────────────┐
//	│  Live values                │  ← SetItem, seed file, settings edits
//	├─────────────────────────────┤
//	│  Defaults                   │  ← Defaults().Set, re-populated per load
//	└─────────────────────────────┘
//
// Keys are opaque strings. "ext.vol" is a single key; the dot has no
// structural meaning and the empty string is a valid key.
//
// # Sub-packages
//
//   - layer: flat value layers and precedence lookup
//   - notify: single-slot listeners and host observers
//   - loader: TOML seed files and snapshot export
//   - watcher: live reload of the seed file
//
// # Basic Usage
//
//	store := config.New(config.WithLogger(logger))
//
//	store.Defaults().Set("ext.vol", 50)
//	v, _ := store.GetItem("ext.vol") // 50
//
//	store.ListenChange("ext.vol", func(v any) {
//	    fmt.Println("volume is now", v)
//	})
//	store.SetItem("ext.vol", 80) // prints before SetItem returns
//
//	store.SetItem("ext.vol", nil) // deletes; GetItem falls back to 50
//
// # Listeners
//
// Each key has one listener slot. ListenChange replaces whatever was there,
// so two extensions listening on the same key will race and the last
// registration wins. Host components that must see every change use
// Observe, which is multicast and does not touch the slot.
//
// Listeners run synchronously inside SetItem. A listener that calls SetItem
// on its own key recurses; avoiding that is the caller's responsibility.
//
// # Error Handling
//
// Reads and writes never fail. A missing key is reported by the boolean
// result of GetItem. The typed accessors return ErrSettingNotFound and
// *TypeError.
package config
