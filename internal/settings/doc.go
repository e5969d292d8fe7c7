// Package settings models the settings page that extensions contribute to.
//
// A Page is an ordered, append-only list of Descriptors. Each descriptor is
// one of seven variants: *Title, *Button, *Boolean, *Select, *Range, *Input
// and *Color. All but Title and Button are Bindable: they name a
// configuration key whose effective value is the row's current value and
// whose edits are written back with SetItem.
//
// Any row except a title may name an AttachTo key. The Resolver shows such
// a row only while the effective value of that key is the boolean true.
// Each row is judged on its own against the store; hiding the row that
// controls a key does not hide rows attached to that key.
//
// Badges other than "experimental" and "pending" are extension-supplied
// markup and are passed to the renderer verbatim.
package settings
