package api

import (
	"fmt"

	lua "github.com/yuin/gopher-lua"

	"github.com/dshills/cadence/internal/dialog"
	"github.com/dshills/cadence/internal/menu"
	plua "github.com/dshills/cadence/internal/plugin/lua"
)

// DialogModule installs the alert, confirm, prompt and webview globals.
type DialogModule struct {
	ctx *Context
	rt  Runtime
	cb  *callbacks
}

// NewDialogModule creates a new dialog module.
func NewDialogModule(ctx *Context, rt Runtime, extension string) *DialogModule {
	return &DialogModule{ctx: ctx, rt: rt, cb: newCallbacks(rt, ctx.Logger, extension)}
}

// Name returns the module name.
func (m *DialogModule) Name() string {
	return "dialog"
}

// RequiredCapability returns the capability required for this module.
func (m *DialogModule) RequiredCapability() plua.Capability {
	return plua.CapabilityUI
}

// Register registers the module into the Lua state.
func (m *DialogModule) Register(L *lua.LState) error {
	L.SetGlobal("alert", L.NewFunction(m.alert))
	L.SetGlobal("confirm", L.NewFunction(m.confirm))
	L.SetGlobal("prompt", L.NewFunction(m.prompt))
	L.SetGlobal("webview", L.NewFunction(m.webview))
	return nil
}

// alert(text, fn?) -> nil
// fn runs when the dialog is closed.
func (m *DialogModule) alert(L *lua.LState) int {
	text := L.CheckString(1)
	fn := L.OptFunction(2, nil)

	m.ctx.Dialogs.Alert(text, m.cb.goFunc("alert", fn))
	return 0
}

// confirm(text, fn?) -> nil
// fn runs only if the user accepts.
func (m *DialogModule) confirm(L *lua.LState) int {
	text := L.CheckString(1)
	fn := L.OptFunction(2, nil)

	m.ctx.Dialogs.Confirm(text, m.cb.goFunc("confirm", fn))
	return 0
}

// prompt(text, fn?) -> nil
// fn receives the entered string.
func (m *DialogModule) prompt(L *lua.LState) int {
	text := L.CheckString(1)
	fn := L.OptFunction(2, nil)

	var done func(string)
	if fn != nil {
		done = func(input string) { m.cb.call("prompt", fn, lua.LString(input)) }
	}
	m.ctx.Dialogs.Prompt(text, done)
	return 0
}

// webview(url, opts?, fn?) -> nil
// opts is {width = n, height = n}. fn receives {url = ..., cookies = {...}}.
// webview(url, fn) is also accepted.
func (m *DialogModule) webview(L *lua.LState) int {
	url := L.CheckString(1)

	var (
		opts *dialog.WebviewOptions
		fn   *lua.LFunction
	)
	switch v := L.Get(2).(type) {
	case *lua.LFunction:
		fn = v
	case *lua.LTable:
		w, _ := m.rt.Bridge().GetTableNumber(v, "width")
		h, _ := m.rt.Bridge().GetTableNumber(v, "height")
		opts = &dialog.WebviewOptions{Width: int(w), Height: int(h)}
		fn = L.OptFunction(3, nil)
	case *lua.LNilType:
		fn = L.OptFunction(3, nil)
	default:
		L.ArgError(2, "expected options table or function")
		return 0
	}

	var done func(dialog.WebviewResult)
	if fn != nil {
		done = func(res dialog.WebviewResult) {
			m.cb.call("webview", fn, webviewResultTable(m.rt.Bridge().L, res))
		}
	}
	m.ctx.Dialogs.Webview(url, opts, done)
	return 0
}

// webviewResultTable converts a result to the table handed to callbacks.
func webviewResultTable(L *lua.LState, res dialog.WebviewResult) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("url", lua.LString(res.URL))

	cookies := L.NewTable()
	for i, c := range res.Cookies {
		ct := L.NewTable()
		ct.RawSetString("domain", lua.LString(c.Domain))
		ct.RawSetString("expirationDate", lua.LNumber(c.ExpirationDate))
		ct.RawSetString("hostOnly", lua.LBool(c.HostOnly))
		ct.RawSetString("httpOnly", lua.LBool(c.HTTPOnly))
		ct.RawSetString("name", lua.LString(c.Name))
		ct.RawSetString("path", lua.LString(c.Path))
		ct.RawSetString("sameSite", lua.LString(c.SameSite.String()))
		ct.RawSetString("secure", lua.LBool(c.Secure))
		ct.RawSetString("session", lua.LBool(c.Session))
		ct.RawSetString("value", lua.LString(c.Value))
		cookies.RawSetInt(i+1, ct)
	}
	t.RawSetString("cookies", cookies)
	return t
}

const contextMenuType = "ContextMenu"

// MenuModule installs the ContextMenu global.
type MenuModule struct {
	ctx *Context
	rt  Runtime
	cb  *callbacks
}

// NewMenuModule creates a new menu module.
func NewMenuModule(ctx *Context, rt Runtime, extension string) *MenuModule {
	return &MenuModule{ctx: ctx, rt: rt, cb: newCallbacks(rt, ctx.Logger, extension)}
}

// Name returns the module name.
func (m *MenuModule) Name() string {
	return "menu"
}

// RequiredCapability returns the capability required for this module.
func (m *MenuModule) RequiredCapability() plua.Capability {
	return plua.CapabilityUI
}

// Register registers the module into the Lua state.
func (m *MenuModule) Register(L *lua.LState) error {
	mt := L.NewTypeMetatable(contextMenuType)
	L.SetField(mt, "__index", L.SetFuncs(L.NewTable(), map[string]lua.LGFunction{
		"popup": m.popup,
	}))

	mod := L.NewTable()
	L.SetField(mod, "new", L.NewFunction(m.newMenu))
	L.SetGlobal("ContextMenu", mod)
	return nil
}

// ContextMenu.new(items) -> menu
// items is a list of {label = ..., disabled = bool?, click = fn?,
// submenu = {...}?} and {type = "separator"} entries.
func (m *MenuModule) newMenu(L *lua.LState) int {
	items := L.CheckTable(1)

	entries, err := m.decodeEntries(items, "")
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}

	cm, err := menu.New(entries, m.ctx.Menus)
	if err != nil {
		L.ArgError(1, err.Error())
		return 0
	}

	ud := L.NewUserData()
	ud.Value = cm
	L.SetMetatable(ud, L.GetTypeMetatable(contextMenuType))
	L.Push(ud)
	return 1
}

// menu:popup({x, y}, {ox, oy}?) -> nil
func (m *MenuModule) popup(L *lua.LState) int {
	ud := L.CheckUserData(1)
	cm, ok := ud.Value.(*menu.Menu)
	if !ok {
		L.ArgError(1, "ContextMenu expected")
		return 0
	}

	at, ok := pointArg(L.Get(2))
	if !ok {
		L.ArgError(2, "position {x, y} expected")
		return 0
	}

	var offset []menu.Point
	if L.Get(3) != lua.LNil {
		off, ok := pointArg(L.Get(3))
		if !ok {
			L.ArgError(3, "offset {x, y} expected")
			return 0
		}
		offset = append(offset, off)
	}

	cm.Popup(at, offset...)
	return 0
}

func (m *MenuModule) decodeEntries(items *lua.LTable, prefix string) ([]menu.Entry, error) {
	b := m.rt.Bridge()

	entries := make([]menu.Entry, 0, items.Len())
	for i := 1; i <= items.Len(); i++ {
		path := fmt.Sprintf("%s%d", prefix, i)
		t, ok := items.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, fmt.Errorf("menu entry %s: expected table", path)
		}

		if typ, _ := b.GetTableString(t, "type"); typ == "separator" {
			entries = append(entries, menu.Separator{})
			continue
		}

		label, _ := b.GetTableString(t, "label")
		disabled, _ := b.GetTableBool(t, "disabled")
		click, _ := b.GetTableFunc(t, "click")
		item := menu.Item{
			Label:    label,
			Disabled: disabled,
			Click:    m.cb.goFunc("menu "+label, click),
		}

		if sub, ok := b.GetTableTable(t, "submenu"); ok {
			children, err := m.decodeEntries(sub, path+".")
			if err != nil {
				return nil, err
			}
			item.Submenu = children
		}
		entries = append(entries, item)
	}
	return entries, nil
}

// pointArg reads {x, y}.
func pointArg(v lua.LValue) (menu.Point, bool) {
	t, ok := v.(*lua.LTable)
	if !ok {
		return menu.Point{}, false
	}
	x, okX := t.RawGetInt(1).(lua.LNumber)
	y, okY := t.RawGetInt(2).(lua.LNumber)
	if !okX || !okY {
		return menu.Point{}, false
	}
	return menu.Point{X: float64(x), Y: float64(y)}, true
}
