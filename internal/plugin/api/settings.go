package api

import (
	"errors"
	"fmt"

	lua "github.com/yuin/gopher-lua"

	plua "github.com/dshills/cadence/internal/plugin/lua"
	"github.com/dshills/cadence/internal/settings"
)

// SettingsModule installs the SettingsPage global.
//
// SettingsPage.data is a read-only proxy over the shared page: indexing
// returns a copy of the row as a table, # returns the page length, and
// push appends.
type SettingsModule struct {
	ctx  *Context
	rt   Runtime
	cb   *callbacks
	data *lua.LTable
}

// NewSettingsModule creates a new settings module.
func NewSettingsModule(ctx *Context, rt Runtime, extension string) *SettingsModule {
	return &SettingsModule{ctx: ctx, rt: rt, cb: newCallbacks(rt, ctx.Logger, extension)}
}

// Name returns the module name.
func (m *SettingsModule) Name() string {
	return "settings"
}

// RequiredCapability returns the capability required for this module.
func (m *SettingsModule) RequiredCapability() plua.Capability {
	return plua.CapabilitySettings
}

// Register registers the module into the Lua state.
func (m *SettingsModule) Register(L *lua.LState) error {
	m.data = L.NewTable()
	mt := L.NewTable()
	L.SetField(mt, "__index", L.NewFunction(m.index))
	L.SetField(mt, "__newindex", L.NewFunction(m.newIndex))
	L.SetField(mt, "__len", L.NewFunction(m.length))
	L.SetMetatable(m.data, mt)

	page := L.NewTable()
	L.SetField(page, "data", m.data)
	L.SetGlobal("SettingsPage", page)
	return nil
}

// push(d1, d2, ...) -> length
// Appends descriptors. Either every entry is appended or none is.
func (m *SettingsModule) push(L *lua.LState) int {
	first := 1
	if t, ok := L.Get(1).(*lua.LTable); ok && t == m.data {
		first = 2
	}

	var (
		descs []settings.Descriptor
		errs  []error
	)
	for i := first; i <= L.GetTop(); i++ {
		idx := i - first
		t, ok := L.Get(i).(*lua.LTable)
		if !ok {
			errs = append(errs, &settings.ValidationError{
				Index:   idx,
				Code:    settings.CodeUnknownKind,
				Message: fmt.Sprintf("expected table, got %s", L.Get(i).Type()),
			})
			continue
		}
		d, err := m.decode(t)
		if err != nil {
			var ve *settings.ValidationError
			if errors.As(err, &ve) {
				ve.Index = idx
			}
			errs = append(errs, err)
			continue
		}
		descs = append(descs, d)
	}
	if len(errs) > 0 {
		L.RaiseError("SettingsPage.data.push: %v", errors.Join(errs...))
		return 0
	}

	if err := m.ctx.Page.Append(descs...); err != nil {
		L.RaiseError("SettingsPage.data.push: %v", err)
		return 0
	}

	L.Push(lua.LNumber(m.ctx.Page.Len()))
	return 1
}

// index resolves data.push and data[i] (1-based).
func (m *SettingsModule) index(L *lua.LState) int {
	switch k := L.Get(2).(type) {
	case lua.LString:
		if k == "push" {
			L.Push(L.NewFunction(m.push))
			return 1
		}
	case lua.LNumber:
		if d, ok := m.ctx.Page.At(int(k) - 1); ok && float64(int(k)) == float64(k) {
			L.Push(m.encode(L, d))
			return 1
		}
	}
	L.Push(lua.LNil)
	return 1
}

func (m *SettingsModule) newIndex(L *lua.LState) int {
	L.RaiseError("SettingsPage.data is append-only; use push")
	return 0
}

func (m *SettingsModule) length(L *lua.LState) int {
	L.Push(lua.LNumber(m.ctx.Page.Len()))
	return 1
}

// decode converts a descriptor table to a settings.Descriptor. Required
// fields are checked by the page; decode only reports what it cannot
// represent.
func (m *SettingsModule) decode(t *lua.LTable) (settings.Descriptor, error) {
	b := m.rt.Bridge()

	tag, _ := b.GetTableString(t, "type")
	kind, ok := settings.ParseKind(tag)
	if !ok {
		return nil, &settings.ValidationError{
			Index:   -1,
			Type:    tag,
			Field:   "type",
			Code:    settings.CodeUnknownKind,
			Message: fmt.Sprintf("unknown descriptor type %q", tag),
		}
	}

	text, _ := b.GetTableString(t, "text")
	if kind == settings.KindTitle {
		return &settings.Title{Text: text}, nil
	}

	row := settings.Row{Text: text}
	row.Description, _ = b.GetTableString(t, "description")
	row.AttachTo, _ = b.GetTableString(t, "attachTo")
	if badges, ok := b.GetTableTable(t, "badges"); ok {
		badges.ForEach(func(_, v lua.LValue) {
			if s, ok := v.(lua.LString); ok {
				row.Badges = append(row.Badges, settings.Badge(s))
			}
		})
	}

	key, _ := b.GetTableString(t, "configItem")
	bound := settings.Bound{Key: key}

	switch kind {
	case settings.KindButton:
		label, _ := b.GetTableString(t, "button")
		fn, _ := b.GetTableFunc(t, "onclick")
		return &settings.Button{Row: row, Label: label, OnClick: m.cb.goFunc("onclick "+label, fn)}, nil

	case settings.KindBoolean:
		return &settings.Boolean{Row: row, Bound: bound}, nil

	case settings.KindSelect:
		opts, err := m.decodeOptions(t)
		if err != nil {
			return nil, err
		}
		return &settings.Select{Row: row, Bound: bound, Options: opts}, nil

	case settings.KindRange:
		lo, okMin := b.GetTableNumber(t, "min")
		hi, okMax := b.GetTableNumber(t, "max")
		switch {
		case !okMin:
			return nil, decodeMissing(kind, "min")
		case !okMax:
			return nil, decodeMissing(kind, "max")
		}
		return &settings.Range{Row: row, Bound: bound, Min: lo, Max: hi}, nil

	case settings.KindInput:
		inputType, _ := b.GetTableString(t, "inputType")
		return &settings.Input{Row: row, Bound: bound, InputType: inputType}, nil

	default:
		return &settings.Color{Row: row, Bound: bound}, nil
	}
}

// decodeOptions reads {{value, label}, ...}. A missing options field
// decodes to nil and is rejected by validation.
func (m *SettingsModule) decodeOptions(t *lua.LTable) ([]settings.Option, error) {
	b := m.rt.Bridge()

	list, ok := b.GetTableTable(t, "options")
	if !ok {
		return nil, nil
	}

	opts := make([]settings.Option, 0, list.Len())
	for i := 1; i <= list.Len(); i++ {
		pair, ok := list.RawGetInt(i).(*lua.LTable)
		if !ok {
			return nil, decodeMissing(settings.KindSelect, fmt.Sprintf("options[%d]", i))
		}
		v, err := b.ToGoValue(pair.RawGetInt(1))
		if err != nil {
			return nil, &settings.ValidationError{
				Index:   -1,
				Type:    settings.KindSelect.String(),
				Field:   fmt.Sprintf("options[%d]", i),
				Code:    settings.CodeRequiredMissing,
				Message: err.Error(),
			}
		}
		label, _ := pair.RawGetInt(2).(lua.LString)
		opts = append(opts, settings.Option{Value: v, Label: string(label)})
	}
	return opts, nil
}

func decodeMissing(k settings.Kind, field string) *settings.ValidationError {
	return &settings.ValidationError{
		Index:   -1,
		Type:    k.String(),
		Field:   field,
		Code:    settings.CodeRequiredMissing,
		Message: "required field is missing",
	}
}

// encode renders a descriptor as a table. Button handlers are not exposed.
func (m *SettingsModule) encode(L *lua.LState, d settings.Descriptor) *lua.LTable {
	b := m.rt.Bridge()
	t := L.NewTable()
	t.RawSetString("type", lua.LString(d.Kind().String()))

	row := d.Common()
	t.RawSetString("text", lua.LString(row.Text))
	if row.Description != "" {
		t.RawSetString("description", lua.LString(row.Description))
	}
	if row.AttachTo != "" {
		t.RawSetString("attachTo", lua.LString(row.AttachTo))
	}
	if len(row.Badges) > 0 {
		badges := L.NewTable()
		for i, badge := range row.Badges {
			badges.RawSetInt(i+1, lua.LString(badge))
		}
		t.RawSetString("badges", badges)
	}
	if bd, ok := d.(settings.Bindable); ok {
		t.RawSetString("configItem", lua.LString(bd.ConfigItem()))
	}

	switch v := d.(type) {
	case *settings.Button:
		t.RawSetString("button", lua.LString(v.Label))
	case *settings.Select:
		opts := L.NewTable()
		for i, o := range v.Options {
			pair := L.NewTable()
			pair.RawSetInt(1, b.ToLuaValue(o.Value))
			pair.RawSetInt(2, lua.LString(o.Label))
			opts.RawSetInt(i+1, pair)
		}
		t.RawSetString("options", opts)
	case *settings.Range:
		t.RawSetString("min", lua.LNumber(v.Min))
		t.RawSetString("max", lua.LNumber(v.Max))
	case *settings.Input:
		t.RawSetString("inputType", lua.LString(v.EffectiveInputType()))
	}
	return t
}
