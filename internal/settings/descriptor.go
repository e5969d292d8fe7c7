package settings

import "reflect"

// Descriptor is one row of the settings page. The set of implementations is
// closed; switch on the concrete type or on Kind.
type Descriptor interface {
	Kind() Kind
	// Common returns the fields shared by every variant.
	Common() Row
	descriptor()
}

// Bindable is implemented by descriptors that edit a configuration key.
type Bindable interface {
	Descriptor
	ConfigItem() string
}

// Row holds the fields shared by all rows. Title only uses Text.
type Row struct {
	Text        string `validate:"required" lua:"text"`
	Description string
	Badges      []Badge
	// AttachTo names a key that must be exactly true for the row to show.
	AttachTo string
}

// Bound names the configuration key a bindable row edits.
type Bound struct {
	Key string `validate:"required" lua:"configItem"`
}

// ConfigItem returns the bound key.
func (b Bound) ConfigItem() string { return b.Key }

// Title is a section heading.
type Title struct {
	Text string `validate:"required" lua:"text"`
}

// Button is an action row with no bound value.
type Button struct {
	Row
	Label   string `validate:"required" lua:"button"`
	OnClick func() `validate:"required" lua:"onclick"`
}

// Boolean is an on/off switch.
type Boolean struct {
	Row
	Bound
}

// Select offers a fixed list of values.
type Select struct {
	Row
	Bound
	Options []Option `validate:"required" lua:"options"`
}

// Range is a slider between Min and Max. Either bound may be fractional.
type Range struct {
	Row
	Bound
	Min float64 `lua:"min"`
	Max float64 `validate:"gtfield=Min" lua:"max"`
}

// Input is a free-form field.
type Input struct {
	Row
	Bound
	// InputType is the renderer's input type; empty means "input".
	InputType string
}

// Color is a color picker.
type Color struct {
	Row
	Bound
}

// Option is one choice of a Select. Value is what gets written; Label is
// only for display.
type Option struct {
	Value any
	Label string
}

func (*Title) Kind() Kind   { return KindTitle }
func (*Button) Kind() Kind  { return KindButton }
func (*Boolean) Kind() Kind { return KindBoolean }
func (*Select) Kind() Kind  { return KindSelect }
func (*Range) Kind() Kind   { return KindRange }
func (*Input) Kind() Kind   { return KindInput }
func (*Color) Kind() Kind   { return KindColor }

func (t *Title) Common() Row   { return Row{Text: t.Text} }
func (b *Button) Common() Row  { return b.Row }
func (b *Boolean) Common() Row { return b.Row }
func (s *Select) Common() Row  { return s.Row }
func (r *Range) Common() Row   { return r.Row }
func (i *Input) Common() Row   { return i.Row }
func (c *Color) Common() Row   { return c.Row }

func (*Title) descriptor()   {}
func (*Button) descriptor()  {}
func (*Boolean) descriptor() {}
func (*Select) descriptor()  {}
func (*Range) descriptor()   {}
func (*Input) descriptor()   {}
func (*Color) descriptor()   {}

// DefaultInputType is used when an Input leaves InputType empty.
const DefaultInputType = "input"

// EffectiveInputType returns InputType or DefaultInputType.
func (i *Input) EffectiveInputType() string {
	if i.InputType == "" {
		return DefaultInputType
	}
	return i.InputType
}

// Index returns the position of the first option whose Value equals v, or
// -1. Labels are never compared. Values of uncomparable types never match.
func (s *Select) Index(v any) int {
	for i, opt := range s.Options {
		if equal(opt.Value, v) {
			return i
		}
	}
	return -1
}

// Label returns the label of the option matching v.
func (s *Select) Label(v any) (string, bool) {
	if i := s.Index(v); i >= 0 {
		return s.Options[i].Label, true
	}
	return "", false
}

func equal(a, b any) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if !reflect.TypeOf(a).Comparable() || !reflect.TypeOf(b).Comparable() {
		return false
	}
	return a == b
}
