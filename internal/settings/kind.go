package settings

// Kind identifies a descriptor variant.
type Kind uint8

const (
	KindTitle Kind = iota
	KindButton
	KindBoolean
	KindSelect
	KindRange
	KindInput
	KindColor
)

var kindNames = [...]string{
	KindTitle:   "title",
	KindButton:  "button",
	KindBoolean: "boolean",
	KindSelect:  "select",
	KindRange:   "range",
	KindInput:   "input",
	KindColor:   "color",
}

// String returns the variant's type tag.
func (k Kind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return "unknown"
}

// Bindable reports whether descriptors of this kind carry a config key.
func (k Kind) Bindable() bool {
	switch k {
	case KindBoolean, KindSelect, KindRange, KindInput, KindColor:
		return true
	default:
		return false
	}
}

// ParseKind maps a type tag to its Kind.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), true
		}
	}
	return 0, false
}
