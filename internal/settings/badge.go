package settings

// Badge is a small tag shown beside a row.
type Badge string

// Recognized badges. Anything else is markup supplied by the extension.
const (
	BadgeExperimental Badge = "experimental"
	BadgePending      Badge = "pending"
)

// Recognized reports whether b is one of the built-in markers.
func (b Badge) Recognized() bool {
	return b == BadgeExperimental || b == BadgePending
}

// Markup returns the badge content for a renderer that accepts markup.
// Unrecognized badges are returned verbatim, unescaped.
func (b Badge) Markup() string {
	return string(b)
}
