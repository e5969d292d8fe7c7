package settings

import (
	"fmt"

	"github.com/dshills/cadence/internal/config/notify"
)

// Store is the part of the configuration store the settings page uses.
type Store interface {
	GetItem(key string) (any, bool)
	SetItem(key string, value any)
	Observe(key string, fn notify.Observer) *notify.Subscription
}

// Value returns the effective value bound to d. Title and Button rows, and
// bindable rows whose key has no value, report false. An absent value means
// "no value"; it is not coerced to the variant's zero value.
func Value(store Store, d Descriptor) (any, bool) {
	b, ok := d.(Bindable)
	if !ok {
		return nil, false
	}
	return store.GetItem(b.ConfigItem())
}

// Write stores v under d's bound key, firing the key's listener.
func Write(store Store, d Descriptor, v any) error {
	b, ok := d.(Bindable)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotBindable, kindOf(d))
	}
	store.SetItem(b.ConfigItem(), v)
	return nil
}

// Choose writes the value of the Select option at index i.
func Choose(store Store, s *Select, i int) error {
	if i < 0 || i >= len(s.Options) {
		return fmt.Errorf("option index %d out of range [0,%d)", i, len(s.Options))
	}
	store.SetItem(s.Key, s.Options[i].Value)
	return nil
}

// Click runs a Button's handler. A panic in the handler is returned as an
// error and does not propagate.
func Click(d Descriptor) (err error) {
	b, ok := d.(*Button)
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotClickable, kindOf(d))
	}

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("button %q handler panicked: %v", b.Label, r)
		}
	}()
	b.OnClick()
	return nil
}

func kindOf(d Descriptor) string {
	if d == nil {
		return "nil"
	}
	return d.Kind().String()
}
