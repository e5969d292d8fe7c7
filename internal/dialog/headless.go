package dialog

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Pending is an open dialog awaiting an answer.
type Pending struct {
	ID      string
	Kind    Kind
	Text    string
	URL     string
	Options *WebviewOptions
	Opened  time.Time

	seq     uint64
	resolve func(answer any)
}

// Headless is a Host with no UI. Dialogs are queued as Pending records and
// completed by Resolve or Dismiss, from a CLI or a test.
type Headless struct {
	mu        sync.Mutex
	pending   map[string]*Pending
	seq       uint64
	onRequest func(Pending)
}

// NewHeadless creates an empty headless host.
func NewHeadless() *Headless {
	return &Headless{pending: make(map[string]*Pending)}
}

// OnRequest sets a hook that runs when a dialog is opened.
func (h *Headless) OnRequest(fn func(Pending)) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.onRequest = fn
}

// Alert implements Host. Resolve with nil.
func (h *Headless) Alert(text string, cb func()) {
	h.open(Pending{Kind: KindAlert, Text: text}, func(any) {
		if cb != nil {
			cb()
		}
	})
}

// Confirm implements Host. Resolve with a bool; cb runs only for true.
func (h *Headless) Confirm(text string, cb func()) {
	h.open(Pending{Kind: KindConfirm, Text: text}, func(answer any) {
		if answer.(bool) && cb != nil {
			cb()
		}
	})
}

// Prompt implements Host. Resolve with a string.
func (h *Headless) Prompt(text string, cb func(string)) {
	h.open(Pending{Kind: KindPrompt, Text: text}, func(answer any) {
		if cb != nil {
			cb(answer.(string))
		}
	})
}

// Webview implements Host. Resolve with a WebviewResult or its JSON bytes.
func (h *Headless) Webview(url string, opts *WebviewOptions, cb func(WebviewResult)) {
	h.open(Pending{Kind: KindWebview, URL: url, Options: opts}, func(answer any) {
		res, _ := asWebviewResult(answer)
		if cb != nil {
			cb(res)
		}
	})
}

func (h *Headless) open(p Pending, resolve func(any)) {
	p.ID = uuid.New().String()
	p.Opened = time.Now()
	p.resolve = resolve

	h.mu.Lock()
	h.seq++
	p.seq = h.seq
	h.pending[p.ID] = &p
	hook := h.onRequest
	h.mu.Unlock()

	if hook != nil {
		hook(p)
	}
}

// Pending returns the open dialogs, oldest first.
func (h *Headless) Pending() []Pending {
	h.mu.Lock()
	defer h.mu.Unlock()

	out := make([]Pending, 0, len(h.pending))
	for _, p := range h.pending {
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].seq < out[j].seq })
	return out
}

// Resolve completes dialog id with answer and runs its callback. A dialog
// can be completed once; an answer of the wrong type leaves it open.
func (h *Headless) Resolve(id string, answer any) error {
	h.mu.Lock()
	p, ok := h.pending[id]
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}

	if err := p.check(answer); err != nil {
		return err
	}

	h.mu.Lock()
	if _, still := h.pending[id]; !still {
		h.mu.Unlock()
		return fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}
	delete(h.pending, id)
	h.mu.Unlock()

	p.resolve(answer)
	return nil
}

// Dismiss closes dialog id without answering. For alert the callback still
// runs, since closing is its only completion; the others get nothing.
func (h *Headless) Dismiss(id string) error {
	h.mu.Lock()
	p, ok := h.pending[id]
	if ok {
		delete(h.pending, id)
	}
	h.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownRequest, id)
	}

	if p.Kind == KindAlert {
		p.resolve(nil)
	}
	return nil
}

// check validates the answer type without running the callback.
func (p *Pending) check(answer any) error {
	switch p.Kind {
	case KindAlert:
		if answer != nil {
			return fmt.Errorf("%w: alert takes no answer", ErrBadAnswer)
		}
	case KindConfirm:
		if _, ok := answer.(bool); !ok {
			return fmt.Errorf("%w: confirm expects bool, got %T", ErrBadAnswer, answer)
		}
	case KindPrompt:
		if _, ok := answer.(string); !ok {
			return fmt.Errorf("%w: prompt expects string, got %T", ErrBadAnswer, answer)
		}
	case KindWebview:
		_, err := asWebviewResult(answer)
		return err
	}
	return nil
}

func asWebviewResult(answer any) (WebviewResult, error) {
	switch v := answer.(type) {
	case WebviewResult:
		return v, nil
	case []byte:
		return ParseWebviewResult(v)
	default:
		return WebviewResult{}, fmt.Errorf("%w: webview expects WebviewResult, got %T", ErrBadAnswer, answer)
	}
}

var _ Host = (*Headless)(nil)
