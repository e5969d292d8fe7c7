package dialog

import (
	"errors"
	"testing"
	"time"
)

func TestKind_String(t *testing.T) {
	tests := []struct {
		k    Kind
		want string
	}{
		{KindAlert, "alert"},
		{KindConfirm, "confirm"},
		{KindPrompt, "prompt"},
		{KindWebview, "webview"},
		{Kind(9), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.k.String(); got != tt.want {
			t.Errorf("Kind(%d).String() = %q, want %q", tt.k, got, tt.want)
		}
	}
}

func TestSameSite(t *testing.T) {
	for _, name := range []string{"unspecified", "no_restriction", "lax", "strict"} {
		if got := ParseSameSite(name).String(); got != name {
			t.Errorf("round trip %q = %q", name, got)
		}
	}
	if ParseSameSite("bogus") != SameSiteUnspecified {
		t.Error("unknown policy should be unspecified")
	}
}

func TestCookie_Expires(t *testing.T) {
	c := Cookie{ExpirationDate: 1700000000.5}
	got := c.Expires()
	want := time.Unix(1700000000, int64(500*time.Millisecond))
	if !got.Equal(want) {
		t.Errorf("Expires() = %v, want %v", got, want)
	}

	if !(Cookie{ExpirationDate: 1700000000, Session: true}).Expires().IsZero() {
		t.Error("session cookie should have zero expiry")
	}
	if !(Cookie{}).Expires().IsZero() {
		t.Error("cookie without expiry should have zero time")
	}
}

func TestParseWebviewResult(t *testing.T) {
	data := []byte(`{
		"url": "https://example.com/done",
		"cookies": [
			{"domain": ".example.com", "expirationDate": 1700000000.25, "hostOnly": false,
			 "httpOnly": true, "name": "sid", "path": "/", "sameSite": "lax",
			 "secure": true, "session": false, "value": "abc"},
			{"name": "tmp", "session": true, "sameSite": "no_restriction"}
		]
	}`)

	res, err := ParseWebviewResult(data)
	if err != nil {
		t.Fatalf("ParseWebviewResult failed: %v", err)
	}
	if res.URL != "https://example.com/done" {
		t.Errorf("URL = %q", res.URL)
	}
	if len(res.Cookies) != 2 {
		t.Fatalf("len(Cookies) = %d, want 2", len(res.Cookies))
	}

	c := res.Cookies[0]
	if c.Domain != ".example.com" || c.Name != "sid" || c.Value != "abc" || c.Path != "/" {
		t.Errorf("cookie strings = %+v", c)
	}
	if !c.HTTPOnly || !c.Secure || c.HostOnly || c.Session {
		t.Errorf("cookie flags = %+v", c)
	}
	if c.SameSite != SameSiteLax || c.ExpirationDate != 1700000000.25 {
		t.Errorf("cookie SameSite/expiry = %v / %v", c.SameSite, c.ExpirationDate)
	}
	if res.Cookies[1].SameSite != SameSiteNoRestriction || !res.Cookies[1].Session {
		t.Errorf("second cookie = %+v", res.Cookies[1])
	}
}

func TestParseWebviewResult_Invalid(t *testing.T) {
	for _, in := range []string{`{"url":`, `[1,2]`, `"x"`} {
		if _, err := ParseWebviewResult([]byte(in)); err == nil {
			t.Errorf("ParseWebviewResult(%q) should fail", in)
		}
	}

	res, err := ParseWebviewResult([]byte(`{}`))
	if err != nil || res.URL != "" || res.Cookies != nil {
		t.Errorf("empty object = (%+v, %v)", res, err)
	}
}

func TestHeadless_Alert(t *testing.T) {
	h := NewHeadless()

	closed := 0
	h.Alert("hello", func() { closed++ })

	pending := h.Pending()
	if len(pending) != 1 || pending[0].Kind != KindAlert || pending[0].Text != "hello" {
		t.Fatalf("Pending() = %+v", pending)
	}
	if pending[0].ID == "" {
		t.Error("pending dialog should have an ID")
	}

	if err := h.Resolve(pending[0].ID, nil); err != nil {
		t.Fatal(err)
	}
	if closed != 1 {
		t.Errorf("closed = %d, want 1", closed)
	}

	if err := h.Resolve(pending[0].ID, nil); !errors.Is(err, ErrUnknownRequest) {
		t.Errorf("second Resolve = %v, want ErrUnknownRequest", err)
	}
	if closed != 1 {
		t.Error("callback must fire at most once")
	}
}

func TestHeadless_ConfirmOnlyOnAccept(t *testing.T) {
	h := NewHeadless()

	accepted := 0
	h.Confirm("sure?", func() { accepted++ })
	h.Confirm("really?", func() { accepted++ })
	h.Confirm("dismissed?", func() { accepted++ })

	p := h.Pending()
	if len(p) != 3 || p[0].Text != "sure?" || p[2].Text != "dismissed?" {
		t.Fatalf("Pending() order = %+v", p)
	}

	_ = h.Resolve(p[0].ID, false)
	_ = h.Resolve(p[1].ID, true)
	_ = h.Dismiss(p[2].ID)

	if accepted != 1 {
		t.Errorf("accepted = %d, want 1", accepted)
	}
	if len(h.Pending()) != 0 {
		t.Error("all dialogs should be closed")
	}
}

func TestHeadless_Prompt(t *testing.T) {
	h := NewHeadless()

	var got string
	h.Prompt("name?", func(s string) { got = s })
	id := h.Pending()[0].ID

	if err := h.Resolve(id, 42); !errors.Is(err, ErrBadAnswer) {
		t.Errorf("Resolve(42) = %v, want ErrBadAnswer", err)
	}
	if len(h.Pending()) != 1 {
		t.Error("bad answer should leave the dialog open")
	}

	if err := h.Resolve(id, "Ada"); err != nil {
		t.Fatal(err)
	}
	if got != "Ada" {
		t.Errorf("got %q, want Ada", got)
	}
}

func TestHeadless_Webview(t *testing.T) {
	h := NewHeadless()

	var requested Pending
	h.OnRequest(func(p Pending) { requested = p })

	var got WebviewResult
	h.Webview("https://example.com/login", &WebviewOptions{Width: 800, Height: 600}, func(r WebviewResult) { got = r })

	if requested.Kind != KindWebview || requested.URL != "https://example.com/login" || requested.Options.Width != 800 {
		t.Errorf("OnRequest saw %+v", requested)
	}

	if err := h.Resolve(requested.ID, []byte(`not json`)); err == nil {
		t.Error("invalid JSON answer should fail")
	}
	if err := h.Resolve(requested.ID, []byte(`{"url":"https://example.com/ok","cookies":[{"name":"a"}]}`)); err != nil {
		t.Fatal(err)
	}
	if got.URL != "https://example.com/ok" || len(got.Cookies) != 1 {
		t.Errorf("got %+v", got)
	}
}

func TestHeadless_NilCallbacks(t *testing.T) {
	h := NewHeadless()
	h.Alert("a", nil)
	h.Confirm("b", nil)
	h.Prompt("c", nil)
	h.Webview("d", nil, nil)

	answers := []any{nil, true, "x", WebviewResult{}}
	for i, p := range h.Pending() {
		if err := h.Resolve(p.ID, answers[i]); err != nil {
			t.Errorf("Resolve(%s) = %v", p.Kind, err)
		}
	}
}

func TestHeadless_DismissUnknown(t *testing.T) {
	if err := NewHeadless().Dismiss("nope"); !errors.Is(err, ErrUnknownRequest) {
		t.Errorf("Dismiss = %v, want ErrUnknownRequest", err)
	}
}
