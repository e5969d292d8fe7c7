// Package dialog defines the modal dialogs extensions can open.
//
// Every call returns immediately. Completion is reported through the
// optional callback at most once, or never if the user walks away.
// Stacking of concurrent dialogs is up to the Host.
package dialog

import "errors"

// Errors returned by dialog hosts.
var (
	// ErrUnknownRequest indicates no pending dialog has the given ID.
	ErrUnknownRequest = errors.New("unknown dialog request")

	// ErrBadAnswer indicates an answer of the wrong type for the dialog kind.
	ErrBadAnswer = errors.New("answer does not match dialog kind")
)

// Host shows dialogs on behalf of extensions.
type Host interface {
	// Alert shows text; cb runs when the dialog is closed.
	Alert(text string, cb func())
	// Confirm asks for confirmation; cb runs only if the user accepts.
	Confirm(text string, cb func())
	// Prompt asks for a line of text; cb receives it if the user accepts.
	Prompt(text string, cb func(input string))
	// Webview opens url; cb receives the final URL and cookies when the
	// user finishes. opts may be nil.
	Webview(url string, opts *WebviewOptions, cb func(WebviewResult))
}

// Kind identifies the dialog type.
type Kind uint8

const (
	KindAlert Kind = iota
	KindConfirm
	KindPrompt
	KindWebview
)

// String returns the dialog function name.
func (k Kind) String() string {
	switch k {
	case KindAlert:
		return "alert"
	case KindConfirm:
		return "confirm"
	case KindPrompt:
		return "prompt"
	case KindWebview:
		return "webview"
	default:
		return "unknown"
	}
}

// WebviewOptions sizes the webview window in pixels.
type WebviewOptions struct {
	Width  int
	Height int
}

// WebviewResult is what a finished webview reports.
type WebviewResult struct {
	URL     string
	Cookies []Cookie
}
