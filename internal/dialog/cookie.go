package dialog

import (
	"fmt"
	"math"
	"time"

	"github.com/tidwall/gjson"
)

// SameSite is a cookie's same-site policy.
type SameSite uint8

const (
	SameSiteUnspecified SameSite = iota
	SameSiteNoRestriction
	SameSiteLax
	SameSiteStrict
)

var sameSiteNames = [...]string{
	SameSiteUnspecified:   "unspecified",
	SameSiteNoRestriction: "no_restriction",
	SameSiteLax:           "lax",
	SameSiteStrict:        "strict",
}

// String returns the wire name of the policy.
func (s SameSite) String() string {
	if int(s) < len(sameSiteNames) {
		return sameSiteNames[s]
	}
	return "unspecified"
}

// ParseSameSite maps a wire name to a policy. Unknown names are unspecified.
func ParseSameSite(s string) SameSite {
	for i, name := range sameSiteNames {
		if name == s {
			return SameSite(i)
		}
	}
	return SameSiteUnspecified
}

// Cookie is a cookie captured by a webview.
type Cookie struct {
	Domain string
	// ExpirationDate is seconds since the Unix epoch; the fraction is sub-second.
	ExpirationDate float64
	HostOnly       bool
	HTTPOnly       bool
	Name           string
	Path           string
	SameSite       SameSite
	Secure         bool
	Session        bool
	Value          string
}

// Expires converts ExpirationDate to a time. Session cookies and cookies
// without an expiration return the zero time.
func (c Cookie) Expires() time.Time {
	if c.Session || c.ExpirationDate <= 0 {
		return time.Time{}
	}
	sec, frac := math.Modf(c.ExpirationDate)
	return time.Unix(int64(sec), int64(frac*float64(time.Second)))
}

// ParseWebviewResult decodes a webview completion payload of the form
// {"url": "...", "cookies": [{...}, ...]}.
func ParseWebviewResult(data []byte) (WebviewResult, error) {
	if !gjson.ValidBytes(data) {
		return WebviewResult{}, fmt.Errorf("webview result: invalid JSON")
	}

	doc := gjson.ParseBytes(data)
	if !doc.IsObject() {
		return WebviewResult{}, fmt.Errorf("webview result: expected object")
	}

	res := WebviewResult{URL: doc.Get("url").String()}
	doc.Get("cookies").ForEach(func(_, c gjson.Result) bool {
		res.Cookies = append(res.Cookies, parseCookie(c))
		return true
	})
	return res, nil
}

func parseCookie(c gjson.Result) Cookie {
	return Cookie{
		Domain:         c.Get("domain").String(),
		ExpirationDate: c.Get("expirationDate").Float(),
		HostOnly:       c.Get("hostOnly").Bool(),
		HTTPOnly:       c.Get("httpOnly").Bool(),
		Name:           c.Get("name").String(),
		Path:           c.Get("path").String(),
		SameSite:       ParseSameSite(c.Get("sameSite").String()),
		Secure:         c.Get("secure").Bool(),
		Session:        c.Get("session").Bool(),
		Value:          c.Get("value").String(),
	}
}
