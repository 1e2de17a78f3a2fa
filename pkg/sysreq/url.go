package sysreq

import (
	"errors"
	"net/url"
	"strings"
)

var errMissingHost = errors.New("missing host")

// ValidateURL checks that raw is an absolute http or https URL and returns it
// unchanged. The original string is what reaches the client, not a
// re-encoded form.
//
// Only the scheme and host matter here, so a stray '%' that is not a valid
// escape is tolerated the way the clients tolerate it, and "http:host" is read
// as "http://host".
func ValidateURL(raw string) (string, error) {
	u, err := parseLenient(raw)
	if err != nil {
		return "", &URLError{URL: raw, Err: err}
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return "", ErrInvalidURLScheme
	}
	if u.Host == "" && u.Opaque != "" {
		if hier, err := url.Parse(u.Scheme + "://" + u.Opaque); err == nil {
			u = hier
		}
	}
	if u.Host == "" {
		return "", &URLError{URL: raw, Err: errMissingHost}
	}
	return raw, nil
}

func parseLenient(raw string) (*url.URL, error) {
	u, err := url.Parse(raw)
	var escErr url.EscapeError
	if errors.As(err, &escErr) {
		return url.Parse(escapeStrayPercents(raw))
	}
	return u, err
}

// escapeStrayPercents rewrites every '%' not followed by two hex digits as %25.
func escapeStrayPercents(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i := 0; i < len(s); i++ {
		if s[i] == '%' && (i+2 >= len(s) || !isHex(s[i+1]) || !isHex(s[i+2])) {
			b.WriteString("%25")
			continue
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}
