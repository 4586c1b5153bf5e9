// Package sanitize cleans and bounds-checks user supplied strings before
// they reach the rest of the system.
package sanitize

import (
	"html"
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/mozillazg/go-unidecode"
)

// Limits applied to user input.
const (
	MaxSearchTerms    = 20
	MaxSearchTermLen  = 100
	MaxShopNames      = 50
	MaxShopNameLen    = 50
	MinEntryLen       = 2
	MinUsernameLen    = 3
	MaxUsernameLen    = 50
	MinPasswordLen    = 6
	MaxPasswordLen    = 128
	MaxEmailLen       = 254
	DefaultTextMaxLen = 1000
)

var (
	usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)
	emailPattern    = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	shopNameStrip   = regexp.MustCompile(`[^a-zA-Z0-9\s_-]`)
)

var safeHosts = []string{"etsy.com", "etsystatic.com"}

// Text trims and HTML-escapes s, keeping at most maxLength runes of escaped
// output. Entities are never split. Input that is already escaped is not
// escaped twice, so Text(Text(s, n), n) == Text(s, n).
func Text(s string, maxLength int) string {
	s = strings.TrimSpace(html.UnescapeString(s))
	if s == "" || maxLength <= 0 {
		return ""
	}

	var b strings.Builder
	n := 0
	for _, r := range s {
		piece := html.EscapeString(string(r))
		size := utf8.RuneCountInString(piece)
		if n+size > maxLength {
			break
		}
		b.WriteString(piece)
		n += size
	}
	return strings.TrimSpace(b.String())
}

// Keyword prepares a search keyword for an outbound query: entities are
// decoded, control characters dropped, whitespace collapsed and the result
// cut to maxLength runes.
func Keyword(s string, maxLength int) string {
	s = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, html.UnescapeString(s))
	s = strings.Join(strings.Fields(s), " ")
	if r := []rune(s); len(r) > maxLength {
		s = strings.TrimSpace(string(r[:max(maxLength, 0)]))
	}
	return s
}

// Username validates and returns the trimmed username.
func Username(s string) (string, error) {
	s = strings.TrimSpace(s)
	n := utf8.RuneCountInString(s)
	switch {
	case n < MinUsernameLen:
		return "", invalid("username", "Username must be at least 3 characters")
	case n > MaxUsernameLen:
		return "", invalid("username", "Username must be less than 50 characters")
	case !usernamePattern.MatchString(s):
		return "", invalid("username", "Username can only contain letters, numbers, hyphens, and underscores")
	}
	return s, nil
}

// Password checks the password length. The password itself is never altered.
func Password(s string) error {
	n := utf8.RuneCountInString(s)
	switch {
	case n == 0:
		return invalid("password", "Password is required")
	case n < MinPasswordLen:
		return invalid("password", "Password must be at least 6 characters")
	case n > MaxPasswordLen:
		return invalid("password", "Password is too long")
	}
	return nil
}

// Email validates an optional email address. Empty is valid.
func Email(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	if !emailPattern.MatchString(s) {
		return "", invalid("email", "Invalid email format")
	}
	if len(s) > MaxEmailLen {
		return "", invalid("email", "Email is too long")
	}
	return s, nil
}

// SearchTerms cleans a decoded JSON list of search terms. Only the first
// MaxSearchTerms entries are considered; non-strings and entries shorter
// than MinEntryLen after cleaning are dropped. It fails only when a
// non-empty input yields nothing usable.
func SearchTerms(list []any) ([]string, error) {
	if len(list) == 0 {
		return []string{}, nil
	}
	if len(list) > MaxSearchTerms {
		list = list[:MaxSearchTerms]
	}

	clean := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = Text(s, MaxSearchTermLen)
		if utf8.RuneCountInString(s) < MinEntryLen {
			continue
		}
		clean = append(clean, s)
	}

	if len(clean) == 0 {
		return nil, invalid("search_terms", "No valid search terms found")
	}
	return clean, nil
}

// ShopNames cleans a decoded JSON list of shop names for a watchlist.
// Names are transliterated to ASCII and stripped to letters, digits,
// spaces, hyphens and underscores. It never fails.
func ShopNames(list []any) []string {
	if len(list) > MaxShopNames {
		list = list[:MaxShopNames]
	}

	clean := make([]string, 0, len(list))
	for _, v := range list {
		s, ok := v.(string)
		if !ok {
			continue
		}
		s = unidecode.Unidecode(strings.TrimSpace(s))
		s = strings.TrimSpace(shopNameStrip.ReplaceAllString(s, ""))
		if len(s) > MaxShopNameLen {
			s = strings.TrimSpace(s[:MaxShopNameLen])
		}
		if len(s) < MinEntryLen {
			continue
		}
		clean = append(clean, s)
	}
	return clean
}

// Strings converts a string slice to the []any shape the list cleaners take.
func Strings(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// Truncate shortens s to maxLength runes, ending with suffix when cut.
func Truncate(s string, maxLength int, suffix string) string {
	r := []rune(s)
	if len(r) <= maxLength {
		return s
	}
	keep := maxLength - utf8.RuneCountInString(suffix)
	if keep <= 0 {
		return string(r[:maxLength])
	}
	return string(r[:keep]) + suffix
}

// IsSafeURL reports whether raw is an http(s) URL on a marketplace host.
func IsSafeURL(raw string) bool {
	if raw == "" {
		return false
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "https" && u.Scheme != "http") {
		return false
	}
	host := strings.ToLower(u.Hostname())
	for _, h := range safeHosts {
		if host == h || strings.HasSuffix(host, "."+h) {
			return true
		}
	}
	return false
}
