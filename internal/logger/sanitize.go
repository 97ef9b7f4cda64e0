package logger

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"
)

// MaxLogStringLength defines the maximum length for upstream-provided strings in logs
const MaxLogStringLength = 200

var unprintable = regexp.MustCompile(`[^\p{L}\p{N}\p{P}\p{S}\p{Z}]`)

// SanitizeLogString makes an upstream-controlled string safe to log.
// Control characters become spaces and long values are truncated.
func SanitizeLogString(input string) string {
	if input == "" {
		return ""
	}

	if len(input) > MaxLogStringLength {
		// Cut on a rune boundary so no partial UTF-8 sequence reaches the log
		cut := MaxLogStringLength
		for cut > 0 && !utf8.RuneStart(input[cut]) {
			cut--
		}
		input = input[:cut] + "... (truncated)"
	}

	// Pre-process CRLF to avoid double spaces
	input = strings.ReplaceAll(input, "\r\n", "\n")

	sanitized := strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return ' '
		}
		return r
	}, input)

	return unprintable.ReplaceAllString(sanitized, "")
}

// RedactURL drops credentials and the query string from a URL before logging
func RedactURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return "(unparseable url)"
	}
	u.User = nil
	if u.RawQuery != "" {
		u.RawQuery = "redacted"
	}
	u.Fragment = ""
	return u.String()
}
