package payment

import (
	"strings"
	"unicode"
)

const (
	maxCardDigits  = 16
	maxCVVDigits   = 4
	maxPhoneDigits = 10
)

func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

func digits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

func allDigits(s string) bool {
	return s != "" && digits(s) == s
}

// FormatCardNumber keeps up to 16 digits and groups them by four.
func FormatCardNumber(value string) string {
	d := digits(value)
	if len(d) > maxCardDigits {
		d = d[:maxCardDigits]
	}
	var b strings.Builder
	for i := 0; i < len(d); i += 4 {
		if i > 0 {
			b.WriteByte(' ')
		}
		b.WriteString(d[i:min(i+4, len(d))])
	}
	return b.String()
}

// FormatExpiry inserts the slash once a third digit is typed: "0226" -> "02/26".
func FormatExpiry(value string) string {
	d := digits(value)
	if len(d) < 3 {
		return d
	}
	return d[:2] + "/" + d[2:min(4, len(d))]
}

func SanitizeCVV(value string) string {
	d := digits(value)
	if len(d) > maxCVVDigits {
		d = d[:maxCVVDigits]
	}
	return d
}

// FormatPhone groups a local number as "069 123 4567".
func FormatPhone(value string) string {
	d := digits(value)
	if len(d) > maxPhoneDigits {
		d = d[:maxPhoneDigits]
	}
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + " " + d[3:]
	default:
		return d[:3] + " " + d[3:6] + " " + d[6:]
	}
}
