package payment

import (
	"regexp"
	"strconv"
	"time"
)

// ExpiryReason names why an expiry date was rejected.
type ExpiryReason string

const (
	ExpiryOK         ExpiryReason = ""
	ExpiryFormat     ExpiryReason = "expiry_format"
	ExpiryYearRange  ExpiryReason = "expiry_year"
	ExpiryMonthRange ExpiryReason = "expiry_month"
	ExpiryExpired    ExpiryReason = "expiry_expired"
)

const maxExpiryYearsAhead = 20

var expiryPattern = regexp.MustCompile(`^\d{2}/\d{2}$`)

// CheckExpiry validates an MM/YY expiry against now. Checks run in order:
// format, years ahead, month, then whether the card is already expired.
func CheckExpiry(expiry string, now time.Time) ExpiryReason {
	if !expiryPattern.MatchString(expiry) {
		return ExpiryFormat
	}
	month, _ := strconv.Atoi(expiry[:2])
	year, _ := strconv.Atoi(expiry[3:])

	currentYear := now.Year() % 100
	currentMonth := int(now.Month())

	if year > currentYear+maxExpiryYearsAhead {
		return ExpiryYearRange
	}
	if month < 1 || month > 12 {
		return ExpiryMonthRange
	}
	if year < currentYear || (year == currentYear && month < currentMonth) {
		return ExpiryExpired
	}
	return ExpiryOK
}
