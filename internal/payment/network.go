package payment

import "regexp"

type Network string

const (
	NetworkUnknown    Network = ""
	NetworkVisa       Network = "visa"
	NetworkMastercard Network = "mastercard"
	NetworkAmex       Network = "amex"
	NetworkDiscover   Network = "discover"
	NetworkMaestro    Network = "maestro"
)

// networkPatterns is matched in order; the first match wins.
var networkPatterns = []struct {
	network Network
	pattern *regexp.Regexp
}{
	{NetworkVisa, regexp.MustCompile(`^4\d{12}(?:\d{3})?$`)},
	{NetworkMastercard, regexp.MustCompile(`^5[1-5]\d{14}$`)},
	{NetworkAmex, regexp.MustCompile(`^3[47]\d{13}$`)},
	{NetworkDiscover, regexp.MustCompile(`^6(?:011|5\d{2})\d{12}$`)},
	{NetworkMaestro, regexp.MustCompile(`^(?:5018|5020|5038|6304|6759|6761|6763)\d{8,15}$`)},
}

// DetectNetwork identifies the card network from a card number. Whitespace
// is ignored and nothing is detected for 4 digits or fewer.
func DetectNetwork(cardNumber string) Network {
	n := StripSpaces(cardNumber)
	if len(n) <= 4 {
		return NetworkUnknown
	}
	for _, np := range networkPatterns {
		if np.pattern.MatchString(n) {
			return np.network
		}
	}
	return NetworkUnknown
}

// CVVLength is the number of CVV digits the network expects.
func (n Network) CVVLength() int {
	if n == NetworkAmex {
		return 4
	}
	return 3
}
