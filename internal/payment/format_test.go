package payment

import "testing"

func TestFormatters(t *testing.T) {
	cases := []struct {
		name string
		fn   func(string) string
		in   string
		want string
	}{
		{"card grouped", FormatCardNumber, "4111111111111111", "4111 1111 1111 1111"},
		{"card partial", FormatCardNumber, "411111", "4111 11"},
		{"card capped", FormatCardNumber, "4111-1111-1111-1111-999", "4111 1111 1111 1111"},
		{"expiry short", FormatExpiry, "02", "02"},
		{"expiry slash", FormatExpiry, "022", "02/2"},
		{"expiry full", FormatExpiry, "02/267", "02/26"},
		{"cvv", SanitizeCVV, "1a2b3c45", "1234"},
		{"phone short", FormatPhone, "069", "069"},
		{"phone mid", FormatPhone, "06912", "069 12"},
		{"phone full", FormatPhone, "0691234567", "069 123 4567"},
		{"phone capped", FormatPhone, "069-123-456-789", "069 123 4567"},
	}

	for _, tc := range cases {
		if got := tc.fn(tc.in); got != tc.want {
			t.Errorf("%s: expected %q, got %q", tc.name, tc.want, got)
		}
	}
}

func TestNewFormDefaults(t *testing.T) {
	f := NewForm()
	if f.Delivery.Method != DeliveryCourier || f.Delivery.Courier == nil || f.Delivery.Pickup != nil {
		t.Fatalf("unexpected default delivery: %+v", f.Delivery)
	}
	if f.Delivery.Courier.Address.Region != DefaultRegion {
		t.Fatalf("expected default region %q, got %q", DefaultRegion, f.Delivery.Courier.Address.Region)
	}

	c := f.Clone()
	c.Delivery.Courier.Address.Street = "changed"
	if f.Delivery.Courier.Address.Street != "" {
		t.Fatal("Clone must not share courier details")
	}
}
