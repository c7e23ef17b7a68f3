package payment

import (
	"testing"
	"time"
)

func fixedClock() time.Time {
	return time.Date(2025, time.January, 1, 12, 0, 0, 0, time.UTC)
}

func validCourierForm() PaymentForm {
	f := NewForm()
	f.CardName = "Ion Popescu"
	f.CardNumber = "4111 1111 1111 1111"
	f.Expiry = "12/27"
	f.CVV = "123"
	f.Delivery.Courier.Address.Street = "str. Ștefan cel Mare 1"
	f.Delivery.Courier.Address.City = "Chișinău"
	f.Delivery.Courier.Address.PostalCode = "MD-2001"
	f.Delivery.Courier.ContactPhone = "069 123 4567"
	return f
}

func TestValidate_ValidCourierForm(t *testing.T) {
	v := NewValidator(fixedClock)

	if errs := v.Validate(validCourierForm()); errs != nil {
		t.Fatalf("expected valid, got %v", errs)
	}
}

func TestValidate_ValidPickupForm(t *testing.T) {
	v := NewValidator(fixedClock)

	f := validCourierForm()
	f.Delivery = Delivery{
		Method: DeliveryPickup,
		Pickup: &PickupDetails{PickupPoint: "botanica", ContactPhone: "0791234567"},
	}

	if errs := v.Validate(f); errs != nil {
		t.Fatalf("expected valid, got %v", errs)
	}
}

func TestValidate_ReportsEveryFieldAtOnce(t *testing.T) {
	v := NewValidator(fixedClock)

	errs := v.Validate(NewForm())

	want := map[string]string{
		"cardName":             "payment.errors.cardNameRequired",
		"cardNumber":           "payment.errors.cardNumberRequired",
		"expiryDate":           "payment.errors.expiryDateRequired",
		"cvv":                  "payment.errors.cvvRequired",
		"courier.street":       "payment.errors.streetRequired",
		"courier.city":         "payment.errors.cityRequired",
		"courier.postalCode":   "payment.errors.postalCodeRequired",
		"courier.contactPhone": "payment.errors.phoneRequired",
	}
	if len(errs) != len(want) {
		t.Fatalf("expected %d errors, got %d: %v", len(want), len(errs), errs)
	}
	for field, key := range want {
		if errs[field] != key {
			t.Errorf("field %s: expected %q, got %q", field, key, errs[field])
		}
	}
}

func TestValidate_BlankNameIsRequired(t *testing.T) {
	v := NewValidator(fixedClock)
	f := validCourierForm()
	f.CardName = "   "

	if got := v.Validate(f)["cardName"]; got != "payment.errors.cardNameRequired" {
		t.Fatalf("expected cardNameRequired, got %q", got)
	}
}

func TestValidate_CardNumberMustBe16Digits(t *testing.T) {
	v := NewValidator(fixedClock)

	cases := map[string]bool{
		"4111111111111111":    true,
		"4111 1111 1111 1111": true,
		"4222222222222":       false, // 13-digit visa
		"378282246310005":     false, // 15-digit amex
		"6759649826438453123": false, // 19-digit maestro
		"4111-1111-1111-1111": false,
		"411111111111111a":    false,
	}
	for number, ok := range cases {
		f := validCourierForm()
		f.CardNumber = number
		if number == "378282246310005" {
			f.CVV = "1234"
		}
		got, failed := v.Validate(f)["cardNumber"]
		if ok && failed {
			t.Errorf("%q: expected valid, got %q", number, got)
		}
		if !ok && got != "payment.errors.cardNumberInvalid" {
			t.Errorf("%q: expected cardNumberInvalid, got %q", number, got)
		}
	}
}

func TestValidate_ExpiryScenarios(t *testing.T) {
	v := NewValidator(fixedClock)

	cases := map[string]string{
		"02/24": "payment.errors.expired",
		"13/30": "payment.errors.expiryMonthInvalid",
		"00/30": "payment.errors.expiryMonthInvalid",
		"02/46": "payment.errors.expiryYearInvalid",
		"2/26":  "payment.errors.expiryDateInvalid",
		"0226":  "payment.errors.expiryDateInvalid",
		"01/25": "",
		"12/45": "",
	}
	for expiry, want := range cases {
		f := validCourierForm()
		f.Expiry = expiry
		if got := v.Validate(f)["expiryDate"]; got != want {
			t.Errorf("%q: expected %q, got %q", expiry, want, got)
		}
	}
}

func TestCheckExpiry_SameYearEarlierMonth(t *testing.T) {
	now := time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)

	if got := CheckExpiry("05/25", now); got != ExpiryExpired {
		t.Fatalf("expected expired, got %q", got)
	}
	if got := CheckExpiry("06/25", now); got != ExpiryOK {
		t.Fatalf("expected ok for current month, got %q", got)
	}
}

func TestValidate_CVVLengthFollowsNetwork(t *testing.T) {
	v := NewValidator(fixedClock)

	f := validCourierForm()
	f.CVV = "1234"
	if got := v.Validate(f)["cvv"]; got != "payment.errors.cvvInvalid" {
		t.Fatalf("visa with 4-digit cvv: expected cvvInvalid, got %q", got)
	}

	f.CVV = "12a"
	if got := v.Validate(f)["cvv"]; got != "payment.errors.cvvInvalid" {
		t.Fatalf("non-digit cvv: expected cvvInvalid, got %q", got)
	}

	f.CardNumber = "378282246310005"
	f.CVV = "1234"
	if _, failed := v.Validate(f)["cvv"]; failed {
		t.Fatal("amex with 4-digit cvv should pass the cvv rule")
	}
}

func TestValidate_Phone(t *testing.T) {
	v := NewValidator(fixedClock)

	cases := map[string]string{
		"069 123 4567": "",
		"0791234567":   "",
		"069123456":    "payment.errors.phoneInvalid",
		"0591234567":   "payment.errors.phoneInvalid",
		"+37369123456": "payment.errors.phoneInvalid",
		"   ":          "payment.errors.phoneRequired",
	}
	for phone, want := range cases {
		f := validCourierForm()
		f.Delivery.Courier.ContactPhone = phone
		if got := v.Validate(f)["courier.contactPhone"]; got != want {
			t.Errorf("%q: expected %q, got %q", phone, want, got)
		}
	}
}

func TestValidate_PickupPoint(t *testing.T) {
	v := NewValidator(fixedClock)

	f := validCourierForm()
	f.Delivery = Delivery{Method: DeliveryPickup, Pickup: &PickupDetails{ContactPhone: "0691234567"}}
	if got := v.Validate(f)["pickup.pickupPoint"]; got != "payment.errors.pickupPointRequired" {
		t.Fatalf("expected pickupPointRequired, got %q", got)
	}

	f.Delivery.Pickup.PickupPoint = "airport"
	if got := v.Validate(f)["pickup.pickupPoint"]; got != "payment.errors.pickupPointInvalid" {
		t.Fatalf("expected pickupPointInvalid, got %q", got)
	}
}

func TestValidate_InactiveVariantIsIgnored(t *testing.T) {
	v := NewValidator(fixedClock)

	f := validCourierForm()
	f.Delivery.Pickup = &PickupDetails{PickupPoint: "nowhere"}

	if errs := v.Validate(f); errs != nil {
		t.Fatalf("pickup details must not be validated for courier delivery, got %v", errs)
	}
}

func TestValidate_DeliveryVariantRequired(t *testing.T) {
	v := NewValidator(fixedClock)

	f := validCourierForm()
	f.Delivery = Delivery{Method: DeliveryPickup}
	if got := v.Validate(f)["pickup"]; got != "payment.errors.deliveryDetailsRequired" {
		t.Fatalf("expected deliveryDetailsRequired, got %q", got)
	}

	f.Delivery = Delivery{Method: "drone"}
	if got := v.Validate(f)["deliveryMethod"]; got != "payment.errors.deliveryMethodInvalid" {
		t.Fatalf("expected deliveryMethodInvalid, got %q", got)
	}
}

func TestValidate_DoesNotMutateInput(t *testing.T) {
	v := NewValidator(fixedClock)

	f := validCourierForm()
	f.Delivery.Pickup = &PickupDetails{PickupPoint: "center"}
	v.Validate(f)

	if f.CardNumber != "4111 1111 1111 1111" || f.Delivery.Pickup == nil {
		t.Fatalf("form was modified: %+v", f)
	}
}

func TestFieldErrors_Translate(t *testing.T) {
	errs := FieldErrors{"cvv": "payment.errors.cvvRequired"}
	got := errs.Translate(func(key string) string { return "T(" + key + ")" })

	if got["cvv"] != "T(payment.errors.cvvRequired)" {
		t.Fatalf("unexpected translation: %v", got)
	}
	if !errs.Prefixed("cvv") || errs.Prefixed("courier") {
		t.Fatal("unexpected Prefixed result")
	}
}
