package payment

import (
	"errors"
	"reflect"
	"regexp"
	"strings"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
)

var phonePattern = regexp.MustCompile(`^0[67]\d{8}$`)

// FieldErrors maps a form field ("cardNumber", "courier.street") to the
// catalog key of its message.
type FieldErrors map[string]string

// Translate resolves every message key with t.
func (fe FieldErrors) Translate(t func(key string) string) map[string]string {
	out := make(map[string]string, len(fe))
	for field, key := range fe {
		out[field] = t(key)
	}
	return out
}

// Prefixed reports whether any error belongs to field or one of its children.
func (fe FieldErrors) Prefixed(prefix string) bool {
	for field := range fe {
		if field == prefix || strings.HasPrefix(field, prefix+".") {
			return true
		}
	}
	return false
}

var messageKeys = map[string]string{
	"cardName.required":                      "payment.errors.cardNameRequired",
	"cardNumber.required":                    "payment.errors.cardNumberRequired",
	"cardNumber":                             "payment.errors.cardNumberInvalid",
	"expiryDate.required":                    "payment.errors.expiryDateRequired",
	"expiryDate." + string(ExpiryFormat):     "payment.errors.expiryDateInvalid",
	"expiryDate." + string(ExpiryYearRange):  "payment.errors.expiryYearInvalid",
	"expiryDate." + string(ExpiryMonthRange): "payment.errors.expiryMonthInvalid",
	"expiryDate." + string(ExpiryExpired):    "payment.errors.expired",
	"cvv.required":                           "payment.errors.cvvRequired",
	"cvv":                                    "payment.errors.cvvInvalid",
	"deliveryMethod":                         "payment.errors.deliveryMethodInvalid",
	"courier":                                "payment.errors.deliveryDetailsRequired",
	"pickup":                                 "payment.errors.deliveryDetailsRequired",
	"courier.street":                         "payment.errors.streetRequired",
	"courier.city":                           "payment.errors.cityRequired",
	"courier.postalCode":                     "payment.errors.postalCodeRequired",
	"courier.contactPhone.required":          "payment.errors.phoneRequired",
	"courier.contactPhone":                   "payment.errors.phoneInvalid",
	"pickup.contactPhone.required":           "payment.errors.phoneRequired",
	"pickup.contactPhone":                    "payment.errors.phoneInvalid",
	"pickup.pickupPoint.required":            "payment.errors.pickupPointRequired",
	"pickup.pickupPoint":                     "payment.errors.pickupPointInvalid",
}

// Validator checks a PaymentForm in one pass and reports every invalid field.
type Validator struct {
	validate *validatorv10.Validate
	nowFunc  func() time.Time
}

// NewValidator returns a validator using now as its clock; nil means time.Now.
func NewValidator(now func() time.Time) *Validator {
	if now == nil {
		now = time.Now
	}
	v := &Validator{validate: validatorv10.New(), nowFunc: now}

	v.validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.validate.RegisterValidation("mdphone", func(fl validatorv10.FieldLevel) bool {
		return phonePattern.MatchString(fl.Field().String())
	})
	_ = v.validate.RegisterValidation("pickuppoint", func(fl validatorv10.FieldLevel) bool {
		return IsPickupPoint(fl.Field().String())
	})

	// card fields that depend on each other or on the clock
	v.validate.RegisterStructValidation(v.paymentFormStructValidation, PaymentForm{})
	// the active delivery variant must be present
	v.validate.RegisterStructValidation(deliveryStructValidation, Delivery{})

	return v
}

// Validate returns nil when the form is valid.
func (v *Validator) Validate(form PaymentForm) FieldErrors {
	err := v.validate.Struct(form.normalized())
	if err == nil {
		return nil
	}

	var verrs validatorv10.ValidationErrors
	if !errors.As(err, &verrs) {
		return FieldErrors{"form": "payment.errors.paymentFailed"}
	}

	out := FieldErrors{}
	for _, fe := range verrs {
		field := fieldKey(fe.Namespace())
		if _, seen := out[field]; seen {
			continue
		}
		out[field] = messageKey(field, fe.Tag())
	}
	return out
}

func (v *Validator) paymentFormStructValidation(sl validatorv10.StructLevel) {
	form := sl.Current().Interface().(PaymentForm)

	if form.Expiry != "" {
		if reason := CheckExpiry(form.Expiry, v.nowFunc()); reason != ExpiryOK {
			sl.ReportError(form.Expiry, "expiryDate", "Expiry", string(reason), "")
		}
	}

	if form.CVV != "" {
		want := DetectNetwork(form.CardNumber).CVVLength()
		if !allDigits(form.CVV) || len(form.CVV) != want {
			sl.ReportError(form.CVV, "cvv", "CVV", "cvv_length", "")
		}
	}
}

func deliveryStructValidation(sl validatorv10.StructLevel) {
	d := sl.Current().Interface().(Delivery)

	switch d.Method {
	case DeliveryCourier:
		if d.Courier == nil {
			sl.ReportError(d.Courier, "courier", "Courier", "required_variant", "")
		}
	case DeliveryPickup:
		if d.Pickup == nil {
			sl.ReportError(d.Pickup, "pickup", "Pickup", "required_variant", "")
		}
	}
}

// fieldKey turns "PaymentForm.delivery.courier.address.street" into
// "courier.street".
func fieldKey(namespace string) string {
	parts := strings.Split(namespace, ".")
	if len(parts) > 1 {
		parts = parts[1:]
	}
	if len(parts) == 2 && parts[0] == "delivery" && parts[1] == "method" {
		return "deliveryMethod"
	}
	kept := parts[:0]
	for _, p := range parts {
		if p == "delivery" || p == "address" {
			continue
		}
		kept = append(kept, p)
	}
	return strings.Join(kept, ".")
}

func messageKey(field, tag string) string {
	if key, ok := messageKeys[field+"."+tag]; ok {
		return key
	}
	if key, ok := messageKeys[field]; ok {
		return key
	}
	return "payment.errors." + field + "Invalid"
}
