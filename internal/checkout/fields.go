package checkout

import "github.com/imrishuroy/storefront-checkout/internal/payment"

type Field string

const (
	FieldCardName          Field = "cardName"
	FieldCardNumber        Field = "cardNumber"
	FieldExpiry            Field = "expiryDate"
	FieldCVV               Field = "cvv"
	FieldCourierStreet     Field = "courier.street"
	FieldCourierCity       Field = "courier.city"
	FieldCourierPostalCode Field = "courier.postalCode"
	FieldCourierRegion     Field = "courier.region"
	FieldCourierPhone      Field = "courier.contactPhone"
	FieldPickupPoint       Field = "pickup.pickupPoint"
	FieldPickupPhone       Field = "pickup.contactPhone"
	FieldPickupDate        Field = "pickup.pickupDate"
)

// fieldAliases accepts the nested input names used by the storefront form.
var fieldAliases = map[string]Field{
	"courier.address.street":     FieldCourierStreet,
	"courier.address.city":       FieldCourierCity,
	"courier.address.postalCode": FieldCourierPostalCode,
	"courier.address.region":     FieldCourierRegion,
}

func ParseField(name string) (Field, bool) {
	if f, ok := fieldAliases[name]; ok {
		return f, true
	}
	f := Field(name)
	switch f {
	case FieldCardName, FieldCardNumber, FieldExpiry, FieldCVV,
		FieldCourierStreet, FieldCourierCity, FieldCourierPostalCode, FieldCourierRegion, FieldCourierPhone,
		FieldPickupPoint, FieldPickupPhone, FieldPickupDate:
		return f, true
	}
	return "", false
}

func (f Field) variant() payment.DeliveryMethod {
	switch f {
	case FieldCourierStreet, FieldCourierCity, FieldCourierPostalCode, FieldCourierRegion, FieldCourierPhone:
		return payment.DeliveryCourier
	case FieldPickupPoint, FieldPickupPhone, FieldPickupDate:
		return payment.DeliveryPickup
	}
	return ""
}

// apply writes value into exactly one field of form, formatting it the way
// the form input does.
func (f Field) apply(form *payment.PaymentForm, value string) {
	d := &form.Delivery
	switch f {
	case FieldCardName:
		form.CardName = value
	case FieldCardNumber:
		form.CardNumber = payment.FormatCardNumber(value)
	case FieldExpiry:
		form.Expiry = payment.FormatExpiry(value)
	case FieldCVV:
		form.CVV = payment.SanitizeCVV(value)
	case FieldCourierStreet:
		d.Courier.Address.Street = value
	case FieldCourierCity:
		d.Courier.Address.City = value
	case FieldCourierPostalCode:
		d.Courier.Address.PostalCode = value
	case FieldCourierRegion:
		d.Courier.Address.Region = value
	case FieldCourierPhone:
		d.Courier.ContactPhone = payment.FormatPhone(value)
	case FieldPickupPoint:
		d.Pickup.PickupPoint = value
	case FieldPickupPhone:
		d.Pickup.ContactPhone = payment.FormatPhone(value)
	case FieldPickupDate:
		d.Pickup.PickupDate = value
	}
}
