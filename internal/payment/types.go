// Package payment validates the checkout payment form and formats its inputs.
package payment

import "strings"

type DeliveryMethod string

const (
	DeliveryCourier DeliveryMethod = "courier"
	DeliveryPickup  DeliveryMethod = "pickup"
)

type Address struct {
	Street     string `json:"street" validate:"required"`
	City       string `json:"city" validate:"required"`
	PostalCode string `json:"postalCode" validate:"required"`
	Region     string `json:"region"`
}

type CourierDetails struct {
	Address      Address `json:"address"`
	ContactPhone string  `json:"contactPhone" validate:"required,mdphone"`
}

type PickupDetails struct {
	PickupPoint  string `json:"pickupPoint" validate:"required,pickuppoint"`
	ContactPhone string `json:"contactPhone" validate:"required,mdphone"`
	PickupDate   string `json:"pickupDate,omitempty"`
}

// Delivery is a tagged choice: only the variant named by Method is set.
type Delivery struct {
	Method  DeliveryMethod  `json:"method" validate:"required,oneof=courier pickup"`
	Courier *CourierDetails `json:"courier,omitempty"`
	Pickup  *PickupDetails  `json:"pickup,omitempty"`
}

// PaymentForm holds card data only while the form is being edited. It is
// never persisted.
type PaymentForm struct {
	CardName   string   `json:"cardName" validate:"required"`
	CardNumber string   `json:"cardNumber" validate:"required,number,len=16"`
	Expiry     string   `json:"expiryDate" validate:"required"`
	CVV        string   `json:"cvv" validate:"required"`
	Delivery   Delivery `json:"delivery"`
}

// NewForm returns an empty form with courier delivery to the default region.
func NewForm() PaymentForm {
	return PaymentForm{
		Delivery: Delivery{
			Method:  DeliveryCourier,
			Courier: NewCourierDetails(),
		},
	}
}

func NewCourierDetails() *CourierDetails {
	return &CourierDetails{Address: Address{Region: DefaultRegion}}
}

func NewPickupDetails() *PickupDetails {
	return &PickupDetails{}
}

// Clone returns a deep copy.
func (f PaymentForm) Clone() PaymentForm {
	if f.Delivery.Courier != nil {
		c := *f.Delivery.Courier
		f.Delivery.Courier = &c
	}
	if f.Delivery.Pickup != nil {
		p := *f.Delivery.Pickup
		f.Delivery.Pickup = &p
	}
	return f
}

// Network is the card network detected from the current card number.
func (f PaymentForm) Network() Network {
	return DetectNetwork(f.CardNumber)
}

// normalized trims text fields, strips spaces from card and phone numbers
// and drops the inactive delivery variant.
func (f PaymentForm) normalized() PaymentForm {
	n := f.Clone()
	n.CardName = strings.TrimSpace(n.CardName)
	n.CardNumber = StripSpaces(n.CardNumber)
	n.Expiry = strings.TrimSpace(n.Expiry)
	n.CVV = strings.TrimSpace(n.CVV)

	switch n.Delivery.Method {
	case DeliveryCourier:
		n.Delivery.Pickup = nil
	case DeliveryPickup:
		n.Delivery.Courier = nil
	default:
		n.Delivery.Courier, n.Delivery.Pickup = nil, nil
	}
	if c := n.Delivery.Courier; c != nil {
		c.Address.Street = strings.TrimSpace(c.Address.Street)
		c.Address.City = strings.TrimSpace(c.Address.City)
		c.Address.PostalCode = strings.TrimSpace(c.Address.PostalCode)
		c.ContactPhone = StripSpaces(c.ContactPhone)
	}
	if p := n.Delivery.Pickup; p != nil {
		p.PickupPoint = strings.TrimSpace(p.PickupPoint)
		p.ContactPhone = StripSpaces(p.ContactPhone)
	}
	return n
}
