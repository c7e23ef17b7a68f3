package i18n

var messagesEN = map[string]string{
	"cart.fetchError":      "Could not load your cart",
	"cart.updateError":     "Could not update the quantity",
	"cart.deleteError":     "Could not remove the product",
	"cart.quantityUpdated": "Quantity updated",
	"cart.productRemoved":  "Product removed from cart",
	"cart.emptyCartAlert":  "Your cart is empty",
	"cart.loginRequired":   "Please log in to continue to payment",
	"cart.checkoutStarted": "Proceeding to payment",

	"payment.successMessage": "Payment successful!",

	"payment.errors.cardNameRequired":        "Card name is required",
	"payment.errors.cardNumberRequired":      "Card number is required",
	"payment.errors.cardNumberInvalid":       "Invalid card number",
	"payment.errors.expiryDateRequired":      "Expiry date is required",
	"payment.errors.expiryDateInvalid":       "Invalid format. Use MM/YY",
	"payment.errors.expiryYearInvalid":       "Invalid year",
	"payment.errors.expiryMonthInvalid":      "Invalid month (1-12)",
	"payment.errors.expired":                 "The card has expired",
	"payment.errors.cvvRequired":             "CVV is required",
	"payment.errors.cvvInvalid":              "Invalid CVV",
	"payment.errors.phoneRequired":           "Phone is required",
	"payment.errors.phoneInvalid":            "Invalid phone number",
	"payment.errors.streetRequired":          "Street is required",
	"payment.errors.cityRequired":            "City is required",
	"payment.errors.postalCodeRequired":      "Postal code is required",
	"payment.errors.pickupPointRequired":     "Pickup point is required",
	"payment.errors.pickupPointInvalid":      "Unknown pickup point",
	"payment.errors.deliveryMethodInvalid":   "Choose courier delivery or store pickup",
	"payment.errors.deliveryDetailsRequired": "Delivery details are required",
	"payment.errors.paymentFailed":           "Payment failed. Please try again.",
	"payment.errors.submissionInFlight":      "Your payment is already being processed",
	"payment.errors.duplicateSubmission":     "This payment was already submitted",

	"payment.pickupPoints.center":   "Centru",
	"payment.pickupPoints.botanica": "Botanica",
	"payment.pickupPoints.riscani":  "Rîșcani",
	"payment.pickupPoints.ciocana":  "Ciocana",
}

var messagesRO = map[string]string{
	"cart.fetchError":      "Coșul nu a putut fi încărcat",
	"cart.updateError":     "Cantitatea nu a putut fi actualizată",
	"cart.deleteError":     "Produsul nu a putut fi eliminat",
	"cart.quantityUpdated": "Cantitate actualizată",
	"cart.productRemoved":  "Produs eliminat din coș",
	"cart.emptyCartAlert":  "Coșul este gol",
	"cart.loginRequired":   "Autentificați-vă pentru a continua spre plată",
	"cart.checkoutStarted": "Continuați spre plată",

	"payment.successMessage": "Plata a fost efectuată cu succes!",

	"payment.errors.cardNameRequired":        "Numele de pe card este obligatoriu",
	"payment.errors.cardNumberRequired":      "Numărul cardului este obligatoriu",
	"payment.errors.cardNumberInvalid":       "Număr de card invalid",
	"payment.errors.expiryDateRequired":      "Data expirării este obligatorie",
	"payment.errors.expiryDateInvalid":       "Format invalid. Folosiți MM/YY",
	"payment.errors.expiryYearInvalid":       "An invalid",
	"payment.errors.expiryMonthInvalid":      "Lună invalidă (1-12)",
	"payment.errors.expired":                 "Cardul a expirat",
	"payment.errors.cvvRequired":             "CVV este obligatoriu",
	"payment.errors.cvvInvalid":              "CVV invalid",
	"payment.errors.phoneRequired":           "Telefonul este obligatoriu",
	"payment.errors.phoneInvalid":            "Număr de telefon invalid",
	"payment.errors.streetRequired":          "Strada este obligatorie",
	"payment.errors.cityRequired":            "Orașul este obligatoriu",
	"payment.errors.postalCodeRequired":      "Codul poștal este obligatoriu",
	"payment.errors.pickupPointRequired":     "Punctul de ridicare este obligatoriu",
	"payment.errors.pickupPointInvalid":      "Punct de ridicare necunoscut",
	"payment.errors.deliveryMethodInvalid":   "Alegeți livrarea prin curier sau ridicarea din magazin",
	"payment.errors.deliveryDetailsRequired": "Detaliile de livrare sunt obligatorii",
	"payment.errors.paymentFailed":           "Plata a eșuat. Încercați din nou.",
	"payment.errors.submissionInFlight":      "Plata este deja în curs de procesare",
	"payment.errors.duplicateSubmission":     "Această plată a fost deja trimisă",

	"payment.pickupPoints.center":   "Centru",
	"payment.pickupPoints.botanica": "Botanica",
	"payment.pickupPoints.riscani":  "Rîșcani",
	"payment.pickupPoints.ciocana":  "Ciocana",
}
