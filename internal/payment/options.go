package payment

const DefaultRegion = "Chișinău"

// Regions lists the Moldovan regions offered for courier delivery.
var Regions = []string{
	"Chișinău", "Bălți", "Tiraspol", "Bender", "Rîbnița", "Cahul",
	"Ungheni", "Soroca", "Orhei", "Comrat", "Edineț", "Strășeni",
	"Florești", "Drochia", "Călărași", "Cimișlia", "Glodeni", "Hîncești",
}

type PickupPoint struct {
	ID       string `json:"id"`
	LabelKey string `json:"label_key"`
}

var PickupPoints = []PickupPoint{
	{ID: "center", LabelKey: "payment.pickupPoints.center"},
	{ID: "botanica", LabelKey: "payment.pickupPoints.botanica"},
	{ID: "riscani", LabelKey: "payment.pickupPoints.riscani"},
	{ID: "ciocana", LabelKey: "payment.pickupPoints.ciocana"},
}

func IsPickupPoint(id string) bool {
	for _, p := range PickupPoints {
		if p.ID == id {
			return true
		}
	}
	return false
}
