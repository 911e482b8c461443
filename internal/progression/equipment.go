package progression

import (
	"math"

	"github.com/julianstephens/studywith/internal/constants"
	"github.com/julianstephens/studywith/internal/models"
)

var defaultEquipment = map[constants.Slot]models.Equipment{
	constants.SlotBook:   {Slot: constants.SlotBook, Name: "책", BasePower: 10},
	constants.SlotPencil: {Slot: constants.SlotPencil, Name: "연필", BasePower: 7},
	constants.SlotLaptop: {Slot: constants.SlotLaptop, Name: "노트북", BasePower: 15},
}

// DefaultInventory returns a fresh copy of the starting equipment.
func DefaultInventory() map[constants.Slot]models.Equipment {
	inv := make(map[constants.Slot]models.Equipment, len(defaultEquipment))
	for slot, item := range defaultEquipment {
		inv[slot] = item
	}
	return inv
}

// KnownSlot reports whether slot is one of the fixed equipment slots.
func KnownSlot(slot constants.Slot) bool {
	_, ok := defaultEquipment[slot]
	return ok
}

// MergeInventory lays persisted slot data over the defaults field by field.
// Slots missing from rec keep their defaults, unknown slots are dropped.
func MergeInventory(rec map[constants.Slot]models.EquipmentRecord) map[constants.Slot]models.Equipment {
	inv := DefaultInventory()
	for slot, item := range inv {
		saved, ok := rec[slot]
		if !ok {
			continue
		}
		if saved.Name != nil {
			item.Name = *saved.Name
		}
		if saved.BasePower != nil {
			item.BasePower = *saved.BasePower
		}
		if saved.Enhancement != nil {
			item.Enhancement = max(*saved.Enhancement, 0)
		}
		inv[slot] = item
	}
	return inv
}

// Power is base power scaled by 20% per enhancement level, to two decimals.
func Power(e models.Equipment) float64 {
	return round(float64(e.BasePower)*(1+float64(e.Enhancement)*constants.PowerPerEnhancement), 2)
}

// TotalPower sums the power of every slot, to two decimals.
func TotalPower(inv map[constants.Slot]models.Equipment) float64 {
	var total float64
	for _, slot := range constants.Slots {
		total += Power(inv[slot])
	}
	return round(total, 2)
}

func round(x float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(x*p) / p
}
