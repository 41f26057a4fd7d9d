// internal/models/pantry.go
package models

type PantryStatus string

const (
	StatusInStock PantryStatus = "in_stock"
	StatusToBuy   PantryStatus = "to_buy"
)

func (s PantryStatus) Valid() bool {
	return s == StatusInStock || s == StatusToBuy
}

// Toggle flips between in_stock and to_buy.
func (s PantryStatus) Toggle() PantryStatus {
	if s == StatusInStock {
		return StatusToBuy
	}
	return StatusInStock
}

type PantryItem struct {
	ID     string       `json:"_id"`
	Name   string       `json:"name"`
	Status PantryStatus `json:"status"`
	Unit   string       `json:"unit,omitempty"`
	Qty    float64      `json:"qty,omitempty"`
}

// Pantry is the pantry split by status.
type Pantry struct {
	InStock []PantryItem
	ToBuy   []PantryItem
}

// Partition splits items by status. Items with an unknown status are dropped.
func Partition(items []PantryItem) Pantry {
	p := Pantry{InStock: []PantryItem{}, ToBuy: []PantryItem{}}
	for _, it := range items {
		switch it.Status {
		case StatusInStock:
			p.InStock = append(p.InStock, it)
		case StatusToBuy:
			p.ToBuy = append(p.ToBuy, it)
		}
	}
	return p
}

// Find looks an item up by id in both partitions.
func (p Pantry) Find(id string) (PantryItem, bool) {
	for _, list := range [][]PantryItem{p.InStock, p.ToBuy} {
		for _, it := range list {
			if it.ID == id {
				return it, true
			}
		}
	}
	return PantryItem{}, false
}
