package services

import (
	"sync"

	"github.com/shopspring/decimal"

	"cafe-telegram/models"
)

// CartLine is one selected menu item with its quantity. The price is
// snapshotted from the catalog when the item is first added.
type CartLine struct {
	ItemID string          `json:"id"`
	Name   string          `json:"name"`
	Price  decimal.Decimal `json:"price"`
	Qty    int             `json:"qty"`
}

// Subtotal is price x quantity for this line.
func (l CartLine) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Qty)))
}

// Cart holds one customer's in-progress order: selected lines in insertion
// order, the chosen pickup time token and free-text notes. It is the only
// owner of that state; every mutation goes through its methods. Safe for
// use from the bot loop and in-flight payment goroutines.
type Cart struct {
	mu         sync.Mutex
	lines      []CartLine
	pickupTime string // "HH:MM" token, empty until selected
	notes      string
}

func NewCart() *Cart {
	return &Cart{}
}

// Add puts one unit of the item in the cart, merging into an existing line
// for the same item.
func (c *Cart) Add(item *models.MenuItem) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ItemID == item.ID {
			c.lines[i].Qty++
			return
		}
	}
	c.lines = append(c.lines, CartLine{ItemID: item.ID, Name: item.Name, Price: item.Price, Qty: 1})
}

// IncrementQty adds one unit to an existing line. Unknown IDs are ignored.
func (c *Cart) IncrementQty(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines[i].Qty++
			return
		}
	}
}

// DecrementQty removes one unit from a line but never below 1; dropping a
// line entirely is only possible through Remove.
func (c *Cart) DecrementQty(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			if c.lines[i].Qty > 1 {
				c.lines[i].Qty--
			}
			return
		}
	}
}

// Remove deletes the line for the item regardless of quantity.
func (c *Cart) Remove(itemID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.lines {
		if c.lines[i].ItemID == itemID {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
			return
		}
	}
}

// Clear empties the cart and resets pickup time and notes.
func (c *Cart) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lines = nil
	c.pickupTime = ""
	c.notes = ""
}

func (c *Cart) SetPickupTime(value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.pickupTime = value
}

func (c *Cart) PickupTime() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pickupTime
}

func (c *Cart) SetNotes(notes string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.notes = notes
}

func (c *Cart) Notes() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.notes
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []CartLine {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]CartLine, len(c.lines))
	copy(out, c.lines)
	return out
}

func (c *Cart) IsEmpty() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.lines) == 0
}

// ItemCount is the total number of units across all lines.
func (c *Cart) ItemCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, l := range c.lines {
		n += l.Qty
	}
	return n
}

// Total is the sum of price x quantity over all lines. Display code rounds
// to two decimals via decimal's StringFixed.
func (c *Cart) Total() decimal.Decimal {
	c.mu.Lock()
	defer c.mu.Unlock()
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	return total
}
