package models

import "github.com/shopspring/decimal"

type MenuItem struct {
	ID          string
	Category    string // "drink", "iced-latte", "pastry"
	Name        string
	Description string
	Price       decimal.Decimal
}

const (
	CategoryDrink     = "drink" // specialty iced lattes
	CategoryIcedLatte = "iced-latte"
	CategoryPastry    = "pastry"
)
