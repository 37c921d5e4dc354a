package services

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"cafe-telegram/db"
	"cafe-telegram/models"
)

func price(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// defaultMenu is the built-in catalog, served when no database is
// configured. The migrate subcommand seeds menu_items with the same rows.
var defaultMenu = []models.MenuItem{
	// Specialty iced lattes
	{ID: "iced-mazapan-latte", Category: models.CategoryDrink, Name: "Iced Mazapan Latte", Description: "Mazapan Bliss", Price: price("6.00")},
	{ID: "iced-cookie-butter-latte", Category: models.CategoryDrink, Name: "Iced Cookie Butter Latte", Description: "Cookie Dream", Price: price("6.00")},
	{ID: "iced-brown-sugar-shaken-latte", Category: models.CategoryDrink, Name: "Iced Brown Sugar Shaken Latte", Description: "Brown Sugar Delight", Price: price("6.00")},
	{ID: "strawberry-matcha", Category: models.CategoryDrink, Name: "Strawberry Matcha", Description: "Berry Freshness", Price: price("7.00")},
	// Simple iced lattes
	{ID: "iced-vanilla-latte", Category: models.CategoryIcedLatte, Name: "Iced Vanilla Latte", Description: "Vanilla and creamy", Price: price("6.00")},
	{ID: "iced-caramel-latte", Category: models.CategoryIcedLatte, Name: "Iced Caramel Latte", Description: "Sweet caramel swirl", Price: price("6.00")},
	{ID: "iced-matcha-latte", Category: models.CategoryIcedLatte, Name: "Iced Matcha Latte", Description: "Matcha Magic", Price: price("6.00")},
	{ID: "iced-hazelnut-latte", Category: models.CategoryIcedLatte, Name: "Iced Hazelnut Latte", Description: "Nutty and smooth", Price: price("6.00")},
	{ID: "iced-banana-latte", Category: models.CategoryIcedLatte, Name: "Iced Banana Latte", Description: "Banana Cream", Price: price("6.00")},
	{ID: "iced-banana-matcha", Category: models.CategoryIcedLatte, Name: "Iced Banana Matcha", Description: "Banana Matcha Fusion", Price: price("6.00")},
	// Pastries
	{ID: "almond-croissant", Category: models.CategoryPastry, Name: "Almond Croissant", Description: "Almond Crunch", Price: price("6.00")},
	{ID: "chocolate-croissant", Category: models.CategoryPastry, Name: "Chocolate Croissant", Description: "Choco Bliss", Price: price("6.00")},
	{ID: "cookie-butter-croissant", Category: models.CategoryPastry, Name: "Cookie Butter Croissant", Description: "Cookie Butter Delight", Price: price("6.00")},
	{ID: "tres-leches-slice", Category: models.CategoryPastry, Name: "Tres Leches Slice", Description: "Cake Dream", Price: price("6.00")},
	{ID: "amorcillo-parfait", Category: models.CategoryPastry, Name: "Amorcillo Parfait", Description: "Layered Sweetness", Price: price("6.00")},
}

func ListMenuByCategory(ctx context.Context, category string) ([]models.MenuItem, error) {
	if db.Pool == nil {
		var items []models.MenuItem
		for _, it := range defaultMenu {
			if it.Category == category {
				items = append(items, it)
			}
		}
		return items, nil
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, category, name, description, price_cents FROM menu_items
		WHERE category = $1
		ORDER BY sort_order, id`,
		category,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var id, cat, name, desc string
		var cents int64
		if err := rows.Scan(&id, &cat, &name, &desc, &cents); err != nil {
			return nil, err
		}
		items = append(items, models.MenuItem{
			ID:          id,
			Category:    cat,
			Name:        name,
			Description: desc,
			Price:       decimal.New(cents, -2),
		})
	}
	return items, rows.Err()
}

func ListAllMenu(ctx context.Context) ([]models.MenuItem, error) {
	if db.Pool == nil {
		items := make([]models.MenuItem, len(defaultMenu))
		copy(items, defaultMenu)
		return items, nil
	}

	rows, err := db.Pool.Query(ctx, `
		SELECT id, category, name, description, price_cents FROM menu_items
		ORDER BY category, sort_order, id`,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.MenuItem
	for rows.Next() {
		var id, cat, name, desc string
		var cents int64
		if err := rows.Scan(&id, &cat, &name, &desc, &cents); err != nil {
			return nil, err
		}
		items = append(items, models.MenuItem{
			ID:          id,
			Category:    cat,
			Name:        name,
			Description: desc,
			Price:       decimal.New(cents, -2),
		})
	}
	return items, rows.Err()
}

func GetMenuItem(ctx context.Context, id string) (*models.MenuItem, error) {
	if db.Pool == nil {
		for i := range defaultMenu {
			if defaultMenu[i].ID == id {
				it := defaultMenu[i]
				return &it, nil
			}
		}
		return nil, fmt.Errorf("menu item %q not found", id)
	}

	var category, name, desc string
	var cents int64
	err := db.Pool.QueryRow(ctx, `
		SELECT category, name, description, price_cents FROM menu_items WHERE id = $1`,
		id,
	).Scan(&category, &name, &desc, &cents)
	if err != nil {
		return nil, err
	}
	return &models.MenuItem{
		ID:          id,
		Category:    category,
		Name:        name,
		Description: desc,
		Price:       decimal.New(cents, -2),
	}, nil
}
