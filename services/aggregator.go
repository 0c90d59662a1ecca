package services

import (
	"github.com/shopspring/decimal"
	"github.com/tivrax/storefront/models"
)

// Summarize derives cart totals from priced lines. TotalItems counts lines,
// TotalQuantity counts units, TotalAmount is the sum of unit price times
// quantity. It holds no state and is recomputed on every read.
func Summarize(lines []models.LineItem) models.CartSummary {
	summary := models.CartSummary{TotalAmount: decimal.Zero}
	for _, l := range lines {
		summary.TotalItems++
		summary.TotalQuantity += l.Quantity
		summary.TotalAmount = summary.TotalAmount.Add(l.LineTotal())
	}
	return summary
}

// toLineItem joins a cart line with its preloaded product. A line whose
// product has been deleted is priced at zero.
func toLineItem(line models.CartLine) models.LineItem {
	id := line.ID
	item := models.LineItem{
		CartLineID: &id,
		ProductID:  line.ProductID,
		Size:       line.Size,
		Quantity:   line.Quantity,
		Price:      decimal.Zero,
	}
	if p := line.Product; p != nil {
		item.Name = p.Name
		item.ImageURL = p.ImageURL
		item.Price = p.Price
		item.DiscountedPrice = p.DiscountedPrice
	}
	return item
}

func toLineItems(lines []models.CartLine) []models.LineItem {
	items := make([]models.LineItem, 0, len(lines))
	for _, l := range lines {
		items = append(items, toLineItem(l))
	}
	return items
}
