package services

import (
	"fmt"
	"strings"

	"cafe-telegram/models"
)

const receiptWidth = 34

// BuildReceipt renders the stored order as a printable monospace document:
// header, customer block, itemized lines, optional notes, total, payment
// label and footer. Pure read of the record.
func BuildReceipt(o *models.OrderRecord, cafeName, cafePhone string) string {
	divider := strings.Repeat("-", receiptWidth) + "\n"

	var b strings.Builder
	b.WriteString(center(cafeName) + "\n")
	b.WriteString(center("Order Receipt") + "\n")
	b.WriteString(center("Order #: "+o.OrderNumber) + "\n")
	b.WriteString(center(o.PlacedAt.Format("Jan 2, 2006 3:04 PM")) + "\n")
	b.WriteString(divider)

	b.WriteString("Customer: " + o.Customer.Name + "\n")
	b.WriteString("Phone: " + o.Customer.Phone + "\n")
	b.WriteString("Pickup Time: " + o.PickupTime + "\n")
	b.WriteString(divider)

	b.WriteString("Order Items:\n")
	for _, l := range o.Lines {
		b.WriteString(receiptLine(fmt.Sprintf("%dx %s", l.Quantity, l.Name), "$"+l.LineTotal.StringFixed(2)))
	}
	b.WriteString(divider)

	if o.Notes != "" {
		b.WriteString("Notes: " + o.Notes + "\n")
		b.WriteString(divider)
	}

	b.WriteString(receiptLine("TOTAL", "$"+o.Total.StringFixed(2)))
	b.WriteString("Payment: " + o.PaymentMethod + "\n")
	b.WriteString(divider)

	b.WriteString(center("Thank you for your order!") + "\n")
	b.WriteString(center("Please bring this receipt") + "\n")
	b.WriteString(center("when picking up") + "\n")
	b.WriteString(center(cafePhone) + "\n")
	return b.String()
}

// receiptLine left-aligns the label and right-aligns the amount; long
// labels push the amount out rather than truncate.
func receiptLine(label, amount string) string {
	pad := receiptWidth - len(label) - len(amount)
	if pad < 1 {
		pad = 1
	}
	return label + strings.Repeat(" ", pad) + amount + "\n"
}

func center(s string) string {
	if len(s) >= receiptWidth {
		return s
	}
	return strings.Repeat(" ", (receiptWidth-len(s))/2) + s
}
