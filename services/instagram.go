package services

import (
	"fmt"
	"net/url"
	"strings"

	"cafe-telegram/models"
)

const instagramComposeURL = "https://www.instagram.com/direct/new/"

// BuildInstagramLink builds a deep link to the Instagram DM composer,
// pre-filled with a multi-line order summary for forwarding to the café's
// business account. Fire-and-forget: opening it gives no delivery signal.
func BuildInstagramLink(o *models.OrderRecord) string {
	items := make([]string, 0, len(o.Lines))
	for _, l := range o.Lines {
		items = append(items, fmt.Sprintf("%dx %s", l.Quantity, l.Name))
	}
	notes := o.Notes
	if notes == "" {
		notes = "None"
	}
	lines := []string{
		"New order!",
		"",
		"Order #: " + o.OrderNumber,
		"Name: " + o.Customer.Name,
		"Phone: " + o.Customer.Phone,
		"Pickup: " + o.PickupTime,
		"Items: " + strings.Join(items, ", "),
		"Total: $" + o.Total.StringFixed(2),
		"Notes: " + notes,
		"Payment: Pay at pickup",
	}
	return instagramComposeURL + "?text=" + url.QueryEscape(strings.Join(lines, "\n"))
}
