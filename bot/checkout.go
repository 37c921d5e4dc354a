package bot

import (
	"fmt"
	"log"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cafe-telegram/services"
)

// handleOrderCallback covers everything past menu browsing: cart edits and
// the checkout flow transitions.
func (b *Bot) handleOrderCallback(cq *tgbotapi.CallbackQuery, chatID, userID int64, data string) {
	switch {
	case strings.HasPrefix(data, "qty:inc:"):
		b.getCart(userID).IncrementQty(strings.TrimPrefix(data, "qty:inc:"))
		b.answerCallback(cq.ID, "")
		b.sendCartScreen(chatID, userID, cq.Message.MessageID)
	case strings.HasPrefix(data, "qty:dec:"):
		b.getCart(userID).DecrementQty(strings.TrimPrefix(data, "qty:dec:"))
		b.answerCallback(cq.ID, "")
		b.sendCartScreen(chatID, userID, cq.Message.MessageID)
	case strings.HasPrefix(data, "del:"):
		b.getCart(userID).Remove(strings.TrimPrefix(data, "del:"))
		b.answerCallback(cq.ID, "Removed from cart")
		b.sendCartScreen(chatID, userID, cq.Message.MessageID)

	case data == "checkout":
		b.answerCallback(cq.ID, "")
		if err := b.getFlow(chatID, userID).ProceedToCheckout(); err != nil {
			return
		}
		b.sendCheckoutScreen(chatID, userID)
	case strings.HasPrefix(data, "slot:"):
		b.getCart(userID).SetPickupTime(strings.TrimPrefix(data, "slot:"))
		b.answerCallback(cq.ID, "Pickup time selected")
		b.editCheckoutScreen(chatID, cq.Message.MessageID)
	case data == "set:name":
		b.answerCallback(cq.ID, "")
		b.requestInput(chatID, userID, "name", "Please type your name.")
	case data == "set:phone":
		b.answerCallback(cq.ID, "")
		b.requestInput(chatID, userID, "phone", "Please type your phone number or share your contact.")
	case data == "set:notes":
		b.answerCallback(cq.ID, "")
		b.requestInput(chatID, userID, "notes", "Any special requests? Type them in one message.")
	case data == "topay":
		b.answerCallback(cq.ID, "")
		if err := b.getFlow(chatID, userID).ProceedToPayment(); err != nil {
			return
		}
		b.forgetCheckoutScreen(chatID)
		b.sendPaymentScreen(chatID, userID, 0)

	case data == "back:cart":
		b.answerCallback(cq.ID, "")
		if err := b.getFlow(chatID, userID).BackToCart(); err != nil {
			return
		}
		b.forgetCheckoutScreen(chatID)
		b.sendCartScreen(chatID, userID, 0)
	case data == "back:checkout":
		b.answerCallback(cq.ID, "")
		if err := b.getFlow(chatID, userID).BackToCheckout(); err != nil {
			return
		}
		b.sendCheckoutScreen(chatID, userID)

	case data == "pay:instore":
		b.answerCallback(cq.ID, "")
		if err := b.getFlow(chatID, userID).ChoosePayment(services.PayAtPickup); err != nil {
			return
		}
		b.sendPaymentScreen(chatID, userID, cq.Message.MessageID)
	case data == "pay:online":
		b.answerCallback(cq.ID, "")
		if err := b.getFlow(chatID, userID).ChoosePayment(services.PayOnline); err != nil {
			return
		}
		b.sendPaymentScreen(chatID, userID, cq.Message.MessageID)
	case data == "confirm":
		flow := b.getFlow(chatID, userID)
		if flow.Processing() {
			b.answerCallback(cq.ID, "")
			return
		}
		b.answerCallback(cq.ID, "Processing payment...")
		go func() {
			if err := flow.ConfirmPayment(); err != nil {
				return
			}
			b.sendConfirmationScreen(chatID, userID)
		}()

	case data == "done":
		b.answerCallback(cq.ID, "")
		if err := b.getFlow(chatID, userID).CompleteOrder(); err != nil {
			return
		}
		b.dropFlow(userID)
		b.send(chatID, "See you at pickup! ❤️")
		b.sendWelcome(chatID)
	case data == "close":
		b.answerCallback(cq.ID, "")
		b.forgetCheckoutScreen(chatID)
		b.dropFlow(userID)
		b.send(chatID, "Order panel closed. Your cart is saved.")

	case data == "receipt":
		b.answerCallback(cq.ID, "")
		b.sendReceipt(chatID)
	case data == "instagram":
		b.answerCallback(cq.ID, "")
		b.sendInstagramHandoff(chatID)
	}
}

func (b *Bot) requestInput(chatID, userID int64, field, prompt string) {
	b.pendingMu.Lock()
	b.pendingInput[userID] = field
	b.pendingMu.Unlock()
	b.send(chatID, prompt)
}

func (b *Bot) sendCartScreen(chatID, userID int64, editMsgID int) {
	cart := b.getCart(userID)
	lines := cart.Lines()

	if len(lines) == 0 {
		kb := tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData("☕ Browse Menu", "menu"),
			),
		)
		b.sendWithInline(chatID, "Your cart is empty", kb)
		return
	}

	text := "🛒 Your Order\n\n"
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, l := range lines {
		text += fmt.Sprintf("• %s × %d — $%s\n", l.Name, l.Qty, l.Subtotal().StringFixed(2))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("➖ "+l.Name, "qty:dec:"+l.ItemID),
			tgbotapi.NewInlineKeyboardButtonData("➕", "qty:inc:"+l.ItemID),
			tgbotapi.NewInlineKeyboardButtonData("🗑", "del:"+l.ItemID),
		))
	}
	text += fmt.Sprintf("\nTotal: $%s", cart.Total().StringFixed(2))

	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Menu", "menu"),
		tgbotapi.NewInlineKeyboardButtonData("Checkout ➡️", "checkout"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("✖ Close", "close"),
	))
	kb := tgbotapi.NewInlineKeyboardMarkup(rows...)

	if editMsgID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, editMsgID, text)
		edit.ReplyMarkup = &kb
		if _, err := b.api.Send(edit); err != nil {
			log.Printf("edit cart screen: %v", err)
		}
		return
	}
	b.sendWithInline(chatID, text, kb)
}

// checkoutScreenContent renders the checkout step: sampled current time,
// the generated pickup slots and the customer fields collected so far.
func (b *Bot) checkoutScreenContent(userID int64) (string, tgbotapi.InlineKeyboardMarkup) {
	cart := b.getCart(userID)
	flow := b.peekFlow(userID)

	now := time.Now()
	slots := services.GenerateTimeSlots(now)
	selected := cart.PickupTime()

	text := "📋 Checkout\n\n"
	text += "Current time: " + now.Format("3:04 PM") + "\n"
	if selected != "" {
		text += "Pickup: " + services.FormatSlotValue(slots, selected) + "\n"
	} else {
		text += "Pickup: — select a time below\n"
	}
	name, phone := "—", "—"
	if flow != nil {
		c := flow.Customer()
		if c.Name != "" {
			name = c.Name
		}
		if c.Phone != "" {
			phone = c.Phone
		}
	}
	text += "Name: " + name + "\n"
	text += "Phone: " + phone + "\n"
	if notes := cart.Notes(); notes != "" {
		text += "Notes: " + notes + "\n"
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	var row []tgbotapi.InlineKeyboardButton
	for _, s := range slots {
		label := s.Display
		if s.Value == selected {
			label = "✅ " + label
		}
		row = append(row, tgbotapi.NewInlineKeyboardButtonData(label, "slot:"+s.Value))
		if len(row) == 4 {
			rows = append(rows, row)
			row = nil
		}
	}
	if len(row) > 0 {
		rows = append(rows, row)
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("👤 Name", "set:name"),
		tgbotapi.NewInlineKeyboardButtonData("📞 Phone", "set:phone"),
		tgbotapi.NewInlineKeyboardButtonData("📝 Notes", "set:notes"),
	))
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "back:cart"),
		tgbotapi.NewInlineKeyboardButtonData("Payment ➡️", "topay"),
	))
	return text, tgbotapi.NewInlineKeyboardMarkup(rows...)
}

func (b *Bot) sendCheckoutScreen(chatID, userID int64) {
	text, kb := b.checkoutScreenContent(userID)
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	sent, err := b.api.Send(msg)
	if err != nil {
		log.Printf("send checkout screen: %v", err)
		return
	}
	b.rememberCheckoutScreen(chatID, sent.MessageID)
}

func (b *Bot) editCheckoutScreen(chatID int64, messageID int) {
	// The checkout screen belongs to the chat's user in a private chat.
	text, kb := b.checkoutScreenContent(chatID)
	edit := tgbotapi.NewEditMessageText(chatID, messageID, text)
	edit.ReplyMarkup = &kb
	if _, err := b.api.Send(edit); err != nil {
		if strings.Contains(err.Error(), "not modified") {
			return
		}
		log.Printf("edit checkout screen: %v", err)
	}
}

func (b *Bot) rememberCheckoutScreen(chatID int64, messageID int) {
	b.screensMu.Lock()
	b.checkoutScreens[chatID] = messageID
	b.screensMu.Unlock()
}

func (b *Bot) forgetCheckoutScreen(chatID int64) {
	b.screensMu.Lock()
	delete(b.checkoutScreens, chatID)
	b.screensMu.Unlock()
}

func (b *Bot) sendPaymentScreen(chatID, userID int64, editMsgID int) {
	cart := b.getCart(userID)
	flow := b.getFlow(chatID, userID)

	text := "💳 Payment\n\n"
	for _, l := range cart.Lines() {
		text += fmt.Sprintf("• %s × %d — $%s\n", l.Name, l.Qty, l.Subtotal().StringFixed(2))
	}
	text += fmt.Sprintf("\nTotal: $%s\n\nHow would you like to pay?", cart.Total().StringFixed(2))

	method := flow.Method()
	inStore := "🏪 Pay at Pickup"
	online := "💳 Pay Online"
	if method == services.PayAtPickup {
		inStore = "✅ " + inStore
	}
	if method == services.PayOnline {
		online = "✅ " + online
	}

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(inStore, "pay:instore"),
			tgbotapi.NewInlineKeyboardButtonData(online, "pay:online"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Confirm Order", "confirm"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "back:checkout"),
		),
	)

	if editMsgID != 0 {
		edit := tgbotapi.NewEditMessageText(chatID, editMsgID, text)
		edit.ReplyMarkup = &kb
		if _, err := b.api.Send(edit); err != nil && !strings.Contains(err.Error(), "not modified") {
			log.Printf("edit payment screen: %v", err)
		}
		return
	}
	b.sendWithInline(chatID, text, kb)
}

func (b *Bot) sendConfirmationScreen(chatID, userID int64) {
	flow := b.peekFlow(userID)
	if flow == nil {
		return
	}
	order := flow.LastOrder()
	if order == nil {
		return
	}

	text := "🎉 Order Confirmed!\n\n"
	text += "Order #: " + order.OrderNumber + "\n"
	text += "Pickup: " + order.PickupTime + "\n"
	text += "Total: $" + order.Total.StringFixed(2) + "\n\n"
	text += "Show your order number when you arrive."

	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧾 Receipt", "receipt"),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📸 Forward to Instagram", services.BuildInstagramLink(order)),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("Done", "done"),
		),
	)
	b.sendWithInline(chatID, text, kb)
}

func (b *Bot) sendInstagramHandoff(chatID int64) {
	order, err := b.store.Load()
	if err != nil {
		log.Printf("load order: %v", err)
		b.send(chatID, "⚠️ No recent order to forward.")
		return
	}
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonURL("📸 Open Instagram", services.BuildInstagramLink(order)),
		),
	)
	b.sendWithInline(chatID, "Forward the order summary to the café's account:", kb)
}
