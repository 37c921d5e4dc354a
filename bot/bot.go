package bot

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"cafe-telegram/config"
	"cafe-telegram/models"
	"cafe-telegram/services"
)

// Bot is the ordering surface: menu browsing, cart, checkout, payment and
// confirmation screens, one cart and one flow per Telegram user.
type Bot struct {
	api   *tgbotapi.BotAPI
	cfg   *config.Config
	store *services.FileOrderStore

	carts   map[int64]*services.Cart
	cartsMu sync.RWMutex

	flows   map[int64]*services.Flow
	flowsMu sync.RWMutex

	// pendingInput marks which free-text field the next message from the
	// user fills: "name", "phone" or "notes".
	pendingInput map[int64]string
	pendingMu    sync.RWMutex

	// checkoutScreens tracks open checkout messages so the minute ticker
	// can refresh their pickup-slot keyboards.
	checkoutScreens map[int64]int // chatID -> messageID
	screensMu       sync.Mutex
}

func New(cfg *config.Config) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.Token)
	if err != nil {
		return nil, err
	}
	return &Bot{
		api:             api,
		cfg:             cfg,
		store:           services.NewFileOrderStore(cfg.Cafe.OrderFile),
		carts:           make(map[int64]*services.Cart),
		flows:           make(map[int64]*services.Flow),
		pendingInput:    make(map[int64]string),
		checkoutScreens: make(map[int64]int),
	}, nil
}

func (b *Bot) setBotCommands() error {
	cmds := tgbotapi.NewSetMyCommands(
		tgbotapi.BotCommand{Command: "start", Description: "Welcome and menu"},
		tgbotapi.BotCommand{Command: "menu", Description: "Browse the menu"},
		tgbotapi.BotCommand{Command: "cart", Description: "Your order"},
		tgbotapi.BotCommand{Command: "receipt", Description: "Last order receipt"},
	)
	_, err := b.api.Request(cmds)
	return err
}

func (b *Bot) Start() {
	_ = b.setBotCommands()
	go b.refreshCheckoutScreens()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := b.api.GetUpdatesChan(u)

	for update := range updates {
		if update.CallbackQuery != nil {
			b.handleCallback(update.CallbackQuery)
			continue
		}
		if update.Message == nil {
			continue
		}
		msg := update.Message
		userID := msg.From.ID
		text := strings.TrimSpace(msg.Text)

		if msg.Contact != nil {
			b.handlePhoneInput(msg.Chat.ID, userID, msg.Contact.PhoneNumber)
			continue
		}

		switch {
		case text == "/start":
			b.sendWelcome(msg.Chat.ID)
		case text == "/menu":
			b.sendMenu(msg.Chat.ID)
		case text == "/cart":
			b.sendCartScreen(msg.Chat.ID, userID, 0)
		case text == "/receipt":
			b.sendReceipt(msg.Chat.ID)
		default:
			b.handleTextInput(msg.Chat.ID, userID, text)
		}
	}
}

// refreshCheckoutScreens re-renders open checkout screens once a minute so
// the offered pickup slots track the wall clock.
func (b *Bot) refreshCheckoutScreens() {
	for range time.Tick(time.Minute) {
		b.screensMu.Lock()
		screens := make(map[int64]int, len(b.checkoutScreens))
		for chat, msg := range b.checkoutScreens {
			screens[chat] = msg
		}
		b.screensMu.Unlock()

		for chatID, messageID := range screens {
			flow := b.peekFlow(chatID)
			if flow == nil || flow.Step() != services.StepCheckout {
				b.forgetCheckoutScreen(chatID)
				continue
			}
			b.editCheckoutScreen(chatID, messageID)
		}
	}
}

func (b *Bot) getCart(userID int64) *services.Cart {
	b.cartsMu.Lock()
	defer b.cartsMu.Unlock()
	cart, ok := b.carts[userID]
	if !ok {
		cart = services.NewCart()
		b.carts[userID] = cart
	}
	return cart
}

// getFlow returns the user's checkout flow, creating one bound to their
// cart and chat on first use.
func (b *Bot) getFlow(chatID, userID int64) *services.Flow {
	b.flowsMu.Lock()
	defer b.flowsMu.Unlock()
	flow, ok := b.flows[userID]
	if !ok {
		flow = services.NewFlow(b.getCart(userID), b.store, &chatNotifier{bot: b, chatID: chatID})
		b.flows[userID] = flow
	}
	return flow
}

func (b *Bot) peekFlow(userID int64) *services.Flow {
	b.flowsMu.RLock()
	defer b.flowsMu.RUnlock()
	return b.flows[userID]
}

// dropFlow closes and forgets the user's flow; any in-flight simulated
// payment is cancelled with it.
func (b *Bot) dropFlow(userID int64) {
	b.flowsMu.Lock()
	flow := b.flows[userID]
	delete(b.flows, userID)
	b.flowsMu.Unlock()
	if flow != nil {
		flow.Close()
	}
}

func (b *Bot) send(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send error: %v", err)
	}
}

func (b *Bot) sendWithInline(chatID int64, text string, kb tgbotapi.InlineKeyboardMarkup) {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = kb
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send error: %v", err)
	}
}

// chatNotifier delivers the flow's toast-style notices as plain messages.
type chatNotifier struct {
	bot    *Bot
	chatID int64
}

func (n *chatNotifier) Success(title, detail string) {
	n.bot.send(n.chatID, "✅ "+title+"\n"+detail)
}

func (n *chatNotifier) Info(title, detail string) {
	n.bot.send(n.chatID, "ℹ️ "+title+"\n"+detail)
}

func (n *chatNotifier) Error(text string) {
	n.bot.send(n.chatID, "⚠️ "+text)
}

func (b *Bot) sendWelcome(chatID int64) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("☕ Menu", "menu"),
			tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", "cart"),
		),
	)
	text := fmt.Sprintf("Welcome to %s!\nBrowse the menu, build your order and pick it up at a time that suits you.", b.cfg.Cafe.Name)
	b.sendWithInline(chatID, text, kb)
}

func (b *Bot) sendMenu(chatID int64) {
	kb := tgbotapi.NewInlineKeyboardMarkup(
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("☕ Specialty Iced Lattes", "cat:"+models.CategoryDrink),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🧋 Simple Iced Lattes", "cat:"+models.CategoryIcedLatte),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🥐 Pastries", "cat:"+models.CategoryPastry),
		),
		tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", "cart"),
		),
	)
	b.sendWithInline(chatID, "Simple, fresh & full of heart.\nAll drinks can be made with oat, almond or whole milk.", kb)
}

func (b *Bot) sendCategoryMenu(chatID int64, category string) {
	ctx := context.Background()
	items, err := services.ListMenuByCategory(ctx, category)
	if err != nil {
		log.Printf("list menu %s: %v", category, err)
		b.send(chatID, "⚠️ Menu is unavailable right now, please try again.")
		return
	}

	var rows [][]tgbotapi.InlineKeyboardButton
	for _, it := range items {
		label := fmt.Sprintf("➕ %s — $%s", it.Name, it.Price.StringFixed(2))
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(label, "add:"+it.ID),
		))
	}
	rows = append(rows, tgbotapi.NewInlineKeyboardRow(
		tgbotapi.NewInlineKeyboardButtonData("⬅️ Back", "menu"),
		tgbotapi.NewInlineKeyboardButtonData("🛒 Cart", "cart"),
	))

	text := categoryTitle(category) + "\n\n"
	for _, it := range items {
		text += fmt.Sprintf("• %s — %s\n", it.Name, it.Description)
	}
	b.sendWithInline(chatID, text, tgbotapi.NewInlineKeyboardMarkup(rows...))
}

func categoryTitle(category string) string {
	switch category {
	case models.CategoryDrink:
		return "Specialty Iced Lattes"
	case models.CategoryIcedLatte:
		return "Simple Iced Lattes"
	case models.CategoryPastry:
		return "Pastries"
	default:
		return category
	}
}

func (b *Bot) addToCart(cq *tgbotapi.CallbackQuery, itemID string) {
	ctx := context.Background()
	item, err := services.GetMenuItem(ctx, itemID)
	if err != nil {
		log.Printf("get menu item %s: %v", itemID, err)
		b.answerCallback(cq.ID, "Item is unavailable")
		return
	}
	b.getCart(cq.From.ID).Add(item)
	b.answerCallback(cq.ID, item.Name+" added to cart!")
}

func (b *Bot) answerCallback(callbackID, text string) {
	if _, err := b.api.Request(tgbotapi.NewCallback(callbackID, text)); err != nil {
		log.Printf("answer callback: %v", err)
	}
}

func (b *Bot) sendReceipt(chatID int64) {
	order, err := b.store.Load()
	if err != nil {
		log.Printf("load order: %v", err)
		b.send(chatID, "⚠️ No recent order to print.")
		return
	}
	receipt := services.BuildReceipt(order, b.cfg.Cafe.Name, b.cfg.Cafe.Phone)
	msg := tgbotapi.NewMessage(chatID, "```\n"+receipt+"```")
	msg.ParseMode = tgbotapi.ModeMarkdown
	if _, err := b.api.Send(msg); err != nil {
		log.Printf("send receipt: %v", err)
	}
}

func (b *Bot) handleCallback(cq *tgbotapi.CallbackQuery) {
	chatID := cq.Message.Chat.ID
	userID := cq.From.ID
	data := cq.Data

	switch {
	case data == "menu":
		b.answerCallback(cq.ID, "")
		b.sendMenu(chatID)
	case strings.HasPrefix(data, "cat:"):
		b.answerCallback(cq.ID, "")
		b.sendCategoryMenu(chatID, strings.TrimPrefix(data, "cat:"))
	case strings.HasPrefix(data, "add:"):
		b.addToCart(cq, strings.TrimPrefix(data, "add:"))
	case data == "cart":
		b.answerCallback(cq.ID, "")
		b.sendCartScreen(chatID, userID, 0)
	default:
		b.handleOrderCallback(cq, chatID, userID, data)
	}
}

func (b *Bot) handleTextInput(chatID, userID int64, text string) {
	b.pendingMu.Lock()
	field := b.pendingInput[userID]
	delete(b.pendingInput, userID)
	b.pendingMu.Unlock()
	if field == "" || text == "" {
		return
	}

	flow := b.getFlow(chatID, userID)
	switch field {
	case "name":
		flow.SetCustomerName(text)
		b.send(chatID, "Name saved: "+text)
	case "phone":
		flow.SetCustomerPhone(text)
		b.send(chatID, "Phone saved: "+text)
	case "notes":
		b.getCart(userID).SetNotes(text)
		b.send(chatID, "Notes saved.")
	}
	if flow.Step() == services.StepCheckout {
		b.sendCheckoutScreen(chatID, userID)
	}
}

func (b *Bot) handlePhoneInput(chatID, userID int64, phone string) {
	b.pendingMu.Lock()
	delete(b.pendingInput, userID)
	b.pendingMu.Unlock()

	flow := b.getFlow(chatID, userID)
	flow.SetCustomerPhone(phone)
	b.send(chatID, "Phone saved: "+phone)
	if flow.Step() == services.StepCheckout {
		b.sendCheckoutScreen(chatID, userID)
	}
}
