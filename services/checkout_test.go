package services

import (
	"errors"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"testing"
	"time"
)

type recordedNotices struct {
	mu        sync.Mutex
	successes []string
	infos     []string
	errors    []string
}

func (n *recordedNotices) Success(title, detail string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.successes = append(n.successes, title+"|"+detail)
}

func (n *recordedNotices) Info(title, detail string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.infos = append(n.infos, title+"|"+detail)
}

func (n *recordedNotices) Error(text string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.errors = append(n.errors, text)
}

func (n *recordedNotices) lastError() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	if len(n.errors) == 0 {
		return ""
	}
	return n.errors[len(n.errors)-1]
}

// newTestFlow wires a flow against a temp-file store with a frozen clock
// and no simulated delay.
func newTestFlow(t *testing.T) (*Flow, *Cart, *FileOrderStore, *recordedNotices) {
	t.Helper()
	cart := NewCart()
	store := NewFileOrderStore(filepath.Join(t.TempDir(), "last_order.json"))
	notices := &recordedNotices{}
	flow := NewFlow(cart, store, notices)
	flow.now = func() time.Time {
		return time.Date(2025, time.June, 10, 10, 0, 0, 0, time.UTC)
	}
	flow.inStoreDelay = 0
	flow.onlineDelay = 0
	return flow, cart, store, notices
}

func fillCheckout(t *testing.T, flow *Flow, cart *Cart) {
	t.Helper()
	cart.Add(menuItem("iced-vanilla-latte", "Iced Vanilla Latte", "6.00"))
	cart.IncrementQty("iced-vanilla-latte")
	if err := flow.ProceedToCheckout(); err != nil {
		t.Fatalf("ProceedToCheckout: %v", err)
	}
	cart.SetPickupTime("10:30")
	flow.SetCustomerName("Ana")
	flow.SetCustomerPhone("555-0000")
	if err := flow.ProceedToPayment(); err != nil {
		t.Fatalf("ProceedToPayment: %v", err)
	}
}

func TestFlow_EmptyCartRejected(t *testing.T) {
	flow, _, _, notices := newTestFlow(t)

	err := flow.ProceedToCheckout()
	if !errors.Is(err, ErrEmptyCart) {
		t.Errorf("err = %v, want ErrEmptyCart", err)
	}
	if flow.Step() != StepCart {
		t.Errorf("step = %s, want cart", flow.Step())
	}
	if notices.lastError() == "" {
		t.Error("expected an empty-cart notice")
	}
}

func TestFlow_CheckoutGuards(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(flow *Flow, cart *Cart)
		wantErr error
	}{
		{
			"missing pickup time",
			func(flow *Flow, cart *Cart) {
				flow.SetCustomerName("Ana")
				flow.SetCustomerPhone("555-0000")
			},
			ErrNoPickupTime,
		},
		{
			"missing name",
			func(flow *Flow, cart *Cart) {
				cart.SetPickupTime("10:30")
				flow.SetCustomerPhone("555-0000")
			},
			ErrMissingName,
		},
		{
			"missing phone",
			func(flow *Flow, cart *Cart) {
				cart.SetPickupTime("10:30")
				flow.SetCustomerName("Ana")
			},
			ErrMissingPhone,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flow, cart, _, notices := newTestFlow(t)
			cart.Add(menuItem("iced-vanilla-latte", "Iced Vanilla Latte", "6.00"))
			if err := flow.ProceedToCheckout(); err != nil {
				t.Fatalf("ProceedToCheckout: %v", err)
			}
			tt.prepare(flow, cart)

			err := flow.ProceedToPayment()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
			if flow.Step() != StepCheckout {
				t.Errorf("step = %s, want checkout", flow.Step())
			}
			if notices.lastError() == "" {
				t.Error("expected a field-specific notice")
			}
		})
	}
}

func TestFlow_BackEdgesKeepData(t *testing.T) {
	flow, cart, _, _ := newTestFlow(t)
	fillCheckout(t, flow, cart)

	if err := flow.BackToCheckout(); err != nil {
		t.Fatalf("BackToCheckout: %v", err)
	}
	if flow.Step() != StepCheckout {
		t.Fatalf("step = %s, want checkout", flow.Step())
	}
	if err := flow.BackToCart(); err != nil {
		t.Fatalf("BackToCart: %v", err)
	}
	if flow.Step() != StepCart {
		t.Fatalf("step = %s, want cart", flow.Step())
	}

	// Nothing was discarded on the way back.
	if cart.PickupTime() != "10:30" {
		t.Errorf("pickup time = %q, want 10:30", cart.PickupTime())
	}
	if c := flow.Customer(); c.Name != "Ana" || c.Phone != "555-0000" {
		t.Errorf("customer = %+v, want Ana / 555-0000", c)
	}
	if cart.IsEmpty() {
		t.Error("cart emptied by back navigation")
	}
}

func TestFlow_ConfirmWithoutMethod(t *testing.T) {
	flow, cart, store, _ := newTestFlow(t)
	fillCheckout(t, flow, cart)

	err := flow.ConfirmPayment()
	if !errors.Is(err, ErrNoPaymentMethod) {
		t.Errorf("err = %v, want ErrNoPaymentMethod", err)
	}
	if flow.Step() != StepPayment {
		t.Errorf("step = %s, want payment", flow.Step())
	}
	if _, err := store.Load(); !errors.Is(err, ErrNoOrder) {
		t.Errorf("store.Load err = %v, want ErrNoOrder", err)
	}
}

func TestFlow_InStorePayment(t *testing.T) {
	flow, cart, store, notices := newTestFlow(t)
	fillCheckout(t, flow, cart)

	if err := flow.ChoosePayment(PayAtPickup); err != nil {
		t.Fatalf("ChoosePayment: %v", err)
	}
	if err := flow.ConfirmPayment(); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if flow.Step() != StepConfirmation {
		t.Fatalf("step = %s, want confirmation", flow.Step())
	}

	order, err := store.Load()
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	if got := order.Total.StringFixed(2); got != "12.00" {
		t.Errorf("total = %s, want 12.00", got)
	}
	if order.PaymentMethod != "Pay at Pickup" {
		t.Errorf("payment method = %q, want Pay at Pickup", order.PaymentMethod)
	}
	if !regexp.MustCompile(`^AM\d{6}$`).MatchString(order.OrderNumber) {
		t.Errorf("order number = %q, want AM + 6 digits", order.OrderNumber)
	}
	if order.Customer.Name != "Ana" || order.Customer.Phone != "555-0000" {
		t.Errorf("customer = %+v", order.Customer)
	}
	if order.PickupTime != "10:30 AM" {
		t.Errorf("pickup time = %q, want 10:30 AM", order.PickupTime)
	}
	if len(order.Lines) != 1 {
		t.Fatalf("lines = %+v, want one", order.Lines)
	}
	l := order.Lines[0]
	if l.Name != "Iced Vanilla Latte" || l.Quantity != 2 || l.LineTotal.StringFixed(2) != "12.00" {
		t.Errorf("line = %+v", l)
	}
	if order.ID == "" {
		t.Error("order ID empty")
	}

	if len(notices.successes) != 1 {
		t.Fatalf("successes = %v, want one", notices.successes)
	}
	if !strings.Contains(notices.successes[0], order.OrderNumber) ||
		!strings.Contains(notices.successes[0], "10:30 AM") {
		t.Errorf("success notice = %q, want order number and pickup time", notices.successes[0])
	}
}

func TestFlow_OnlinePaymentAliasesInStore(t *testing.T) {
	flow, cart, store, notices := newTestFlow(t)
	fillCheckout(t, flow, cart)

	if err := flow.ChoosePayment(PayOnline); err != nil {
		t.Fatalf("ChoosePayment: %v", err)
	}
	if err := flow.ConfirmPayment(); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}
	if flow.Step() != StepConfirmation {
		t.Fatalf("step = %s, want confirmation", flow.Step())
	}

	order, err := store.Load()
	if err != nil {
		t.Fatalf("store.Load: %v", err)
	}
	// No distinct online-paid state: same record shape and label.
	if order.PaymentMethod != "Pay at Pickup" {
		t.Errorf("payment method = %q, want Pay at Pickup", order.PaymentMethod)
	}
	if len(notices.infos) != 1 || !strings.Contains(notices.infos[0], "Online Payment Coming Soon") {
		t.Errorf("infos = %v, want online-placeholder notice", notices.infos)
	}
}

func TestFlow_CompleteOrderResets(t *testing.T) {
	flow, cart, _, _ := newTestFlow(t)
	fillCheckout(t, flow, cart)
	cart.SetNotes("oat milk please")
	if err := flow.ChoosePayment(PayAtPickup); err != nil {
		t.Fatalf("ChoosePayment: %v", err)
	}
	if err := flow.ConfirmPayment(); err != nil {
		t.Fatalf("ConfirmPayment: %v", err)
	}

	if err := flow.CompleteOrder(); err != nil {
		t.Fatalf("CompleteOrder: %v", err)
	}
	if flow.Step() != StepCart {
		t.Errorf("step = %s, want cart", flow.Step())
	}
	if !cart.IsEmpty() {
		t.Error("cart not cleared")
	}
	if cart.PickupTime() != "" || cart.Notes() != "" {
		t.Errorf("pickup/notes not cleared: %q / %q", cart.PickupTime(), cart.Notes())
	}
	if c := flow.Customer(); c.Name != "" || c.Phone != "" {
		t.Errorf("customer not cleared: %+v", c)
	}
	if flow.Method() != "" {
		t.Errorf("method not cleared: %q", flow.Method())
	}
	if flow.LastOrder() != nil {
		t.Error("last order not cleared")
	}
}

func TestFlow_CloseCancelsInFlightPayment(t *testing.T) {
	flow, cart, store, notices := newTestFlow(t)
	flow.inStoreDelay = 200 * time.Millisecond
	fillCheckout(t, flow, cart)
	if err := flow.ChoosePayment(PayAtPickup); err != nil {
		t.Fatalf("ChoosePayment: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- flow.ConfirmPayment() }()
	time.Sleep(20 * time.Millisecond)
	flow.Close()

	select {
	case err := <-done:
		if !errors.Is(err, ErrFlowClosed) {
			t.Errorf("err = %v, want ErrFlowClosed", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("ConfirmPayment did not return after Close")
	}

	// Cancelled payment has no side effects.
	if _, err := store.Load(); !errors.Is(err, ErrNoOrder) {
		t.Errorf("store.Load err = %v, want ErrNoOrder", err)
	}
	if len(notices.successes) != 0 {
		t.Errorf("successes = %v, want none", notices.successes)
	}
	if flow.Step() != StepPayment {
		t.Errorf("step = %s, want payment", flow.Step())
	}
	if flow.Processing() {
		t.Error("processing flag still set after cancelled payment")
	}
}

func TestFlow_SecondConfirmRejectedWhileProcessing(t *testing.T) {
	flow, cart, _, _ := newTestFlow(t)
	flow.inStoreDelay = 150 * time.Millisecond
	fillCheckout(t, flow, cart)
	if err := flow.ChoosePayment(PayAtPickup); err != nil {
		t.Fatalf("ChoosePayment: %v", err)
	}

	done := make(chan error, 1)
	go func() { done <- flow.ConfirmPayment() }()
	time.Sleep(20 * time.Millisecond)

	if err := flow.ConfirmPayment(); !errors.Is(err, ErrProcessing) {
		t.Errorf("second confirm err = %v, want ErrProcessing", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("first confirm: %v", err)
	}
}

func TestGenerateOrderNumber(t *testing.T) {
	now := time.UnixMilli(1717999999123)
	if got := GenerateOrderNumber(now); got != "AM999123" {
		t.Errorf("GenerateOrderNumber = %q, want AM999123", got)
	}
	if got := GenerateOrderNumber(time.UnixMilli(1700000000000)); got != "AM000000" {
		t.Errorf("GenerateOrderNumber = %q, want AM000000", got)
	}
}
