package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"cafe-telegram/models"
)

// Step is the visible stage of the ordering flow.
type Step string

const (
	StepCart         Step = "cart"
	StepCheckout     Step = "checkout"
	StepPayment      Step = "payment"
	StepConfirmation Step = "confirmation"
)

// PaymentMethod selects how the customer intends to pay. PayOnline is a
// placeholder until a real processor is integrated: it records the order
// as pay-at-pickup after notifying the customer.
type PaymentMethod string

const (
	PayAtPickup PaymentMethod = "in-store"
	PayOnline   PaymentMethod = "online"
)

// PayAtPickupLabel is the payment label written to every order record.
const PayAtPickupLabel = "Pay at Pickup"

const orderNumberPrefix = "AM"

var (
	ErrEmptyCart       = errors.New("cart is empty")
	ErrNoPickupTime    = errors.New("no pickup time selected")
	ErrMissingName     = errors.New("customer name is required")
	ErrMissingPhone    = errors.New("customer phone is required")
	ErrNoPaymentMethod = errors.New("no payment method chosen")
	ErrProcessing      = errors.New("payment already processing")
	ErrWrongStep       = errors.New("action not valid in current step")
	ErrFlowClosed      = errors.New("ordering flow closed")
)

// Notifier delivers transient toast-style messages to the customer.
// Fire-and-forget; implementations must not call back into the flow.
type Notifier interface {
	Success(title, detail string)
	Info(title, detail string)
	Error(text string)
}

// OrderStore persists the single most recent order record.
type OrderStore interface {
	Save(o *models.OrderRecord) error
	Load() (*models.OrderRecord, error)
}

// Flow drives one customer's checkout: Cart -> Checkout -> Payment ->
// Confirmation, with explicit back edges. It reads the cart but mutates it
// only on completion (clear). The simulated payment delay is tied to the
// flow's lifetime: Close cancels an in-flight payment before it persists
// anything.
type Flow struct {
	mu         sync.Mutex
	step       Step
	cart       *Cart
	store      OrderStore
	notify     Notifier
	customer   models.CustomerInfo
	method     PaymentMethod // empty until chosen
	processing bool
	lastOrder  *models.OrderRecord

	now          func() time.Time
	inStoreDelay time.Duration
	onlineDelay  time.Duration

	ctx    context.Context
	cancel context.CancelFunc
}

func NewFlow(cart *Cart, store OrderStore, notify Notifier) *Flow {
	ctx, cancel := context.WithCancel(context.Background())
	return &Flow{
		step:         StepCart,
		cart:         cart,
		store:        store,
		notify:       notify,
		now:          time.Now,
		inStoreDelay: time.Second,
		onlineDelay:  1500 * time.Millisecond,
		ctx:          ctx,
		cancel:       cancel,
	}
}

func (f *Flow) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

func (f *Flow) Processing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.processing
}

func (f *Flow) SetCustomerName(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customer.Name = name
}

func (f *Flow) SetCustomerPhone(phone string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.customer.Phone = phone
}

func (f *Flow) Customer() models.CustomerInfo {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.customer
}

func (f *Flow) Method() PaymentMethod {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.method
}

// LastOrder returns the record placed by this flow, nil before confirmation.
func (f *Flow) LastOrder() *models.OrderRecord {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastOrder
}

// ProceedToCheckout moves Cart -> Checkout. Rejected with a toast when the
// cart is empty.
func (f *Flow) ProceedToCheckout() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepCart {
		return ErrWrongStep
	}
	if f.cart.IsEmpty() {
		f.notify.Error("Your cart is empty")
		return ErrEmptyCart
	}
	f.step = StepCheckout
	return nil
}

// ProceedToPayment moves Checkout -> Payment once a pickup time is selected
// and name and phone are filled in. Each missing field gets its own toast.
func (f *Flow) ProceedToPayment() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepCheckout {
		return ErrWrongStep
	}
	if f.cart.PickupTime() == "" {
		f.notify.Error("Please select a pickup time")
		return ErrNoPickupTime
	}
	if f.customer.Name == "" {
		f.notify.Error("Please provide your name")
		return ErrMissingName
	}
	if f.customer.Phone == "" {
		f.notify.Error("Please provide your phone number")
		return ErrMissingPhone
	}
	f.step = StepPayment
	return nil
}

// BackToCart returns from Checkout without discarding anything.
func (f *Flow) BackToCart() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepCheckout {
		return ErrWrongStep
	}
	f.step = StepCart
	return nil
}

// BackToCheckout returns from Payment without discarding anything.
func (f *Flow) BackToCheckout() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepPayment {
		return ErrWrongStep
	}
	f.step = StepCheckout
	return nil
}

// ChoosePayment records the selected method. Only valid on the payment step.
func (f *Flow) ChoosePayment(m PaymentMethod) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepPayment {
		return ErrWrongStep
	}
	if m != PayAtPickup && m != PayOnline {
		return fmt.Errorf("unknown payment method %q", m)
	}
	f.method = m
	return nil
}

// ConfirmPayment runs the simulated payment and, on success, persists the
// order and moves to Confirmation. Blocks for the simulated delay; callers
// run it in its own goroutine. A second call while processing is rejected
// silently (the confirm control is disabled). Returns ErrFlowClosed without
// side effects when the flow was closed mid-delay.
func (f *Flow) ConfirmPayment() error {
	f.mu.Lock()
	if f.step != StepPayment {
		f.mu.Unlock()
		return ErrWrongStep
	}
	// Silent rejections: the confirm control is disabled until a method is
	// chosen, and again while a payment is processing.
	if f.method == "" {
		f.mu.Unlock()
		return ErrNoPaymentMethod
	}
	if f.processing {
		f.mu.Unlock()
		return ErrProcessing
	}
	f.processing = true
	method := f.method
	f.mu.Unlock()

	if method == PayOnline {
		if err := f.wait(f.onlineDelay); err != nil {
			f.clearProcessing()
			return err
		}
		// Placeholder until a real processor handles PayOnline: tell the
		// customer and fall through to the pay-at-pickup path.
		number := GenerateOrderNumber(f.now())
		f.notify.Info("Online Payment Coming Soon!",
			fmt.Sprintf("For now, please pay in store. Order #%s saved.", number))
	}

	if err := f.wait(f.inStoreDelay); err != nil {
		f.clearProcessing()
		return err
	}
	return f.complete()
}

// CompleteOrder resets everything after Confirmation: cart, customer info,
// notes, pickup time and payment method all cleared, flow back at Cart.
func (f *Flow) CompleteOrder() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step != StepConfirmation {
		return ErrWrongStep
	}
	f.cart.Clear()
	f.customer = models.CustomerInfo{}
	f.method = ""
	f.lastOrder = nil
	f.step = StepCart
	return nil
}

// Close abandons the flow. An in-flight simulated payment is cancelled and
// completes without persisting or notifying.
func (f *Flow) Close() {
	f.cancel()
}

func (f *Flow) wait(d time.Duration) error {
	if err := f.ctx.Err(); err != nil {
		return ErrFlowClosed
	}
	select {
	case <-time.After(d):
		return nil
	case <-f.ctx.Done():
		return ErrFlowClosed
	}
}

func (f *Flow) clearProcessing() {
	f.mu.Lock()
	f.processing = false
	f.mu.Unlock()
}

func (f *Flow) complete() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ctx.Err() != nil {
		f.processing = false
		return ErrFlowClosed
	}

	now := f.now()
	number := GenerateOrderNumber(now)
	pickup := FormatSlotValue(GenerateTimeSlots(now), f.cart.PickupTime())

	lines := f.cart.Lines()
	orderLines := make([]models.OrderLine, len(lines))
	for i, l := range lines {
		orderLines[i] = models.OrderLine{
			Name:      l.Name,
			Quantity:  l.Qty,
			UnitPrice: l.Price,
			LineTotal: l.Subtotal(),
		}
	}

	record := &models.OrderRecord{
		ID:            uuid.NewString(),
		OrderNumber:   number,
		Customer:      f.customer,
		PickupTime:    pickup,
		Lines:         orderLines,
		Notes:         f.cart.Notes(),
		Total:         f.cart.Total(),
		PaymentMethod: PayAtPickupLabel,
		PlacedAt:      now,
	}

	// A failed write is non-fatal: the flow still confirms, receipt and
	// forwarding just won't find a stored record.
	if err := f.store.Save(record); err != nil {
		log.Printf("save order %s: %v", number, err)
	}

	f.lastOrder = record
	f.processing = false
	f.step = StepConfirmation
	f.notify.Success("Order Placed!",
		fmt.Sprintf("Order #%s confirmed for %s", number, pickup))
	return nil
}

// GenerateOrderNumber builds the human-readable order code: a fixed prefix
// plus the last six digits of the epoch-millisecond timestamp. Not unique
// across restarts within the same suffix window; fine for a single till.
func GenerateOrderNumber(now time.Time) string {
	ms := strconv.FormatInt(now.UnixMilli(), 10)
	return orderNumberPrefix + ms[len(ms)-6:]
}
