// Package checkout drives the browsing → payment entry → completed flow.
package checkout

import (
	"fmt"
	"strings"
	"time"

	"storefront-service/cart"
	apperrors "storefront-service/common/errors"
	"storefront-service/models"

	"github.com/google/uuid"
)

// Action is a shopper intent that may move the checkout state.
type Action string

const (
	ActionBeginCheckout    Action = "begin_checkout"
	ActionCancelCheckout   Action = "cancel_checkout"
	ActionConfirmPurchase  Action = "confirm_purchase"
	ActionContinueShopping Action = "continue_shopping"
)

type transitionKey struct {
	from   models.CheckoutState
	action Action
}

// transitions is the complete set of legal moves; anything else is illegal.
var transitions = map[transitionKey]models.CheckoutState{
	{models.CheckoutBrowsing, ActionBeginCheckout}:       models.CheckoutPaymentEntry,
	{models.CheckoutPaymentEntry, ActionCancelCheckout}:  models.CheckoutBrowsing,
	{models.CheckoutPaymentEntry, ActionConfirmPurchase}: models.CheckoutCompleted,
	{models.CheckoutCompleted, ActionContinueShopping}:   models.CheckoutBrowsing,
}

// ErrEmptyCart is returned when checkout is started or confirmed without lines.
var ErrEmptyCart = apperrors.InvalidArgument("cart is empty")

// Next returns the target state for action from state, if the move is legal.
func Next(state models.CheckoutState, action Action) (models.CheckoutState, bool) {
	to, ok := transitions[transitionKey{state, action}]
	return to, ok
}

// IDGenerator returns a fresh order id.
type IDGenerator func() string

// Machine tracks one session's checkout state.
type Machine struct {
	state   models.CheckoutState
	orderID string
	newID   IDGenerator
	now     func() time.Time
}

type Option func(*Machine)

func WithIDGenerator(gen IDGenerator) Option {
	return func(m *Machine) { m.newID = gen }
}

func WithClock(now func() time.Time) Option {
	return func(m *Machine) { m.now = now }
}

// NewMachine starts in Browsing.
func NewMachine(opts ...Option) *Machine {
	m := &Machine{
		state: models.CheckoutBrowsing,
		newID: NewOrderID,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Machine) State() models.CheckoutState { return m.state }

// OrderID is the id of the order shown in the Completed view, if any.
func (m *Machine) OrderID() string { return m.orderID }

// Restore resets the machine to a previously snapshotted position.
func (m *Machine) Restore(state models.CheckoutState, orderID string) {
	m.state = state
	m.orderID = ""
	if state == models.CheckoutCompleted {
		m.orderID = orderID
	}
}

func (m *Machine) transition(action Action) (models.CheckoutState, error) {
	to, ok := Next(m.state, action)
	if !ok {
		return m.state, apperrors.IllegalTransition(fmt.Sprintf("cannot %s while %s", action, m.state))
	}
	return to, nil
}

// BeginCheckout moves Browsing → PaymentEntry when the cart has lines.
func (m *Machine) BeginCheckout(c *cart.Store) error {
	to, err := m.transition(ActionBeginCheckout)
	if err != nil {
		return err
	}
	if c.IsEmpty() {
		return ErrEmptyCart
	}
	m.state = to
	return nil
}

// CancelCheckout moves PaymentEntry → Browsing, leaving the cart untouched.
func (m *Machine) CancelCheckout() error {
	to, err := m.transition(ActionCancelCheckout)
	if err != nil {
		return err
	}
	m.state = to
	return nil
}

// ConfirmPurchase moves PaymentEntry → Completed. The cart lines are
// snapshotted into the returned order and the cart is cleared.
func (m *Machine) ConfirmPurchase(c *cart.Store) (models.Order, error) {
	to, err := m.transition(ActionConfirmPurchase)
	if err != nil {
		return models.Order{}, err
	}
	if c.IsEmpty() {
		return models.Order{}, ErrEmptyCart
	}

	order := models.Order{
		ID:       m.newID(),
		Lines:    c.Lines(),
		Total:    c.Total(),
		PlacedAt: m.now(),
	}
	c.Clear()
	m.state = to
	m.orderID = order.ID
	return order, nil
}

// ContinueShopping moves Completed → Browsing and forgets the order id.
func (m *Machine) ContinueShopping() error {
	to, err := m.transition(ActionContinueShopping)
	if err != nil {
		return err
	}
	m.state = to
	m.orderID = ""
	return nil
}

// NewOrderID returns ids shaped ORD-<unix millis>-<9 lowercase hex chars>.
func NewOrderID() string {
	return newOrderIDAt(time.Now())
}

func newOrderIDAt(t time.Time) string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:9]
	return fmt.Sprintf("ORD-%d-%s", t.UnixMilli(), suffix)
}
