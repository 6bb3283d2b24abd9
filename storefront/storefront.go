// Package storefront turns shopper actions into cart and checkout mutations
// and records one tracking payload per state-changing action.
package storefront

import (
	"context"
	"fmt"

	"storefront-service/analytics"
	"storefront-service/cart"
	"storefront-service/catalog"
	"storefront-service/checkout"
	apperrors "storefront-service/common/errors"
	"storefront-service/eventlog"
	"storefront-service/models"

	"go.uber.org/zap"
)

// CheckoutStep is the only checkout step the storefront reports.
const CheckoutStep = 1

// Storefront owns one session's cart, checkout machine and sink.
// Every action runs to completion before the next; it is not safe for
// concurrent use.
//
// Each action applies its mutation first, then builds exactly one payload
// from the resulting state and records it. When recording fails the mutation
// has already happened and is not rolled back.
type Storefront struct {
	catalog catalog.Catalog
	cart    *cart.Store
	machine *checkout.Machine
	sink    eventlog.Sink
	channel string
	logger  *zap.Logger
}

type Option func(*Storefront)

func WithChannel(channel string) Option {
	return func(s *Storefront) {
		if channel != "" {
			s.channel = channel
		}
	}
}

func New(cat catalog.Catalog, c *cart.Store, m *checkout.Machine, sink eventlog.Sink, logger *zap.Logger, opts ...Option) *Storefront {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Storefront{
		catalog: cat,
		cart:    c,
		machine: m,
		sink:    sink,
		channel: analytics.DefaultChannel,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Storefront) record(ctx context.Context, summary string, payload models.TrackingPayload) error {
	if err := s.sink.Record(ctx, payload.EventType(), summary, payload); err != nil {
		s.logger.Error("Failed to record analytics event",
			zap.String("event_type", string(payload.EventType())),
			zap.String("summary", summary),
			zap.Error(err),
		)
		return fmt.Errorf("record %s event: %w", payload.EventType(), err)
	}
	s.logger.Debug("Recorded analytics event",
		zap.String("event_type", string(payload.EventType())),
		zap.String("summary", summary),
	)
	return nil
}

func (s *Storefront) rejected(action string, err error) error {
	s.logger.Warn("Storefront action rejected", zap.String("action", action), zap.Error(err))
	return err
}

func (s *Storefront) product(id string) (models.Product, error) {
	p, ok := s.catalog.FindByID(id)
	if !ok {
		return models.Product{}, apperrors.InvalidArgumentf("unknown product %q", id)
	}
	return p, nil
}

// LoadHome reports the initial home page view of a session.
func (s *Storefront) LoadHome(ctx context.Context) error {
	return s.record(ctx, "홈페이지 로드", analytics.PageView(analytics.PageHome, s.channel))
}

// NavigateHome returns to the product grid from any checkout state and
// reports a home page view.
func (s *Storefront) NavigateHome(ctx context.Context) error {
	switch s.machine.State() {
	case models.CheckoutPaymentEntry:
		if err := s.machine.CancelCheckout(); err != nil {
			return s.rejected("navigate_home", err)
		}
	case models.CheckoutCompleted:
		if err := s.machine.ContinueShopping(); err != nil {
			return s.rejected("navigate_home", err)
		}
	}
	return s.record(ctx, "홈페이지 이동", analytics.PageView(analytics.PageHome, s.channel))
}

// SelectCategory reports a category page view and returns its products.
func (s *Storefront) SelectCategory(ctx context.Context, category string) ([]models.Product, error) {
	known := false
	for _, c := range s.catalog.Categories() {
		if c == category {
			known = true
			break
		}
	}
	if !known {
		return nil, s.rejected("select_category", apperrors.InvalidArgumentf("unknown category %q", category))
	}

	page, label := category, category
	if category == catalog.CategoryAll {
		page, label = analytics.PageAllProducts, "전체"
	}
	products := s.catalog.Filter("", category)
	return products, s.record(ctx, "카테고리: "+label, analytics.PageView(page, s.channel))
}

// Search returns the products matching term. A non-empty term is reported
// as an internal search, including searches with no results.
func (s *Storefront) Search(ctx context.Context, term string) ([]models.Product, error) {
	results := s.catalog.Search(term)
	if term == "" {
		return results, nil
	}
	summary := fmt.Sprintf("검색어: %q (%d건)", term, len(results))
	return results, s.record(ctx, summary, analytics.InternalSearch(term, len(results)))
}

func (s *Storefront) ViewProduct(ctx context.Context, productID string) (models.Product, error) {
	p, err := s.product(productID)
	if err != nil {
		return models.Product{}, s.rejected("view_product", err)
	}
	return p, s.record(ctx, "상품 조회: "+p.Name, analytics.ProductView(p))
}

func (s *Storefront) AddToCart(ctx context.Context, productID string, quantity int) error {
	p, err := s.product(productID)
	if err != nil {
		return s.rejected("add_to_cart", err)
	}
	if err := s.cart.AddItem(p, quantity); err != nil {
		return s.rejected("add_to_cart", err)
	}
	summary := fmt.Sprintf("장바구니 추가: %s x%d", p.Name, quantity)
	return s.record(ctx, summary, analytics.AddToCart(p, quantity))
}

// RemoveFromCart drops the whole line and reports what was removed. It
// reports false when the product had no line.
func (s *Storefront) RemoveFromCart(ctx context.Context, productID string) (bool, error) {
	if _, err := s.product(productID); err != nil {
		return false, s.rejected("remove_from_cart", err)
	}
	before, ok := s.cart.Line(productID)
	if !ok {
		return false, nil
	}
	s.cart.RemoveItem(productID)
	return true, s.record(ctx, "장바구니 삭제: "+before.Name, analytics.RemoveFromCart(before.Product, before.Quantity))
}

// ChangeQuantity adjusts a line by delta. A decrease that empties the line is
// handled as a removal. Unknown lines and a zero delta change nothing; an
// increase past cart.MaxQuantity is rejected before anything changes.
func (s *Storefront) ChangeQuantity(ctx context.Context, productID string, delta int) error {
	before, ok := s.cart.Line(productID)
	if !ok || delta == 0 {
		return nil
	}
	if delta < 0 && delta <= -before.Quantity {
		_, err := s.RemoveFromCart(ctx, productID)
		return err
	}

	if err := s.cart.ChangeQuantity(productID, delta); err != nil {
		return s.rejected("change_quantity", err)
	}
	if delta > 0 {
		summary := fmt.Sprintf("수량 증가: %s +%d", before.Name, delta)
		return s.record(ctx, summary, analytics.AddToCart(before.Product, delta))
	}
	summary := fmt.Sprintf("수량 감소: %s %d", before.Name, delta)
	return s.record(ctx, summary, analytics.RemoveFromCart(before.Product, -delta))
}

// OpenCart reports a cart view. An empty cart reports nothing.
func (s *Storefront) OpenCart(ctx context.Context) error {
	if s.cart.IsEmpty() {
		return nil
	}
	lines := s.cart.Lines()
	summary := fmt.Sprintf("장바구니 조회 (%d개 상품)", len(lines))
	return s.record(ctx, summary, analytics.CartView(lines))
}

func (s *Storefront) BeginCheckout(ctx context.Context) error {
	if err := s.machine.BeginCheckout(s.cart); err != nil {
		return s.rejected("begin_checkout", err)
	}
	return s.record(ctx, "체크아웃 시작", analytics.CheckoutStart(s.cart.Lines(), CheckoutStep))
}

// CancelCheckout returns to browsing with the cart unchanged.
func (s *Storefront) CancelCheckout(ctx context.Context) error {
	if err := s.machine.CancelCheckout(); err != nil {
		return s.rejected("cancel_checkout", err)
	}
	return s.record(ctx, "체크아웃 취소", analytics.PageView(analytics.PageHome, s.channel))
}

// ConfirmPurchase completes the order, empties the cart and reports the
// purchase built from the order snapshot.
func (s *Storefront) ConfirmPurchase(ctx context.Context) (models.Order, error) {
	order, err := s.machine.ConfirmPurchase(s.cart)
	if err != nil {
		return models.Order{}, s.rejected("confirm_purchase", err)
	}
	s.logger.Info("Order completed",
		zap.String("order_id", order.ID),
		zap.Int64("total", order.Total),
		zap.Int("lines", len(order.Lines)),
	)
	return order, s.record(ctx, "구매 완료: "+order.ID, analytics.Purchase(order.Lines, order.ID))
}

// ContinueShopping leaves the completed view and reports a home page view.
func (s *Storefront) ContinueShopping(ctx context.Context) error {
	if err := s.machine.ContinueShopping(); err != nil {
		return s.rejected("continue_shopping", err)
	}
	return s.record(ctx, "쇼핑 계속하기", analytics.PageView(analytics.PageHome, s.channel))
}

func (s *Storefront) ClickPromotion(ctx context.Context, name, position string) error {
	if name == "" {
		return s.rejected("click_promotion", apperrors.InvalidArgument("promotion name is required"))
	}
	return s.record(ctx, "프로모션 클릭: "+name, analytics.PromoClick(name, position))
}

func (s *Storefront) Lines() []models.CartLine { return s.cart.Lines() }

func (s *Storefront) Total() int64 { return s.cart.Total() }

func (s *Storefront) Count() int { return s.cart.Count() }

func (s *Storefront) State() models.CheckoutState { return s.machine.State() }

func (s *Storefront) OrderID() string { return s.machine.OrderID() }

func (s *Storefront) Catalog() catalog.Catalog { return s.catalog }

// Snapshot captures the cart and checkout state. Events are owned by the
// sink and are filled in by the caller.
func (s *Storefront) Snapshot(sessionID string) models.SessionSnapshot {
	return models.SessionSnapshot{
		SessionID: sessionID,
		Lines:     s.cart.Lines(),
		State:     s.machine.State(),
		OrderID:   s.machine.OrderID(),
	}
}
