package controllers

import (
	"context"
	"net/http"

	"storefront-service/catalog"
	"storefront-service/common/locale"
	"storefront-service/models"
	"storefront-service/services"
	"storefront-service/storefront"

	"github.com/gin-gonic/gin"
)

// IdempotencyKeyHeader makes purchase confirmation safe to retry.
const IdempotencyKeyHeader = "Idempotency-Key"

// SessionController handles the storefront session API.
type SessionController struct {
	sessionService services.SessionService
}

func NewSessionController(sessionService services.SessionService) *SessionController {
	return &SessionController{sessionService: sessionService}
}

func (sc *SessionController) respondError(ctx *gin.Context, svcErr *services.ServiceError) {
	if svcErr.IsWarning() {
		ctx.JSON(svcErr.StatusCode, gin.H{"warning": svcErr.Message})
		return
	}
	ctx.JSON(svcErr.StatusCode, gin.H{"error": svcErr.Message})
}

func (sc *SessionController) run(ctx *gin.Context, action services.Action) (*models.SessionView, bool) {
	view, svcErr := sc.sessionService.Do(ctx.Request.Context(), ctx.Param("id"), action)
	if svcErr != nil {
		sc.respondError(ctx, svcErr)
		return nil, false
	}
	return view, true
}

func (sc *SessionController) productViews(products []models.Product) []models.ProductView {
	format := sc.sessionService.Formatter()
	out := make([]models.ProductView, 0, len(products))
	for _, p := range products {
		out = append(out, toProductView(format, p))
	}
	return out
}

func toProductView(format *locale.Formatter, p models.Product) models.ProductView {
	v := models.ProductView{
		Product:         p,
		FormattedPrice:  format.Price(p.Price),
		DiscountPercent: p.DiscountPercent(),
		Stars:           locale.Stars(p.Rating),
	}
	if p.OriginalPrice != nil {
		v.FormattedOriginalPrice = format.Price(*p.OriginalPrice)
	}
	return v
}

// StartSession handles POST /sessions.
func (sc *SessionController) StartSession(ctx *gin.Context) {
	view, svcErr := sc.sessionService.Start(ctx.Request.Context())
	if svcErr != nil {
		sc.respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"session": view})
}

// EndSession handles DELETE /sessions/:id.
func (sc *SessionController) EndSession(ctx *gin.Context) {
	if svcErr := sc.sessionService.End(ctx.Request.Context(), ctx.Param("id")); svcErr != nil {
		sc.respondError(ctx, svcErr)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// GetSession handles GET /sessions/:id.
func (sc *SessionController) GetSession(ctx *gin.Context) {
	view, svcErr := sc.sessionService.Get(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		sc.respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": view})
}

// ListProducts handles GET /sessions/:id/products?q=&category=.
// A search term is recorded as an internal search.
func (sc *SessionController) ListProducts(ctx *gin.Context) {
	term := ctx.Query("q")
	category := ctx.DefaultQuery("category", catalog.CategoryAll)

	var products []models.Product
	var categories []string
	_, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		categories = sf.Catalog().Categories()
		if term == "" {
			products = sf.Catalog().Filter("", category)
			return nil
		}
		results, err := sf.Search(c, term)
		if err != nil {
			return err
		}
		for _, p := range results {
			if category == catalog.CategoryAll || p.Category == category {
				products = append(products, p)
			}
		}
		return nil
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{
		"products":   sc.productViews(products),
		"categories": categories,
		"count":      len(products),
	})
}

// GetProduct handles GET /sessions/:id/products/:product_id.
func (sc *SessionController) GetProduct(ctx *gin.Context) {
	var product models.Product
	_, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		p, err := sf.ViewProduct(c, ctx.Param("product_id"))
		product = p
		return err
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"product": toProductView(sc.sessionService.Formatter(), product)})
}

// NavigateHome handles POST /sessions/:id/navigation/home.
func (sc *SessionController) NavigateHome(ctx *gin.Context) {
	view, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		return sf.NavigateHome(c)
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": view})
}

// SelectCategory handles POST /sessions/:id/navigation/category.
func (sc *SessionController) SelectCategory(ctx *gin.Context) {
	var req models.CategoryRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	var products []models.Product
	_, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		var err error
		products, err = sf.SelectCategory(c, req.Category)
		return err
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"category": req.Category, "products": sc.productViews(products)})
}

// AddItem handles POST /sessions/:id/cart/items.
func (sc *SessionController) AddItem(ctx *gin.Context) {
	var req models.AddItemRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}
	qty := 1
	if req.Quantity != nil {
		qty = *req.Quantity
	}

	view, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		return sf.AddToCart(c, req.ProductID, qty)
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": view})
}

// RemoveItem handles DELETE /sessions/:id/cart/items/:product_id.
func (sc *SessionController) RemoveItem(ctx *gin.Context) {
	var removed bool
	view, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		var err error
		removed, err = sf.RemoveFromCart(c, ctx.Param("product_id"))
		return err
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": view, "removed": removed})
}

// ChangeQuantity handles PATCH /sessions/:id/cart/items/:product_id.
func (sc *SessionController) ChangeQuantity(ctx *gin.Context) {
	var req models.ChangeQuantityRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	view, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		return sf.ChangeQuantity(c, ctx.Param("product_id"), req.Delta)
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": view})
}

// ViewCart handles POST /sessions/:id/cart/view.
func (sc *SessionController) ViewCart(ctx *gin.Context) {
	view, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		return sf.OpenCart(c)
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": view})
}

// BeginCheckout handles POST /sessions/:id/checkout.
func (sc *SessionController) BeginCheckout(ctx *gin.Context) {
	view, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		return sf.BeginCheckout(c)
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": view})
}

// CancelCheckout handles DELETE /sessions/:id/checkout.
func (sc *SessionController) CancelCheckout(ctx *gin.Context) {
	view, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		return sf.CancelCheckout(c)
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": view})
}

// ConfirmPurchase handles POST /sessions/:id/checkout/confirm.
func (sc *SessionController) ConfirmPurchase(ctx *gin.Context) {
	result, svcErr := sc.sessionService.ConfirmPurchase(ctx.Request.Context(), ctx.Param("id"), ctx.GetHeader(IdempotencyKeyHeader))
	if svcErr != nil {
		sc.respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// ContinueShopping handles POST /sessions/:id/checkout/continue.
func (sc *SessionController) ContinueShopping(ctx *gin.Context) {
	view, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		return sf.ContinueShopping(c)
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"session": view})
}

// ClickPromotion handles POST /sessions/:id/promotions/click.
func (sc *SessionController) ClickPromotion(ctx *gin.Context) {
	var req models.PromotionClickRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request", "details": err.Error()})
		return
	}

	_, ok := sc.run(ctx, func(c context.Context, sf *storefront.Storefront) error {
		return sf.ClickPromotion(c, req.Name, req.Position)
	})
	if !ok {
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Promotion click recorded"})
}

// ListEvents handles GET /sessions/:id/events.
func (sc *SessionController) ListEvents(ctx *gin.Context) {
	events, svcErr := sc.sessionService.Events(ctx.Request.Context(), ctx.Param("id"))
	if svcErr != nil {
		sc.respondError(ctx, svcErr)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"events": events, "count": len(events)})
}
