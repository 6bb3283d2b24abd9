// Package analytics maps storefront actions to Adobe Analytics style
// tracking payloads. Every function here is pure: same inputs, same payload,
// and nothing is logged or sent.
package analytics

import (
	"strconv"

	"storefront-service/models"
)

// DefaultChannel is used when PageView is called without a channel.
const DefaultChannel = "web"

// Page names used by the storefront.
const (
	PageHome            = "홈페이지"
	PageAllProducts     = "전체상품"
	PageCheckout        = "체크아웃"
	PageCart            = "장바구니"
	PageSearchResults   = "검색결과"
	PageOrderComplete   = "구매완료"
	productDetailPrefix = "상품상세:"
)

// Values for the "events" variable.
const (
	eventsPageView       = "event1"
	eventsInternalSearch = "event2"
	eventsPromoClick     = "event3"
	eventsProdView       = "prodView"
	eventsScAdd          = "scAdd"
	eventsScRemove       = "scRemove"
	eventsScView         = "scView"
	eventsScCheckout     = "scCheckout"
	eventsPurchase       = "purchase"
)

func PageView(pageName, channel string) models.TrackingPayload {
	if channel == "" {
		channel = DefaultChannel
	}
	return models.NewTrackingPayload(models.EventPageView, map[string]any{
		"pageName": pageName,
		"channel":  channel,
		"prop1":    pageName,
		"eVar1":    channel,
		"events":   eventsPageView,
	})
}

func ProductView(p models.Product) models.TrackingPayload {
	return models.NewTrackingPayload(models.EventProductView, map[string]any{
		"pageName": productDetailPrefix + p.Name,
		"products": EncodeProduct(p.SKU),
		"events":   eventsProdView,
		"prop2":    p.Category,
		"eVar2":    p.SKU,
		"eVar3":    p.Name,
		"eVar4":    p.Category,
	})
}

func AddToCart(p models.Product, quantity int) models.TrackingPayload {
	return models.NewTrackingPayload(models.EventAddToCart, map[string]any{
		"products": EncodeLine(p.SKU, quantity, p.Price),
		"events":   eventsScAdd,
		"prop3":    "add_to_cart",
		"eVar5":    p.SKU,
		"eVar6":    strconv.Itoa(quantity),
	})
}

// RemoveFromCart reports quantity units of p leaving the cart. Callers pass
// the line as it was before the removal.
func RemoveFromCart(p models.Product, quantity int) models.TrackingPayload {
	return models.NewTrackingPayload(models.EventRemoveFromCart, map[string]any{
		"products": EncodeLine(p.SKU, quantity, p.Price),
		"events":   eventsScRemove,
		"prop3":    "remove_from_cart",
		"eVar5":    p.SKU,
	})
}

// CartView reports the cart contents; eVar7 is the number of lines.
func CartView(lines []models.CartLine) models.TrackingPayload {
	return models.NewTrackingPayload(models.EventCartView, map[string]any{
		"pageName": PageCart,
		"products": EncodeLines(lines),
		"events":   eventsScView,
		"prop4":    "cart_view",
		"eVar7":    strconv.Itoa(len(lines)),
	})
}

func CheckoutStart(lines []models.CartLine, step int) models.TrackingPayload {
	s := strconv.Itoa(step)
	return models.NewTrackingPayload(models.EventCheckout, map[string]any{
		"pageName": PageCheckout + ":Step" + s,
		"products": EncodeLines(lines),
		"events":   eventsScCheckout,
		"prop5":    "checkout_step_" + s,
		"eVar8":    strconv.FormatInt(LinesTotal(lines), 10),
		"eVar9":    s,
	})
}

// Purchase reports a completed order. The order id doubles as the
// de-duplication key (purchaseID) and the transaction id.
func Purchase(lines []models.CartLine, orderID string) models.TrackingPayload {
	return models.NewTrackingPayload(models.EventPurchase, map[string]any{
		"pageName":      PageOrderComplete,
		"products":      EncodeLines(lines),
		"events":        eventsPurchase,
		"purchaseID":    orderID,
		"transactionID": orderID,
		"prop6":         "purchase_complete",
		"eVar10":        orderID,
		"eVar11":        strconv.FormatInt(LinesTotal(lines), 10),
		"eVar12":        strconv.Itoa(len(lines)),
	})
}

func InternalSearch(term string, resultCount int) models.TrackingPayload {
	return models.NewTrackingPayload(models.EventInternalSearch, map[string]any{
		"pageName": PageSearchResults,
		"prop7":    term,
		"eVar13":   term,
		"eVar14":   strconv.Itoa(resultCount),
		"events":   eventsInternalSearch,
	})
}

func PromoClick(promoName, promoPosition string) models.TrackingPayload {
	return models.NewTrackingPayload(models.EventPromoClick, map[string]any{
		"prop8":  promoName,
		"eVar15": promoName,
		"eVar16": promoPosition,
		"events": eventsPromoClick,
	})
}
