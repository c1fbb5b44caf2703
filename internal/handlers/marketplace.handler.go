package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/kisanpay/kisanpay/internal/model"
	xhttp "github.com/kisanpay/kisanpay/pkg/http"
	"github.com/shopspring/decimal"
)

type MarketplaceService interface {
	Purchase(ctx context.Context, req model.PurchaseRequest) (*model.Order, error)
	StockInventory(ctx context.Context, req model.StockRequest) (*model.InventoryItem, error)
	ListSellerInventory(ctx context.Context, sellerID int64) ([]*model.InventoryItem, error)
	ListAvailableInventory(ctx context.Context) ([]*model.InventoryItem, error)
	ListBuyerOrders(ctx context.Context, buyerID int64) ([]*model.Order, error)
	ListSellerOrders(ctx context.Context, sellerID int64) ([]*model.Order, error)
}

type MarketplaceHandler struct {
	svc MarketplaceService
}

func RegisterMarketplaceRoutes(e *router.Group, h *MarketplaceHandler) {
	e.GET("/inventory", h.ListAvailableInventory)
	e.POST("/customers/{id}/inventory", h.StockInventory)
	e.GET("/customers/{id}/inventory", h.ListSellerInventory)
	e.POST("/customers/{id}/purchase", h.Purchase)
	e.GET("/customers/{id}/orders", h.ListBuyerOrders)
	e.GET("/customers/{id}/sales", h.ListSellerOrders)
}

func NewMarketplaceHandler(svc MarketplaceService) *MarketplaceHandler {
	return &MarketplaceHandler{
		svc: svc,
	}
}

type stockRequest struct {
	ProductID   int64           `json:"product_id"`
	ProductName string          `json:"product_name"`
	Quantity    int64           `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
}

type purchaseRequest struct {
	InventoryID int64 `json:"inventory_id"`
	Quantity    int64 `json:"quantity"`
}

func (h *MarketplaceHandler) StockInventory(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid customer id")
		return
	}
	var req stockRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadRequest(ctx, "invalid JSON: "+err.Error())
		return
	}
	item, err := h.svc.StockInventory(xhttp.RequestContext(ctx), model.StockRequest{
		SellerID:    id,
		ProductID:   req.ProductID,
		ProductName: req.ProductName,
		Quantity:    req.Quantity,
		Price:       req.Price,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, item)
}

func (h *MarketplaceHandler) ListSellerInventory(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid customer id")
		return
	}
	items, err := h.svc.ListSellerInventory(xhttp.RequestContext(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, newList(items))
}

func (h *MarketplaceHandler) ListAvailableInventory(ctx *xhttp.RequestCtx) {
	items, err := h.svc.ListAvailableInventory(xhttp.RequestContext(ctx))
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, newList(items))
}

func (h *MarketplaceHandler) Purchase(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid customer id")
		return
	}
	var req purchaseRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadRequest(ctx, "invalid JSON: "+err.Error())
		return
	}
	order, err := h.svc.Purchase(xhttp.RequestContext(ctx), model.PurchaseRequest{
		BuyerID:     id,
		InventoryID: req.InventoryID,
		Quantity:    req.Quantity,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, order)
}

func (h *MarketplaceHandler) ListBuyerOrders(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid customer id")
		return
	}
	orders, err := h.svc.ListBuyerOrders(xhttp.RequestContext(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, newList(orders))
}

func (h *MarketplaceHandler) ListSellerOrders(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid customer id")
		return
	}
	orders, err := h.svc.ListSellerOrders(xhttp.RequestContext(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, newList(orders))
}
