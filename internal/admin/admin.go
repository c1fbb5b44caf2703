// Package admin is the back-office console: listings across all customers,
// account top-ups, the product catalog, loan managers and loan decisions.
package admin

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/kisanpay/kisanpay/internal/model"
	"github.com/kisanpay/kisanpay/internal/services"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

type LedgerService interface {
	ListCustomers(ctx context.Context) ([]*model.Customer, error)
	ListAllTransactions(ctx context.Context) ([]*model.Transaction, error)
	AddMoney(ctx context.Context, customerID int64, amount decimal.Decimal) (*model.Account, error)
}

type MarketplaceService interface {
	ListAllInventory(ctx context.Context) ([]*model.InventoryItem, error)
	ListAllOrders(ctx context.Context) ([]*model.Order, error)
	AddProduct(ctx context.Context, p model.Product) (*model.Product, error)
	ListProducts(ctx context.Context) ([]*model.Product, error)
}

type LoanService interface {
	ListAll(ctx context.Context) ([]*model.Loan, error)
	SetStatus(ctx context.Context, loanID int64, status model.LoanStatus, managerID *int64) (*model.Loan, error)
	RegisterManager(ctx context.Context, m model.Manager) (*model.Manager, error)
	ListManagers(ctx context.Context) ([]*model.Manager, error)
}

type Handler struct {
	ledger LedgerService
	market MarketplaceService
	loans  LoanService
}

func NewHandler(ledger LedgerService, market MarketplaceService, loans LoanService) *Handler {
	return &Handler{
		ledger: ledger,
		market: market,
		loans:  loans,
	}
}

type addMoneyRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

type addProductRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	BasePrice   decimal.Decimal `json:"base_price"`
}

type addManagerRequest struct {
	FirstName string `json:"f_name" binding:"required"`
	LastName  string `json:"l_name"`
}

type loanDecisionRequest struct {
	ManagerID *int64 `json:"manager_id"`
}

func (h *Handler) ListCustomers(c *gin.Context) {
	customers, err := h.ledger.ListCustomers(c.Request.Context())
	respond(c, http.StatusOK, customers, err)
}

func (h *Handler) ListTransactions(c *gin.Context) {
	txns, err := h.ledger.ListAllTransactions(c.Request.Context())
	respond(c, http.StatusOK, txns, err)
}

func (h *Handler) ListInventory(c *gin.Context) {
	items, err := h.market.ListAllInventory(c.Request.Context())
	respond(c, http.StatusOK, items, err)
}

func (h *Handler) ListOrders(c *gin.Context) {
	orders, err := h.market.ListAllOrders(c.Request.Context())
	respond(c, http.StatusOK, orders, err)
}

func (h *Handler) ListProducts(c *gin.Context) {
	products, err := h.market.ListProducts(c.Request.Context())
	respond(c, http.StatusOK, products, err)
}

func (h *Handler) ListLoans(c *gin.Context) {
	loans, err := h.loans.ListAll(c.Request.Context())
	respond(c, http.StatusOK, loans, err)
}

func (h *Handler) ListManagers(c *gin.Context) {
	managers, err := h.loans.ListManagers(c.Request.Context())
	respond(c, http.StatusOK, managers, err)
}

func (h *Handler) AddManager(c *gin.Context) {
	var req addManagerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	manager, err := h.loans.RegisterManager(c.Request.Context(), model.Manager{
		FirstName: req.FirstName,
		LastName:  req.LastName,
	})
	respond(c, http.StatusCreated, manager, err)
}

func (h *Handler) AddMoney(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req addMoneyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	account, err := h.ledger.AddMoney(c.Request.Context(), id, req.Amount)
	if err == nil {
		log.Info().
			Int64("customer_id", id).
			Str("amount", req.Amount.String()).
			Str("balance", account.Balance.String()).
			Msg("money added")
	}
	respond(c, http.StatusOK, account, err)
}

func (h *Handler) AddProduct(c *gin.Context) {
	var req addProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	product, err := h.market.AddProduct(c.Request.Context(), model.Product{
		Name:        req.Name,
		Description: req.Description,
		BasePrice:   req.BasePrice,
	})
	respond(c, http.StatusCreated, product, err)
}

func (h *Handler) ApproveLoan(c *gin.Context) {
	h.decideLoan(c, model.LoanApproved)
}

func (h *Handler) RejectLoan(c *gin.Context) {
	h.decideLoan(c, model.LoanRejected)
}

func (h *Handler) decideLoan(c *gin.Context, status model.LoanStatus) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req loanDecisionRequest
	// the body is optional
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}

	loan, err := h.loans.SetStatus(c.Request.Context(), id, status, req.ManagerID)
	if err == nil {
		log.Info().Int64("loan_id", id).Str("status", string(status)).Msg("loan decided")
	}
	respond(c, http.StatusOK, loan, err)
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

// SetupRouter configures all routes
func SetupRouter(handler *Handler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		start := time.Now()
		rid := c.GetHeader("X-Request-ID")
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Header("X-Request-ID", rid)
		c.Next()

		event := log.Info()
		if c.Writer.Status() >= http.StatusInternalServerError {
			event = log.Error()
		} else if c.Writer.Status() >= http.StatusBadRequest {
			event = log.Warn()
		}
		event.
			Str("request_id", rid).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", c.Writer.Status()).
			Dur("duration", time.Since(start)).
			Msg("Request processed")
	})

	v1 := router.Group("/admin/v1")
	{
		v1.GET("/customers", handler.ListCustomers)
		v1.POST("/customers/:id/add-money", handler.AddMoney)
		v1.GET("/transactions", handler.ListTransactions)
		v1.GET("/inventory", handler.ListInventory)
		v1.GET("/orders", handler.ListOrders)
		v1.GET("/products", handler.ListProducts)
		v1.POST("/products", handler.AddProduct)
		v1.GET("/managers", handler.ListManagers)
		v1.POST("/managers", handler.AddManager)
		v1.GET("/loans", handler.ListLoans)
		v1.POST("/loans/:id/approve", handler.ApproveLoan)
		v1.POST("/loans/:id/reject", handler.RejectLoan)
	}

	router.GET("/health", handler.HealthCheck)

	return router
}

func paramID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "invalid id",
			"code":  services.ErrInvalidInput.Code,
		})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"error":   "Invalid request",
		"code":    services.ErrInvalidInput.Code,
		"details": err.Error(),
	})
}

func respond(c *gin.Context, status int, body any, err error) {
	if err != nil {
		kind := services.KindOf(err)
		if kind == services.KindInternal {
			log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("admin request failed")
		}
		code, msg := services.Public(err)
		c.JSON(kind.HTTPStatus(), gin.H{"error": msg, "code": code})
		return
	}
	c.JSON(status, body)
}
