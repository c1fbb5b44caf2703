package handlers

import (
	"context"

	"github.com/fasthttp/router"
	"github.com/kisanpay/kisanpay/internal/model"
	xhttp "github.com/kisanpay/kisanpay/pkg/http"
	"github.com/shopspring/decimal"
)

type LedgerService interface {
	Signup(ctx context.Context, req model.SignupRequest) (*model.Profile, error)
	CreateAccount(ctx context.Context, customerID int64) (*model.Account, error)
	GetBalance(ctx context.Context, customerID int64) (*model.Account, error)
	GetProfile(ctx context.Context, customerID int64) (*model.Profile, error)
	Transfer(ctx context.Context, req model.TransferRequest) (*model.Transaction, error)
	ListTransactions(ctx context.Context, customerID int64) ([]*model.Transaction, error)
}

type CustomerHandler struct {
	svc LedgerService
}

func RegisterCustomerRoutes(e *router.Group, h *CustomerHandler) {
	e.POST("/customers/signup", h.Signup)
	e.GET("/customers/{id}/profile", h.GetProfile)
	e.POST("/customers/{id}/account", h.CreateAccount)
	e.GET("/customers/{id}/balance", h.GetBalance)
	e.POST("/customers/{id}/transfer", h.Transfer)
	e.GET("/customers/{id}/transactions", h.ListTransactions)
}

func NewCustomerHandler(svc LedgerService) *CustomerHandler {
	return &CustomerHandler{
		svc: svc,
	}
}

type transferRequest struct {
	TransferTo int64           `json:"transfer_to"`
	Amount     decimal.Decimal `json:"amount"`
}

type balanceResponse struct {
	AccNo   int64           `json:"acc_no"`
	Balance decimal.Decimal `json:"balance"`
}

func (h *CustomerHandler) Signup(ctx *xhttp.RequestCtx) {
	var req model.SignupRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadRequest(ctx, "invalid JSON: "+err.Error())
		return
	}
	profile, err := h.svc.Signup(xhttp.RequestContext(ctx), req)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, profile)
}

func (h *CustomerHandler) GetProfile(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid customer id")
		return
	}
	profile, err := h.svc.GetProfile(xhttp.RequestContext(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, profile)
}

func (h *CustomerHandler) CreateAccount(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid customer id")
		return
	}
	account, err := h.svc.CreateAccount(xhttp.RequestContext(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, account)
}

func (h *CustomerHandler) GetBalance(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid customer id")
		return
	}
	account, err := h.svc.GetBalance(xhttp.RequestContext(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, balanceResponse{AccNo: account.AccNo, Balance: account.Balance})
}

func (h *CustomerHandler) Transfer(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid customer id")
		return
	}
	var req transferRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadRequest(ctx, "invalid JSON: "+err.Error())
		return
	}
	txn, err := h.svc.Transfer(xhttp.RequestContext(ctx), model.TransferRequest{
		SenderID:   id,
		TransferTo: req.TransferTo,
		Amount:     req.Amount,
	})
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, txn)
}

func (h *CustomerHandler) ListTransactions(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid customer id")
		return
	}
	txns, err := h.svc.ListTransactions(xhttp.RequestContext(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, newList(txns))
}
