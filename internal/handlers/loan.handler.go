package handlers

import (
	"context"
	"time"

	"github.com/fasthttp/router"
	"github.com/kisanpay/kisanpay/internal/model"
	xhttp "github.com/kisanpay/kisanpay/pkg/http"
	"github.com/shopspring/decimal"
)

type LoanService interface {
	Apply(ctx context.Context, app model.LoanApplication) (*model.Loan, error)
	Get(ctx context.Context, id int64) (*model.Loan, error)
	ListByAccount(ctx context.Context, accNo int64) ([]*model.Loan, error)
	Repay(ctx context.Context, loanID int64, amount decimal.Decimal) (*model.Loan, error)
}

type LoanHandler struct {
	svc LoanService
}

func RegisterLoanRoutes(e *router.Group, h *LoanHandler) {
	e.POST("/loans", h.Apply)
	e.GET("/loans/{id}", h.Get)
	e.POST("/loans/{id}/repay", h.Repay)
	e.GET("/accounts/{accNo}/loans", h.ListByAccount)
}

func NewLoanHandler(svc LoanService) *LoanHandler {
	return &LoanHandler{
		svc: svc,
	}
}

type applyLoanRequest struct {
	AccNo   int64           `json:"acc_no"`
	LoanAmt decimal.Decimal `json:"loan_amt"`
	DueDate string          `json:"due_date"`
}

type repayRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

func (h *LoanHandler) Apply(ctx *xhttp.RequestCtx) {
	var req applyLoanRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadRequest(ctx, "invalid JSON: "+err.Error())
		return
	}
	app := model.LoanApplication{AccNo: req.AccNo, LoanAmt: req.LoanAmt}
	if req.DueDate != "" {
		due, err := parseDate(req.DueDate)
		if err != nil {
			writeBadRequest(ctx, "invalid due_date")
			return
		}
		app.DueDate = &due
	}
	loan, err := h.svc.Apply(xhttp.RequestContext(ctx), app)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusCreated, loan)
}

func (h *LoanHandler) Get(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid loan id")
		return
	}
	loan, err := h.svc.Get(xhttp.RequestContext(ctx), id)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, loan)
}

func (h *LoanHandler) Repay(ctx *xhttp.RequestCtx) {
	id, ok := pathInt64(ctx, "id")
	if !ok {
		writeBadRequest(ctx, "invalid loan id")
		return
	}
	var req repayRequest
	if err := readJSON(ctx, &req); err != nil {
		writeBadRequest(ctx, "invalid JSON: "+err.Error())
		return
	}
	loan, err := h.svc.Repay(xhttp.RequestContext(ctx), id, req.Amount)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, loan)
}

func (h *LoanHandler) ListByAccount(ctx *xhttp.RequestCtx) {
	accNo, ok := pathInt64(ctx, "accNo")
	if !ok {
		writeBadRequest(ctx, "invalid account number")
		return
	}
	loans, err := h.svc.ListByAccount(xhttp.RequestContext(ctx), accNo)
	if err != nil {
		writeError(ctx, err)
		return
	}
	writeJSON(ctx, xhttp.StatusOK, newList(loans))
}

// parseDate accepts YYYY-MM-DD or RFC3339.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
