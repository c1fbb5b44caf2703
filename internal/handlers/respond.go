package handlers

import (
	"encoding/json"
	"strconv"

	"github.com/kisanpay/kisanpay/internal/services"
	xhttp "github.com/kisanpay/kisanpay/pkg/http"
	"github.com/kisanpay/kisanpay/pkg/logger"
	"github.com/pkg/errors"
)

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

type listResponse[T any] struct {
	Items []T `json:"items"`
	Total int `json:"total"`
}

func newList[T any](items []T) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	return listResponse[T]{Items: items, Total: len(items)}
}

func readJSON(ctx *xhttp.RequestCtx, dst any) error {
	body := ctx.PostBody()
	if len(body) == 0 {
		return errors.New("empty body")
	}
	return json.Unmarshal(body, dst)
}

func writeJSON(ctx *xhttp.RequestCtx, status int, v any) {
	b, _ := json.Marshal(v)
	ctx.Response.Header.Set("Content-Type", "application/json; charset=utf-8")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBodyRaw(b)
}

// writeError renders err with the status its kind maps to. Internal causes are
// logged and never sent to the caller.
func writeError(ctx *xhttp.RequestCtx, err error) {
	kind := services.KindOf(err)
	if kind == services.KindInternal {
		logger.Error("request failed", "request_id", xhttp.RequestID(ctx), "path", string(ctx.Path()), "error", err)
	}
	code, msg := services.Public(err)
	writeJSON(ctx, kind.HTTPStatus(), errorResponse{Error: msg, Code: code})
}

func writeBadRequest(ctx *xhttp.RequestCtx, msg string) {
	writeJSON(ctx, xhttp.StatusBadRequest, errorResponse{Error: msg, Code: services.ErrInvalidInput.Code})
}

// pathInt64 reads a positive integer route parameter.
func pathInt64(ctx *xhttp.RequestCtx, name string) (int64, bool) {
	var raw string
	switch v := ctx.UserValue(name).(type) {
	case string:
		raw = v
	case []byte:
		raw = string(v)
	default:
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}
