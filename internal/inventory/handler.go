package inventory

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/suncore-erp/suncore/internal/platform/httpx"
	"github.com/suncore-erp/suncore/internal/rbac"
	"github.com/suncore-erp/suncore/internal/shared"
)

// Handler exposes inventory endpoints.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: mw}
}

// MountRoutes attaches inventory routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("inventory.view", "inventory.post"))
		r.Get("/balances", h.listBalances)
		r.Get("/balances/{productID}", h.getBalance)
		r.Get("/card/{productID}", h.stockCard)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("inventory.post"))
		r.Post("/inbound", h.postInbound)
		r.Post("/adjustment", h.postAdjustment)
	})
}

type movementRequest struct {
	Code      string  `json:"code"`
	ProductID int64   `json:"productId"`
	Qty       float64 `json:"qty"`
	UnitCost  float64 `json:"unitCost"`
	Note      string  `json:"note"`
}

func (h *Handler) postInbound(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	actorID, _ := rbac.CurrentUserID(r)
	entry, err := h.service.PostInbound(r.Context(), InboundInput{
		Code:      req.Code,
		ProductID: req.ProductID,
		Qty:       req.Qty,
		UnitCost:  req.UnitCost,
		Note:      req.Note,
		ActorID:   actorID,
	})
	if err != nil {
		h.respondError(w, err, "post inbound")
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) postAdjustment(w http.ResponseWriter, r *http.Request) {
	var req movementRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	actorID, _ := rbac.CurrentUserID(r)
	entry, err := h.service.PostAdjustment(r.Context(), AdjustmentInput{
		Code:      req.Code,
		ProductID: req.ProductID,
		Qty:       req.Qty,
		UnitCost:  req.UnitCost,
		Note:      req.Note,
		ActorID:   actorID,
	})
	if err != nil {
		h.respondError(w, err, "post adjustment")
		return
	}
	httpx.JSON(w, http.StatusCreated, entry)
}

func (h *Handler) listBalances(w http.ResponseWriter, r *http.Request) {
	balances, err := h.service.ListBalances(r.Context())
	if err != nil {
		h.logger.Error("list balances", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	out := make([]map[string]any, 0, len(balances))
	for _, b := range balances {
		out = append(out, map[string]any{
			"productId": b.ProductID,
			"qty":       b.Qty,
			"avgCost":   b.AvgCost,
			"updatedAt": b.UpdatedAt,
		})
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"balances": out})
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	b, err := h.service.GetBalance(r.Context(), productID)
	if err != nil && !errors.Is(err, ErrBalanceNotFound) {
		h.logger.Error("get balance", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"productId": b.ProductID,
		"qty":       b.Qty,
		"avgCost":   b.AvgCost,
	})
}

func (h *Handler) stockCard(w http.ResponseWriter, r *http.Request) {
	productID, err := strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	filter := StockCardFilter{ProductID: productID}
	q := r.URL.Query()
	if raw := q.Get("from"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.From = t
		}
	}
	if raw := q.Get("to"); raw != "" {
		if t, err := time.Parse("2006-01-02", raw); err == nil {
			filter.To = t
		}
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		filter.Limit = n
	}

	entries, err := h.service.GetStockCard(r.Context(), filter)
	if err != nil {
		h.respondError(w, err, "stock card")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"entries": entries})
}

func (h *Handler) respondError(w http.ResponseWriter, err error, op string) {
	switch {
	case errors.Is(err, ErrInvalidQuantity), errors.Is(err, ErrInvalidUnitCost):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", err.Error())
	case errors.Is(err, ErrNegativeStock):
		httpx.Problem(w, http.StatusUnprocessableEntity, "Validation Failed", "insufficient stock")
	case errors.Is(err, shared.ErrIdempotencyConflict):
		httpx.Problem(w, http.StatusConflict, "Duplicate", "movement already posted")
	default:
		h.logger.Error(op, slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
