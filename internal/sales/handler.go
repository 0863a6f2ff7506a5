package sales

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/suncore-erp/suncore/internal/platform/httpx"
	"github.com/suncore-erp/suncore/internal/rbac"
	"github.com/suncore-erp/suncore/internal/sales/draft"
	"github.com/suncore-erp/suncore/internal/shared"
)

// Handler exposes the sale draft flow and sale records.
type Handler struct {
	logger  *slog.Logger
	service *Service
	rbac    rbac.Middleware
}

// NewHandler constructs the handler.
func NewHandler(logger *slog.Logger, service *Service, mw rbac.Middleware) *Handler {
	return &Handler{logger: logger, service: service, rbac: mw}
}

// MountDraftRoutes attaches the draft editing endpoints. Every route needs
// sales.create because the draft only exists to feed submission.
func (h *Handler) MountDraftRoutes(r chi.Router) {
	r.Use(h.rbac.RequireAll("sales.create"))

	r.Get("/", h.showDraft)
	r.Delete("/", h.cancelDraft)
	r.Put("/category", h.setCategory)
	r.Post("/customers", h.addCustomer)
	r.Delete("/customers/{customerID}", h.removeCustomer)
	r.Post("/items", h.addLineItem)
	r.Delete("/items/{productID}", h.removeLineItem)
	r.Put("/items/{productID}/quantity", h.setQuantity)
	r.Put("/items/{productID}/parameters", h.setParameters)
	r.Put("/items/{productID}/guarantor", h.setGuarantor)
	r.Delete("/items/{productID}/guarantor", h.removeGuarantor)
	r.Put("/items/{productID}/devices", h.setDevices)
	r.Delete("/items/{productID}/devices", h.removeDevices)
	r.Put("/items/{productID}/miscellaneous", h.setMiscellaneous)
	r.Delete("/items/{productID}/miscellaneous", h.removeMiscellaneous)
	r.Put("/identification", h.setIdentification)
	r.Put("/next-of-kin", h.setNextOfKin)
	r.Delete("/next-of-kin", h.clearNextOfKin)
}

// MountSaleRoutes attaches submission and sale record endpoints.
func (h *Handler) MountSaleRoutes(r chi.Router) {
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAll("sales.create"))
		r.Post("/create", h.submit)
	})
	r.Group(func(r chi.Router) {
		r.Use(h.rbac.RequireAny("sales.view", "sales.create"))
		r.Get("/", h.list)
		r.Get("/{id}", h.show)
	})
}

func (h *Handler) sessionID(r *http.Request) (string, bool) {
	sess := shared.SessionFromContext(r.Context())
	if sess == nil || sess.ID == "" {
		return "", false
	}
	return sess.ID, true
}

func (h *Handler) store(w http.ResponseWriter, r *http.Request) *draft.Store {
	id, ok := h.sessionID(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return nil
	}
	return h.service.Manager().Get(id)
}

// respondIssues writes either 204 on success or 422 with field issues.
func respondIssues(w http.ResponseWriter, issues []draft.Issue) {
	if issues != nil {
		httpx.ValidationProblem(w, issues)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func productID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "productID"), 10, 64)
}

func (h *Handler) showDraft(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	httpx.JSON(w, http.StatusOK, store.Snapshot())
}

func (h *Handler) cancelDraft(w http.ResponseWriter, r *http.Request) {
	id, ok := h.sessionID(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	h.service.Cancel(id)
	w.WriteHeader(http.StatusNoContent)
}

type categoryRequest struct {
	Category draft.Category `json:"category"`
}

func (h *Handler) setCategory(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	var req categoryRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	respondIssues(w, store.SetCategory(req.Category))
}

func (h *Handler) addCustomer(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	var ref draft.CustomerRef
	if err := httpx.DecodeJSON(r, &ref); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	respondIssues(w, store.AddCustomer(ref))
}

func (h *Handler) removeCustomer(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	id, err := strconv.ParseInt(chi.URLParam(r, "customerID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
		return
	}
	store.RemoveCustomer(id)
	w.WriteHeader(http.StatusNoContent)
}

type addItemRequest struct {
	ProductID int64 `json:"productId"`
}

func (h *Handler) addLineItem(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	var req addItemRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	respondIssues(w, store.AddLineItem(req.ProductID))
}

func (h *Handler) removeLineItem(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	id, err := productID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	store.RemoveLineItem(id)
	w.WriteHeader(http.StatusNoContent)
}

type quantityRequest struct {
	Quantity int `json:"quantity"`
}

func (h *Handler) setQuantity(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	id, err := productID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	var req quantityRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	respondIssues(w, store.SetQuantity(id, req.Quantity))
}

func (h *Handler) setParameters(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	id, err := productID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	var params draft.Parameters
	if err := httpx.DecodeJSON(r, &params); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	respondIssues(w, store.SetParameters(id, params))
}

func (h *Handler) setGuarantor(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	id, err := productID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	var g draft.GuarantorDetails
	if err := httpx.DecodeJSON(r, &g); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	respondIssues(w, store.SetGuarantor(id, g))
}

func (h *Handler) removeGuarantor(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	id, err := productID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	store.RemoveGuarantor(id)
	w.WriteHeader(http.StatusNoContent)
}

type devicesRequest struct {
	Devices []string `json:"devices"`
}

func (h *Handler) setDevices(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	id, err := productID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	var req devicesRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	respondIssues(w, store.SetDevices(id, req.Devices))
}

func (h *Handler) removeDevices(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	id, err := productID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	store.RemoveDevices(id)
	w.WriteHeader(http.StatusNoContent)
}

type miscRequest struct {
	MiscellaneousPrices map[string]float64 `json:"miscellaneousPrices"`
}

func (h *Handler) setMiscellaneous(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	id, err := productID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	var req miscRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	respondIssues(w, store.SetMiscellaneousCosts(id, req.MiscellaneousPrices))
}

func (h *Handler) removeMiscellaneous(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	id, err := productID(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid product id")
		return
	}
	store.RemoveMiscellaneousCosts(id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) setIdentification(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	var id draft.IdentificationDetails
	if err := httpx.DecodeJSON(r, &id); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	respondIssues(w, store.SetIdentification(id))
}

func (h *Handler) setNextOfKin(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	var nok draft.NextOfKinDetails
	if err := httpx.DecodeJSON(r, &nok); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed body")
		return
	}
	respondIssues(w, store.SetNextOfKin(nok))
}

func (h *Handler) clearNextOfKin(w http.ResponseWriter, r *http.Request) {
	store := h.store(w, r)
	if store == nil {
		return
	}
	store.ClearNextOfKin()
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.sessionID(r)
	if !ok {
		httpx.Problem(w, http.StatusUnauthorized, "Unauthorized", "sign in required")
		return
	}
	actorID, _ := rbac.CurrentUserID(r)

	sale, verrs, err := h.service.Submit(r.Context(), sessionID, actorID)
	if err != nil {
		if errors.Is(err, ErrEmptyDraft) {
			httpx.ValidationProblem(w, []draft.ValidationError{{
				Path:    []string{"saleItems"},
				Message: "no sale draft in progress",
			}})
			return
		}
		h.logger.Error("submit sale", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "sale could not be completed")
		return
	}
	if verrs != nil {
		httpx.ValidationProblem(w, verrs)
		return
	}
	httpx.JSON(w, http.StatusCreated, sale)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	req := ListSalesRequest{Limit: 20}
	q := r.URL.Query()
	if raw := q.Get("paymentMode"); raw != "" {
		mode := draft.PaymentMode(raw)
		if mode != draft.PaymentModeOneOff && mode != draft.PaymentModeInstallment {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid payment mode filter")
			return
		}
		req.PaymentMode = &mode
	}
	if raw := q.Get("customerId"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid customer id")
			return
		}
		req.CustomerID = &id
	}
	if n, err := strconv.Atoi(q.Get("limit")); err == nil && n > 0 {
		req.Limit = n
	}
	if n, err := strconv.Atoi(q.Get("offset")); err == nil && n >= 0 {
		req.Offset = n
	}

	list, total, err := h.service.List(r.Context(), req)
	if err != nil {
		h.logger.Error("list sales", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"sales": list, "total": total})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid sale id")
		return
	}
	sale, err := h.service.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.Problem(w, http.StatusNotFound, "Not Found", "sale not found")
			return
		}
		h.logger.Error("get sale", slog.Any("error", err))
		httpx.Problem(w, http.StatusInternalServerError, "Internal Error", "")
		return
	}
	httpx.JSON(w, http.StatusOK, sale)
}
