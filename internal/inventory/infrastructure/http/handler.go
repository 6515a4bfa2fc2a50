package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/commerce-choreography/internal/inventory/application"
	"github.com/dmehra2102/commerce-choreography/internal/inventory/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/httpx"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{log: log, service: service, tracer: otel.Tracer("inventory-http")}
}

type updateStockReq struct {
	StockLevel *int `json:"stockLevel"`
}

type itemDTO struct {
	ProductID  string `json:"productId"`
	StockLevel int    `json:"stockLevel"`
}

func toDTO(i domain.InventoryItem) itemDTO {
	return itemDTO{ProductID: i.ProductID, StockLevel: i.StockLevel}
}

func (h *Handler) Routes(r chi.Router) {
	r.Get("/inventory/{productId}", h.getItem)
	r.Put("/inventory/{productId}", h.updateStock)
}

func (h *Handler) getItem(w http.ResponseWriter, r *http.Request) {
	item, err := h.service.GetItem(r.Context(), chi.URLParam(r, "productId"))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(item))
}

func (h *Handler) updateStock(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateStockLevel")
	defer span.End()

	var req updateStockReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if req.StockLevel == nil {
		httpx.WriteError(w, r, h.log, apperror.Validation("stockLevel is required"))
		return
	}
	item, err := h.service.UpdateStockLevel(ctx, chi.URLParam(r, "productId"), *req.StockLevel)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(item))
}
