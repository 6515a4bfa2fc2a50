package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/commerce-choreography/internal/order/application"
	"github.com/dmehra2102/commerce-choreography/internal/order/domain"
	"github.com/dmehra2102/commerce-choreography/pkg/apperror"
	"github.com/dmehra2102/commerce-choreography/pkg/httpx"
)

type Handler struct {
	log     *slog.Logger
	service *application.Service
	tracer  trace.Tracer
}

func NewHandler(log *slog.Logger, service *application.Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
		tracer:  otel.Tracer("order-http"),
	}
}

type createOrderReq struct {
	UserID     string   `json:"userId"`
	Products   []string `json:"products"`
	OrderType  string   `json:"orderType"`
	TotalPrice *float64 `json:"totalPrice"`
}

type orderDTO struct {
	OrderID    string    `json:"orderId"`
	UserID     string    `json:"userId"`
	Products   []string  `json:"products"`
	OrderDate  time.Time `json:"orderDate"`
	OrderType  string    `json:"orderType"`
	Status     string    `json:"orderStatus"`
	TotalPrice float64   `json:"totalPrice"`
}

func toDTO(o *domain.Order) orderDTO {
	return orderDTO{
		OrderID:    o.ID,
		UserID:     o.UserID,
		Products:   o.Products,
		OrderDate:  o.OrderDate,
		OrderType:  string(o.Type),
		Status:     string(o.Status),
		TotalPrice: o.TotalPrice.InexactFloat64(),
	}
}

func (h *Handler) Routes(r chi.Router) {
	r.Post("/orders", h.createOrder)
	r.Get("/orders/{id}", h.getOrder)
	r.Post("/orders/{id}/complete", h.completeOrder)
}

func (h *Handler) createOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateOrder")
	defer span.End()

	var req createOrderReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	if req.UserID == "" {
		httpx.WriteError(w, r, h.log, apperror.Validation("userId is required"))
		return
	}
	cmd := application.CreateOrderCmd{UserID: req.UserID, Products: req.Products}
	switch domain.OrderType(req.OrderType) {
	case "", domain.TypeStandard:
	case domain.TypePriority:
		cmd.Priority = true
	default:
		httpx.WriteError(w, r, h.log, apperror.Validation("orderType must be Standard or Priority"))
		return
	}
	if req.TotalPrice != nil {
		total := decimal.NewFromFloat(*req.TotalPrice)
		cmd.TotalPrice = &total
	}

	o, err := h.service.CreateOrder(ctx, cmd)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	span.SetAttributes(attribute.String("order.id", o.ID))
	httpx.WriteJSON(w, http.StatusCreated, toDTO(o))
}

func (h *Handler) getOrder(w http.ResponseWriter, r *http.Request) {
	o, err := h.service.GetOrder(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(o))
}

func (h *Handler) completeOrder(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CompleteOrder")
	defer span.End()

	o, err := h.service.CompleteOrder(ctx, chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(o))
}
