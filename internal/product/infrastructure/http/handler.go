package http

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/dmehra2102/commerce-choreography/internal/product/application"
	"github.com/dmehra2102/commerce-choreography/internal/product/domain"
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
		tracer:  otel.Tracer("product-http"),
	}
}

type createProductReq struct {
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}

type updateProductReq struct {
	ProductID string          `json:"productId"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
}

type bracketDTO struct {
	Quantity int     `json:"quantity"`
	Price    float64 `json:"price"`
}

type productDTO struct {
	ProductID       string       `json:"productId"`
	Name            string       `json:"name"`
	Price           float64      `json:"price"`
	StockLevel      int          `json:"stockLevel"`
	PricingBrackets []bracketDTO `json:"pricingBrackets"`
}

func toDTO(p *domain.Product) productDTO {
	dto := productDTO{
		ProductID:       p.ID,
		Name:            p.Name,
		Price:           p.Price.InexactFloat64(),
		StockLevel:      p.StockLevel,
		PricingBrackets: make([]bracketDTO, 0, len(p.PriceBrackets)),
	}
	for _, b := range p.PriceBrackets {
		dto.PricingBrackets = append(dto.PricingBrackets, bracketDTO{Quantity: b.Quantity, Price: b.Price.InexactFloat64()})
	}
	return dto
}

// Routes mounts the product endpoints on r. Middleware applied to r (such
// as idempotency) wraps them.
func (h *Handler) Routes(r chi.Router) {
	r.Post("/product", h.createProduct)
	r.Put("/product", h.updateProduct)
	r.Get("/product", h.listProducts)
	r.Get("/product/{id}", h.getProduct)
	r.Delete("/product/{id}", h.deleteProduct)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "CreateProduct")
	defer span.End()

	var req createProductReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	p, err := h.service.CreateProduct(ctx, req.Name, req.Price)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, toDTO(p))
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	ctx, span := h.tracer.Start(r.Context(), "UpdateProduct")
	defer span.End()

	var req updateProductReq
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	p, err := h.service.UpdateProduct(ctx, req.ProductID, req.Name, req.Price)
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(p))
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.GetProduct(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, toDTO(p))
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.ListProducts(r.Context())
	if err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	out := make([]productDTO, 0, len(products))
	for _, p := range products {
		out = append(out, toDTO(p))
	}
	httpx.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.service.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		httpx.WriteError(w, r, h.log, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
