// Package handler exposes the quote service over HTTP.
package handler

import (
	"io"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-faster/sdk/zctx"
	"go.uber.org/zap"

	"github.com/xenking/kart-pricing/internal/domain/order"
	"github.com/xenking/kart-pricing/internal/domain/promotion"
	"github.com/xenking/kart-pricing/internal/quote"
)

// maxBodySize bounds quote request bodies.
const maxBodySize = 1 << 20

// Handler serves the pricing API.
type Handler struct {
	quotes *quote.Service
}

// New creates a Handler backed by the quote service.
func New(quotes *quote.Service) *Handler {
	return &Handler{quotes: quotes}
}

// Register mounts the API routes on mux under /api.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/quote", h.Quote)
	mux.HandleFunc("GET /api/promotions", h.ListPromotions)
}

// Quote prices the cart in the request body.
func (h *Handler) Quote(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err != nil {
		writeError(w, http.StatusBadRequest, "read body: "+err.Error())
		return
	}

	req, err := quote.DecodeRequest(jx.DecodeBytes(body))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.quotes.Quote(r.Context(), req)
	if err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			zctx.From(r.Context()).Error("Quote failed", zap.Error(err))
			writeError(w, status, "internal server error")
			return
		}
		writeError(w, status, err.Error())
		return
	}

	var e jx.Encoder
	quote.EncodeResult(&e, res)
	writeJSON(w, http.StatusOK, e.Bytes())
}

// ListPromotions returns the registered promotions in registration order,
// followed by the best-of selector.
func (h *Handler) ListPromotions(w http.ResponseWriter, _ *http.Request) {
	registry := h.quotes.Promotions()

	var e jx.Encoder
	e.Arr(func(e *jx.Encoder) {
		for _, entry := range registry.Entries() {
			encodePromotion(e, entry.Name, promotion.Describe(entry.Promotion))
		}
		encodePromotion(e, promotion.BestName, registry.Best().Description())
	})
	writeJSON(w, http.StatusOK, e.Bytes())
}

func encodePromotion(e *jx.Encoder, name, description string) {
	e.Obj(func(e *jx.Encoder) {
		e.Field("name", func(e *jx.Encoder) { e.Str(name) })
		e.Field("description", func(e *jx.Encoder) { e.Str(description) })
	})
}

// statusFor maps domain errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, quote.ErrMalformed):
		return http.StatusBadRequest
	case errors.Is(err, order.ErrInvalidInput),
		errors.Is(err, quote.ErrUnknownPromotion),
		errors.Is(err, order.ErrNegativeDiscount):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	var e jx.Encoder
	quote.EncodeError(&e, status, msg)
	writeJSON(w, status, e.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}
