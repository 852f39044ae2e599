package flowapi

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	apperrors "github.com/chainsafe/netflow-indexer/pkg/app/errors"
	apphttp "github.com/chainsafe/netflow-indexer/pkg/app/http"
)

// HTTP wraps the Service to provide HTTP endpoints
type HTTP struct {
	service Service
	logger  *zap.Logger
}

// RegisterRoutes registers the query endpoints on the given chi router
func RegisterRoutes(r chi.Router, service Service, logger *zap.Logger) {
	h := &HTTP{
		service: service,
		logger:  logger,
	}

	r.Get("/netflow", apphttp.HandleError(h.netflow))
	r.Get("/transfers", apphttp.HandleError(h.transfers))
}

func (h *HTTP) netflow(w http.ResponseWriter, r *http.Request) error {
	token := r.URL.Query().Get("token")
	if token == "" {
		return apperrors.BadRequestError(nil, "token parameter required")
	}

	nf, err := h.service.NetFlow(r.Context(), token)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, nf)
	return nil
}

func (h *HTTP) transfers(w http.ResponseWriter, r *http.Request) error {
	token := r.URL.Query().Get("token")
	if token == "" {
		return apperrors.BadRequestError(nil, "token parameter required")
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			return apperrors.BadRequestError(err, "invalid limit parameter")
		}
		limit = parsed
	}

	transfers, err := h.service.RecentTransfers(r.Context(), token, limit)
	if err != nil {
		return err
	}

	h.writeJSON(w, http.StatusOK, transfers)
	return nil
}

func (h *HTTP) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}
