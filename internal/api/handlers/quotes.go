package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"moving-quote-service/internal/api/dto"
	"moving-quote-service/internal/domain"
	"moving-quote-service/internal/platform/obs"
	"net/http"

	"go.uber.org/zap"
)

const maxQuoteBody = 1 << 20

type QuoteService interface {
	Quote(ctx context.Context, in domain.QuoteInputs) (domain.QuoteResult, error)
}

type QuoteHandler struct {
	Service QuoteService
}

// Create prices a quote request. Input errors are 400; configuration errors are 500.
func (h *QuoteHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.QuoteRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxQuoteBody))
	defer r.Body.Close()
	dec.DisallowUnknownFields()

	if err := dec.Decode(&req); err != nil {
		writeError(w, r, http.StatusBadRequest, "invalid json body")
		return
	}
	if err := dec.Decode(&struct{}{}); err != io.EOF {
		writeError(w, r, http.StatusBadRequest, "body must contain only one JSON object")
		return
	}

	in, err := req.ToDomain()
	if err != nil {
		writeError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.Service.Quote(r.Context(), in)
	if err != nil {
		writeServiceError(w, r, "calculate quote", err)
		return
	}

	writeJSON(w, r, http.StatusOK, dto.NewQuoteResponse(res))
}

func writeServiceError(w http.ResponseWriter, r *http.Request, op string, err error) {
	switch {
	case errors.Is(err, domain.ErrInputValidation):
		writeError(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrConfiguration):
		zap.L().Error(op+" failed: configuration error",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "pricing configuration error")
	default:
		zap.L().Error(op+" failed",
			zap.String("req_id", obs.RequestID(r.Context())),
			zap.Error(err),
		)
		writeError(w, r, http.StatusInternalServerError, "internal server error")
	}
}
