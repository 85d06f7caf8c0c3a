package handlers

import (
	"context"
	"moving-quote-service/internal/platform/obs"
	"net/http"

	"go.uber.org/zap"
)

type DistanceCache interface {
	ClearCache(ctx context.Context) error
	ClearGeocodeCache(ctx context.Context) error
	ClearDistanceCache(ctx context.Context) error
}

type RulesCache interface {
	Invalidate(ctx context.Context) error
}

// AdminHandler exposes operational cache invalidation.
type AdminHandler struct {
	Distances DistanceCache
	Rules     RulesCache
}

// ClearDistanceCache clears resolver caches; ?scope= selects all (default), geocode or distance.
func (h *AdminHandler) ClearDistanceCache(w http.ResponseWriter, r *http.Request) {
	var purge func(context.Context) error
	switch scope := r.URL.Query().Get("scope"); scope {
	case "", "all":
		purge = h.Distances.ClearCache
	case "geocode":
		purge = h.Distances.ClearGeocodeCache
	case "distance":
		purge = h.Distances.ClearDistanceCache
	default:
		writeError(w, r, http.StatusBadRequest, "scope must be all, geocode or distance")
		return
	}

	if err := purge(r.Context()); err != nil {
		zap.L().Error("clear distance cache failed", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// InvalidateRules drops cached pricing rules so the next quote reads the store.
func (h *AdminHandler) InvalidateRules(w http.ResponseWriter, r *http.Request) {
	if h.Rules == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.Rules.Invalidate(r.Context()); err != nil {
		zap.L().Error("invalidate rules cache failed", zap.String("req_id", obs.RequestID(r.Context())), zap.Error(err))
		writeError(w, r, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
