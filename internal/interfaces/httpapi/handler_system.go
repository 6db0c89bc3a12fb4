package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/league-stats/internal/usecase"
)

type cacheSweepDTO struct {
	Removed int `json:"removed"`
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Healthz")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Briefing(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Briefing")
	defer span.End()

	req := briefingRequest{Query: queryString(r, "q")}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if h.briefingService == nil {
		writeError(ctx, w, fmt.Errorf("%w: briefing is not configured", usecase.ErrDependencyUnavailable))
		return
	}

	briefing, err := h.briefingService.Brief(ctx, req.Query)
	if err != nil {
		h.logger.WarnContext(ctx, "briefing failed", "query", req.Query, "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, briefing)
}

func (h *Handler) CacheStats(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.CacheStats")
	defer span.End()

	if h.cacheStore == nil {
		writeError(ctx, w, fmt.Errorf("%w: cache is disabled", usecase.ErrDependencyUnavailable))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.cacheStore.Stats(ctx))
}

func (h *Handler) SweepCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.SweepCache")
	defer span.End()

	if h.cacheStore == nil {
		writeError(ctx, w, fmt.Errorf("%w: cache is disabled", usecase.ErrDependencyUnavailable))
		return
	}

	removed := h.cacheStore.Sweep(ctx)
	h.logger.InfoContext(ctx, "cache swept", "removed", removed)
	writeSuccess(ctx, w, http.StatusOK, cacheSweepDTO{Removed: removed})
}

func (h *Handler) ClearCache(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearCache")
	defer span.End()

	if h.cacheStore == nil {
		writeError(ctx, w, fmt.Errorf("%w: cache is disabled", usecase.ErrDependencyUnavailable))
		return
	}

	removed := h.cacheStore.Clear(ctx)
	h.logger.InfoContext(ctx, "cache cleared", "removed", removed)
	writeSuccess(ctx, w, http.StatusOK, cacheSweepDTO{Removed: removed})
}
