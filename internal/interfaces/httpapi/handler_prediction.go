package httpapi

import (
	"fmt"
	"net/http"

	"github.com/riskibarqy/league-stats/internal/domain/prediction"
	"github.com/riskibarqy/league-stats/internal/usecase"
)

type predictionRequest struct {
	Home string `validate:"required,max=100"`
	Away string `validate:"required,max=100"`
}

func (h *Handler) PredictMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PredictMatch")
	defer span.End()

	req := predictionRequest{
		Home: queryString(r, "home"),
		Away: queryString(r, "away"),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if h.predictionService == nil {
		writeError(ctx, w, fmt.Errorf("%w: prediction model is not loaded", usecase.ErrModelNotReady))
		return
	}

	result := h.predictionService.PredictMatch(ctx, req.Home, req.Away)
	if !result.OK() {
		h.logger.WarnContext(ctx, "prediction rejected",
			"home", req.Home,
			"away", req.Away,
			"failure", string(result.Failure),
		)
		writeError(ctx, w, predictionError(result))
		return
	}

	writeSuccess(ctx, w, http.StatusOK, result.Forecast)
}

func (h *Handler) PredictionHeadToHead(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.PredictionHeadToHead")
	defer span.End()

	req := pairRequest{
		Team1: queryString(r, "team1"),
		Team2: queryString(r, "team2"),
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}
	if h.predictionService == nil {
		writeError(ctx, w, fmt.Errorf("%w: prediction model is not loaded", usecase.ErrModelNotReady))
		return
	}
	if err := h.checkPair(req.Team1, req.Team2); err != nil {
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusOK, h.predictionService.HeadToHeadStats(ctx, req.Team1, req.Team2))
}

func predictionError(result prediction.Result) error {
	switch result.Failure {
	case prediction.FailureTeamNotFound:
		return fmt.Errorf("%w: %s", usecase.ErrNotFound, result.Reason)
	case prediction.FailureInvalidPairing:
		return fmt.Errorf("%w: %s", usecase.ErrInvalidInput, result.Reason)
	case prediction.FailureModelUnavailable:
		return fmt.Errorf("%w: %s", usecase.ErrModelNotReady, result.Reason)
	default:
		return fmt.Errorf("prediction failed: %s", result.Reason)
	}
}
