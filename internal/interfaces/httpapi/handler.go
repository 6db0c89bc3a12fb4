package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/riskibarqy/league-stats/internal/domain/match"
	"github.com/riskibarqy/league-stats/internal/platform/cache"
	"github.com/riskibarqy/league-stats/internal/platform/logging"
	"github.com/riskibarqy/league-stats/internal/usecase"
)

// TeamNames resolves display names for team ids.
type TeamNames interface {
	DisplayName(id string) string
}

type Handler struct {
	statsService      *usecase.StatsService
	predictionService *usecase.PredictionService
	briefingService   *usecase.BriefingService
	cacheStore        *cache.Store
	teamNames         TeamNames
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	statsService *usecase.StatsService,
	predictionService *usecase.PredictionService,
	briefingService *usecase.BriefingService,
	cacheStore *cache.Store,
	teamNames TeamNames,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}

	return &Handler{
		statsService:      statsService,
		predictionService: predictionService,
		briefingService:   briefingService,
		cacheStore:        cacheStore,
		teamNames:         teamNames,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

func (h *Handler) displayName(team string) string {
	if h.teamNames == nil {
		return team
	}
	return h.teamNames.DisplayName(team)
}

type teamPathRequest struct {
	Team   string `validate:"required,max=100"`
	Season string `validate:"omitempty,max=8"`
}

type pairRequest struct {
	Team1  string `validate:"required,max=100"`
	Team2  string `validate:"required,max=100"`
	Season string `validate:"omitempty,max=8"`
}

type leadersRequest struct {
	Metric   string `validate:"required,oneof=wins points winrate goals"`
	Season   string `validate:"omitempty,max=8"`
	Limit    int    `validate:"gte=1,lte=100"`
	MinGames int    `validate:"gte=1,lte=1000"`
}

type gamesRequest struct {
	Team  string `validate:"required,max=100"`
	Games int    `validate:"gte=1,lte=200"`
}

type briefingRequest struct {
	Query string `validate:"required,max=500"`
}

func parseSeasonScope(raw string) (match.Season, error) {
	season, err := match.ParseScope(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", usecase.ErrInvalidInput, err)
	}
	return season, nil
}

func queryInt(r *http.Request, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(r.URL.Query().Get(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be an integer", usecase.ErrInvalidInput, key)
	}
	return v, nil
}

func queryString(r *http.Request, key string) string {
	return strings.TrimSpace(r.URL.Query().Get(key))
}

func teamNotFound(team string) error {
	return fmt.Errorf("%w: no matches found for team %q", usecase.ErrNotFound, team)
}
