// Package cards is the HTTP feature surface: it orchestrates payload
// building, rendering and image storage for the four statistics cards.
package cards

import (
	"context"
	"errors"
	"fmt"

	"github.com/muyouzhi6/cliproxy-stats/internal/analysis"
	"github.com/muyouzhi6/cliproxy-stats/internal/render"
	"github.com/muyouzhi6/cliproxy-stats/internal/stats"
	"github.com/muyouzhi6/cliproxy-stats/pkg/logger"
)

// Card kinds addressable over HTTP and the render CLI.
const (
	KindOverview  = "overview"
	KindToday     = "today"
	KindQuota     = "quota"
	KindDashboard = "dashboard"
)

var (
	ErrUnknownKind = errors.New("unknown card kind")
	// ErrNoData means the upstream answered but there is nothing to draw
	// (e.g. no quota-capable accounts).
	ErrNoData = errors.New("no data for card")
)

// Service builds, renders and stores statistics cards.
type Service struct {
	builder  *stats.Builder
	renderer *render.Renderer
	analyzer *analysis.Analyzer // nil when LLM analysis is disabled
	store    *Store
}

func NewService(builder *stats.Builder, renderer *render.Renderer, analyzer *analysis.Analyzer, store *Store) *Service {
	return &Service{
		builder:  builder,
		renderer: renderer,
		analyzer: analyzer,
		store:    store,
	}
}

// BuildPayload assembles the payload for one card kind.
func (s *Service) BuildPayload(ctx context.Context, kind string) (render.Payload, error) {
	switch kind {
	case KindOverview:
		return s.builder.BuildOverview(ctx)
	case KindToday:
		return s.builder.BuildToday(ctx)
	case KindQuota:
		quota, err := s.builder.BuildQuota(ctx)
		if err != nil {
			return nil, err
		}
		if quota == nil {
			return nil, ErrNoData
		}
		return quota, nil
	case KindDashboard:
		dashboard, err := s.builder.BuildDashboard(ctx)
		if err != nil {
			return nil, err
		}
		if s.analyzer != nil {
			dashboard.Analysis = s.analyzer.Analyze(ctx, &dashboard.Today, &dashboard.Quota)
		}
		return dashboard, nil
	default:
		return nil, ErrUnknownKind
	}
}

// RenderCard builds and renders one card and returns the stored PNG path.
func (s *Service) RenderCard(ctx context.Context, kind string) (string, error) {
	payload, err := s.BuildPayload(ctx, kind)
	if err != nil {
		return "", err
	}
	return s.RenderPayload(payload)
}

// RenderPayload renders an already-built payload to a stored PNG.
func (s *Service) RenderPayload(payload render.Payload) (string, error) {
	img := s.renderer.Render(payload)
	if img == nil {
		logger.Warn("cards: renderer produced no image")
		return "", fmt.Errorf("renderer produced no image")
	}

	path, err := s.store.SaveTemp(img)
	if err != nil {
		logger.Error("cards: saving card image failed", logger.WithError(err))
		return "", err
	}
	return path, nil
}

// CardText builds one card and returns the plain-text fallback surface.
func (s *Service) CardText(ctx context.Context, kind string) (string, error) {
	payload, err := s.BuildPayload(ctx, kind)
	if err != nil {
		return "", err
	}
	text := TextSummary(payload)
	if text == "" {
		return "", ErrNoData
	}
	return text, nil
}
