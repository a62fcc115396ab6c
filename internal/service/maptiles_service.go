package service

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/civicsense/portal-gateway/internal/dto"
)

// MapConfig describes the third-party tile provider behind the location picker.
type MapConfig struct {
	TileURL      string
	Attribution  string
	ProbeURL     string
	MinZoom      int
	MaxZoom      int
	ProbeTimeout time.Duration
}

// MapTilesService hands the client its tile provider configuration. The
// provider is probed exactly once per process; concurrent first requests share
// the single probe instead of racing their own.
type MapTilesService struct {
	config MapConfig
	client *http.Client
	logger *zap.Logger

	probeOnce sync.Once
	available bool
}

// NewMapTilesService constructs a MapTilesService instance.
func NewMapTilesService(config MapConfig, logger *zap.Logger) *MapTilesService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ProbeTimeout <= 0 {
		config.ProbeTimeout = 5 * time.Second
	}
	return &MapTilesService{
		config: config,
		client: &http.Client{Timeout: config.ProbeTimeout},
		logger: logger,
	}
}

// Provider returns the tile configuration plus provider reachability. The
// picker stays usable with tiles down: manual location entry and direct
// coordinates do not depend on the provider.
func (s *MapTilesService) Provider(ctx context.Context) *dto.MapProviderResponse {
	s.probeOnce.Do(func() {
		s.available = s.probe(ctx)
		if !s.available {
			s.logger.Warn("map tile provider unreachable", zap.String("probe_url", s.config.ProbeURL))
		}
	})

	return &dto.MapProviderResponse{
		TileURL:     s.config.TileURL,
		Attribution: s.config.Attribution,
		MinZoom:     s.config.MinZoom,
		MaxZoom:     s.config.MaxZoom,
		Available:   s.available,
	}
}

func (s *MapTilesService) probe(ctx context.Context) bool {
	if s.config.ProbeURL == "" {
		return true
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.config.ProbeURL, http.NoBody)
	if err != nil {
		return false
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close() //nolint:errcheck
	return resp.StatusCode < 400
}
