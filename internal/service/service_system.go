package service

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-pseudo-ledger/internal/config"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
)

// Pinger is implemented by backends whose liveness Ready checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

type systemService struct {
	appVersion string
	backends   []Pinger

	logger *logger.Logger
}

func NewSystemService(cfg config.App, logger *logger.Logger, backends ...Pinger) (SystemService, error) {
	if cfg.Version == "" {
		return nil, ErrVersionIsNotSpecified
	}

	return &systemService{
		appVersion: cfg.Version,
		backends:   backends,
		logger:     logger,
	}, nil
}

func (s *systemService) GetAppVersion(ctx context.Context) string {
	return s.appVersion
}

func (s *systemService) Ready(ctx context.Context) error {
	for _, b := range s.backends {
		if err := b.Ping(ctx); err != nil {
			logger.FromContext(ctx).Warn().Err(err).Msg("readiness check failed")
			return fmt.Errorf("%w: %w", ErrStoreNotReady, err)
		}
	}
	return nil
}
