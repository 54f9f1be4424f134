package service

import (
	"github.com/MKhiriev/go-pseudo-ledger/internal/access"
	"github.com/MKhiriev/go-pseudo-ledger/internal/cache"
	"github.com/MKhiriev/go-pseudo-ledger/internal/config"
	"github.com/MKhiriev/go-pseudo-ledger/internal/crypto"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/pseudonym"
	"github.com/MKhiriev/go-pseudo-ledger/internal/store"
)

// Core holds the collaborators shared by the identity and ledger services.
type Core struct {
	Cache      cache.Cache
	Keys       crypto.KeyDeriver
	Cipher     crypto.IdentityCipher
	Pseudonyms pseudonym.Generator
	Gateway    access.Gateway
}

// NewCore wires the default collaborators around c.
func NewCore(cfg config.App, c cache.Cache, logger *logger.Logger) Core {
	keys := crypto.NewKeyDeriver(cfg.KDFIterations, cfg.KeyPepper)

	return Core{
		Cache:      c,
		Keys:       keys,
		Cipher:     crypto.NewIdentityCipher(),
		Pseudonyms: pseudonym.NewGenerator(),
		Gateway:    access.NewGateway(keys, logger),
	}
}

type Services struct {
	AuthService     AuthService
	SystemService   SystemService
	GroupService    GroupService
	IdentityService IdentityService
	LedgerService   LedgerService
}

func NewServices(storages *store.Storages, core Core, cfg config.StructuredConfig, logger *logger.Logger) (*Services, error) {
	backends := []Pinger{storages}
	if p, ok := core.Cache.(Pinger); ok {
		backends = append(backends, p)
	}

	system, err := NewSystemService(cfg.App, logger, backends...)
	if err != nil {
		return nil, err
	}

	identities := newIdentityService(storages, core, cfg.Storage.Cache.TTL, logger)

	return &Services{
		AuthService:     NewAuthService(cfg.App, logger),
		SystemService:   system,
		GroupService:    NewGroupValidationService().Wrap(NewGroupService(storages, core, logger)),
		IdentityService: NewIdentityValidationService().Wrap(identities),
		LedgerService:   NewLedgerValidationService().Wrap(NewLedgerService(storages, core.Cache, identities, cfg.Storage.Cache.TTL, logger)),
	}, nil
}
