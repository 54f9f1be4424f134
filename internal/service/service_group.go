package service

import (
	"context"
	"strings"

	"github.com/MKhiriev/go-pseudo-ledger/internal/access"
	"github.com/MKhiriev/go-pseudo-ledger/internal/crypto"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/metrics"
	"github.com/MKhiriev/go-pseudo-ledger/internal/store"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

type groupService struct {
	mutator

	groupRepository store.GroupRepository
	gateway         access.Gateway
	keys            crypto.KeyDeriver

	logger *logger.Logger
}

func NewGroupService(storages *store.Storages, core Core, logger *logger.Logger) GroupService {
	return &groupService{
		mutator:         mutator{tx: storages.TxManager, cache: core.Cache},
		groupRepository: storages.GroupRepository,
		gateway:         core.Gateway,
		keys:            core.Keys,
		logger:          logger,
	}
}

// CreateGroup opens a group for req.OwnerID. A group created with
// req.LegacyKey keeps a caller-managed key: only its verifier is stored.
func (g *groupService) CreateGroup(ctx context.Context, req models.CreateGroupRequest) (models.Group, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(req.OwnerID) == "" {
		return models.Group{}, models.ErrInvalidOwnerID
	}

	group := models.Group{OwnerID: req.OwnerID}
	if len(req.LegacyKey) > 0 {
		verifier, err := crypto.KeyVerifier(req.LegacyKey)
		if err != nil {
			return models.Group{}, models.ErrInvalidKeyFormat
		}
		group.KeyVerifier = &verifier
	}

	created, err := g.groupRepository.CreateGroup(ctx, group)
	metrics.LedgerOperations.WithLabelValues("create_group", metrics.Outcome(err)).Inc()
	if err != nil {
		log.Err(err).Str("func", "groupService.CreateGroup").Msg("group creation ended with error")
		return models.Group{}, err
	}

	log.Info().Int64("group_id", created.ID).Bool("derived_key", created.UsesDerivedKey()).Msg("group created")
	return created, nil
}

func (g *groupService) DeleteGroup(ctx context.Context, groupID int64, requesterID string) error {
	return g.run(ctx, "delete_group", func(ctx context.Context) (int64, error) {
		group, err := g.groupRepository.GetGroup(ctx, groupID)
		if err != nil {
			return 0, err
		}

		if g.gateway.Authorize(ctx, access.AuthorizeRequest{RequesterID: requesterID, Group: group, Action: access.ActionMutate}) != access.Permit {
			return 0, models.ErrAuthorization
		}

		return group.ID, g.groupRepository.DeleteGroup(ctx, group.ID)
	})
}

// OwnerKey hands the owner their own key. The key is derived once per
// process and never stored.
func (g *groupService) OwnerKey(ctx context.Context, ownerID string) (crypto.MasterKey, error) {
	if strings.TrimSpace(ownerID) == "" {
		return crypto.MasterKey{}, models.ErrInvalidOwnerID
	}

	mk, err := g.keys.GetOrDeriveMasterKey(ownerID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("func", "groupService.OwnerKey").Msg("master key derivation failed")
		return crypto.MasterKey{}, err
	}

	return mk, nil
}
