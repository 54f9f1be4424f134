package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/MKhiriev/go-pseudo-ledger/internal/access"
	"github.com/MKhiriev/go-pseudo-ledger/internal/cache"
	"github.com/MKhiriev/go-pseudo-ledger/internal/crypto"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/metrics"
	"github.com/MKhiriev/go-pseudo-ledger/internal/pseudonym"
	"github.com/MKhiriev/go-pseudo-ledger/internal/store"
	"github.com/MKhiriev/go-pseudo-ledger/internal/validators"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

// identityService implements [IdentityService] and [ParticipantResolver].
//
// Real names exist in memory only while a request is handled: they are
// encrypted before any write, and decrypted mappings are returned to the
// caller without being cached or logged.
type identityService struct {
	mutator
	reads readRetrier

	groupRepository    store.GroupRepository
	identityRepository store.IdentityRepository

	keys       crypto.KeyDeriver
	cipher     crypto.IdentityCipher
	pseudonyms pseudonym.Generator
	gateway    access.Gateway

	cacheTTL       time.Duration
	decryptWorkers int

	logger *logger.Logger
}

func NewIdentityService(storages *store.Storages, core Core, cacheTTL time.Duration, logger *logger.Logger) IdentityService {
	return newIdentityService(storages, core, cacheTTL, logger)
}

func newIdentityService(storages *store.Storages, core Core, cacheTTL time.Duration, logger *logger.Logger) *identityService {
	return &identityService{
		mutator:            mutator{tx: storages.TxManager, cache: core.Cache},
		reads:              newReadRetrier(storages.Classificator),
		groupRepository:    storages.GroupRepository,
		identityRepository: storages.IdentityRepository,
		keys:               core.Keys,
		cipher:             core.Cipher,
		pseudonyms:         core.Pseudonyms,
		gateway:            core.Gateway,
		cacheTTL:           cacheTTL,
		decryptWorkers:     runtime.GOMAXPROCS(0),
		logger:             logger,
	}
}

func (s *identityService) CreateIdentity(ctx context.Context, req models.CreateIdentityRequest) (models.Identity, error) {
	var created models.Identity

	err := s.run(ctx, "create_identity", func(ctx context.Context) (int64, error) {
		group, err := s.groupRepository.GetGroup(ctx, req.GroupID)
		if err != nil {
			return 0, err
		}

		created, err = s.create(ctx, group, req.Name, req.Pseudonym, req.Key)
		return group.ID, err
	})
	if err != nil {
		return models.Identity{}, err
	}

	return created, nil
}

// create runs inside the caller's transaction. The fingerprint lookup gives
// the common case a clean DuplicateError; concurrent creations are stopped
// by the unique index, which the repository maps to the same error.
func (s *identityService) create(ctx context.Context, group models.Group, rawName, override string, suppliedKey []byte) (models.Identity, error) {
	log := logger.FromContext(ctx)

	key, err := s.groupKey(group, suppliedKey)
	if err != nil {
		return models.Identity{}, err
	}

	name, err := validators.SanitizeName(rawName)
	if err != nil {
		return models.Identity{}, err
	}

	fingerprint, err := crypto.Fingerprint(key, group.ID, name.Key)
	if err != nil {
		return models.Identity{}, err
	}

	_, err = s.identityRepository.FindByFingerprint(ctx, group.ID, fingerprint)
	switch {
	case err == nil:
		return models.Identity{}, models.ErrIdentityExists
	case !errors.Is(err, models.ErrIdentityNotFound):
		return models.Identity{}, err
	}

	if _, found, err := s.findLegacy(ctx, group.ID, name.Key); err != nil {
		return models.Identity{}, err
	} else if found {
		return models.Identity{}, models.ErrIdentityExists
	}

	alias, err := s.pickPseudonym(ctx, group.ID, override)
	if err != nil {
		return models.Identity{}, err
	}

	ciphertext, err := s.cipher.Encrypt(name.Display, key, group.ID)
	if err != nil {
		log.Err(err).Str("func", "identityService.create").Int64("group_id", group.ID).Msg("identity encryption failed")
		return models.Identity{}, err
	}

	identity, err := s.identityRepository.CreateIdentity(ctx, models.Identity{
		GroupID:     group.ID,
		Pseudonym:   alias,
		Fingerprint: fingerprint,
		Ciphertext:  &ciphertext,
		Status:      models.IdentityActive,
	})
	if err != nil {
		return models.Identity{}, err
	}

	log.Info().Int64("group_id", group.ID).Int64("identity_id", identity.ID).Msg("identity created")
	return identity, nil
}

func (s *identityService) pickPseudonym(ctx context.Context, groupID int64, override string) (string, error) {
	existing, err := s.identityRepository.ListIdentities(ctx, groupID)
	if err != nil {
		return "", err
	}

	taken := make([]string, 0, len(existing))
	for _, identity := range existing {
		taken = append(taken, identity.Pseudonym)
	}

	if override != "" {
		return s.pseudonyms.Validate(override, taken)
	}
	return s.pseudonyms.Generate(taken)
}

// groupKey returns the key identities of group are encrypted with: the
// owner's derived key, or the caller-managed key checked against the
// stored verifier.
func (s *identityService) groupKey(group models.Group, supplied []byte) ([]byte, error) {
	if group.UsesDerivedKey() {
		mk, err := s.keys.GetOrDeriveMasterKey(group.OwnerID)
		if err != nil {
			return nil, err
		}
		return mk.Key, nil
	}

	if len(supplied) == 0 {
		return nil, models.ErrKeyRequired
	}
	if !crypto.MatchesVerifier(supplied, *group.KeyVerifier) {
		return nil, models.ErrAuthorization
	}
	return supplied, nil
}

// ResolveParticipant implements [ParticipantResolver]. participant is tried
// as a pseudonym first, then as a real name via its fingerprint; an unknown
// name becomes a new identity with a generated pseudonym.
func (s *identityService) ResolveParticipant(ctx context.Context, group models.Group, participant string, key []byte) (models.Identity, error) {
	if alias, err := validators.SanitizePseudonym(participant); err == nil {
		identity, err := s.identityRepository.FindByPseudonym(ctx, group.ID, alias.Display)
		switch {
		case err == nil:
			return activeOnly(identity)
		case !errors.Is(err, models.ErrIdentityNotFound):
			return models.Identity{}, err
		}
	}

	groupKey, err := s.groupKey(group, key)
	if err != nil {
		return models.Identity{}, err
	}

	name, err := validators.SanitizeName(participant)
	if err != nil {
		return models.Identity{}, models.ErrNoParticipantGiven
	}

	fingerprint, err := crypto.Fingerprint(groupKey, group.ID, name.Key)
	if err != nil {
		return models.Identity{}, err
	}

	identity, err := s.identityRepository.FindByFingerprint(ctx, group.ID, fingerprint)
	switch {
	case err == nil:
		return activeOnly(identity)
	case !errors.Is(err, models.ErrIdentityNotFound):
		return models.Identity{}, err
	}

	identity, found, err := s.findLegacy(ctx, group.ID, name.Key)
	if err != nil {
		return models.Identity{}, err
	}
	if found {
		return activeOnly(identity)
	}

	return s.create(ctx, group, participant, "", key)
}

// findLegacy looks for a plaintext-only row holding nameKey. Such rows have
// no fingerprint yet, so the fingerprint lookup cannot see them.
func (s *identityService) findLegacy(ctx context.Context, groupID int64, nameKey string) (models.Identity, bool, error) {
	legacy, err := s.identityRepository.ListLegacyPlaintext(ctx, groupID)
	if err != nil {
		return models.Identity{}, false, err
	}

	for _, identity := range legacy {
		name, err := validators.SanitizeName(*identity.LegacyPlaintext)
		if err != nil {
			continue
		}
		if name.Key == nameKey {
			return identity, true, nil
		}
	}

	return models.Identity{}, false, nil
}

func activeOnly(identity models.Identity) (models.Identity, error) {
	if identity.Status != models.IdentityActive {
		return models.Identity{}, models.ErrInactiveIdentity
	}
	return identity, nil
}

// ListIdentities serves from the read cache per (group, requester). Only
// summaries are cached.
func (s *identityService) ListIdentities(ctx context.Context, groupID int64, requesterID string) ([]models.IdentitySummary, error) {
	return cache.Fetch(ctx, s.cache, groupID, cache.KindIdentities, requesterKey(requesterID), s.cacheTTL,
		func(ctx context.Context) ([]models.IdentitySummary, error) {
			return retryRead(ctx, s.reads, "list_identities", func(ctx context.Context) ([]models.IdentitySummary, error) {
				if _, err := s.groupRepository.GetGroup(ctx, groupID); err != nil {
					return nil, err
				}

				identities, err := s.identityRepository.ListIdentities(ctx, groupID)
				if err != nil {
					return nil, err
				}

				summaries := make([]models.IdentitySummary, 0, len(identities))
				for _, identity := range identities {
					summaries = append(summaries, identity.Summary())
				}
				return summaries, nil
			})
		})
}

// DecryptIdentities requires the access gateway to permit a decrypt before
// any ciphertext is touched. Entries are decrypted in parallel; a failing
// entry is reported, never fatal.
func (s *identityService) DecryptIdentities(ctx context.Context, req models.DecryptRequest) (models.DecryptResult, error) {
	log := logger.FromContext(ctx)

	group, err := s.privilegedGroup(ctx, req.GroupID)
	if err != nil {
		return models.DecryptResult{}, err
	}

	decision := s.gateway.Authorize(ctx, access.AuthorizeRequest{
		RequesterID: req.RequesterID,
		Group:       group,
		Action:      access.ActionDecrypt,
		SuppliedKey: req.Key,
	})
	if decision != access.Permit {
		return models.DecryptResult{}, models.ErrAuthorization
	}

	identities, err := s.identityRepository.ListIdentities(ctx, group.ID)
	if err != nil {
		return models.DecryptResult{}, err
	}

	names := make([]string, len(identities))
	failures := make([]error, len(identities))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.decryptWorkers)
	for i, identity := range identities {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if identity.Ciphertext == nil {
				failures[i] = models.ErrIdentityWithoutCipher
				return nil
			}

			name, err := s.cipher.Decrypt(*identity.Ciphertext, req.Key, group.ID)
			if err != nil {
				failures[i] = err
				return nil
			}
			names[i] = name
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return models.DecryptResult{}, err
	}

	result := models.DecryptResult{
		Entries:  make(map[string]string, len(identities)),
		Failures: make(map[string]error),
	}
	for i, identity := range identities {
		if failures[i] != nil {
			result.Failures[identity.Pseudonym] = failures[i]
			continue
		}
		result.Entries[identity.Pseudonym] = names[i]
	}

	if len(result.Failures) > 0 {
		metrics.DecryptFailures.Add(float64(len(result.Failures)))
		log.Warn().Int64("group_id", group.ID).Int("failed", len(result.Failures)).Msg("some identities could not be decrypted")
	}

	return result, nil
}

func (s *identityService) SetIdentityStatus(ctx context.Context, req models.StatusRequest) (models.IdentitySummary, error) {
	var summary models.IdentitySummary

	err := s.run(ctx, "set_identity_status", func(ctx context.Context) (int64, error) {
		group, err := s.privilegedGroup(ctx, req.GroupID)
		if err != nil {
			return 0, err
		}

		if s.gateway.Authorize(ctx, access.AuthorizeRequest{RequesterID: req.RequesterID, Group: group, Action: access.ActionMutate}) != access.Permit {
			return 0, models.ErrAuthorization
		}

		identity, err := s.identityRepository.FindByPseudonym(ctx, group.ID, req.Pseudonym)
		if err != nil {
			return 0, err
		}

		if identity.Status != req.Status {
			if err := s.identityRepository.SetStatus(ctx, identity.ID, req.Status); err != nil {
				return 0, err
			}
			identity.Status = req.Status
		}

		summary = identity.Summary()
		return group.ID, nil
	})
	if err != nil {
		return models.IdentitySummary{}, err
	}

	return summary, nil
}

func (s *identityService) RepairIdentities(ctx context.Context, groupID int64, requesterID string) (int64, error) {
	log := logger.FromContext(ctx)

	var repaired int64
	err := s.run(ctx, "repair_identities", func(ctx context.Context) (int64, error) {
		group, err := s.privilegedGroup(ctx, groupID)
		if err != nil {
			return 0, err
		}

		if s.gateway.Authorize(ctx, access.AuthorizeRequest{RequesterID: requesterID, Group: group, Action: access.ActionMutate}) != access.Permit {
			return 0, models.ErrAuthorization
		}

		repaired, err = s.identityRepository.ClearLegacyPlaintext(ctx, group.ID)
		return group.ID, err
	})
	if err != nil {
		return 0, err
	}

	if repaired > 0 {
		log.Warn().Int64("group_id", groupID).Int64("repaired", repaired).Msg("cleared legacy plaintext next to ciphertext")
	}
	return repaired, nil
}

// EncryptLegacyIdentities is the one-time transform for rows written before
// identities were encrypted. It runs in a single transaction: either every
// legacy row of the group is converted or none is.
func (s *identityService) EncryptLegacyIdentities(ctx context.Context, req models.DecryptRequest) (int, error) {
	log := logger.FromContext(ctx)

	var converted int
	err := s.run(ctx, "encrypt_legacy_identities", func(ctx context.Context) (int64, error) {
		group, err := s.privilegedGroup(ctx, req.GroupID)
		if err != nil {
			return 0, err
		}

		if s.gateway.Authorize(ctx, access.AuthorizeRequest{RequesterID: req.RequesterID, Group: group, Action: access.ActionDecrypt, SuppliedKey: req.Key}) != access.Permit {
			return 0, models.ErrAuthorization
		}

		key, err := s.groupKey(group, req.Key)
		if err != nil {
			return 0, err
		}

		legacy, err := s.identityRepository.ListLegacyPlaintext(ctx, group.ID)
		if err != nil {
			return 0, err
		}

		for _, identity := range legacy {
			name, err := validators.SanitizeName(*identity.LegacyPlaintext)
			if err != nil {
				log.Error().Int64("identity_id", identity.ID).Msg("legacy plaintext does not sanitise")
				return 0, fmt.Errorf("%w (identity %d)", models.ErrConsistency, identity.ID)
			}

			if identity.Fingerprint, err = crypto.Fingerprint(key, group.ID, name.Key); err != nil {
				return 0, err
			}

			ciphertext, err := s.cipher.Encrypt(name.Display, key, group.ID)
			if err != nil {
				return 0, err
			}
			identity.Ciphertext = &ciphertext

			if err := s.identityRepository.StoreEncrypted(ctx, identity); err != nil {
				return 0, err
			}
			converted++
		}

		return group.ID, nil
	})
	if err != nil {
		return 0, err
	}

	log.Info().Int64("group_id", req.GroupID).Int("converted", converted).Msg("legacy identities encrypted")
	return converted, nil
}

// privilegedGroup loads the group of an owner-only operation. A missing
// group is reported exactly like a group owned by someone else.
func (s *identityService) privilegedGroup(ctx context.Context, groupID int64) (models.Group, error) {
	group, err := s.groupRepository.GetGroup(ctx, groupID)
	if errors.Is(err, models.ErrGroupNotFound) {
		return models.Group{}, models.ErrAuthorization
	}
	return group, err
}

// requesterKey is the cache key segment of a requester.
func requesterKey(requesterID string) string {
	if requesterID == "" {
		return "-"
	}
	return requesterID
}
