package service

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MKhiriev/go-pseudo-ledger/internal/access"
	"github.com/MKhiriev/go-pseudo-ledger/internal/crypto"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/mock"
	"github.com/MKhiriev/go-pseudo-ledger/internal/store"
	"github.com/MKhiriev/go-pseudo-ledger/models"
)

type identityFixture struct {
	tx         *mock.MockTxManager
	cache      *mock.MockCache
	groups     *mock.MockGroupRepository
	identities *mock.MockIdentityRepository
	keys       *mock.MockKeyDeriver
	cipher     *mock.MockIdentityCipher
	pseudonyms *mock.MockGenerator
	gateway    *mock.MockGateway

	svc *identityService
}

func newIdentityFixture(t *testing.T) *identityFixture {
	t.Helper()
	ctrl := gomock.NewController(t)

	f := &identityFixture{
		tx:         mock.NewMockTxManager(ctrl),
		cache:      mock.NewMockCache(ctrl),
		groups:     mock.NewMockGroupRepository(ctrl),
		identities: mock.NewMockIdentityRepository(ctrl),
		keys:       mock.NewMockKeyDeriver(ctrl),
		cipher:     mock.NewMockIdentityCipher(ctrl),
		pseudonyms: mock.NewMockGenerator(ctrl),
		gateway:    mock.NewMockGateway(ctrl),
	}
	passThroughTx(f.tx)

	storages := &store.Storages{
		TxManager:          f.tx,
		GroupRepository:    f.groups,
		IdentityRepository: f.identities,
	}
	core := Core{
		Cache:      f.cache,
		Keys:       f.keys,
		Cipher:     f.cipher,
		Pseudonyms: f.pseudonyms,
		Gateway:    f.gateway,
	}
	f.svc = newIdentityService(storages, core, time.Minute, logger.Nop())
	f.svc.decryptWorkers = 2

	return f
}

var testKey = bytes.Repeat([]byte{7}, crypto.KeySize)

func sealedName(s string) *string { return &s }

func TestCreateIdentity_EncryptsBeforeWriting(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()
	group := models.Group{ID: 3, OwnerID: "owner-1"}

	f.groups.EXPECT().GetGroup(gomock.Any(), int64(3)).Return(group, nil)
	f.keys.EXPECT().GetOrDeriveMasterKey("owner-1").Return(crypto.MasterKey{Key: testKey}, nil)
	f.identities.EXPECT().FindByFingerprint(gomock.Any(), int64(3), gomock.Any()).Return(models.Identity{}, models.ErrIdentityNotFound)
	f.identities.EXPECT().ListLegacyPlaintext(gomock.Any(), int64(3)).Return(nil, nil)
	f.identities.EXPECT().ListIdentities(gomock.Any(), int64(3)).Return([]models.Identity{{Pseudonym: "Major Heron the Quiet"}}, nil)
	f.pseudonyms.EXPECT().Generate([]string{"Major Heron the Quiet"}).Return("Captain Otter the Bold", nil)
	f.cipher.EXPECT().Encrypt("Alice Smith", testKey, int64(3)).Return("sealed", nil)
	f.identities.EXPECT().CreateIdentity(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, identity models.Identity) (models.Identity, error) {
			assert.Nil(t, identity.LegacyPlaintext)
			require.NotNil(t, identity.Ciphertext)
			assert.Equal(t, "sealed", *identity.Ciphertext)
			assert.NotContains(t, identity.Fingerprint, "Alice")
			identity.ID = 11
			return identity, nil
		})
	f.cache.EXPECT().Invalidate(gomock.Any(), int64(3)).Return(nil).Times(2)

	got, err := f.svc.CreateIdentity(ctx, models.CreateIdentityRequest{GroupID: 3, Name: "  Alice   Smith "})
	require.NoError(t, err)
	assert.Equal(t, int64(11), got.ID)
	assert.Equal(t, "Captain Otter the Bold", got.Pseudonym)
}

func TestCreateIdentity_DuplicateByFingerprint(t *testing.T) {
	f := newIdentityFixture(t)
	group := models.Group{ID: 3, OwnerID: "owner-1"}

	f.groups.EXPECT().GetGroup(gomock.Any(), int64(3)).Return(group, nil)
	f.keys.EXPECT().GetOrDeriveMasterKey("owner-1").Return(crypto.MasterKey{Key: testKey}, nil)
	f.identities.EXPECT().FindByFingerprint(gomock.Any(), int64(3), gomock.Any()).Return(models.Identity{ID: 1}, nil)

	_, err := f.svc.CreateIdentity(context.Background(), models.CreateIdentityRequest{GroupID: 3, Name: "alice smith"})
	assert.ErrorIs(t, err, models.ErrIdentityExists)
	assert.ErrorIs(t, err, models.ErrDuplicate)
}

func TestCreateIdentity_DuplicateOfLegacyPlaintextRow(t *testing.T) {
	f := newIdentityFixture(t)
	group := models.Group{ID: 3, OwnerID: "owner-1"}

	f.groups.EXPECT().GetGroup(gomock.Any(), int64(3)).Return(group, nil)
	f.keys.EXPECT().GetOrDeriveMasterKey("owner-1").Return(crypto.MasterKey{Key: testKey}, nil)
	f.identities.EXPECT().FindByFingerprint(gomock.Any(), int64(3), gomock.Any()).Return(models.Identity{}, models.ErrIdentityNotFound)
	f.identities.EXPECT().ListLegacyPlaintext(gomock.Any(), int64(3)).Return([]models.Identity{
		{ID: 5, Pseudonym: "Captain Otter", LegacyPlaintext: sealedName("  ERIN ")},
	}, nil)

	_, err := f.svc.CreateIdentity(context.Background(), models.CreateIdentityRequest{GroupID: 3, Name: "Erin"})
	assert.ErrorIs(t, err, models.ErrIdentityExists)
}

func TestCreateIdentity_LegacyGroupNeedsKey(t *testing.T) {
	f := newIdentityFixture(t)

	verifier, err := crypto.KeyVerifier(testKey)
	require.NoError(t, err)
	group := models.Group{ID: 3, OwnerID: "owner-1", KeyVerifier: &verifier}

	f.groups.EXPECT().GetGroup(gomock.Any(), int64(3)).Return(group, nil).Times(2)

	_, err = f.svc.CreateIdentity(context.Background(), models.CreateIdentityRequest{GroupID: 3, Name: "Alice"})
	assert.ErrorIs(t, err, models.ErrKeyRequired)

	wrong := bytes.Repeat([]byte{1}, crypto.KeySize)
	_, err = f.svc.CreateIdentity(context.Background(), models.CreateIdentityRequest{GroupID: 3, Name: "Alice", Key: wrong})
	assert.ErrorIs(t, err, models.ErrAuthorization)
}

func TestDecryptIdentities_PartialFailure(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()
	group := models.Group{ID: 3, OwnerID: "owner-1"}

	f.groups.EXPECT().GetGroup(gomock.Any(), int64(3)).Return(group, nil)
	f.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).DoAndReturn(
		func(_ context.Context, req access.AuthorizeRequest) access.Decision {
			assert.Equal(t, access.ActionDecrypt, req.Action)
			assert.Equal(t, "owner-1", req.RequesterID)
			return access.Permit
		})
	f.identities.EXPECT().ListIdentities(gomock.Any(), int64(3)).Return([]models.Identity{
		{ID: 1, Pseudonym: "Captain Otter", Ciphertext: sealedName("ok")},
		{ID: 2, Pseudonym: "Major Heron", Ciphertext: sealedName("tampered")},
		{ID: 3, Pseudonym: "Private Lynx"},
	}, nil)
	f.cipher.EXPECT().Decrypt("ok", testKey, int64(3)).Return("Alice", nil)
	f.cipher.EXPECT().Decrypt("tampered", testKey, int64(3)).Return("", models.ErrEncryption)

	result, err := f.svc.DecryptIdentities(ctx, models.DecryptRequest{GroupID: 3, RequesterID: "owner-1", Key: testKey})
	require.NoError(t, err)

	assert.Equal(t, map[string]string{"Captain Otter": "Alice"}, result.Entries)
	assert.Len(t, result.Failures, 2)
	assert.ErrorIs(t, result.Failures["Major Heron"], models.ErrEncryption)
	assert.ErrorIs(t, result.Failures["Private Lynx"], models.ErrIdentityWithoutCipher)
	assert.ElementsMatch(t, []string{"Major Heron", "Private Lynx"}, result.FailedPseudonyms())
}

func TestDecryptIdentities_DeniedBeforeAnyRead(t *testing.T) {
	f := newIdentityFixture(t)
	group := models.Group{ID: 3, OwnerID: "owner-1"}

	f.groups.EXPECT().GetGroup(gomock.Any(), int64(3)).Return(group, nil)
	f.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).Return(access.Deny)

	_, err := f.svc.DecryptIdentities(context.Background(), models.DecryptRequest{GroupID: 3, RequesterID: "stranger", Key: testKey})
	assert.ErrorIs(t, err, models.ErrAuthorization)
}

func TestDecryptIdentities_MissingGroupLooksDenied(t *testing.T) {
	f := newIdentityFixture(t)

	f.groups.EXPECT().GetGroup(gomock.Any(), int64(999)).Return(models.Group{}, models.ErrGroupNotFound)

	_, err := f.svc.DecryptIdentities(context.Background(), models.DecryptRequest{GroupID: 999, RequesterID: "stranger", Key: testKey})
	assert.ErrorIs(t, err, models.ErrAuthorization)
	assert.NotErrorIs(t, err, models.ErrNotFound)
}

func TestSetIdentityStatus_OwnerOnly(t *testing.T) {
	f := newIdentityFixture(t)
	group := models.Group{ID: 3, OwnerID: "owner-1"}

	f.groups.EXPECT().GetGroup(gomock.Any(), int64(3)).Return(group, nil).Times(2)
	gomock.InOrder(
		f.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).DoAndReturn(
			func(_ context.Context, req access.AuthorizeRequest) access.Decision {
				assert.Equal(t, access.ActionMutate, req.Action)
				assert.Empty(t, req.RequesterID)
				return access.Deny
			}),
		f.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).Return(access.Permit),
	)
	f.identities.EXPECT().FindByPseudonym(gomock.Any(), int64(3), "Captain Otter").
		Return(models.Identity{ID: 1, Pseudonym: "Captain Otter", Status: models.IdentityActive}, nil)
	f.identities.EXPECT().SetStatus(gomock.Any(), int64(1), models.IdentityInactive).Return(nil)
	f.cache.EXPECT().Invalidate(gomock.Any(), int64(3)).Return(nil).Times(2)

	req := models.StatusRequest{GroupID: 3, Pseudonym: "Captain Otter", Status: models.IdentityInactive}
	_, err := f.svc.SetIdentityStatus(context.Background(), req)
	assert.ErrorIs(t, err, models.ErrAuthorization)

	req.RequesterID = "owner-1"
	got, err := f.svc.SetIdentityStatus(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.IdentityInactive, got.Status)
}

func TestListIdentities_ServesFromCache(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	f.cache.EXPECT().Generation(gomock.Any(), int64(3)).Return(int64(4), nil)
	f.cache.EXPECT().Get(gomock.Any(), "pl:3:g4:identities:owner-1").
		Return([]byte(`[{"pseudonym":"Captain Otter","status":"active","created_at":"2026-01-02T03:04:05Z"}]`), true, nil)

	got, err := f.svc.ListIdentities(ctx, 3, "owner-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "Captain Otter", got[0].Pseudonym)
}

func TestListIdentities_LoadsOnMissAndStoresSummaries(t *testing.T) {
	f := newIdentityFixture(t)
	ctx := context.Background()

	f.cache.EXPECT().Generation(gomock.Any(), int64(3)).Return(int64(0), nil)
	f.cache.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, false, nil)
	f.groups.EXPECT().GetGroup(gomock.Any(), int64(3)).Return(models.Group{ID: 3}, nil)
	f.identities.EXPECT().ListIdentities(gomock.Any(), int64(3)).Return([]models.Identity{
		{ID: 1, Pseudonym: "Captain Otter", Fingerprint: "secret-fp", Ciphertext: sealedName("secret"), Status: models.IdentityActive},
	}, nil)
	f.cache.EXPECT().Set(gomock.Any(), "pl:3:g0:identities:-", gomock.Any(), time.Minute).DoAndReturn(
		func(_ context.Context, _ string, value []byte, _ time.Duration) error {
			assert.NotContains(t, string(value), "secret")
			return nil
		})

	got, err := f.svc.ListIdentities(ctx, 3, "")
	require.NoError(t, err)
	assert.Equal(t, []models.IdentitySummary{{Pseudonym: "Captain Otter", Status: models.IdentityActive}}, got)
}

func TestResolveParticipant(t *testing.T) {
	group := models.Group{ID: 3, OwnerID: "owner-1"}

	t.Run("known pseudonym", func(t *testing.T) {
		f := newIdentityFixture(t)
		f.identities.EXPECT().FindByPseudonym(gomock.Any(), int64(3), "Captain Otter").
			Return(models.Identity{ID: 1, Pseudonym: "Captain Otter", Status: models.IdentityActive}, nil)

		got, err := f.svc.ResolveParticipant(context.Background(), group, "Captain Otter", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(1), got.ID)
	})

	t.Run("inactive pseudonym", func(t *testing.T) {
		f := newIdentityFixture(t)
		f.identities.EXPECT().FindByPseudonym(gomock.Any(), int64(3), "Captain Otter").
			Return(models.Identity{ID: 1, Status: models.IdentityInactive}, nil)

		_, err := f.svc.ResolveParticipant(context.Background(), group, "Captain Otter", nil)
		assert.ErrorIs(t, err, models.ErrInactiveIdentity)
	})

	t.Run("known real name", func(t *testing.T) {
		f := newIdentityFixture(t)
		f.identities.EXPECT().FindByPseudonym(gomock.Any(), int64(3), "Alice").Return(models.Identity{}, models.ErrIdentityNotFound)
		f.keys.EXPECT().GetOrDeriveMasterKey("owner-1").Return(crypto.MasterKey{Key: testKey}, nil)
		f.identities.EXPECT().FindByFingerprint(gomock.Any(), int64(3), gomock.Any()).
			Return(models.Identity{ID: 2, Pseudonym: "Major Heron", Status: models.IdentityActive}, nil)

		got, err := f.svc.ResolveParticipant(context.Background(), group, "Alice", nil)
		require.NoError(t, err)
		assert.Equal(t, "Major Heron", got.Pseudonym)
	})

	t.Run("legacy plaintext name", func(t *testing.T) {
		f := newIdentityFixture(t)
		f.identities.EXPECT().FindByPseudonym(gomock.Any(), int64(3), "Erin").Return(models.Identity{}, models.ErrIdentityNotFound)
		f.keys.EXPECT().GetOrDeriveMasterKey("owner-1").Return(crypto.MasterKey{Key: testKey}, nil)
		f.identities.EXPECT().FindByFingerprint(gomock.Any(), int64(3), gomock.Any()).Return(models.Identity{}, models.ErrIdentityNotFound)
		f.identities.EXPECT().ListLegacyPlaintext(gomock.Any(), int64(3)).Return([]models.Identity{
			{ID: 5, Pseudonym: "Captain Otter", LegacyPlaintext: sealedName("erin"), Status: models.IdentityActive},
		}, nil)

		got, err := f.svc.ResolveParticipant(context.Background(), group, "Erin", nil)
		require.NoError(t, err)
		assert.Equal(t, int64(5), got.ID)
	})

	t.Run("store failure", func(t *testing.T) {
		f := newIdentityFixture(t)
		boom := errors.New("boom")
		f.identities.EXPECT().FindByPseudonym(gomock.Any(), int64(3), "Alice").Return(models.Identity{}, boom)

		_, err := f.svc.ResolveParticipant(context.Background(), group, "Alice", nil)
		assert.ErrorIs(t, err, boom)
	})
}

func TestRepairIdentities_OwnerOnly(t *testing.T) {
	f := newIdentityFixture(t)
	group := models.Group{ID: 3, OwnerID: "owner-1"}

	f.groups.EXPECT().GetGroup(gomock.Any(), int64(3)).Return(group, nil).Times(2)
	gomock.InOrder(
		f.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).Return(access.Deny),
		f.gateway.EXPECT().Authorize(gomock.Any(), gomock.Any()).Return(access.Permit),
	)
	f.identities.EXPECT().ClearLegacyPlaintext(gomock.Any(), int64(3)).Return(int64(2), nil)
	f.cache.EXPECT().Invalidate(gomock.Any(), int64(3)).Return(nil).Times(2)

	_, err := f.svc.RepairIdentities(context.Background(), 3, "stranger")
	assert.ErrorIs(t, err, models.ErrAuthorization)

	n, err := f.svc.RepairIdentities(context.Background(), 3, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}

func TestOwnerOnlyOperations_MissingGroupLooksDenied(t *testing.T) {
	f := newIdentityFixture(t)

	f.groups.EXPECT().GetGroup(gomock.Any(), int64(999)).Return(models.Group{}, models.ErrGroupNotFound).Times(3)

	_, err := f.svc.RepairIdentities(context.Background(), 999, "stranger")
	assert.ErrorIs(t, err, models.ErrAuthorization)

	_, err = f.svc.EncryptLegacyIdentities(context.Background(), models.DecryptRequest{GroupID: 999, RequesterID: "stranger", Key: testKey})
	assert.ErrorIs(t, err, models.ErrAuthorization)

	_, err = f.svc.SetIdentityStatus(context.Background(), models.StatusRequest{GroupID: 999, RequesterID: "stranger", Pseudonym: "Captain Otter", Status: models.IdentityInactive})
	assert.ErrorIs(t, err, models.ErrAuthorization)
}
