package crypto

import (
	"bytes"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"testing"

	"github.com/MKhiriev/go-pseudo-ledger/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDeriver() KeyDeriver {
	return NewKeyDeriver(MinIterations, "")
}

func TestDeriveMasterKey_Deterministic(t *testing.T) {
	svc := newTestDeriver()

	k1, err := svc.DeriveMasterKey("owner-42")
	require.NoError(t, err)
	k2, err := svc.DeriveMasterKey("owner-42")
	require.NoError(t, err)

	if len(k1.Key) != KeySize {
		t.Fatalf("key length = %d, want %d", len(k1.Key), KeySize)
	}
	if !bytes.Equal(k1.Key, k2.Key) || !bytes.Equal(k1.Salt, k2.Salt) {
		t.Fatalf("expected identical keys for the same owner")
	}
}

func TestDeriveMasterKey_DifferentOwnersDiffer(t *testing.T) {
	svc := newTestDeriver()

	seen := make(map[string]string, 16)
	for i := 0; i < 16; i++ {
		owner := fmt.Sprintf("owner-%d", i)
		mk, err := svc.DeriveMasterKey(owner)
		require.NoError(t, err)

		enc := string(mk.Key)
		if prev, ok := seen[enc]; ok {
			t.Fatalf("owners %s and %s share a key", prev, owner)
		}
		seen[enc] = owner
	}
}

func TestDeriveMasterKey_PepperChangesKey(t *testing.T) {
	k1, err := NewKeyDeriver(MinIterations, "").DeriveMasterKey("owner")
	require.NoError(t, err)
	k2, err := NewKeyDeriver(MinIterations, "pepper").DeriveMasterKey("owner")
	require.NoError(t, err)

	assert.False(t, bytes.Equal(k1.Key, k2.Key))
	assert.Equal(t, k1.Salt, k2.Salt, "salt depends on the owner only")
}

func TestDeriveMasterKey_EmptyOwner(t *testing.T) {
	_, err := newTestDeriver().DeriveMasterKey("  ")
	assert.ErrorIs(t, err, models.ErrValidation)
}

func TestNewKeyDeriver_RaisesLowIterations(t *testing.T) {
	low := NewKeyDeriver(10, "").(*masterKeyService)
	assert.Equal(t, MinIterations, low.iterations)
}

func TestGetOrDeriveMasterKey_MatchesFreshDerivation(t *testing.T) {
	svc := newTestDeriver()

	fresh, err := svc.DeriveMasterKey("owner")
	require.NoError(t, err)
	memo1, err := svc.GetOrDeriveMasterKey("owner")
	require.NoError(t, err)
	memo2, err := svc.GetOrDeriveMasterKey("owner")
	require.NoError(t, err)

	assert.Equal(t, fresh.Key, memo1.Key)
	assert.Equal(t, memo1.Key, memo2.Key)
}

func TestMasterKey_EncodeParseVerify(t *testing.T) {
	svc := newTestDeriver()
	mk, err := svc.DeriveMasterKey("owner")
	require.NoError(t, err)

	parsed, err := ParseMasterKey(mk.Encode())
	require.NoError(t, err)
	assert.Equal(t, mk.Key, parsed.Key)
	assert.Equal(t, mk.Salt, parsed.Salt)

	assert.True(t, Verify(svc, parsed, "owner"))
	assert.False(t, Verify(svc, parsed, "someone-else"))
	assert.NotContains(t, fmt.Sprint(mk), base64.RawURLEncoding.EncodeToString(mk.Key))
}

func TestParseMasterKey_Malformed(t *testing.T) {
	for _, in := range []string{"", "v1$abc", "v2$AAAA$BBBB", "v1$!!$??"} {
		_, err := ParseMasterKey(in)
		assert.ErrorIs(t, err, models.ErrInvalidKeyFormat, "input %q", in)
	}
}

func randomKey(t *testing.T) []byte {
	t.Helper()
	k := make([]byte, KeySize)
	_, err := rand.Read(k)
	require.NoError(t, err)
	return k
}

func TestIdentityCipher_RoundTrip(t *testing.T) {
	c := NewIdentityCipher()
	key := randomKey(t)

	for _, name := range []string{"Alice", "Zoë Ångström", "李雷", ""} {
		blob, err := c.Encrypt(name, key, 7)
		require.NoError(t, err)

		got, err := c.Decrypt(blob, key, 7)
		require.NoError(t, err)
		assert.Equal(t, name, got)
	}
}

func TestIdentityCipher_NonceRandomness(t *testing.T) {
	c := NewIdentityCipher()
	key := randomKey(t)

	b1, err := c.Encrypt("Alice", key, 7)
	require.NoError(t, err)
	b2, err := c.Encrypt("Alice", key, 7)
	require.NoError(t, err)

	if b1 == b2 {
		t.Fatalf("expected different blobs for two encryptions")
	}
}

func TestIdentityCipher_GroupBinding(t *testing.T) {
	c := NewIdentityCipher()
	key := randomKey(t)

	blob, err := c.Encrypt("Alice", key, 7)
	require.NoError(t, err)

	_, err = c.Decrypt(blob, key, 8)
	assert.ErrorIs(t, err, models.ErrEncryption)
}

func TestIdentityCipher_WrongKeyAlwaysFails(t *testing.T) {
	c := NewIdentityCipher()
	key := randomKey(t)

	blob, err := c.Encrypt("Alice", key, 7)
	require.NoError(t, err)

	for i := 0; i < 32; i++ {
		got, err := c.Decrypt(blob, randomKey(t), 7)
		require.ErrorIs(t, err, models.ErrEncryption)
		require.Empty(t, got)
	}
}

func TestIdentityCipher_TamperedBlob(t *testing.T) {
	c := NewIdentityCipher()
	key := randomKey(t)

	blob, err := c.Encrypt("Alice", key, 7)
	require.NoError(t, err)

	raw, err := base64.StdEncoding.DecodeString(blob)
	require.NoError(t, err)
	raw[len(raw)-1] ^= 0xFF

	_, err = c.Decrypt(base64.StdEncoding.EncodeToString(raw), key, 7)
	assert.ErrorIs(t, err, ErrAuthentication)
}

func TestIdentityCipher_MalformedInputs(t *testing.T) {
	c := NewIdentityCipher()
	key := randomKey(t)

	tests := []struct {
		name string
		blob string
		key  []byte
		want error
	}{
		{name: "not base64", blob: "%%%", key: key, want: ErrMalformedBlob},
		{name: "too short", blob: base64.StdEncoding.EncodeToString([]byte{1, 2, 3}), key: key, want: ErrMalformedBlob},
		{name: "unknown version", blob: base64.StdEncoding.EncodeToString(bytes.Repeat([]byte{9}, 64)), key: key, want: ErrUnsupportedVersion},
		{name: "short key", blob: "AAAA", key: []byte("short"), want: ErrInvalidKeyLength},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := c.Decrypt(tt.blob, tt.key, 1)
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
			assert.ErrorIs(t, err, models.ErrEncryption)
		})
	}
}

func TestFingerprint_ScopedAndDeterministic(t *testing.T) {
	key := randomKey(t)

	f1, err := Fingerprint(key, 7, "alice")
	require.NoError(t, err)
	f2, err := Fingerprint(key, 7, "alice")
	require.NoError(t, err)
	f3, err := Fingerprint(key, 8, "alice")
	require.NoError(t, err)
	f4, err := Fingerprint(randomKey(t), 7, "alice")
	require.NoError(t, err)

	assert.Equal(t, f1, f2)
	assert.NotEqual(t, f1, f3)
	assert.NotEqual(t, f1, f4)
	assert.NotContains(t, f1, "alice")
}

func TestKeyVerifier(t *testing.T) {
	key := randomKey(t)

	v, err := KeyVerifier(key)
	require.NoError(t, err)

	assert.True(t, MatchesVerifier(key, v))
	assert.False(t, MatchesVerifier(randomKey(t), v))
	assert.False(t, MatchesVerifier([]byte("short"), v))
}
