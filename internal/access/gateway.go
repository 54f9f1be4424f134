package access

import (
	"context"
	"crypto/subtle"

	"github.com/MKhiriev/go-pseudo-ledger/internal/crypto"
	"github.com/MKhiriev/go-pseudo-ledger/internal/logger"
	"github.com/MKhiriev/go-pseudo-ledger/internal/metrics"
)

type gateway struct {
	keys   crypto.KeyDeriver
	logger *logger.Logger
}

func NewGateway(keys crypto.KeyDeriver, logger *logger.Logger) Gateway {
	return &gateway{
		keys:   keys,
		logger: logger,
	}
}

// Authorize permits ActionList for anyone, ActionMutate for the owner, and
// ActionDecrypt for the owner presenting the group's master key. The key of
// a derived-key group is compared with the owner's derived key; a
// caller-managed key is checked against the stored verifier. All
// comparisons are constant-time.
func (g *gateway) Authorize(ctx context.Context, req AuthorizeRequest) Decision {
	decision := g.decide(req)

	metrics.AccessDecisions.WithLabelValues(string(req.Action), decision.String()).Inc()
	logger.FromContext(ctx).Debug().
		Str("func", "gateway.Authorize").
		Int64("group_id", req.Group.ID).
		Str("action", string(req.Action)).
		Str("decision", decision.String()).
		Msg("access decision")

	return decision
}

func (g *gateway) decide(req AuthorizeRequest) Decision {
	switch req.Action {
	case ActionList:
		return Permit
	case ActionMutate:
		if isOwner(req) {
			return Permit
		}
		return Deny
	case ActionDecrypt:
		if !isOwner(req) || len(req.SuppliedKey) == 0 {
			return Deny
		}
		if g.keyMatches(req) {
			return Permit
		}
		return Deny
	default:
		return Deny
	}
}

func isOwner(req AuthorizeRequest) bool {
	if req.RequesterID == "" || req.Group.OwnerID == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(req.RequesterID), []byte(req.Group.OwnerID)) == 1
}

func (g *gateway) keyMatches(req AuthorizeRequest) bool {
	if !req.Group.UsesDerivedKey() {
		return crypto.MatchesVerifier(req.SuppliedKey, *req.Group.KeyVerifier)
	}

	expected, err := g.keys.GetOrDeriveMasterKey(req.Group.OwnerID)
	if err != nil {
		return false
	}
	return expected.Equal(req.SuppliedKey)
}
