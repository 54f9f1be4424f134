package store

import (
	"time"

	sq "github.com/Masterminds/squirrel"

	"github.com/MKhiriev/go-pseudo-ledger/models"
)

var identityColumns = []string{
	"id",
	"group_id",
	"pseudonym",
	"fingerprint",
	"ciphertext",
	"plaintext_name",
	"status",
	"created_at",
}

var assignmentColumns = []string{
	"a.id",
	"a.group_id",
	"a.identity_id",
	"i.pseudonym",
	"a.item",
	"a.quantity",
	"a.consumed",
	"a.unit_price",
	"a.total_cost",
	"a.status",
	"a.created_at",
	"a.updated_at",
	"CAST(COALESCE((SELECT SUM(p.amount) FROM payments p WHERE p.assignment_id = a.id), 0) AS BIGINT) AS amount_paid",
}

var paymentColumns = []string{
	"id",
	"assignment_id",
	"amount",
	"method",
	"status",
	"processed_at",
}

// ── groups ────────────────────────────────────────────────────────────────────

func buildInsertGroupQuery(b sq.StatementBuilderType, group models.Group) (string, []any, error) {
	return b.Insert(group.TableName()).
		Columns("owner_id", "key_verifier", "created_at").
		Values(group.OwnerID, group.KeyVerifier, group.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
}

func buildSelectGroupQuery(b sq.StatementBuilderType, groupID int64) (string, []any, error) {
	return b.Select("id", "owner_id", "key_verifier", "created_at").
		From(models.Group{}.TableName()).
		Where(sq.Eq{"id": groupID}).
		ToSql()
}

func buildDeleteGroupQuery(b sq.StatementBuilderType, groupID int64) (string, []any, error) {
	return b.Delete(models.Group{}.TableName()).
		Where(sq.Eq{"id": groupID}).
		ToSql()
}

// ── identities ────────────────────────────────────────────────────────────────

func buildInsertIdentityQuery(b sq.StatementBuilderType, identity models.Identity, pseudonymKey string) (string, []any, error) {
	return b.Insert(identity.TableName()).
		Columns("group_id", "pseudonym", "pseudonym_key", "fingerprint", "ciphertext", "plaintext_name", "status", "created_at").
		Values(identity.GroupID, identity.Pseudonym, pseudonymKey, nullable(identity.Fingerprint), identity.Ciphertext, nil, identity.Status, identity.CreatedAt).
		Suffix("RETURNING id").
		ToSql()
}

func selectIdentities(b sq.StatementBuilderType) sq.SelectBuilder {
	return b.Select(identityColumns...).
		From(models.Identity{}.TableName())
}

func buildSelectIdentitiesQuery(b sq.StatementBuilderType, groupID int64) (string, []any, error) {
	return selectIdentities(b).
		Where(sq.Eq{"group_id": groupID}).
		OrderBy("id").
		ToSql()
}

func buildSelectIdentityByPseudonymQuery(b sq.StatementBuilderType, groupID int64, pseudonymKey string) (string, []any, error) {
	return selectIdentities(b).
		Where(sq.Eq{"group_id": groupID, "pseudonym_key": pseudonymKey}).
		ToSql()
}

func buildSelectIdentityByFingerprintQuery(b sq.StatementBuilderType, groupID int64, fingerprint string) (string, []any, error) {
	return selectIdentities(b).
		Where(sq.Eq{"group_id": groupID, "fingerprint": fingerprint}).
		ToSql()
}

func buildUpdateIdentityStatusQuery(b sq.StatementBuilderType, identityID int64, status models.IdentityStatus) (string, []any, error) {
	return b.Update(models.Identity{}.TableName()).
		Set("status", status).
		Where(sq.Eq{"id": identityID}).
		ToSql()
}

func buildClearLegacyPlaintextQuery(b sq.StatementBuilderType, groupID int64) (string, []any, error) {
	return b.Update(models.Identity{}.TableName()).
		Set("plaintext_name", nil).
		Where(sq.Eq{"group_id": groupID}).
		Where(sq.NotEq{"ciphertext": nil}).
		Where(sq.NotEq{"plaintext_name": nil}).
		ToSql()
}

func buildSelectLegacyPlaintextQuery(b sq.StatementBuilderType, groupID int64) (string, []any, error) {
	return selectIdentities(b).
		Where(sq.Eq{"group_id": groupID, "ciphertext": nil}).
		Where(sq.NotEq{"plaintext_name": nil}).
		OrderBy("id").
		ToSql()
}

func buildStoreEncryptedQuery(b sq.StatementBuilderType, identity models.Identity) (string, []any, error) {
	return b.Update(identity.TableName()).
		Set("fingerprint", identity.Fingerprint).
		Set("ciphertext", identity.Ciphertext).
		Set("plaintext_name", nil).
		Where(sq.Eq{"id": identity.ID, "ciphertext": nil}).
		ToSql()
}

// ── assignments ───────────────────────────────────────────────────────────────

func buildInsertAssignmentQuery(b sq.StatementBuilderType, a models.Assignment) (string, []any, error) {
	return b.Insert(a.TableName()).
		Columns("group_id", "identity_id", "item", "quantity", "consumed", "unit_price", "total_cost", "status", "created_at", "updated_at").
		Values(a.GroupID, a.IdentityID, a.Item, a.Quantity, a.Consumed, a.UnitPrice, a.TotalCost, a.Status, a.CreatedAt, a.UpdatedAt).
		Suffix("RETURNING id").
		ToSql()
}

func selectAssignments(b sq.StatementBuilderType) sq.SelectBuilder {
	return b.Select(assignmentColumns...).
		From("assignments a").
		Join("identities i ON i.id = a.identity_id")
}

func buildSelectAssignmentQuery(b sq.StatementBuilderType, assignmentID int64) (string, []any, error) {
	return selectAssignments(b).
		Where(sq.Eq{"a.id": assignmentID}).
		ToSql()
}

func buildSelectAssignmentsQuery(b sq.StatementBuilderType, groupID int64) (string, []any, error) {
	return selectAssignments(b).
		Where(sq.Eq{"a.group_id": groupID}).
		OrderBy("a.id").
		ToSql()
}

// buildLockAssignmentQuery locks the assignment row until the end of the
// transaction. PostgreSQL only; SQLite transactions take the write lock at BEGIN.
func buildLockAssignmentQuery(b sq.StatementBuilderType, assignmentID int64) (string, []any, error) {
	return b.Select("id").
		From(models.Assignment{}.TableName()).
		Where(sq.Eq{"id": assignmentID}).
		Suffix("FOR UPDATE").
		ToSql()
}

func buildUpdateAssignmentQuery(b sq.StatementBuilderType, a models.Assignment) (string, []any, error) {
	return b.Update(a.TableName()).
		Set("quantity", a.Quantity).
		Set("consumed", a.Consumed).
		Set("total_cost", a.TotalCost).
		Set("status", a.Status).
		Set("updated_at", a.UpdatedAt).
		Where(sq.Eq{"id": a.ID}).
		ToSql()
}

// ── payments ──────────────────────────────────────────────────────────────────

func buildInsertPaymentQuery(b sq.StatementBuilderType, p models.Payment) (string, []any, error) {
	return b.Insert(p.TableName()).
		Columns("assignment_id", "amount", "method", "status", "processed_at").
		Values(p.AssignmentID, p.Amount, p.Method, p.Status, p.ProcessedAt).
		Suffix("RETURNING id").
		ToSql()
}

func buildSelectPaymentsQuery(b sq.StatementBuilderType, assignmentID int64) (string, []any, error) {
	return b.Select(paymentColumns...).
		From(models.Payment{}.TableName()).
		Where(sq.Eq{"assignment_id": assignmentID}).
		OrderBy("id").
		ToSql()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func now() time.Time {
	return time.Now().UTC()
}
