package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/infra/security"
	"github.com/nverdi/social-app-backend/internal/repository"
)

const verificationCodesTable = "verification_codes"

var verificationCodeColumns = []string{
	"id",
	"email",
	"phone",
	"code",
	"purpose",
	"verified",
	"reset_token",
	"token_used",
	"attempt_count",
	"expires_at",
	"channel",
	"created_at",
	"updated_at",
}

// VerificationCodeRepository implements port.VerificationCodeRepository
// using PostgreSQL. The one-active-record-per-(contact, purpose) invariant
// is enforced by running delete-then-insert inside a single transaction,
// backed by the partial unique index on unverified rows.
type VerificationCodeRepository struct {
	pool    *pgxpool.Pool
	exec    pgExecutor
	builder squirrel.StatementBuilderType
	now     func() time.Time
}

// NewVerificationCodeRepository constructs a new verification-code repository.
// Transactional operations require the executor to be a *pgxpool.Pool.
func NewVerificationCodeRepository(exec pgExecutor) *VerificationCodeRepository {
	repo := &VerificationCodeRepository{
		exec:    exec,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
		now:     time.Now,
	}
	if pool, ok := exec.(*pgxpool.Pool); ok {
		repo.pool = pool
	}
	return repo
}

// WithTx returns a repository instance executing within the provided transaction.
func (r *VerificationCodeRepository) WithTx(tx pgx.Tx) *VerificationCodeRepository {
	if tx == nil {
		return r
	}
	return &VerificationCodeRepository{
		pool:    r.pool,
		exec:    tx,
		builder: r.builder,
		now:     r.now,
	}
}

// WithClock overrides the internal clock, used in tests.
func (r *VerificationCodeRepository) WithClock(clock func() time.Time) {
	if clock != nil {
		r.now = clock
	}
}

// UpsertActive deletes any unverified record for the (contact, purpose) key
// and inserts a fresh one with a zeroed attempt counter.
func (r *VerificationCodeRepository) UpsertActive(ctx context.Context, contact domain.Contact, purpose domain.Purpose, code string, expiresAt time.Time) (*domain.VerificationCode, error) {
	if err := contact.Validate(); err != nil {
		return nil, err
	}

	if r.pool == nil {
		return nil, fmt.Errorf("verification codes: pool not configured")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin upsert verification code: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	txRepo := r.WithTx(tx)

	delSQL, delArgs, err := txRepo.builder.Delete(verificationCodesTable).
		Where(txRepo.contactClause(contact)).
		Where(squirrel.Eq{"purpose": purpose, "verified": false}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build delete active sql: %w", err)
	}
	if _, err := tx.Exec(ctx, delSQL, delArgs...); err != nil {
		return nil, fmt.Errorf("delete superseded verification codes: %w", err)
	}

	now := r.now().UTC()
	insSQL, insArgs, err := txRepo.builder.Insert(verificationCodesTable).
		Columns("email", "phone", "code", "purpose", "verified", "token_used", "attempt_count", "expires_at", "channel", "created_at", "updated_at").
		Values(contact.Email(), contact.Phone(), code, purpose, false, false, 0, expiresAt, contact.Channel, now, now).
		Suffix("RETURNING id").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert verification code sql: %w", err)
	}

	var id uint64
	if err := tx.QueryRow(ctx, insSQL, insArgs...).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert verification code: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit upsert verification code: %w", err)
	}

	return &domain.VerificationCode{
		ID:        id,
		Contact:   contact,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: expiresAt,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// FindActive retrieves the latest unverified record for the key. Expiry and
// attempt-cap checks stay with the caller so it can report precise failures.
func (r *VerificationCodeRepository) FindActive(ctx context.Context, contact domain.Contact, purpose domain.Purpose) (*domain.VerificationCode, error) {
	return r.findOne(ctx, func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		return q.Where(r.contactClause(contact)).
			Where(squirrel.Eq{"purpose": purpose, "verified": false}).
			OrderBy("created_at DESC")
	})
}

// FindVerified retrieves the latest verified, unexpired record for the key.
func (r *VerificationCodeRepository) FindVerified(ctx context.Context, contact domain.Contact, purpose domain.Purpose) (*domain.VerificationCode, error) {
	return r.findOne(ctx, func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		return q.Where(r.contactClause(contact)).
			Where(squirrel.Eq{"purpose": purpose, "verified": true}).
			Where(squirrel.Gt{"expires_at": r.now().UTC()}).
			OrderBy("created_at DESC")
	})
}

// IncrementAttempt bumps the attempt counter for the record.
func (r *VerificationCodeRepository) IncrementAttempt(ctx context.Context, id uint64) error {
	stmt, args, err := r.builder.Update(verificationCodesTable).
		Set("attempt_count", squirrel.Expr("attempt_count + 1")).
		Set("updated_at", r.now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build increment attempt sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("increment verification attempt: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MarkVerified flips the record into its terminal verified state.
func (r *VerificationCodeRepository) MarkVerified(ctx context.Context, id uint64) error {
	stmt, args, err := r.builder.Update(verificationCodesTable).
		Set("verified", true).
		Set("updated_at", r.now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark verified sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark verification code verified: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// IssueResetToken mints an opaque token, stores its digest on the record and
// resets the token_used flag. Only the digest reaches the database, so a
// leaked table cannot be replayed; the plain token goes back to the caller.
// The unique constraint on reset_token rejects the astronomically unlikely
// collision.
func (r *VerificationCodeRepository) IssueResetToken(ctx context.Context, id uint64) (string, error) {
	token, err := security.GenerateSecureToken(32)
	if err != nil {
		return "", fmt.Errorf("generate reset token: %w", err)
	}

	stmt, args, err := r.builder.Update(verificationCodesTable).
		Set("reset_token", security.HashToken(token)).
		Set("token_used", false).
		Set("updated_at", r.now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return "", fmt.Errorf("build issue reset token sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return "", fmt.Errorf("store reset token: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return "", repository.ErrNotFound
	}

	return token, nil
}

// FindByResetToken matches only verified, unused, unexpired records. The
// supplied token is hashed before the lookup since the store only holds
// digests.
func (r *VerificationCodeRepository) FindByResetToken(ctx context.Context, contact domain.Contact, token string) (*domain.VerificationCode, error) {
	if token == "" {
		return nil, repository.ErrNotFound
	}
	return r.findOne(ctx, func(q squirrel.SelectBuilder) squirrel.SelectBuilder {
		return q.Where(r.contactClause(contact)).
			Where(squirrel.Eq{"reset_token": security.HashToken(token), "verified": true, "token_used": false}).
			Where(squirrel.Gt{"expires_at": r.now().UTC()})
	})
}

// MarkUsedAndDelete flips token_used and deletes the record in one
// transaction. The update is ordered before the delete so a crash between
// the statements can never leave a reusable unused token behind.
func (r *VerificationCodeRepository) MarkUsedAndDelete(ctx context.Context, id uint64) error {
	if r.pool == nil {
		return fmt.Errorf("verification codes: pool not configured")
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin consume reset token: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	updSQL, updArgs, err := r.builder.Update(verificationCodesTable).
		Set("token_used", true).
		Set("updated_at", r.now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark token used sql: %w", err)
	}

	ct, err := tx.Exec(ctx, updSQL, updArgs...)
	if err != nil {
		return fmt.Errorf("mark reset token used: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	delSQL, delArgs, err := r.builder.Delete(verificationCodesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete consumed code sql: %w", err)
	}
	if _, err := tx.Exec(ctx, delSQL, delArgs...); err != nil {
		return fmt.Errorf("delete consumed verification code: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit consume reset token: %w", err)
	}

	return nil
}

// Delete removes a single record, used to roll back after delivery failures.
func (r *VerificationCodeRepository) Delete(ctx context.Context, id uint64) error {
	stmt, args, err := r.builder.Delete(verificationCodesTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build delete verification code sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("delete verification code: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// DeleteExpiredAndUsed removes expired records and consumed reset tokens,
// optionally scoped to one contact, and returns the number of rows removed.
func (r *VerificationCodeRepository) DeleteExpiredAndUsed(ctx context.Context, contact *domain.Contact) (int64, error) {
	cond := squirrel.Or{
		squirrel.LtOrEq{"expires_at": r.now().UTC()},
		squirrel.Eq{"token_used": true},
	}

	del := r.builder.Delete(verificationCodesTable).Where(cond)
	if contact != nil {
		del = del.Where(r.contactClause(*contact))
	}

	stmt, args, err := del.ToSql()
	if err != nil {
		return 0, fmt.Errorf("build cleanup sql: %w", err)
	}

	ct, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return 0, fmt.Errorf("cleanup verification codes: %w", err)
	}

	return ct.RowsAffected(), nil
}

func (r *VerificationCodeRepository) contactClause(contact domain.Contact) squirrel.Sqlizer {
	if contact.Channel == domain.ChannelPhone {
		return squirrel.Eq{"phone": contact.Value, "channel": domain.ChannelPhone}
	}
	return squirrel.Eq{"email": contact.Value, "channel": domain.ChannelEmail}
}

func (r *VerificationCodeRepository) findOne(ctx context.Context, shape func(squirrel.SelectBuilder) squirrel.SelectBuilder) (*domain.VerificationCode, error) {
	query := shape(r.builder.Select(verificationCodeColumns...).From(verificationCodesTable)).Limit(1)

	stmt, args, err := query.ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select verification code sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	return scanVerificationCode(row)
}

func scanVerificationCode(row pgx.Row) (*domain.VerificationCode, error) {
	var (
		record     domain.VerificationCode
		email      sql.NullString
		phone      sql.NullString
		resetToken sql.NullString
		channel    string
	)

	if err := row.Scan(
		&record.ID,
		&email,
		&phone,
		&record.Code,
		&record.Purpose,
		&record.Verified,
		&resetToken,
		&record.TokenUsed,
		&record.AttemptCount,
		&record.ExpiresAt,
		&channel,
		&record.CreatedAt,
		&record.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("scan verification code: %w", err)
	}

	switch domain.Channel(channel) {
	case domain.ChannelPhone:
		record.Contact = domain.PhoneContact(phone.String)
	default:
		record.Contact = domain.EmailContact(email.String)
	}
	if resetToken.Valid {
		value := resetToken.String
		record.ResetToken = &value
	}

	return &record, nil
}
