package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/repository"
)

func newUserMock(t *testing.T) (pgxmock.PgxPoolIface, *UserRepository) {
	t.Helper()

	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	t.Cleanup(mock.Close)

	return mock, NewUserRepository(mock)
}

func TestUserRepository_Create(t *testing.T) {
	mock, repo := newUserMock(t)

	now := time.Now().UTC()
	email := "person@example.com"
	user := domain.User{
		ID:            "2f0c8a4e-62ce-4be0-b188-3f1b4ea2a0c1",
		FullName:      "Pat Example",
		Email:         &email,
		PasswordHash:  "salt:hash",
		PasswordAlgo:  "argon2id",
		Role:          domain.RoleUser,
		EmailVerified: true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
		).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	if err := repo.Create(context.Background(), user); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByContact(t *testing.T) {
	mock, repo := newUserMock(t)

	now := time.Now().UTC()
	rows := pgxmock.NewRows(userColumns).AddRow(
		"2f0c8a4e-62ce-4be0-b188-3f1b4ea2a0c1",
		"Pat Example",
		sql.NullString{String: "person@example.com", Valid: true},
		sql.NullString{},
		"salt:hash",
		"argon2id",
		domain.RoleUser,
		true,
		false,
		now,
		now,
	)

	mock.ExpectQuery(`SELECT .*FROM users`).WithArgs(pgxmock.AnyArg()).WillReturnRows(rows)

	user, err := repo.GetByContact(context.Background(), domain.EmailContact("person@example.com"))
	if err != nil {
		t.Fatalf("GetByContact returned error: %v", err)
	}
	if user.Email == nil || *user.Email != "person@example.com" {
		t.Fatalf("expected email pointer populated")
	}
	if user.Phone != nil {
		t.Fatalf("expected nil phone for an email-only account")
	}
	if !user.EmailVerified {
		t.Fatalf("expected email_verified to round-trip")
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByContactMiss(t *testing.T) {
	mock, repo := newUserMock(t)

	mock.ExpectQuery(`SELECT .*FROM users`).WithArgs(pgxmock.AnyArg()).WillReturnError(pgx.ErrNoRows)

	_, err := repo.GetByContact(context.Background(), domain.EmailContact("nobody@example.com"))
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_GetByContactRejectsMalformedContact(t *testing.T) {
	_, repo := newUserMock(t)

	_, err := repo.GetByContact(context.Background(), domain.Contact{})
	if !errors.Is(err, domain.ErrInvalidContact) {
		t.Fatalf("expected ErrInvalidContact, got %v", err)
	}
}

func TestUserRepository_UpdatePassword(t *testing.T) {
	mock, repo := newUserMock(t)

	changedAt := time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

	mock.ExpectExec(`UPDATE users`).
		WithArgs("salt:newhash", "argon2id", changedAt, "user-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.UpdatePassword(context.Background(), "user-1", "salt:newhash", "argon2id", changedAt); err != nil {
		t.Fatalf("UpdatePassword returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_UpdatePasswordMiss(t *testing.T) {
	mock, repo := newUserMock(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := repo.UpdatePassword(context.Background(), "ghost", "salt:hash", "argon2id", time.Now().UTC())
	if !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_MarkContactVerified(t *testing.T) {
	mock, repo := newUserMock(t)

	mock.ExpectExec(`UPDATE users`).
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.MarkContactVerified(context.Background(), "user-1", domain.ChannelPhone); err != nil {
		t.Fatalf("MarkContactVerified returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
