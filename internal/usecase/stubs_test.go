package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/nverdi/social-app-backend/internal/core/domain"
	"github.com/nverdi/social-app-backend/internal/repository"
)

type codeRepoStub struct {
	active     *domain.VerificationCode
	verified   *domain.VerificationCode
	byToken    *domain.VerificationCode
	nextID     uint64
	increments int

	upserted        *domain.VerificationCode
	markedVerified  uint64
	issuedTokenFor  uint64
	issuedToken     string
	consumedID      uint64
	deletedID       uint64
	cleanupCalls    int
	cleanupContacts []*domain.Contact

	upsertErr error
}

func (s *codeRepoStub) UpsertActive(_ context.Context, contact domain.Contact, purpose domain.Purpose, code string, expiresAt time.Time) (*domain.VerificationCode, error) {
	if s.upsertErr != nil {
		return nil, s.upsertErr
	}
	s.nextID++
	record := domain.VerificationCode{
		ID:        s.nextID,
		Contact:   contact,
		Code:      code,
		Purpose:   purpose,
		ExpiresAt: expiresAt,
	}
	s.active = &record
	s.upserted = &record
	copied := record
	return &copied, nil
}

func (s *codeRepoStub) FindActive(_ context.Context, contact domain.Contact, purpose domain.Purpose) (*domain.VerificationCode, error) {
	if s.active == nil || s.active.Contact != contact || s.active.Purpose != purpose {
		return nil, repository.ErrNotFound
	}
	copied := *s.active
	return &copied, nil
}

func (s *codeRepoStub) FindVerified(_ context.Context, contact domain.Contact, purpose domain.Purpose) (*domain.VerificationCode, error) {
	if s.verified == nil || s.verified.Contact != contact || s.verified.Purpose != purpose {
		return nil, repository.ErrNotFound
	}
	copied := *s.verified
	return &copied, nil
}

func (s *codeRepoStub) IncrementAttempt(_ context.Context, id uint64) error {
	if s.active == nil || s.active.ID != id {
		return repository.ErrNotFound
	}
	s.active.AttemptCount++
	s.increments++
	return nil
}

func (s *codeRepoStub) MarkVerified(_ context.Context, id uint64) error {
	if s.active == nil || s.active.ID != id {
		return repository.ErrNotFound
	}
	s.active.Verified = true
	s.markedVerified = id
	s.verified = s.active
	return nil
}

func (s *codeRepoStub) IssueResetToken(_ context.Context, id uint64) (string, error) {
	if s.verified == nil || s.verified.ID != id {
		return "", repository.ErrNotFound
	}
	s.issuedTokenFor = id
	s.issuedToken = "reset-token-1"
	token := s.issuedToken
	s.verified.ResetToken = &token
	s.byToken = s.verified
	return token, nil
}

func (s *codeRepoStub) FindByResetToken(_ context.Context, contact domain.Contact, token string) (*domain.VerificationCode, error) {
	if s.byToken == nil || s.byToken.Contact != contact {
		return nil, repository.ErrNotFound
	}
	if s.byToken.ResetToken == nil || *s.byToken.ResetToken != token {
		return nil, repository.ErrNotFound
	}
	copied := *s.byToken
	return &copied, nil
}

func (s *codeRepoStub) MarkUsedAndDelete(_ context.Context, id uint64) error {
	s.consumedID = id
	return nil
}

func (s *codeRepoStub) Delete(_ context.Context, id uint64) error {
	s.deletedID = id
	if s.active != nil && s.active.ID == id {
		s.active = nil
	}
	return nil
}

func (s *codeRepoStub) DeleteExpiredAndUsed(_ context.Context, contact *domain.Contact) (int64, error) {
	s.cleanupCalls++
	s.cleanupContacts = append(s.cleanupContacts, contact)
	return 0, nil
}

type userRepoStub struct {
	byContact map[string]domain.User

	created      []domain.User
	updatedID    string
	updatedHash  string
	updatedAlgo  string
	updatedAt    time.Time
	verifiedID   string
	verifiedChan domain.Channel
}

func (s *userRepoStub) Create(_ context.Context, user domain.User) error {
	s.created = append(s.created, user)
	return nil
}

func (s *userRepoStub) GetByID(_ context.Context, id string) (*domain.User, error) {
	for _, user := range s.byContact {
		if user.ID == id {
			copied := user
			return &copied, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (s *userRepoStub) GetByContact(_ context.Context, contact domain.Contact) (*domain.User, error) {
	if user, ok := s.byContact[contact.Value]; ok {
		copied := user
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *userRepoStub) UpdatePassword(_ context.Context, id string, hash string, algo string, changedAt time.Time) error {
	s.updatedID = id
	s.updatedHash = hash
	s.updatedAlgo = algo
	s.updatedAt = changedAt
	return nil
}

func (s *userRepoStub) MarkContactVerified(_ context.Context, id string, channel domain.Channel) error {
	s.verifiedID = id
	s.verifiedChan = channel
	return nil
}

type sentCode struct {
	contact domain.Contact
	code    string
	purpose domain.Purpose
}

type notifierStub struct {
	sent []sentCode
	err  error
}

func (s *notifierStub) SendCode(_ context.Context, contact domain.Contact, code string, purpose domain.Purpose) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, sentCode{contact: contact, code: code, purpose: purpose})
	return nil
}

type eventSinkStub struct {
	issued          []domain.CodeIssuedEvent
	verified        []domain.CodeVerifiedEvent
	passwordChanged []domain.PasswordChangedEvent
}

func (s *eventSinkStub) PublishCodeIssued(_ context.Context, event domain.CodeIssuedEvent) error {
	s.issued = append(s.issued, event)
	return nil
}

func (s *eventSinkStub) PublishCodeVerified(_ context.Context, event domain.CodeVerifiedEvent) error {
	s.verified = append(s.verified, event)
	return nil
}

func (s *eventSinkStub) PublishPasswordChanged(_ context.Context, event domain.PasswordChangedEvent) error {
	s.passwordChanged = append(s.passwordChanged, event)
	return nil
}

type sessionStoreStub struct {
	sessions map[string]domain.RegistrationSession
	deleted  []string
}

func newSessionStoreStub() *sessionStoreStub {
	return &sessionStoreStub{sessions: make(map[string]domain.RegistrationSession)}
}

func (s *sessionStoreStub) Create(_ context.Context, session domain.RegistrationSession) error {
	s.sessions[session.SessionID] = session
	return nil
}

func (s *sessionStoreStub) Get(_ context.Context, sessionID string) (*domain.RegistrationSession, error) {
	if session, ok := s.sessions[sessionID]; ok {
		copied := session
		return &copied, nil
	}
	return nil, repository.ErrNotFound
}

func (s *sessionStoreStub) Update(_ context.Context, session domain.RegistrationSession) error {
	if _, ok := s.sessions[session.SessionID]; !ok {
		return repository.ErrNotFound
	}
	s.sessions[session.SessionID] = session
	return nil
}

func (s *sessionStoreStub) Delete(_ context.Context, sessionID string) error {
	if _, ok := s.sessions[sessionID]; !ok {
		return repository.ErrNotFound
	}
	delete(s.sessions, sessionID)
	s.deleted = append(s.deleted, sessionID)
	return nil
}

type rateLimitStub struct {
	count    int
	recorded int
}

func (s *rateLimitStub) TrimWindow(context.Context, string, time.Duration, time.Time) error {
	return nil
}

func (s *rateLimitStub) CountAttempts(context.Context, string, time.Duration, time.Time) (int, error) {
	return s.count, nil
}

func (s *rateLimitStub) RecordAttempt(context.Context, string, time.Time) error {
	s.recorded++
	s.count++
	return nil
}

func (s *rateLimitStub) OldestAttempt(context.Context, string, time.Duration, time.Time) (time.Time, bool, error) {
	return time.Time{}, false, nil
}

type denylistStub struct {
	entries map[string]time.Duration
	reasons map[string]string
}

func newDenylistStub() *denylistStub {
	return &denylistStub{
		entries: make(map[string]time.Duration),
		reasons: make(map[string]string),
	}
}

func (s *denylistStub) Revoke(_ context.Context, jti string, reason string, ttl time.Duration) error {
	if jti == "" {
		return errors.New("jti must not be empty")
	}
	s.entries[jti] = ttl
	s.reasons[jti] = reason
	return nil
}

func (s *denylistStub) IsRevoked(_ context.Context, jti string) (bool, error) {
	_, ok := s.entries[jti]
	return ok, nil
}
