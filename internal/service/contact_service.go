package service

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/contacts-service/internal/domain"
	"github.com/spec-kit/contacts-service/internal/repository"
)

// ContactService exposes the address book of a single user.
type ContactService struct {
	contacts repository.ContactRepository
	logger   *zap.Logger
	now      func() time.Time
}

// NewContactService builds the service.
func NewContactService(contacts repository.ContactRepository, logger *zap.Logger) *ContactService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ContactService{contacts: contacts, logger: logger, now: time.Now}
}

// WithClock replaces the clock used to pick the birthday window.
func (s *ContactService) WithClock(now func() time.Time) *ContactService {
	s.now = now
	return s
}

func (s *ContactService) List(ctx context.Context, userID int64, limit, offset int) ([]domain.Contact, error) {
	return s.contacts.List(ctx, userID, limit, offset)
}

func (s *ContactService) Get(ctx context.Context, userID, id int64) (*domain.Contact, error) {
	contact, err := s.contacts.Get(ctx, userID, id)
	return contact, mapContactError(err)
}

func (s *ContactService) Create(ctx context.Context, userID int64, contact domain.Contact) (*domain.Contact, error) {
	contact.ID = 0
	contact.UserID = userID
	if err := s.contacts.Create(ctx, &contact); err != nil {
		return nil, mapContactError(err)
	}
	s.logger.Info("contact created", zap.Int64("user_id", userID), zap.Int64("contact_id", contact.ID))
	return &contact, nil
}

// Update applies a partial update. Fields left nil keep their value.
func (s *ContactService) Update(ctx context.Context, userID, id int64, patch domain.ContactPatch) (*domain.Contact, error) {
	contact, err := s.contacts.Get(ctx, userID, id)
	if err != nil {
		return nil, mapContactError(err)
	}
	patch.Apply(contact)
	if err := s.contacts.Update(ctx, contact); err != nil {
		return nil, mapContactError(err)
	}
	return contact, nil
}

func (s *ContactService) Delete(ctx context.Context, userID, id int64) (*domain.Contact, error) {
	contact, err := s.contacts.Delete(ctx, userID, id)
	if err != nil {
		return nil, mapContactError(err)
	}
	s.logger.Info("contact deleted", zap.Int64("user_id", userID), zap.Int64("contact_id", id))
	return contact, nil
}

func (s *ContactService) Search(ctx context.Context, userID int64, filter domain.ContactSearch) ([]domain.Contact, error) {
	return s.contacts.Search(ctx, userID, filter)
}

// UpcomingBirthdays lists contacts with a birthday in the next week.
func (s *ContactService) UpcomingBirthdays(ctx context.Context, userID int64) ([]domain.Contact, error) {
	today := s.now()
	contacts, err := s.contacts.Birthdays(ctx, userID, today)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("upcoming birthdays", zap.Int64("user_id", userID), zap.Int("count", len(contacts)))
	return contacts, nil
}

func mapContactError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, pgx.ErrNoRows):
		return ErrContactNotFound
	case errors.Is(err, repository.ErrDuplicate):
		return ErrContactEmailTaken
	default:
		return err
	}
}
