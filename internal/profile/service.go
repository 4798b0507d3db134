package profile

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"legado/internal/common"
	"legado/internal/dbmysql"
)

type ProfileStore interface {
	Create(ctx context.Context, profile *dbmysql.Profile) error
	ByID(ctx context.Context, id string) (*dbmysql.Profile, error)
	ByHandle(ctx context.Context, handle string) (*dbmysql.Profile, error)
	CheckHandleExists(ctx context.Context, handle string) (bool, error)
	Update(ctx context.Context, profile *dbmysql.Profile) error
	UpdatePlanByCustomer(ctx context.Context, customer string, plan common.PlanTier) error
}

type ContactStore interface {
	Create(ctx context.Context, contact *dbmysql.TrustedContact) error
	ByProfile(ctx context.Context, profileID string) ([]*dbmysql.TrustedContact, error)
	Delete(ctx context.Context, id, profileID string) error
}

type Service struct {
	profiles ProfileStore
	contacts ContactStore
	audit    common.AuditSink

	now func() time.Time
}

func NewService(profiles ProfileStore, contacts ContactStore, audit common.AuditSink) *Service {
	return &Service{
		profiles: profiles,
		contacts: contacts,
		audit:    audit,
		now:      time.Now,
	}
}

func (s *Service) Register(ctx context.Context, handle, email, password string, locale common.Locale) (*dbmysql.Profile, string, error) {
	if err := common.ValidateHandle(handle); err != nil {
		return nil, "", err
	}
	if err := common.ValidateEmail(email); err != nil {
		return nil, "", err
	}
	if err := common.ValidatePassword(password); err != nil {
		return nil, "", err
	}
	if locale == "" {
		locale = common.LocaleEnglish
	}
	if !locale.IsValid() {
		return nil, "", fmt.Errorf("%w: unsupported locale %q", common.ErrValidation, locale)
	}

	exists, err := s.profiles.CheckHandleExists(ctx, handle)
	if err != nil {
		return nil, "", err
	}
	if exists {
		return nil, "", fmt.Errorf("%w: handle already exists", common.ErrValidation)
	}

	hashed, err := common.HashPassword(password)
	if err != nil {
		return nil, "", err
	}

	profile := &dbmysql.Profile{
		ID:           uuid.NewString(),
		Handle:       handle,
		Email:        email,
		PasswordHash: hashed,
		Locale:       string(locale),
		Plan:         string(common.PlanFree),
	}
	if err := s.profiles.Create(ctx, profile); err != nil {
		return nil, "", err
	}

	token, err := common.GenerateToken(profile.ID, profile.Handle, profile.Admin)
	if err != nil {
		return nil, "", err
	}

	s.audit.Record(ctx, common.AuditRecord{
		ActorID: &profile.ID,
		Action:  "profile.registered",
		At:      s.now(),
	})

	return profile, token, nil
}

func (s *Service) Login(ctx context.Context, handle, password string) (*dbmysql.Profile, string, error) {
	if handle == "" || password == "" {
		return nil, "", fmt.Errorf("%w: handle and password required", common.ErrValidation)
	}

	profile, err := s.profiles.ByHandle(ctx, handle)
	if err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", common.ErrUnauthorized)
	}

	if err := common.CheckPassword(password, profile.PasswordHash); err != nil {
		return nil, "", fmt.Errorf("%w: invalid credentials", common.ErrUnauthorized)
	}

	token, err := common.GenerateToken(profile.ID, profile.Handle, profile.Admin)
	if err != nil {
		return nil, "", err
	}

	return profile, token, nil
}

func (s *Service) Get(ctx context.Context, profileID string) (*dbmysql.Profile, error) {
	return s.profiles.ByID(ctx, profileID)
}

// Update applies self-service edits: contact email and locale.
func (s *Service) Update(ctx context.Context, profileID, email string, locale common.Locale) (*dbmysql.Profile, error) {
	profile, err := s.profiles.ByID(ctx, profileID)
	if err != nil {
		return nil, err
	}

	if email != "" {
		if err := common.ValidateEmail(email); err != nil {
			return nil, err
		}
		profile.Email = email
	}
	if locale != "" {
		if !locale.IsValid() {
			return nil, fmt.Errorf("%w: unsupported locale %q", common.ErrValidation, locale)
		}
		profile.Locale = string(locale)
	}

	if err := s.profiles.Update(ctx, profile); err != nil {
		return nil, err
	}
	return profile, nil
}

// ApplyPlanChange handles the billing provider's webhook. The plan tier
// is the only thing this service trusts the webhook to change.
func (s *Service) ApplyPlanChange(ctx context.Context, customer string, plan common.PlanTier) error {
	if plan != common.PlanFree && plan != common.PlanPro {
		return fmt.Errorf("%w: unknown plan %q", common.ErrValidation, plan)
	}

	if err := s.profiles.UpdatePlanByCustomer(ctx, customer, plan); err != nil {
		return err
	}

	s.audit.Record(ctx, common.AuditRecord{
		Action:   "billing.plan_changed",
		Metadata: map[string]interface{}{"customer": customer, "plan": string(plan)},
		At:       s.now(),
	})
	return nil
}

func (s *Service) AddContact(ctx context.Context, profileID, name, email, relationship string) (*dbmysql.TrustedContact, error) {
	if name == "" {
		return nil, fmt.Errorf("%w: contact name is required", common.ErrValidation)
	}
	if err := common.ValidateEmail(email); err != nil {
		return nil, err
	}

	contact := &dbmysql.TrustedContact{
		ID:           uuid.NewString(),
		ProfileID:    profileID,
		Name:         name,
		Email:        email,
		Relationship: relationship,
	}
	if err := s.contacts.Create(ctx, contact); err != nil {
		return nil, err
	}

	s.audit.Record(ctx, common.AuditRecord{
		ActorID:  &profileID,
		Action:   "contact.added",
		Metadata: map[string]interface{}{"contact_id": contact.ID},
		At:       s.now(),
	})

	return contact, nil
}

func (s *Service) ListContacts(ctx context.Context, profileID string) ([]*dbmysql.TrustedContact, error) {
	return s.contacts.ByProfile(ctx, profileID)
}

func (s *Service) RemoveContact(ctx context.Context, profileID, contactID string) error {
	return s.contacts.Delete(ctx, contactID, profileID)
}
