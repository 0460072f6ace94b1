package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Harshith014/resumeUploader/internal/mq"
	"github.com/Harshith014/resumeUploader/internal/store"
	"github.com/Harshith014/resumeUploader/types"
	"github.com/rs/zerolog/log"
)

// UserRepository defines persistence operations for users.
type UserRepository interface {
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	Update(ctx context.Context, id int, update types.UserUpdate) (types.User, error)
}

// PasswordHasher hashes and checks passwords.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash, password string) bool
	CompareDummy(password string)
}

// EventPublisher receives user change events. It may be nil.
type EventPublisher interface {
	Publish(ctx context.Context, event mq.Event) error
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// ProfileInput holds the profile fields a user asked to change. Empty
// strings mean "leave unchanged". Image is an already stored asset reference.
type ProfileInput struct {
	Name     string
	Email    string
	Password string
	Image    string
}

// DefaultPublishTimeout bounds how long a request waits on the broker.
const DefaultPublishTimeout = 3 * time.Second

// UserService encapsulates user use-cases.
type UserService struct {
	repo           UserRepository
	hasher         PasswordHasher
	events         EventPublisher
	publishTimeout time.Duration
}

func NewUserService(repo UserRepository, hasher PasswordHasher, events EventPublisher) *UserService {
	return &UserService{repo: repo, hasher: hasher, events: events, publishTimeout: DefaultPublishTimeout}
}

// Register validates the input and creates the account. The store decides
// duplicates atomically.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (types.User, error) {
	if err := validateRegister(in); err != nil {
		return types.User{}, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return types.User{}, err
	}

	user, err := s.repo.Create(ctx, types.User{
		Name:         strings.TrimSpace(in.Name),
		Email:        NormalizeEmail(in.Email),
		PasswordHash: hash,
		Image:        types.DefaultImage,
	})
	if err != nil {
		return types.User{}, translate(err)
	}

	s.publish(ctx, mq.Event{Type: mq.EventUserRegistered, UserID: user.ID})
	return user, nil
}

// Authenticate returns the user owning the credentials. Unknown emails and
// wrong passwords both cost one bcrypt comparison and yield
// ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (types.User, error) {
	if err := validateLogin(email, password); err != nil {
		return types.User{}, err
	}

	user, err := s.repo.GetByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			s.hasher.CompareDummy(password)
			log.Warn().Str("email", NormalizeEmail(email)).Msg("login failed")
			return types.User{}, ErrInvalidCredentials
		}
		return types.User{}, fmt.Errorf("authenticate: %w", err)
	}

	if !s.hasher.Compare(user.PasswordHash, password) {
		log.Warn().Int("user_id", user.ID).Msg("login failed")
		return types.User{}, ErrInvalidCredentials
	}
	return user, nil
}

func (s *UserService) GetProfile(ctx context.Context, id int) (types.User, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return types.User{}, translate(err)
	}
	return user, nil
}

// UpdateProfile applies the supplied fields in one store update.
func (s *UserService) UpdateProfile(ctx context.Context, id int, in ProfileInput) (types.User, error) {
	if err := ValidateProfile(in); err != nil {
		return types.User{}, err
	}

	var update types.UserUpdate
	if name := strings.TrimSpace(in.Name); name != "" {
		update.Name = &name
	}
	if email := NormalizeEmail(in.Email); email != "" {
		update.Email = &email
	}
	if in.Password != "" {
		hash, err := s.hasher.Hash(in.Password)
		if err != nil {
			return types.User{}, err
		}
		update.PasswordHash = &hash
	}
	if image := strings.TrimSpace(in.Image); image != "" {
		update.Image = &image
	}

	if update.Empty() {
		return s.GetProfile(ctx, id)
	}

	user, err := s.repo.Update(ctx, id, update)
	if err != nil {
		return types.User{}, translate(err)
	}

	s.publish(ctx, mq.Event{Type: mq.EventUserUpdated, UserID: user.ID, Asset: in.Image})
	return user, nil
}

// UpdateResume records a stored resume reference on the user.
func (s *UserService) UpdateResume(ctx context.Context, id int, ref string) (types.User, error) {
	if strings.TrimSpace(ref) == "" {
		return types.User{}, errors.New("resume reference is required")
	}

	user, err := s.repo.Update(ctx, id, types.UserUpdate{Resume: &ref})
	if err != nil {
		return types.User{}, translate(err)
	}

	s.publish(ctx, mq.Event{Type: mq.EventUserResumeUploaded, UserID: user.ID, Asset: ref})
	return user, nil
}

func (s *UserService) publish(ctx context.Context, event mq.Event) {
	if s.events == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.publishTimeout)
	defer cancel()
	if err := s.events.Publish(ctx, event); err != nil {
		log.Error().Err(err).Str("event", event.Type).Int("user_id", event.UserID).Msg("publish user event")
	}
}

func translate(err error) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, store.ErrDuplicateEmail):
		return ErrDuplicateEmail
	default:
		return err
	}
}
