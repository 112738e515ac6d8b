package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/isdelr/ewaste-ai-be/internal/database"
	"github.com/isdelr/ewaste-ai-be/internal/metrics"
	"github.com/isdelr/ewaste-ai-be/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// UserServiceProvider defines the interface for user services.
type UserServiceProvider interface {
	Register(name, email, password string, accountType models.AccountType) (models.User, error)
	AuthenticateUser(email, password string) (models.User, error)
	GetUserByID(id int64) (models.User, error)
	UpdateProfile(id int64, update models.ProfileUpdate) (models.User, error)
	EnsureAdmin(name, email, password string) (models.User, error)
}

// UserService provides business logic for user management.
type UserService struct {
	repo      database.UserRepository
	validate  *validator.Validate
	cost      int
	dummyHash []byte
	metrics   metrics.Recorder
	now       func() time.Time
}

// NewUserService creates a new UserService hashing passwords at the given bcrypt cost.
func NewUserService(repo database.UserRepository, cost int, rec metrics.Recorder) *UserService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	if rec == nil {
		rec = metrics.Noop{}
	}
	// Compared against when the email is unknown so both failure paths cost one bcrypt run.
	dummy, err := bcrypt.GenerateFromPassword([]byte("not-a-real-password"), cost)
	if err != nil {
		log.Error().Err(err).Msg("Failed to prepare dummy password hash")
	}
	return &UserService{
		repo:      repo,
		validate:  validator.New(),
		cost:      cost,
		dummyHash: dummy,
		metrics:   rec,
		now:       time.Now,
	}
}

// Register creates a new account. Admin accounts cannot be self-registered.
func (s *UserService) Register(name, email, password string, accountType models.AccountType) (models.User, error) {
	if accountType == "" {
		accountType = models.AccountIndividual
	}
	name, email, err := s.validateIdentity(name, email)
	if err != nil {
		return models.User{}, err
	}
	if password == "" {
		return models.User{}, invalid("Name, email, and password are required")
	}
	if err := validateSelfServiceType(accountType); err != nil {
		return models.User{}, err
	}

	user, err := s.createUser(name, email, password, accountType)
	if err != nil {
		return models.User{}, err
	}
	s.metrics.IncRegistration()
	log.Info().Int64("user_id", user.ID).Str("type", string(user.Type)).Msg("User registered")
	return user, nil
}

// EnsureAdmin seeds the admin account unless the email is already registered.
func (s *UserService) EnsureAdmin(name, email, password string) (models.User, error) {
	existing, err := s.repo.GetUserByEmail(email)
	if err == nil {
		return sanitize(existing), nil
	}
	if !errors.Is(err, database.ErrNotFound) {
		return models.User{}, err
	}
	name, email, err = s.validateIdentity(name, email)
	if err != nil {
		return models.User{}, err
	}
	if password == "" {
		return models.User{}, invalid("admin password must not be empty")
	}
	return s.createUser(name, email, password, models.AccountAdmin)
}

// AuthenticateUser verifies a user's credentials. Unknown emails and wrong
// passwords both yield ErrInvalidCredentials.
func (s *UserService) AuthenticateUser(email, password string) (models.User, error) {
	user, err := s.repo.GetUserByEmail(strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return models.User{}, fmt.Errorf("looking up user: %w", err)
		}
		bcrypt.CompareHashAndPassword(s.dummyHash, []byte(password))
		s.metrics.IncLoginFailure()
		return models.User{}, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		s.metrics.IncLoginFailure()
		return models.User{}, ErrInvalidCredentials
	}
	return sanitize(user), nil
}

// GetUserByID retrieves a single user by their ID.
func (s *UserService) GetUserByID(id int64) (models.User, error) {
	user, err := s.repo.GetUserByID(id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return models.User{}, ErrUserNotFound
		}
		return models.User{}, err
	}
	return sanitize(user), nil
}

// UpdateProfile changes name, email or account type. Passwords cannot be changed here.
func (s *UserService) UpdateProfile(id int64, update models.ProfileUpdate) (models.User, error) {
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name == "" {
			return models.User{}, invalid("Name must not be empty")
		}
		update.Name = &name
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if err := s.validate.Var(email, "required,email"); err != nil {
			return models.User{}, invalid("A valid email address is required")
		}
		update.Email = &email
	}
	if update.Type != nil {
		if err := validateSelfServiceType(*update.Type); err != nil {
			return models.User{}, err
		}
	}

	user, err := s.repo.UpdateUserProfile(id, update)
	switch {
	case errors.Is(err, database.ErrNotFound):
		return models.User{}, ErrUserNotFound
	case errors.Is(err, database.ErrEmailTaken):
		return models.User{}, ErrDuplicateEmail
	case err != nil:
		return models.User{}, err
	}
	return sanitize(user), nil
}

func (s *UserService) createUser(name, email, password string, accountType models.AccountType) (models.User, error) {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		if errors.Is(err, bcrypt.ErrPasswordTooLong) {
			return models.User{}, invalid("Password must be at most 72 bytes")
		}
		return models.User{}, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.repo.CreateUser(models.User{
		Name:         name,
		Email:        email,
		PasswordHash: string(hashedPassword),
		Type:         accountType,
		CreatedAt:    s.now().UTC(),
	})
	if err != nil {
		if errors.Is(err, database.ErrEmailTaken) {
			return models.User{}, ErrDuplicateEmail
		}
		return models.User{}, err
	}
	return sanitize(user), nil
}

func (s *UserService) validateIdentity(name, email string) (string, string, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if name == "" || email == "" {
		return "", "", invalid("Name, email, and password are required")
	}
	if err := s.validate.Var(email, "email"); err != nil {
		return "", "", invalid("A valid email address is required")
	}
	return name, email, nil
}

func validateSelfServiceType(t models.AccountType) error {
	if !t.IsValid() || t == models.AccountAdmin {
		return invalid("userType must be one of individual, recycler, collector, business")
	}
	return nil
}

// sanitize drops the password hash before a user leaves the service.
func sanitize(u models.User) models.User {
	u.PasswordHash = ""
	return u
}
