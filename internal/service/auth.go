package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"blog_admin/internal/config"
	"blog_admin/internal/domain"
	"blog_admin/internal/remote"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

type RegisterInput struct {
	FirstName string
	LastName  string
	Email     string
	Password  string
	Confirm   string
}

type AuthService struct {
	users     UserStore
	members   MemberStore
	sessions  SessionStore
	publisher Publisher
	logger    *slog.Logger
	config    config.AuthConfig
	now       func() time.Time
}

func NewAuthService(
	users UserStore,
	members MemberStore,
	sessions SessionStore,
	publisher Publisher,
	logger *slog.Logger,
	cfg config.AuthConfig,
) *AuthService {
	return &AuthService{
		users:     users,
		members:   members,
		sessions:  sessions,
		publisher: publisher,
		logger:    logger.With("service", "auth"),
		config:    cfg,
		now:       time.Now,
	}
}

// Register validates the form, creates the user account and its member
// profile. Field problems are reported together as a *domain.ValidationError.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)

	verr := s.validateRegistration(in)

	if !verr.Has("email") {
		taken, err := s.emailTaken(ctx, in.Email)
		if err != nil {
			return nil, fmt.Errorf("check email: %w", err)
		}
		if taken {
			verr.Add("email", "email is already registered")
		}
	}
	if err := verr.Err(); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := s.now().UTC()
	user, err := s.users.Create(ctx, domain.User{
		ID:        domain.ID(uuid.NewString()),
		FirstName: in.FirstName,
		LastName:  in.LastName,
		FullName:  strings.TrimSpace(in.FirstName + " " + in.LastName),
		Email:     in.Email,
		Password:  string(hash),
		CreatedAt: &now,
	})
	if err != nil {
		return nil, fmt.Errorf("create user: %w", err)
	}

	member, err := s.members.Create(ctx, domain.Member{
		Name:   user.FullName,
		Handle: domain.HandleFromEmail(user.Email),
		Email:  user.Email,
		Status: domain.MemberActive,
	})
	if err != nil {
		// The account exists; a missing member row only hides it from the admin list.
		s.logger.Warn("create member profile", "email", user.Email, "error", err)
	} else {
		s.announce(ctx, "members", member.ID, member)
	}

	s.logger.Info("user registered", "user_id", user.ID)

	user.Password = ""
	return &user, nil
}

func (s *AuthService) validateRegistration(in RegisterInput) *domain.ValidationError {
	verr := domain.NewValidationError()

	if in.FirstName == "" || in.LastName == "" {
		verr.Add("firstName", "first and last name are required")
		verr.Add("lastName", "first and last name are required")
	}

	switch {
	case in.Email == "":
		verr.Add("email", "email is required")
	case !emailPattern.MatchString(in.Email):
		verr.Add("email", "email is not valid")
	}

	switch {
	case in.Password == "":
		verr.Add("password", "password is required")
	case len(in.Password) < s.config.MinPasswordSize:
		verr.Add("password", fmt.Sprintf("password must be at least %d characters", s.config.MinPasswordSize))
	}

	switch {
	case in.Confirm == "":
		verr.Add("confirm", "password confirmation is required")
	case in.Confirm != in.Password:
		verr.Add("confirm", "passwords do not match")
	}

	return verr
}

func (s *AuthService) emailTaken(ctx context.Context, email string) (bool, error) {
	users, err := s.users.List(ctx, remote.Eq("email", email))
	if err != nil {
		return false, err
	}
	return len(users) > 0, nil
}

// Login checks the credentials and stores the resulting session.
func (s *AuthService) Login(ctx context.Context, email, password string) (*domain.Session, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		verr := domain.NewValidationError()
		if email == "" {
			verr.Add("email", "email is required")
		}
		if password == "" {
			verr.Add("password", "password is required")
		}
		return nil, verr
	}

	users, err := s.users.List(ctx, remote.Eq("email", email))
	if err != nil {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	for _, u := range users {
		if !strings.EqualFold(u.Email, email) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(password)) != nil {
			continue
		}

		session := u.Session()
		if err := s.sessions.Set(session); err != nil {
			return nil, fmt.Errorf("store session: %w", err)
		}
		s.logger.Info("user logged in", "user_id", u.ID, "admin", session.IsAdmin(s.config.AdminEmail))
		return session, nil
	}

	return nil, ErrInvalidCredentials
}

func (s *AuthService) Logout() error {
	if err := s.sessions.Clear(); err != nil {
		return fmt.Errorf("clear session: %w", err)
	}
	return nil
}

// Current returns the stored session, or domain.ErrNoSession.
func (s *AuthService) Current() (*domain.Session, error) {
	session := s.sessions.Current()
	if session == nil {
		return nil, domain.ErrNoSession
	}
	return session, nil
}

// IsAdmin reports whether the current session may use the admin views.
func (s *AuthService) IsAdmin() bool {
	return s.sessions.Current().IsAdmin(s.config.AdminEmail)
}

func (s *AuthService) announce(ctx context.Context, collection string, id domain.ID, rec any) {
	if s.publisher == nil {
		return
	}
	change, err := domain.NewChange(collection, domain.ActionCreate, id, rec)
	if err != nil {
		return
	}
	if err := s.publisher.Publish(ctx, change); err != nil {
		s.logger.Error("publish change", "collection", collection, "error", err)
	}
}
