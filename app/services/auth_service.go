package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/shashiranjanraj/laundry/app/models"
	"github.com/shashiranjanraj/laundry/app/repositories"
	"github.com/shashiranjanraj/laundry/config"
	"github.com/shashiranjanraj/laundry/pkg/auth"
	"github.com/shashiranjanraj/laundry/pkg/cache"
	"github.com/shashiranjanraj/laundry/pkg/logger"
	"github.com/shashiranjanraj/laundry/pkg/mail"
)

// ResetTokenTTL is how long a password reset link stays valid.
const ResetTokenTTL = 15 * time.Minute

const resetMail = `<p>Hello {{.Name}},</p>
<p>We received a request to reset your password. The link below is valid for 15 minutes.</p>
<p><a href="{{.Link}}">{{.Link}}</a></p>
<p>If you did not ask for this, ignore this email.</p>`

func resetKey(token string) string { return "auth:reset:" + token }

type SignupInput struct {
	Username    string `json:"username" validate:"required,alpha_dash,min=3,max=32"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required,min=6"`
	Fullname    string `json:"fullname" validate:"required,max=100"`
	PhoneNumber string `json:"phoneNumber" validate:"nullable,max=20"`
}

type GoogleInput struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
	Photo string `json:"photo" validate:"nullable,url"`
}

// Session is a signed-in user and its token.
type Session struct {
	Token string      `json:"token"`
	User  models.User `json:"user"`
}

type AuthService struct {
	users repositories.UserRepository
	mail  mail.Sender
}

func NewAuthService(users repositories.UserRepository, sender mail.Sender) *AuthService {
	return &AuthService{users: users, mail: sender}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, ErrAccountExists
	} else if !errors.Is(err, repositories.ErrNotFound) {
		return models.User{}, err
	}
	taken, err := s.users.UsernameTaken(ctx, in.Username)
	if err != nil {
		return models.User{}, err
	}
	if taken {
		return models.User{}, ErrAccountExists
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return models.User{}, err
	}
	u := models.User{
		Username:    in.Username,
		Email:       email,
		Fullname:    in.Fullname,
		PhoneNumber: in.PhoneNumber,
		Password:    hash,
		Role:        models.RoleUser,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return models.User{}, ErrAccountExists
		}
		return models.User{}, err
	}
	return u, nil
}

func (s *AuthService) Signin(ctx context.Context, email, password string) (Session, error) {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repositories.ErrNotFound) {
		return Session{}, ErrInvalidCredentials
	}
	if err != nil {
		return Session{}, err
	}
	if !auth.CheckPassword(u.Password, password) {
		return Session{}, ErrInvalidCredentials
	}
	return s.session(u)
}

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// Google signs in the account matching in.Email, creating it on first use
// with a random password.
func (s *AuthService) Google(ctx context.Context, in GoogleInput) (Session, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	u, err := s.users.FindByEmail(ctx, email)
	if err == nil {
		return s.session(u)
	}
	if !errors.Is(err, repositories.ErrNotFound) {
		return Session{}, err
	}

	hash, err := auth.HashPassword(auth.RandomToken(8))
	if err != nil {
		return Session{}, err
	}
	base := nonAlnum.ReplaceAllString(strings.ToLower(in.Name), "")
	if base == "" {
		base = "user"
	}
	u = models.User{
		Username: base + auth.RandomToken(2),
		Email:    email,
		Fullname: in.Name,
		Password: hash,
		Role:     models.RoleUser,
		Avatar:   in.Photo,
	}
	if err := s.users.Create(ctx, &u); err != nil {
		if errors.Is(err, repositories.ErrDuplicate) {
			return Session{}, ErrAccountExists
		}
		return Session{}, err
	}
	return s.session(u)
}

func (s *AuthService) session(u models.User) (Session, error) {
	token, err := auth.GenerateToken(u.ID.Hex(), u.Role)
	if err != nil {
		return Session{}, fmt.Errorf("auth: sign token: %w", err)
	}
	return Session{Token: token, User: u}, nil
}

// Signout revokes claims until they would have expired. Nil claims are a no-op.
func (s *AuthService) Signout(ctx context.Context, claims *auth.Claims) error {
	if claims == nil {
		return nil
	}
	return auth.Revoke(ctx, claims)
}

// Forget mails a reset link. Unknown addresses succeed silently so the
// endpoint cannot be used to probe for accounts.
func (s *AuthService) Forget(ctx context.Context, email string) error {
	u, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, repositories.ErrNotFound) {
		logger.WithCtx(ctx).Info("auth: reset requested for unknown email")
		return nil
	}
	if err != nil {
		return err
	}

	token := auth.RandomToken(32)
	if err := cache.Set(ctx, resetKey(token), u.ID.Hex(), ResetTokenTTL); err != nil {
		return fmt.Errorf("auth: store reset token: %w", err)
	}

	msg, err := mail.New(u.Email).WithSubject("Reset your password").Template(resetMail, map[string]string{
		"Name": u.Fullname,
		"Link": strings.TrimRight(config.AppURL(), "/") + "/reset-password/" + token,
	})
	if err != nil {
		return err
	}
	if err := s.mail.Send(ctx, msg); err != nil {
		return fmt.Errorf("auth: send reset mail: %w", err)
	}
	return nil
}

// ResetPassword consumes token and sets a new password.
func (s *AuthService) ResetPassword(ctx context.Context, token, password string) error {
	var userID string
	if token == "" || !cache.Get(ctx, resetKey(token), &userID) {
		return ErrInvalidResetToken
	}
	id, err := repositories.ParseID(userID)
	if err != nil {
		return ErrInvalidResetToken
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return err
	}
	if err := s.users.UpdatePassword(ctx, id, hash); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return ErrInvalidResetToken
		}
		return err
	}
	return cache.Forget(ctx, resetKey(token))
}
