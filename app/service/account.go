package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/vibast-solutions/ms-go-mood-journal/app/dto"
	"github.com/vibast-solutions/ms-go-mood-journal/app/entity"
	"github.com/vibast-solutions/ms-go-mood-journal/app/metrics"
	"github.com/vibast-solutions/ms-go-mood-journal/app/notification"
	"github.com/vibast-solutions/ms-go-mood-journal/app/repository"
	"github.com/vibast-solutions/ms-go-mood-journal/app/token"
	"github.com/vibast-solutions/ms-go-mood-journal/app/types"
	"github.com/vibast-solutions/ms-go-mood-journal/config"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	MinUsernameLength = 3
	DefaultRedirect   = "/dashboard"

	ForgotPasswordMessage     = "If an account exists for that email, a password reset link has been sent."
	ResendVerificationMessage = "If an unverified account exists for that email, a new verification link has been sent."
)

type VerifyOutcome string

const (
	VerifyOutcomeVerified        VerifyOutcome = "verified"
	VerifyOutcomeAlreadyVerified VerifyOutcome = "already_verified"
)

var Themes = []string{"light", "dark", "system"}

// Notifier accepts a message for asynchronous delivery.
type Notifier interface {
	Dispatch(subject, recipient, html string) bool
}

type tokenCodec interface {
	Issue(purpose, subject string) (string, error)
	Verify(tokenString, purpose string, maxAge time.Duration) (string, error)
}

type sessionManager interface {
	Establish(ctx context.Context, userID string) (string, time.Time, error)
	Destroy(ctx context.Context, tokenString string) error
}

type AccountServiceOption func(*AccountService)

type AccountService struct {
	users    repository.UserStore
	hasher   PasswordHasher
	tokens   tokenCodec
	notifier Notifier
	sessions sessionManager
	emails   *EmailCanonicalizer
	cfg      *config.Config
	now      func() time.Time

	// checked for unknown usernames
	dummyHash string
}

func NewAccountService(
	users repository.UserStore,
	hasher PasswordHasher,
	tokens tokenCodec,
	notifier Notifier,
	sessions sessionManager,
	cfg *config.Config,
	opts ...AccountServiceOption,
) *AccountService {
	s := &AccountService{
		users:    users,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		sessions: sessions,
		emails:   NewEmailCanonicalizer(cfg.App.DotlessEmailDomains),
		cfg:      cfg,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if hash, err := hasher.Hash(uuid.NewString()); err == nil {
		s.dummyHash = hash
	}
	return s
}

func WithClock(now func() time.Time) AccountServiceOption {
	return func(s *AccountService) {
		if now != nil {
			s.now = now
		}
	}
}

func (s *AccountService) Register(ctx context.Context, req *types.RegisterRequest) (*dto.RegisterResult, error) {
	username := strings.TrimSpace(req.Username)
	email := strings.TrimSpace(req.Email)

	if username == "" || email == "" || req.Password == "" || req.ConfirmPassword == "" {
		return nil, fmt.Errorf("%w: all fields are required", ErrValidation)
	}
	if len([]rune(username)) < MinUsernameLength {
		return nil, fmt.Errorf("%w: username must be at least %d characters long", ErrValidation, MinUsernameLength)
	}
	if !strings.Contains(email, "@") {
		return nil, fmt.Errorf("%w: email must be a valid email address", ErrValidation)
	}
	if err := s.cfg.Password.Policy.Validate(req.Password); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if req.Password != req.ConfirmPassword {
		return nil, fmt.Errorf("%w: passwords do not match", ErrValidation)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user := &entity.User{
		ID:             uuid.NewString(),
		Username:       username,
		Email:          email,
		CanonicalEmail: s.emails.Canonical(email),
		PasswordHash:   hash,
		Verified:       false,
		CreatedAt:      s.now(),
	}

	if err = s.users.Create(ctx, user); err != nil {
		metrics.RegistrationsTotal.WithLabelValues(metrics.StatusFailure).Inc()
		return nil, translateDuplicate(err)
	}
	metrics.RegistrationsTotal.WithLabelValues(metrics.StatusSuccess).Inc()

	queued := s.sendVerification(user)
	return &dto.RegisterResult{User: user, EmailQueued: queued}, nil
}

func (s *AccountService) VerifyEmail(ctx context.Context, tokenString string) (VerifyOutcome, error) {
	subject, err := s.tokens.Verify(tokenString, token.PurposeEmailVerification, s.cfg.Tokens.VerifyMaxAge)
	if err != nil {
		metrics.VerificationsTotal.WithLabelValues("rejected").Inc()
		return "", translateTokenError(err)
	}

	user, err := s.users.FindByCanonicalEmail(ctx, s.emails.Canonical(subject))
	if err != nil {
		return "", err
	}
	if user == nil {
		metrics.VerificationsTotal.WithLabelValues("rejected").Inc()
		return "", ErrInvalidToken
	}

	outcome, err := s.markVerified(ctx, user)
	if err != nil {
		return "", err
	}
	metrics.VerificationsTotal.WithLabelValues(string(outcome)).Inc()
	return outcome, nil
}

// VerifyUsername marks an account verified without a token. Used by operators.
func (s *AccountService) VerifyUsername(ctx context.Context, username string) (VerifyOutcome, error) {
	user, err := s.users.FindByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", ErrUserNotFound
	}
	return s.markVerified(ctx, user)
}

func (s *AccountService) Login(ctx context.Context, req *types.LoginRequest) (*dto.LoginResult, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, fmt.Errorf("%w: username and password are required", ErrValidation)
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		s.hasher.Verify(s.dummyHash, req.Password)
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusFailure).Inc()
		return nil, ErrInvalidCredentials
	}
	if !s.hasher.Verify(user.PasswordHash, req.Password) {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusFailure).Inc()
		return nil, ErrInvalidCredentials
	}
	if !user.Verified {
		metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusFailure).Inc()
		return nil, ErrAccountNotVerified
	}

	sessionToken, expiresAt, err := s.sessions.Establish(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	metrics.LoginAttemptsTotal.WithLabelValues(metrics.StatusSuccess).Inc()

	return &dto.LoginResult{
		User:         user,
		SessionToken: sessionToken,
		ExpiresAt:    expiresAt,
		Redirect:     SafeRedirect(req.Next),
	}, nil
}

func (s *AccountService) Logout(ctx context.Context, sessionToken string) error {
	return s.sessions.Destroy(ctx, sessionToken)
}

// ForgotPassword answers with the same message whether or not the address is known.
func (s *AccountService) ForgotPassword(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.users.FindByCanonicalEmail(ctx, s.emails.Canonical(email))
	if err != nil {
		return "", err
	}
	if user != nil {
		s.sendPasswordReset(user)
	}
	return ForgotPasswordMessage, nil
}

// ResetPassword checks the token before the new password so a stale link is
// reported as such even when the form is also wrong. Tokens stay usable until
// they expire.
func (s *AccountService) ResetPassword(ctx context.Context, req *types.ResetPasswordRequest) error {
	subject, err := s.tokens.Verify(req.Token, token.PurposePasswordReset, s.cfg.Tokens.ResetMaxAge)
	if err != nil {
		metrics.PasswordResetsTotal.WithLabelValues(metrics.StatusFailure).Inc()
		return translateTokenError(err)
	}

	user, err := s.users.FindByCanonicalEmail(ctx, s.emails.Canonical(subject))
	if err != nil {
		return err
	}
	if user == nil {
		metrics.PasswordResetsTotal.WithLabelValues(metrics.StatusFailure).Inc()
		return ErrInvalidToken
	}

	if err = s.validateNewPassword(req.Password, req.ConfirmPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return err
	}

	now := s.now()
	if err = s.users.UpdateFields(ctx, user.ID, entity.UserUpdate{
		PasswordHash:    &hash,
		PasswordResetAt: &now,
		UpdatedAt:       now,
	}); err != nil {
		return err
	}

	metrics.PasswordResetsTotal.WithLabelValues(metrics.StatusSuccess).Inc()
	return nil
}

// ResendVerification always reports success; mail goes out only for a known,
// still unverified account.
func (s *AccountService) ResendVerification(ctx context.Context, email string) (string, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return "", fmt.Errorf("%w: email is required", ErrValidation)
	}

	user, err := s.users.FindByCanonicalEmail(ctx, s.emails.Canonical(email))
	if err != nil {
		return "", err
	}
	if user != nil && !user.Verified {
		s.sendVerification(user)
	}
	return ResendVerificationMessage, nil
}

func (s *AccountService) ChangePassword(ctx context.Context, userID string, req *types.ChangePasswordRequest) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return err
	}
	if user == nil {
		return ErrInvalidSession
	}

	if !s.hasher.Verify(user.PasswordHash, req.CurrentPassword) {
		return ErrPasswordMismatch
	}
	if err = s.validateNewPassword(req.NewPassword, req.ConfirmPassword); err != nil {
		return err
	}

	hash, err := s.hasher.Hash(req.NewPassword)
	if err != nil {
		return err
	}

	return s.users.UpdateFields(ctx, user.ID, entity.UserUpdate{
		PasswordHash: &hash,
		UpdatedAt:    s.now(),
	})
}

func (s *AccountService) Profile(ctx context.Context, userID string) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

func (s *AccountService) UpdateProfile(ctx context.Context, userID string, req *types.UpdateProfileRequest) (*entity.User, error) {
	update := entity.UserUpdate{UpdatedAt: s.now()}

	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if len([]rune(username)) < MinUsernameLength {
			return nil, fmt.Errorf("%w: username must be at least %d characters long", ErrValidation, MinUsernameLength)
		}
		update.Username = &username
	}
	if req.Theme != nil {
		theme := strings.ToLower(strings.TrimSpace(*req.Theme))
		if !isTheme(theme) {
			return nil, fmt.Errorf("%w: theme must be one of: %s", ErrValidation, strings.Join(Themes, ", "))
		}
		update.Theme = &theme
	}

	if err := s.users.UpdateFields(ctx, userID, update); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, translateDuplicate(err)
	}

	return s.Profile(ctx, userID)
}

// SafeRedirect returns next when it is a local absolute path, otherwise the
// dashboard. Scheme-relative and backslash forms are rejected, and so is any
// ASCII control character.
func SafeRedirect(next string) string {
	if next == "" || !strings.HasPrefix(next, "/") {
		return DefaultRedirect
	}
	if strings.IndexFunc(next, isControl) != -1 {
		return DefaultRedirect
	}
	if strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return DefaultRedirect
	}
	return next
}

func isControl(r rune) bool {
	return r < 0x20 || r == 0x7f
}

func (s *AccountService) markVerified(ctx context.Context, user *entity.User) (VerifyOutcome, error) {
	if user.Verified {
		return VerifyOutcomeAlreadyVerified, nil
	}

	changed, err := s.users.MarkVerified(ctx, user.ID, s.now())
	if err != nil {
		return "", err
	}
	if !changed {
		return VerifyOutcomeAlreadyVerified, nil
	}
	return VerifyOutcomeVerified, nil
}

func (s *AccountService) validateNewPassword(password, confirm string) error {
	if password == "" || confirm == "" {
		return fmt.Errorf("%w: password and confirmation are required", ErrValidation)
	}
	if err := s.cfg.Password.Policy.Validate(password); err != nil {
		return fmt.Errorf("%w: %s", ErrValidation, err.Error())
	}
	if password != confirm {
		return fmt.Errorf("%w: passwords do not match", ErrValidation)
	}
	return nil
}

func (s *AccountService) sendVerification(user *entity.User) bool {
	tok, err := s.tokens.Issue(token.PurposeEmailVerification, user.Email)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to issue verification token")
		return false
	}

	html, err := notification.RenderVerification(notification.LinkEmail{
		Username: user.Username,
		Link:     s.cfg.App.BaseURL + "/auth/verify/" + tok,
		ValidFor: humanDuration(s.cfg.Tokens.VerifyMaxAge),
	})
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to render verification email")
		return false
	}

	return s.notifier.Dispatch(notification.VerificationSubject, user.Email, html)
}

func (s *AccountService) sendPasswordReset(user *entity.User) bool {
	tok, err := s.tokens.Issue(token.PurposePasswordReset, user.Email)
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to issue password reset token")
		return false
	}

	html, err := notification.RenderPasswordReset(notification.LinkEmail{
		Username: user.Username,
		Link:     s.cfg.App.BaseURL + "/auth/reset-password/" + tok,
		ValidFor: humanDuration(s.cfg.Tokens.ResetMaxAge),
	})
	if err != nil {
		logrus.WithError(err).WithField("user_id", user.ID).Error("Failed to render password reset email")
		return false
	}

	return s.notifier.Dispatch(notification.PasswordResetSubject, user.Email, html)
}

func translateDuplicate(err error) error {
	field, ok := repository.IsDuplicate(err)
	if !ok {
		return err
	}
	switch field {
	case repository.FieldUsername:
		return ErrUsernameTaken
	case repository.FieldEmail:
		return ErrEmailTaken
	default:
		return fmt.Errorf("%w: %s", ErrConflict, err.Error())
	}
}

func translateTokenError(err error) error {
	if errors.Is(err, token.ErrExpired) {
		return ErrTokenExpired
	}
	return ErrInvalidToken
}

func isTheme(theme string) bool {
	for _, t := range Themes {
		if t == theme {
			return true
		}
	}
	return false
}

func humanDuration(d time.Duration) string {
	switch {
	case d%(24*time.Hour) == 0 && d >= 24*time.Hour:
		return pluralize(int(d/(24*time.Hour)), "day")
	case d%time.Hour == 0 && d >= time.Hour:
		return pluralize(int(d/time.Hour), "hour")
	default:
		return pluralize(int(d/time.Minute), "minute")
	}
}

func pluralize(n int, unit string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", unit)
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
