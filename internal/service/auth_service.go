package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/storefront-api/internal/auth"
	"github.com/spec-kit/storefront-api/internal/config"
	"github.com/spec-kit/storefront-api/internal/domain"
	"github.com/spec-kit/storefront-api/internal/events"
	"github.com/spec-kit/storefront-api/internal/observability"
	"github.com/spec-kit/storefront-api/internal/repository"
	"github.com/spec-kit/storefront-api/internal/session"
	apperrors "github.com/spec-kit/storefront-api/pkg/util/errorutil"
)

const hardenedSigninMessage = "invalid email or password"

// SignupInput carries the signup form.
type SignupInput struct {
	Email    string
	Password string
	Name     string
}

// AuthService coordinates signup, signin, signout and password reset.
type AuthService struct {
	users      repository.UserRepository
	hasher     auth.PasswordHasher
	tokens     *auth.TokenManager
	resets     *auth.ResetTokenManager
	dispatcher events.Dispatcher
	logger     *zap.Logger
	metrics    *observability.Metrics
	now        auth.Clock

	sessionMaxAge  time.Duration
	hardenedSignin bool
	// dummyHash is compared on unknown-email signins in hardened mode so both
	// failure paths cost one hash verification.
	dummyHash string
}

// AuthDependencies encapsulates collaborators for the auth service.
// Hasher, Dispatcher, Logger, Metrics and Clock are optional.
type AuthDependencies struct {
	UserRepo   repository.UserRepository
	Hasher     auth.PasswordHasher
	Dispatcher events.Dispatcher
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Clock      auth.Clock
}

// NewAuthService builds the service. It fails when the signing secret is absent.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) (*AuthService, error) {
	if deps.UserRepo == nil {
		return nil, errors.New("auth service requires a user repository")
	}
	clock := deps.Clock
	if clock == nil {
		clock = time.Now
	}
	tokens, err := auth.NewTokenManager(cfg.SigningSecret, cfg.SessionMaxAge(), clock)
	if err != nil {
		return nil, err
	}

	hasher := deps.Hasher
	if hasher == nil {
		hasher = auth.NewBcryptHasher(cfg.HashCost)
	}
	dispatcher := deps.Dispatcher
	if dispatcher == nil {
		dispatcher = events.NewInMemoryDispatcher(deps.Logger)
	}
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	svc := &AuthService{
		users:          deps.UserRepo,
		hasher:         hasher,
		tokens:         tokens,
		resets:         auth.NewResetTokenManager(deps.UserRepo, hasher, cfg.ResetWindow(), clock),
		dispatcher:     dispatcher,
		logger:         logger,
		metrics:        deps.Metrics,
		now:            clock,
		sessionMaxAge:  tokens.TTL(),
		hardenedSignin: cfg.HardenedSignin,
	}
	if cfg.HardenedSignin {
		dummy, err := hasher.Hash(uuid.NewString())
		if err != nil {
			return nil, fmt.Errorf("prepare signin hash: %w", err)
		}
		svc.dummyHash = dummy
	}
	return svc, nil
}

// Signup creates an account with the USER permission and signs it in.
func (s *AuthService) Signup(ctx context.Context, out session.Transport, in SignupInput) (user *domain.User, err error) {
	defer func() { s.record("signup", err) }()

	email := domain.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, apperrors.NewValidationError("email and password required", nil)
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	user = &domain.User{
		Email:        email,
		Name:         in.Name,
		PasswordHash: hash,
		Permissions:  domain.DefaultPermissions(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, apperrors.NewDuplicateEmail(email)
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	if err := s.startSession(out, user.ID); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventUserSignedUp, user.ID, events.UserSignedUpPayload{Email: user.Email})
	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return user, nil
}

// Signin verifies credentials and sets a fresh session credential.
func (s *AuthService) Signin(ctx context.Context, out session.Transport, email, password string) (user *domain.User, err error) {
	defer func() { s.record("signin", err) }()

	email = domain.NormalizeEmail(email)
	user, err = s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			if s.hardenedSignin {
				s.hasher.Verify(password, s.dummyHash)
			}
			return nil, s.signinFailure(fmt.Sprintf("No such user found for email: %s", email))
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, s.signinFailure("Invalid Password!")
	}

	if err := s.startSession(out, user.ID); err != nil {
		return nil, err
	}
	s.logger.Info("user signed in", zap.String("user_id", user.ID))
	return user, nil
}

// Signout clears the session credential. It always succeeds.
func (s *AuthService) Signout(out session.Transport) string {
	out.ClearCredential()
	s.record("signout", nil)
	return domain.SignoutMessage
}

// RequestPasswordReset stores a reset token for email and announces it for delivery.
// With hardened signin an unknown email gets the same reply as a known one.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) (msg string, err error) {
	defer func() { s.record("request_reset", err) }()

	req, err := s.resets.RequestReset(ctx, email)
	if err != nil {
		// hardened mode answers unknown emails exactly like known ones
		if s.hardenedSignin && errors.Is(err, apperrors.ErrUserNotFound) {
			s.logger.Info("password reset requested for unknown email")
			return domain.ResetRequestedMessage, nil
		}
		return "", err
	}

	s.publish(ctx, events.EventPasswordResetRequested, req.UserID, events.PasswordResetRequestedPayload{
		Email:      req.Email,
		ResetToken: req.Token,
		ExpiresAt:  req.ExpiresAt,
	})
	s.logger.Info("password reset requested", zap.String("user_id", req.UserID))
	return domain.ResetRequestedMessage, nil
}

// ConfirmPasswordReset consumes a reset token, sets the new password and signs the user in.
func (s *AuthService) ConfirmPasswordReset(ctx context.Context, out session.Transport, token, password, confirmPassword string) (user *domain.User, err error) {
	defer func() { s.record("confirm_reset", err) }()

	if password == "" {
		return nil, apperrors.NewValidationError("password required", nil)
	}
	if password != confirmPassword {
		return nil, apperrors.NewValidationError("Your Passwords don't match!", nil)
	}

	user, err = s.resets.ConfirmReset(ctx, token, password)
	if err != nil {
		return nil, err
	}

	if err := s.startSession(out, user.ID); err != nil {
		return nil, err
	}

	s.publish(ctx, events.EventPasswordResetCompleted, user.ID, events.PasswordResetCompletedPayload{Email: user.Email})
	s.logger.Info("password reset completed", zap.String("user_id", user.ID))
	return user, nil
}

// CurrentUser loads the signed-in user by id.
func (s *AuthService) CurrentUser(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthenticated("session user no longer exists")
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}

// TokenManager exposes the underlying token manager for middleware usage.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokens
}

func (s *AuthService) startSession(out session.Transport, userID string) error {
	sess, err := s.tokens.Issue(userID)
	if err != nil {
		return err
	}
	out.SetCredential(sess.Token, session.CredentialOptions{HTTPOnly: true, MaxAge: s.sessionMaxAge})
	return nil
}

func (s *AuthService) signinFailure(message string) error {
	if s.hardenedSignin {
		return apperrors.NewUnauthenticated(hardenedSigninMessage)
	}
	return apperrors.NewUnauthenticated(message)
}

func (s *AuthService) publish(ctx context.Context, eventType events.EventType, userID string, payload interface{}) {
	_ = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		UserID:    userID,
		Timestamp: s.now(),
		Payload:   payload,
	})
}

func (s *AuthService) record(operation string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = string(apperrors.ToDomainError(err).Code)
	}
	s.metrics.RecordAuth(operation, outcome)
}
