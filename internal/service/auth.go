package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/timmy/memerator/internal/domain"
	"github.com/timmy/memerator/internal/logger"
	"github.com/timmy/memerator/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	tokenIssuer = "memerator"

	minUsernameLength = 3
	maxUsernameLength = 32
	minPasswordLength = 8
	maxPasswordBytes  = 72 // bcrypt input limit
)

// AuthConfig holds configuration for the auth service.
type AuthConfig struct {
	JWTSecret      string
	TokenTTL       time.Duration
	InitialCredits int
	BcryptCost     int // 0 uses bcrypt.DefaultCost
}

// Session is an issued login token.
type Session struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user"`
}

// AuthService registers users and issues and verifies session tokens.
type AuthService struct {
	users  *repository.UserRepository
	cfg    AuthConfig
	now    func() time.Time
	logger *logger.Logger
}

// NewAuthService creates a new auth service.
// Parameters:
//   - users: user repository.
//   - log: fallback logger.
//   - cfg: token secret, lifetime and registration defaults.
// Returns:
//   - *AuthService: initialized service.
func NewAuthService(users *repository.UserRepository, log *logger.Logger, cfg *AuthConfig) *AuthService {
	c := *cfg
	if c.BcryptCost == 0 {
		c.BcryptCost = bcrypt.DefaultCost
	}
	return &AuthService{
		users:  users,
		cfg:    c,
		now:    time.Now,
		logger: log,
	}
}

func (s *AuthService) log(ctx context.Context) *logger.Logger {
	if l, ok := logger.Lookup(ctx); ok {
		return l
	}
	if s.logger != nil {
		return s.logger
	}
	return logger.Default()
}

// Register creates an account. The first account ever created is an admin.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - username: 3 to 32 characters, surrounding spaces ignored.
//   - password: 8 to 72 bytes.
// Returns:
//   - *domain.User: the created user.
//   - error: ErrBadRequest for invalid input, ErrConflict when the username is taken.
func (s *AuthService) Register(ctx context.Context, username, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if n := utf8.RuneCountInString(username); n < minUsernameLength || n > maxUsernameLength {
		return nil, newError(ErrBadRequest, msgInvalidUsername)
	}
	if len(password) < minPasswordLength || len(password) > maxPasswordBytes {
		return nil, newError(ErrBadRequest, msgInvalidPassword)
	}

	taken, err := s.users.ExistsByUsername(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("failed to check username: %w", err)
	}
	if taken {
		return nil, newError(ErrConflict, msgUsernameTaken)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &domain.User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hash),
		Credits:      s.cfg.InitialCredits,
	}
	if err := s.users.CreateFirstAdmin(ctx, user); err != nil {
		// Lost a race on the unique index
		if taken, checkErr := s.users.ExistsByUsername(ctx, username); checkErr == nil && taken {
			return nil, newError(ErrConflict, msgUsernameTaken)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldUserID: user.ID,
		"is_admin":         user.IsAdmin,
	}).Info("User registered")

	return user, nil
}

// Login verifies credentials and issues a signed token.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - username: account name.
//   - password: plain password.
// Returns:
//   - *Session: token, expiry and user.
//   - error: ErrUnauthorized for unknown users or wrong passwords.
func (s *AuthService) Login(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrUnauthorized, msgInvalidLogin)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, newError(ErrUnauthorized, msgInvalidLogin)
	}

	now := s.now()
	expiresAt := now.Add(s.cfg.TokenTTL)
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Issuer:    tokenIssuer,
		Subject:   user.ID,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
	})
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &Session{Token: signed, ExpiresAt: expiresAt, User: user}, nil
}

// Authenticate resolves a token to its user.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - tokenString: signed token from Login.
// Returns:
//   - *domain.User: the token's user.
//   - error: ErrUnauthorized when the token is invalid, expired or its user is gone.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*domain.User, error) {
	claims := &jwt.RegisteredClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(s.cfg.JWTSecret), nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(tokenIssuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, newError(ErrUnauthorized, msgInvalidToken)
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrUnauthorized, msgInvalidToken)
		}
		return nil, fmt.Errorf("failed to load user: %w", err)
	}
	return user, nil
}

// RequireUser checks that there is a logged-in caller.
func RequireUser(caller *domain.User) error {
	if caller == nil {
		return newError(ErrUnauthorized, msgNotLoggedIn)
	}
	return nil
}

// RequireAdmin checks that the caller is a logged-in admin.
func RequireAdmin(caller *domain.User) error {
	if err := RequireUser(caller); err != nil {
		return err
	}
	if !caller.IsAdmin {
		return newError(ErrForbidden, msgAdminOnly)
	}
	return nil
}

// SetCredits changes a user's credit balance. Only admins may do this.
// Parameters:
//   - ctx: context for cancellation and deadlines.
//   - caller: authenticated user or nil.
//   - userID: account to change.
//   - credits: new balance, not negative.
// Returns:
//   - *domain.User: the updated user.
//   - error: ErrUnauthorized, ErrForbidden, ErrBadRequest or ErrNotFound.
func (s *AuthService) SetCredits(ctx context.Context, caller *domain.User, userID string, credits int) (*domain.User, error) {
	if err := RequireAdmin(caller); err != nil {
		return nil, err
	}
	if credits < 0 {
		return nil, newError(ErrBadRequest, msgNegativeCredits)
	}

	if err := s.users.UpdateCredits(ctx, userID, credits); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, newError(ErrNotFound, msgUserNotFound)
		}
		return nil, fmt.Errorf("failed to update credits: %w", err)
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	s.log(ctx).WithFields(logger.Fields{
		logger.FieldUserID: userID,
		"credits":          credits,
		"granted_by":       caller.ID,
	}).Info("User credits updated")

	return user, nil
}
