package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/vovakirdan/lobbychat/internal/store"
)

var (
	// ErrInvalidCredentials is returned when username/password don't match.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUserExists is returned when trying to register with existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidUsername is returned when username doesn't meet constraints.
	ErrInvalidUsername = errors.New("invalid username")
	// ErrInvalidPassword is returned when password doesn't meet constraints.
	ErrInvalidPassword = errors.New("invalid password")
	// ErrBanned is returned when a banned user tries to log in.
	ErrBanned = errors.New("user is banned")
	// ErrTokenRequired is returned when identities must come from tokens.
	ErrTokenRequired = errors.New("token required")
	// ErrAuthDisabled is returned when no signing secret is configured.
	ErrAuthDisabled = errors.New("authentication is disabled")
)

// Roles decides which usernames carry elevated privileges.
type Roles interface {
	IsAdmin(username string) bool
	IsObserver(username string) bool
}

// BanChecker reports whether a username is banned.
type BanChecker interface {
	IsBanned(username string) bool
}

// Identity is an authenticated participant handed to the chat core.
type Identity struct {
	Username string
	Admin    bool
	Observer bool
}

// Service provides authentication operations.
type Service struct {
	store     store.UserStore
	jwtConfig *JWTConfig
	roles     Roles
	bans      BanChecker
}

// NewService creates a new authentication service. bans may be nil.
func NewService(userStore store.UserStore, jwtConfig *JWTConfig, roles Roles, bans BanChecker) *Service {
	return &Service{
		store:     userStore,
		jwtConfig: jwtConfig,
		roles:     roles,
		bans:      bans,
	}
}

// Register creates a new user with hashed password and returns a JWT token.
func (s *Service) Register(ctx context.Context, username, password string) (string, error) {
	if !s.jwtConfig.Enabled() {
		return "", ErrAuthDisabled
	}
	username = strings.TrimSpace(username)
	if err := validateUsername(username); err != nil {
		return "", err
	}
	if len(password) < 6 {
		return "", ErrInvalidPassword
	}

	// Check if user already exists
	existing, err := s.store.GetUserByUsername(ctx, username)
	if err == nil && existing != nil {
		return "", ErrUserExists
	}

	hashedPassword, err := HashPassword(password)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(ctx, username, hashedPassword)
	if err != nil {
		return "", fmt.Errorf("create user: %w", err)
	}

	return s.issue(user)
}

// Login validates credentials and returns a JWT token. Banned users are
// refused even with valid credentials.
func (s *Service) Login(ctx context.Context, username, password string) (string, error) {
	if !s.jwtConfig.Enabled() {
		return "", ErrAuthDisabled
	}
	user, err := s.store.GetUserByUsername(ctx, username)
	if err != nil {
		return "", ErrInvalidCredentials
	}

	if errPwd := ComparePassword(user.PasswordHash, password); errPwd != nil {
		return "", ErrInvalidCredentials
	}

	if s.bans != nil && s.bans.IsBanned(user.Username) {
		return "", ErrBanned
	}

	return s.issue(user)
}

// ValidateToken validates a JWT token and returns the claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	if !s.jwtConfig.Enabled() {
		return nil, ErrAuthDisabled
	}
	return ValidateToken(s.jwtConfig, tokenString)
}

// Identify resolves the identity of a websocket session. With tokens enabled
// the token is authoritative; otherwise the claimed username is trusted and
// roles come from configuration.
func (s *Service) Identify(claimedUser, token string) (Identity, error) {
	if s.jwtConfig.Enabled() {
		if token == "" {
			return Identity{}, ErrTokenRequired
		}
		claims, err := s.ValidateToken(token)
		if err != nil {
			return Identity{}, err
		}
		return Identity{
			Username: claims.Username,
			Admin:    claims.Admin,
			Observer: claims.Admin || s.isObserver(claims.Username),
		}, nil
	}

	username := strings.TrimSpace(claimedUser)
	if err := validateUsername(username); err != nil {
		return Identity{}, err
	}
	admin := s.isAdmin(username)
	return Identity{
		Username: username,
		Admin:    admin,
		Observer: admin || s.isObserver(username),
	}, nil
}

func (s *Service) issue(user *store.User) (string, error) {
	token, err := GenerateToken(s.jwtConfig, user.ID, user.Username, s.isAdmin(user.Username))
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	return token, nil
}

func (s *Service) isAdmin(username string) bool {
	return s.roles != nil && s.roles.IsAdmin(username)
}

func (s *Service) isObserver(username string) bool {
	return s.roles != nil && s.roles.IsObserver(username)
}

// validateUsername keeps names usable as whitespace-delimited command targets.
func validateUsername(username string) error {
	if len(username) < 2 || len(username) > 32 {
		return ErrInvalidUsername
	}
	if strings.ContainsAny(username, " \t\r\n") || strings.HasPrefix(username, "/") {
		return ErrInvalidUsername
	}
	return nil
}
