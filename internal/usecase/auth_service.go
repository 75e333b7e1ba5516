package usecase

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/flaviojulio/ir-app/internal/domain"
)

const minPasswordLength = 6

// AuthService handles registration, credential checks, and the full token
// lifecycle. Tokens are JWTs persisted server-side so logout and user
// deactivation can revoke them before expiry.
type AuthService struct {
	users    domain.UserRepository
	roles    domain.RoleRepository
	tokens   domain.TokenRepository
	secret   []byte
	tokenTTL time.Duration
}

func NewAuthService(users domain.UserRepository, roles domain.RoleRepository, tokens domain.TokenRepository, secret string, tokenTTL time.Duration) (*AuthService, error) {
	if users == nil {
		return nil, errors.New("user repository required")
	}
	if roles == nil {
		return nil, errors.New("role repository required")
	}
	if tokens == nil {
		return nil, errors.New("token repository required")
	}
	// No fallback secret: refusing to start beats signing with a default.
	if secret == "" {
		return nil, errors.New("jwt secret required")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &AuthService{
		users:    users,
		roles:    roles,
		tokens:   tokens,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
	}, nil
}

// Bootstrap seeds the built-in roles and, when credentials are configured,
// an initial admin account.
func (s *AuthService) Bootstrap(ctx context.Context, adminUsername, adminEmail, adminPassword string) error {
	for _, role := range []domain.Role{
		{Name: domain.RoleAdmin, Description: "Full administrative access"},
		{Name: domain.RoleUser, Description: "Regular account"},
	} {
		if _, err := s.roles.Create(ctx, role); err != nil && !errors.Is(err, domain.ErrRoleExists) {
			return fmt.Errorf("seed role %s: %w", role.Name, err)
		}
	}

	if adminUsername == "" || adminPassword == "" {
		return nil
	}
	if _, err := s.users.GetByUsernameOrEmail(ctx, adminUsername); err == nil {
		return nil
	} else if !errors.Is(err, domain.ErrNotFound) {
		return err
	}

	user, err := s.Register(ctx, adminUsername, adminEmail, "Administrator", adminPassword)
	if err != nil {
		return fmt.Errorf("create admin user: %w", err)
	}
	if _, err := s.users.AddRole(ctx, user.ID, domain.RoleAdmin); err != nil {
		return fmt.Errorf("grant admin role: %w", err)
	}
	return nil
}

func (s *AuthService) Register(ctx context.Context, username, email, fullName, password string) (domain.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(strings.ToLower(email))
	if username == "" {
		return domain.User{}, errors.New("username required")
	}
	if email == "" || !strings.Contains(email, "@") {
		return domain.User{}, errors.New("valid email required")
	}
	if len(password) < minPasswordLength {
		return domain.User{}, fmt.Errorf("password must have at least %d characters", minPasswordLength)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return domain.User{}, fmt.Errorf("hash password: %w", err)
	}

	user := domain.User{
		Username:     username,
		Email:        email,
		FullName:     fullName,
		PasswordHash: string(hash),
		Active:       true,
		Roles:        []string{domain.RoleUser},
	}

	id, err := s.users.Create(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	return s.users.GetByID(ctx, id)
}

// Login verifies credentials and issues a token. Every failure surfaces as
// ErrInvalidCredentials so callers cannot probe for registered usernames.
func (s *AuthService) Login(ctx context.Context, usernameOrEmail, password string) (domain.User, string, error) {
	user, err := s.users.GetByUsernameOrEmail(ctx, strings.TrimSpace(usernameOrEmail))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, "", domain.ErrInvalidCredentials
		}
		return domain.User{}, "", err
	}
	if !user.Active {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return domain.User{}, "", domain.ErrInvalidCredentials
	}

	token, err := s.issueToken(ctx, user.ID)
	if err != nil {
		return domain.User{}, "", err
	}
	return user, token, nil
}

func (s *AuthService) issueToken(ctx context.Context, userID int64) (string, error) {
	now := time.Now().UTC()
	expires := now.Add(s.tokenTTL)
	jti := uuid.NewString()

	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(expires),
		ID:        jti,
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}

	if err := s.tokens.Store(ctx, domain.AuthToken{
		UserID:    userID,
		JTI:       jti,
		Token:     signed,
		IssuedAt:  now,
		ExpiresAt: expires,
	}); err != nil {
		return "", fmt.Errorf("store token: %w", err)
	}
	return signed, nil
}

// Verify resolves a bearer token to its user. Distinguishes expired, revoked,
// malformed, and unknown tokens for client UX.
func (s *AuthService) Verify(ctx context.Context, tokenString string) (domain.User, error) {
	stored, err := s.tokens.Get(ctx, tokenString)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return domain.User{}, domain.ErrTokenNotFound
		}
		return domain.User{}, err
	}
	if stored.Revoked {
		return domain.User{}, domain.ErrTokenRevoked
	}

	parsed, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			// Retire it server-side as well once it has expired.
			_, _ = s.tokens.Revoke(ctx, tokenString)
			return domain.User{}, domain.ErrTokenExpired
		}
		return domain.User{}, domain.ErrTokenMalformed
	}

	subject, err := parsed.Claims.GetSubject()
	if err != nil || subject == "" {
		return domain.User{}, domain.ErrTokenMalformed
	}
	userID, err := strconv.ParseInt(subject, 10, 64)
	if err != nil {
		return domain.User{}, domain.ErrTokenMalformed
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	if !user.Active {
		return domain.User{}, domain.ErrTokenRevoked
	}
	return user, nil
}

// Logout revokes the presented token.
func (s *AuthService) Logout(ctx context.Context, tokenString string) error {
	ok, err := s.tokens.Revoke(ctx, tokenString)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrTokenNotFound
	}
	return nil
}

// PurgeExpiredTokens removes expired and revoked tokens from storage.
func (s *AuthService) PurgeExpiredTokens(ctx context.Context) (int64, error) {
	return s.tokens.PurgeExpired(ctx)
}

func (s *AuthService) ListUsers(ctx context.Context) ([]domain.User, error) {
	return s.users.List(ctx)
}

func (s *AuthService) GetUser(ctx context.Context, id int64) (domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// UserUpdate carries the optional fields of a user update; nil means keep.
type UserUpdate struct {
	Username *string
	Email    *string
	FullName *string
	Password *string
	Active   *bool
}

func (s *AuthService) UpdateUser(ctx context.Context, id int64, update UserUpdate) (domain.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return domain.User{}, err
	}

	if update.Username != nil {
		user.Username = strings.TrimSpace(*update.Username)
	}
	if update.Email != nil {
		user.Email = strings.TrimSpace(strings.ToLower(*update.Email))
	}
	if update.FullName != nil {
		user.FullName = *update.FullName
	}
	if update.Password != nil {
		if len(*update.Password) < minPasswordLength {
			return domain.User{}, fmt.Errorf("password must have at least %d characters", minPasswordLength)
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*update.Password), bcrypt.DefaultCost)
		if err != nil {
			return domain.User{}, fmt.Errorf("hash password: %w", err)
		}
		user.PasswordHash = string(hash)
	}
	deactivated := false
	if update.Active != nil {
		deactivated = user.Active && !*update.Active
		user.Active = *update.Active
	}

	ok, err := s.users.Update(ctx, user)
	if err != nil {
		return domain.User{}, err
	}
	if !ok {
		return domain.User{}, domain.ErrNotFound
	}

	// Deactivation and password changes invalidate open sessions.
	if deactivated || update.Password != nil {
		if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
			return domain.User{}, fmt.Errorf("revoke tokens: %w", err)
		}
	}

	return s.users.GetByID(ctx, id)
}

func (s *AuthService) DeleteUser(ctx context.Context, id int64) error {
	if err := s.tokens.RevokeAllForUser(ctx, id); err != nil {
		return fmt.Errorf("revoke tokens: %w", err)
	}
	ok, err := s.users.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *AuthService) AddRole(ctx context.Context, userID int64, role string) error {
	if _, err := s.roles.GetByName(ctx, role); err != nil {
		return err
	}
	ok, err := s.users.AddRole(ctx, userID, role)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *AuthService) RemoveRole(ctx context.Context, userID int64, role string) error {
	ok, err := s.users.RemoveRole(ctx, userID, role)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrNotFound
	}
	return nil
}

func (s *AuthService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

// DeleteRole removes a role. Roles still assigned to users are refused with
// ErrRoleInUse; the built-in roles are never deletable.
func (s *AuthService) DeleteRole(ctx context.Context, id int64) error {
	roles, err := s.roles.List(ctx)
	if err != nil {
		return err
	}
	for _, role := range roles {
		if role.ID == id && (role.Name == domain.RoleAdmin || role.Name == domain.RoleUser) {
			return fmt.Errorf("role %s is built in", role.Name)
		}
	}
	return s.roles.Delete(ctx, id)
}

func (s *AuthService) CreateRole(ctx context.Context, name, description string) (domain.Role, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	if name == "" {
		return domain.Role{}, errors.New("role name required")
	}
	if _, err := s.roles.Create(ctx, domain.Role{Name: name, Description: description}); err != nil {
		return domain.Role{}, err
	}
	return s.roles.GetByName(ctx, name)
}
