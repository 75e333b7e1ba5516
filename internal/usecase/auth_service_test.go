package usecase

import (
	"context"
	"strconv"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/flaviojulio/ir-app/internal/domain"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user domain.User) (int64, error) {
	args := m.Called(ctx, user)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) GetByID(ctx context.Context, id int64) (domain.User, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsernameOrEmail(ctx context.Context, usernameOrEmail string) (domain.User, error) {
	args := m.Called(ctx, usernameOrEmail)
	return args.Get(0).(domain.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]domain.User, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.User), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, user domain.User) (bool, error) {
	args := m.Called(ctx, user)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Delete(ctx context.Context, id int64) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) AddRole(ctx context.Context, userID int64, role string) (bool, error) {
	args := m.Called(ctx, userID, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) RemoveRole(ctx context.Context, userID int64, role string) (bool, error) {
	args := m.Called(ctx, userID, role)
	return args.Bool(0), args.Error(1)
}

type MockRoleRepository struct {
	mock.Mock
}

func (m *MockRoleRepository) Create(ctx context.Context, role domain.Role) (int64, error) {
	args := m.Called(ctx, role)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRoleRepository) GetByName(ctx context.Context, name string) (domain.Role, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(domain.Role), args.Error(1)
}

func (m *MockRoleRepository) List(ctx context.Context) ([]domain.Role, error) {
	args := m.Called(ctx)
	return args.Get(0).([]domain.Role), args.Error(1)
}

func (m *MockRoleRepository) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockTokenRepository struct {
	mock.Mock
}

func (m *MockTokenRepository) Store(ctx context.Context, token domain.AuthToken) error {
	args := m.Called(ctx, token)
	return args.Error(0)
}

func (m *MockTokenRepository) Get(ctx context.Context, token string) (domain.AuthToken, error) {
	args := m.Called(ctx, token)
	return args.Get(0).(domain.AuthToken), args.Error(1)
}

func (m *MockTokenRepository) Revoke(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *MockTokenRepository) RevokeAllForUser(ctx context.Context, userID int64) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockTokenRepository) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

const testSecret = "test-secret"

func newTestAuthService(t *testing.T, users *MockUserRepository, roles *MockRoleRepository, tokens *MockTokenRepository) *AuthService {
	t.Helper()
	service, err := NewAuthService(users, roles, tokens, testSecret, time.Hour)
	require.NoError(t, err)
	return service
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func signedToken(t *testing.T, userID int64, expiresAt time.Time) string {
	t.Helper()
	claims := jwt.RegisteredClaims{
		Subject:   strconv.FormatInt(userID, 10),
		IssuedAt:  jwt.NewNumericDate(time.Now().Add(-2 * time.Hour)),
		ExpiresAt: jwt.NewNumericDate(expiresAt),
		ID:        "test-jti",
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return signed
}

func TestNewAuthServiceRequiresSecret(t *testing.T) {
	_, err := NewAuthService(new(MockUserRepository), new(MockRoleRepository), new(MockTokenRepository), "", time.Hour)
	require.Error(t, err)
}

func TestLoginFailuresAreIndistinguishable(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)
	service := newTestAuthService(t, users, new(MockRoleRepository), tokens)

	users.On("GetByUsernameOrEmail", mock.Anything, "ghost").
		Return(domain.User{}, domain.ErrNotFound)
	users.On("GetByUsernameOrEmail", mock.Anything, "alice").
		Return(domain.User{ID: 1, Username: "alice", PasswordHash: hashOf(t, "correct"), Active: true}, nil)

	_, _, err := service.Login(context.Background(), "ghost", "whatever")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, _, err = service.Login(context.Background(), "alice", "wrong")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	tokens.AssertNotCalled(t, "Store", mock.Anything, mock.Anything)
}

func TestLoginInactiveUserRejected(t *testing.T) {
	users := new(MockUserRepository)
	service := newTestAuthService(t, users, new(MockRoleRepository), new(MockTokenRepository))

	users.On("GetByUsernameOrEmail", mock.Anything, "bob").
		Return(domain.User{ID: 2, Username: "bob", PasswordHash: hashOf(t, "secret123"), Active: false}, nil)

	_, _, err := service.Login(context.Background(), "bob", "secret123")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLoginIssuesPersistedToken(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)
	service := newTestAuthService(t, users, new(MockRoleRepository), tokens)

	users.On("GetByUsernameOrEmail", mock.Anything, "alice").
		Return(domain.User{ID: 1, Username: "alice", PasswordHash: hashOf(t, "correct"), Active: true}, nil)
	tokens.On("Store", mock.Anything, mock.MatchedBy(func(tok domain.AuthToken) bool {
		return tok.UserID == 1 && tok.JTI != "" && tok.ExpiresAt.After(tok.IssuedAt)
	})).Return(nil)

	user, token, err := service.Login(context.Background(), "alice", "correct")
	require.NoError(t, err)
	assert.Equal(t, int64(1), user.ID)
	assert.NotEmpty(t, token)
	tokens.AssertExpectations(t)
}

func TestVerifyUnknownToken(t *testing.T) {
	tokens := new(MockTokenRepository)
	service := newTestAuthService(t, new(MockUserRepository), new(MockRoleRepository), tokens)

	tokens.On("Get", mock.Anything, "nope").Return(domain.AuthToken{}, domain.ErrNotFound)

	_, err := service.Verify(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrTokenNotFound)
}

func TestVerifyRevokedToken(t *testing.T) {
	tokens := new(MockTokenRepository)
	service := newTestAuthService(t, new(MockUserRepository), new(MockRoleRepository), tokens)

	tokens.On("Get", mock.Anything, "revoked").Return(domain.AuthToken{Token: "revoked", Revoked: true}, nil)

	_, err := service.Verify(context.Background(), "revoked")
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestVerifyMalformedToken(t *testing.T) {
	tokens := new(MockTokenRepository)
	service := newTestAuthService(t, new(MockUserRepository), new(MockRoleRepository), tokens)

	tokens.On("Get", mock.Anything, "garbage").Return(domain.AuthToken{Token: "garbage"}, nil)

	_, err := service.Verify(context.Background(), "garbage")
	assert.ErrorIs(t, err, domain.ErrTokenMalformed)
}

func TestVerifyExpiredTokenIsRevokedServerSide(t *testing.T) {
	tokens := new(MockTokenRepository)
	service := newTestAuthService(t, new(MockUserRepository), new(MockRoleRepository), tokens)

	expired := signedToken(t, 1, time.Now().Add(-time.Hour))
	tokens.On("Get", mock.Anything, expired).Return(domain.AuthToken{Token: expired, UserID: 1}, nil)
	tokens.On("Revoke", mock.Anything, expired).Return(true, nil)

	_, err := service.Verify(context.Background(), expired)
	assert.ErrorIs(t, err, domain.ErrTokenExpired)
	tokens.AssertCalled(t, "Revoke", mock.Anything, expired)
}

func TestVerifyResolvesUser(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)
	service := newTestAuthService(t, users, new(MockRoleRepository), tokens)

	valid := signedToken(t, 7, time.Now().Add(time.Hour))
	tokens.On("Get", mock.Anything, valid).Return(domain.AuthToken{Token: valid, UserID: 7}, nil)
	users.On("GetByID", mock.Anything, int64(7)).
		Return(domain.User{ID: 7, Username: "carol", Active: true, Roles: []string{domain.RoleUser}}, nil)

	user, err := service.Verify(context.Background(), valid)
	require.NoError(t, err)
	assert.Equal(t, int64(7), user.ID)
}

func TestVerifyDeactivatedUserTreatedAsRevoked(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)
	service := newTestAuthService(t, users, new(MockRoleRepository), tokens)

	valid := signedToken(t, 7, time.Now().Add(time.Hour))
	tokens.On("Get", mock.Anything, valid).Return(domain.AuthToken{Token: valid, UserID: 7}, nil)
	users.On("GetByID", mock.Anything, int64(7)).Return(domain.User{ID: 7, Active: false}, nil)

	_, err := service.Verify(context.Background(), valid)
	assert.ErrorIs(t, err, domain.ErrTokenRevoked)
}

func TestLogoutUnknownToken(t *testing.T) {
	tokens := new(MockTokenRepository)
	service := newTestAuthService(t, new(MockUserRepository), new(MockRoleRepository), tokens)

	tokens.On("Revoke", mock.Anything, "nope").Return(false, nil)

	assert.ErrorIs(t, service.Logout(context.Background(), "nope"), domain.ErrTokenNotFound)
}

func TestRegisterRejectsShortPassword(t *testing.T) {
	users := new(MockUserRepository)
	service := newTestAuthService(t, users, new(MockRoleRepository), new(MockTokenRepository))

	_, err := service.Register(context.Background(), "dave", "dave@example.com", "Dave", "12345")
	require.Error(t, err)
	users.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestDeleteRoleStillAssigned(t *testing.T) {
	roles := new(MockRoleRepository)
	service := newTestAuthService(t, new(MockUserRepository), roles, new(MockTokenRepository))

	roles.On("List", mock.Anything).Return([]domain.Role{
		{ID: 5, Name: "auditor"},
	}, nil)
	roles.On("Delete", mock.Anything, int64(5)).Return(domain.ErrRoleInUse)

	assert.ErrorIs(t, service.DeleteRole(context.Background(), 5), domain.ErrRoleInUse)
}

func TestDeleteRoleRefusesBuiltIns(t *testing.T) {
	roles := new(MockRoleRepository)
	service := newTestAuthService(t, new(MockUserRepository), roles, new(MockTokenRepository))

	roles.On("List", mock.Anything).Return([]domain.Role{
		{ID: 1, Name: domain.RoleAdmin},
		{ID: 2, Name: domain.RoleUser},
	}, nil)

	require.Error(t, service.DeleteRole(context.Background(), 1))
	roles.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
}

func TestDeleteRoleUnassigned(t *testing.T) {
	roles := new(MockRoleRepository)
	service := newTestAuthService(t, new(MockUserRepository), roles, new(MockTokenRepository))

	roles.On("List", mock.Anything).Return([]domain.Role{
		{ID: 5, Name: "auditor"},
	}, nil)
	roles.On("Delete", mock.Anything, int64(5)).Return(nil)

	require.NoError(t, service.DeleteRole(context.Background(), 5))
	roles.AssertExpectations(t)
}

func TestUpdateUserDeactivationRevokesSessions(t *testing.T) {
	users := new(MockUserRepository)
	tokens := new(MockTokenRepository)
	service := newTestAuthService(t, users, new(MockRoleRepository), tokens)

	active := domain.User{ID: 3, Username: "erin", Active: true}
	users.On("GetByID", mock.Anything, int64(3)).Return(active, nil)
	users.On("Update", mock.Anything, mock.MatchedBy(func(u domain.User) bool {
		return u.ID == 3 && !u.Active
	})).Return(true, nil)
	tokens.On("RevokeAllForUser", mock.Anything, int64(3)).Return(nil)

	inactive := false
	_, err := service.UpdateUser(context.Background(), 3, UserUpdate{Active: &inactive})
	require.NoError(t, err)
	tokens.AssertCalled(t, "RevokeAllForUser", mock.Anything, int64(3))
}
