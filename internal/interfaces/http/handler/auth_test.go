package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	appidentity "github.com/farmbook/backend/internal/application/identity"
	"github.com/farmbook/backend/internal/domain/identity"
	"github.com/farmbook/backend/internal/infrastructure/auth"
	"github.com/farmbook/backend/internal/infrastructure/config"
	"github.com/farmbook/backend/internal/interfaces/http/dto"
	"github.com/farmbook/backend/internal/interfaces/http/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// testJWTConfig returns a default JWT config for tests
func testJWTConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:                 "test-secret-key-32-characters-long",
		RefreshSecret:          "test-refresh-secret-32-chars-long",
		AccessTokenExpiration:  15 * time.Minute,
		RefreshTokenExpiration: 7 * 24 * time.Hour,
		Issuer:                 "test-issuer",
		MaxRefreshCount:        10,
	}
}

// MockUserRepository is a mock implementation of identity.UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) FindByUsername(ctx context.Context, username string) (*identity.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.User), args.Error(1)
}

func (m *MockUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	args := m.Called(ctx, username)
	return args.Bool(0), args.Error(1)
}

func (m *MockUserRepository) Save(ctx context.Context, user *identity.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func newTestAuthHandler(userRepo identity.UserRepository) *AuthHandler {
	jwtService := auth.NewJWTService(testJWTConfig())
	blacklist := auth.NewInMemoryTokenBlacklist()
	authService := appidentity.NewAuthService(userRepo, jwtService, blacklist, zap.NewNop())
	return NewAuthHandler(authService)
}

func newTestUser(t *testing.T, username, password string) *identity.User {
	t.Helper()
	user, err := identity.NewUser(uuid.New(), username, password)
	require.NoError(t, err)
	return user
}

func performJSONRequest(router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthHandler_Register_Success(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("ExistsByUsername", mock.Anything, "newfarmer").Return(false, nil)
	userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	h := newTestAuthHandler(userRepo)
	router := gin.New()
	router.POST("/auth/register", h.Register)

	rec := performJSONRequest(router, http.MethodPost, "/auth/register", RegisterRequest{
		Username:    "newfarmer",
		Password:    "password123",
		DisplayName: "New Farmer",
	})

	assert.Equal(t, http.StatusCreated, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	token := data["token"].(map[string]interface{})
	assert.NotEmpty(t, token["access_token"])
	assert.NotEmpty(t, token["refresh_token"])
	user := data["user"].(map[string]interface{})
	assert.Equal(t, "newfarmer", user["username"])
	userRepo.AssertExpectations(t)
}

func TestAuthHandler_Register_UsernameTaken(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("ExistsByUsername", mock.Anything, "taken").Return(true, nil)

	h := newTestAuthHandler(userRepo)
	router := gin.New()
	router.POST("/auth/register", h.Register)

	rec := performJSONRequest(router, http.MethodPost, "/auth/register", RegisterRequest{
		Username: "taken",
		Password: "password123",
	})

	assert.Equal(t, http.StatusConflict, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, "USERNAME_TAKEN", resp.Error.Code)
}

func TestAuthHandler_Register_InvalidBody(t *testing.T) {
	h := newTestAuthHandler(new(MockUserRepository))
	router := gin.New()
	router.POST("/auth/register", h.Register)

	rec := performJSONRequest(router, http.MethodPost, "/auth/register", RegisterRequest{
		Username: "ab", // Too short
		Password: "password123",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_Login_Success(t *testing.T) {
	user := newTestUser(t, "farmer1", "password123")

	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", mock.Anything, "farmer1").Return(user, nil)
	userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	h := newTestAuthHandler(userRepo)
	router := gin.New()
	router.POST("/auth/login", h.Login)

	rec := performJSONRequest(router, http.MethodPost, "/auth/login", LoginRequest{
		Username: "farmer1",
		Password: "password123",
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)

	data := resp.Data.(map[string]interface{})
	token := data["token"].(map[string]interface{})
	assert.NotEmpty(t, token["access_token"])
	assert.Equal(t, "Bearer", token["token_type"])
}

func TestAuthHandler_Login_WrongPassword(t *testing.T) {
	user := newTestUser(t, "farmer1", "password123")

	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", mock.Anything, "farmer1").Return(user, nil)
	userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	h := newTestAuthHandler(userRepo)
	router := gin.New()
	router.POST("/auth/login", h.Login)

	rec := performJSONRequest(router, http.MethodPost, "/auth/login", LoginRequest{
		Username: "farmer1",
		Password: "wrongpassword",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_CREDENTIALS", resp.Error.Code)
}

func TestAuthHandler_Login_UnknownUser(t *testing.T) {
	userRepo := new(MockUserRepository)
	userRepo.On("FindByUsername", mock.Anything, "ghostuser").Return(nil, nil)

	h := newTestAuthHandler(userRepo)
	router := gin.New()
	router.POST("/auth/login", h.Login)

	rec := performJSONRequest(router, http.MethodPost, "/auth/login", LoginRequest{
		Username: "ghostuser",
		Password: "password123",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_RefreshToken_Success(t *testing.T) {
	user := newTestUser(t, "farmer1", "password123")

	jwtService := auth.NewJWTService(testJWTConfig())
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		AccountID: user.AccountID,
		UserID:    user.ID,
		Username:  user.Username,
	})
	require.NoError(t, err)

	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	authService := appidentity.NewAuthService(userRepo, jwtService, nil, zap.NewNop())
	h := NewAuthHandler(authService)
	router := gin.New()
	router.POST("/auth/refresh", h.RefreshToken)

	rec := performJSONRequest(router, http.MethodPost, "/auth/refresh", RefreshTokenRequest{
		RefreshToken: pair.RefreshToken,
	})

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	token := data["token"].(map[string]interface{})
	assert.NotEmpty(t, token["access_token"])
}

func TestAuthHandler_RefreshToken_Invalid(t *testing.T) {
	h := newTestAuthHandler(new(MockUserRepository))
	router := gin.New()
	router.POST("/auth/refresh", h.RefreshToken)

	rec := performJSONRequest(router, http.MethodPost, "/auth/refresh", RefreshTokenRequest{
		RefreshToken: "not-a-valid-token",
	})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "TOKEN_INVALID", resp.Error.Code)
}

func TestAuthHandler_Logout_RequiresAuth(t *testing.T) {
	h := newTestAuthHandler(new(MockUserRepository))
	router := gin.New()
	router.POST("/auth/logout", h.Logout)

	rec := performJSONRequest(router, http.MethodPost, "/auth/logout", nil)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthHandler_Logout_Success(t *testing.T) {
	user := newTestUser(t, "farmer1", "password123")

	jwtService := auth.NewJWTService(testJWTConfig())
	pair, err := jwtService.GenerateTokenPair(auth.GenerateTokenInput{
		AccountID: user.AccountID,
		UserID:    user.ID,
		Username:  user.Username,
	})
	require.NoError(t, err)

	blacklist := auth.NewInMemoryTokenBlacklist()
	authService := appidentity.NewAuthService(new(MockUserRepository), jwtService, blacklist, zap.NewNop())
	h := NewAuthHandler(authService)

	router := gin.New()
	router.Use(middleware.JWTAuthMiddleware(jwtService))
	router.POST("/auth/logout", h.Logout)

	req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
	req.Header.Set("Authorization", "Bearer "+pair.AccessToken)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Logged out successfully")
}

func TestAuthHandler_GetCurrentUser_Success(t *testing.T) {
	user := newTestUser(t, "farmer1", "password123")

	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	h := newTestAuthHandler(userRepo)
	router := gin.New()
	router.GET("/auth/me", func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, user.ID.String())
		c.Set(middleware.JWTAccountIDKey, user.AccountID.String())
		h.GetCurrentUser(c)
	})

	req := httptest.NewRequest(http.MethodGet, "/auth/me", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	data := resp.Data.(map[string]interface{})
	userData := data["user"].(map[string]interface{})
	assert.Equal(t, "farmer1", userData["username"])
	assert.Equal(t, user.AccountID.String(), userData["account_id"])
}

func TestAuthHandler_ChangePassword_Success(t *testing.T) {
	user := newTestUser(t, "farmer1", "oldpassword1")

	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)
	userRepo.On("Save", mock.Anything, mock.AnythingOfType("*identity.User")).Return(nil)

	h := newTestAuthHandler(userRepo)
	router := gin.New()
	router.PUT("/auth/password", func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, user.ID.String())
		h.ChangePassword(c)
	})

	rec := performJSONRequest(router, http.MethodPut, "/auth/password", ChangePasswordRequest{
		OldPassword: "oldpassword1",
		NewPassword: "newpassword2",
	})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, user.VerifyPassword("newpassword2"))
}

func TestAuthHandler_ChangePassword_WrongOldPassword(t *testing.T) {
	user := newTestUser(t, "farmer1", "oldpassword1")

	userRepo := new(MockUserRepository)
	userRepo.On("FindByID", mock.Anything, user.ID).Return(user, nil)

	h := newTestAuthHandler(userRepo)
	router := gin.New()
	router.PUT("/auth/password", func(c *gin.Context) {
		c.Set(middleware.JWTUserIDKey, user.ID.String())
		h.ChangePassword(c)
	})

	rec := performJSONRequest(router, http.MethodPut, "/auth/password", ChangePasswordRequest{
		OldPassword: "wrongpassword",
		NewPassword: "newpassword2",
	})

	assert.Equal(t, http.StatusBadRequest, rec.Code)

	var resp dto.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_PASSWORD", resp.Error.Code)
}
