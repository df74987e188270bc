package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/eggspire/monitor/internal/config"
	"github.com/eggspire/monitor/internal/domain/models"
	"github.com/eggspire/monitor/internal/repository/mysql"
	"github.com/eggspire/monitor/internal/service/auth"
)

type stubUsers struct {
	account    *models.User
	resolvable bool
}

func (s *stubUsers) GetByEmail(_ context.Context, email string) (*models.User, error) {
	if s.account != nil && s.account.Email == email {
		return s.account, nil
	}
	return nil, mysql.ErrNotFound
}

func (s *stubUsers) GetByID(_ context.Context, userID int64) (*models.User, error) {
	if s.resolvable && s.account != nil && s.account.UserID == userID {
		return s.account, nil
	}
	return nil, mysql.ErrNotFound
}

func (s *stubUsers) EmailExists(context.Context, string) (bool, error)   { return false, nil }
func (s *stubUsers) Create(context.Context, *models.User) (int64, error) { return 0, nil }
func (s *stubUsers) UpdatePassword(context.Context, int64, string) error { return nil }
func (s *stubUsers) TouchLogin(context.Context, int64) error             { return nil }

func authFixture(t *testing.T, ttl time.Duration, resolvable bool) (*auth.Service, string) {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	require.NoError(t, err)
	users := &stubUsers{
		account: &models.User{
			UserID:       1,
			Email:        "farmer@eggspire.id",
			PasswordHash: string(hash),
			Role:         models.RoleAdmin,
			IsActive:     true,
		},
		resolvable: resolvable,
	}
	svc := auth.NewService(users, config.AuthConfig{
		JWTSecret:  "middleware-test",
		TokenTTL:   ttl,
		BcryptCost: bcrypt.MinCost,
	}, nil)

	_, token, err := svc.Login(context.Background(), "farmer@eggspire.id", "pw")
	require.NoError(t, err)
	return svc, token
}

func protectedRouter(svc *auth.Service, extra ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	chain := append([]gin.HandlerFunc{RequireAuth(svc, nil)}, extra...)
	chain = append(chain, func(c *gin.Context) {
		user := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"success": true, "user_id": user.UserID})
	})
	r.GET("/protected", chain...)
	return r
}

func doGet(r *gin.Engine, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequireAuthMissingHeader(t *testing.T) {
	svc, _ := authFixture(t, time.Hour, true)

	w := doGet(protectedRouter(svc), "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Access token required")
}

func TestRequireAuthGarbageToken(t *testing.T) {
	svc, _ := authFixture(t, time.Hour, true)

	w := doGet(protectedRouter(svc), "not.a.jwt")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid token")
}

func TestRequireAuthExpiredToken(t *testing.T) {
	svc, token := authFixture(t, -time.Minute, true)

	w := doGet(protectedRouter(svc), token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "Token expired")
}

func TestRequireAuthUnresolvableUser(t *testing.T) {
	svc, token := authFixture(t, time.Hour, false)

	w := doGet(protectedRouter(svc), token)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "user not found")
}

func TestRequireAuthPassesUserThrough(t *testing.T) {
	svc, token := authFixture(t, time.Hour, true)

	w := doGet(protectedRouter(svc), token)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":1`)
}

func TestRequireRole(t *testing.T) {
	svc, token := authFixture(t, time.Hour, true)

	forbidden := doGet(protectedRouter(svc, RequireRole(models.RoleSuperAdmin)), token)
	assert.Equal(t, http.StatusForbidden, forbidden.Code)
	assert.Contains(t, forbidden.Body.String(), "Insufficient permissions")

	allowed := doGet(protectedRouter(svc, RequireRole(models.RoleAdmin, models.RoleSuperAdmin)), token)
	assert.Equal(t, http.StatusOK, allowed.Code)
}
