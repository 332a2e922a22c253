//go:build unit || e2e

package authtest

import (
	"net/http"
	"testing"
	"time"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/user"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/config"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/jwt"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

type JWTHelper struct {
	cfg config.JWTConfig
}

func NewJWTHelper(cfg config.JWTConfig) *JWTHelper {
	return &JWTHelper{cfg: cfg}
}

func (h *JWTHelper) GenerateToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	duration, err := time.ParseDuration(h.cfg.Duration)
	require.NoError(t, err)
	token, err := jwt.NewService(h.cfg.Secret, duration, jwt.WithIssuer(h.cfg.Issuer)).GenerateToken(userID, role)
	require.NoError(t, err)
	return token
}

func (h *JWTHelper) CreateExpiredToken(t *testing.T, userID uuid.UUID, role user.Role) string {
	t.Helper()
	token, err := jwt.NewService(h.cfg.Secret, time.Millisecond, jwt.WithIssuer(h.cfg.Issuer)).GenerateToken(userID, role)
	require.NoError(t, err)
	time.Sleep(10 * time.Millisecond)
	return token
}

// BearerHeaders is the header set an authenticated client sends.
func (h *JWTHelper) BearerHeaders(t *testing.T, userID uuid.UUID, role user.Role) map[string]string {
	t.Helper()
	return map[string]string{"Authorization": "Bearer " + h.GenerateToken(t, userID, role)}
}

// AccessCookie carries the token the way the web client does.
func (h *JWTHelper) AccessCookie(t *testing.T, userID uuid.UUID, role user.Role) *http.Cookie {
	t.Helper()
	return &http.Cookie{Name: "access_token", Value: h.GenerateToken(t, userID, role)}
}
