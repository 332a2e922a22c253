//go:build unit

package middleware_test

import (
	"net/http"
	"testing"

	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/domain/user"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/handler/middleware"
	"github.com/DucAnhDev9421/dat-san-online-sub005/internal/pkg/jwt"
	"github.com/DucAnhDev9421/dat-san-online-sub005/tests/common/httptest"
	usecasemock "github.com/DucAnhDev9421/dat-san-online-sub005/tests/mock/usecase"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"
)

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.New()

	setup := func(t *testing.T) (*gin.Engine, *usecasemock.MockTokenValidator) {
		ctrl := gomock.NewController(t)
		validator := usecasemock.NewMockTokenValidator(ctrl)
		m := middleware.NewAuthMiddleware(validator)

		router := httptest.NewTestEngine()
		whoami := func(c *gin.Context) {
			id, _ := middleware.GetUserID(c)
			role, _ := middleware.GetUserRole(c)
			c.JSON(http.StatusOK, gin.H{"user_id": id, "role": role})
		}
		router.GET("/me", m.RequireAuth(), whoami)
		router.POST("/topup", m.RequireAuth(), m.RequireRoleAtLeast(user.RoleOwner), whoami)
		router.GET("/admin", m.RequireAuth(), m.RequireRoleAtLeast(user.RoleAdmin), whoami)
		router.GET("/misconfigured", m.RequireRoleAtLeast(user.RoleCustomer), whoami)
		return router, validator
	}

	t.Run("missing token", func(t *testing.T) {
		router, _ := setup(t)
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/me", nil, "")
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, "Access token required")
	})

	t.Run("invalid token", func(t *testing.T) {
		router, validator := setup(t)
		validator.EXPECT().ValidateToken("bad").Return(uuid.Nil, user.Role(""), jwt.ErrInvalidToken)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/me", nil, "bad")
		httptest.AssertErrorResponse(t, rec, http.StatusUnauthorized, "Invalid or expired token")
	})

	t.Run("valid bearer token sets the user", func(t *testing.T) {
		router, validator := setup(t)
		validator.EXPECT().ValidateToken("good").Return(userID, user.RoleCustomer, nil)

		rec := httptest.PerformRequest(t, router, http.MethodGet, "/me", nil, "good")

		var resp struct {
			UserID uuid.UUID `json:"user_id"`
			Role   string    `json:"role"`
		}
		httptest.AssertSuccessResponse(t, rec, http.StatusOK, &resp)
		assert.Equal(t, userID, resp.UserID)
		assert.Equal(t, "customer", resp.Role)
	})

	roleCases := []struct {
		role   user.Role
		path   string
		method string
		status int
	}{
		{user.RoleCustomer, "/topup", http.MethodPost, http.StatusForbidden},
		{user.RoleOwner, "/topup", http.MethodPost, http.StatusOK},
		{user.RoleAdmin, "/topup", http.MethodPost, http.StatusOK},
		{user.RoleOwner, "/admin", http.MethodGet, http.StatusForbidden},
		{user.RoleAdmin, "/admin", http.MethodGet, http.StatusOK},
	}
	for _, tc := range roleCases {
		t.Run(string(tc.role)+" "+tc.path, func(t *testing.T) {
			router, validator := setup(t)
			validator.EXPECT().ValidateToken("tok").Return(userID, tc.role, nil)

			rec := httptest.PerformRequest(t, router, tc.method, tc.path, nil, "tok")
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}

	t.Run("role check without auth is a server error", func(t *testing.T) {
		router, _ := setup(t)
		rec := httptest.PerformRequest(t, router, http.MethodGet, "/misconfigured", nil, "")
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})
}
