package jwt

import (
	"testing"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClaims() Claims {
	employeeID := "0191e5a4-8c1a-7a3e-9f00-000000000101"
	return Claims{
		UserID:     "user-1",
		CompanyID:  "0191e5a4-8c1a-7a3e-9f00-000000000001",
		EmployeeID: &employeeID,
		Role:       user.RoleManager,
	}
}

func TestGenerateAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, expiresAt, err := svc.GenerateAccessToken(testClaims())
	require.NoError(t, err)
	assert.Greater(t, expiresAt, time.Now().Unix())

	decoded, err := jwtauth.VerifyToken(svc.JWTAuth(), token)
	require.NoError(t, err)
	typ, _ := decoded.Get("type")
	assert.Equal(t, TokenTypeAccess, typ)
}

func TestSSEToken_RoundTrip(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, expiresIn, err := svc.GenerateSSEToken(testClaims())
	require.NoError(t, err)
	assert.Equal(t, 300, expiresIn)

	claims, err := svc.ValidateSSEToken(token)
	require.NoError(t, err)
	assert.Equal(t, testClaims().CompanyID, claims.CompanyID)
	assert.Equal(t, user.RoleManager, claims.Role)
	require.NotNil(t, claims.EmployeeID)
}

func TestValidateSSEToken_RejectsAccessToken(t *testing.T) {
	svc := NewJWTService("test-secret", "1h")

	token, _, err := svc.GenerateAccessToken(testClaims())
	require.NoError(t, err)

	_, err = svc.ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestValidateSSEToken_RejectsForeignSignature(t *testing.T) {
	other := NewJWTService("other-secret", "1h")
	token, _, err := other.GenerateSSEToken(testClaims())
	require.NoError(t, err)

	_, err = NewJWTService("test-secret", "1h").ValidateSSEToken(token)
	assert.Error(t, err)
}

func TestClaimsFromMap_RequiresCompany(t *testing.T) {
	_, err := ClaimsFromMap(map[string]interface{}{"user_id": "u"})
	assert.ErrorIs(t, err, user.ErrCompanyIDRequired)
}

func TestClaimsFromMap_RejectsUnknownRole(t *testing.T) {
	_, err := ClaimsFromMap(map[string]interface{}{
		"user_id":    "u",
		"company_id": "c",
		"role":       "superuser",
	})
	assert.Error(t, err)
}
