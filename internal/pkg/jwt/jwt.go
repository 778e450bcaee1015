package jwt

import (
	"context"
	"fmt"
	"time"

	"github.com/cmlabs-hris/workforce-backend-go/internal/domain/user"
	"github.com/go-chi/jwtauth/v5"
	"github.com/lestrrat-go/jwx/v2/jwt"
)

const (
	TokenTypeAccess = "access"
	TokenTypeSSE    = "sse"

	sseTokenLifetime = 5 * time.Minute
)

// Claims identifies the caller of a request. Tokens are issued by the
// identity service; this service only verifies them.
type Claims struct {
	UserID     string
	CompanyID  string
	EmployeeID *string
	Role       user.Role
}

type Service interface {
	GenerateAccessToken(c Claims) (token string, expiresAt int64, err error)
	GenerateSSEToken(c Claims) (token string, expiresIn int, err error)
	ValidateSSEToken(tokenString string) (Claims, error)
	JWTAuth() *jwtauth.JWTAuth
}

type JWTService struct {
	accessTokenExpirationTime string
	tokenAuth                 *jwtauth.JWTAuth
	now                       func() time.Time
}

func (j *JWTService) JWTAuth() *jwtauth.JWTAuth {
	return j.tokenAuth
}

func NewJWTService(secretKey string, accessTokenExpirationTime string) Service {
	return &JWTService{
		accessTokenExpirationTime: accessTokenExpirationTime,
		tokenAuth:                 jwtauth.New("HS256", []byte(secretKey), nil, jwt.WithAcceptableSkew(30*time.Second)),
		now:                       time.Now,
	}
}

func (j *JWTService) claimsMap(c Claims, tokenType string, expiresAt int64) map[string]interface{} {
	return map[string]interface{}{
		"user_id":     c.UserID,
		"company_id":  c.CompanyID,
		"employee_id": returnValueOrNil(c.EmployeeID),
		"role":        string(c.Role),
		"type":        tokenType,
		"exp":         expiresAt,
	}
}

func (j *JWTService) GenerateAccessToken(c Claims) (token string, expiresAt int64, err error) {
	expDuration, err := time.ParseDuration(j.accessTokenExpirationTime)
	if err != nil {
		return "", 0, err
	}
	expiresAt = j.now().Add(expDuration).Unix()

	_, tokenString, err := j.tokenAuth.Encode(j.claimsMap(c, TokenTypeAccess, expiresAt))
	return tokenString, expiresAt, err
}

// GenerateSSEToken generates a short-lived token for SSE connections, which
// cannot carry an Authorization header from the browser.
func (j *JWTService) GenerateSSEToken(c Claims) (token string, expiresIn int, err error) {
	expiresAt := j.now().Add(sseTokenLifetime).Unix()

	_, tokenString, err := j.tokenAuth.Encode(j.claimsMap(c, TokenTypeSSE, expiresAt))
	if err != nil {
		return "", 0, err
	}

	return tokenString, int(sseTokenLifetime.Seconds()), nil
}

// ValidateSSEToken validates an SSE token and returns its claims
func (j *JWTService) ValidateSSEToken(tokenString string) (Claims, error) {
	token, err := jwtauth.VerifyToken(j.tokenAuth, tokenString)
	if err != nil {
		return Claims{}, err
	}

	claims, err := token.AsMap(context.Background())
	if err != nil {
		return Claims{}, err
	}

	if tokenType, _ := claims["type"].(string); tokenType != TokenTypeSSE {
		return Claims{}, jwt.ErrInvalidJWT()
	}

	return ClaimsFromMap(claims)
}

// ClaimsFromMap reads Claims out of decoded token claims.
func ClaimsFromMap(claims map[string]interface{}) (Claims, error) {
	var c Claims
	var ok bool

	if c.UserID, ok = claims["user_id"].(string); !ok || c.UserID == "" {
		return Claims{}, fmt.Errorf("user_id claim is missing or invalid")
	}
	if c.CompanyID, ok = claims["company_id"].(string); !ok || c.CompanyID == "" {
		return Claims{}, user.ErrCompanyIDRequired
	}
	if employeeID, ok := claims["employee_id"].(string); ok && employeeID != "" {
		c.EmployeeID = &employeeID
	}
	role, _ := claims["role"].(string)
	c.Role = user.Role(role)
	if !c.Role.Valid() {
		return Claims{}, fmt.Errorf("role claim %q is not recognised", role)
	}

	return c, nil
}

func returnValueOrNil(value *string) interface{} {
	if value == nil {
		return nil
	}
	return *value
}
