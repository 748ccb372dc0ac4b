package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/dgrijalva/jwt-go"
)

// RoleAdmin is the role id assigned to administrator accounts.
const RoleAdmin = 0

// Token parsing errors.
var (
	ErrTokenExpired = errors.New("token has expired")
	ErrTokenInvalid = errors.New("invalid token")
)

// Claims is the decoded payload of an access or refresh token.
type Claims struct {
	Subject string
	UserID  int64
	Role    int
}

// TokenIssuer signs and parses HS256 JWTs with a shared secret.
type TokenIssuer struct {
	secret []byte
}

// NewTokenIssuer creates a TokenIssuer for the given signing secret.
func NewTokenIssuer(secret string) *TokenIssuer {
	return &TokenIssuer{secret: []byte(secret)}
}

// Issue creates a signed token carrying the subject, user id, and role,
// expiring after ttl.
func (t *TokenIssuer) Issue(subject string, userID int64, role int, ttl time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":     subject,
		"user_id": userID,
		"role":    role,
		"exp":     time.Now().Add(ttl).Unix(),
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// IssueEmailToken creates a signed token carrying only an email claim,
// used in verification links. It does not expire.
func (t *TokenIssuer) IssueEmailToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"email": email,
	})

	signed, err := token.SignedString(t.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign email token: %w", err)
	}
	return signed, nil
}

// Parse validates a signed token and extracts its claims.
// Returns ErrTokenExpired or ErrTokenInvalid on failure.
func (t *TokenIssuer) Parse(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return t.secret, nil
	})
	if err != nil {
		if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid {
		return nil, ErrTokenInvalid
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenInvalid
	}

	claims := &Claims{}
	if sub, ok := mapClaims["sub"].(string); ok {
		claims.Subject = sub
	}
	// JSON numbers decode as float64
	userID, ok := mapClaims["user_id"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	claims.UserID = int64(userID)

	role, ok := mapClaims["role"].(float64)
	if !ok {
		return nil, ErrTokenInvalid
	}
	claims.Role = int(role)

	return claims, nil
}
