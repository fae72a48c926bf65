package middleware

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"admissions/pkg/ctxutil"
	pkgerrors "admissions/pkg/errors"
	"admissions/pkg/logging"
)

// Auth verifies bearer tokens issued for console users. Requests without a
// token pass through anonymously; mutations then fail the identity guard.
type Auth struct {
	secret []byte
	issuer string
}

func NewAuth(secret, issuer string) *Auth {
	return &Auth{secret: []byte(secret), issuer: issuer}
}

func (a *Auth) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		token, ok := strings.CutPrefix(header, "Bearer ")
		if !ok {
			a.reject(c, errors.New("authorization header must use the Bearer scheme"))
			return
		}
		userID, err := a.Verify(token)
		if err != nil {
			a.reject(c, err)
			return
		}

		ctx := ctxutil.WithUserID(c.Request.Context(), userID)
		ctx = logging.WithUserID(ctx, userID)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func (a *Auth) reject(c *gin.Context, err error) {
	_ = c.Error(err)
	appErr := pkgerrors.ErrUnauthorized.WithCause(err)
	c.AbortWithStatusJSON(appErr.Status, pkgerrors.ToErrorResponse(appErr))
}

// Verify checks signature, expiry and issuer and returns the subject.
func (a *Auth) Verify(token string) (string, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if a.issuer != "" {
		opts = append(opts, jwt.WithIssuer(a.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (interface{}, error) {
		return a.secret, nil
	}, opts...)
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("invalid token: subject is required")
	}
	return claims.Subject, nil
}

// Issue signs a token for userID, valid for ttl.
func (a *Auth) Issue(userID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    a.issuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
}

// Subject reads the subject of token without verifying it. Clients use it to
// learn their own identity; the server never trusts it.
func Subject(token string) (string, error) {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return "", fmt.Errorf("malformed token: %w", err)
	}
	if claims.Subject == "" {
		return "", errors.New("token has no subject")
	}
	return claims.Subject, nil
}
