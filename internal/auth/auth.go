// Package auth provides optional bearer-token authentication for the GraphQL endpoint.
package auth

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

type contextKey string

const contextKeyAuth contextKey = "auth"

// Context represents the authenticated caller.
type Context struct {
	Subject string `json:"subject"`
	Issuer  string `json:"issuer"`
}

// Anonymous is the caller when auth is disabled.
var Anonymous = &Context{Subject: "anonymous"}

// FromContext extracts the auth context from a request context.
func FromContext(ctx context.Context) *Context {
	if auth, ok := ctx.Value(contextKeyAuth).(*Context); ok {
		return auth
	}
	return Anonymous
}

// WithContext attaches an auth context.
func WithContext(ctx context.Context, a *Context) context.Context {
	return context.WithValue(ctx, contextKeyAuth, a)
}

// Validator checks HS256 tokens signed with a shared secret.
type Validator struct {
	secret []byte
	issuer string
}

// NewValidator returns a validator; issuer is checked only when non-empty.
func NewValidator(secret, issuer string) *Validator {
	return &Validator{secret: []byte(secret), issuer: issuer}
}

// Validate parses and verifies a token string.
func (v *Validator) Validate(tokenString string) (*Context, error) {
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	var claims jwt.RegisteredClaims
	_, err := jwt.ParseWithClaims(tokenString, &claims, func(t *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	subject := claims.Subject
	if subject == "" {
		subject = "unknown"
	}
	return &Context{Subject: subject, Issuer: claims.Issuer}, nil
}

// Middleware rejects requests without a valid bearer token. A nil validator
// lets every request through as anonymous.
func Middleware(v *Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		authCtx, err := v.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		c.Set("subject", authCtx.Subject)
		c.Request = c.Request.WithContext(WithContext(c.Request.Context(), authCtx))
		c.Next()
	}
}
