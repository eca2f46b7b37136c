package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/quillpress/quillpress-backend/internal/common"
	"github.com/quillpress/quillpress-backend/internal/domain"
	"github.com/quillpress/quillpress-backend/pkg/jwt"
)

const principalKey = "principal"

// JWTAuth resolves the caller into a Principal and aborts with 401 when the
// bearer token is missing or invalid
func JWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, err := resolvePrincipal(c, jwtManager)
		if err != nil {
			common.AbortWithError(c, err)
			return
		}
		c.Set(principalKey, principal)
		c.Next()
	}
}

// OptionalJWTAuth resolves a Principal when a token is present but lets
// anonymous requests through. Used on reader-facing routes.
func OptionalJWTAuth(jwtManager *jwt.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") != "" {
			if principal, err := resolvePrincipal(c, jwtManager); err == nil {
				c.Set(principalKey, principal)
			}
		}
		c.Next()
	}
}

func resolvePrincipal(c *gin.Context, jwtManager *jwt.Manager) (domain.Principal, error) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return domain.Principal{}, common.ErrUnauthorized
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return domain.Principal{}, common.ErrUnauthorized
	}

	claims, err := jwtManager.VerifyToken(parts[1])
	if err != nil {
		if errors.Is(err, jwt.ErrExpiredToken) {
			return domain.Principal{}, common.ErrExpiredToken
		}
		return domain.Principal{}, common.ErrInvalidToken
	}

	return domain.Principal{
		ID:    claims.UserID,
		Email: claims.Email,
		Role:  domain.Role(claims.Role),
	}, nil
}

// GetPrincipal extracts the authenticated Principal from context.
// Zero value means anonymous.
func GetPrincipal(c *gin.Context) domain.Principal {
	value, exists := c.Get(principalKey)
	if !exists {
		return domain.Principal{}
	}
	if p, ok := value.(domain.Principal); ok {
		return p
	}
	return domain.Principal{}
}
