package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"os"
	"strings"

	"marketplace-service/models"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

const actorContextKey = "actor"

// Actor is the authenticated identity resolved from the request, carried
// explicitly through the handler chain.
type Actor struct {
	UserID uuid.UUID
	Role   string
}

func (a Actor) IsAdmin() bool {
	return a.Role == models.RoleAdmin
}

// AuthMiddleware validates the bearer token and attaches the resolved
// Actor to the request context.
func AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Missing bearer token"})
			return
		}

		actor, err := parseToken(strings.TrimPrefix(header, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"success": false, "error": "unauthenticated", "message": "Invalid or expired token"})
			return
		}

		c.Set(actorContextKey, actor)
		c.Next()
	}
}

// AdminOnly gates a route group to administrators. Must run after
// AuthMiddleware.
func AdminOnly() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, err := GetActor(c)
		if err != nil || !actor.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"success": false, "error": "forbidden", "message": "Administrator access required"})
			return
		}
		c.Next()
	}
}

// GetActor returns the Actor set by AuthMiddleware.
func GetActor(c *gin.Context) (Actor, error) {
	if val, ok := c.Get(actorContextKey); ok {
		if actor, ok := val.(Actor); ok {
			return actor, nil
		}
	}
	return Actor{}, errors.New("actor not found in context")
}

func parseToken(tokenStr string) (Actor, error) {
	secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
	if secret == "" {
		return Actor{}, fmt.Errorf("JWT secret not configured")
	}

	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || token == nil || !token.Valid {
		return Actor{}, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return Actor{}, fmt.Errorf("invalid token claims")
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return Actor{}, fmt.Errorf("invalid subject claim")
	}

	role, _ := claims["role"].(string)
	if role == "" {
		role = models.RoleUser
	}

	return Actor{UserID: userID, Role: role}, nil
}
