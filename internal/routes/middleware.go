package routes

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"taskboard/backend/internal/handlers"
	"taskboard/backend/internal/services"
)

// AuthMiddleware はJWTトークンを検証し、ユーザー情報をコンテキストに設定するミドルウェアです。
func AuthMiddleware(jwtService *services.JWTService) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			abortUnauthorized(c, "Authorization header is required")
			return
		}
		// "Bearer " プレフィックスを削除
		if !strings.HasPrefix(tokenString, "Bearer ") {
			abortUnauthorized(c, "Invalid authorization header")
			return
		}
		tokenString = tokenString[len("Bearer "):]

		identity, err := jwtService.ValidateToken(tokenString)
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set("user_id", identity.ID)
		c.Set("user_email", identity.Email)
		c.Next()
	}
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, handlers.Response{Message: message})
}
