package middleware

import (
	"net/http"
	"strings"

	"resourcehub/config"
	"resourcehub/utils"

	"github.com/gin-gonic/gin"
)

// JWTAuth 中间件：提取 Bearer token -> 校验 -> 注入 user_id
func JWTAuth(jwtCfg config.JWTConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			unauthorized(c, "missing Authorization header")
			return
		}
		token := header
		if after, ok := strings.CutPrefix(header, "Bearer "); ok {
			token = after
		}
		if token == "" {
			unauthorized(c, "empty bearer token")
			return
		}
		claims, err := utils.ParseToken(token, jwtCfg.Secret)
		if err != nil {
			unauthorized(c, "invalid token")
			return
		}
		c.Set("user_id", claims.UserID)
		c.Next()
	}
}

func unauthorized(c *gin.Context, msg string) {
	c.JSON(http.StatusUnauthorized, gin.H{"error": msg})
	c.Abort()
}
