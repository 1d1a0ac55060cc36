package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"ecomdemo/datagen/utils"
)

const (
	CookieName     = "jwt_token"
	ContextIDKey   = "analyst_id"
	ContextMailKey = "analyst_email"
)

// AuthRequired accepts either the static X-API-KEY (when configured) or a JWT
// from the jwt_token cookie or a Bearer Authorization header.
func AuthRequired(issuer *utils.TokenIssuer, defaultToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if defaultToken != "" && c.GetHeader("X-API-KEY") == defaultToken {
			c.Next()
			return
		}

		tokenString, err := c.Cookie(CookieName)
		if err != nil || tokenString == "" {
			tokenString = strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer ")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: No token provided"})
			return
		}

		claims, err := issuer.Validate(tokenString)
		if err != nil {
			log.Debug().Err(err).Msg("rejected token")
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized: Invalid or expired token"})
			return
		}

		c.Set(ContextIDKey, claims.AnalystID)
		c.Set(ContextMailKey, claims.Email)
		c.Next()
	}
}
