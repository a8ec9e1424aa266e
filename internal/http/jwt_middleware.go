package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"branch-api/internal/domain"
	"branch-api/internal/service"
)

const authUserKey = "auth_user"

// JWTAuthMiddleware valida el bearer token y resuelve el usuario dueño del
// subject. Expirado, malformado, firma inválida y subject inexistente se
// distinguen en logs pero responden todos el mismo 401 genérico.
func JWTAuthMiddleware(logger *zap.Logger, tokenSvc *service.TokenService, userSvc *service.UserService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if tokenSvc == nil || userSvc == nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "auth not configured"})
			c.Abort()
			return
		}

		header := strings.TrimSpace(c.GetHeader("Authorization"))
		if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		token := strings.TrimSpace(header[len("Bearer "):])
		username, err := tokenSvc.Verify(token)
		if err != nil {
			if logger != nil {
				logger.Warn("token rejected", zap.Error(err))
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		user, err := userSvc.GetByUsername(c.Request.Context(), username)
		if err != nil {
			if logger != nil {
				if errors.Is(err, service.ErrUserNotFound) {
					// Token válido de una cuenta que ya no existe.
					logger.Warn("token with unknown subject", zap.String("subject", username))
				} else {
					logger.Error("resolve token subject failed", zap.Error(err))
				}
			}
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			c.Abort()
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// GetAuthUser obtiene el usuario autenticado desde el contexto.
func GetAuthUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}
