package middleware

import (
	"net/http"
	"strings"

	"supplier-kpi-service/pkg/jwtutil"
	"supplier-kpi-service/pkg/logger"
	"supplier-kpi-service/prometheus"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// AuthMiddleware verifies the bearer token and stores the caller on the context
func AuthMiddleware(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		log := logger.FromContext(c)

		tokenString := c.Request().Header.Get("Authorization")
		if tokenString == "" {
			log.Warn("Missing authorization token")
			prometheus.RecordAuthAttempt(false)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "authentication required"})
		}

		// Remove "Bearer " prefix if present
		if len(tokenString) > 7 && strings.ToUpper(tokenString[0:7]) == "BEARER " {
			tokenString = tokenString[7:]
		}

		claims, err := jwtutil.ValidateToken(tokenString)
		if err != nil {
			log.Warn("Invalid token", zap.Error(err))
			prometheus.RecordAuthAttempt(false)
			return c.JSON(http.StatusUnauthorized, echo.Map{"error": "invalid token"})
		}
		prometheus.RecordAuthAttempt(true)

		c.Set("user_id", claims.UserID)
		c.Set("email", claims.Email)
		c.Set("role", claims.Role)

		logger.SetEcho(c, log.With(
			zap.Uint("user_id", claims.UserID),
			zap.String("email", claims.Email),
		))

		return next(c)
	}
}
