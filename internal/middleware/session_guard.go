package middleware

import (
	"net/http"
	"strings"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"

	"github.com/todayscomfort/backend/internal/models"
	"github.com/todayscomfort/backend/internal/session"
)

// SessionGuard checks for a valid session JWT and a live entry in the session
// mirror before any store read happens. Either one missing means signed out:
// the guard fails closed with 401.
func SessionGuard(jwtSecret string, sessions session.Store) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			authHeader := c.Request().Header.Get("Authorization")
			if authHeader == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing Authorization header")
			}

			// Expecting "Bearer <token>"
			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid Authorization header format")
			}
			tokenString := parts[1]

			claims := &models.JwtCustomClaims{}
			token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, echo.NewHTTPError(http.StatusUnauthorized, "Unexpected signing method")
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token")
			}

			// The token alone is not enough: sign-out clears the session
			// mirror, which invalidates still-unexpired tokens.
			if _, err := sessions.Identity(c.Request().Context(), claims.UID); err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Session expired, please sign in again")
			}

			c.Set("uid", claims.UID)
			c.Set("user", claims)

			return next(c)
		}
	}
}

// UID extracts the authenticated user's UID set by SessionGuard; empty when
// the request is unauthenticated
func UID(c echo.Context) string {
	uid, _ := c.Get("uid").(string)
	return uid
}
