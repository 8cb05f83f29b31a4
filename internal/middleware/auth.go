package middleware

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"plume/internal/config"
	"plume/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
)

const (
	// TokenIssuer and TokenAudience are stamped into every issued JWT and
	// verified on every request.
	TokenIssuer   = "plume-api"
	TokenAudience = "plume-client"

	// WSTicketPrefix namespaces single-use websocket tickets in Redis.
	WSTicketPrefix = "ws_ticket:"

	// BlacklistPrefix namespaces revoked JTIs in Redis.
	BlacklistPrefix = "blacklist:"
)

var cfg *config.Config

// InitMiddleware initializes authentication middleware with the given config.
func InitMiddleware(c *config.Config) {
	cfg = c
}

// ParseToken validates a signed JWT and returns its claims. The signing
// method, issuer and audience are all checked.
func ParseToken(tokenString string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token claims")
	}

	if issuer, ok := claims["iss"].(string); !ok || issuer != TokenIssuer {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token issuer")
	}
	if audience, ok := claims["aud"].(string); !ok || audience != TokenAudience {
		return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid token audience")
	}

	return claims, nil
}

// UserIDFromClaims extracts the account ID from the subject claim.
func UserIDFromClaims(claims jwt.MapClaims) (uint, error) {
	sub, ok := claims["sub"].(string)
	if !ok {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid subject claim")
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return 0, fiber.NewError(fiber.StatusUnauthorized, "Invalid user ID in token")
	}
	return uint(userID), nil
}

func parseUserID(tokenString string) (uint, error) {
	claims, err := ParseToken(tokenString)
	if err != nil {
		return 0, err
	}
	return UserIDFromClaims(claims)
}

func setAuthenticatedUser(c *fiber.Ctx, userID uint) {
	c.Locals("userID", userID)
	// Sync to UserContext for logging and downstream services
	ctx := context.WithValue(c.UserContext(), UserIDKey, userID)
	c.SetUserContext(ctx)
}

// AuthRequired enforces authentication for protected routes. Accepted
// credentials, in order: a single-use websocket ticket in the `ticket` query
// parameter (consumed on first use), then a bearer JWT. A JTI found on the
// Redis blacklist is treated as revoked.
func AuthRequired(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		isWSPath := strings.HasPrefix(c.Path(), "/api/ws")

		if ticket := c.Query("ticket"); ticket != "" && rdb != nil {
			key := WSTicketPrefix + ticket
			userIDStr, err := rdb.GetDel(c.Context(), key).Result()
			if err == nil {
				if userID, parseErr := strconv.ParseUint(userIDStr, 10, 32); parseErr == nil {
					setAuthenticatedUser(c, uint(userID))
					return c.Next()
				}
			}
			if isWSPath {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired WebSocket ticket"))
			}
		}

		tokenString := ""
		if authHeader := c.Get("Authorization"); authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}
		// WS routes must use a ticket; a token in the query string would end
		// up in proxy logs.
		if tokenString == "" && !isWSPath {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authorization required"))
		}

		claims, err := ParseToken(tokenString)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}
		userID, err := UserIDFromClaims(claims)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid user ID in token"))
		}

		if jti, exists := claims["jti"].(string); exists && jti != "" && rdb != nil {
			revoked, err := rdb.Exists(c.Context(), BlacklistPrefix+jti).Result()
			if err == nil && revoked > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Token has been revoked"))
			}
		}

		setAuthenticatedUser(c, userID)
		return c.Next()
	}
}

// OptionalAuth extracts the user ID when a valid bearer token is present but
// never rejects the request. Used by read endpoints that personalize output
// (e.g. the liked flag on posts) for signed-in users.
func OptionalAuth(c *fiber.Ctx) error {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return c.Next()
	}

	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return c.Next()
	}

	if userID, err := parseUserID(parts[1]); err == nil {
		setAuthenticatedUser(c, userID)
	}

	return c.Next()
}

// BlacklistToken revokes a token by JTI until its natural expiry.
func BlacklistToken(ctx context.Context, rdb *redis.Client, claims jwt.MapClaims) error {
	if rdb == nil {
		return nil
	}
	jti, ok := claims["jti"].(string)
	if !ok || jti == "" {
		return nil
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return fmt.Errorf("token has no expiration")
	}
	ttl := time.Until(exp.Time)
	if ttl <= 0 {
		return nil
	}
	return rdb.Set(ctx, BlacklistPrefix+jti, "1", ttl).Err()
}
