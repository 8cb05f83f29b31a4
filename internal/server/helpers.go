package server

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"plume/internal/middleware"
	"plume/internal/models"
	"plume/internal/observability"

	"github.com/gofiber/fiber/v2"
)

// errResponseWritten signals that a helper already wrote the error response.
// Handlers seeing it just return nil.
var errResponseWritten = errors.New("response already written")

// Pagination carries validated paging parameters.
type Pagination struct {
	Limit  int
	Offset int
	Page   int
}

// parsePagination reads page/limit query parameters, clamping limit to 100.
func parsePagination(c *fiber.Ctx, defaultLimit int) Pagination {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	limit := c.QueryInt("limit", defaultLimit)
	if limit < 1 {
		limit = defaultLimit
	}
	if limit > 100 {
		limit = 100
	}
	return Pagination{
		Limit:  limit,
		Offset: (page - 1) * limit,
		Page:   page,
	}
}

// parseID extracts a positive integer route parameter. On failure it writes a
// 400 response and returns errResponseWritten so the caller can just return nil.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := c.ParamsInt(param)
	if err != nil || id < 1 {
		_ = models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid "+humanizeParam(param)))
		return 0, errResponseWritten
	}
	return uint(id), nil
}

// humanizeParam turns a route parameter name into readable words, e.g.
// "commentId" -> "comment ID".
func humanizeParam(param string) string {
	words := splitCamel(param)
	for i, w := range words {
		if strings.EqualFold(w, "id") {
			words[i] = "ID"
		}
	}
	return strings.Join(words, " ")
}

func splitCamel(s string) []string {
	var words []string
	var current strings.Builder
	for _, r := range s {
		if unicode.IsUpper(r) && current.Len() > 0 {
			words = append(words, current.String())
			current.Reset()
		}
		current.WriteRune(unicode.ToLower(r))
	}
	if current.Len() > 0 {
		words = append(words, current.String())
	}
	return words
}

// currentUserID returns the authenticated user's ID, or 0 when the request is
// anonymous (OptionalAuth routes).
func currentUserID(c *fiber.Ctx) uint {
	if uid, ok := c.Locals("userID").(uint); ok {
		return uid
	}
	return 0
}

// isAdminByUserID is the authorization hook handed to services that need to
// distinguish admins from regular users.
func (s *Server) isAdminByUserID(ctx context.Context, userID uint) (bool, error) {
	return s.userService.IsAdmin(ctx, userID)
}

// handleServiceError maps service-layer errors onto HTTP responses and tags
// the active trace span with the failure.
func handleServiceError(c *fiber.Ctx, err error) error {
	observability.RecordErrorInContext(c.UserContext(), err)
	return models.RespondWithError(c, models.StatusForError(err), err)
}

// tokenClaimsFromRequest re-parses the bearer token on routes that need the
// raw claims (logout, refresh) rather than just the user ID.
func tokenClaimsFromRequest(c *fiber.Ctx) (string, error) {
	authHeader := c.Get("Authorization")
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return "", models.NewUnauthorizedError("Authorization required")
	}
	if _, err := middleware.ParseToken(parts[1]); err != nil {
		return "", models.NewUnauthorizedError("Invalid or expired token")
	}
	return parts[1], nil
}
