package server

import (
	"github.com/gofiber/fiber/v2"

	"plume/internal/service"
)

// SearchPosts runs the dual-retrieval search over published posts.
// Query parameters: query (required), sortBy (relevance|recent|likes;
// date is an alias of recent), page, limit.
func (s *Server) SearchPosts(c *fiber.Ctx) error {
	result, err := s.searchService.Search(c.UserContext(), service.SearchInput{
		Query:         c.Query("query"),
		SortBy:        c.Query("sortBy", "relevance"),
		Page:          c.QueryInt("page", 1),
		Limit:         c.QueryInt("limit", 10),
		CurrentUserID: currentUserID(c),
	})
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"posts":        result.Posts,
		"totalResults": result.TotalResults,
		"currentPage":  result.CurrentPage,
		"totalPages":   result.TotalPages,
		"query":        c.Query("query"),
	})
}

// GetSuggestions returns up to 8 title suggestions for a partial query.
func (s *Server) GetSuggestions(c *fiber.Ctx) error {
	suggestions, err := s.searchService.Suggest(c.UserContext(), c.Query("query"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"success":     true,
		"suggestions": suggestions,
	})
}
