package service

import (
	"context"
	"math"
	"regexp"
	"sort"
	"strings"
	"time"

	"plume/internal/cache"
	"plume/internal/models"
	"plume/internal/observability"
	"plume/internal/repository"
)

const (
	// Suggestion retrieval pulls up to this many titles per strategy; the
	// endpoint returns at most suggestionLimit after dedup.
	suggestScanLimit = 5
	suggestionLimit  = 8

	// Minimum query length before suggestions hit the store at all.
	suggestMinLength = 2

	maxSearchLimit     = 50
	defaultSearchLimit = 10
)

// SearchService ranks posts against a free-text query. Retrieval runs two
// paths: the store's full-text index for stemmed matches and a per-token
// substring scan for partial words the index misses. Candidates are merged,
// scored in-process, sorted, and re-sliced to the page size.
//
// Both retrievals are limited to the page size before merging, so
// TotalResults reflects the fetched window rather than the store-wide match
// count. Pages can come back shorter than the limit even when more matches
// exist.
type SearchService struct {
	postRepo repository.PostRepository
}

// NewSearchService creates a new search service.
func NewSearchService(postRepo repository.PostRepository) *SearchService {
	return &SearchService{postRepo: postRepo}
}

type SearchInput struct {
	Query         string
	SortBy        string // "relevance" (default), "recent", "likes"; "date" is accepted as an alias of "recent"
	Page          int
	Limit         int
	CurrentUserID uint
}

type SearchResult struct {
	Posts        []*models.Post
	TotalResults int
	CurrentPage  int
	TotalPages   int
}

// Search runs both retrieval paths, merges and scores the candidates, and
// returns a page of at most Limit posts.
func (s *SearchService) Search(ctx context.Context, in SearchInput) (*SearchResult, error) {
	query := strings.TrimSpace(in.Query)
	if query == "" {
		return nil, models.NewValidationError("Search query is required")
	}

	if in.Page < 1 {
		in.Page = 1
	}
	if in.Limit < 1 || in.Limit > maxSearchLimit {
		in.Limit = defaultSearchLimit
	}

	start := time.Now()
	defer func() {
		observability.SearchLatency.Observe(time.Since(start).Seconds())
	}()

	sortBy := in.SortBy
	if sortBy == "date" {
		sortBy = "recent"
	}

	tokens := strings.Fields(strings.ToLower(query))
	offset := (in.Page - 1) * in.Limit
	orderByRank := sortBy != "recent" && sortBy != "likes"

	indexed, err := s.postRepo.TextSearch(ctx, query, in.Limit, offset, orderByRank, in.CurrentUserID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	observability.SearchRequestsTotal.WithLabelValues("indexed").Inc()

	fuzzy, err := s.postRepo.FuzzySearch(ctx, tokens, in.Limit, in.CurrentUserID)
	if err != nil {
		return nil, models.NewStorageError(err)
	}
	observability.SearchRequestsTotal.WithLabelValues("fuzzy").Inc()

	// Merge with indexed results first; the fuzzy path only contributes
	// posts the index did not already return.
	merged := make([]*models.Post, 0, len(indexed)+len(fuzzy))
	seen := make(map[uint]struct{}, len(indexed))
	for _, p := range indexed {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		merged = append(merged, p)
	}
	for _, p := range fuzzy {
		if _, ok := seen[p.ID]; ok {
			continue
		}
		seen[p.ID] = struct{}{}
		merged = append(merged, p)
	}

	now := time.Now()
	for _, p := range merged {
		p.RelevanceScore = relevanceScore(p, query, tokens, now)
	}

	sortPosts(merged, sortBy)

	total := len(merged)
	totalPages := 0
	if total > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(in.Limit)))
	}

	page := merged
	if len(page) > in.Limit {
		page = page[:in.Limit]
	}

	return &SearchResult{
		Posts:        page,
		TotalResults: total,
		CurrentPage:  in.Page,
		TotalPages:   totalPages,
	}, nil
}

// relevanceScore computes the additive ranking heuristic for one post.
// Signals, in order of weight: whole-title match, title substring, per-token
// title hits, whole-query content hit, per-token content hits, engagement
// counts, and a recency bump.
func relevanceScore(p *models.Post, query string, tokens []string, now time.Time) float64 {
	title := strings.ToLower(p.Title)
	content := strings.ToLower(p.Content)
	q := strings.ToLower(strings.TrimSpace(query))

	var score float64

	if title == q {
		score += 100
	} else if strings.Contains(title, q) {
		score += 50
	}

	for _, tok := range tokens {
		if strings.Contains(title, tok) {
			score += 10
		}
	}

	if strings.Contains(content, q) {
		score += 20
	}
	for _, tok := range tokens {
		if strings.Contains(content, tok) {
			score += 3
		}
	}

	score += 0.5 * float64(p.LikesCount)
	score += 0.3 * float64(p.CommentsCount)

	age := now.Sub(p.CreatedAt)
	switch {
	case age < 7*24*time.Hour:
		score += 5
	case age < 30*24*time.Hour:
		score += 2
	}

	return score
}

// sortPosts orders the merged candidate set. Ties always fall back to post
// ID so output is deterministic for identical inputs.
func sortPosts(posts []*models.Post, sortBy string) {
	switch sortBy {
	case "recent", "date":
		sort.Slice(posts, func(i, j int) bool {
			if !posts[i].CreatedAt.Equal(posts[j].CreatedAt) {
				return posts[i].CreatedAt.After(posts[j].CreatedAt)
			}
			return posts[i].ID < posts[j].ID
		})
	case "likes":
		sort.Slice(posts, func(i, j int) bool {
			if posts[i].LikesCount != posts[j].LikesCount {
				return posts[i].LikesCount > posts[j].LikesCount
			}
			return posts[i].ID < posts[j].ID
		})
	default: // relevance
		sort.Slice(posts, func(i, j int) bool {
			if posts[i].RelevanceScore != posts[j].RelevanceScore {
				return posts[i].RelevanceScore > posts[j].RelevanceScore
			}
			return posts[i].ID < posts[j].ID
		})
	}
}

// Suggest returns up to suggestionLimit distinct post titles matching the
// partial query. Scatter matches come first (characters in order, any gaps),
// then substring matches over title or content; exact duplicate titles are
// dropped.
func (s *SearchService) Suggest(ctx context.Context, query string) ([]string, error) {
	q := strings.TrimSpace(query)
	if len(q) < suggestMinLength {
		return []string{}, nil
	}

	cacheKey := cache.SuggestKey(strings.ToLower(q))
	var cached []string
	if cache.GetJSON(ctx, cacheKey, &cached) {
		return cached, nil
	}

	scatter, err := s.postRepo.SuggestScatter(ctx, scatterPattern(q), suggestScanLimit)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	substring, err := s.postRepo.SuggestSubstring(ctx, q, suggestScanLimit)
	if err != nil {
		return nil, models.NewStorageError(err)
	}

	suggestions := dedupeTitles(append(scatter, substring...), suggestionLimit)
	cache.SetJSON(ctx, cacheKey, suggestions, cache.SuggestTTL)
	return suggestions, nil
}

// scatterPattern builds a case-insensitive regex that matches the query's
// characters in order with anything between them. Each character is escaped
// so user input can never alter the pattern's structure.
func scatterPattern(query string) string {
	parts := make([]string, 0, len(query))
	for _, r := range query {
		parts = append(parts, regexp.QuoteMeta(string(r)))
	}
	return strings.Join(parts, ".*")
}

// dedupeTitles keeps the first occurrence of each exact title, up to limit
// entries, preserving input order.
func dedupeTitles(titles []string, limit int) []string {
	out := make([]string, 0, limit)
	seen := make(map[string]struct{}, len(titles))
	for _, title := range titles {
		if _, ok := seen[title]; ok {
			continue
		}
		seen[title] = struct{}{}
		out = append(out, title)
		if len(out) == limit {
			break
		}
	}
	return out
}
