package repository

import (
	"context"
	"strings"

	"plume/internal/cache"
	"plume/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines the interface for post data operations
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error)
	GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error)
	List(ctx context.Context, limit, offset int, currentUserID uint, category string) ([]*models.Post, int64, error)
	Update(ctx context.Context, post *models.Post) error
	Delete(ctx context.Context, id uint) error
	IsLiked(ctx context.Context, userID, postID uint) (bool, error)
	Like(ctx context.Context, userID, postID uint) error
	Unlike(ctx context.Context, userID, postID uint) error
	LikesCount(ctx context.Context, postID uint) (int64, error)

	// Search retrievals. TextSearch uses the store's full-text index and
	// populates TextRank, ordered by rank when orderByRank is set and by
	// recency otherwise. FuzzySearch matches every token as a substring of
	// title or content, newest first. Each path is limited independently, so
	// callers see at most limit candidates per path.
	TextSearch(ctx context.Context, query string, limit, offset int, orderByRank bool, currentUserID uint) ([]*models.Post, error)
	FuzzySearch(ctx context.Context, tokens []string, limit int, currentUserID uint) ([]*models.Post, error)

	// Suggestion retrievals; both project titles.
	SuggestScatter(ctx context.Context, pattern string, limit int) ([]string, error)
	SuggestSubstring(ctx context.Context, query string, limit int) ([]string, error)
}

// postRepository implements PostRepository
type postRepository struct {
	db *gorm.DB
}

// NewPostRepository creates a new post repository
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	err := r.db.WithContext(ctx).Create(post).Error
	if err == nil {
		cache.InvalidatePostLists(ctx)
	}
	return err
}

func (r *postRepository) GetByID(ctx context.Context, id uint, currentUserID uint) (*models.Post, error) {
	var post models.Post

	var err error
	if currentUserID == 0 {
		err = cache.Aside(ctx, cache.PostKey(id), &post, cache.PostTTL, func() error {
			return r.applyPostDetails(r.db.WithContext(ctx), 0).
				Preload("User").
				First(&post, id).Error
		})
	} else {
		err = r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
			Preload("User").
			First(&post, id).Error
	}

	if err != nil {
		return nil, err
	}
	return &post, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID uint, limit, offset int, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	err := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// cachedPostList is the envelope stored for anonymous first pages of the
// post feed, the only list shape shared by every visitor.
type cachedPostList struct {
	Posts []*models.Post `json:"posts"`
	Total int64          `json:"total"`
}

func (r *postRepository) List(ctx context.Context, limit, offset int, currentUserID uint, category string) ([]*models.Post, int64, error) {
	var posts []*models.Post
	var total int64

	cacheable := currentUserID == 0 && category == "" && limit > 0
	var listKey string
	if cacheable {
		listKey = cache.PostListKey(offset/limit+1, limit)
		var cached cachedPostList
		if cache.GetJSON(ctx, listKey, &cached) {
			return cached.Posts, cached.Total, nil
		}
	}

	countQuery := r.db.WithContext(ctx).Model(&models.Post{})
	if category != "" {
		countQuery = countQuery.Where("category = ?", category)
	}
	if err := countQuery.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	base := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User")
	if category != "" {
		base = base.Where("category = ?", category)
	}
	err := base.
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, 0, err
	}

	if cacheable {
		cache.SetJSON(ctx, listKey, cachedPostList{Posts: posts, Total: total}, cache.PostListTTL)
	}
	return posts, total, nil
}

func (r *postRepository) Update(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Save(post).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, post.ID)
	cache.InvalidatePostLists(ctx)
	return nil
}

func (r *postRepository) Delete(ctx context.Context, id uint) error {
	if err := r.db.WithContext(ctx).Delete(&models.Post{}, id).Error; err != nil {
		return err
	}
	cache.InvalidatePost(ctx, id)
	cache.InvalidatePostLists(ctx)
	return nil
}

func (r *postRepository) IsLiked(ctx context.Context, userID, postID uint) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id = ?", userID, postID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *postRepository) Like(ctx context.Context, userID, postID uint) error {
	// INSERT ... ON CONFLICT DO NOTHING keeps likes a set under concurrent
	// requests without surfacing duplicate key errors
	result := r.db.WithContext(ctx).Exec(
		`INSERT INTO likes (user_id, post_id, created_at)
		 VALUES (?, ?, NOW())
		 ON CONFLICT (user_id, post_id) DO NOTHING`,
		userID, postID,
	)
	if result.Error == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return result.Error
}

func (r *postRepository) Unlike(ctx context.Context, userID, postID uint) error {
	// Hard delete the like record (not soft delete)
	err := r.db.WithContext(ctx).Unscoped().Where("user_id = ? AND post_id = ?", userID, postID).Delete(&models.Like{}).Error
	if err == nil {
		cache.InvalidatePost(ctx, postID)
	}
	return err
}

func (r *postRepository) LikesCount(ctx context.Context, postID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ?", postID).
		Count(&count).Error
	return count, err
}

func (r *postRepository) TextSearch(ctx context.Context, query string, limit, offset int, orderByRank bool, currentUserID uint) ([]*models.Post, error) {
	var posts []*models.Post
	tsVector := "to_tsvector('english', coalesce(title,'') || ' ' || coalesce(content,''))"

	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count, " +
		"ts_rank(" + tsVector + ", plainto_tsquery('english', ?)) as text_rank"

	var base *gorm.DB
	if currentUserID != 0 {
		base = r.db.WithContext(ctx).
			Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", query, currentUserID)
	} else {
		base = r.db.WithContext(ctx).
			Select(selectQuery+", false as liked", query)
	}

	order := "created_at DESC"
	if orderByRank {
		order = "text_rank DESC"
	}

	err := base.
		Preload("User").
		Where(tsVector+" @@ plainto_tsquery('english', ?)", query).
		Order(order).
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

// likeEscaper neutralizes the ILIKE metacharacters in user-supplied text so
// a token like "100%" matches literally instead of matching everything.
// Backslash is Postgres's default LIKE escape character.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *postRepository) FuzzySearch(ctx context.Context, tokens []string, limit int, currentUserID uint) ([]*models.Post, error) {
	if len(tokens) == 0 {
		return nil, nil
	}

	base := r.applyPostDetails(r.db.WithContext(ctx), currentUserID).
		Preload("User")

	// Every token must appear somewhere in the title or content
	for _, tok := range tokens {
		like := "%" + escapeLike(tok) + "%"
		base = base.Where("(title ILIKE ? OR content ILIKE ?)", like, like)
	}

	var posts []*models.Post
	err := base.
		Order("created_at DESC").
		Limit(limit).
		Find(&posts).Error
	if err != nil {
		return nil, err
	}
	return posts, nil
}

func (r *postRepository) SuggestScatter(ctx context.Context, pattern string, limit int) ([]string, error) {
	var titles []string
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("title ~* ?", pattern).
		Order("created_at DESC").
		Limit(limit).
		Pluck("title", &titles).Error
	return titles, err
}

func (r *postRepository) SuggestSubstring(ctx context.Context, query string, limit int) ([]string, error) {
	var titles []string
	like := "%" + escapeLike(query) + "%"
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("title ILIKE ? OR content ILIKE ?", like, like).
		Order("created_at DESC").
		Limit(limit).
		Pluck("title", &titles).Error
	return titles, err
}

// applyPostDetails adds subqueries to fetch counts and liked status in a single query.
func (r *postRepository) applyPostDetails(db *gorm.DB, currentUserID uint) *gorm.DB {
	selectQuery := "posts.*, " +
		"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id AND comments.deleted_at IS NULL) as comments_count, " +
		"(SELECT COUNT(*) FROM likes WHERE likes.post_id = posts.id) as likes_count"

	if currentUserID != 0 {
		return db.Select(selectQuery+", EXISTS(SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) as liked", currentUserID)
	}

	return db.Select(selectQuery + ", false as liked")
}
