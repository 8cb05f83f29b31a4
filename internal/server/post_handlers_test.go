package server

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"plume/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestLikePost_NotifiesAuthor(t *testing.T) {
	post := &models.Post{ID: 3, Title: "Channel Patterns", UserID: 9}

	liked := false
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint, _ uint) (*models.Post, error) {
			if id == 3 {
				return post, nil
			}
			return nil, gorm.ErrRecordNotFound
		},
		isLikedFn: func(context.Context, uint, uint) (bool, error) {
			return liked, nil
		},
		likeFn: func(_ context.Context, userID, postID uint) error {
			liked = true
			return nil
		},
		likesCountFn: func(context.Context, uint) (int64, error) {
			if liked {
				return 1, nil
			}
			return 0, nil
		},
	}
	users := &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return &models.User{ID: id, Username: "alice"}, nil
		},
	}

	var mu sync.Mutex
	var created []*models.Notification
	notificationRepo := &notificationRepoStub{
		createFn: func(_ context.Context, n *models.Notification) error {
			mu.Lock()
			defer mu.Unlock()
			n.ID = uint(len(created) + 1)
			created = append(created, n)
			return nil
		},
	}

	s, app := newTestServer(t, testDeps{posts: posts, users: users, notifications: notificationRepo})

	req := httptest.NewRequest(http.MethodPut, "/api/posts/3/like", nil)
	req.Header.Set("Authorization", authHeader(t, s, 7, "alice"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var body struct {
		Liked      bool  `json:"liked"`
		LikesCount int64 `json:"likes_count"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Liked)
	assert.Equal(t, int64(1), body.LikesCount)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, created, 1)
	assert.Equal(t, uint(9), created[0].RecipientID)
	assert.Equal(t, uint(7), created[0].SenderID)
	assert.Equal(t, models.NotificationLike, created[0].Type)
}

func TestLikePost_RepeatIsNoop(t *testing.T) {
	post := &models.Post{ID: 3, Title: "Channel Patterns", UserID: 9}
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint, _ uint) (*models.Post, error) {
			return post, nil
		},
		isLikedFn: func(context.Context, uint, uint) (bool, error) {
			return true, nil
		},
		likeFn: func(context.Context, uint, uint) error {
			t.Fatal("already-liked post must not be liked again")
			return nil
		},
		likesCountFn: func(context.Context, uint) (int64, error) {
			return 1, nil
		},
	}
	notificationRepo := &notificationRepoStub{
		createFn: func(_ context.Context, n *models.Notification) error {
			t.Fatal("repeat like must not create a notification")
			return nil
		},
	}

	s, app := newTestServer(t, testDeps{posts: posts, notifications: notificationRepo})

	req := httptest.NewRequest(http.MethodPut, "/api/posts/3/like", nil)
	req.Header.Set("Authorization", authHeader(t, s, 7, "alice"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestCreatePost_RequiresAuth(t *testing.T) {
	_, app := newTestServer(t, testDeps{})

	req := jsonRequest(t, http.MethodPost, "/api/posts", map[string]string{
		"title":   "Hello",
		"content": "<p>world</p>",
	})
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreatePost(t *testing.T) {
	posts := &postRepoStub{
		createFn: func(_ context.Context, p *models.Post) error {
			p.ID = 11
			return nil
		},
		getByIDFn: func(_ context.Context, id uint, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, Title: "Hello", Category: models.CategoryOther, UserID: 7}, nil
		},
	}
	s, app := newTestServer(t, testDeps{posts: posts})

	req := jsonRequest(t, http.MethodPost, "/api/posts", map[string]string{
		"title":   "Hello",
		"content": "<p>world</p>",
	})
	req.Header.Set("Authorization", authHeader(t, s, 7, "alice"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var body struct {
		Post *models.Post `json:"post"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	require.NotNil(t, body.Post)
	assert.Equal(t, uint(11), body.Post.ID)
}

func TestDeletePost_StrangerForbidden(t *testing.T) {
	posts := &postRepoStub{
		getByIDFn: func(_ context.Context, id uint, _ uint) (*models.Post, error) {
			return &models.Post{ID: id, UserID: 9}, nil
		},
		deleteFn: func(context.Context, uint) error {
			t.Fatal("stranger must not delete the post")
			return nil
		},
	}
	s, app := newTestServer(t, testDeps{posts: posts})

	req := httptest.NewRequest(http.MethodDelete, "/api/posts/3", nil)
	req.Header.Set("Authorization", authHeader(t, s, 7, "alice"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
}
