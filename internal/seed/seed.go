// Package seed fills a development database with plausible demo content.
package seed

import (
	"fmt"
	"log"
	"math/rand"

	"plume/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	userCount       = 15
	postsPerUser    = 3
	maxCommentsEach = 5
	maxLikesEach    = 8

	// Every seeded account gets the same password so manual testing is easy.
	demoPassword = "Demo-pass-123!"
)

var categories = []models.PostCategory{
	models.CategoryTechnology,
	models.CategoryDesign,
	models.CategoryBusiness,
	models.CategoryLifestyle,
	models.CategoryOther,
}

// Seed wipes demo tables and repopulates them. Never run this against
// production data.
func Seed(db *gorm.DB) error {
	log.Println("Starting database seeding...")

	if err := clearData(db); err != nil {
		return fmt.Errorf("clear data: %w", err)
	}

	users, err := createUsers(db)
	if err != nil {
		return fmt.Errorf("create users: %w", err)
	}
	log.Printf("Created %d users", len(users))

	posts, err := createPosts(db, users)
	if err != nil {
		return fmt.Errorf("create posts: %w", err)
	}
	log.Printf("Created %d posts", len(posts))

	if err := createComments(db, users, posts); err != nil {
		return fmt.Errorf("create comments: %w", err)
	}
	if err := createLikes(db, users, posts); err != nil {
		return fmt.Errorf("create likes: %w", err)
	}

	log.Println("Seeding complete. All demo accounts use password " + demoPassword)
	return nil
}

func clearData(db *gorm.DB) error {
	// Children before parents.
	tables := []interface{}{
		&models.Notification{},
		&models.Like{},
		&models.Comment{},
		&models.Post{},
		&models.Contact{},
		&models.User{},
	}
	for _, table := range tables {
		if err := db.Unscoped().Where("1 = 1").Delete(table).Error; err != nil {
			return err
		}
	}
	return nil
}

func createUsers(db *gorm.DB) ([]*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(demoPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	users := make([]*models.User, 0, userCount)
	for i := 0; i < userCount; i++ {
		user := &models.User{
			Username: fmt.Sprintf("%s_%s", gofakeit.Username(), gofakeit.LetterN(4)),
			Email:    gofakeit.Email(),
			Password: string(hash),
			Bio:      gofakeit.Sentence(12),
			Avatar:   gofakeit.ImageURL(200, 200),
			IsAdmin:  i == 0,
		}
		if err := db.Create(user).Error; err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func createPosts(db *gorm.DB, users []*models.User) ([]*models.Post, error) {
	posts := make([]*models.Post, 0, len(users)*postsPerUser)
	for _, user := range users {
		for i := 0; i < postsPerUser; i++ {
			post := &models.Post{
				Title:    gofakeit.Sentence(gofakeit.Number(4, 9)),
				Content:  fmt.Sprintf("<p>%s</p><p>%s</p>", gofakeit.Paragraph(1, 4, 12, " "), gofakeit.Paragraph(1, 3, 10, " ")),
				Category: categories[rand.Intn(len(categories))],
				UserID:   user.ID,
			}
			if err := db.Create(post).Error; err != nil {
				return nil, err
			}
			posts = append(posts, post)
		}
	}
	return posts, nil
}

func createComments(db *gorm.DB, users []*models.User, posts []*models.Post) error {
	total := 0
	for _, post := range posts {
		n := rand.Intn(maxCommentsEach + 1)
		for i := 0; i < n; i++ {
			comment := &models.Comment{
				Content: gofakeit.Sentence(gofakeit.Number(6, 18)),
				UserID:  users[rand.Intn(len(users))].ID,
				PostID:  post.ID,
			}
			if err := db.Create(comment).Error; err != nil {
				return err
			}
			total++
		}
	}
	log.Printf("Created %d comments", total)
	return nil
}

func createLikes(db *gorm.DB, users []*models.User, posts []*models.Post) error {
	total := 0
	for _, post := range posts {
		n := rand.Intn(maxLikesEach + 1)
		// Pick distinct likers; the (user, post) pair is unique.
		perm := rand.Perm(len(users))
		if n > len(perm) {
			n = len(perm)
		}
		for _, idx := range perm[:n] {
			like := &models.Like{
				UserID: users[idx].ID,
				PostID: post.ID,
			}
			if err := db.Create(like).Error; err != nil {
				return err
			}
			total++
		}
	}
	log.Printf("Created %d likes", total)
	return nil
}
