package seed

import (
	"fmt"
	"log"

	"skillshare/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm"
)

// Seeder populates the database with a realistic social mesh: users who
// follow each other, posts with likes and comments, and learning plans.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
}

// NewSeeder creates a Seeder with default options.
func NewSeeder(db *gorm.DB) *Seeder {
	return &Seeder{
		db:      db,
		factory: NewFactory(db, Options{MaxDays: 90}),
	}
}

// ClearAll wipes seeded data. Table order respects foreign keys.
func (s *Seeder) ClearAll() error {
	log.Println("Clearing existing data...")
	tables := []string{
		"notifications", "likes", "comments", "follows",
		"learning_plans", "posts", "users",
	}
	for _, table := range tables {
		if err := s.db.Exec("DELETE FROM " + table).Error; err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}
	return nil
}

// SeedSocialMesh creates users and a follow graph between them.
func (s *Seeder) SeedSocialMesh(numUsers int) ([]*models.User, error) {
	log.Printf("Creating %d users...", numUsers)
	users := make([]*models.User, 0, numUsers)
	for i := 0; i < numUsers; i++ {
		user, err := s.factory.CreateUser()
		if err != nil {
			return nil, fmt.Errorf("create user: %w", err)
		}
		users = append(users, user)
	}

	log.Println("Building follow graph...")
	for _, follower := range users {
		// each user follows a handful of others
		for i := 0; i < gofakeit.Number(2, 8); i++ {
			followee := users[gofakeit.Number(0, len(users)-1)]
			if followee.ID == follower.ID {
				continue
			}
			follow := &models.Follow{
				FollowerID: follower.ID,
				FolloweeID: followee.ID,
			}
			// duplicate edges hit the unique index; ignore them
			_ = s.db.Create(follow).Error
		}
	}

	return users, nil
}

// SeedEngagement creates posts and scatters likes, comments and learning
// plans across the given users.
func (s *Seeder) SeedEngagement(users []*models.User, numPosts int) ([]*models.Post, error) {
	if len(users) == 0 {
		return nil, fmt.Errorf("no users to seed engagement for")
	}

	log.Printf("Creating %d posts...", numPosts)
	posts := make([]*models.Post, 0, numPosts)
	for i := 0; i < numPosts; i++ {
		author := users[gofakeit.Number(0, len(users)-1)]
		posts = append(posts, s.factory.BuildPost(author))
	}
	if err := s.factory.CreatePostsBatch(posts); err != nil {
		return nil, fmt.Errorf("create posts: %w", err)
	}

	log.Println("Scattering likes and comments...")
	for _, post := range posts {
		for i := 0; i < gofakeit.Number(0, 10); i++ {
			user := users[gofakeit.Number(0, len(users)-1)]
			_ = s.db.Create(&models.Like{UserID: user.ID, PostID: post.ID}).Error
		}
		for i := 0; i < gofakeit.Number(0, 4); i++ {
			user := users[gofakeit.Number(0, len(users)-1)]
			comment := &models.Comment{
				UserID:  user.ID,
				PostID:  post.ID,
				Content: gofakeit.Sentence(gofakeit.Number(4, 18)),
			}
			if err := s.db.Create(comment).Error; err != nil {
				return nil, fmt.Errorf("create comment: %w", err)
			}
		}
	}

	log.Println("Creating learning plans...")
	for _, user := range users {
		for i := 0; i < gofakeit.Number(0, 3); i++ {
			if err := s.db.Create(s.factory.BuildLearningPlan(user)).Error; err != nil {
				return nil, fmt.Errorf("create learning plan: %w", err)
			}
		}
	}

	return posts, nil
}
