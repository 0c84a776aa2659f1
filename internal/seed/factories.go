// Package seed provides helpers to create test and demo data for the
// application database. These helpers are intended for development and
// testing only.
package seed

import (
	"fmt"
	"log"
	"math/rand"
	"time"

	"skillshare/internal/models"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options tunes seeding behaviour.
type Options struct {
	// DryRun builds entities without persisting them.
	DryRun bool
	// SkipBcrypt stores plaintext passwords for faster dev seeding.
	SkipBcrypt bool
	// MaxDays spreads created_at timestamps over this many past days.
	MaxDays int
}

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by seed presets and tests.
type Factory struct {
	db   *gorm.DB
	opts Options
	rng  *rand.Rand
	// synthetic ID counter when running in DryRun mode
	nextID uint
}

// NewFactory creates a new Factory bound to the provided Gorm DB.
func NewFactory(db *gorm.DB, opts Options) *Factory {
	// seed gofakeit for richer content
	gofakeit.Seed(time.Now().UnixNano())
	return &Factory{
		db:     db,
		opts:   opts,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
		nextID: 1000,
	}
}

// spreadCreatedAt returns a timestamp scattered over the configured window.
func (f *Factory) spreadCreatedAt() time.Time {
	maxDays := f.opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	daysBack := f.rng.Intn(maxDays)
	hoursBack := f.rng.Intn(24)
	minsBack := f.rng.Intn(60)
	return time.Now().Add(-time.Duration(daysBack)*24*time.Hour -
		time.Duration(hoursBack)*time.Hour - time.Duration(minsBack)*time.Minute)
}

// CreateUser constructs and persists a sample `models.User`.
// Optional override functions may modify the generated user before saving.
func (f *Factory) CreateUser(overrides ...func(*models.User)) (*models.User, error) {
	user := &models.User{
		Username:       gofakeit.Username() + fmt.Sprintf("%d", gofakeit.Number(100, 999)),
		Email:          gofakeit.Email(),
		Bio:            gofakeit.Sentence(10),
		ProfilePicture: fmt.Sprintf("https://i.pravatar.cc/150?u=%s", gofakeit.UUID()),
		Provider:       models.ProviderLocal,
	}

	// Password handling: allow skipping bcrypt in dev fast mode
	if f.opts.SkipBcrypt {
		user.Password = "password123"
	} else {
		hashedPassword, _ := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.DefaultCost)
		user.Password = string(hashedPassword)
	}

	for _, override := range overrides {
		override(user)
	}

	if f.opts.DryRun {
		f.nextID++
		user.ID = f.nextID
		log.Printf("[dry-run] CreateUser: %s", user.Username)
		return user, nil
	}

	if err := f.db.Create(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// BuildPost constructs a post without persisting it. Useful for batching.
func (f *Factory) BuildPost(user *models.User, overrides ...func(*models.Post)) *models.Post {
	mediaType := models.MediaTypePhoto
	mediaURLs := []string{
		fmt.Sprintf("https://picsum.photos/seed/%s/800/800", gofakeit.UUID()),
	}
	if f.rng.Intn(5) == 0 {
		mediaType = models.MediaTypeVideo
		mediaURLs = []string{
			fmt.Sprintf("https://example.com/videos/%s.mp4", gofakeit.UUID()),
		}
	}

	post := &models.Post{
		UserID:      user.ID,
		Description: gofakeit.Paragraph(1, 3, 5, "\n"),
		MediaURLs:   mediaURLs,
		MediaType:   mediaType,
	}
	post.CreatedAt = f.spreadCreatedAt()

	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePostsBatch persists multiple posts in a single DB call when possible.
func (f *Factory) CreatePostsBatch(posts []*models.Post) error {
	if f.opts.DryRun {
		for _, p := range posts {
			f.nextID++
			p.ID = f.nextID
		}
		log.Printf("[dry-run] CreatePostsBatch: %d posts (no DB write)", len(posts))
		return nil
	}
	return f.db.Create(&posts).Error
}

// BuildLearningPlan constructs a plausible learning plan for a user.
func (f *Factory) BuildLearningPlan(user *models.User) *models.LearningPlan {
	topics := make([]string, 0, 3)
	for i := 0; i < 1+f.rng.Intn(3); i++ {
		topics = append(topics, gofakeit.BuzzWord())
	}
	resources := []string{
		gofakeit.URL(),
		"book:" + gofakeit.BookTitle(),
		"course:" + gofakeit.BuzzWord(),
	}

	start := time.Now().AddDate(0, 0, 1+f.rng.Intn(14))
	statuses := []models.PlanStatus{
		models.PlanNotStarted,
		models.PlanInProgress,
		models.PlanCompleted,
	}

	return &models.LearningPlan{
		UserID:      user.ID,
		Title:       "Learn " + gofakeit.BuzzWord(),
		Description: gofakeit.Sentence(12),
		Topics:      topics,
		Resources:   resources,
		StartDate:   start,
		EndDate:     start.AddDate(0, 1+f.rng.Intn(3), 0),
		Status:      statuses[f.rng.Intn(len(statuses))],
	}
}
