package service

import (
	"context"
	"testing"
	"time"

	"skillshare/internal/database"
	"skillshare/internal/models"
	"skillshare/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newNotificationService(t *testing.T) (*NotificationService, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.AllModels()...))

	svc := NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		nil,
		30,
	)
	return svc, db
}

func TestCreateNotificationSelfAction(t *testing.T) {
	svc, _ := newNotificationService(t)

	n, err := svc.CreateNotification(context.Background(), CreateNotificationInput{
		RecipientID: 1,
		ActorID:     1,
		Type:        models.NotificationLike,
		Message:     "self like",
	})
	require.NoError(t, err)
	assert.Nil(t, n, "self-actions must not create notifications")
}

func TestSweepExpired(t *testing.T) {
	svc, db := newNotificationService(t)
	ctx := context.Background()

	user := &models.User{Username: "sweeper", Email: "sweeper@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	fresh := &models.Notification{
		RecipientID: user.ID,
		Type:        models.NotificationLike,
		Message:     "recent",
	}
	require.NoError(t, db.Create(fresh).Error)

	stale := &models.Notification{
		RecipientID: user.ID,
		Type:        models.NotificationFollow,
		Message:     "ancient",
	}
	require.NoError(t, db.Create(stale).Error)
	// push the second row past the 30-day retention window
	require.NoError(t, db.Model(stale).
		Update("created_at", time.Now().AddDate(0, 0, -31)).Error)

	removed, err := svc.SweepExpired(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, removed)

	page, err := svc.ListNotifications(ctx, user.ID, 0, 20)
	require.NoError(t, err)
	require.Len(t, page.Content, 1)
	assert.Equal(t, "recent", page.Content[0].Message)
}

func TestCleanupIsPerUser(t *testing.T) {
	svc, db := newNotificationService(t)
	ctx := context.Background()

	a := &models.User{Username: "usera", Email: "usera@example.com", Password: "x"}
	b := &models.User{Username: "userb", Email: "userb@example.com", Password: "x"}
	require.NoError(t, db.Create(a).Error)
	require.NoError(t, db.Create(b).Error)

	for _, u := range []*models.User{a, b} {
		n := &models.Notification{RecipientID: u.ID, Type: models.NotificationLike, Message: "old"}
		require.NoError(t, db.Create(n).Error)
		require.NoError(t, db.Model(n).
			Update("created_at", time.Now().AddDate(0, 0, -40)).Error)
	}

	require.NoError(t, svc.Cleanup(ctx, a.ID))

	pageA, err := svc.ListNotifications(ctx, a.ID, 0, 20)
	require.NoError(t, err)
	assert.Empty(t, pageA.Content)

	pageB, err := svc.ListNotifications(ctx, b.ID, 0, 20)
	require.NoError(t, err)
	assert.Len(t, pageB.Content, 1, "cleanup must only touch the caller's rows")
}
