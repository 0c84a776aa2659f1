package scheduler

import (
	"context"
	"testing"
	"time"

	"skillshare/internal/database"
	"skillshare/internal/models"
	"skillshare/internal/repository"
	"skillshare/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newTestScheduler(t *testing.T) (*Scheduler, *gorm.DB) {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(database.AllModels()...))

	svc := service.NewNotificationService(
		repository.NewNotificationRepository(db),
		repository.NewUserRepository(db),
		repository.NewPostRepository(db),
		repository.NewCommentRepository(db),
		nil,
		30,
	)

	s, err := New(svc)
	require.NoError(t, err)
	return s, db
}

func TestStartStop(t *testing.T) {
	s, _ := newTestScheduler(t)
	s.Start()

	done := s.Stop()
	select {
	case <-done.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("scheduler did not stop in time")
	}
}

func TestSweepNotifications(t *testing.T) {
	s, db := newTestScheduler(t)

	user := &models.User{Username: "cronuser", Email: "cron@example.com", Password: "x"}
	require.NoError(t, db.Create(user).Error)

	stale := &models.Notification{RecipientID: user.ID, Type: models.NotificationLike, Message: "old"}
	require.NoError(t, db.Create(stale).Error)
	require.NoError(t, db.Model(stale).
		Update("created_at", time.Now().AddDate(0, 0, -45)).Error)

	fresh := &models.Notification{RecipientID: user.ID, Type: models.NotificationLike, Message: "new"}
	require.NoError(t, db.Create(fresh).Error)

	s.sweepNotifications()

	var remaining []models.Notification
	require.NoError(t, db.WithContext(context.Background()).Find(&remaining).Error)
	require.Len(t, remaining, 1)
	assert.Equal(t, "new", remaining[0].Message)
}
