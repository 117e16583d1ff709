package helpers

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/internal/repository"
	"github.com/lightera/bundokai/pkg/pg"
	"github.com/lightera/bundokai/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func SetupTestDB(t *testing.T) *pg.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&repository.ParticipantEntity{},
		&repository.DependentEntity{},
		&repository.CheckInEntity{},
		&repository.DeliveryItemEntity{},
		&repository.DeliveryLogEntity{},
		&repository.EmailLogEntity{},
	)
	require.NoError(t, err)

	pgDB := &pg.DB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	return pgDB
}

func SetupTestRedis(t *testing.T) (*miniredis.Miniredis, redis.RedisAdapter) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	adapter, err := redis.NewRedisAdapter("test", "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	return mr, adapter
}

func CreateTestParticipant(t *testing.T, db *pg.DB, name, email, code string) *repository.ParticipantEntity {
	ctx := context.Background()
	p := &repository.ParticipantEntity{
		Name:  name,
		Email: email,
		Code:  code,
	}
	err := db.Write(ctx).Create(p).Error
	require.NoError(t, err)
	return p
}

func CreateTestCheckIn(t *testing.T, db *pg.DB, participantID int64, station string) *repository.CheckInEntity {
	ctx := context.Background()
	c := &repository.CheckInEntity{
		ParticipantID: participantID,
		CheckinTime:   time.Now(),
		Station:       station,
		Status:        model.CheckinStatusCheckedIn,
	}
	err := db.Write(ctx).Create(c).Error
	require.NoError(t, err)
	return c
}

func CreateTestItem(t *testing.T, db *pg.DB, name, category string, stock int) *repository.DeliveryItemEntity {
	ctx := context.Background()
	item := &repository.DeliveryItemEntity{
		Name:         name,
		Category:     category,
		InitialStock: stock,
		CurrentStock: stock,
	}
	err := db.Write(ctx).Create(item).Error
	require.NoError(t, err)
	return item
}

func WaitForCondition(t *testing.T, timeout time.Duration, condition func() bool) bool {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return true
		}
		time.Sleep(10 * time.Millisecond)
	}
	return false
}

func AssertEventually(t *testing.T, timeout time.Duration, condition func() bool, msg string) {
	if !WaitForCondition(t, timeout, condition) {
		t.Fatal(msg)
	}
}

func ContextWithTimeout(timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), timeout)
}

func Ptr[T any](v T) *T {
	return &v
}
