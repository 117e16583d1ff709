package e2e

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/lightera/bundokai/internal/mailer"
	"github.com/lightera/bundokai/internal/model"
	"github.com/lightera/bundokai/internal/repository"
	"github.com/lightera/bundokai/internal/services"
	"github.com/lightera/bundokai/pkg/pg"
	"github.com/lightera/bundokai/pkg/redis"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type testDB = pg.DB

type TestEnvironment struct {
	DB              *pg.DB
	Redis           *miniredis.Miniredis
	RedisAdapter    redis.RedisAdapter
	ParticipantRepo *repository.ParticipantRepository
	CheckInRepo     *repository.CheckInRepository
	DeliveryRepo    *repository.DeliveryRepository
	EmailRepo       *repository.EmailRepository
	Registration    *services.RegistrationService
	Checkin         *services.CheckinService
	Inventory       *services.InventoryService
	Stats           *services.StatsService
}

func setupE2EEnvironment(t *testing.T) *TestEnvironment {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)

	// Every goroutine must see the same in-memory database, and a single
	// connection also serialises sqlite writes under concurrent tests.
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(
		&repository.ParticipantEntity{},
		&repository.DependentEntity{},
		&repository.CheckInEntity{},
		&repository.DeliveryItemEntity{},
		&repository.DeliveryLogEntity{},
		&repository.EmailLogEntity{},
	)
	require.NoError(t, err)

	pgDB := &testDB{}
	pgDBValue := reflect.ValueOf(pgDB).Elem()

	readField := pgDBValue.FieldByName("read")
	writeField := pgDBValue.FieldByName("write")

	readField = reflect.NewAt(readField.Type(), readField.Addr().UnsafePointer()).Elem()
	writeField = reflect.NewAt(writeField.Type(), writeField.Addr().UnsafePointer()).Elem()

	readField.Set(reflect.ValueOf(db))
	writeField.Set(reflect.ValueOf(db))

	mr, err := miniredis.Run()
	require.NoError(t, err)

	// Use unique connection name per test to avoid global adapter caching issues
	connName := fmt.Sprintf("test-%d", time.Now().UnixNano())
	redisAdapter, err := redis.NewRedisAdapter(connName, "", &goredis.UniversalOptions{
		Addrs: []string{mr.Addr()},
	})
	require.NoError(t, err)

	participantRepo := repository.NewParticipantRepository(pgDB)
	checkinRepo := repository.NewCheckInRepository(pgDB)
	deliveryRepo := repository.NewDeliveryRepository(pgDB)
	emailRepo := repository.NewEmailRepository(pgDB)

	return &TestEnvironment{
		DB:              pgDB,
		Redis:           mr,
		RedisAdapter:    redisAdapter,
		ParticipantRepo: participantRepo,
		CheckInRepo:     checkinRepo,
		DeliveryRepo:    deliveryRepo,
		EmailRepo:       emailRepo,
		Registration:    services.NewRegistrationService(participantRepo),
		Checkin:         services.NewCheckinService(participantRepo, checkinRepo),
		Inventory:       services.NewInventoryService(participantRepo, deliveryRepo),
		Stats:           services.NewStatsService(participantRepo, checkinRepo, deliveryRepo, redisAdapter, 5*time.Second),
	}
}

func (env *TestEnvironment) Cleanup() {
	if env.Redis != nil {
		env.Redis.Close()
	}
}

func TestE2E_RegistrationAndCheckin(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	p, err := env.Registration.Register(ctx, model.RegisterRequest{
		Name:       "Maria Souza",
		Email:      "Maria.Souza@Example.com",
		Department: "Produção",
		Dependents: []model.DependentInput{
			{Name: "Pedro", Age: 7},
			{Name: "Clara", Age: 4},
		},
	})
	require.NoError(t, err)
	assert.NotZero(t, p.ID)
	assert.Len(t, p.Code, 8)
	assert.Equal(t, "maria.souza@example.com", p.Email)
	assert.Equal(t, 2, p.DependentsCount)

	result, err := env.Checkin.CheckInByCode(ctx, p.Code, "gate-1")
	require.NoError(t, err)
	assert.Equal(t, model.CheckinAccepted, result.Outcome)
	require.NotNil(t, result.Participant)
	assert.True(t, result.Participant.CheckedIn)

	var row repository.CheckInEntity
	err = env.DB.Read(ctx).Where("participant_id = ?", p.ID).First(&row).Error
	require.NoError(t, err)
	assert.Equal(t, model.StationMain, row.Station)
	assert.Equal(t, "gate-1", row.Operator)

	// Second scan of the same code keeps the original check-in.
	repeat, err := env.Checkin.CheckInByCode(ctx, p.Code, "gate-2")
	require.NoError(t, err)
	assert.Equal(t, model.CheckinDuplicate, repeat.Outcome)
	require.NotNil(t, repeat.CheckIn)
	assert.Equal(t, result.CheckIn.ID, repeat.CheckIn.ID)

	var count int64
	env.DB.Read(ctx).Model(&repository.CheckInEntity{}).Count(&count)
	assert.Equal(t, int64(1), count)
}

func TestE2E_CheckinUnknownCode(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	result, err := env.Checkin.CheckInByCode(context.Background(), "FFFFFFFF", "gate-1")
	require.NoError(t, err)
	assert.Equal(t, model.CheckinNotFound, result.Outcome)
	assert.Nil(t, result.Participant)
}

func TestE2E_DeliveryFlow(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	p, err := env.Registration.Register(ctx, model.RegisterRequest{
		Name:  "João Pereira",
		Email: "joao.pereira@example.com",
	})
	require.NoError(t, err)

	created, err := env.Inventory.SeedCatalog(ctx, []*model.DeliveryItem{
		{Name: "Cesta Natalina", Category: "Cesta Básica", InitialStock: 2, CurrentStock: 2},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, created)

	items, err := env.Inventory.ListItems(ctx)
	require.NoError(t, err)
	require.Len(t, items, 1)
	itemID := items[0].ID

	log, err := env.Inventory.RecordDelivery(ctx, model.RecordDeliveryRequest{
		ParticipantID: p.ID,
		ItemID:        itemID,
		Quantity:      2,
		Operator:      "warehouse",
	})
	require.NoError(t, err)
	assert.Equal(t, model.DeliveryStatusDelivered, log.Status)

	item, err := env.Inventory.GetItem(ctx, itemID)
	require.NoError(t, err)
	assert.Equal(t, 0, item.CurrentStock)
	assert.Equal(t, 2, item.ItemsDelivered)

	// Stock is exhausted, the next delivery must not go through.
	_, err = env.Inventory.RecordDelivery(ctx, model.RecordDeliveryRequest{
		ParticipantID: p.ID,
		ItemID:        itemID,
		Quantity:      1,
	})
	assert.ErrorIs(t, err, services.ErrInsufficientStock)

	var logCount int64
	env.DB.Read(ctx).Model(&repository.DeliveryLogEntity{}).Count(&logCount)
	assert.Equal(t, int64(1), logCount)
}

func TestE2E_DashboardStats(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	first, err := env.Registration.Register(ctx, model.RegisterRequest{
		Name:  "Maria Souza",
		Email: "maria.souza@example.com",
	})
	require.NoError(t, err)

	_, err = env.Registration.Register(ctx, model.RegisterRequest{
		Name:  "Ana Lima",
		Email: "ana.lima@example.com",
		Dependents: []model.DependentInput{
			{Name: "Lucas", Age: 10},
		},
	})
	require.NoError(t, err)

	_, err = env.Checkin.CheckInByCode(ctx, first.Code, "gate-1")
	require.NoError(t, err)

	stats, err := env.Stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), stats.TotalParticipants)
	assert.Equal(t, int64(1), stats.TotalCheckins)
	assert.Equal(t, int64(1), stats.TotalDependents)
	assert.Equal(t, int64(1), stats.PendingCheckins)
	require.Len(t, stats.RecentCheckins, 1)

	// The cached copy keeps serving even after the data moves on.
	_, err = env.Registration.Register(ctx, model.RegisterRequest{
		Name:  "Carlos Dias",
		Email: "carlos.dias@example.com",
	})
	require.NoError(t, err)

	cached, err := env.Stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), cached.TotalParticipants)

	// Expire the cache entry and the fresh numbers show up.
	env.Redis.FastForward(10 * time.Second)

	fresh, err := env.Stats.Dashboard(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), fresh.TotalParticipants)
}

func TestE2E_BulkCheckin(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	var ids []int64
	for i := 0; i < 3; i++ {
		p, err := env.Registration.Register(ctx, model.RegisterRequest{
			Name:  fmt.Sprintf("Participant %d", i),
			Email: fmt.Sprintf("participant%d@example.com", i),
		})
		require.NoError(t, err)
		ids = append(ids, p.ID)
	}

	// One of them already went through the gate.
	_, err := env.Checkin.CheckInByID(ctx, ids[0], "gate-1")
	require.NoError(t, err)

	report, err := env.Checkin.BulkCheckIn(ctx, append(ids, 99999), "admin")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Succeeded)
	assert.Equal(t, 1, report.AlreadyCheckedIn)
	assert.Equal(t, 1, report.Errors)
}

func TestE2E_QRMailBacklog(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.Registration.Register(ctx, model.RegisterRequest{
			Name:  fmt.Sprintf("Participant %d", i),
			Email: fmt.Sprintf("participant%d@example.com", i),
		})
		require.NoError(t, err)
	}

	sender := &countingSender{}
	job := mailer.NewJob(env.ParticipantRepo, env.EmailRepo, sender, mailer.JobConfig{
		BatchSize:  2,
		RatePerSec: 1000,
		Workers:    2,
	})

	report, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, report.Sent)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 3, sender.Count())

	var logged int64
	env.DB.Read(ctx).Model(&repository.EmailLogEntity{}).
		Where("status = ?", model.EmailStatusSent).Count(&logged)
	assert.Equal(t, int64(3), logged)

	// A second run finds nothing left to send.
	again, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Sent)
	assert.Equal(t, 3, sender.Count())
}

func TestE2E_ConcurrentCheckinSingleWinner(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	p, err := env.Registration.Register(ctx, model.RegisterRequest{
		Name:  "Joana Prado",
		Email: "joana.prado@example.com",
	})
	require.NoError(t, err)

	// Several scan stations read the same badge at once. The unique index
	// on participant_id arbitrates, everyone else gets the winner back.
	const stations = 8
	results := make([]*model.CheckinResult, stations)
	errs := make([]error, stations)

	var wg sync.WaitGroup
	for i := 0; i < stations; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = env.Checkin.CheckInByCode(ctx, p.Code, fmt.Sprintf("station-%d", i))
		}(i)
	}
	wg.Wait()

	accepted, duplicate := 0, 0
	for i := 0; i < stations; i++ {
		require.NoError(t, errs[i])
		switch results[i].Outcome {
		case model.CheckinAccepted:
			accepted++
		case model.CheckinDuplicate:
			duplicate++
		default:
			t.Fatalf("unexpected outcome %v", results[i].Outcome)
		}
	}
	assert.Equal(t, 1, accepted)
	assert.Equal(t, stations-1, duplicate)

	var rows int64
	env.DB.Read(ctx).Model(&repository.CheckInEntity{}).
		Where("participant_id = ?", p.ID).Count(&rows)
	assert.Equal(t, int64(1), rows)
}

func TestE2E_QRMailFailingAddressAttemptedOnce(t *testing.T) {
	env := setupE2EEnvironment(t)
	defer env.Cleanup()

	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := env.Registration.Register(ctx, model.RegisterRequest{
			Name:  fmt.Sprintf("Participant %d", i),
			Email: fmt.Sprintf("participant%d@example.com", i),
		})
		require.NoError(t, err)
	}

	// participant1 bounces on every attempt. Its failed log row keeps it
	// in the backlog query, so the run must not pick it up again.
	sender := &rejectingSender{reject: "participant1@example.com"}
	job := mailer.NewJob(env.ParticipantRepo, env.EmailRepo, sender, mailer.JobConfig{
		BatchSize:  2,
		RatePerSec: 1000,
		Workers:    2,
	})

	report, err := job.Run(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, report.Sent)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, sender.Attempts("participant1@example.com"))

	var failedLogs int64
	env.DB.Read(ctx).Model(&repository.EmailLogEntity{}).
		Where("status = ?", model.EmailStatusFailed).Count(&failedLogs)
	assert.Equal(t, int64(1), failedLogs)
}

type rejectingSender struct {
	mu       sync.Mutex
	reject   string
	attempts map[string]int
}

func (s *rejectingSender) Send(ctx context.Context, msg *mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.attempts == nil {
		s.attempts = make(map[string]int)
	}
	s.attempts[msg.To]++
	if msg.To == s.reject {
		return errors.New("mailbox unavailable")
	}
	return nil
}

func (s *rejectingSender) Attempts(to string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attempts[to]
}

type countingSender struct {
	mu    sync.Mutex
	count int
}

func (s *countingSender) Send(ctx context.Context, msg *mailer.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.count++
	return nil
}

func (s *countingSender) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.count
}
