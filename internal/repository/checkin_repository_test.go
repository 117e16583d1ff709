package repository

import (
	"context"
	"testing"
	"time"

	"github.com/lightera/bundokai/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedParticipant(t *testing.T, repo *ParticipantRepository, name, code string) *model.Participant {
	t.Helper()
	p, err := repo.Create(context.Background(), &model.Participant{
		Name:  name,
		Email: name + "@example.com",
		Code:  code,
	}, nil)
	require.NoError(t, err)
	return p
}

func TestCheckInRepository_Create(t *testing.T) {
	db := setupTestDB(t).DB
	participants := NewParticipantRepository(db)
	repo := NewCheckInRepository(db)
	ctx := context.Background()

	p := seedParticipant(t, participants, "maria", "AB12CD34")

	t.Run("first check-in succeeds with defaults", func(t *testing.T) {
		c, err := repo.Create(ctx, &model.CheckIn{ParticipantID: p.ID})
		require.NoError(t, err)
		assert.NotZero(t, c.ID)
		assert.Equal(t, model.StationMain, c.Station)
		assert.Equal(t, model.CheckinStatusCheckedIn, c.Status)
	})

	t.Run("second check-in loses on the unique index", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.CheckIn{ParticipantID: p.ID, Station: model.StationManual})
		assert.ErrorIs(t, err, ErrDuplicateCheckin)

		n, err := repo.Count(ctx)
		require.NoError(t, err)
		assert.Equal(t, int64(1), n)
	})
}

func TestCheckInRepository_GetByParticipant(t *testing.T) {
	db := setupTestDB(t).DB
	participants := NewParticipantRepository(db)
	repo := NewCheckInRepository(db)
	ctx := context.Background()

	p := seedParticipant(t, participants, "maria", "AB12CD34")

	t.Run("absent check-in is nil, not an error", func(t *testing.T) {
		c, err := repo.GetByParticipant(ctx, p.ID)
		require.NoError(t, err)
		assert.Nil(t, c)
	})

	t.Run("present check-in is returned", func(t *testing.T) {
		_, err := repo.Create(ctx, &model.CheckIn{ParticipantID: p.ID, Operator: "gate-1"})
		require.NoError(t, err)

		c, err := repo.GetByParticipant(ctx, p.ID)
		require.NoError(t, err)
		require.NotNil(t, c)
		assert.Equal(t, "gate-1", c.Operator)
	})
}

func TestCheckInRepository_Recent(t *testing.T) {
	db := setupTestDB(t).DB
	participants := NewParticipantRepository(db)
	repo := NewCheckInRepository(db)
	ctx := context.Background()

	base := time.Date(2025, 12, 13, 9, 0, 0, 0, time.UTC)
	for i, name := range []string{"ana", "bia", "caio"} {
		p := seedParticipant(t, participants, name, "CODE000"+string(rune('1'+i)))
		_, err := repo.Create(ctx, &model.CheckIn{
			ParticipantID: p.ID,
			CheckinTime:   base.Add(time.Duration(i) * time.Minute),
		})
		require.NoError(t, err)
	}

	recent, err := repo.Recent(ctx, 2)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "caio", recent[0].Name)
	assert.Equal(t, "09:02", recent[0].CheckinTime)
	assert.Equal(t, "bia", recent[1].Name)
}

func TestCheckInRepository_CountByHour(t *testing.T) {
	db := setupTestDB(t).DB
	participants := NewParticipantRepository(db)
	repo := NewCheckInRepository(db)
	ctx := context.Background()

	day := time.Date(2025, 12, 13, 0, 0, 0, 0, time.UTC)
	times := []time.Time{
		day.Add(9 * time.Hour),
		day.Add(9*time.Hour + 30*time.Minute),
		day.Add(14 * time.Hour),
	}
	for i, ct := range times {
		p := seedParticipant(t, participants, "p"+string(rune('a'+i)), "CODE000"+string(rune('1'+i)))
		_, err := repo.Create(ctx, &model.CheckIn{ParticipantID: p.ID, CheckinTime: ct})
		require.NoError(t, err)
	}

	buckets, err := repo.CountByHour(ctx, day)
	require.NoError(t, err)
	require.Len(t, buckets, 24)

	assert.Equal(t, int64(2), buckets[9].Count)
	assert.Equal(t, int64(1), buckets[14].Count)
	assert.Equal(t, int64(0), buckets[0].Count)
	assert.Equal(t, 23, buckets[23].Hour)
}
