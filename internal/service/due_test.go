package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dbward/dbward/internal/models"
)

func dailyPolicy() *models.BackupPolicy {
	return &models.BackupPolicy{
		ID: "pol-1",
		Tiers: []models.TierRule{
			{Kind: models.TierHourly, Enabled: false, MinuteOfHour: 0},
			{Kind: models.TierDaily, Enabled: true, TimeOfDay: "02:00", KeepCount: 7},
		},
	}
}

func TestDueTiersNeverBackedUp(t *testing.T) {
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	due := DueTiers(dailyPolicy(), map[models.TierKind]time.Time{}, now)

	// Only the enabled daily tier, due immediately
	if assert.Len(t, due, 1) {
		assert.Equal(t, models.TierDaily, due[0].Kind)
	}
}

func TestDueTiersDisabledNeverDue(t *testing.T) {
	policy := &models.BackupPolicy{
		Tiers: []models.TierRule{
			{Kind: models.TierDaily, Enabled: false},
		},
	}
	now := time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

	assert.Empty(t, DueTiers(policy, map[models.TierKind]time.Time{}, now))
}

func TestDueTiersOccurrencePassed(t *testing.T) {
	policy := dailyPolicy()
	lastSuccess := map[models.TierKind]time.Time{
		models.TierDaily: time.Date(2026, time.March, 9, 2, 5, 0, 0, time.UTC),
	}

	// Before today's 02:00 slot: not due
	now := time.Date(2026, time.March, 10, 1, 0, 0, 0, time.UTC)
	assert.Empty(t, DueTiers(policy, lastSuccess, now))

	// After today's 02:00 slot: due
	now = time.Date(2026, time.March, 10, 2, 30, 0, 0, time.UTC)
	due := DueTiers(policy, lastSuccess, now)
	if assert.Len(t, due, 1) {
		assert.Equal(t, models.TierDaily, due[0].Kind)
	}
}

func TestDueTiersIndependentPerTier(t *testing.T) {
	policy := &models.BackupPolicy{
		Tiers: []models.TierRule{
			{Kind: models.TierHourly, Enabled: true, MinuteOfHour: 0},
			{Kind: models.TierWeekly, Enabled: true, DayOfWeek: 0, TimeOfDay: "03:00"},
		},
	}
	// 2026-03-10 is a Tuesday
	now := time.Date(2026, time.March, 10, 12, 30, 0, 0, time.UTC)
	lastSuccess := map[models.TierKind]time.Time{
		models.TierHourly: time.Date(2026, time.March, 10, 11, 5, 0, 0, time.UTC),
		models.TierWeekly: time.Date(2026, time.March, 8, 3, 10, 0, 0, time.UTC), // last Sunday
	}

	due := DueTiers(policy, lastSuccess, now)

	// Hourly slot at 12:00 has passed; next weekly slot is Sunday the 15th
	if assert.Len(t, due, 1) {
		assert.Equal(t, models.TierHourly, due[0].Kind)
	}
}
