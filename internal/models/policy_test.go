package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func at(year int, month time.Month, day, hour, minute int) time.Time {
	return time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
}

func TestNextOccurrenceHourly(t *testing.T) {
	rule := TierRule{Kind: TierHourly, MinuteOfHour: 15}

	// Before the slot in the current hour
	next := rule.NextOccurrence(at(2026, time.March, 10, 9, 0))
	assert.Equal(t, at(2026, time.March, 10, 9, 15), next)

	// Exactly on the slot moves to the next hour
	next = rule.NextOccurrence(at(2026, time.March, 10, 9, 15))
	assert.Equal(t, at(2026, time.March, 10, 10, 15), next)

	// Past the slot moves to the next hour
	next = rule.NextOccurrence(at(2026, time.March, 10, 9, 40))
	assert.Equal(t, at(2026, time.March, 10, 10, 15), next)
}

func TestNextOccurrenceDaily(t *testing.T) {
	rule := TierRule{Kind: TierDaily, TimeOfDay: "02:00"}

	next := rule.NextOccurrence(at(2026, time.March, 10, 1, 30))
	assert.Equal(t, at(2026, time.March, 10, 2, 0), next)

	next = rule.NextOccurrence(at(2026, time.March, 10, 2, 0))
	assert.Equal(t, at(2026, time.March, 11, 2, 0), next)

	// Rolls over a month boundary
	next = rule.NextOccurrence(at(2026, time.March, 31, 3, 0))
	assert.Equal(t, at(2026, time.April, 1, 2, 0), next)
}

func TestNextOccurrenceDailyDefaultsTime(t *testing.T) {
	rule := TierRule{Kind: TierDaily}

	next := rule.NextOccurrence(at(2026, time.March, 10, 0, 0))
	assert.Equal(t, at(2026, time.March, 10, 2, 0), next)
}

func TestNextOccurrenceWeekly(t *testing.T) {
	// Sundays at 03:00
	rule := TierRule{Kind: TierWeekly, DayOfWeek: 0, TimeOfDay: "03:00"}

	// 2026-03-10 is a Tuesday; next Sunday is the 15th
	next := rule.NextOccurrence(at(2026, time.March, 10, 12, 0))
	assert.Equal(t, at(2026, time.March, 15, 3, 0), next)
	assert.Equal(t, time.Sunday, next.Weekday())

	// On a Sunday before the slot, the same day counts
	next = rule.NextOccurrence(at(2026, time.March, 15, 1, 0))
	assert.Equal(t, at(2026, time.March, 15, 3, 0), next)

	// On a Sunday after the slot, the following week
	next = rule.NextOccurrence(at(2026, time.March, 15, 4, 0))
	assert.Equal(t, at(2026, time.March, 22, 3, 0), next)
}

func TestNextOccurrenceWeeklyNormalizesDayOfWeek(t *testing.T) {
	// 8 normalizes to Monday
	rule := TierRule{Kind: TierWeekly, DayOfWeek: 8, TimeOfDay: "03:00"}

	next := rule.NextOccurrence(at(2026, time.March, 10, 12, 0))
	assert.Equal(t, time.Monday, next.Weekday())
}

func TestNextOccurrenceMonthly(t *testing.T) {
	rule := TierRule{Kind: TierMonthly, DayOfMonth: 1, TimeOfDay: "04:00"}

	next := rule.NextOccurrence(at(2026, time.March, 10, 0, 0))
	assert.Equal(t, at(2026, time.April, 1, 4, 0), next)

	// Before the slot in the current month
	next = rule.NextOccurrence(at(2026, time.March, 1, 3, 0))
	assert.Equal(t, at(2026, time.March, 1, 4, 0), next)
}

func TestNextOccurrenceMonthlyClampsDay(t *testing.T) {
	rule := TierRule{Kind: TierMonthly, DayOfMonth: 31, TimeOfDay: "04:00"}

	// April has 30 days
	next := rule.NextOccurrence(at(2026, time.April, 1, 0, 0))
	assert.Equal(t, at(2026, time.April, 30, 4, 0), next)

	// February 2026 has 28 days
	next = rule.NextOccurrence(at(2026, time.February, 1, 0, 0))
	assert.Equal(t, at(2026, time.February, 28, 4, 0), next)
}

func TestNextOccurrenceYearly(t *testing.T) {
	rule := TierRule{Kind: TierYearly, Month: 1, DayOfMonth: 1, TimeOfDay: "05:00"}

	next := rule.NextOccurrence(at(2026, time.March, 10, 0, 0))
	assert.Equal(t, at(2027, time.January, 1, 5, 0), next)

	next = rule.NextOccurrence(at(2026, time.January, 1, 4, 0))
	assert.Equal(t, at(2026, time.January, 1, 5, 0), next)
}

func TestNextOccurrenceUnknownKind(t *testing.T) {
	rule := TierRule{Kind: TierKind("biweekly")}

	assert.True(t, rule.NextOccurrence(at(2026, time.March, 10, 0, 0)).IsZero())
}

func TestPolicyTierLookup(t *testing.T) {
	policy := BackupPolicy{
		Tiers: []TierRule{
			{Kind: TierDaily, KeepCount: 7},
			{Kind: TierWeekly, KeepCount: 4},
		},
	}

	daily := policy.Tier(TierDaily)
	if assert.NotNil(t, daily) {
		assert.Equal(t, 7, daily.KeepCount)
	}
	assert.Nil(t, policy.Tier(TierYearly))
}

func TestBackupStatusTerminal(t *testing.T) {
	assert.True(t, BackupStatusCompleted.Terminal())
	assert.True(t, BackupStatusFailed.Terminal())
	assert.True(t, BackupStatusCancelled.Terminal())
	assert.False(t, BackupStatusPending.Terminal())
	assert.False(t, BackupStatusInProgress.Terminal())
}

func TestFailureCounterAlerting(t *testing.T) {
	counter := FailureCounter{ConsecutiveFailures: 2}
	assert.True(t, counter.Alerting(2))

	counter.ConsecutiveFailures = 1
	assert.False(t, counter.Alerting(2))
}
