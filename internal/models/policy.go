package models

import (
	"fmt"
	"time"
)

// TierKind represents a retention cadence
type TierKind string

const (
	TierHourly  TierKind = "hourly"
	TierDaily   TierKind = "daily"
	TierWeekly  TierKind = "weekly"
	TierMonthly TierKind = "monthly"
	TierYearly  TierKind = "yearly"
)

// AllTiers lists every tier kind in cadence order
var AllTiers = []TierKind{TierHourly, TierDaily, TierWeekly, TierMonthly, TierYearly}

// BackupPolicy is a named set of tier rules assigned to database configs.
// System policies are seeded at startup and cannot be deleted.
type BackupPolicy struct {
	ID        string `gorm:"primaryKey;size:36"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Name   string `gorm:"size:255;not null;uniqueIndex"`
	System bool   `gorm:"default:false;not null"`

	Tiers []TierRule `gorm:"foreignKey:PolicyID;constraint:OnDelete:CASCADE"`
}

// TableName specifies the table name
func (BackupPolicy) TableName() string {
	return "backup_policies"
}

// Tier returns the rule for the given tier kind, or nil if the policy
// does not define it.
func (p *BackupPolicy) Tier(kind TierKind) *TierRule {
	for i := range p.Tiers {
		if p.Tiers[i].Kind == kind {
			return &p.Tiers[i]
		}
	}
	return nil
}

// TierRule configures one retention tier of a policy. The schedule fields
// form a tagged shape per kind: hourly uses MinuteOfHour; daily and up use
// TimeOfDay; weekly adds DayOfWeek; monthly and yearly add DayOfMonth;
// yearly adds Month.
type TierRule struct {
	ID        uint   `gorm:"primaryKey;autoIncrement"`
	PolicyID  string `gorm:"index;size:36;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time

	Kind      TierKind `gorm:"size:20;not null"`
	Enabled   bool     `gorm:"default:false;not null"`
	KeepCount int      `gorm:"default:1;not null"` // most-recent successful backups to retain

	MinuteOfHour int    `gorm:"default:0;not null"`        // hourly
	TimeOfDay    string `gorm:"size:5;default:'02:00'"`    // HH:MM, daily/weekly/monthly/yearly
	DayOfWeek    int    `gorm:"default:0;not null"`        // weekly, 0=Sunday
	DayOfMonth   int    `gorm:"default:1;not null"`        // monthly/yearly, clamped to month length
	Month        int    `gorm:"default:1;not null"`        // yearly, 1=January
}

// TableName specifies the table name
func (TierRule) TableName() string {
	return "tier_rules"
}

// clockTime parses the HH:MM schedule time, defaulting to 02:00
func (r *TierRule) clockTime() (int, int) {
	hour, minute := 2, 0
	if r.TimeOfDay != "" {
		fmt.Sscanf(r.TimeOfDay, "%d:%d", &hour, &minute)
	}
	return hour, minute
}

// NextOccurrence returns the first scheduled occurrence strictly after
// the given time, computed from the rule's schedule fields.
func (r *TierRule) NextOccurrence(after time.Time) time.Time {
	hour, minute := r.clockTime()

	switch r.Kind {
	case TierHourly:
		next := time.Date(after.Year(), after.Month(), after.Day(), after.Hour(), r.MinuteOfHour, 0, 0, after.Location())
		if !next.After(after) {
			next = next.Add(time.Hour)
		}
		return next

	case TierDaily:
		next := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, after.Location())
		if !next.After(after) {
			next = next.AddDate(0, 0, 1)
		}
		return next

	case TierWeekly:
		dow := ((r.DayOfWeek % 7) + 7) % 7
		next := time.Date(after.Year(), after.Month(), after.Day(), hour, minute, 0, 0, after.Location())
		for !next.After(after) || int(next.Weekday()) != dow {
			next = next.AddDate(0, 0, 1)
		}
		return next

	case TierMonthly:
		next := r.monthlyOccurrence(after.Year(), after.Month(), after.Location())
		if !next.After(after) {
			next = r.monthlyOccurrence(after.Year(), after.Month()+1, after.Location())
		}
		return next

	case TierYearly:
		next := r.yearlyOccurrence(after.Year(), after.Location())
		if !next.After(after) {
			next = r.yearlyOccurrence(after.Year()+1, after.Location())
		}
		return next
	}

	// Unknown tier kinds never come due
	return time.Time{}
}

func (r *TierRule) monthlyOccurrence(year int, month time.Month, loc *time.Location) time.Time {
	hour, minute := r.clockTime()
	day := clampDay(r.DayOfMonth, year, month)
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

func (r *TierRule) yearlyOccurrence(year int, loc *time.Location) time.Time {
	hour, minute := r.clockTime()
	month := time.Month(r.Month)
	if month < time.January || month > time.December {
		month = time.January
	}
	day := clampDay(r.DayOfMonth, year, month)
	return time.Date(year, month, day, hour, minute, 0, 0, loc)
}

// clampDay clamps a configured day-of-month to the length of the month,
// so a rule for the 31st fires on the 30th (or 28th/29th) where needed.
func clampDay(day, year int, month time.Month) int {
	if day < 1 {
		day = 1
	}
	last := time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if day > last {
		return last
	}
	return day
}
