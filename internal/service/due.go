package service

import (
	"time"

	"github.com/dbward/dbward/internal/models"
)

// DueTiers returns the tier rules of a policy that are due for a backup.
//
// A tier is due when the first scheduled occurrence after the last
// successful backup of that tier has already passed. A database that has
// never completed a backup for a tier is due immediately, so onboarding a
// database does not wait for the next slot in a weekly or monthly cadence.
// Disabled tiers are never due.
func DueTiers(policy *models.BackupPolicy, lastSuccess map[models.TierKind]time.Time, now time.Time) []models.TierRule {
	var due []models.TierRule

	for _, rule := range policy.Tiers {
		if !rule.Enabled {
			continue
		}

		last, ok := lastSuccess[rule.Kind]
		if !ok {
			due = append(due, rule)
			continue
		}

		if !rule.NextOccurrence(last).After(now) {
			due = append(due, rule)
		}
	}

	return due
}
