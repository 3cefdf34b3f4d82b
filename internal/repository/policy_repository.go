package repository

import (
	"errors"
	"time"

	"github.com/dbward/dbward/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PolicyRepository handles reads of backup policies and their tier rules
type PolicyRepository struct {
	db *gorm.DB
}

// NewPolicyRepository creates a new policy repository
func NewPolicyRepository(db *gorm.DB) *PolicyRepository {
	return &PolicyRepository{db: db}
}

// FindByID finds a policy by ID including all tier rules. Lookups never
// mutate or remove the policy; system policies are protected elsewhere.
func (r *PolicyRepository) FindByID(id string) (*models.BackupPolicy, error) {
	var policy models.BackupPolicy
	err := r.db.Preload("Tiers").Where("id = ?", id).First(&policy).Error
	if err != nil {
		return nil, err
	}
	return &policy, nil
}

// FindAll returns every policy with tier rules
func (r *PolicyRepository) FindAll() ([]models.BackupPolicy, error) {
	var policies []models.BackupPolicy
	err := r.db.Preload("Tiers").Order("name ASC").Find(&policies).Error
	return policies, err
}

// EnsureDefaults seeds the system-default policy if no system policy exists.
// The default keeps 24 hourly, 7 daily, 4 weekly, 6 monthly and 2 yearly
// backups, with the heavier tiers staggered across the early morning.
func (r *PolicyRepository) EnsureDefaults() error {
	var existing models.BackupPolicy
	err := r.db.Where("system = ?", true).First(&existing).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	policy := &models.BackupPolicy{
		ID:     uuid.New().String(),
		Name:   "standard",
		System: true,
		Tiers: []models.TierRule{
			{Kind: models.TierHourly, Enabled: false, KeepCount: 24, MinuteOfHour: 0},
			{Kind: models.TierDaily, Enabled: true, KeepCount: 7, TimeOfDay: "02:00"},
			{Kind: models.TierWeekly, Enabled: true, KeepCount: 4, TimeOfDay: "03:00", DayOfWeek: int(time.Sunday)},
			{Kind: models.TierMonthly, Enabled: true, KeepCount: 6, TimeOfDay: "04:00", DayOfMonth: 1},
			{Kind: models.TierYearly, Enabled: false, KeepCount: 2, TimeOfDay: "05:00", DayOfMonth: 1, Month: 1},
		},
	}

	return r.db.Create(policy).Error
}
