package achievement

import (
	"context"
	"fmt"
	"time"

	"github.com/pagebound/inkdesk/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Ledger owns the unlock records. It is the only mutating component in
// the engine: everything else is read-only or pure.
type Ledger struct {
	db  *gorm.DB
	log *zap.Logger
}

// NewLedger creates a Ledger backed by the given database.
func NewLedger(db *gorm.DB, log *zap.Logger) *Ledger {
	return &Ledger{db: db, log: log}
}

// UnlockIfAbsent records the unlock for (accountID, achievementID,
// projectID) if no record exists yet. It returns created=true for the
// call that inserted the row; every other caller, concurrent or later,
// gets created=false together with the winner's record, including the
// winner's UnlockedAt and ProgressAtUnlock.
//
// The at-most-once guarantee rests entirely on the ux_unlock_identity
// unique index plus an INSERT .. ON CONFLICT DO NOTHING. There is no
// check-then-insert window for two callers to slip through.
func (l *Ledger) UnlockIfAbsent(ctx context.Context, accountID, achievementID, projectID, progress int64) (bool, *model.AchievementUnlock, error) {
	rec := &model.AchievementUnlock{
		AccountID:        accountID,
		AchievementID:    achievementID,
		ProjectID:        projectID,
		ProgressAtUnlock: progress,
		UnlockedAt:       time.Now().UTC(),
	}

	res := l.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "account_id"},
			{Name: "achievement_id"},
			{Name: "project_id"},
		},
		DoNothing: true,
	}).Create(rec)
	if res.Error != nil {
		return false, nil, fmt.Errorf("%w: insert unlock: %v", ErrStorageUnavailable, res.Error)
	}

	if res.RowsAffected == 0 {
		// Lost the race or was unlocked long ago; hand back the
		// winner's row so every caller sees the same transition data.
		existing, err := l.find(ctx, accountID, achievementID, projectID)
		if err != nil {
			return false, nil, err
		}
		return false, existing, nil
	}

	l.log.Info("achievement unlocked",
		zap.Int64("account_id", accountID),
		zap.Int64("achievement_id", achievementID),
		zap.Int64("project_id", projectID),
		zap.Int64("progress", progress),
	)
	return true, rec, nil
}

// IsUnlocked reports whether the identity has an unlock record.
func (l *Ledger) IsUnlocked(ctx context.Context, accountID, achievementID, projectID int64) (bool, error) {
	var n int64
	err := l.db.WithContext(ctx).Model(&model.AchievementUnlock{}).
		Where("account_id = ? AND achievement_id = ? AND project_id = ?", accountID, achievementID, projectID).
		Count(&n).Error
	if err != nil {
		return false, fmt.Errorf("%w: count unlock: %v", ErrStorageUnavailable, err)
	}
	return n > 0, nil
}

// ListUnlocked returns the account's unlock records for one project,
// plus its global unlocks, oldest first.
func (l *Ledger) ListUnlocked(ctx context.Context, accountID, projectID int64) ([]model.AchievementUnlock, error) {
	var recs []model.AchievementUnlock
	err := l.db.WithContext(ctx).
		Where("account_id = ? AND project_id IN ?", accountID, []int64{projectID, model.GlobalProject}).
		Order("unlocked_at ASC, id ASC").
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list unlocks: %v", ErrStorageUnavailable, err)
	}
	return recs, nil
}

// MarkNotified flags the record's notification as dispatched.
func (l *Ledger) MarkNotified(ctx context.Context, id int64) error {
	err := l.db.WithContext(ctx).Model(&model.AchievementUnlock{}).
		Where("id = ?", id).
		Update("notification_sent", true).Error
	if err != nil {
		return fmt.Errorf("%w: mark notified: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// Unnotified returns unlock records whose notification never went out,
// for the background re-delivery sweep.
func (l *Ledger) Unnotified(ctx context.Context, limit int) ([]model.AchievementUnlock, error) {
	var recs []model.AchievementUnlock
	err := l.db.WithContext(ctx).
		Where("notification_sent = ?", false).
		Order("id ASC").
		Limit(limit).
		Find(&recs).Error
	if err != nil {
		return nil, fmt.Errorf("%w: list unnotified: %v", ErrStorageUnavailable, err)
	}
	return recs, nil
}

func (l *Ledger) find(ctx context.Context, accountID, achievementID, projectID int64) (*model.AchievementUnlock, error) {
	var rec model.AchievementUnlock
	err := l.db.WithContext(ctx).
		Where("account_id = ? AND achievement_id = ? AND project_id = ?", accountID, achievementID, projectID).
		First(&rec).Error
	if err != nil {
		return nil, fmt.Errorf("%w: fetch unlock: %v", ErrStorageUnavailable, err)
	}
	return &rec, nil
}
