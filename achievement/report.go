package achievement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/pagebound/inkdesk/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Snapshot is the per-achievement view returned to polling clients: the
// definition's display data joined with the live progress value and the
// unlock state at read time.
type Snapshot struct {
	AchievementID   int64      `json:"achievement_id"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	Category        string     `json:"category"`
	Threshold       int64      `json:"threshold"`
	Icon            string     `json:"icon"`
	Color           string     `json:"color"`
	Progress        int64      `json:"progress"`
	ProgressPercent float64    `json:"progress_percent"`
	IsUnlocked      bool       `json:"is_unlocked"`
	UnlockedAt      *time.Time `json:"unlocked_at,omitempty"`
}

// UnlockResult tells the caller whether their request performed the
// transition or found it already done.
type UnlockResult struct {
	Success         bool       `json:"success"`
	AlreadyUnlocked bool       `json:"already_unlocked"`
	UnlockedAt      *time.Time `json:"unlocked_at,omitempty"`
}

// Service assembles progress reports and gates unlock attempts. It is
// the only component that talks to both the catalog and the ledger.
type Service struct {
	catalog  *Catalog
	ledger   *Ledger
	db       *gorm.DB
	notifier Notifier
	log      *zap.Logger
}

// NewService wires the report assembler.
func NewService(catalog *Catalog, ledger *Ledger, db *gorm.DB, notifier Notifier, log *zap.Logger) *Service {
	return &Service{catalog: catalog, ledger: ledger, db: db, notifier: notifier, log: log}
}

// Catalog exposes the definition list for handlers.
func (s *Service) Catalog() *Catalog { return s.catalog }

// Ledger exposes the unlock ledger for read-only handler queries.
func (s *Service) Ledger() *Ledger { return s.ledger }

// CheckProgress returns one snapshot per catalog definition, in catalog
// order, computed from live aggregate state. Read-only: safe to call on
// every poll tick.
func (s *Service) CheckProgress(ctx context.Context, accountID, projectID int64) ([]Snapshot, error) {
	totals, err := s.gatherTotals(ctx, accountID, projectID)
	if err != nil {
		return nil, err
	}

	unlocks, err := s.ledger.ListUnlocked(ctx, accountID, projectID)
	if err != nil {
		return nil, err
	}
	unlocked := make(map[int64]*model.AchievementUnlock, len(unlocks))
	for i := range unlocks {
		unlocked[unlocks[i].AchievementID] = &unlocks[i]
	}

	defs := s.catalog.List()
	snaps := make([]Snapshot, 0, len(defs))
	for i := range defs {
		d := &defs[i]
		value := ProgressFor(d.Category, totals)
		rec := unlocked[d.ID]
		snap := Snapshot{
			AchievementID:   d.ID,
			Name:            d.Name,
			Description:     d.Description,
			Category:        d.Category.String(),
			Threshold:       d.Threshold,
			Icon:            d.Icon,
			Color:           d.Color,
			Progress:        value,
			ProgressPercent: PercentFor(value, d.Threshold, rec != nil),
			IsUnlocked:      rec != nil,
		}
		if rec != nil {
			t := rec.UnlockedAt
			snap.UnlockedAt = &t
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

// AttemptUnlock validates the request against the catalog and forwards
// it to the ledger. A progress value below the threshold is a caller
// contract violation and fails with ErrThresholdNotMet; the engine
// never unlocks early. The unlock notification fires only on the
// created transition and never blocks or rolls back the unlock.
func (s *Service) AttemptUnlock(ctx context.Context, accountID, achievementID, projectID, observedProgress int64) (*UnlockResult, error) {
	def, err := s.catalog.Get(achievementID)
	if err != nil {
		return nil, err
	}
	if def.Global {
		projectID = model.GlobalProject
	}
	if observedProgress < def.Threshold {
		return nil, fmt.Errorf("achievement %d: progress %d < threshold %d: %w",
			achievementID, observedProgress, def.Threshold, ErrThresholdNotMet)
	}

	created, rec, err := s.ledger.UnlockIfAbsent(ctx, accountID, achievementID, projectID, observedProgress)
	if err != nil {
		return nil, err
	}

	if created {
		s.notifier.NotifyUnlocked(ctx, def, rec)
	}

	t := rec.UnlockedAt
	return &UnlockResult{
		Success:         true,
		AlreadyUnlocked: !created,
		UnlockedAt:      &t,
	}, nil
}

// gatherTotals reads the aggregate values the progress formulas need.
// A missing project yields zero totals, never an error: no data means
// no progress, which cannot falsely unlock anything.
func (s *Service) gatherTotals(ctx context.Context, accountID, projectID int64) (Totals, error) {
	var t Totals
	db := s.db.WithContext(ctx)

	var project model.Project
	err := db.Where("id = ? AND account_id = ?", projectID, accountID).First(&project).Error
	switch {
	case err == nil:
		t.Words = project.CurrentWordCount
	case errors.Is(err, gorm.ErrRecordNotFound):
		// Keep zero words; the remaining aggregates still run so global
		// achievements (projects created) stay accurate.
	default:
		return Totals{}, fmt.Errorf("%w: load project: %v", ErrStorageUnavailable, err)
	}

	if err := db.Model(&model.Ticket{}).
		Where("project_id = ? AND status = ?", projectID, model.TicketStatusDone).
		Count(&t.DoneTickets).Error; err != nil {
		return Totals{}, fmt.Errorf("%w: count tickets: %v", ErrStorageUnavailable, err)
	}

	if err := db.Model(&model.Ticket{}).
		Where("project_id = ? AND status = ? AND task_type = ?", projectID, model.TicketStatusDone, model.TaskTypeChapter).
		Count(&t.DoneChapters).Error; err != nil {
		return Totals{}, fmt.Errorf("%w: count chapters: %v", ErrStorageUnavailable, err)
	}

	kit, err := s.countNovelKit(ctx, projectID)
	if err != nil {
		return Totals{}, err
	}
	t.NovelKitEntities = kit

	if err := db.Model(&model.Project{}).
		Where("account_id = ?", accountID).
		Count(&t.Projects).Error; err != nil {
		return Totals{}, fmt.Errorf("%w: count projects: %v", ErrStorageUnavailable, err)
	}

	return t, nil
}

func (s *Service) countNovelKit(ctx context.Context, projectID int64) (int64, error) {
	db := s.db.WithContext(ctx)
	models := []interface{}{
		&model.StoryCharacter{},
		&model.Location{},
		&model.SceneCard{},
		&model.PlotBeat{},
		&model.WorldElement{},
		&model.TimelineEvent{},
	}
	var total int64
	for _, m := range models {
		var n int64
		if err := db.Model(m).Where("project_id = ?", projectID).Count(&n).Error; err != nil {
			return 0, fmt.Errorf("%w: count novel kit: %v", ErrStorageUnavailable, err)
		}
		total += n
	}
	return total, nil
}
