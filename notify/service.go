package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/pagebound/inkdesk/achievement"
	"github.com/pagebound/inkdesk/cache"
	"github.com/pagebound/inkdesk/model"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ChannelUnlocks is the pub/sub channel unlock events are published on.
// SSE subscribers listen here.
const ChannelUnlocks = "achievement.unlocks"

// Event is the wire payload of one unlock notification.
type Event struct {
	AccountID     int64     `json:"account_id"`
	ProjectID     int64     `json:"project_id"`
	AchievementID int64     `json:"achievement_id"`
	Name          string    `json:"name"`
	Description   string    `json:"description"`
	Icon          string    `json:"icon"`
	Color         string    `json:"color"`
	UnlockedAt    time.Time `json:"unlocked_at"`
}

// Service delivers unlock notifications: a persistent in-app
// Notification row plus a pub/sub event for live SSE streams. Delivery
// is best-effort end to end; the unlock itself already happened and is
// never rolled back from here. Failed deliveries are retried by the
// Sweep, driven off the ledger's notification_sent flag.
type Service struct {
	db      *gorm.DB
	ps      cache.PubSub
	ledger  *achievement.Ledger
	catalog *achievement.Catalog
	log     *zap.Logger
}

func NewService(db *gorm.DB, ps cache.PubSub, ledger *achievement.Ledger, catalog *achievement.Catalog, log *zap.Logger) *Service {
	return &Service{db: db, ps: ps, ledger: ledger, catalog: catalog, log: log}
}

// NotifyUnlocked implements achievement.Notifier. Called exactly once
// per winning unlock transition.
func (s *Service) NotifyUnlocked(ctx context.Context, def *achievement.Definition, rec *model.AchievementUnlock) {
	if err := s.deliver(ctx, def, rec); err != nil {
		s.log.Warn("unlock notification failed, sweep will retry",
			zap.Int64("unlock_id", rec.ID),
			zap.Int64("account_id", rec.AccountID),
			zap.Error(err),
		)
		return
	}
	if err := s.ledger.MarkNotified(ctx, rec.ID); err != nil {
		s.log.Warn("mark notified failed", zap.Int64("unlock_id", rec.ID), zap.Error(err))
	}
}

// Sweep re-delivers notifications whose first dispatch failed. Run
// periodically from the scheduler.
func (s *Service) Sweep(ctx context.Context) {
	pending, err := s.ledger.Unnotified(ctx, 100)
	if err != nil {
		s.log.Warn("notification sweep query failed", zap.Error(err))
		return
	}
	for i := range pending {
		rec := &pending[i]
		def, err := s.catalog.Get(rec.AchievementID)
		if err != nil {
			// Ledger row pointing at a missing definition is a
			// data-integrity fault; log loudly and skip.
			s.log.Error("unlock record references unknown achievement",
				zap.Int64("unlock_id", rec.ID),
				zap.Int64("achievement_id", rec.AchievementID),
			)
			continue
		}
		if err := s.deliver(ctx, def, rec); err != nil {
			s.log.Warn("sweep redelivery failed", zap.Int64("unlock_id", rec.ID), zap.Error(err))
			continue
		}
		if err := s.ledger.MarkNotified(ctx, rec.ID); err != nil {
			s.log.Warn("mark notified failed", zap.Int64("unlock_id", rec.ID), zap.Error(err))
		}
	}
}

func (s *Service) deliver(ctx context.Context, def *achievement.Definition, rec *model.AchievementUnlock) error {
	ev := Event{
		AccountID:     rec.AccountID,
		ProjectID:     rec.ProjectID,
		AchievementID: def.ID,
		Name:          def.Name,
		Description:   def.Description,
		Icon:          def.Icon,
		Color:         def.Color,
		UnlockedAt:    rec.UnlockedAt,
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	n := &model.Notification{
		AccountID: rec.AccountID,
		ProjectID: rec.ProjectID,
		Kind:      model.NotifyKindUnlock,
		Title:     "Achievement unlocked: " + def.Name,
		Body:      def.Description,
		Payload:   payload,
	}
	if err := s.db.WithContext(ctx).Create(n).Error; err != nil {
		return fmt.Errorf("store notification: %w", err)
	}

	if err := s.ps.Publish(ctx, ChannelUnlocks, string(payload)); err != nil {
		// The row is stored; the client still sees the notification on
		// its next fetch even if the live push was lost.
		s.log.Warn("publish unlock event failed", zap.Int64("unlock_id", rec.ID), zap.Error(err))
	}
	return nil
}
