package achievement

import (
	"context"

	"github.com/pagebound/inkdesk/model"
)

// Notifier receives the one "newly unlocked" event per identity. It is
// called only on the winning unlock transition, never for an
// already-unlocked identity. Implementations are best-effort: a
// notification failure must not roll back the unlock.
type Notifier interface {
	NotifyUnlocked(ctx context.Context, def *Definition, rec *model.AchievementUnlock)
}

// NopNotifier discards unlock events. Useful in tests and tools.
type NopNotifier struct{}

func (NopNotifier) NotifyUnlocked(context.Context, *Definition, *model.AchievementUnlock) {}
