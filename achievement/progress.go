package achievement

// Totals is the aggregate-state bundle the progress formulas read from.
// The assembler fills it from live storage; the formulas themselves
// never touch the database, which keeps them testable in isolation.
// A zero Totals means "no data yet" and yields zero progress everywhere.
type Totals struct {
	// Words is the project's running total word count.
	Words int64
	// DoneChapters counts chapter-type tickets in the done status.
	DoneChapters int64
	// DoneTickets counts done tickets of any type.
	DoneTickets int64
	// NovelKitEntities counts worldbuilding entries across all kit types.
	NovelKitEntities int64
	// Projects counts the writer's projects, for the special category.
	Projects int64
}

// ProgressFor returns the current progress value for one category.
// Deterministic, no side effects.
func ProgressFor(cat Category, t Totals) int64 {
	switch cat {
	case CategoryWordCount:
		return t.Words
	case CategoryChapters:
		return t.DoneChapters
	case CategoryTickets:
		return t.DoneTickets
	case CategoryNovelKit:
		return t.NovelKitEntities
	case CategorySpecial:
		if t.Projects > 0 {
			return 1
		}
		return 0
	case CategoryStreak:
		// No streak formula is defined yet; see DESIGN.md. Zero can
		// never unlock anything, so it is the safe placeholder.
		return 0
	}
	return 0
}

// PercentFor computes the completion percent for a snapshot, clamped to
// [0, 100]. An unlocked achievement always reports 100 even if the
// live value has since dropped below the threshold (word counts can
// shrink when text is deleted; unlocks do not).
func PercentFor(value, threshold int64, unlocked bool) float64 {
	if unlocked {
		return 100
	}
	if threshold <= 0 || value <= 0 {
		return 0
	}
	pct := 100 * float64(value) / float64(threshold)
	if pct > 100 {
		return 100
	}
	return pct
}
