package achievement

import "fmt"

// Definition is one immutable catalog entry. Thresholds are never
// changed after release: an edited threshold would retroactively change
// the meaning of already-recorded unlocks. New milestones get new ids.
type Definition struct {
	ID          int64    `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Threshold   int64    `json:"threshold"`
	Icon        string   `json:"icon"`
	Color       string   `json:"color"`
	// Global marks achievements that belong to the writer as a whole
	// rather than to a single project.
	Global bool `json:"global"`
}

// Catalog holds the fixed achievement list. It is built once at startup
// and read-only afterwards, so it is safe to share across goroutines.
type Catalog struct {
	defs []Definition
	byID map[int64]*Definition
}

// NewCatalog builds a catalog from the given definitions, preserving
// their order for List. Duplicate ids and non-positive thresholds are
// programming errors and panic at startup rather than surfacing later.
func NewCatalog(defs []Definition) *Catalog {
	c := &Catalog{
		defs: make([]Definition, len(defs)),
		byID: make(map[int64]*Definition, len(defs)),
	}
	copy(c.defs, defs)
	for i := range c.defs {
		d := &c.defs[i]
		if d.Threshold <= 0 {
			panic(fmt.Sprintf("achievement %d (%s): threshold must be positive", d.ID, d.Name))
		}
		if _, dup := c.byID[d.ID]; dup {
			panic(fmt.Sprintf("achievement %d: duplicate id in catalog", d.ID))
		}
		c.byID[d.ID] = d
	}
	return c
}

// List returns all definitions in catalog order. Callers must not
// mutate the returned slice.
func (c *Catalog) List() []Definition {
	return c.defs
}

// Get returns the definition for id, or ErrNotFound.
func (c *Catalog) Get(id int64) (*Definition, error) {
	d, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("achievement %d: %w", id, ErrNotFound)
	}
	return d, nil
}

// Len returns the number of definitions.
func (c *Catalog) Len() int { return len(c.defs) }

// DefaultCatalog is the shipped achievement set. Order here is the
// order clients render.
func DefaultCatalog() *Catalog {
	return NewCatalog([]Definition{
		{ID: 1, Name: "First Words", Description: "Write 1,000 words in a project", Category: CategoryWordCount, Threshold: 1000, Icon: "pen", Color: "#8ecae6"},
		{ID: 2, Name: "Finding a Rhythm", Description: "Write 10,000 words in a project", Category: CategoryWordCount, Threshold: 10000, Icon: "pen", Color: "#219ebc"},
		{ID: 3, Name: "Half a Novel", Description: "Write 50,000 words in a project", Category: CategoryWordCount, Threshold: 50000, Icon: "book-open", Color: "#023047"},
		{ID: 4, Name: "Doorstopper", Description: "Write 100,000 words in a project", Category: CategoryWordCount, Threshold: 100000, Icon: "book", Color: "#ffb703"},
		{ID: 5, Name: "Chapter One", Description: "Finish your first chapter", Category: CategoryChapters, Threshold: 1, Icon: "bookmark", Color: "#8ecae6"},
		{ID: 6, Name: "Five Chapters Deep", Description: "Finish 5 chapters", Category: CategoryChapters, Threshold: 5, Icon: "bookmark", Color: "#219ebc"},
		{ID: 7, Name: "Full Draft Arc", Description: "Finish 20 chapters", Category: CategoryChapters, Threshold: 20, Icon: "bookmarks", Color: "#023047"},
		{ID: 8, Name: "Board Cleared", Description: "Complete your first ticket", Category: CategoryTickets, Threshold: 1, Icon: "check", Color: "#8ecae6"},
		{ID: 9, Name: "Task Master", Description: "Complete 10 tickets", Category: CategoryTickets, Threshold: 10, Icon: "check-all", Color: "#219ebc"},
		{ID: 10, Name: "Unstoppable", Description: "Complete 50 tickets", Category: CategoryTickets, Threshold: 50, Icon: "trophy", Color: "#fb8500"},
		{ID: 11, Name: "World Seed", Description: "Create your first worldbuilding entry", Category: CategoryNovelKit, Threshold: 1, Icon: "globe", Color: "#8ecae6"},
		{ID: 12, Name: "Cast and Setting", Description: "Create 10 worldbuilding entries", Category: CategoryNovelKit, Threshold: 10, Icon: "globe", Color: "#219ebc"},
		{ID: 13, Name: "Living World", Description: "Create 25 worldbuilding entries", Category: CategoryNovelKit, Threshold: 25, Icon: "globe", Color: "#023047"},
		{ID: 14, Name: "One Week Streak", Description: "Write 7 days in a row", Category: CategoryStreak, Threshold: 7, Icon: "flame", Color: "#fb8500"},
		{ID: 15, Name: "One Month Streak", Description: "Write 30 days in a row", Category: CategoryStreak, Threshold: 30, Icon: "flame", Color: "#d62828"},
		{ID: 16, Name: "Project Pioneer", Description: "Create your first project", Category: CategorySpecial, Threshold: 1, Icon: "rocket", Color: "#8ecae6", Global: true},
	})
}
