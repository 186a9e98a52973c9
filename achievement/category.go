package achievement

import "fmt"

// Category selects which progress formula applies to a definition.
type Category int

const (
	// CategoryWordCount tracks the project's running total word count.
	CategoryWordCount Category = iota
	// CategoryChapters counts chapter-type tickets in the done status.
	CategoryChapters
	// CategoryTickets counts done tickets of any type.
	CategoryTickets
	// CategoryStreak counts consecutive writing days. No formula is wired
	// for it yet; progress is always reported as 0. See DESIGN.md.
	CategoryStreak
	// CategoryNovelKit counts worldbuilding entities across all kit types.
	CategoryNovelKit
	// CategorySpecial is a binary 0/1 predicate against a threshold of 1.
	CategorySpecial
)

var categoryNames = map[Category]string{
	CategoryWordCount: "word_count",
	CategoryChapters:  "chapters",
	CategoryTickets:   "tickets",
	CategoryStreak:    "streak",
	CategoryNovelKit:  "novel_kit",
	CategorySpecial:   "special",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory maps a wire name back to its Category.
func ParseCategory(s string) (Category, error) {
	for c, name := range categoryNames {
		if name == s {
			return c, nil
		}
	}
	return 0, fmt.Errorf("unknown achievement category %q", s)
}
