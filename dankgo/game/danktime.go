package game

import (
	"fmt"
	"sort"
	"strings"
)

const (
	minPoints = 1
	maxPoints = 10000
)

// DankTime is one scoring opportunity: a wall-clock (hour, minute) plus the
// trigger texts that claim it. Identity is (hour, minute). Values are
// immutable after construction; random dank times resolve their points
// through a chat setting instead of a fixed value.
type DankTime struct {
	Hour     int
	Minute   int
	IsRandom bool

	texts []string // cleaned, deduplicated, insertion order
	// points is the fixed value; when pointsSetting is non-empty the chat
	// resolves the live value through its settings at read time.
	points        int
	pointsSetting string
}

// NewDankTime validates and builds a normal dank time.
func NewDankTime(hour, minute int, texts []string, points int) (*DankTime, error) {
	if err := validateTime(hour, minute); err != nil {
		return nil, err
	}
	cleaned, err := cleanTexts(texts)
	if err != nil {
		return nil, err
	}
	if points < minPoints || points > maxPoints {
		return nil, fmt.Errorf("points must be between %d and %d", minPoints, maxPoints)
	}
	return &DankTime{Hour: hour, Minute: minute, texts: cleaned, points: points}, nil
}

// newRandomDankTime builds a random dank time whose points resolve through
// the named setting. currentPoints is the setting's value right now; the
// range check happens eagerly even though the value is re-read later.
func newRandomDankTime(hour, minute int, texts []string, pointsSetting string, currentPoints int) (*DankTime, error) {
	if err := validateTime(hour, minute); err != nil {
		return nil, err
	}
	cleaned, err := cleanTexts(texts)
	if err != nil {
		return nil, err
	}
	if currentPoints < minPoints || currentPoints > maxPoints {
		return nil, fmt.Errorf("points must be between %d and %d", minPoints, maxPoints)
	}
	return &DankTime{
		Hour:          hour,
		Minute:        minute,
		IsRandom:      true,
		texts:         cleaned,
		points:        currentPoints,
		pointsSetting: pointsSetting,
	}, nil
}

// Texts returns a copy of the trigger texts.
func (d *DankTime) Texts() []string {
	out := make([]string, len(d.texts))
	copy(out, d.texts)
	return out
}

// HasText reports whether candidate matches one of the trigger texts,
// case-insensitively and ignoring decorative code points.
func (d *DankTime) HasText(candidate string) bool {
	cleaned := CleanText(candidate)
	for _, t := range d.texts {
		if t == cleaned {
			return true
		}
	}
	return false
}

// Before orders dank times by (hour, minute) ascending.
func (d *DankTime) Before(other *DankTime) bool {
	if d.Hour != other.Hour {
		return d.Hour < other.Hour
	}
	return d.Minute < other.Minute
}

func validateTime(hour, minute int) error {
	if hour < 0 || hour > 23 {
		return fmt.Errorf("hour must be between 0 and 23")
	}
	if minute < 0 || minute > 59 {
		return fmt.Errorf("minute must be between 0 and 59")
	}
	return nil
}

func cleanTexts(texts []string) ([]string, error) {
	cleaned := make([]string, 0, len(texts))
	seen := make(map[string]struct{}, len(texts))
	for _, t := range texts {
		c := CleanText(t)
		if c == "" {
			continue
		}
		if _, dup := seen[c]; dup {
			continue
		}
		seen[c] = struct{}{}
		cleaned = append(cleaned, c)
	}
	if len(cleaned) == 0 {
		return nil, fmt.Errorf("a dank time needs at least one trigger text")
	}
	return cleaned, nil
}

// CleanText lowercases s and strips Unicode variation selectors and the
// combining keycap, so emoji digit sequences compare equal to their plain
// counterparts.
func CleanText(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range strings.ToLower(s) {
		if r >= 0xFE00 && r <= 0xFE0F {
			continue
		}
		if r == 0x20E3 {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func sortDankTimes(ts []*DankTime) {
	sort.SliceStable(ts, func(i, j int) bool { return ts[i].Before(ts[j]) })
}
