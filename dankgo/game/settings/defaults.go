package settings

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/danktimes/dankgo/dankgo/timezone"
)

// Built-in setting names. Plugins may register more during the
// registration phase; these are what the core game consults.
const (
	Timezone                   = "timezone"
	FirstMultiplier            = "firstmultiplier"
	Handicaps                  = "handicaps"
	HandicapsMultiplier        = "handicapsmultiplier"
	HandicapsBottomFraction    = "handicapsbottomfraction"
	HardcoreMode               = "hardcoremode"
	HardcoreModePunishFraction = "hardcoremodepunishfraction"
	PunishUntimelyDankTime     = "punishuntimelydanktime"
	SendNotifications          = "sendnotifications"
	FirstNotifications         = "firstnotifications"
	AutoLeaderboards           = "autoleaderboards"
	RandomTimesFrequency       = "randomtimesfrequency"
	RandomTimesPoints          = "randomtimespoints"
)

// NewDefaultRegistry builds the registry with every core template. The
// caller freezes it once plugin registration is done.
func NewDefaultRegistry() *Registry {
	r := NewRegistry()
	core := []Template{
		NewTemplate(Timezone, "Time zone the chat's dank times fire in", "UTC",
			parseString, validTimezone),
		NewTemplate(FirstMultiplier, "Score multiplier for the first scorer of a window", 2.0,
			parseFloat, floatRange(1, 10)),
		NewTemplate(Handicaps, "Whether bottom-ranked users get a handicap bonus", true,
			parseBool, nil),
		NewTemplate(HandicapsMultiplier, "Score multiplier applied to handicapped users", 1.5,
			parseFloat, floatRange(1, 10)),
		NewTemplate(HandicapsBottomFraction, "Fraction of bottom-ranked users that are handicapped", 0.25,
			parseFloat, floatRange(0.01, 0.5)),
		NewTemplate(HardcoreMode, "Whether inactive users lose points nightly", false,
			parseBool, nil),
		NewTemplate(HardcoreModePunishFraction, "Fraction of score lost per inactive day", 0.1,
			parseFloat, floatRange(0.01, 1)),
		NewTemplate(PunishUntimelyDankTime, "Whether badly timed callouts lose points", false,
			parseBool, nil),
		NewTemplate(SendNotifications, "Whether dank time announcements are sent", true,
			parseBool, nil),
		NewTemplate(FirstNotifications, "Whether the first scorer of a window is announced", false,
			parseBool, nil),
		NewTemplate(AutoLeaderboards, "Whether a leaderboard is posted after a scored window", true,
			parseBool, nil),
		NewTemplate(RandomTimesFrequency, "How many random dank times are generated per day", 1,
			parseInt, intRange(0, 24)),
		NewTemplate(RandomTimesPoints, "Points a random dank time is worth", 10,
			parseInt, intRange(1, 10000)),
	}
	for _, t := range core {
		if err := r.Register(t); err != nil {
			panic(err)
		}
	}
	return r
}

func parseString(raw string) (string, error) {
	return strings.TrimSpace(raw), nil
}

func parseBool(raw string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "on", "yes", "1":
		return true, nil
	case "false", "off", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", raw)
}

func parseInt(raw string) (int, error) {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("expected a whole number, got %q", raw)
	}
	return v, nil
}

func parseFloat(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("expected a number, got %q", raw)
	}
	return v, nil
}

func intRange(min, max int) func(int) error {
	return func(v int) error {
		if v < min || v > max {
			return fmt.Errorf("must be between %d and %d", min, max)
		}
		return nil
	}
}

func floatRange(min, max float64) func(float64) error {
	return func(v float64) error {
		if v < min || v > max {
			return fmt.Errorf("must be between %g and %g", min, max)
		}
		return nil
	}
}

func validTimezone(name string) error {
	if !timezone.Valid(name) {
		return fmt.Errorf("unknown time zone %q", name)
	}
	return nil
}
