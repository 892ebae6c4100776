package migration

import (
	"testing"

	"github.com/danktimes/dankgo/dankgo/game/settings"
)

func TestConvertChat(t *testing.T) {
	tests := []struct {
		name           string
		in             MongoChat
		wantTz         string
		wantLastHour   int
		wantLastMinute int
	}{
		{
			name:           "clean document",
			in:             MongoChat{ID: 1, Timezone: "Europe/Amsterdam", LastHour: 13, LastMinute: 37},
			wantTz:         "Europe/Amsterdam",
			wantLastHour:   13,
			wantLastMinute: 37,
		},
		{
			name:           "missing timezone falls back to UTC",
			in:             MongoChat{ID: 1, LastHour: -1, LastMinute: -1},
			wantTz:         "UTC",
			wantLastHour:   -1,
			wantLastMinute: -1,
		},
		{
			name:           "corrupt window is cleared",
			in:             MongoChat{ID: 1, Timezone: "UTC", LastHour: 99, LastMinute: 3},
			wantTz:         "UTC",
			wantLastHour:   -1,
			wantLastMinute: -1,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := convertChat(tt.in)
			if got.Timezone != tt.wantTz {
				t.Errorf("Timezone = %q, want %q", got.Timezone, tt.wantTz)
			}
			if got.LastHour != tt.wantLastHour || got.LastMinute != tt.wantLastMinute {
				t.Errorf("window = %d:%d, want %d:%d", got.LastHour, got.LastMinute, tt.wantLastHour, tt.wantLastMinute)
			}
		})
	}
}

func TestConvertUsers(t *testing.T) {
	mc := MongoChat{
		ID: 7,
		Users: []MongoUser{
			{ID: 1, Name: "Alice", Score: 100},
			{ID: 0, Name: "ghost", Score: 50},   // no id, dropped
			{ID: 1, Name: "Alice2", Score: 999}, // duplicate, dropped
			{ID: 2, Name: "Bob", Score: -30},    // clamped
		},
	}

	got := convertUsers(mc)
	if len(got) != 2 {
		t.Fatalf("converted %d users, want 2", len(got))
	}
	if got[0].UserID != 1 || got[0].Score != 100 {
		t.Errorf("first user = %d/%d, want 1/100", got[0].UserID, got[0].Score)
	}
	if got[1].Score != 0 {
		t.Errorf("negative legacy score = %d, want 0", got[1].Score)
	}
}

func TestConvertDankTimes(t *testing.T) {
	mc := MongoChat{
		ID: 7,
		DankTimes: []MongoDankTime{
			{Hour: 13, Minute: 37, Texts: []string{"1337"}, Points: 10},
			{Hour: 25, Minute: 0, Texts: []string{"bad"}, Points: 10},  // out of range
			{Hour: 13, Minute: 37, Texts: []string{"dup"}, Points: 20}, // duplicate slot
			{Hour: 16, Minute: 20, Texts: nil, Points: 10},             // no texts
			{Hour: 16, Minute: 20, Texts: []string{"420"}, Points: 0},  // no points
		},
	}

	got := convertDankTimes(mc)
	if len(got) != 1 {
		t.Fatalf("converted %d dank times, want 1", len(got))
	}
	if got[0].Hour != 13 || got[0].Minute != 37 || got[0].Points != 10 {
		t.Errorf("kept dank time = %+v", got[0])
	}
}

func TestConvertSettings(t *testing.T) {
	on := true
	mc := MongoChat{
		ID:                7,
		Multiplier:        3,
		HardcoreMode:      &on,
		RandomtimesFreq:   4,
		RandomtimesPoints: 99999, // out of range, dropped
	}

	got := convertSettings(mc)
	byName := make(map[string]string, len(got))
	for _, row := range got {
		byName[row.Name] = row.Value
	}

	if v := byName[settings.FirstMultiplier]; v != "3" {
		t.Errorf("firstmultiplier = %q, want 3", v)
	}
	if v := byName[settings.HardcoreMode]; v != "true" {
		t.Errorf("hardcoremode = %q, want true", v)
	}
	if v := byName[settings.RandomTimesFrequency]; v != "4" {
		t.Errorf("randomtimesfrequency = %q, want 4", v)
	}
	if _, ok := byName[settings.RandomTimesPoints]; ok {
		t.Errorf("out-of-range randomtimespoints was kept")
	}
	if _, ok := byName[settings.Handicaps]; ok {
		t.Errorf("absent legacy field produced a row")
	}
}
