package settings

import (
	"testing"
)

func TestStore_Set(t *testing.T) {
	tests := []struct {
		name    string
		setting string
		value   string
		wantErr bool
	}{
		{name: "valid bool on", setting: Handicaps, value: "on"},
		{name: "valid bool false", setting: HardcoreMode, value: "false"},
		{name: "invalid bool", setting: Handicaps, value: "maybe", wantErr: true},
		{name: "valid float", setting: FirstMultiplier, value: "3.5"},
		{name: "float below range", setting: FirstMultiplier, value: "0.5", wantErr: true},
		{name: "float above range", setting: FirstMultiplier, value: "11", wantErr: true},
		{name: "valid int", setting: RandomTimesFrequency, value: "4"},
		{name: "int above range", setting: RandomTimesFrequency, value: "25", wantErr: true},
		{name: "int not a number", setting: RandomTimesPoints, value: "lots", wantErr: true},
		{name: "valid timezone", setting: Timezone, value: "Europe/Amsterdam"},
		{name: "invalid timezone", setting: Timezone, value: "Not/AZone", wantErr: true},
		{name: "unknown setting", setting: "nosuchsetting", value: "1", wantErr: true},
	}

	registry := NewDefaultRegistry()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := registry.NewStore()
			err := store.Set(tt.setting, tt.value)
			if (err != nil) != tt.wantErr {
				t.Errorf("Set(%q, %q) error = %v, wantErr %v", tt.setting, tt.value, err, tt.wantErr)
			}
		})
	}
}

func TestStore_TypedAccessors(t *testing.T) {
	store := NewDefaultRegistry().NewStore()

	if got := store.Float64(FirstMultiplier); got != 2.0 {
		t.Errorf("default firstmultiplier = %v, want 2.0", got)
	}
	if got := store.Int(RandomTimesPoints); got != 10 {
		t.Errorf("default randomtimespoints = %v, want 10", got)
	}
	if !store.Bool(Handicaps) {
		t.Errorf("default handicaps = false, want true")
	}
	if got := store.String(Timezone); got != "UTC" {
		t.Errorf("default timezone = %q, want UTC", got)
	}

	if err := store.Set(RandomTimesPoints, "250"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	if got := store.Int(RandomTimesPoints); got != 250 {
		t.Errorf("randomtimespoints after set = %v, want 250", got)
	}

	// A failed set must not clobber the committed value.
	if err := store.Set(RandomTimesPoints, "99999"); err == nil {
		t.Fatalf("Set() out of range succeeded")
	}
	if got := store.Int(RandomTimesPoints); got != 250 {
		t.Errorf("randomtimespoints after failed set = %v, want 250", got)
	}
}

func TestParseBool_Aliases(t *testing.T) {
	store := NewDefaultRegistry().NewStore()

	for _, raw := range []string{"on", "true", "yes", "1"} {
		if err := store.Set(Handicaps, raw); err != nil {
			t.Errorf("Set(handicaps, %q) error = %v", raw, err)
		}
		if !store.Bool(Handicaps) {
			t.Errorf("Set(handicaps, %q) did not yield true", raw)
		}
	}
	for _, raw := range []string{"off", "false", "no", "0"} {
		if err := store.Set(Handicaps, raw); err != nil {
			t.Errorf("Set(handicaps, %q) error = %v", raw, err)
		}
		if store.Bool(Handicaps) {
			t.Errorf("Set(handicaps, %q) did not yield false", raw)
		}
	}
}

func TestRegistry_FreezeClosesRegistration(t *testing.T) {
	registry := NewRegistry()
	tmpl := NewTemplate("custom", "a custom toggle", false, func(raw string) (bool, error) {
		return raw == "on", nil
	}, nil)

	if err := registry.Register(tmpl); err != nil {
		t.Fatalf("Register() before freeze error = %v", err)
	}
	registry.Freeze()
	if err := registry.Register(tmpl); err == nil {
		t.Errorf("Register() after freeze succeeded, want error")
	}
}

func TestRegistry_DuplicateName(t *testing.T) {
	registry := NewRegistry()
	tmpl := NewTemplate("dup", "first", "", func(raw string) (string, error) { return raw, nil }, nil)
	if err := registry.Register(tmpl); err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if err := registry.Register(tmpl); err == nil {
		t.Errorf("duplicate Register() succeeded, want error")
	}
}
