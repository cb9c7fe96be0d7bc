package models

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLockConfig(t *testing.T) {
	tests := []struct {
		name   string
		config LockConfig
		state  LockState
		label  string
	}{
		{"fresh install", LockConfig{}, DisabledNoPassword, "disabled"},
		{"password kept while off", LockConfig{HasPassword: true}, DisabledHasPassword, "disabled (password set)"},
		{"enabled", LockConfig{Enabled: true, HasPassword: true}, EnabledHasPassword, "enabled"},
		{"enabled without password", LockConfig{Enabled: true}, DisabledNoPassword, "disabled"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := tt.config.State()
			if state != tt.state {
				t.Errorf("State() = %v, want %v", state, tt.state)
			}
			if state.String() != tt.label {
				t.Errorf("String() = %q, want %q", state.String(), tt.label)
			}
		})
	}

	if LockState(99).String() != "" {
		t.Error("expected unknown state to render empty")
	}
}

func TestSortByLabel(t *testing.T) {
	apps := []InstalledApp{
		{PackageName: "c", Label: "beta"},
		{PackageName: "b", Label: "Alpha"},
		{PackageName: "a", Label: "Beta"},
	}

	SortByLabel(apps)

	var got []string
	for _, app := range apps {
		got = append(got, app.PackageName)
	}
	if diff := cmp.Diff([]string{"b", "a", "c"}, got); diff != "" {
		t.Errorf("SortByLabel() mismatch (-want +got):\n%s", diff)
	}
}

func TestIsSystemLocked(t *testing.T) {
	for _, pkg := range SystemLockedPackages {
		if !IsSystemLocked(pkg) {
			t.Errorf("expected %s to be system-locked", pkg)
		}
	}
	if IsSystemLocked("com.example.mail") {
		t.Error("expected ordinary app not to be system-locked")
	}
}
