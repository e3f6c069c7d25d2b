package styles

import (
	"testing"

	"github.com/Iron-Ham/notesync/internal/config"
)

func TestPaletteFor(t *testing.T) {
	tests := []struct {
		name    string
		primary string
	}{
		{"default", "#A78BFA"},
		{"nord", "#88C0D0"},
		{"dracula", "#BD93F9"},
		{"unknown", "#A78BFA"},
		{"", "#A78BFA"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaletteFor(tt.name)
			if string(got.Primary) != tt.primary {
				t.Errorf("PaletteFor(%q).Primary = %q, want %q", tt.name, got.Primary, tt.primary)
			}
		})
	}
}

// Every theme the config accepts must have its own palette.
func TestPaletteFor_CoversConfigThemes(t *testing.T) {
	seen := make(map[string]string)
	for _, name := range config.ValidThemes() {
		primary := string(PaletteFor(name).Primary)
		if other, dup := seen[primary]; dup && name != string(ThemeDefault) {
			t.Errorf("theme %q renders with the palette of %q", name, other)
		}
		seen[primary] = name
	}
}

func TestForTheme_Renders(t *testing.T) {
	s := ForTheme("nord")
	if out := s.Title.Render("notes"); out == "" {
		t.Error("Title.Render returned empty string")
	}
	if out := s.Modal.Render("save?"); out == "" {
		t.Error("Modal.Render returned empty string")
	}
}
