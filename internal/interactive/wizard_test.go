package interactive

import (
	"bytes"
	"strings"
	"testing"

	"github.com/pocketcalc/pcalc/internal/utils"
)

func newTestWizard(input string) (*Wizard, *bytes.Buffer) {
	var out bytes.Buffer
	return NewWizard(strings.NewReader(input), &out), &out
}

func TestAskBool(t *testing.T) {
	tests := []struct {
		input        string
		defaultValue bool
		want         bool
	}{
		{"y\n", false, true},
		{"YES\n", false, true},
		{"はい\n", false, true},
		{"n\n", true, false},
		{"\n", true, true},
		{"", false, false},
	}

	for _, tt := range tests {
		w, _ := newTestWizard(tt.input)
		if got := w.AskBool("ok?", tt.defaultValue); got != tt.want {
			t.Errorf("AskBool(%q, %v) = %v, want %v", tt.input, tt.defaultValue, got, tt.want)
		}
	}
}

func TestAskIntRetriesUntilValid(t *testing.T) {
	w, out := newTestWizard("abc\n70000\n9090\n")
	if got := w.AskInt("port", 8080, 1, 65535); got != 9090 {
		t.Errorf("Expected 9090, got %d", got)
	}
	if strings.Count(out.String(), "❌") != 2 {
		t.Errorf("Expected two retry messages, got:\n%s", out.String())
	}

	// 入力が尽きたら既定値
	w, _ = newTestWizard("abc\n")
	if got := w.AskInt("port", 8080, 1, 65535); got != 8080 {
		t.Errorf("Expected default on EOF, got %d", got)
	}
}

func TestAskChoice(t *testing.T) {
	w, _ := newTestWizard("5\n2\n")
	if got := w.AskChoice("pick", []string{"a", "b", "c"}, 0); got != 1 {
		t.Errorf("Expected index 1, got %d", got)
	}

	w, _ = newTestWizard("\n")
	if got := w.AskChoice("pick", []string{"a", "b"}, 1); got != 1 {
		t.Errorf("Expected default index, got %d", got)
	}
}

func TestAskString(t *testing.T) {
	w, _ := newTestWizard("  work \n\n")
	if got := w.AskString("session", "default"); got != "work" {
		t.Errorf("Expected work, got %q", got)
	}
	if got := w.AskString("session", "default"); got != "default" {
		t.Errorf("Expected default, got %q", got)
	}
}

func TestConfigWizard(t *testing.T) {
	// language, theme, scientific, angle, storage, encrypt, port, confirm
	input := strings.Join([]string{"2", "2", "y", "2", "2", "n", "9090", "y"}, "\n") + "\n"
	w, out := newTestWizard(input)

	config := utils.NewDefaultConfig()
	if !w.ConfigWizard(config) {
		t.Fatalf("Wizard should confirm, output:\n%s", out.String())
	}

	if config.Language != "ja" || config.Theme != "dark" || !config.Scientific {
		t.Errorf("Unexpected display settings: %+v", config)
	}
	if config.AngleMode != "rad" || config.Storage != "duckdb" || config.Encrypt || config.Port != 9090 {
		t.Errorf("Unexpected settings: %+v", config)
	}
}

func TestConfigWizardDefaultsAndCancel(t *testing.T) {
	input := strings.Repeat("\n", 7) + "n\n"
	w, _ := newTestWizard(input)

	config := utils.NewDefaultConfig()
	if w.ConfigWizard(config) {
		t.Error("Wizard should report cancel")
	}
	defaults := utils.NewDefaultConfig()
	if config.Language != defaults.Language || config.Storage != defaults.Storage || config.Port != defaults.Port {
		t.Errorf("Defaults should be kept: %+v", config)
	}
}
