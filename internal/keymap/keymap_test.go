package keymap

import (
	"testing"
	"time"

	"github.com/pocketcalc/pcalc/internal/engine"
	"github.com/pocketcalc/pcalc/internal/errors"
)

func TestTranslateKey(t *testing.T) {
	tests := []struct {
		key     string
		kind    engine.CommandKind
		payload string
	}{
		{"7", engine.CmdDigit, "7"},
		{"0", engine.CmdDigit, "0"},
		{"*", engine.CmdOperator, "*"},
		{"^", engine.CmdOperator, "^"},
		{"Enter", engine.CmdEquals, ""},
		{"=", engine.CmdEquals, ""},
		{".", engine.CmdDecimal, ""},
		{"Backspace", engine.CmdBackspace, ""},
		{"Delete", engine.CmdClearEntry, ""},
		{"Escape", engine.CmdClearAll, ""},
		{"C", engine.CmdClearAll, ""},
		{"F9", engine.CmdNegate, ""},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			cmd, err := TranslateKey(tt.key)
			if err != nil {
				t.Fatalf("TranslateKey(%q) failed: %v", tt.key, err)
			}
			if cmd.Kind != tt.kind || cmd.Payload != tt.payload {
				t.Errorf("TranslateKey(%q) = %v %q, want %v %q", tt.key, cmd.Kind, cmd.Payload, tt.kind, tt.payload)
			}
		})
	}

	for _, key := range []string{"a", "Shift", "12", " ", ""} {
		if _, err := TranslateKey(key); !errors.Is(err, errors.ErrInput) {
			t.Errorf("TranslateKey(%q) should be an input error, got %v", key, err)
		}
	}
}

func TestTranslateWord(t *testing.T) {
	tests := []struct {
		word  string
		kinds []engine.CommandKind
	}{
		{"12", []engine.CommandKind{engine.CmdDigit, engine.CmdDigit}},
		{"3.5", []engine.CommandKind{engine.CmdDigit, engine.CmdDecimal, engine.CmdDigit}},
		{".5", []engine.CommandKind{engine.CmdDecimal, engine.CmdDigit}},
		{"-7", []engine.CommandKind{engine.CmdDigit, engine.CmdNegate}},
		{"-", []engine.CommandKind{engine.CmdOperator}},
		{"×", []engine.CommandKind{engine.CmdOperator}},
		{"SQRT", []engine.CommandKind{engine.CmdFunction}},
		{"powY", []engine.CommandKind{engine.CmdFunction}},
		{"1/x", []engine.CommandKind{engine.CmdFunction}},
		{"rad", []engine.CommandKind{engine.CmdAngleMode}},
		{"pi", []engine.CommandKind{engine.CmdConstant}},
		{"ce", []engine.CommandKind{engine.CmdClearEntry}},
		{"AC", []engine.CommandKind{engine.CmdClearAll}},
		{"neg", []engine.CommandKind{engine.CmdNegate}},
		{"hc", []engine.CommandKind{engine.CmdClearHistory}},
	}

	for _, tt := range tests {
		t.Run(tt.word, func(t *testing.T) {
			cmds, err := TranslateWord(tt.word)
			if err != nil {
				t.Fatalf("TranslateWord(%q) failed: %v", tt.word, err)
			}
			if len(cmds) != len(tt.kinds) {
				t.Fatalf("TranslateWord(%q) = %v, want kinds %v", tt.word, cmds, tt.kinds)
			}
			for i, kind := range tt.kinds {
				if cmds[i].Kind != kind {
					t.Errorf("cmds[%d] = %v, want %v", i, cmds[i].Kind, kind)
				}
			}
		})
	}

	for _, word := range []string{"1.2.3", "abc", "1e5", "--3", "-."} {
		if _, err := TranslateWord(word); !errors.Is(err, errors.ErrInput) {
			t.Errorf("TranslateWord(%q) should fail, got %v", word, err)
		}
	}
}

func run(t *testing.T, line string) *engine.Engine {
	t.Helper()
	e := engine.New(engine.Options{
		Clock: func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) },
	})
	cmds, err := Parse(line)
	if err != nil {
		t.Fatalf("Parse(%q) failed: %v", line, err)
	}
	for _, cmd := range cmds {
		if err := e.Dispatch(cmd); err != nil {
			t.Fatalf("Dispatch(%v) failed: %v", cmd, err)
		}
	}
	return e
}

func TestParseDrivesEngine(t *testing.T) {
	tests := []struct {
		line string
		want string
	}{
		{"12 + 3 =", "15"},
		{"7 sqrt", "2.6457513111"},
		{"5 powY 3 =", "125"},
		{"5 * -7 =", "-35"},
		{"1 / 0 =", "∞"},
		{"30 sin", "0.5"},
		{"rad pi cos", "-1"},
		{"2 + 3 * 4 = # comment", "20"},
		{"4 '1/x'", "0.25"},
		{"", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			if got := run(t, tt.line).DisplayText(); got != tt.want {
				t.Errorf("%q displayed %s, want %s", tt.line, got, tt.want)
			}
		})
	}
}

func TestParseErrors(t *testing.T) {
	if _, err := Parse(`12 "unterminated`); !errors.Is(err, errors.ErrInput) {
		t.Errorf("Expected input error for unterminated quote, got %v", err)
	}
	if _, err := Parse("12 frobnicate"); !errors.Is(err, errors.ErrInput) {
		t.Errorf("Expected input error for unknown word, got %v", err)
	}
}
