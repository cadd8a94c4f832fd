package types

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

// TestOperator はOperatorの基本動作をテストする
func TestOperator(t *testing.T) {
	tests := []struct {
		name     string
		op       Operator
		isValid  bool
		expected string
	}{
		{"Add", OpAdd, true, "+"},
		{"Sub", OpSub, true, "−"},
		{"Mul", OpMul, true, "×"},
		{"Div", OpDiv, true, "÷"},
		{"Pow", OpPow, true, "^"},
		{"None", OpNone, false, "none"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.op.IsValid(); got != tt.isValid {
				t.Errorf("Operator.IsValid() = %v, want %v", got, tt.isValid)
			}
			if got := tt.op.String(); got != tt.expected {
				t.Errorf("Operator.String() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestParseOperator(t *testing.T) {
	tests := []struct {
		input   string
		want    Operator
		wantErr bool
	}{
		{"+", OpAdd, false},
		{"-", OpSub, false},
		{"−", OpSub, false},
		{"*", OpMul, false},
		{"x", OpMul, false},
		{"×", OpMul, false},
		{"/", OpDiv, false},
		{"÷", OpDiv, false},
		{"^", OpPow, false},
		{"**", OpPow, false},
		{" + ", OpAdd, false},
		{"%", OpNone, true},
		{"", OpNone, true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseOperator(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseOperator(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseOperator(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

// TestFunction はFunctionの検証と記号をテストする
func TestFunction(t *testing.T) {
	tests := []struct {
		fn     Function
		symbol string
		trig   bool
	}{
		{FnSqrt, "√", false},
		{FnLog, "log", false},
		{FnSin, "sin", true},
		{FnAsin, "sin⁻¹", true},
		{FnAtan, "tan⁻¹", true},
		{FnSquare, "sqr", false},
		{FnInverse, "1/", false},
		{FnFactorial, "fact", false},
		{FnPercent, "%", false},
		{FnPowY, "powY", false},
	}

	for _, tt := range tests {
		t.Run(string(tt.fn), func(t *testing.T) {
			if !tt.fn.IsValid() {
				t.Errorf("Expected %s to be valid", tt.fn)
			}
			if got := tt.fn.Symbol(); got != tt.symbol {
				t.Errorf("Symbol() = %q, want %q", got, tt.symbol)
			}
			if got := tt.fn.IsTrig(); got != tt.trig {
				t.Errorf("IsTrig() = %v, want %v", got, tt.trig)
			}
		})
	}

	if Function("cbrt").IsValid() {
		t.Error("Expected cbrt to be invalid")
	}
	if len(Functions) != 17 {
		t.Errorf("Expected 17 functions, got %d", len(Functions))
	}
}

func TestParseFunction(t *testing.T) {
	if fn, err := ParseFunction(" sqrt "); err != nil || fn != FnSqrt {
		t.Errorf("Expected sqrt, got %q (%v)", fn, err)
	}
	if _, err := ParseFunction("sinh"); err == nil {
		t.Error("Expected error for unknown function")
	}
}

func TestParseAngleMode(t *testing.T) {
	tests := []struct {
		input   string
		want    AngleMode
		wantErr bool
	}{
		{"deg", AngleDegrees, false},
		{"Degrees", AngleDegrees, false},
		{"degree", AngleDegrees, false},
		{"rad", AngleRadians, false},
		{"RADIANS", AngleRadians, false},
		{"grad", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseAngleMode(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAngleMode(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParseAngleMode(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if !tt.wantErr && !got.IsValid() {
				t.Errorf("Expected %q to be valid", got)
			}
		})
	}
}

// TestHistoryEntry はHistoryEntryの検証とJSON変換をテストする
func TestHistoryEntry(t *testing.T) {
	tests := []struct {
		name      string
		entry     HistoryEntry
		wantValid bool
	}{
		{
			name:      "Valid entry",
			entry:     HistoryEntry{ID: "h1", Expression: "12 + 3", Result: "15", Timestamp: "10:00:00"},
			wantValid: true,
		},
		{
			name:      "Empty ID",
			entry:     HistoryEntry{Expression: "12 + 3", Result: "15"},
			wantValid: false,
		},
		{
			name:      "Empty expression",
			entry:     HistoryEntry{ID: "h1", Result: "15"},
			wantValid: false,
		},
		{
			name:      "Empty result",
			entry:     HistoryEntry{ID: "h1", Expression: "12 + 3"},
			wantValid: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.entry.Validate()
			if (err == nil) != tt.wantValid {
				t.Errorf("Validate() error = %v, wantValid %v", err, tt.wantValid)
			}
			if _, err := tt.entry.ToJSON(); (err == nil) != tt.wantValid {
				t.Errorf("ToJSON() error = %v, wantValid %v", err, tt.wantValid)
			}
		})
	}
}

func TestHistoryEntryString(t *testing.T) {
	entry := HistoryEntry{Expression: "√(9)", Result: "3"}
	if got := entry.String(); got != "√(9) = 3" {
		t.Errorf("Expected '√(9) = 3', got %q", got)
	}
}

func TestHistoryEntryJSONRoundTrip(t *testing.T) {
	created := time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)
	entry := &HistoryEntry{
		ID:         "h1",
		Expression: "2 ^ 10",
		Result:     "1024",
		Timestamp:  "09:30:00",
		Kind:       EntryBinary,
		CreatedAt:  created,
	}

	data, err := entry.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	for _, field := range []string{`"id"`, `"expression"`, `"result"`, `"timestamp"`, `"kind":"binary"`, `"created_at"`} {
		if !strings.Contains(data, field) {
			t.Errorf("Expected JSON to contain %s, got %s", field, data)
		}
	}

	decoded, err := HistoryEntryFromJSON(data)
	if err != nil {
		t.Fatalf("HistoryEntryFromJSON failed: %v", err)
	}
	if decoded.String() != entry.String() || !decoded.CreatedAt.Equal(created) || decoded.Kind != EntryBinary {
		t.Errorf("Round trip mismatch: %+v", decoded)
	}

	if _, err := HistoryEntryFromJSON(`{"id":""}`); err == nil {
		t.Error("Expected validation error for empty entry")
	}
	if _, err := HistoryEntryFromJSON(`{`); err == nil {
		t.Error("Expected error for malformed JSON")
	}
}

// TestSnapshotFieldNames は永続化フォーマットのフィールド名を確認する
func TestSnapshotFieldNames(t *testing.T) {
	snap := Snapshot{
		Theme:            "dark",
		History:          []HistoryEntry{},
		IsScientificMode: true,
		AngleMode:        AngleRadians,
	}
	data, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}

	var raw map[string]interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}
	for _, key := range []string{"theme", "history", "isScientificMode", "angleMode"} {
		if _, ok := raw[key]; !ok {
			t.Errorf("Expected key %q in %s", key, data)
		}
	}
}
