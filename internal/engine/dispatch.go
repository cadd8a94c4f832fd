package engine

import (
	"strings"
	"unicode/utf8"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// CommandKind はエンジンに送るコマンドの種類
type CommandKind int

const (
	CmdDigit CommandKind = iota + 1
	CmdDecimal
	CmdOperator
	CmdFunction
	CmdEquals
	CmdBackspace
	CmdClearEntry
	CmdClearAll
	CmdAngleMode
	CmdClearHistory
	CmdNegate
	CmdConstant
)

var commandNames = map[CommandKind]string{
	CmdDigit:        "digit",
	CmdDecimal:      "decimal",
	CmdOperator:     "operator",
	CmdFunction:     "function",
	CmdEquals:       "equals",
	CmdBackspace:    "backspace",
	CmdClearEntry:   "clear_entry",
	CmdClearAll:     "clear_all",
	CmdAngleMode:    "angle_mode",
	CmdClearHistory: "clear_history",
	CmdNegate:       "negate",
	CmdConstant:     "constant",
}

// String はコマンド種別のワイヤ名を返す
func (k CommandKind) String() string {
	if name, ok := commandNames[k]; ok {
		return name
	}
	return "unknown"
}

// ParseCommandKind はワイヤ名からコマンド種別を解析する
func ParseCommandKind(name string) (CommandKind, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	for kind, n := range commandNames {
		if n == name {
			return kind, nil
		}
	}
	return 0, errors.InvalidInput("invalid_command", name)
}

// Command は種別と引数の組
type Command struct {
	Kind    CommandKind `json:"kind"`
	Payload string      `json:"payload,omitempty"`
}

// Dispatch はコマンドを対応する状態遷移に振り分ける
func (e *Engine) Dispatch(cmd Command) error {
	switch cmd.Kind {
	case CmdDigit:
		d, size := utf8.DecodeRuneInString(cmd.Payload)
		if size == 0 || size != len(cmd.Payload) {
			return errors.InvalidInput("invalid_digit", cmd.Payload)
		}
		return e.InputDigit(d)
	case CmdDecimal:
		e.InputDecimal()
	case CmdOperator:
		op, err := types.ParseOperator(cmd.Payload)
		if err != nil {
			return errors.InvalidInput("invalid_operator", cmd.Payload)
		}
		return e.SetOperator(op)
	case CmdFunction:
		fn, err := types.ParseFunction(cmd.Payload)
		if err != nil {
			return errors.InvalidInput("invalid_function", cmd.Payload)
		}
		return e.ApplyFunction(fn)
	case CmdEquals:
		e.Equals()
	case CmdBackspace:
		e.Backspace()
	case CmdClearEntry:
		e.ClearEntry()
	case CmdClearAll:
		e.ClearAll()
	case CmdAngleMode:
		mode, err := types.ParseAngleMode(cmd.Payload)
		if err != nil {
			return errors.InvalidInput("invalid_angle_mode", cmd.Payload)
		}
		return e.SetAngleMode(mode)
	case CmdClearHistory:
		e.ClearHistory()
	case CmdNegate:
		e.Negate()
	case CmdConstant:
		return e.InputConstant(types.Constant(strings.ToLower(strings.TrimSpace(cmd.Payload))))
	default:
		return errors.InvalidInput("invalid_command", cmd.Kind.String())
	}
	return nil
}
