// Package keymap は、キーボードのキー名やREPLの単語をエンジンのコマンドに変換する。
package keymap

import (
	"strings"

	"github.com/google/shlex"

	"github.com/pocketcalc/pcalc/internal/engine"
	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// TranslateKey はブラウザの KeyboardEvent.key 相当のキー名をコマンドに変換する
func TranslateKey(key string) (engine.Command, error) {
	if len(key) == 1 && key[0] >= '0' && key[0] <= '9' {
		return engine.Command{Kind: engine.CmdDigit, Payload: key}, nil
	}

	switch key {
	case "+", "-", "*", "/", "^":
		return engine.Command{Kind: engine.CmdOperator, Payload: key}, nil
	case "Enter", "=":
		return engine.Command{Kind: engine.CmdEquals}, nil
	case ".", ",":
		return engine.Command{Kind: engine.CmdDecimal}, nil
	case "Backspace":
		return engine.Command{Kind: engine.CmdBackspace}, nil
	case "Delete":
		return engine.Command{Kind: engine.CmdClearEntry}, nil
	case "Escape", "c", "C":
		return engine.Command{Kind: engine.CmdClearAll}, nil
	case "F9":
		return engine.Command{Kind: engine.CmdNegate}, nil
	}
	return engine.Command{}, errors.InvalidInput("unknown_key", key)
}

// words はREPLの予約語
var words = map[string]engine.Command{
	"=":     {Kind: engine.CmdEquals},
	".":     {Kind: engine.CmdDecimal},
	"ce":    {Kind: engine.CmdClearEntry},
	"ac":    {Kind: engine.CmdClearAll},
	"c":     {Kind: engine.CmdClearAll},
	"clear": {Kind: engine.CmdClearAll},
	"bs":    {Kind: engine.CmdBackspace},
	"<":     {Kind: engine.CmdBackspace},
	"neg":   {Kind: engine.CmdNegate},
	"±":     {Kind: engine.CmdNegate},
	"+/-":   {Kind: engine.CmdNegate},
	"hc":    {Kind: engine.CmdClearHistory},
	"deg":   {Kind: engine.CmdAngleMode, Payload: string(types.AngleDegrees)},
	"rad":   {Kind: engine.CmdAngleMode, Payload: string(types.AngleRadians)},
	"pi":    {Kind: engine.CmdConstant, Payload: string(types.ConstPi)},
	"π":     {Kind: engine.CmdConstant, Payload: string(types.ConstPi)},
	"e":     {Kind: engine.CmdConstant, Payload: string(types.ConstE)},
}

// functionAliases は関数名の別名
var functionAliases = map[string]types.Function{
	"√":    types.FnSqrt,
	"sq":   types.FnSquare,
	"x2":   types.FnSquare,
	"x3":   types.FnCube,
	"inv":  types.FnInverse,
	"1/x":  types.FnInverse,
	"fact": types.FnFactorial,
	"!":    types.FnFactorial,
	"%":    types.FnPercent,
	"pow":  types.FnPowY,
	"powy": types.FnPowY,
	"xy":   types.FnPowY,
}

// TranslateWord はREPLの1単語をコマンド列に変換する
// 数値リテラルは桁ごとのコマンドに展開する（"-3.5" は 3 . 5 と符号反転）
func TranslateWord(word string) ([]engine.Command, error) {
	lower := strings.ToLower(word)

	if cmd, ok := words[lower]; ok {
		return []engine.Command{cmd}, nil
	}
	if _, err := types.ParseOperator(word); err == nil {
		return []engine.Command{{Kind: engine.CmdOperator, Payload: word}}, nil
	}
	if fn, ok := functionAliases[lower]; ok {
		return []engine.Command{{Kind: engine.CmdFunction, Payload: string(fn)}}, nil
	}
	for _, fn := range types.Functions {
		if strings.EqualFold(string(fn), word) {
			return []engine.Command{{Kind: engine.CmdFunction, Payload: string(fn)}}, nil
		}
	}
	if cmds, ok := numberCommands(word); ok {
		return cmds, nil
	}
	return nil, errors.InvalidInput("invalid_command", word)
}

// numberCommands は "12"、"3.5"、".5"、"-7" のような数値リテラルを展開する
func numberCommands(word string) ([]engine.Command, bool) {
	negative := strings.HasPrefix(word, "-")
	body := strings.TrimPrefix(word, "-")
	if body == "" || body == "." {
		return nil, false
	}

	cmds := make([]engine.Command, 0, len(body)+1)
	seenDecimal := false
	for _, r := range body {
		switch {
		case r >= '0' && r <= '9':
			cmds = append(cmds, engine.Command{Kind: engine.CmdDigit, Payload: string(r)})
		case r == '.' && !seenDecimal:
			seenDecimal = true
			cmds = append(cmds, engine.Command{Kind: engine.CmdDecimal})
		default:
			return nil, false
		}
	}
	if negative {
		cmds = append(cmds, engine.Command{Kind: engine.CmdNegate})
	}
	return cmds, true
}

// Parse はREPLの1行をシェルのクォート規則で分割し、コマンド列に変換する
// 空行や "#" 以降のコメントはコマンドを生まない
func Parse(line string) ([]engine.Command, error) {
	tokens, err := shlex.Split(line)
	if err != nil {
		return nil, errors.WrapError(err, errors.ErrorTypeInput, "invalid_command", line)
	}

	var cmds []engine.Command
	for _, token := range tokens {
		translated, err := TranslateWord(token)
		if err != nil {
			return nil, err
		}
		cmds = append(cmds, translated...)
	}
	return cmds, nil
}
