package engine

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// TimestampLayout は履歴エントリの時刻ラベルの書式
const TimestampLayout = "15:04:05"

// State はエンジンの入力蓄積状態
type State struct {
	// Buffer は入力中の数値テキスト（空にはならない）
	Buffer string
	// FirstOperand は保留中の左オペランド。HasFirstOperand が false なら無効
	FirstOperand    float64
	HasFirstOperand bool
	// PendingOperator は保留中の演算子（OpNone なら保留なし）
	PendingOperator types.Operator
	// AwaitingOperand が true なら次の数字はバッファを置き換える
	AwaitingOperand bool
	AngleMode       types.AngleMode

	// operandReady は関数結果や定数がバッファに入り、オペランドとして確定していることを示す
	operandReady bool
}

// Options はエンジンの初期化オプション
type Options struct {
	// History は復元する履歴（新しい順）
	History []types.HistoryEntry
	// AngleMode は初期の角度モード（省略時は度数法）
	AngleMode types.AngleMode
	// OnHistoryChange は履歴が変化するたびに新しい順の履歴で呼ばれる
	OnHistoryChange func(history []types.HistoryEntry)
	// Clock は時刻ラベルに使う現在時刻（省略時は time.Now）
	Clock func() time.Time
	// NewID は履歴エントリのIDを生成する（省略時は UUID）
	NewID func() string
}

// Engine は電卓の入力ステートマシン
// ロックを持たないため、1つのセッションから逐次的に呼び出すこと
type Engine struct {
	state           State
	history         *History
	onHistoryChange func([]types.HistoryEntry)
	now             func() time.Time
	newID           func() string
}

// New は新しいエンジンを作成する
func New(opts Options) *Engine {
	mode := opts.AngleMode
	if !mode.IsValid() {
		mode = types.AngleDegrees
	}
	e := &Engine{
		history:         NewHistory(MaxHistory, opts.History),
		onHistoryChange: opts.OnHistoryChange,
		now:             opts.Clock,
		newID:           opts.NewID,
	}
	if e.now == nil {
		e.now = time.Now
	}
	if e.newID == nil {
		e.newID = uuid.NewString
	}
	e.state = initialState(mode)
	return e
}

func initialState(mode types.AngleMode) State {
	return State{Buffer: "0", AngleMode: mode}
}

// State は現在の状態のコピーを返す
func (e *Engine) State() State {
	return e.state
}

// InputDigit は数字を1文字入力する
func (e *Engine) InputDigit(d rune) error {
	if d < '0' || d > '9' {
		return errors.InvalidInput("invalid_digit", string(d))
	}
	s := &e.state
	digit := string(d)

	switch {
	case s.AwaitingOperand:
		s.Buffer = digit
		s.AwaitingOperand = false
		s.operandReady = false
	case s.Buffer == "0":
		s.Buffer = digit
	case s.Buffer == "-0":
		s.Buffer = "-" + digit
	default:
		s.Buffer += digit
	}
	return nil
}

// InputDecimal は小数点を入力する。既に小数点があれば何もしない
func (e *Engine) InputDecimal() {
	s := &e.state
	if s.AwaitingOperand {
		s.Buffer = "0."
		s.AwaitingOperand = false
		s.operandReady = false
		return
	}
	if !strings.Contains(s.Buffer, ".") {
		s.Buffer += "."
	}
}

// SetOperator は二項演算子を設定する
// 第2オペランド入力前の連続した演算子は置き換えとして扱い、計算しない
func (e *Engine) SetOperator(op types.Operator) error {
	if !op.IsValid() {
		return errors.InvalidInput("invalid_operator", op.String())
	}
	s := &e.state

	switch {
	case s.PendingOperator != types.OpNone && s.AwaitingOperand && !s.operandReady:
		s.PendingOperator = op
		return nil
	case !s.HasFirstOperand:
		s.FirstOperand = parseBuffer(s.Buffer)
		s.HasFirstOperand = true
	case s.PendingOperator != types.OpNone:
		second := parseBuffer(s.Buffer)
		result := RoundResult(Apply(s.PendingOperator, s.FirstOperand, second))
		e.recordBinary(s.FirstOperand, s.PendingOperator, second, result)
		s.FirstOperand = result
		s.Buffer = FormatNumber(result)
	}

	s.PendingOperator = op
	s.AwaitingOperand = true
	s.operandReady = false
	return nil
}

// Equals は保留中の演算を確定する。演算が保留されていなければ何もしない
// 結果は次の SetOperator で第1オペランドとして再利用される
func (e *Engine) Equals() {
	s := &e.state
	if !s.HasFirstOperand || s.PendingOperator == types.OpNone {
		return
	}

	second := parseBuffer(s.Buffer)
	result := RoundResult(Apply(s.PendingOperator, s.FirstOperand, second))
	e.recordBinary(s.FirstOperand, s.PendingOperator, second, result)

	s.Buffer = FormatNumber(result)
	s.FirstOperand = 0
	s.HasFirstOperand = false
	s.PendingOperator = types.OpNone
	s.AwaitingOperand = true
	s.operandReady = false
}

// ApplyFunction はバッファに単項関数を適用する
// 定義域外なら DomainError を返し、状態は変更しない
func (e *Engine) ApplyFunction(fn types.Function) error {
	if !fn.IsValid() {
		return errors.InvalidInput("invalid_function", string(fn))
	}
	s := &e.state
	input := parseBuffer(s.Buffer)

	if fn == types.FnPowY {
		if s.PendingOperator != types.OpNone && !(s.AwaitingOperand && !s.operandReady) {
			// 保留中の演算を先に畳み込んでからべき乗に入る
			return e.SetOperator(types.OpPow)
		}
		s.FirstOperand = input
		s.HasFirstOperand = true
		s.PendingOperator = types.OpPow
		s.AwaitingOperand = true
		s.operandReady = false
		return nil
	}

	value, err := Evaluate(fn, input, s.AngleMode)
	if err != nil {
		return err
	}
	result := RoundResult(value)

	expr := fn.Symbol() + "(" + FormatNumber(input) + ")"
	if fn.IsTrig() {
		expr += " (" + string(s.AngleMode) + ")"
	}
	e.record(expr, FormatNumber(result), types.EntryFunction)

	s.Buffer = FormatNumber(result)
	s.AwaitingOperand = true
	s.operandReady = true
	return nil
}

// InputConstant はバッファに定数を読み込む
func (e *Engine) InputConstant(c types.Constant) error {
	value, ok := constantValue(c)
	if !ok {
		return errors.InvalidInput("invalid_constant", string(c))
	}
	s := &e.state
	s.Buffer = FormatNumber(value)
	s.AwaitingOperand = true
	s.operandReady = true
	return nil
}

// Negate は入力中の数値の符号を反転する
func (e *Engine) Negate() {
	s := &e.state
	switch {
	case s.Buffer == GlyphNaN:
		return
	case strings.HasPrefix(s.Buffer, "-"):
		s.Buffer = s.Buffer[1:]
	case s.Buffer == "0":
		return
	default:
		s.Buffer = "-" + s.Buffer
	}
	if s.AwaitingOperand {
		s.operandReady = true
	}
}

// Backspace はバッファの最後の1文字を削除する。バッファが空になれば "0" に戻す
func (e *Engine) Backspace() {
	s := &e.state
	if !isPlainEntry(s.Buffer) {
		s.Buffer = "0"
		return
	}
	buf := s.Buffer[:len(s.Buffer)-1]
	if buf == "" || buf == "-" {
		buf = "0"
	}
	s.Buffer = buf
}

// ClearEntry はバッファだけを "0" に戻す
func (e *Engine) ClearEntry() {
	e.state.Buffer = "0"
}

// ClearAll は履歴と角度モード以外のすべてを初期状態に戻す
func (e *Engine) ClearAll() {
	e.state = initialState(e.state.AngleMode)
}

// SetAngleMode は三角関数の角度モードを設定する
func (e *Engine) SetAngleMode(mode types.AngleMode) error {
	if !mode.IsValid() {
		return errors.InvalidInput("invalid_angle_mode", string(mode))
	}
	e.state.AngleMode = mode
	return nil
}

// AngleMode は現在の角度モードを返す
func (e *Engine) AngleMode() types.AngleMode {
	return e.state.AngleMode
}

// DisplayText は表示用のバッファを返す
func (e *Engine) DisplayText() string {
	return e.state.Buffer
}

// Expression は保留中の式（例: "12 +"）を返す。演算が保留されていなければ空文字
func (e *Engine) Expression() string {
	s := e.state
	if !s.HasFirstOperand || s.PendingOperator == types.OpNone {
		return ""
	}
	expr := FormatNumber(s.FirstOperand) + " " + s.PendingOperator.Symbol()
	if !s.AwaitingOperand || s.operandReady {
		expr += " " + s.Buffer
	}
	return expr
}

// History は新しい順の履歴のコピーを返す
func (e *Engine) History() []types.HistoryEntry {
	return e.history.Entries()
}

// ClearHistory は履歴を消去する
func (e *Engine) ClearHistory() {
	e.history.Clear()
	e.notifyHistory()
}

func (e *Engine) recordBinary(first float64, op types.Operator, second, result float64) {
	expr := FormatNumber(first) + " " + op.Symbol() + " " + FormatNumber(second)
	e.record(expr, FormatNumber(result), types.EntryBinary)
}

func (e *Engine) record(expression, result string, kind types.EntryKind) {
	now := e.now()
	e.history.Add(types.HistoryEntry{
		ID:         e.newID(),
		Expression: expression,
		Result:     result,
		Timestamp:  now.Format(TimestampLayout),
		Kind:       kind,
		CreatedAt:  now,
	})
	e.notifyHistory()
}

func (e *Engine) notifyHistory() {
	if e.onHistoryChange != nil {
		e.onHistoryChange(e.history.Entries())
	}
}
