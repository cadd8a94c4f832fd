package types

import (
	"fmt"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Operator は保留中の二項演算子を表す
type Operator int

const (
	// OpNone は保留中の演算子がないことを表す
	OpNone Operator = iota
	// OpAdd は加算
	OpAdd
	// OpSub は減算
	OpSub
	// OpMul は乗算
	OpMul
	// OpDiv は除算
	OpDiv
	// OpPow はべき乗
	OpPow
)

// IsValid はOperatorが実際の演算子かどうかをチェックする
func (o Operator) IsValid() bool {
	switch o {
	case OpAdd, OpSub, OpMul, OpDiv, OpPow:
		return true
	default:
		return false
	}
}

// Symbol は履歴と式表示に使う記号を返す
func (o Operator) Symbol() string {
	switch o {
	case OpAdd:
		return "+"
	case OpSub:
		return "−"
	case OpMul:
		return "×"
	case OpDiv:
		return "÷"
	case OpPow:
		return "^"
	default:
		return ""
	}
}

// String はOperatorの文字列表現を返す
func (o Operator) String() string {
	if s := o.Symbol(); s != "" {
		return s
	}
	return "none"
}

// ParseOperator はキー入力やコマンド引数から演算子を解析する
func ParseOperator(s string) (Operator, error) {
	switch strings.TrimSpace(s) {
	case "+":
		return OpAdd, nil
	case "-", "−":
		return OpSub, nil
	case "*", "×", "x":
		return OpMul, nil
	case "/", "÷":
		return OpDiv, nil
	case "^", "**":
		return OpPow, nil
	default:
		return OpNone, fmt.Errorf("無効な演算子: %q", s)
	}
}

// Function は単項関数（関数電卓モード）を表す
type Function string

const (
	FnSqrt      Function = "sqrt"
	FnLog       Function = "log"
	FnLn        Function = "ln"
	FnSin       Function = "sin"
	FnCos       Function = "cos"
	FnTan       Function = "tan"
	FnAsin      Function = "asin"
	FnAcos      Function = "acos"
	FnAtan      Function = "atan"
	FnExp       Function = "exp"
	FnAbs       Function = "abs"
	FnSquare    Function = "square"
	FnCube      Function = "cube"
	FnInverse   Function = "inverse"
	FnFactorial Function = "factorial"
	FnPercent   Function = "percent"
	// FnPowY は即座に計算せず、べき乗演算子の入力を開始する
	FnPowY Function = "powY"
)

// Functions は定義済みの単項関数をボタン順で列挙する
var Functions = []Function{
	FnSqrt, FnLog, FnLn,
	FnSin, FnCos, FnTan,
	FnAsin, FnAcos, FnAtan,
	FnExp, FnAbs, FnSquare, FnCube,
	FnInverse, FnFactorial, FnPercent,
	FnPowY,
}

// IsValid はFunctionが定義済みかどうかをチェックする
func (f Function) IsValid() bool {
	for _, fn := range Functions {
		if fn == f {
			return true
		}
	}
	return false
}

// IsTrig は角度モードの影響を受ける三角関数かどうかを返す
func (f Function) IsTrig() bool {
	switch f {
	case FnSin, FnCos, FnTan, FnAsin, FnAcos, FnAtan:
		return true
	default:
		return false
	}
}

// Symbol は履歴表示に使う関数記号を返す
func (f Function) Symbol() string {
	switch f {
	case FnSqrt:
		return "√"
	case FnAsin:
		return "sin⁻¹"
	case FnAcos:
		return "cos⁻¹"
	case FnAtan:
		return "tan⁻¹"
	case FnSquare:
		return "sqr"
	case FnInverse:
		return "1/"
	case FnFactorial:
		return "fact"
	case FnPercent:
		return "%"
	default:
		return string(f)
	}
}

// ParseFunction は関数名を解析する
func ParseFunction(s string) (Function, error) {
	f := Function(strings.TrimSpace(s))
	if !f.IsValid() {
		return "", fmt.Errorf("無効な関数: %q", s)
	}
	return f, nil
}

// AngleMode は三角関数の角度単位
type AngleMode string

const (
	// AngleDegrees は度数法
	AngleDegrees AngleMode = "deg"
	// AngleRadians は弧度法
	AngleRadians AngleMode = "rad"
)

// IsValid はAngleModeが有効かどうかをチェックする
func (a AngleMode) IsValid() bool {
	return a == AngleDegrees || a == AngleRadians
}

// ParseAngleMode は角度モードを解析する
func ParseAngleMode(s string) (AngleMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "deg", "degree", "degrees":
		return AngleDegrees, nil
	case "rad", "radian", "radians":
		return AngleRadians, nil
	default:
		return "", fmt.Errorf("無効な角度モード: %q", s)
	}
}

// Constant は入力可能な数学定数
type Constant string

const (
	ConstPi Constant = "pi"
	ConstE  Constant = "e"
)

// EntryKind は履歴エントリの種類
type EntryKind string

const (
	// EntryBinary は二項演算の結果
	EntryBinary EntryKind = "binary"
	// EntryFunction は単項関数の結果
	EntryFunction EntryKind = "function"
)

// HistoryEntry は計算履歴の1件を表す
type HistoryEntry struct {
	// ID はエントリの一意識別子
	ID string `json:"id"`
	// Expression は "12 + 3" や "√(7)" のような式テキスト
	Expression string `json:"expression"`
	// Result は表示用にフォーマットされた結果
	Result string `json:"result"`
	// Timestamp は表示用の時刻ラベル
	Timestamp string `json:"timestamp"`
	// Kind は二項演算か関数適用か
	Kind EntryKind `json:"kind,omitempty"`
	// CreatedAt はエントリが作成された時刻
	CreatedAt time.Time `json:"created_at"`
}

// String は "<式> = <結果>" 形式を返す
func (h HistoryEntry) String() string {
	return h.Expression + " = " + h.Result
}

// Validate はHistoryEntryが有効かどうかをチェックする
func (h *HistoryEntry) Validate() error {
	if h.ID == "" {
		return fmt.Errorf("履歴IDは空にできません")
	}
	if h.Expression == "" {
		return fmt.Errorf("式は空にできません")
	}
	if h.Result == "" {
		return fmt.Errorf("結果は空にできません")
	}
	return nil
}

// ToJSON はHistoryEntryをJSON文字列に変換する
func (h *HistoryEntry) ToJSON() (string, error) {
	if err := h.Validate(); err != nil {
		return "", fmt.Errorf("検証に失敗しました: %w", err)
	}
	data, err := json.Marshal(h)
	if err != nil {
		return "", fmt.Errorf("JSONマーシャルに失敗しました: %w", err)
	}
	return string(data), nil
}

// HistoryEntryFromJSON はJSON文字列からHistoryEntryを作成する
func HistoryEntryFromJSON(jsonStr string) (*HistoryEntry, error) {
	var entry HistoryEntry
	if err := json.Unmarshal([]byte(jsonStr), &entry); err != nil {
		return nil, fmt.Errorf("JSONアンマーシャルに失敗しました: %w", err)
	}
	if err := entry.Validate(); err != nil {
		return nil, fmt.Errorf("検証に失敗しました: %w", err)
	}
	return &entry, nil
}

// Snapshot はセッション復元のために永続化される状態
type Snapshot struct {
	Theme            string         `json:"theme"`
	History          []HistoryEntry `json:"history"`
	IsScientificMode bool           `json:"isScientificMode"`
	AngleMode        AngleMode      `json:"angleMode,omitempty"`
}

// Statistics は履歴アーカイブの集計統計を表す
type Statistics struct {
	// TotalEntries はアーカイブされた履歴の総数
	TotalEntries int `json:"total_entries"`
	// BinaryEntries は二項演算の件数
	BinaryEntries int `json:"binary_entries"`
	// FunctionEntries は関数適用の件数
	FunctionEntries int `json:"function_entries"`
	// Sessions は記録されたセッション数
	Sessions int `json:"sessions"`
	// FirstEntry は最初のエントリの時刻
	FirstEntry *time.Time `json:"first_entry,omitempty"`
	// LastEntry は最後のエントリの時刻
	LastEntry *time.Time `json:"last_entry,omitempty"`
}
