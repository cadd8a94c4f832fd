package engine

import (
	"math"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/pkg/types"
)

// maxFactorial は float64 で表現できる最大の階乗の引数
const maxFactorial = 170

// Apply は二項演算を評価する
// ゼロ除算は ±Inf または NaN になり、パニックや error にはならない
func Apply(op types.Operator, a, b float64) float64 {
	switch op {
	case types.OpAdd:
		return a + b
	case types.OpSub:
		return a - b
	case types.OpMul:
		return a * b
	case types.OpDiv:
		return a / b
	case types.OpPow:
		return math.Pow(a, b)
	default:
		return b
	}
}

// Evaluate は単項関数を評価する。定義域外の入力には DomainError を返す
// 三角関数は mode が度数法のとき入力をラジアンに変換し、逆三角関数は結果を度に戻す
func Evaluate(fn types.Function, x float64, mode types.AngleMode) (float64, error) {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0, errors.DomainError(fn.Symbol(), FormatNumber(x))
	}
	if !inDomain(fn, x) {
		return 0, errors.DomainError(fn.Symbol(), FormatNumber(x))
	}

	switch fn {
	case types.FnSqrt:
		return math.Sqrt(x), nil
	case types.FnLog:
		return math.Log10(x), nil
	case types.FnLn:
		return math.Log(x), nil
	case types.FnSin:
		return math.Sin(toRadians(x, mode)), nil
	case types.FnCos:
		return math.Cos(toRadians(x, mode)), nil
	case types.FnTan:
		return math.Tan(toRadians(x, mode)), nil
	case types.FnAsin:
		return fromRadians(math.Asin(x), mode), nil
	case types.FnAcos:
		return fromRadians(math.Acos(x), mode), nil
	case types.FnAtan:
		return fromRadians(math.Atan(x), mode), nil
	case types.FnExp:
		return math.Exp(x), nil
	case types.FnAbs:
		return math.Abs(x), nil
	case types.FnSquare:
		return x * x, nil
	case types.FnCube:
		return x * x * x, nil
	case types.FnInverse:
		return 1 / x, nil
	case types.FnFactorial:
		return factorial(int(x)), nil
	case types.FnPercent:
		return x / 100, nil
	default:
		return 0, errors.InvalidInput("invalid_function", string(fn))
	}
}

// inDomain は単項関数の定義域をチェックする
func inDomain(fn types.Function, x float64) bool {
	switch fn {
	case types.FnSqrt:
		return x >= 0
	case types.FnLog, types.FnLn:
		return x > 0
	case types.FnAsin, types.FnAcos:
		return x >= -1 && x <= 1
	case types.FnInverse:
		return x != 0
	case types.FnFactorial:
		return x >= 0 && x <= maxFactorial && x == math.Trunc(x)
	default:
		return true
	}
}

func factorial(n int) float64 {
	result := 1.0
	for i := 2; i <= n; i++ {
		result *= float64(i)
	}
	return result
}

func toRadians(x float64, mode types.AngleMode) float64 {
	if mode == types.AngleDegrees {
		return x * math.Pi / 180
	}
	return x
}

func fromRadians(x float64, mode types.AngleMode) float64 {
	if mode == types.AngleDegrees {
		return x * 180 / math.Pi
	}
	return x
}

// constantValue は定数の値を返す
func constantValue(c types.Constant) (float64, bool) {
	switch c {
	case types.ConstPi:
		return math.Pi, true
	case types.ConstE:
		return math.E, true
	default:
		return 0, false
	}
}
