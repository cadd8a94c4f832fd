package engine

import (
	"math"
	"testing"

	"github.com/pocketcalc/pcalc/internal/errors"
	"github.com/pocketcalc/pcalc/pkg/types"
)

func TestApply(t *testing.T) {
	tests := []struct {
		op   types.Operator
		a, b float64
		want float64
	}{
		{types.OpAdd, 2, 3, 5},
		{types.OpSub, 2, 3, -1},
		{types.OpMul, 4, 2.5, 10},
		{types.OpDiv, 9, 3, 3},
		{types.OpPow, 2, 10, 1024},
		{types.OpPow, 9, 0.5, 3},
	}

	for _, tt := range tests {
		t.Run(tt.op.String(), func(t *testing.T) {
			if got := Apply(tt.op, tt.a, tt.b); got != tt.want {
				t.Errorf("Apply(%s, %v, %v) = %v, want %v", tt.op, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestApplyDivisionByZeroNeverPanics(t *testing.T) {
	for _, a := range []float64{1, -1, 0, 1e300} {
		got := Apply(types.OpDiv, a, 0)
		if !math.IsInf(got, 0) && !math.IsNaN(got) {
			t.Errorf("Apply(/, %v, 0) = %v, want Inf or NaN", a, got)
		}
		text := FormatNumber(got)
		if text != GlyphInf && text != GlyphNegInf && text != GlyphNaN {
			t.Errorf("Division by zero formatted as %q, want a glyph", text)
		}
	}
}

func TestAddSubtractRoundTrip(t *testing.T) {
	pairs := [][2]float64{
		{0.1, 0.2},
		{123.456, -78.9},
		{1e10, 3.3},
		{-5, 5},
		{0.001, 7},
		{-987654.321, 0.000123},
	}

	for _, p := range pairs {
		a, b := p[0], p[1]
		sum := RoundResult(Apply(types.OpAdd, a, b))
		back := RoundResult(Apply(types.OpSub, sum, b))

		tolerance := 1e-9 * math.Max(1, math.Abs(a))
		if math.Abs(back-a) > tolerance {
			t.Errorf("(%v + %v) - %v = %v, want %v", a, b, b, back, a)
		}
	}
}

func TestEvaluateDomains(t *testing.T) {
	tests := []struct {
		fn      types.Function
		input   float64
		wantErr bool
	}{
		{types.FnSqrt, -1, true},
		{types.FnSqrt, 0, false},
		{types.FnLog, 0, true},
		{types.FnLog, 100, false},
		{types.FnLn, -2, true},
		{types.FnAsin, 1.5, true},
		{types.FnAcos, -1, false},
		{types.FnAcos, -1.01, true},
		{types.FnInverse, 0, true},
		{types.FnInverse, 4, false},
		{types.FnFactorial, 170, false},
		{types.FnFactorial, 170.5, true},
		{types.FnFactorial, -3, true},
		{types.FnFactorial, 171, true},
		{types.FnTan, -1e6, false},
		{types.FnExp, -3, false},
		{types.FnPercent, -50, false},
		{types.FnSqrt, math.Inf(1), true},
		{types.FnAbs, math.NaN(), true},
	}

	for _, tt := range tests {
		t.Run(string(tt.fn), func(t *testing.T) {
			_, err := Evaluate(tt.fn, tt.input, types.AngleRadians)
			if tt.wantErr {
				if !errors.Is(err, errors.ErrDomain) {
					t.Errorf("Evaluate(%s, %v) error = %v, want DomainError", tt.fn, tt.input, err)
				}
				return
			}
			if err != nil {
				t.Errorf("Evaluate(%s, %v) unexpected error: %v", tt.fn, tt.input, err)
			}
		})
	}
}

func TestEvaluateValues(t *testing.T) {
	tests := []struct {
		fn    types.Function
		input float64
		want  string
	}{
		{types.FnLog, 1000, "3"},
		{types.FnLn, math.E, "1"},
		{types.FnExp, 0, "1"},
		{types.FnAbs, -4, "4"},
		{types.FnSquare, -3, "9"},
		{types.FnCube, 2, "8"},
		{types.FnInverse, 8, "0.125"},
		{types.FnPercent, 50, "0.5"},
		{types.FnFactorial, 10, "3628800"},
		{types.FnFactorial, 20, "2.4329020082e+18"},
	}

	for _, tt := range tests {
		t.Run(string(tt.fn), func(t *testing.T) {
			got, err := Evaluate(tt.fn, tt.input, types.AngleDegrees)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if text := FormatNumber(got); text != tt.want {
				t.Errorf("Evaluate(%s, %v) = %s, want %s", tt.fn, tt.input, text, tt.want)
			}
		})
	}
}
