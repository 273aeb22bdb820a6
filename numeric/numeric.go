// Copyright (C) 2019  David N. Cohen

// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.

// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.

// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <https://www.gnu.org/licenses/>.

// Package numeric provides an exact-rational numeric type with an
// explicit denominator and a set of rounding policies, modeled on
// GnuCash's gnc_numeric.
package numeric

import (
	"fmt"
	"math/big"
	"strings"
)

// Round is a rounding policy applied when a Numeric is re-expressed
// with a new denominator.
type Round int

const (
	ROUND     Round = iota // round to nearest, ties away from zero
	TRUNCATE               // truncate toward zero
	FLOOR                  // round toward negative infinity
	CEIL                   // round toward positive infinity
	NEVER                  // fail unless the conversion is exact
	REDUCE                 // reduce to lowest terms, ignore requested denominator
)

// Sentinel target denominators. Convert treats these specially rather
// than as literal denominators.
const (
	// AUTO chooses a denominator that keeps the value exact if
	// possible.
	AUTO int64 = 0
	// LCD targets the least common denominator of the two operands of
	// a binary operation. Only meaningful to the binary ops below.
	LCD int64 = -1
)

// SigFigs returns a target-denominator sentinel requesting n
// significant figures of precision. Negative n is invalid.
func SigFigs(n int) int64 {
	if n < 0 {
		panic("numeric: negative SigFigs")
	}
	return -1000 - int64(n)
}

func sigFigsN(denom int64) (n int, ok bool) {
	if denom > -1000 {
		return 0, false
	}
	return int(-1000 - denom), true
}

// ErrorCode reports an arithmetic failure. The zero value is ErrNone.
type ErrorCode int

const (
	ErrNone ErrorCode = iota
	ErrOverflow
	ErrInexact // NEVER rounding requested but conversion would lose precision
	ErrDenomZero
)

func (e ErrorCode) Error() string {
	switch e {
	case ErrNone:
		return "numeric: no error"
	case ErrOverflow:
		return "numeric: overflow"
	case ErrInexact:
		return "numeric: inexact conversion refused (NEVER rounding)"
	case ErrDenomZero:
		return "numeric: zero denominator"
	default:
		return fmt.Sprintf("numeric: error code %d", int(e))
	}
}

// Numeric is an exact rational value: numerator over denominator, with
// the denominator tracked explicitly rather than reduced away, so
// callers can observe and control the smallest representable unit
// (i.e. the commodity's fraction).
type Numeric struct {
	rat   *big.Rat
	denom int64 // the denominator this value is currently expressed with; 0 means "reduced, no fixed denominator"
	err   ErrorCode
}

// Zero returns the zero value expressed with denominator d (d==AUTO
// behaves like a reduced zero).
func Zero(d int64) Numeric {
	return Numeric{rat: new(big.Rat), denom: d}
}

// Create builds n/d, re-expressed so its stored denominator is d. A
// zero d is the AUTO sentinel and yields n in reduced form; a negative
// d yields a zero value carrying ErrDenomZero.
func Create(n int64, d int64) Numeric {
	if d == 0 {
		// AUTO and a literal zero denominator are indistinguishable;
		// treat as AUTO (reduced form), matching gnc_numeric's
		// behavior when GNC_DENOM_AUTO is requested.
		r := big.NewRat(n, 1)
		return Numeric{rat: r, denom: AUTO}
	}
	if d < 0 {
		return Numeric{rat: new(big.Rat), denom: d, err: ErrDenomZero}
	}
	r := new(big.Rat).SetFrac(big.NewInt(n), big.NewInt(d))
	return Numeric{rat: r, denom: d}
}

// FromRat wraps an already-computed rational, asserting it is
// expressed with denominator d (the caller's responsibility; Numeric
// does not re-validate this lazily).
func FromRat(r *big.Rat, d int64) Numeric {
	return Numeric{rat: new(big.Rat).Set(r), denom: d}
}

// Rat exposes the underlying rational, for callers (notably package
// kvp) that must serialize a Numeric exactly.
func (this Numeric) Rat() *big.Rat {
	if this.rat == nil {
		return new(big.Rat)
	}
	return new(big.Rat).Set(this.rat)
}

// Denom returns the denominator this value is currently expressed
// with. Zero means AUTO/reduced.
func (this Numeric) Denom() int64 { return this.denom }

// Check returns the error code carried by this value, if any
// operation that produced it failed.
func (this Numeric) Check() ErrorCode { return this.err }

func (this Numeric) ratOrZero() *big.Rat {
	if this.rat == nil {
		return new(big.Rat)
	}
	return this.rat
}

// Convert re-expresses x with denominator targetDenom, applying round
// when the exact value does not divide evenly. targetDenom may be
// AUTO, LCD (treated as AUTO outside a binary op), or a SigFigs()
// sentinel.
func Convert(x Numeric, targetDenom int64, round Round) Numeric {
	if x.err != ErrNone {
		return x
	}

	if n, ok := sigFigsN(targetDenom); ok {
		return convertSigFigs(x, n, round)
	}

	if targetDenom == AUTO || targetDenom == LCD || round == REDUCE {
		// AUTO or REDUCE: reduce to lowest terms, no fixed denominator.
		r := new(big.Rat).Set(x.ratOrZero())
		return Numeric{rat: r, denom: AUTO}
	}

	if targetDenom <= 0 {
		return Numeric{rat: new(big.Rat), denom: targetDenom, err: ErrDenomZero}
	}

	num := new(big.Int).Mul(x.ratOrZero().Num(), big.NewInt(targetDenom))
	den := x.ratOrZero().Denom()
	q, r := new(big.Int).QuoRem(num, den, new(big.Int))

	if r.Sign() == 0 {
		return Numeric{rat: new(big.Rat).SetFrac(q, big.NewInt(targetDenom)), denom: targetDenom}
	}

	if round == NEVER {
		return Numeric{rat: new(big.Rat), denom: targetDenom, err: ErrInexact}
	}

	adjusted := roundQuotient(q, r, den, round)
	return Numeric{rat: new(big.Rat).SetFrac(adjusted, big.NewInt(targetDenom)), denom: targetDenom}
}

// roundQuotient applies the rounding policy to an inexact division
// q + r/den (den > 0); r may be negative (Go's QuoRem truncates toward
// zero).
func roundQuotient(q, r, den *big.Int, round Round) *big.Int {
	result := new(big.Int).Set(q)
	switch round {
	case TRUNCATE, NEVER, REDUCE:
		// truncate toward zero: q already is
	case FLOOR:
		if r.Sign() < 0 {
			result.Sub(result, big.NewInt(1))
		}
	case CEIL:
		if r.Sign() > 0 {
			result.Add(result, big.NewInt(1))
		}
	case ROUND:
		twice := new(big.Int).Mul(new(big.Int).Abs(r), big.NewInt(2))
		cmp := twice.Cmp(den)
		if cmp > 0 || (cmp == 0) {
			if r.Sign() < 0 {
				result.Sub(result, big.NewInt(1))
			} else {
				result.Add(result, big.NewInt(1))
			}
		}
	default:
		// unknown round mode: behave like TRUNCATE
	}
	return result
}

func convertSigFigs(x Numeric, n int, round Round) Numeric {
	// Choose a power-of-ten denominator that yields n significant
	// digits of the value's magnitude, then delegate to the ordinary
	// integer-denominator path.
	r := x.ratOrZero()
	if r.Sign() == 0 {
		return Zero(AUTO)
	}
	f := new(big.Float).SetPrec(200).SetRat(r)
	f.Abs(f)
	exp := f.MantExp(nil) // value = mantissa * 2^exp, mantissa in [0.5, 1)
	// convert binary exponent to a decimal-digit estimate
	decDigits := int(float64(exp) * 0.30103)
	shift := n - decDigits
	denom := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(absInt(shift))), nil)
	var targetDenom int64
	if shift >= 0 {
		if !denom.IsInt64() {
			return Numeric{rat: new(big.Rat), denom: 0, err: ErrOverflow}
		}
		targetDenom = denom.Int64()
	} else {
		// negative shift means denominator would be a fraction; clamp
		// to 1 (round to the nearest whole unit at minimum).
		targetDenom = 1
	}
	return Convert(x, targetDenom, round)
}

func absInt(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

// NumDenom returns the value as (numerator, denominator) re-expressed
// at this value's stored denominator (falling back to the reduced
// rational's own denominator for an AUTO-denominated value). Intended
// for callers (account balance summation, KVP storage) that need a
// plain integer pair rather than a big.Rat.
func (this Numeric) NumDenom() (num, denom int64) {
	denom = this.denom
	if denom <= 0 {
		r := this.ratOrZero()
		d := r.Denom()
		if d.IsInt64() {
			denom = d.Int64()
		} else {
			denom = 1
		}
		if denom == 0 {
			denom = 1
		}
		n := r.Num()
		if n.IsInt64() {
			num = n.Int64()
		}
		return
	}
	scaled := new(big.Rat).Mul(this.ratOrZero(), new(big.Rat).SetInt64(denom))
	n := new(big.Int).Quo(scaled.Num(), scaled.Denom())
	if n.IsInt64() {
		num = n.Int64()
	}
	return
}

// ParseDecimal parses a plain decimal string ("-12.345", "7", "+0.1")
// into a Numeric denominated at the power of ten implied by its
// fractional digits (an integer is denominated in ones). Unlike
// Create/Convert, there is no target denominator to choose: the
// string itself names one, the same way a ledger file's literal
// "10.00 USD" names cents without the reader having to be told.
func ParseDecimal(s string) (Numeric, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Numeric{}, fmt.Errorf("numeric: empty decimal string")
	}
	neg := false
	switch s[0] {
	case '-':
		neg = true
		s = s[1:]
	case '+':
		s = s[1:]
	}

	intPart, fracPart := s, ""
	if i := strings.IndexByte(s, '.'); i >= 0 {
		intPart, fracPart = s[:i], s[i+1:]
	}
	if intPart == "" {
		intPart = "0"
	}
	digits := intPart + fracPart
	if digits == "" {
		return Numeric{}, fmt.Errorf("numeric: invalid decimal string %q", s)
	}
	for _, r := range digits {
		if r < '0' || r > '9' {
			return Numeric{}, fmt.Errorf("numeric: invalid decimal string %q", s)
		}
	}

	num := new(big.Int)
	if _, ok := num.SetString(digits, 10); !ok {
		return Numeric{}, fmt.Errorf("numeric: invalid decimal string %q", s)
	}
	if neg {
		num.Neg(num)
	}

	denomInt := new(big.Int).Exp(big.NewInt(10), big.NewInt(int64(len(fracPart))), nil)
	if !denomInt.IsInt64() {
		return Numeric{err: ErrOverflow}, nil
	}
	denom := denomInt.Int64()
	if denom == 0 {
		denom = 1
	}
	return Numeric{rat: new(big.Rat).SetFrac(num, denomInt), denom: denom}, nil
}

func (this Numeric) String() string {
	if this.err != ErrNone {
		return this.err.Error()
	}
	return this.ratOrZero().RatString()
}

// Compare returns -1, 0, or 1 as a is less than, equal to, or greater
// than b, comparing exact rational values (denominators need not
// match).
func Compare(a, b Numeric) int { return a.ratOrZero().Cmp(b.ratOrZero()) }

func Equal(a, b Numeric) bool { return Compare(a, b) == 0 }

func (this Numeric) Positive() bool { return this.ratOrZero().Sign() > 0 }
func (this Numeric) Negative() bool { return this.ratOrZero().Sign() < 0 }
func (this Numeric) Zero() bool     { return this.ratOrZero().Sign() == 0 }
func (this Numeric) Sign() int      { return this.ratOrZero().Sign() }

func Neg(x Numeric) Numeric {
	r := new(big.Rat).Neg(x.ratOrZero())
	return Numeric{rat: r, denom: x.denom, err: x.err}
}

func Abs(x Numeric) Numeric {
	r := new(big.Rat).Abs(x.ratOrZero())
	return Numeric{rat: r, denom: x.denom, err: x.err}
}

// Add, Sub, Mul, Div combine two values exactly, then convert the
// result to denom (AUTO/LCD honored) using round.
func Add(a, b Numeric, denom int64, round Round) Numeric {
	if e := firstErr(a, b); e != ErrNone {
		return Numeric{err: e}
	}
	r := new(big.Rat).Add(a.ratOrZero(), b.ratOrZero())
	return Convert(Numeric{rat: r, denom: resolveLCD(a, b, denom)}, denom, round)
}

func Sub(a, b Numeric, denom int64, round Round) Numeric {
	if e := firstErr(a, b); e != ErrNone {
		return Numeric{err: e}
	}
	r := new(big.Rat).Sub(a.ratOrZero(), b.ratOrZero())
	return Convert(Numeric{rat: r, denom: resolveLCD(a, b, denom)}, denom, round)
}

func Mul(a, b Numeric, denom int64, round Round) Numeric {
	if e := firstErr(a, b); e != ErrNone {
		return Numeric{err: e}
	}
	r := new(big.Rat).Mul(a.ratOrZero(), b.ratOrZero())
	return Convert(Numeric{rat: r, denom: resolveLCD(a, b, denom)}, denom, round)
}

func Div(a, b Numeric, denom int64, round Round) Numeric {
	if e := firstErr(a, b); e != ErrNone {
		return Numeric{err: e}
	}
	if b.ratOrZero().Sign() == 0 {
		return Numeric{err: ErrDenomZero}
	}
	r := new(big.Rat).Quo(a.ratOrZero(), b.ratOrZero())
	return Convert(Numeric{rat: r, denom: resolveLCD(a, b, denom)}, denom, round)
}

func firstErr(a, b Numeric) ErrorCode {
	if a.err != ErrNone {
		return a.err
	}
	return b.err
}

func resolveLCD(a, b Numeric, requested int64) int64 {
	if requested != LCD {
		return requested
	}
	if a.denom <= 0 || b.denom <= 0 {
		return AUTO
	}
	ga := gcd(a.denom, b.denom)
	return a.denom / ga * b.denom
}

func gcd(a, b int64) int64 {
	for b != 0 {
		a, b = b, a%b
	}
	if a < 0 {
		return -a
	}
	return a
}
