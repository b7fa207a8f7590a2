// Package rational implements exact rational time arithmetic: every
// duration, start-beat, and cycle length in Cadence is a T (N/D, D>0,
// gcd(|N|,D)=1). No example repo in the retrieval pack carries an exact
// rational-number library, so this is implemented directly against the
// standard library's integer arithmetic rather than reaching for a
// third-party decimal/bignum package that would change the exactness
// guarantees the pattern algebra depends on.
package rational

import (
	"fmt"

	jsoniter "github.com/json-iterator/go"

	"github.com/schollz/cadence/internal/cerr"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// T is a rational number in lowest terms with a positive denominator.
type T struct {
	N int64
	D int64
}

// Zero is the additive identity.
var Zero = T{N: 0, D: 1}

// One is the multiplicative identity.
var One = T{N: 1, D: 1}

// FromInt builds T(n,1).
func FromInt(n int64) T {
	return T{N: n, D: 1}
}

// New constructs a normalized T, returning a DivideByZeroError if d==0.
func New(n, d int64) (T, error) {
	if d == 0 {
		return T{}, cerr.New(cerr.KindDivideByZero, "rational denominator is zero")
	}
	return normalize(n, d), nil
}

// MustNew is New but panics on error; callers across the module use it
// wherever the denominator is known to be non-zero.
func MustNew(n, d int64) T {
	t, err := New(n, d)
	if err != nil {
		panic(err)
	}
	return t
}

func gcd(a, b int64) int64 {
	if a < 0 {
		a = -a
	}
	if b < 0 {
		b = -b
	}
	for b != 0 {
		a, b = b, a%b
	}
	if a == 0 {
		return 1
	}
	return a
}

func normalize(n, d int64) T {
	if d < 0 {
		n, d = -n, -d
	}
	if n == 0 {
		return T{N: 0, D: 1}
	}
	g := gcd(n, d)
	return T{N: n / g, D: d / g}
}

// Add returns a+b, normalized.
func Add(a, b T) T {
	return normalize(a.N*b.D+b.N*a.D, a.D*b.D)
}

// Sub returns a-b, normalized.
func Sub(a, b T) T {
	return normalize(a.N*b.D-b.N*a.D, a.D*b.D)
}

// Mul returns a*b, normalized.
func Mul(a, b T) T {
	return normalize(a.N*b.N, a.D*b.D)
}

// Div returns a/b, normalized. Returns a DivideByZeroError if b is zero.
func Div(a, b T) (T, error) {
	if b.N == 0 {
		return T{}, cerr.New(cerr.KindDivideByZero, "division by zero rational")
	}
	return normalize(a.N*b.D, a.D*b.N), nil
}

// Neg returns -a.
func Neg(a T) T {
	return T{N: -a.N, D: a.D}
}

// Cmp returns -1, 0, or 1 as a<b, a==b, a>b.
func Cmp(a, b T) int {
	lhs := a.N * b.D
	rhs := b.N * a.D
	switch {
	case lhs < rhs:
		return -1
	case lhs > rhs:
		return 1
	default:
		return 0
	}
}

// Equal reports whether a and b denote the same rational value.
func Equal(a, b T) bool { return Cmp(a, b) == 0 }

// Less reports a<b.
func Less(a, b T) bool { return Cmp(a, b) < 0 }

// LessOrEqual reports a<=b.
func LessOrEqual(a, b T) bool { return Cmp(a, b) <= 0 }

// IsZero reports whether a==0.
func IsZero(a T) bool { return a.N == 0 }

// IsPositive reports whether a>0.
func IsPositive(a T) bool { return a.N > 0 }

// Mod returns a floor-mod b, i.e. a value in [0,b) when b>0, matching the
// "beat mod N" semantics used by queue-mode boundary predicates.
func Mod(a, b T) (T, error) {
	if b.N == 0 {
		return T{}, cerr.New(cerr.KindDivideByZero, "modulo by zero rational")
	}
	q := FloorDiv(a, b)
	return Sub(a, Mul(FromInt(q), b)), nil
}

// FloorDiv returns floor(a/b) as an integer; b must be non-zero.
func FloorDiv(a, b T) int64 {
	num := a.N * b.D
	den := a.D * b.N
	if den < 0 {
		num, den = -num, -den
	}
	q := num / den
	if num%den != 0 && (num < 0) != (den < 0) {
		q--
	}
	return q
}

// Float64 returns a floating-point approximation for display; queue-mode
// boundary checks compare rationals exactly and do not use it.
func (t T) Float64() float64 {
	return float64(t.N) / float64(t.D)
}

// String renders "n/d" (or "n" when d==1), matching how beats/durations are
// logged elsewhere in the stack.
func (t T) String() string {
	if t.D == 1 {
		return fmt.Sprintf("%d", t.N)
	}
	return fmt.Sprintf("%d/%d", t.N, t.D)
}

// wireRational is the {n,d} JSON shape required by the external interface.
type wireRational struct {
	N int64 `json:"n"`
	D int64 `json:"d"`
}

// MarshalJSON renders T as {"n":N,"d":D} in lowest terms with d>0.
func (t T) MarshalJSON() ([]byte, error) {
	norm := normalize(t.N, t.D)
	return json.Marshal(wireRational{N: norm.N, D: norm.D})
}

// UnmarshalJSON parses the {"n":N,"d":D} shape.
func (t *T) UnmarshalJSON(data []byte) error {
	var w wireRational
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	if w.D == 0 {
		return cerr.New(cerr.KindDivideByZero, "rational denominator is zero")
	}
	*t = normalize(w.N, w.D)
	return nil
}
