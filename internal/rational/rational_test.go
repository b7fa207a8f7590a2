package rational

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewNormalizes(t *testing.T) {
	tests := []struct {
		name   string
		n, d   int64
		wantN  int64
		wantD  int64
	}{
		{"already lowest terms", 1, 2, 1, 2},
		{"reduces", 4, 8, 1, 2},
		{"negative denominator flips sign", 3, -4, -3, 4},
		{"negative both cancels", -3, -4, 3, 4},
		{"zero numerator", 0, 5, 0, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New(tt.n, tt.d)
			require.NoError(t, err)
			assert.Equal(t, tt.wantN, got.N)
			assert.Equal(t, tt.wantD, got.D)
		})
	}
}

func TestNewDivideByZero(t *testing.T) {
	_, err := New(1, 0)
	require.Error(t, err)
}

func TestArithmeticExact(t *testing.T) {
	a := MustNew(1, 3)
	b := MustNew(1, 6)
	assert.Equal(t, MustNew(1, 2), Add(a, b))
	assert.Equal(t, MustNew(1, 6), Sub(a, b))
	assert.Equal(t, MustNew(1, 18), Mul(a, b))
	q, err := Div(a, b)
	require.NoError(t, err)
	assert.Equal(t, MustNew(2, 1), q)
}

func TestCmp(t *testing.T) {
	assert.True(t, Less(MustNew(1, 3), MustNew(1, 2)))
	assert.True(t, Equal(MustNew(2, 4), MustNew(1, 2)))
	assert.False(t, Less(MustNew(1, 2), MustNew(1, 3)))
}

func TestModFloor(t *testing.T) {
	got, err := Mod(MustNew(7, 2), MustNew(2, 1))
	require.NoError(t, err)
	assert.Equal(t, MustNew(3, 2), got)

	got, err = Mod(MustNew(-1, 2), MustNew(2, 1))
	require.NoError(t, err)
	assert.Equal(t, MustNew(3, 2), got)
}

func TestFloorDiv(t *testing.T) {
	assert.Equal(t, int64(1), FloorDiv(MustNew(3, 2), One))
	assert.Equal(t, int64(-1), FloorDiv(MustNew(-1, 2), One))
}

func TestJSONRoundTrip(t *testing.T) {
	v := MustNew(4, 8)
	b, err := v.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"n":1,"d":2}`, string(b))

	var out T
	require.NoError(t, out.UnmarshalJSON(b))
	assert.Equal(t, v, out)
}
