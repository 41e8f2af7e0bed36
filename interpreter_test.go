package tafuzz

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func evalOne(t *testing.T, target *Target, e Expression, cur *Cursor, cache *objectCache) any {
	t.Helper()
	v, err := evalExpr(target, e, cur, cache, nil, &[]pendingBorrow{})
	require.NoError(t, err)
	return v
}

func TestEvalExprGroundTerms(t *testing.T) {
	cur := NewCursor([]byte{0x2a, 0x01, 0x02, 0x03, 0x04, 0x05, 0x06, 0x07})
	cache := newObjectCache()

	v := evalOne(t, nil, U8{}, cur, cache)
	require.EqualValues(t, 0x2a, v)

	v = evalOne(t, nil, U16{}, cur, cache)
	require.EqualValues(t, 0x0201, v)

	v = evalOne(t, nil, Literal{Value: "fixed"}, cur, cache)
	require.Equal(t, "fixed", v)
}

func TestEvalExprVectorAndSlice(t *testing.T) {
	cur := NewCursor([]byte{3, 'a', 'b', 'c'})
	cache := newObjectCache()
	v := evalOne(t, nil, Vector{N: U8{}}, cur, cache)
	require.Equal(t, []byte("abc"), v)
}

func TestEvalExprStrRejectsInvalidUTF8(t *testing.T) {
	cur := NewCursor([]byte{1, 0xff})
	cache := newObjectCache()
	_, err := evalExpr(nil, Str{N: U8{}}, cur, cache, nil, &[]pendingBorrow{})
	require.ErrorIs(t, err, ErrUTF8Decoding)
}

func TestEvalExprOneOfPicksBranchModLength(t *testing.T) {
	cur := NewCursor([]byte{5}) // 5 % 2 == 1
	cache := newObjectCache()
	v := evalOne(t, nil, OneOf{Branches: []Expression{Literal{Value: "zero"}, Literal{Value: "one"}}}, cur, cache)
	require.Equal(t, "one", v)
}

func TestEvalExprEvalBindingsAndVar(t *testing.T) {
	cur := NewCursor([]byte{0x07})
	cache := newObjectCache()
	expr := Eval{
		Bindings: []Binding{{Name: "x", Value: U8{}}},
		Body:     Var{Name: "x"},
	}
	v := evalOne(t, nil, expr, cur, cache)
	require.EqualValues(t, 7, v)
}

func TestEvalExprVarUnbound(t *testing.T) {
	cur := NewCursor(nil)
	cache := newObjectCache()
	_, err := evalExpr(nil, Var{Name: "nope"}, cur, cache, nil, &[]pendingBorrow{})
	require.Error(t, err)
}

func TestEvalExprApiRefCacheHit(t *testing.T) {
	target := buildEchoTarget(t)
	cache := newObjectCache()
	obj := newObject(0, "preexisting")
	cache.Add(0, &obj, nil)

	cur := NewCursor([]byte{0}) // selects index 0, a hit
	var pending []pendingBorrow
	v, err := evalExpr(target, ApiRef{Tag: 0}, cur, cache, nil, &pending)
	require.NoError(t, err)
	require.Equal(t, "preexisting", v)
	require.Len(t, pending, 1)
}

func TestEvalExprApiRefCacheMissConstructsFallback(t *testing.T) {
	target := buildEchoTarget(t)
	cache := newObjectCache()

	// selector 0 misses (empty bucket), then fuzzAPI runs a full session of
	// Api 0 for the fallback construction: its own selector byte (0, also a
	// miss) and a ctor index (0).
	cur := NewCursor([]byte{0, 0, 0})
	var pending []pendingBorrow
	v, err := evalExpr(target, ApiRef{Tag: 0}, cur, cache, nil, &pending)
	require.NoError(t, err)
	require.Equal(t, "echo", v)
}

func TestValidateExpressionRejectsRandomVector(t *testing.T) {
	err := validateExpression(RandomVector{N: U8{}})
	require.ErrorIs(t, err, errRandomVectorUnimplemented)

	err = validateExpression(Vector{N: RandomVector{N: U8{}}})
	require.ErrorIs(t, err, errRandomVectorUnimplemented)
}

// buildEchoTarget returns a one-Api Target whose only constructor takes no
// arguments and always returns the fixed string "echo" — just enough shape
// to exercise ApiRef's cache-hit and cache-miss-fallback paths in isolation.
func buildEchoTarget(t *testing.T) *Target {
	t.Helper()
	m := NewModel(Options{})
	api := m.Api("Echo")
	api.Ctor(CtorSpec{
		Name: "new",
		Invoke: func(args []any) (any, error) {
			return "echo", nil
		},
	})
	target, err := m.Compile()
	require.NoError(t, err)
	return target
}
