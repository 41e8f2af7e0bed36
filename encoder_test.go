package tafuzz

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/require"
)

func roundTrip(t *testing.T, e Expression, v any) any {
	t.Helper()
	target := buildEchoTarget(t)
	a := NewAssembler(target)
	require.NoError(t, EncodeExpr(a, e, v))
	cur := NewCursor(a.Bytes())
	got, err := evalExpr(target, e, cur, newObjectCache(), nil, &[]pendingBorrow{})
	require.NoError(t, err)
	return got
}

func TestEncodeDecodeGroundTermsRoundTrip(t *testing.T) {
	require.EqualValues(t, uint8(42), roundTrip(t, U8{}, uint8(42)))
	require.EqualValues(t, uint16(1000), roundTrip(t, U16{}, uint16(1000)))
	require.EqualValues(t, uint32(100000), roundTrip(t, U32{}, uint32(100000)))
	require.EqualValues(t, uint64(9), roundTrip(t, Usize{}, uint64(9)))
}

func TestEncodeDecodeVectorRoundTrip(t *testing.T) {
	got := roundTrip(t, Vector{N: Usize{}}, []byte("hello world"))
	require.Equal(t, []byte("hello world"), got)
}

func TestEncodeDecodeStrRoundTrip(t *testing.T) {
	got := roundTrip(t, Str{N: U8{}}, "tademo")
	require.Equal(t, "tademo", got)
}

func TestEncodeDecodeTPMKeyRoundTrip(t *testing.T) {
	key := new(uint256.Int).SetUint64(0xdeadbeef)
	got := roundTrip(t, TPMKey{}, key)
	require.Equal(t, key.Bytes32(), got.(*uint256.Int).Bytes32())
}

func TestEncodeOneOfIsUnreversible(t *testing.T) {
	target := buildEchoTarget(t)
	a := NewAssembler(target)
	err := EncodeExpr(a, OneOf{Branches: []Expression{U8{}}}, nil)
	require.ErrorIs(t, err, errUnreversibleExpression)
}

func TestAssemblerSessionFramingProducesFuzzableBytes(t *testing.T) {
	target := buildEchoTarget(t)
	a := NewAssembler(target)
	a.EmitApiDispatch(0)
	s := a.Enter(0, 0)
	ref := s.Leave()
	require.Equal(t, 0, ref.Index)

	require.NoError(t, target.Fuzz(a.Bytes()))
}
