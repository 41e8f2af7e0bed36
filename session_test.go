package tafuzz

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

var errBoom = errors.New("boom")

// buildCounterTarget returns a one-Api Target modeling a simple counter: its
// sole constructor never fails, "bump" is a non-assign-self member, and
// "maybeReset" is an assign-self member that fails whenever the counter's
// current value is odd, to exercise graceful poisoning deterministically.
func buildCounterTarget(t *testing.T) *Target {
	t.Helper()
	m := NewModel(Options{})
	api := m.Api("Counter")
	api.Ctor(CtorSpec{
		Name: "new",
		Invoke: func(args []any) (any, error) {
			return 1, nil // odd, so maybeReset fails deterministically
		},
	})
	api.Member(MemberDecl{
		Name: "bump",
		Invoke: func(recv any, args []any) (any, error) {
			return recv.(int) + 1, nil
		},
	})
	api.Member(MemberDecl{
		Name:       "maybeReset",
		AssignSelf: true,
		Invoke: func(recv any, args []any) (any, error) {
			n := recv.(int)
			if n%2 == 1 {
				return nil, errBoom
			}
			return 0, nil
		},
	})
	target, err := m.Compile()
	require.NoError(t, err)
	return target
}

func TestRunSessionConstructsFreshOnCacheMiss(t *testing.T) {
	target := buildCounterTarget(t)
	cache := newObjectCache()
	cur := NewCursor([]byte{200, 0, 0}) // selector>=128 forces new; ctor 0; stop member loop
	obj, err := target.runSession(target.Api(0), cur, cache)
	require.NoError(t, err)
	require.Equal(t, 1, obj.Value())
	require.Equal(t, 1, cache.Len(0))
}

func TestRunSessionAssignSelfPoisoningCascades(t *testing.T) {
	target := buildCounterTarget(t)
	cache := newObjectCache()
	// construct fresh (value 1, odd): maybeReset (member index 1) fails
	// immediately, poisoning the receiver; the next member call (bump,
	// index 0) must then fail on the poisoned receiver. maxMemberCalls==2
	// means exactly these two attempts are allowed, with no trailing byte
	// needed to close the loop.
	cur := NewCursor([]byte{
		200, 0, // construct
		1, 1, // continue, member "maybeReset" (index 1) -> poisons
		1, 0, // continue, member "bump" (index 0) -> fails on poisoned receiver
	})
	obj, err := target.runSession(target.Api(0), cur, cache)
	require.ErrorIs(t, err, ErrInvalidObjectType)
	require.True(t, obj.IsNone())
}

func TestRunSessionNonAssignSelfMemberLeavesReceiverUnchanged(t *testing.T) {
	target := buildCounterTarget(t)
	cache := newObjectCache()
	cur := NewCursor([]byte{
		200, 0, // construct (value 1)
		1, 0, // continue, bump (index 0) — its return value is discarded
		0, // stop
	})
	obj, err := target.runSession(target.Api(0), cur, cache)
	require.NoError(t, err)
	require.Equal(t, 1, obj.Value()) // bump's return value is never assigned back
}

func TestTargetFuzzEndOfInputIsSuccess(t *testing.T) {
	target := buildCounterTarget(t)
	require.NoError(t, target.Fuzz(nil))
}

func TestTargetFuzzApplicationErrorEndsTestCaseNotCrash(t *testing.T) {
	target := buildCounterTarget(t)
	// dispatch to Counter (only api, n=1, any byte % 1 == 0), construct
	// (value 1, odd), maybeReset fails and poisons the receiver, bump then
	// fails on it -> session error -> still reported as a clean test case
	// outcome.
	tc := []byte{0, 200, 0, 1, 1, 1, 0}
	require.NoError(t, target.Fuzz(tc))
}
