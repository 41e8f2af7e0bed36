package tafuzz

import (
	"strconv"
	"unicode/utf8"

	"github.com/holiman/uint256"
)

// scope is the Eval binder's lexical environment: a small linked chain of
// name->value frames, innermost first. Nesting falls out of chaining a new
// frame in front of the parent on every Eval.
type scope struct {
	parent *scope
	name   string
	value  any
}

func (s *scope) lookup(name string) (any, bool) {
	for f := s; f != nil; f = f.parent {
		if f.name == name {
			return f.value, true
		}
	}
	return nil, false
}

// pendingBorrow records an Object taken out of the cache by an ApiRef
// argument so it can be written back once the enclosing thunk's call to the
// real target function has returned.
type pendingBorrow struct {
	tag  ApiTag
	slot int
	obj  *Object
}

// evalArgs evaluates a flat, ordered list of argument expressions against
// cur, left-to-right, depth-first: argument k is fully materialized,
// consuming whatever bytes it needs, before argument k+1 begins. It
// returns the materialized Go values in order plus the list of ApiRef
// borrows that must be returned to the cache once the caller's target
// invocation completes.
func evalArgs(target *Target, exprs []Expression, cur *Cursor, cache *objectCache) ([]any, []pendingBorrow, error) {
	vals := make([]any, len(exprs))
	var pending []pendingBorrow
	for i, e := range exprs {
		v, err := evalExpr(target, e, cur, cache, nil, &pending)
		if err != nil {
			return nil, nil, err
		}
		vals[i] = v
	}
	return vals, pending, nil
}

// releaseBorrows writes every pending ApiRef borrow back to its original
// cache slot, in order. Called once, right after the real target function
// that consumed them returns (success or failure — the object is still
// owned by the cache either way).
func releaseBorrows(cache *objectCache, pending []pendingBorrow) {
	for _, p := range pending {
		slot := p.slot
		cache.Add(p.tag, p.obj, &slot)
	}
}

// evalExpr is the Interpreter's forward rule dispatch: one case per
// Expression variant.
func evalExpr(target *Target, expr Expression, cur *Cursor, cache *objectCache, sc *scope, pending *[]pendingBorrow) (any, error) {
	switch e := expr.(type) {
	case U8:
		return cur.GetU8()
	case U16:
		return cur.GetU16()
	case U32:
		return cur.GetU32()
	case Usize:
		v, err := cur.GetU64()
		return uint64(v), err

	case Literal:
		return e.Value, nil

	case Ref:
		return evalExpr(target, e.E, cur, cache, sc, pending)
	case Mut:
		return evalExpr(target, e.E, cur, cache, sc, pending)
	case AsSlice:
		return evalExpr(target, e.E, cur, cache, sc, pending)
	case AsMutSlice:
		return evalExpr(target, e.E, cur, cache, sc, pending)

	case Vector:
		n, err := evalLength(target, e.N, cur, cache, sc, pending)
		if err != nil {
			return nil, err
		}
		return cur.Vec(n)
	case Slice:
		n, err := evalLength(target, e.N, cur, cache, sc, pending)
		if err != nil {
			return nil, err
		}
		return cur.Slice(n)
	case UsizeArray:
		n, err := evalLength(target, e.N, cur, cache, sc, pending)
		if err != nil {
			return nil, err
		}
		return cur.UsizeArray(n)

	case Str:
		n, err := evalLength(target, e.N, cur, cache, sc, pending)
		if err != nil {
			return nil, err
		}
		raw, err := cur.Slice(n)
		if err != nil {
			return nil, err
		}
		if !isValidUTF8(raw) {
			return nil, ErrUTF8Decoding
		}
		return string(raw), nil
	case StaticStr:
		n, err := evalLength(target, e.N, cur, cache, sc, pending)
		if err != nil {
			return nil, err
		}
		raw, err := cur.Slice(n)
		if err != nil {
			return nil, err
		}
		if !isValidUTF8(raw) {
			return nil, ErrUTF8Decoding
		}
		// Copies into an owned string rather than aliasing the Cursor's
		// backing array, so the result safely outlives the test case.
		return string(raw), nil

	case EmptyVector:
		return []byte{}, nil

	case VectorWithCap:
		capV, err := evalLength(target, e.C, cur, cache, sc, pending)
		if err != nil {
			return nil, err
		}
		val, err := evalExpr(target, e.V, cur, cache, sc, pending)
		if err != nil {
			return nil, err
		}
		out := make([]any, capV)
		for i := range out {
			out[i] = val
		}
		return out, nil

	case RandomVector:
		return nil, errRandomVectorUnimplemented

	case TPMKey:
		raw, err := cur.Slice(32)
		if err != nil {
			return nil, err
		}
		key := new(uint256.Int)
		var arr [32]byte
		copy(arr[:], raw)
		key.SetBytes32(arr[:])
		return key, nil

	case OneOf:
		b, err := cur.GetU8()
		if err != nil {
			return nil, err
		}
		if len(e.Branches) == 0 {
			return nil, ErrEmptySliceNoChoice
		}
		branch := e.Branches[int(b)%len(e.Branches)]
		return evalExpr(target, branch, cur, cache, sc, pending)

	case Eval:
		inner := sc
		for _, b := range e.Bindings {
			v, err := evalExpr(target, b.Value, cur, cache, inner, pending)
			if err != nil {
				return nil, err
			}
			inner = &scope{parent: inner, name: b.Name, value: v}
		}
		return evalExpr(target, e.Body, cur, cache, inner, pending)

	case Var:
		v, ok := sc.lookup(e.Name)
		if !ok {
			return nil, errUnboundVariable(e.Name)
		}
		return v, nil

	case Mod:
		return evalExpr(target, e.A, cur, cache, sc, pending)

	case ApiRef:
		i, err := cur.GetU8()
		if err != nil {
			return nil, err
		}
		obj, slot, ok := cache.Get(e.Tag, int(i))
		if !ok {
			if _, err := target.fuzzAPI(e.Tag, cur, cache); err != nil {
				return nil, err
			}
			obj, slot, ok = cache.Get(e.Tag, int(i))
			if !ok {
				return nil, ErrInvalidObjectType
			}
		}
		if obj.IsNone() || obj.Tag() != e.Tag {
			// The only way a hit can be tagless/mistagged is a previously
			// poisoned (assign-self-failed) object sitting in this bucket.
			slotCopy := slot
			cache.Add(e.Tag, obj, &slotCopy)
			return nil, ErrInvalidObjectType
		}
		*pending = append(*pending, pendingBorrow{tag: e.Tag, slot: slot, obj: obj})
		return obj.value, nil

	default:
		return nil, errUnknownExpression(expr)
	}
}

// evalLength evaluates a length subexpression and converts it to an int,
// the shape every Vector/Slice/Str/UsizeArray forward rule needs.
func evalLength(target *Target, e Expression, cur *Cursor, cache *objectCache, sc *scope, pending *[]pendingBorrow) (int, error) {
	v, err := evalExpr(target, e, cur, cache, sc, pending)
	if err != nil {
		return 0, err
	}
	switch n := v.(type) {
	case uint8:
		return int(n), nil
	case uint16:
		return int(n), nil
	case uint32:
		return int(n), nil
	case uint64:
		return int(n), nil
	case int:
		return n, nil
	default:
		return 0, errNonIntegerLength(v)
	}
}

func isValidUTF8(b []byte) bool {
	return utf8.Valid(b)
}

// errUnboundVariable/errUnknownExpression/errNonIntegerLength are
// programming-error guards: a well-formed Target built through Model never
// triggers them, since validateExpression and the builder's own checks
// catch malformed grammars before a single byte is ever fuzzed.
func errUnboundVariable(name string) error {
	return &modelError{"tafuzz: unbound variable " + strconv.Quote(name)}
}

func errUnknownExpression(e Expression) error {
	return &modelError{"tafuzz: unknown expression node"}
}

func errNonIntegerLength(v any) error {
	return &modelError{"tafuzz: length expression did not evaluate to an integer"}
}

type modelError struct{ msg string }

func (e *modelError) Error() string { return e.msg }
