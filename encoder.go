package tafuzz

import (
	"encoding/binary"
	"sync"

	"github.com/holiman/uint256"
)

// Assembler is the reverse side of the Interpreter: instead of decoding
// bytes into values, it encodes a sequence of high-level "do this" calls
// into a byte stream that, fed back through Target.Fuzz, reproduces exactly
// that sequence. It is the basis of seed corpus generation and of the
// round-trip tests in examples/tademo.
//
// Object identity on the encode side is tracked independently of the
// decode-side Object Cache: the Assembler only needs to know, per Api, how
// many objects it has so far told the Interpreter to construct, so it can
// address any of them later by selector index — it never needs to see the
// decode-side Cache itself.
type Assembler struct {
	mu     sync.Mutex
	buf    []byte
	target *Target
	ids    *idAllocator
	counts map[ApiTag]int
}

// NewAssembler starts an empty byte stream for the given compiled Target.
func NewAssembler(target *Target) *Assembler {
	return &Assembler{target: target, ids: newIDAllocator(), counts: make(map[ApiTag]int)}
}

// Bytes returns a copy of the test case assembled so far.
func (a *Assembler) Bytes() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]byte, len(a.buf))
	copy(out, a.buf)
	return out
}

func (a *Assembler) emit(b ...byte) { a.buf = append(a.buf, b...) }

// EmitApiDispatch writes the top-level dispatch selector (the
// read-one-byte-then-mod-n step) choosing to run a session of Api tag.
func (a *Assembler) EmitApiDispatch(tag ApiTag) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.emit(byte(tag))
}

// EmitFuncDispatch writes the top-level dispatch selector choosing the i'th
// free function.
func (a *Assembler) EmitFuncDispatch(i int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.emit(byte(len(a.target.apis) + i))
}

// ObjRef addresses a previously assembled object so a later session or
// Api(T) argument can refer back to it.
type ObjRef struct {
	Tag   ApiTag
	Index int
	ID    uint64
}

// Session is one in-flight Enter/Leave framing — a single Api session being
// assembled (the pick-or-construct-then-members loop, in reverse).
type Session struct {
	a     *Assembler
	tag   ApiTag
	isNew bool
}

// Enter begins assembling a session for tag that always takes the
// "construct fresh" branch: selector 128 unconditionally misses the
// decode-side cache (session.go's `if selector < 128` gate), so the
// Assembler never has to simulate the Cache's bucket contents to force a
// construction. ctorIdx selects which constructor runs.
func (a *Assembler) Enter(tag ApiTag, ctorIdx int) *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.emit(128, byte(ctorIdx))
	return &Session{a: a, tag: tag, isNew: true}
}

// Reuse begins assembling a session that hits the cache at an existing
// object's index instead of constructing a new one.
func (a *Assembler) Reuse(ref ObjRef) *Session {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.emit(byte(ref.Index))
	return &Session{a: a, tag: ref.Tag}
}

// CallMember appends one member call: a continue=1 byte, the member index,
// then its argument bytes (emitted by the caller via Emit/EncodeExpr before
// the next CallMember or Leave).
func (s *Session) CallMember(memberIdx int) *Session {
	s.a.mu.Lock()
	defer s.a.mu.Unlock()
	s.a.emit(1, byte(memberIdx))
	return s
}

// Leave closes the session, writing the closing continue=0 byte when the
// Api has any members at all (mirroring session.go's own
// `if len(api.Members) > 0` guard — an Api with none never reads a
// continue byte in the first place). It returns an ObjRef usable by later
// sessions, valid only when this session was started with Enter.
func (s *Session) Leave() ObjRef {
	api := s.a.target.Api(s.tag)
	if len(api.Members) > 0 {
		s.a.mu.Lock()
		s.a.emit(0)
		s.a.mu.Unlock()
	}
	if !s.isNew {
		return ObjRef{Tag: s.tag, Index: -1}
	}
	s.a.mu.Lock()
	idx := s.a.counts[s.tag]
	s.a.counts[s.tag] = idx + 1
	id := s.a.ids.Alloc(s.tag)
	s.a.mu.Unlock()
	return ObjRef{Tag: s.tag, Index: idx, ID: id}
}

// Emit appends e's reverse-rule bytes for the concrete argument value v
// (EncodeExpr does the actual work; Emit exists so call sites read as the
// mirror image of the Cursor-driven evalExpr).
func (s *Session) Emit(e Expression, v any) error {
	s.a.mu.Lock()
	defer s.a.mu.Unlock()
	return EncodeExpr(s.a, e, v)
}

// EncodeExpr is the Encoder's reverse rule dispatch, one case per Expression
// variant — the mirror image of interpreter.go's evalExpr. v must be the Go
// value the matching forward rule would have produced for e.
//
// OneOf, Eval, and Var have no reverse rule: a OneOf's branch choice and an
// Eval's bound values are not recoverable from v alone without also knowing
// which branch/bindings produced it, and no caller in this module needs to
// assemble one, so all three are rejected here rather than guessed at.
func EncodeExpr(a *Assembler, e Expression, v any) error {
	switch t := e.(type) {
	case U8:
		a.emit(v.(uint8))
		return nil
	case U16:
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], v.(uint16))
		a.emit(b[:]...)
		return nil
	case U32:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], v.(uint32))
		a.emit(b[:]...)
		return nil
	case Usize:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], v.(uint64))
		a.emit(b[:]...)
		return nil

	case Literal:
		return nil // nothing read, nothing to emit

	case Ref:
		return EncodeExpr(a, t.E, v)
	case Mut:
		return EncodeExpr(a, t.E, v)
	case AsSlice:
		return EncodeExpr(a, t.E, v)
	case AsMutSlice:
		return EncodeExpr(a, t.E, v)

	case Vector:
		raw := v.([]byte)
		if err := encodeLength(a, t.N, len(raw)); err != nil {
			return err
		}
		a.emit(raw...)
		return nil
	case Slice:
		raw := v.([]byte)
		if err := encodeLength(a, t.N, len(raw)); err != nil {
			return err
		}
		a.emit(raw...)
		return nil
	case UsizeArray:
		raw := v.([]uint64)
		if err := encodeLength(a, t.N, len(raw)); err != nil {
			return err
		}
		for _, w := range raw {
			var b [8]byte
			binary.LittleEndian.PutUint64(b[:], w)
			a.emit(b[:]...)
		}
		return nil

	case Str:
		str := v.(string)
		if err := encodeLength(a, t.N, len(str)); err != nil {
			return err
		}
		a.emit([]byte(str)...)
		return nil
	case StaticStr:
		str := v.(string)
		if err := encodeLength(a, t.N, len(str)); err != nil {
			return err
		}
		a.emit([]byte(str)...)
		return nil

	case EmptyVector:
		return nil

	case VectorWithCap:
		var n int
		switch vv := v.(type) {
		case []any:
			n = len(vv)
		default:
			n = 0
		}
		return encodeLength(a, t.C, n)

	case RandomVector:
		return errRandomVectorUnimplemented

	case TPMKey:
		key := v.(*uint256.Int)
		arr := key.Bytes32()
		a.emit(arr[:]...)
		return nil

	case OneOf:
		return errUnreversibleExpression
	case Eval:
		return errUnreversibleExpression
	case Var:
		return errUnreversibleExpression

	case Mod:
		return EncodeExpr(a, t.A, v)

	case ApiRef:
		ref := v.(ObjRef)
		a.emit(byte(ref.Index))
		return nil

	default:
		return errUnreversibleExpression
	}
}

// encodeLength emits the bytes a length subexpression would have to decode
// back to n, covering the handful of concrete integer ground terms the
// grammar ever uses as a length.
func encodeLength(a *Assembler, e Expression, n int) error {
	switch e.(type) {
	case U8:
		a.emit(byte(n))
		return nil
	case U16:
		var b [2]byte
		binary.LittleEndian.PutUint16(b[:], uint16(n))
		a.emit(b[:]...)
		return nil
	case U32:
		var b [4]byte
		binary.LittleEndian.PutUint32(b[:], uint32(n))
		a.emit(b[:]...)
		return nil
	case Usize:
		var b [8]byte
		binary.LittleEndian.PutUint64(b[:], uint64(n))
		a.emit(b[:]...)
		return nil
	default:
		return errUnreversibleExpression
	}
}
