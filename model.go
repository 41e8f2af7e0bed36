package tafuzz

// CtorSpec is a model author's declaration of one constructor: its argument
// grammar plus an adapter that turns the materialized Go argument values
// into a call on the real target constructor. Compile() turns every
// CtorSpec into the generic CtorThunk session.go drives, parameterized by
// name and params rather than hand-written per API.
type CtorSpec struct {
	Name   string
	Params []Expression
	// Invoke calls the real constructor with the materialized args (already
	// in Params order) and returns the new object's Go value.
	Invoke func(args []any) (any, error)
}

// MemberDecl is a model author's declaration of one member operation.
// AssignSelf marks a method whose effective signature is "consume self,
// return a replacement self or fail": set it so a successful call replaces
// the cached receiver and a failed call gracefully poisons it.
type MemberDecl struct {
	Name       string
	AssignSelf bool
	Params     []Expression
	// Invoke calls the real method on the given receiver value with the
	// materialized args. For an AssignSelf member, the returned value is
	// the replacement receiver on success; for a non-AssignSelf member the
	// returned value and error are both ignored by the session driver.
	Invoke func(recv any, args []any) (any, error)
}

// FuncSpec is a model author's declaration of one free (non-member)
// function.
type FuncSpec struct {
	Name   string
	Params []Expression
	Invoke func(args []any) error
}

// apiBuilder accumulates one Api's constructors and members while a Model
// is being assembled.
type apiBuilder struct {
	tag     ApiTag
	name    string
	ctors   []CtorSpec
	members []MemberDecl
}

// Tag returns the ApiTag this Api will be compiled to, so a model author
// can reference it from another Api's ApiRef arguments before Compile runs.
func (b *apiBuilder) Tag() ApiTag { return b.tag }

// Ctor registers one constructor on this Api.
func (b *apiBuilder) Ctor(spec CtorSpec) *apiBuilder {
	b.ctors = append(b.ctors, spec)
	return b
}

// Member registers one member operation on this Api.
func (b *apiBuilder) Member(spec MemberDecl) *apiBuilder {
	b.members = append(b.members, spec)
	return b
}

// Model is the builder for a Target. A model author constructs one at
// package-init time, describing the API surface once, and calls Compile to
// obtain an immutable Target ready for repeated Fuzz calls.
type Model struct {
	apis  []*apiBuilder
	funcs []FuncSpec
	opts  Options
}

// NewModel starts an empty model with the given Target-wide options.
func NewModel(opts Options) *Model {
	return &Model{opts: opts}
}

// Api declares a new Api named name; its Tag is its position in the
// declaration order, a stable wire-level selector index.
func (m *Model) Api(name string) *apiBuilder {
	b := &apiBuilder{tag: ApiTag(len(m.apis)), name: name}
	m.apis = append(m.apis, b)
	return b
}

// Func declares a free function.
func (m *Model) Func(spec FuncSpec) *Model {
	m.funcs = append(m.funcs, spec)
	return m
}

// Compile validates every declared grammar (rejecting RandomVector, which
// has no forward rule) and builds the immutable, ready-to-fuzz Target.
func (m *Model) Compile() (*Target, error) {
	t := &Target{opts: m.opts}

	for _, b := range m.apis {
		api := &Api{Tag: b.tag, Name: b.name}
		for _, cs := range b.ctors {
			for _, p := range cs.Params {
				if err := validateExpression(p); err != nil {
					return nil, err
				}
			}
			api.Ctors = append(api.Ctors, buildCtorThunk(b.tag, b.name, cs, m.opts))
		}
		for _, ms := range b.members {
			for _, p := range ms.Params {
				if err := validateExpression(p); err != nil {
					return nil, err
				}
			}
			api.Members = append(api.Members, MemberSpec{
				Name:       ms.Name,
				AssignSelf: ms.AssignSelf,
				Thunk:      buildMemberThunk(b.tag, b.name, ms, m.opts),
			})
		}
		t.apis = append(t.apis, api)
	}

	for _, fs := range m.funcs {
		for _, p := range fs.Params {
			if err := validateExpression(p); err != nil {
				return nil, err
			}
		}
		t.funcs = append(t.funcs, buildFreeFuncThunk(fs, m.opts))
	}

	return t, nil
}

func buildCtorThunk(tag ApiTag, apiName string, spec CtorSpec, opts Options) CtorThunk {
	return func(target *Target, cur *Cursor, cache *objectCache) (Object, error) {
		args, pending, err := evalArgs(target, spec.Params, cur, cache)
		if err != nil {
			return NoneObject, err
		}
		traceBegin(opts, apiName+"::"+spec.Name, args)
		val, err := spec.Invoke(args)
		traceEnd(opts, apiName+"::"+spec.Name, val, err)
		releaseBorrows(cache, pending)
		if err != nil {
			return NoneObject, err
		}
		return newObject(tag, val), nil
	}
}

func buildMemberThunk(tag ApiTag, apiName string, spec MemberDecl, opts Options) MemberThunk {
	return func(target *Target, obj *Object, cur *Cursor, cache *objectCache) (Object, error) {
		args, pending, err := evalArgs(target, spec.Params, cur, cache)
		if err != nil {
			return NoneObject, err
		}
		traceBegin(opts, apiName+"::"+spec.Name, args)
		ret, err := spec.Invoke(obj.Value(), args)
		traceEnd(opts, apiName+"::"+spec.Name, ret, err)
		releaseBorrows(cache, pending)

		if !spec.AssignSelf {
			return NoneObject, nil
		}
		if err != nil {
			return NoneObject, nil // graceful poisoning; see session.go
		}
		return newObject(tag, ret), nil
	}
}

func buildFreeFuncThunk(spec FuncSpec, opts Options) FreeFunc {
	return func(target *Target, cur *Cursor, cache *objectCache) error {
		args, pending, err := evalArgs(target, spec.Params, cur, cache)
		if err != nil {
			return err
		}
		traceBegin(opts, spec.Name, args)
		err = spec.Invoke(args)
		traceEnd(opts, spec.Name, nil, err)
		releaseBorrows(cache, pending)
		return err
	}
}
