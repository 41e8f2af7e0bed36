package main

import (
	"os"

	"gopkg.in/yaml.v3"
)

// ParamSpec names one argument's grammar by its textual kind, plus the two
// fields a handful of kinds need (a length kind for
// Vector/Slice/Str/UsizeArray, or the Api this ApiRef addresses).
type ParamSpec struct {
	Kind   string `yaml:"kind"`             // u8|u16|u32|usize|str|staticstr|vector|slice|usizearray|tpmkey|apiref
	Length string `yaml:"length,omitempty"` // length kind for vector/slice/str/staticstr/usizearray
	ApiRef string `yaml:"apiRef,omitempty"` // referenced Api name, for kind == apiref
}

// returnsKind names the return arity a wired ctor/member function actually
// has, so the generator can emit a call wrapper whose shape matches it
// instead of guessing. Default ("") is valueError: the common (T, error)
// case. The other kinds cover the single-value and single-error shapes
// examples/tademo/api.go mixes in (NewKey/NewTPM return just T; Set/Setup/
// Lock/Unlock return just error).
const (
	returnsValueError = ""
	returnsValueOnly  = "value_only"
	returnsErrorOnly  = "error_only"
)

// CtorSpec is one constructor entry in a model YAML file: the exported Go
// function fuzzgen wires up, and its argument grammar.
type CtorSpec struct {
	Name    string      `yaml:"name"`
	Func    string      `yaml:"func"` // package-qualified Go function, e.g. "tademo.LoginCreds"
	Returns string      `yaml:"returns,omitempty"` // "" (value, error) | "value_only"
	Params  []ParamSpec `yaml:"params,omitempty"`
}

// MemberSpec is one member entry: an exported Go method, its grammar, and
// whether it is an assign-self member.
type MemberSpec struct {
	Name       string      `yaml:"name"`
	Method     string      `yaml:"method"` // unqualified method name on the Api's Go type
	AssignSelf bool        `yaml:"assignSelf,omitempty"`
	Returns    string      `yaml:"returns,omitempty"` // "" (value, error) | "error_only"
	Params     []ParamSpec `yaml:"params,omitempty"`
}

// ApiSpec is one Api entry: its Go type and the constructors/members that
// operate on it.
type ApiSpec struct {
	Name    string       `yaml:"name"`
	Type    string       `yaml:"type"` // unqualified Go type name, e.g. "Key"
	Ctors   []CtorSpec   `yaml:"ctors"`
	Members []MemberSpec `yaml:"members,omitempty"`
}

// ModelSpec is the top-level YAML document fuzzgen compiles: the target Go
// package fuzzgen loads via go/packages to validate every reference against,
// plus the ordered list of Apis (their declaration order becomes their
// ApiTag).
type ModelSpec struct {
	Package string    `yaml:"package"` // Go import path of the target package
	Apis    []ApiSpec `yaml:"apis"`
}

// loadModelSpec reads and parses a model YAML file.
func loadModelSpec(path string) (*ModelSpec, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var spec ModelSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}
