package main

import (
	"bytes"
	"fmt"
	"sort"
)

// genContext accumulates the import set for one generated file.
type genContext struct {
	pkgName string
	imports map[string]string
}

func newGenContext(pkgName string) *genContext {
	return &genContext{pkgName: pkgName, imports: map[string]string{
		"github.com/L0czek/ta-fuzz": "tafuzz",
	}}
}

func (ctx *genContext) addImport(path, alias string) {
	ctx.imports[path] = alias
}

func (ctx *genContext) header() []byte {
	var paths sort.StringSlice
	for path := range ctx.imports {
		paths = append(paths, path)
	}
	sort.Sort(paths)

	var b bytes.Buffer
	fmt.Fprintf(&b, "package %s\n\n", ctx.pkgName)
	fmt.Fprintf(&b, "import (\n")
	for _, path := range paths {
		if alias := ctx.imports[path]; alias != "" {
			fmt.Fprintf(&b, "\t%s %q\n", alias, path)
		} else {
			fmt.Fprintf(&b, "\t%q\n", path)
		}
	}
	fmt.Fprintf(&b, ")\n\n")
	return b.Bytes()
}

// paramExpr renders one ParamSpec as Go source constructing the matching
// tafuzz.Expression literal, and reports the Go type its forward rule
// produces, so the caller knows what to assert args[i] to.
func paramExpr(p ParamSpec) (expr string, goType string, err error) {
	length := p.Length
	if length == "" {
		length = "usize"
	}
	lenExpr, err := groundExpr(length)
	if err != nil {
		return "", "", err
	}
	switch p.Kind {
	case "u8":
		return "tafuzz.U8{}", "uint8", nil
	case "u16":
		return "tafuzz.U16{}", "uint16", nil
	case "u32":
		return "tafuzz.U32{}", "uint32", nil
	case "usize":
		return "tafuzz.Usize{}", "uint64", nil
	case "str":
		return fmt.Sprintf("tafuzz.Str{N: %s}", lenExpr), "string", nil
	case "staticstr":
		return fmt.Sprintf("tafuzz.StaticStr{N: %s}", lenExpr), "string", nil
	case "vector":
		return fmt.Sprintf("tafuzz.Vector{N: %s}", lenExpr), "[]byte", nil
	case "slice":
		return fmt.Sprintf("tafuzz.Slice{N: %s}", lenExpr), "[]byte", nil
	case "usizearray":
		return fmt.Sprintf("tafuzz.UsizeArray{N: %s}", lenExpr), "[]uint64", nil
	case "tpmkey":
		return "tafuzz.TPMKey{}", "*uint256.Int", nil
	case "apiref":
		if p.ApiRef == "" {
			return "", "", fmt.Errorf("fuzzgen: apiref param missing apiRef field")
		}
		return fmt.Sprintf("tafuzz.ApiRef{Tag: %sTag}", p.ApiRef), "any", nil
	default:
		return "", "", fmt.Errorf("fuzzgen: unknown param kind %q", p.Kind)
	}
}

// usesTPMKey reports whether any param across spec needs the tafuzz.TPMKey
// rule, which is the only thing pulling in *uint256.Int.
func usesTPMKey(spec *ModelSpec) bool {
	for _, api := range spec.Apis {
		for _, c := range api.Ctors {
			for _, p := range c.Params {
				if p.Kind == "tpmkey" {
					return true
				}
			}
		}
		for _, member := range api.Members {
			for _, p := range member.Params {
				if p.Kind == "tpmkey" {
					return true
				}
			}
		}
	}
	return false
}

func groundExpr(kind string) (string, error) {
	switch kind {
	case "u8":
		return "tafuzz.U8{}", nil
	case "u16":
		return "tafuzz.U16{}", nil
	case "u32":
		return "tafuzz.U32{}", nil
	case "usize":
		return "tafuzz.Usize{}", nil
	default:
		return "", fmt.Errorf("fuzzgen: unknown length kind %q", kind)
	}
}

// generateModel emits the full BuildModel source for spec.
func generateModel(ctx *genContext, spec *ModelSpec) ([]byte, error) {
	if usesTPMKey(spec) {
		ctx.addImport("github.com/holiman/uint256", "")
	}

	var body bytes.Buffer
	fmt.Fprintf(&body, "// BuildModel wires the Apis declared in the fuzzgen model file into a\n")
	fmt.Fprintf(&body, "// compiled tafuzz.Target.\n")
	fmt.Fprintf(&body, "func BuildModel(opts tafuzz.Options) (*tafuzz.Target, error) {\n")
	fmt.Fprintf(&body, "\tm := tafuzz.NewModel(opts)\n\n")

	for i, api := range spec.Apis {
		varName := fmt.Sprintf("api%d", i)
		fmt.Fprintf(&body, "\t%s := m.Api(%q)\n", varName, api.Name)
		fmt.Fprintf(&body, "\tconst %sTag tafuzz.ApiTag = %d\n", api.Name, i)

		for _, c := range api.Ctors {
			params, argNames, err := renderParams(c.Params)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&body, "\t%s.Ctor(tafuzz.CtorSpec{\n", varName)
			fmt.Fprintf(&body, "\t\tName: %q,\n", c.Name)
			fmt.Fprintf(&body, "\t\tParams: []tafuzz.Expression{%s},\n", params)
			fmt.Fprintf(&body, "\t\tInvoke: func(args []any) (any, error) {\n")
			switch c.Returns {
			case returnsValueError:
				fmt.Fprintf(&body, "\t\t\treturn %s(%s)\n", c.Func, argNames)
			case returnsValueOnly:
				fmt.Fprintf(&body, "\t\t\treturn %s(%s), nil\n", c.Func, argNames)
			default:
				return nil, fmt.Errorf("fuzzgen: ctor %q: unknown returns kind %q", c.Name, c.Returns)
			}
			fmt.Fprintf(&body, "\t\t},\n")
			fmt.Fprintf(&body, "\t})\n")
		}

		for _, member := range api.Members {
			params, argNames, err := renderParams(member.Params)
			if err != nil {
				return nil, err
			}
			fmt.Fprintf(&body, "\t%s.Member(tafuzz.MemberDecl{\n", varName)
			fmt.Fprintf(&body, "\t\tName: %q,\n", member.Name)
			if member.AssignSelf {
				fmt.Fprintf(&body, "\t\tAssignSelf: true,\n")
			}
			fmt.Fprintf(&body, "\t\tParams: []tafuzz.Expression{%s},\n", params)
			fmt.Fprintf(&body, "\t\tInvoke: func(recv any, args []any) (any, error) {\n")
			switch member.Returns {
			case returnsValueError:
				if member.AssignSelf {
					fmt.Fprintf(&body, "\t\t\treturn recv.(*%s).%s(%s)\n", api.Type, member.Method, argNames)
				} else {
					fmt.Fprintf(&body, "\t\t\t_, err := recv.(*%s).%s(%s)\n", api.Type, member.Method, argNames)
					fmt.Fprintf(&body, "\t\t\treturn nil, err\n")
				}
			case returnsErrorOnly:
				fmt.Fprintf(&body, "\t\t\treturn nil, recv.(*%s).%s(%s)\n", api.Type, member.Method, argNames)
			default:
				return nil, fmt.Errorf("fuzzgen: api %q member %q: unknown returns kind %q", api.Name, member.Name, member.Returns)
			}
			fmt.Fprintf(&body, "\t\t},\n")
			fmt.Fprintf(&body, "\t})\n")
		}
		fmt.Fprintf(&body, "\n")
	}

	fmt.Fprintf(&body, "\treturn m.Compile()\n")
	fmt.Fprintf(&body, "}\n")

	return append(ctx.header(), body.Bytes()...), nil
}

// renderParams builds the []tafuzz.Expression element list for params and
// the comma-joined "args[i].(T)" assertions used at the call site.
func renderParams(params []ParamSpec) (exprList string, argNames string, err error) {
	var exprs, args []string
	for i, p := range params {
		expr, goType, err := paramExpr(p)
		if err != nil {
			return "", "", err
		}
		exprs = append(exprs, expr)
		args = append(args, fmt.Sprintf("args[%d].(%s)", i, goType))
	}
	return join(exprs), join(args), nil
}

func join(ss []string) string {
	var b bytes.Buffer
	for i, s := range ss {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(s)
	}
	return b.String()
}
