package main

import (
	"fmt"
	"go/types"
	"strings"

	"golang.org/x/tools/go/packages"
)

// loadPackage loads pkgPath with full type information via go/packages +
// go/types, so the caller can walk its exported types and functions.
func loadPackage(pkgPath string) (*types.Package, error) {
	cfg := &packages.Config{Mode: packages.NeedTypes | packages.NeedTypesInfo | packages.NeedSyntax | packages.NeedName}
	pkgs, err := packages.Load(cfg, pkgPath)
	if err != nil {
		return nil, err
	}
	if len(pkgs) != 1 {
		return nil, fmt.Errorf("fuzzgen: expected exactly one package for %q, got %d", pkgPath, len(pkgs))
	}
	if len(pkgs[0].Errors) > 0 {
		return nil, fmt.Errorf("fuzzgen: %s: %v", pkgPath, pkgs[0].Errors[0])
	}
	return pkgs[0].Types, nil
}

// lookupNamedType resolves a type name to its *types.Named.
func lookupNamedType(pkg *types.Package, name string) (*types.Named, error) {
	obj := pkg.Scope().Lookup(name)
	if obj == nil {
		return nil, fmt.Errorf("fuzzgen: no such identifier %q in package %s", name, pkg.Path())
	}
	tn, ok := obj.(*types.TypeName)
	if !ok {
		return nil, fmt.Errorf("fuzzgen: %q is not a type", name)
	}
	named, ok := tn.Type().(*types.Named)
	if !ok {
		return nil, fmt.Errorf("fuzzgen: %q is not a named type", name)
	}
	return named, nil
}

// lookupFunc resolves a package-level function by name.
func lookupFunc(pkg *types.Package, name string) (*types.Func, error) {
	obj := pkg.Scope().Lookup(name)
	if obj == nil {
		return nil, fmt.Errorf("fuzzgen: no such function %q in package %s", name, pkg.Path())
	}
	fn, ok := obj.(*types.Func)
	if !ok {
		return nil, fmt.Errorf("fuzzgen: %q is not a function", name)
	}
	return fn, nil
}

// ctorLocalName splits a ctor's package-qualified func reference (e.g.
// "tademo.LoginCreds") and returns its unqualified tail when the qualifier
// names pkg itself. A qualifier naming some other package is out of scope
// for this loaded package's go/types information, so the caller treats that
// case as "nothing to check here" rather than an error.
func ctorLocalName(pkg *types.Package, funcRef string) (string, bool) {
	qualifier, name, ok := strings.Cut(funcRef, ".")
	if !ok || qualifier != pkg.Name() {
		return "", false
	}
	return name, true
}

// lookupMethod resolves an exported method on a named type by walking its
// method set.
func lookupMethod(named *types.Named, name string) (*types.Func, error) {
	for i := 0; i < named.NumMethods(); i++ {
		m := named.Method(i)
		if m.Name() == name {
			return m, nil
		}
	}
	return nil, fmt.Errorf("fuzzgen: no such method %q on type %s", name, named.Obj().Name())
}

// validateModel cross-checks every Api/Ctor/Member reference in spec against
// the loaded target package, failing fast at generate time rather than
// leaving a dangling reference to surface as a build error later.
func validateModel(pkg *types.Package, spec *ModelSpec) error {
	for _, api := range spec.Apis {
		named, err := lookupNamedType(pkg, api.Type)
		if err != nil {
			return err
		}
		for _, ctor := range api.Ctors {
			local, ok := ctorLocalName(pkg, ctor.Func)
			if !ok {
				// ctor.Func names a function in some other package; this
				// loaded package's go/types information has nothing to check
				// it against.
				continue
			}
			if _, err := lookupFunc(pkg, local); err != nil {
				return fmt.Errorf("fuzzgen: api %s: ctor %s: %w", api.Name, ctor.Name, err)
			}
		}
		for _, member := range api.Members {
			if _, err := lookupMethod(named, member.Method); err != nil {
				return err
			}
		}
	}
	return nil
}
