// Command fuzzgen compiles a declarative model YAML file into a Go source
// file wiring a tafuzz.Model, the way cmd/sszgen compiles a tagged Go type
// into its SSZ codec. Unlike sszgen, fuzzgen's input is not the target's own
// source (fuzzgen has no macro-time hook into an arbitrary TA's build) but a
// small YAML description naming the target's exported functions/methods;
// go/types is still used to validate every name against the real package
// before any code is emitted.
package main

import (
	"fmt"
	"go/format"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	modelPath  string
	outPath    string
	outPkgName string
)

func main() {
	root := &cobra.Command{
		Use:   "fuzzgen",
		Short: "Compile a tafuzz model YAML file into a Go source file",
		RunE:  runGenerate,
	}
	root.Flags().StringVar(&modelPath, "model", "", "path to the model YAML file (required)")
	root.Flags().StringVar(&outPath, "out", "", "output Go source path (required)")
	root.Flags().StringVar(&outPkgName, "pkg-name", "main", "package name for the generated file")
	root.MarkFlagRequired("model")
	root.MarkFlagRequired("out")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("fuzzgen: generation failed")
	}
}

func runGenerate(cmd *cobra.Command, args []string) error {
	spec, err := loadModelSpec(modelPath)
	if err != nil {
		return fmt.Errorf("fuzzgen: loading model: %w", err)
	}
	logrus.WithField("apis", len(spec.Apis)).Info("fuzzgen: loaded model")

	pkg, err := loadPackage(spec.Package)
	if err != nil {
		return fmt.Errorf("fuzzgen: loading target package: %w", err)
	}
	if err := validateModel(pkg, spec); err != nil {
		return fmt.Errorf("fuzzgen: validating model: %w", err)
	}

	ctx := newGenContext(outPkgName)
	ctx.addImport(spec.Package, "")
	src, err := generateModel(ctx, spec)
	if err != nil {
		return fmt.Errorf("fuzzgen: generating source: %w", err)
	}

	formatted, err := format.Source(src)
	if err != nil {
		return fmt.Errorf("fuzzgen: formatting generated source: %w", err)
	}

	if err := os.WriteFile(outPath, formatted, 0o644); err != nil {
		return fmt.Errorf("fuzzgen: writing %s: %w", outPath, err)
	}
	logrus.WithField("path", outPath).Info("fuzzgen: wrote model")
	return nil
}
