// Command fuzzreplay replays a single recorded test case against the
// demonstration TA's compiled Target (examples/tademo), the way a fuzzing
// campaign's triage step re-runs one saved input outside the fuzzer loop.
// It is deliberately wired to one concrete target rather than loading one
// dynamically: host-to-TA transport and packaging are out of scope here,
// and Go has no portable dynamic-loading story, so "compiled in" is the
// idiomatic choice; swapping examples/tademo.BuildModel for another
// package's BuildModel is the expected way to retarget this tool.
package main

import (
	"encoding/hex"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/L0czek/ta-fuzz/examples/tademo"
)

var (
	configPath string
	tcPath     string
	tcHex      string
	traceFlag  bool
)

func main() {
	root := &cobra.Command{
		Use:   "fuzzreplay",
		Short: "Replay a saved test case against the demonstration TA target",
		RunE:  runReplay,
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a YAML Options config file")
	root.Flags().StringVar(&tcPath, "tc", "", "path to a raw test case file")
	root.Flags().StringVar(&tcHex, "tc-hex", "", "test case bytes as a hex string (overrides --tc)")
	root.Flags().BoolVar(&traceFlag, "trace", false, "force-enable BEGIN/END call tracing regardless of --config")

	if err := root.Execute(); err != nil {
		logrus.WithError(err).Fatal("fuzzreplay: replay failed")
	}
}

func runReplay(cmd *cobra.Command, args []string) error {
	opts, err := loadConfig(configPath)
	if err != nil {
		return fmt.Errorf("fuzzreplay: loading config: %w", err)
	}
	if traceFlag {
		opts.Trace = true
	}
	if opts.Trace {
		logrus.SetLevel(logrus.DebugLevel)
	}

	tc, err := loadTestCase()
	if err != nil {
		return fmt.Errorf("fuzzreplay: loading test case: %w", err)
	}

	target, err := tademo.BuildModel(opts)
	if err != nil {
		return fmt.Errorf("fuzzreplay: building target: %w", err)
	}

	logrus.WithField("bytes", len(tc)).Info("fuzzreplay: starting replay")
	if err := target.Fuzz(tc); err != nil {
		return fmt.Errorf("fuzzreplay: replay ended with error: %w", err)
	}
	logrus.Info("fuzzreplay: replay completed without error")
	return nil
}

func loadTestCase() ([]byte, error) {
	if tcHex != "" {
		return hex.DecodeString(tcHex)
	}
	if tcPath == "" {
		return nil, fmt.Errorf("one of --tc or --tc-hex is required")
	}
	return os.ReadFile(tcPath)
}
