package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ordo-run/ordo"
)

var (
	evalInputPath string
	evalTrace     bool
	evalMaxSteps  int
	evalTimeout   int64
	evalStrict    bool
)

var evalCmd = &cobra.Command{
	Use:   "eval <file>",
	Short: "Load and evaluate a rule set against an input record",
	Long: `Loads a rule-set JSON file, evaluates it against the record read from
--input, and prints the resulting EvalResult as JSON.`,
	Args: cobra.ExactArgs(1),
	Run:  runEval,
}

func init() {
	evalCmd.Flags().StringVar(&evalInputPath, "input", "", "path to a JSON file holding the input record (required)")
	evalCmd.Flags().BoolVar(&evalTrace, "trace", false, "force trace collection regardless of the rule set's default")
	evalCmd.Flags().IntVar(&evalMaxSteps, "max-steps", 0, "override the default 10000-step limit")
	evalCmd.Flags().Int64Var(&evalTimeout, "timeout", 0, "override the (disabled by default) timeout, in nanoseconds")
	evalCmd.Flags().BoolVar(&evalStrict, "strict", false, "raise UNKNOWN_VARIABLE for variable paths that resolve to an absent segment")
	_ = evalCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(evalCmd)
}

func runEval(cmd *cobra.Command, args []string) {
	source, err := os.ReadFile(args[0])
	if err != nil {
		fail(fmt.Errorf("reading %s: %w", args[0], err))
	}
	inputBytes, err := os.ReadFile(evalInputPath)
	if err != nil {
		fail(fmt.Errorf("reading %s: %w", evalInputPath, err))
	}

	var input map[string]any
	if err := json.Unmarshal(inputBytes, &input); err != nil {
		fail(fmt.Errorf("parsing %s: %w", evalInputPath, err))
	}

	compiled, diags, err := ordo.Load(source)
	if err != nil {
		fail(err)
	}
	if len(diags) > 0 {
		outputJSON(diags)
		os.Exit(1)
	}

	opts := ordo.EvalOptions{MaxSteps: evalMaxSteps, TimeoutNs: evalTimeout, Strict: evalStrict}
	if cmd.Flags().Changed("trace") {
		t := evalTrace
		opts.EnableTrace = &t
	}

	result, err := ordo.Evaluate(context.Background(), compiled, input, opts)
	if err != nil {
		fail(err)
	}

	outputJSON(result)
}
