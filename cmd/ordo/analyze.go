package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ordo-run/ordo"
)

var analyzeExpr string

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file]",
	Short: "Run the JIT-compatibility analyzer over an expression or a rule set",
	Long: `With --expr, analyzes a single expression in isolation. Given a rule-set
file instead, analyzes every embedded expression and prints the
aggregate report (compatible/total counts, required fields, heuristic
speedup estimate).`,
	Args: cobra.MaximumNArgs(1),
	Run:  runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeExpr, "expr", "", "analyze this expression instead of a rule-set file")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) {
	if analyzeExpr != "" {
		report, err := ordo.AnalyzeExpression(analyzeExpr)
		if err != nil {
			fail(err)
		}
		outputJSON(report)
		return
	}

	if len(args) != 1 {
		fail(fmt.Errorf("analyze requires either --expr or a rule-set file"))
	}

	source, err := os.ReadFile(args[0])
	if err != nil {
		fail(fmt.Errorf("reading %s: %w", args[0], err))
	}
	compiled, diags, err := ordo.Load(source)
	if err != nil {
		fail(err)
	}
	if len(diags) > 0 {
		outputJSON(diags)
		os.Exit(1)
	}

	outputJSON(ordo.AnalyzeRuleSet(compiled))
}
