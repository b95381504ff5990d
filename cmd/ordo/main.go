// Command ordo is the offline tooling surface for the rule engine:
// validate, evaluate, and analyze rule-set files from disk. One cobra
// command per file, registered in init().
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var jsonOutput bool

var rootCmd = &cobra.Command{
	Use:   "ordo",
	Short: "ordo - deterministic rule engine CLI",
	Long:  `Validate, evaluate, and analyze Ordo rule sets from the command line.`,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output machine-readable JSON")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// outputJSON pretty-prints v to stdout.
func outputJSON(v any) {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(v); err != nil {
		fmt.Fprintf(os.Stderr, "error encoding JSON: %v\n", err)
		os.Exit(1)
	}
}

// fail prints err to stderr (as JSON when --json is set) and exits 1.
func fail(err error) {
	if jsonOutput {
		_ = json.NewEncoder(os.Stderr).Encode(map[string]string{"error": err.Error()})
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(1)
}
