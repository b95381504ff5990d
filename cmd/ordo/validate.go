package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ordo-run/ordo"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file>",
	Short: "Compile a rule-set file and print its diagnostics or fingerprint",
	Long: `Runs the load interface (parse, resolve function names, check graph
invariants) against a rule-set JSON file. On success prints the
fingerprint; on failure prints every diagnostic with its JSON Pointer
path.`,
	Args: cobra.ExactArgs(1),
	Run:  runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) {
	source, err := os.ReadFile(args[0])
	if err != nil {
		fail(fmt.Errorf("reading %s: %w", args[0], err))
	}

	compiled, diags, err := ordo.Load(source)
	if err != nil {
		fail(err)
	}
	if len(diags) > 0 {
		if jsonOutput {
			outputJSON(diags)
		} else {
			for _, d := range diags {
				fmt.Printf("%s: %s: %s\n", d.Path, d.Code, d.Message)
			}
		}
		os.Exit(1)
	}

	if jsonOutput {
		outputJSON(map[string]string{"fingerprint": compiled.Fingerprint(), "name": compiled.Name()})
		return
	}
	fmt.Printf("OK  %s  fingerprint=%s\n", compiled.Name(), compiled.Fingerprint())
}
