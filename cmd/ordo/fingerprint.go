package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ordo-run/ordo"
)

var fingerprintCmd = &cobra.Command{
	Use:   "fingerprint <file>",
	Short: "Print a rule set's canonical fingerprint",
	Long: `Computes the cache-key / on-the-wire equality digest for a rule-set
file without compiling it, useful for cache-key scripting.`,
	Args: cobra.ExactArgs(1),
	Run:  runFingerprint,
}

func init() {
	rootCmd.AddCommand(fingerprintCmd)
}

func runFingerprint(cmd *cobra.Command, args []string) {
	source, err := os.ReadFile(args[0])
	if err != nil {
		fail(fmt.Errorf("reading %s: %w", args[0], err))
	}
	fp, err := ordo.Fingerprint(source)
	if err != nil {
		fail(err)
	}
	if jsonOutput {
		outputJSON(map[string]string{"fingerprint": fp})
		return
	}
	fmt.Println(fp)
}
