package cmd

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/smazurov/strobed/internal/sequence"
	"github.com/spf13/cobra"
)

// CreateValidateCmd creates the validate command. It loads a sequences file,
// runs every effect through validation, and reports what it found without
// touching any hardware.
func CreateValidateCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "validate [file]",
		Short: "Validate a sequences file",
		Long: `Parses a sequences TOML file, applies the same normalization and ` +
			`validation the daemon uses, and reports every sequence found. ` +
			`Exits non-zero if the file cannot be loaded.`,
		Args: cobra.MaximumNArgs(1),
		Run: func(_ *cobra.Command, args []string) {
			path := "sequences.toml"
			if len(args) > 0 {
				path = args[0]
			}

			sequences, err := sequence.LoadFile(path)
			if err != nil {
				fmt.Fprintf(os.Stderr, "validation failed: %v\n", err)
				os.Exit(1)
			}

			if quiet {
				return
			}

			names := make([]string, 0, len(sequences))
			for name := range sequences {
				names = append(names, name)
			}
			sort.Strings(names)

			fmt.Printf("%s: %d sequence(s) OK\n", path, len(names))
			for _, name := range names {
				seq := sequences[name]
				var total time.Duration
				for _, effect := range seq.Effects {
					total += effect.Duration()
				}
				fmt.Printf("  %-20s %d effect(s), %s total\n", name, len(seq.Effects), total)
			}
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "Suppress per-sequence output")

	return cmd
}
