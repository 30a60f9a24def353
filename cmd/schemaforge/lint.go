package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/schemaforge/schema"
	"github.com/felixgeelhaar/schemaforge/server"
)

func newLintCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "lint FILE...",
		Short: "Check schema files against the JSON Schema meta-schema",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			failed := 0
			for _, path := range args {
				doc, err := server.ReadDocument(path)
				if err == nil {
					err = schema.Lint(doc)
				}
				if err != nil {
					failed++
					fmt.Fprintf(out, "%s: %v\n", path, err)
					continue
				}
				fmt.Fprintf(out, "%s: ok\n", path)
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d files failed: %w", failed, len(args), errLint)
			}
			return nil
		},
	}
}

var errLint = errors.New("lint failed")
