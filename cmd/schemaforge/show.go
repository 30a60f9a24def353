package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/schemaforge/server"
)

func newShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show NAME",
		Short: "Print a stored schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			doc, err := server.FindDocument(cfg.Storage.Path, args[0])
			if err != nil {
				return err
			}
			data, err := doc.JSON()
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return nil
		},
	}
}
