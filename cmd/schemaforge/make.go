package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/schemaforge/schema"
	"github.com/felixgeelhaar/schemaforge/server"
)

type makeCmd struct {
	app     *app
	example bool
}

func newMakeCmd(a *app) *cobra.Command {
	m := &makeCmd{app: a}
	cmd := &cobra.Command{
		Use:   "make NAME",
		Short: "Create a schema scaffold in the storage directory",
		Args:  cobra.ExactArgs(1),
		RunE:  m.run,
	}
	cmd.Flags().BoolVar(&m.example, "example", false, "add descriptions and example values")
	return cmd
}

func (m *makeCmd) run(cmd *cobra.Command, args []string) error {
	cfg, err := m.app.config()
	if err != nil {
		return err
	}

	name := args[0]
	path, err := server.SaveDocument(cfg.Storage.Path, name, scaffold(name, m.example).Document())
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Schema %s created at %s\n", name, path)
	return nil
}

// scaffold is the starting schema written by make.
func scaffold(name string, example bool) schema.ObjectNode {
	id := schema.String().Format("uuid")
	title := schema.String().MinLength(1).MaxLength(255)
	created := schema.String().Format("date-time")

	node := schema.Object()
	if example {
		id = id.Description("Unique identifier").Examples("3f1c2a7e-9b4d-4c1e-8f2a-1b2c3d4e5f60")
		title = title.Description("Display name").Examples("Example " + name)
		created = created.Description("Creation time").Examples("2024-01-01T00:00:00Z")
		node = node.Description("This schema defines the structure for " + name + " data validation.")
	}

	return node.
		Property("id", id).
		Property("name", title).
		Property("created_at", created).
		Required("id", "name", "created_at").
		Title(name)
}
