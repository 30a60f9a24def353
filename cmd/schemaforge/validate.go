package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/schemaforge/client"
	"github.com/felixgeelhaar/schemaforge/schema"
	"github.com/felixgeelhaar/schemaforge/server"
)

// errInvalid is returned when the data does not satisfy the schema. The violations have
// already been printed.
var errInvalid = errors.New("data is invalid")

type validateCmd struct {
	app       *app
	file      string
	serverURL string
	apiKey    string
	attribute string
	jsonOut   bool
}

func newValidateCmd(a *app) *cobra.Command {
	v := &validateCmd{app: a}
	cmd := &cobra.Command{
		Use:   "validate SCHEMA [DATA]",
		Short: "Validate data against a stored schema",
		Long: `Validate data against a stored schema.

Data is taken from the DATA argument, the --file flag or standard input, in that order of
precedence. DATA that is not JSON is validated as a plain string.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: v.run,
	}

	flags := cmd.Flags()
	flags.StringVarP(&v.file, "file", "f", "", "read JSON data from a file")
	flags.StringVar(&v.serverURL, "server", "", "validate on a running registry, e.g. http://localhost:8080")
	flags.StringVar(&v.apiKey, "api-key", "", "API key for --server")
	flags.StringVar(&v.attribute, "attribute", "", "root field path for violation messages")
	flags.BoolVar(&v.jsonOut, "json", false, "print the result as JSON")
	return cmd
}

func (v *validateCmd) run(cmd *cobra.Command, args []string) error {
	name := args[0]
	data, err := v.readData(cmd, args[1:])
	if err != nil {
		return err
	}

	var res *schema.Result
	if v.serverURL != "" {
		res, err = v.remote(cmd, name, data)
	} else {
		res, err = v.local(name, data)
	}
	if err != nil {
		return err
	}

	if err := v.print(cmd.OutOrStdout(), name, res); err != nil {
		return err
	}
	if !res.Valid {
		return errInvalid
	}
	return nil
}

func (v *validateCmd) local(name string, data []byte) (*schema.Result, error) {
	cfg, err := v.app.config()
	if err != nil {
		return nil, err
	}
	doc, err := server.FindDocument(cfg.Storage.Path, name)
	if err != nil {
		return nil, err
	}
	return schema.NewValidator(cfg.ValidatorOptions()...).ValidateJSONAt(v.attribute, data, doc)
}

func (v *validateCmd) remote(cmd *cobra.Command, name string, data []byte) (*schema.Result, error) {
	var opts []client.HTTPOption
	if v.apiKey != "" {
		opts = append(opts, client.WithHeader("X-API-Key", v.apiKey))
	}
	c := client.New(client.NewHTTPTransport(v.serverURL, opts...))
	defer c.Close()

	return c.ValidateAttribute(cmd.Context(), name, v.attribute, json.RawMessage(data))
}

// readData returns the data to validate as JSON text.
func (v *validateCmd) readData(cmd *cobra.Command, args []string) ([]byte, error) {
	switch {
	case len(args) == 1:
		return jsonOrString([]byte(args[0]))
	case v.file != "":
		data, err := os.ReadFile(v.file)
		if err != nil {
			return nil, fmt.Errorf("read data: %w", err)
		}
		if !json.Valid(data) {
			return nil, fmt.Errorf("invalid JSON in %s", v.file)
		}
		return data, nil
	}

	data, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return nil, fmt.Errorf("read stdin: %w", err)
	}
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		return nil, errors.New("no data provided")
	}
	return jsonOrString(data)
}

// jsonOrString keeps valid JSON as is and encodes anything else as a JSON string.
func jsonOrString(data []byte) ([]byte, error) {
	if json.Valid(data) {
		return data, nil
	}
	return json.Marshal(string(data))
}

func (v *validateCmd) print(w io.Writer, name string, res *schema.Result) error {
	if v.jsonOut {
		data, err := json.Marshal(res)
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(data))
		return err
	}

	if res.Valid {
		_, err := fmt.Fprintf(w, "Data is valid against schema %s\n", name)
		return err
	}
	fmt.Fprintf(w, "Data validation failed against schema %s:\n", name)
	for _, msg := range res.Errors() {
		fmt.Fprintf(w, "  - %s\n", msg)
	}
	return nil
}
