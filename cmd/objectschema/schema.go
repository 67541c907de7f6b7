package main

import (
	"fmt"

	json "github.com/goccy/go-json"
	"github.com/spf13/cobra"

	objectschema "github.com/reoring/objectschema"
	"github.com/reoring/objectschema/schemafile"
	"github.com/reoring/objectschema/validators"
	"github.com/reoring/objectschema/validators/uniqueness"
)

func newSchemaCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the root schema",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			s, err := a.loadSchema()
			if err != nil {
				return err
			}
			b, err := json.MarshalIndent(s.JSONSchema(), "", "  ")
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(a.stdout, string(b))
			return err
		},
	}
}

// loadSchema builds the stock registry, reads the schema file and picks
// the root schema. Uniqueness is registered without a store; validate puts
// one in the context.
func (a *app) loadSchema() (*objectschema.Schema, error) {
	if a.cfg.Schema == "" {
		return nil, fmt.Errorf("no schema file given (--schema or OBJECTSCHEMA_SCHEMA)")
	}
	reg := validators.NewRegistry()
	if err := uniqueness.Register(reg, nil); err != nil {
		return nil, err
	}
	f, err := schemafile.LoadFile(a.cfg.Schema, schemafile.Options{Registry: reg})
	if err != nil {
		return nil, err
	}
	if a.cfg.Root != "" {
		s, ok := f.Schema(a.cfg.Root)
		if !ok {
			return nil, fmt.Errorf("schema %q not found in %s (have %v)", a.cfg.Root, a.cfg.Schema, f.Names())
		}
		return s, nil
	}
	return f.Root()
}
