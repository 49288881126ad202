// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package main

import (
	"bytes"
	"encoding/json"
	"os"
	"sync"

	jschema "github.com/santhosh-tekuri/jsonschema/v6"
	"github.com/samber/oops"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// NewValidateConfigCmd creates the validate-config subcommand.
func NewValidateConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate-config FILE",
		Short: "Check a config file against the config schema",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return oops.Code("CONFIG_INVALID").With("path", args[0]).Wrap(err)
			}
			if err := ValidateConfig(data); err != nil {
				return oops.With("path", args[0]).Wrap(err)
			}
			cmd.Printf("%s: ok\n", args[0])
			return nil
		},
	}
}

var configSchema = sync.OnceValues(func() (*jschema.Schema, error) {
	raw, err := GenerateSchema("config")
	if err != nil {
		return nil, err
	}
	doc, err := jschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return nil, oops.Code("SCHEMA_INVALID").Wrapf(err, "parsing config schema")
	}

	c := jschema.NewCompiler()
	if err := c.AddResource("config.schema.json", doc); err != nil {
		return nil, oops.Code("SCHEMA_INVALID").Wrapf(err, "adding config schema")
	}
	sch, err := c.Compile("config.schema.json")
	if err != nil {
		return nil, oops.Code("SCHEMA_INVALID").Wrapf(err, "compiling config schema")
	}
	return sch, nil
})

// ValidateConfig validates YAML config data against the config schema.
func ValidateConfig(data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return oops.Code("CONFIG_INVALID").Wrapf(err, "invalid YAML")
	}
	if doc == nil {
		doc = map[string]any{}
	}

	// Re-encode so the validator sees JSON types.
	asJSON, err := json.Marshal(doc)
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrapf(err, "config is not representable as JSON")
	}
	inst, err := jschema.UnmarshalJSON(bytes.NewReader(asJSON))
	if err != nil {
		return oops.Code("CONFIG_INVALID").Wrap(err)
	}

	sch, err := configSchema()
	if err != nil {
		return err
	}
	if err := sch.Validate(inst); err != nil {
		return oops.Code("CONFIG_INVALID").Wrapf(err, "schema validation failed")
	}
	return nil
}
