// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package main

import (
	"encoding/json"
	"maps"
	"reflect"
	"slices"
	"time"

	"github.com/invopop/jsonschema"
	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/giraugh/abduction-sub000/internal/core"
	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/gamelog"
	"github.com/giraugh/abduction-sub000/internal/hex"
)

const schemaBaseURL = "https://abduction.dev/schemas/"

// schemaTargets are the documents `abduction schema` can print.
var schemaTargets = map[string]struct {
	value       any
	title       string
	description string
}{
	"tick":   {&core.TickEvent{}, "Tick Event", "Frames sent on the tick stream"},
	"log":    {&gamelog.Log{}, "Game Log", "Narrative events sent on the log stream"},
	"config": {&Config{}, "Abduction Config", "Schema for abduction config.yaml files"},
}

// NewSchemaCmd creates the schema subcommand.
func NewSchemaCmd() *cobra.Command {
	names := slices.Sorted(maps.Keys(schemaTargets))
	return &cobra.Command{
		Use:       "schema [tick|log|config]",
		Short:     "Print the JSON Schema of a wire type or the config file",
		Args:      cobra.MatchAll(cobra.MaximumNArgs(1), cobra.OnlyValidArgs),
		ValidArgs: names,
		RunE: func(cmd *cobra.Command, args []string) error {
			name := "tick"
			if len(args) == 1 {
				name = args[0]
			}
			data, err := GenerateSchema(name)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}
}

// GenerateSchema reflects the named document into an indented JSON Schema.
func GenerateSchema(name string) ([]byte, error) {
	target, ok := schemaTargets[name]
	if !ok {
		return nil, oops.Code("SCHEMA_INVALID").With("schema", name).Errorf("unknown schema %q", name)
	}

	r := jsonschema.Reflector{
		DoNotReference:             true,
		RequiredFromJSONSchemaTags: true,
		Mapper:                     customSchema,
	}
	schema := r.Reflect(target.value)
	schema.ID = jsonschema.ID(schemaBaseURL + name + ".schema.json")
	schema.Title = target.title
	schema.Description = target.description

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return nil, oops.Code("SCHEMA_INVALID").With("schema", name).Wrap(err)
	}
	return data, nil
}

// customSchema describes types whose JSON form differs from their Go shape.
func customSchema(t reflect.Type) *jsonschema.Schema {
	switch t {
	case reflect.TypeFor[time.Duration]():
		return &jsonschema.Schema{
			Type:        "string",
			Pattern:     `^([0-9]+(\.[0-9]+)?(ns|us|µs|ms|s|m|h))+$`,
			Description: "Go duration, e.g. 500ms or 20m",
		}
	case reflect.TypeFor[hex.Hex]():
		return pair("integer", "Axial coordinate [q, r]")
	case reflect.TypeFor[entity.MotivatorData]():
		return pair("number", "[motivation, sensitivity]")
	case reflect.TypeFor[hex.Direction]():
		var names []any
		for _, d := range hex.AllMovements() {
			names = append(names, d.String())
		}
		return &jsonschema.Schema{Type: "string", Enum: names}
	case reflect.TypeFor[entity.MemeTable]():
		return &jsonschema.Schema{
			Type:  "array",
			Items: &jsonschema.Schema{Type: "string"},
		}
	case reflect.TypeFor[entity.Mutation]():
		set := jsonschema.NewProperties()
		set.Set("kind", &jsonschema.Schema{Const: "set_entity"})
		set.Set("entity", &jsonschema.Schema{Type: "object"})
		remove := jsonschema.NewProperties()
		remove.Set("kind", &jsonschema.Schema{Const: "remove_entity"})
		remove.Set("entity_id", &jsonschema.Schema{Type: "string"})
		return &jsonschema.Schema{
			OneOf: []*jsonschema.Schema{
				{Type: "object", Properties: set, Required: []string{"kind", "entity"}},
				{Type: "object", Properties: remove, Required: []string{"kind", "entity_id"}},
			},
		}
	}
	return nil
}

func pair(itemType, description string) *jsonschema.Schema {
	two := uint64(2)
	return &jsonschema.Schema{
		Type:        "array",
		Items:       &jsonschema.Schema{Type: itemType},
		MinItems:    &two,
		MaxItems:    &two,
		Description: description,
	}
}
