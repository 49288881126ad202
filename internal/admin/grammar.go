// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

// Package admin implements the operator console: a small command language
// read line by line from stdin and applied to the running match.
package admin

import (
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
	"github.com/samber/oops"
)

var commandLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "String", Pattern: `"[^"]*"`},
	{Name: "Word", Pattern: `[^\s"]+`},
	{Name: "whitespace", Pattern: `\s+`},
})

// Command is one console line.
//
// Grammar: "end" [ "match" ] | "status" | "list" [ pattern ] | "help"
type Command struct {
	End    *EndCommand    `parser:"  @@"`
	Status *StatusCommand `parser:"| @@"`
	List   *ListCommand   `parser:"| @@"`
	Help   *HelpCommand   `parser:"| @@"`
}

// EndCommand forces the current match to end after the running tick.
type EndCommand struct {
	Verb  string `parser:"@'end'"`
	Match bool   `parser:"@'match'?"`
}

// StatusCommand prints the runner status.
type StatusCommand struct {
	Verb string `parser:"@'status'"`
}

// ListCommand prints entities whose name matches a glob pattern.
type ListCommand struct {
	Verb    string `parser:"@'list'"`
	Pattern string `parser:"@(String | Word)?"`
}

// HelpCommand prints the command summary.
type HelpCommand struct {
	Verb string `parser:"@('help' | '?')"`
}

var parser = participle.MustBuild[Command](
	participle.Lexer(commandLexer),
	participle.Unquote("String"),
	participle.CaseInsensitive("Word"),
)

// Parse parses one console line.
func Parse(line string) (*Command, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil, oops.Code("ADMIN_PARSE_FAILED").Errorf("empty command")
	}
	cmd, err := parser.ParseString("", line)
	if err != nil {
		return nil, oops.Code("ADMIN_PARSE_FAILED").With("line", line).Wrapf(err, "parsing command")
	}
	return cmd, nil
}

// String renders the command in its canonical form.
func (c *Command) String() string {
	switch {
	case c.End != nil:
		return "end match"
	case c.Status != nil:
		return "status"
	case c.List != nil:
		if c.List.Pattern == "" {
			return "list"
		}
		return fmt.Sprintf("list %q", c.List.Pattern)
	case c.Help != nil:
		return "help"
	}
	return ""
}
