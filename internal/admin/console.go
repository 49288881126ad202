// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package admin

import (
	"bufio"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"

	"github.com/gobwas/glob"
	"github.com/samber/oops"

	"github.com/giraugh/abduction-sub000/internal/entity"
	"github.com/giraugh/abduction-sub000/internal/match"
	"github.com/giraugh/abduction-sub000/pkg/errutil"
)

// Runner is the part of the match runner the console controls.
type Runner interface {
	EndMatch()
	Status() match.Status
	Entities() []entity.Entity
}

const helpText = `commands:
  end [match]      end the current match after this tick
  status           show the running match
  list [pattern]   list entities whose name matches a glob pattern
  help             show this summary
`

// Console executes admin commands against a runner.
type Console struct {
	runner Runner
	out    io.Writer
}

// NewConsole creates a console writing its replies to out.
func NewConsole(runner Runner, out io.Writer) *Console {
	return &Console{runner: runner, out: out}
}

// Execute parses and runs one command line.
func (c *Console) Execute(line string) error {
	cmd, err := Parse(line)
	if err != nil {
		return err
	}
	slog.Info("admin command", "command", cmd.String())

	switch {
	case cmd.End != nil:
		c.runner.EndMatch()
		_, err = fmt.Fprintln(c.out, "ending match after the current tick")
	case cmd.Status != nil:
		err = c.status()
	case cmd.List != nil:
		err = c.list(cmd.List.Pattern)
	case cmd.Help != nil:
		_, err = io.WriteString(c.out, helpText)
	}
	return err
}

func (c *Console) status() error {
	st := c.runner.Status()
	if st.MatchID == "" {
		_, err := fmt.Fprintln(c.out, "no match running")
		return err
	}
	_, err := fmt.Fprintf(c.out, "match %s tick %d players %d entities %d ready %t\n",
		st.MatchID, st.TickID, st.Players, st.Entities, st.Ready)
	return err
}

func (c *Console) list(pattern string) error {
	if pattern == "" {
		pattern = "*"
	}
	g, err := glob.Compile(strings.ToLower(pattern))
	if err != nil {
		return oops.Code("ADMIN_PARSE_FAILED").With("pattern", pattern).Wrapf(err, "invalid pattern")
	}

	var matched []entity.Entity
	for _, e := range c.runner.Entities() {
		if g.Match(strings.ToLower(e.Name)) {
			matched = append(matched, e)
		}
	}
	slices.SortFunc(matched, func(a, b entity.Entity) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})

	w := bufio.NewWriter(c.out)
	for _, e := range matched {
		where := "banished"
		if e.Located() {
			where = e.MustHex().String()
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", e.ID, e.Name, where)
	}
	fmt.Fprintf(w, "%d matching\n", len(matched))
	return w.Flush()
}

// Run reads commands from in until it is exhausted or ctx is cancelled.
// Bad commands are reported and skipped.
func (c *Console) Run(ctx context.Context, in io.Reader) error {
	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return oops.With("operation", "read admin input").Wrap(err)
					}
				default:
				}
				return nil
			}
			if strings.TrimSpace(line) == "" {
				continue
			}
			if err := c.Execute(line); err != nil {
				errutil.LogErrorContext(ctx, "admin command failed", err)
				fmt.Fprintf(c.out, "error: %v\n", err)
			}
		}
	}
}
