// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/samber/oops"
	"github.com/spf13/cobra"

	"github.com/giraugh/abduction-sub000/internal/match"
)

// ServerStatus is what `abduction status` reports.
type ServerStatus struct {
	Reachable bool          `json:"reachable"`
	Config    *match.Config `json:"config,omitempty"`
	Status    *match.Status `json:"status,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// statusConfig holds configuration for the status command.
type statusConfig struct {
	feedURL    string
	jsonOutput bool
	timeout    time.Duration
}

// NewStatusCmd creates the status subcommand.
func NewStatusCmd() *cobra.Command {
	cfg := &statusConfig{}

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the match running on a server",
		Long:  `Query a running server's feed for the current match and print it.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runStatus(cmd, cfg)
		},
	}

	cmd.Flags().StringVar(&cfg.feedURL, "feed-url", "http://127.0.0.1:8080", "base URL of the server's feed")
	cmd.Flags().BoolVar(&cfg.jsonOutput, "json", false, "output status as JSON")
	cmd.Flags().DurationVar(&cfg.timeout, "timeout", 2*time.Second, "request timeout")

	return cmd
}

func runStatus(cmd *cobra.Command, cfg *statusConfig) error {
	st := queryStatus(&http.Client{Timeout: cfg.timeout}, cfg.feedURL)

	if cfg.jsonOutput {
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return oops.Wrapf(err, "marshal status")
		}
		cmd.Println(string(data))
	} else {
		cmd.Print(formatStatusTable(st))
	}

	if !st.Reachable {
		return oops.Code("SERVER_UNREACHABLE").With("feed_url", cfg.feedURL).Errorf("%s", st.Error)
	}
	return nil
}

// queryStatus reads /api/match from the feed.
func queryStatus(client *http.Client, feedURL string) ServerStatus {
	resp, err := client.Get(strings.TrimSuffix(feedURL, "/") + "/api/match")
	if err != nil {
		return ServerStatus{Error: fmt.Sprintf("failed to connect: %v", err)}
	}
	defer func() { _ = resp.Body.Close() }()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return ServerStatus{Reachable: true}
	default:
		return ServerStatus{Error: fmt.Sprintf("unexpected status %s", resp.Status)}
	}

	var body struct {
		Config match.Config `json:"config"`
		Status match.Status `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return ServerStatus{Error: fmt.Sprintf("failed to decode response: %v", err)}
	}
	return ServerStatus{Reachable: true, Config: &body.Config, Status: &body.Status}
}

// formatStatusTable formats the status as a human-readable table.
func formatStatusTable(st ServerStatus) string {
	var buf strings.Builder
	w := tabwriter.NewWriter(&buf, 0, 0, 2, ' ', 0)

	_, _ = fmt.Fprintln(w, "MATCH\tTICK\tPLAYERS\tENTITIES\tRADIUS\tSTATE")
	switch {
	case !st.Reachable:
		_, _ = fmt.Fprintf(w, "-\t-\t-\t-\t-\tunreachable: %s\n", st.Error)
	case st.Status == nil:
		_, _ = fmt.Fprintln(w, "-\t-\t-\t-\t-\tbetween matches")
	default:
		state := "running"
		switch {
		case !st.Status.Running:
			state = "complete"
		case !st.Status.Ready:
			state = "degraded"
		}
		_, _ = fmt.Fprintf(w, "%s\t%d\t%d/%d\t%d\t%d\t%s\n",
			st.Config.MatchID, st.Status.TickID, st.Status.Players, st.Config.PlayerCount,
			st.Status.Entities, st.Config.WorldRadius, state)
	}

	_ = w.Flush()
	return buf.String()
}
