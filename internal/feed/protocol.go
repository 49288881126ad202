// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package feed

import (
	"encoding/json"

	"github.com/Masterminds/semver/v3"
	"github.com/samber/oops"

	"github.com/giraugh/abduction-sub000/internal/core"
)

// ProtocolVersion is the version of the frames the feed sends. Clients may
// name the version they speak with ?protocol=; any version with the same
// major number is accepted.
const ProtocolVersion = "1.0.0"

var (
	serverVersion = semver.MustParse(ProtocolVersion)
	compatible    = mustConstraint("^" + ProtocolVersion)
)

func mustConstraint(c string) *semver.Constraints {
	cons, err := semver.NewConstraint(c)
	if err != nil {
		panic("invalid protocol constraint " + c + ": " + err.Error())
	}
	return cons
}

// CheckProtocol accepts an empty version or one compatible with
// ProtocolVersion.
func CheckProtocol(version string) error {
	if version == "" {
		return nil
	}
	v, err := semver.NewVersion(version)
	if err != nil {
		return oops.Code("PROTOCOL_UNSUPPORTED").
			With("protocol", version).
			Wrapf(err, "invalid protocol version")
	}
	if v.Major() != serverVersion.Major() || !compatible.Check(v) {
		return oops.Code("PROTOCOL_UNSUPPORTED").
			With("protocol", version).
			With("server_protocol", ProtocolVersion).
			Errorf("protocol %s is not supported", v)
	}
	return nil
}

// Frame types besides the core event types.
const (
	FrameHello = "hello"
)

// Frame is one websocket message.
type Frame struct {
	Stream  string          `json:"stream"`
	Type    string          `json:"type"`
	ID      string          `json:"id,omitempty"`
	MatchID string          `json:"match_id,omitempty"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// Hello is the payload of the first frame on a connection.
type Hello struct {
	Protocol string `json:"protocol"`
	MatchID  string `json:"match_id,omitempty"`
	TickID   int    `json:"tick_id"`
}

func frameFor(ev core.Event) Frame {
	return Frame{
		Stream:  ev.Stream,
		Type:    string(ev.Type),
		ID:      ev.ID.String(),
		MatchID: ev.MatchID,
		Payload: ev.Payload,
	}
}
