// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Abduction Contributors

package feed

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/giraugh/abduction-sub000/internal/core"
)

// Websocket timing.
const (
	writeWait  = 5 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 9 / 10
)

// handleWS streams tick events and game logs to one viewer. Viewers only
// listen; anything they send is read and discarded.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if err := CheckProtocol(r.URL.Query().Get("protocol")); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	select {
	case <-s.closing:
		writeError(w, http.StatusServiceUnavailable, "shutting down")
		return
	default:
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Debug("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}
	s.conns.Add(1)
	defer s.conns.Done()
	defer conn.Close()

	ViewersGauge.Inc()
	defer ViewersGauge.Dec()

	b := s.publisher.Broadcaster()
	ticks := b.Subscribe(core.StreamTick)
	defer b.Unsubscribe(core.StreamTick, ticks)
	logs := b.Subscribe(core.StreamLog)
	defer b.Unsubscribe(core.StreamLog, logs)

	st := s.source.Status()
	hello, err := json.Marshal(Hello{Protocol: ProtocolVersion, MatchID: st.MatchID, TickID: st.TickID})
	if err != nil {
		return
	}
	if err := writeFrame(conn, Frame{Stream: FrameHello, Type: FrameHello, Payload: hello}); err != nil {
		return
	}

	readerDone := make(chan struct{})
	go func() {
		defer close(readerDone)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	for {
		var ev core.Event
		select {
		case <-readerDone:
			return
		case <-s.closing:
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, "server stopping"),
				time.Now().Add(time.Second))
			conn.Close()
			<-readerDone
			return
		case <-ping.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				conn.Close()
				<-readerDone
				return
			}
			continue
		case ev = <-ticks:
		case ev = <-logs:
		}

		if err := writeFrame(conn, frameFor(ev)); err != nil {
			slog.Debug("websocket write failed", "remote", r.RemoteAddr, "error", err)
			conn.Close()
			<-readerDone
			return
		}
	}
}

func writeFrame(conn *websocket.Conn, f Frame) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(f)
}
