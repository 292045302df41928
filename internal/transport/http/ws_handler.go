package http

import (
	"context"
	"errors"
	"io"
	stdhttp "net/http"

	"github.com/benbjohnson/clock"
	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/rs/zerolog"

	"github.com/vovakirdan/mockchat/internal/metrics"
	"github.com/vovakirdan/mockchat/internal/proto"
	"github.com/vovakirdan/mockchat/internal/session"
	"github.com/vovakirdan/mockchat/internal/utils"
)

const wsUpdateBuffer = 64

// WSHandler upgrades HTTP connections into a view feed: every session update
// is pushed as a frame, inbound frames are executed as session commands.
type WSHandler struct {
	sess      *session.Session
	rateLimit int
	clock     clock.Clock
	log       *zerolog.Logger
}

// NewWSHandler builds a new WebSocket handler.
func NewWSHandler(sess *session.Session, rateLimit int, logger *zerolog.Logger) stdhttp.Handler {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	return &WSHandler{sess: sess, rateLimit: rateLimit, clock: clock.New(), log: logger}
}

func (h *WSHandler) ServeHTTP(w stdhttp.ResponseWriter, r *stdhttp.Request) {
	ctx := r.Context()

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true,
	})
	if err != nil {
		h.log.Error().Err(err).Msg("ws accept error")
		return
	}
	defer conn.Close(websocket.StatusInternalError, "internal error")

	clientID := utils.NewID("view")
	metrics.ViewClients.Inc()
	defer metrics.ViewClients.Dec()
	h.log.Debug().Str("client_id", clientID).Msg("view client attached")

	updates, stopWatch := h.sess.Watch(wsUpdateBuffer)
	defer stopWatch()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := wsjson.Write(ctx, conn, proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: proto.EventState,
		Data:  stateToProto("", h.sess.State()),
	}); err != nil {
		h.log.Warn().Err(err).Str("client_id", clientID).Msg("write initial state")
		return
	}

	limiter := newRateLimiter(h.rateLimit, h.clock)
	stopReset := make(chan struct{})
	limiter.startReset(stopReset)
	defer close(stopReset)

	errCh := make(chan error, 2)
	go func() {
		errCh <- h.readLoop(ctx, conn, clientID, limiter)
	}()
	go func() {
		errCh <- h.writeLoop(ctx, conn, clientID, updates)
	}()

	err = <-errCh
	cancel() // stop the other goroutine
	<-errCh

	status := websocket.StatusNormalClosure
	reason := "closing"
	if err != nil && !errors.Is(err, context.Canceled) {
		if errors.Is(err, io.EOF) {
			err = nil
		}
		if s := websocket.CloseStatus(err); s != -1 {
			status = s
		}
		if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway {
			err = nil
		}
		if err != nil {
			if status == websocket.StatusNormalClosure {
				status = websocket.StatusInternalError
			}
			reason = err.Error()
			h.log.Warn().Err(err).Str("client_id", clientID).Msg("ws connection closed with error")
		}
	}

	conn.Close(status, reason)
}

func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, clientID string, limiter *rateLimiter) error {
	for {
		var inbound proto.Inbound
		if err := wsjson.Read(ctx, conn, &inbound); err != nil {
			h.log.Debug().Err(err).Str("client_id", clientID).Msg("read ws inbound")
			return err
		}

		if !limiter.allow() {
			if err := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: &proto.Error{Code: "rate_limited", Msg: "too many messages"},
			}); err != nil {
				return err
			}
			continue
		}

		cmd, protoErr, err := inboundToCommand(inbound)
		if err != nil {
			h.log.Warn().Err(err).Str("client_id", clientID).Msg("failed to map inbound")
			return err
		}
		if protoErr != nil {
			if writeErr := wsjson.Write(ctx, conn, proto.Outbound{
				Type:  proto.OutboundTypeError,
				Error: protoErr,
			}); writeErr != nil {
				return writeErr
			}
			continue
		}

		if err := h.sess.Execute(*cmd); err != nil {
			h.log.Debug().Err(err).Str("client_id", clientID).Str("type", inbound.Type).Msg("command rejected")
			if writeErr := wsjson.Write(ctx, conn, errorFrame(err)); writeErr != nil {
				return writeErr
			}
		}
	}
}

func (h *WSHandler) writeLoop(ctx context.Context, conn *websocket.Conn, clientID string, updates <-chan session.Update) error {
	for {
		select {
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			if err := wsjson.Write(ctx, conn, outboundFromUpdate(u)); err != nil {
				h.log.Error().Err(err).Str("client_id", clientID).Msg("write ws update")
				return err
			}
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}
