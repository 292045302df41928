package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/mockchat/internal/proto"
)

// Smoke check against a running `mockchat serve`: connect, optionally switch
// room, post one message and wait for it to come back on the feed.
func main() {
	if err := run(); err != nil {
		log.Printf("ws_smoke: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "tester", "username to connect with")
	room := flag.String("room", "", "room to join before sending")
	text := flag.String("text", "hello from smoke test", "message text to send")
	timeout := flag.Duration("timeout", 5*time.Second, "total timeout for the run")
	flag.Parse()

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	send := func(typ string, data any) error {
		payload, err := json.Marshal(data)
		if err != nil {
			return fmt.Errorf("marshal %s: %w", typ, err)
		}
		if err := wsjson.Write(ctx, conn, proto.Inbound{Type: typ, Data: payload}); err != nil {
			return fmt.Errorf("send %s: %w", typ, err)
		}
		return nil
	}

	if err := send(proto.InboundTypeConnect, proto.ConnectData{User: *user}); err != nil {
		return err
	}
	if *room != "" {
		if err := send(proto.InboundTypeJoin, proto.JoinData{Room: *room}); err != nil {
			return err
		}
	}
	if err := send(proto.InboundTypeMsg, proto.MsgData{Text: *text}); err != nil {
		return err
	}

	for {
		var frame struct {
			Type  string          `json:"type"`
			Event string          `json:"event"`
			Data  json.RawMessage `json:"data"`
			Error *proto.Error    `json:"error"`
		}
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			return fmt.Errorf("read: %w", err)
		}

		fmt.Printf("Received outbound: type=%s", frame.Type)
		if frame.Event != "" {
			fmt.Printf(" event=%s", frame.Event)
		}
		fmt.Println()

		if frame.Error != nil {
			fmt.Printf("Error: %s (%s)\n", frame.Error.Msg, frame.Error.Code)
			continue
		}

		switch frame.Event {
		case proto.EventMessage:
			var evt proto.MessageData
			if err := json.Unmarshal(frame.Data, &evt); err != nil {
				return fmt.Errorf("unmarshal message: %w", err)
			}
			fmt.Printf("EventMessage: room=%s user=%s text=%q ts=%d\n", evt.Room, evt.User, evt.Text, evt.TS)
			if evt.User == *user && evt.Text == *text {
				return send(proto.InboundTypeDisconnect, struct{}{})
			}
		case proto.EventNotification:
			var note proto.NotificationData
			if err := json.Unmarshal(frame.Data, &note); err == nil {
				fmt.Printf("Notification: [%s] %s\n", note.Title, note.Description)
			}
		case proto.EventState:
			var state proto.StateData
			if err := json.Unmarshal(frame.Data, &state); err == nil {
				fmt.Printf("State: reason=%q room=%s connected=%t messages=%d\n",
					state.Reason, state.CurrentRoom, state.Connected, len(state.Messages))
			}
		}
	}
}
