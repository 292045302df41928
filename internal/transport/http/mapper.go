package http

import (
	"encoding/json"
	"errors"

	"github.com/samber/lo"

	"github.com/vovakirdan/mockchat/internal/core"
	"github.com/vovakirdan/mockchat/internal/proto"
	"github.com/vovakirdan/mockchat/internal/session"
)

func inboundToCommand(inbound proto.Inbound) (*session.Command, *proto.Error, error) {
	switch inbound.Type {
	case proto.InboundTypeConnect:
		var connect proto.ConnectData
		if err := json.Unmarshal(inbound.Data, &connect); err != nil {
			return nil, nil, err
		}
		// blank names are left to the session so the view gets its notification
		return &session.Command{Kind: session.CommandConnect, Arg: connect.User}, nil, nil
	case proto.InboundTypeDisconnect:
		return &session.Command{Kind: session.CommandDisconnect}, nil, nil
	case proto.InboundTypeJoin:
		var join proto.JoinData
		if err := json.Unmarshal(inbound.Data, &join); err != nil {
			return nil, nil, err
		}
		if join.Room == "" {
			return nil, &proto.Error{Code: core.ErrCodeBadRequest, Msg: "room is required"}, nil
		}
		return &session.Command{Kind: session.CommandJoinRoom, Arg: join.Room}, nil, nil
	case proto.InboundTypeMsg:
		var msg proto.MsgData
		if err := json.Unmarshal(inbound.Data, &msg); err != nil {
			return nil, nil, err
		}
		return &session.Command{Kind: session.CommandSendMessage, Arg: msg.Text}, nil, nil
	default:
		return nil, &proto.Error{Code: "invalid_message", Msg: "unknown message type"}, nil
	}
}

func outboundFromUpdate(u session.Update) proto.Outbound {
	switch u.Reason {
	case session.ReasonNotification:
		if u.Notification == nil {
			return proto.Outbound{Type: proto.OutboundTypeEvent, Event: proto.EventNotification}
		}
		return proto.Outbound{
			Type:  proto.OutboundTypeEvent,
			Event: proto.EventNotification,
			Data:  notificationToProto(*u.Notification),
		}
	case session.ReasonMessage:
		if u.Message != nil {
			return proto.Outbound{
				Type:  proto.OutboundTypeEvent,
				Event: proto.EventMessage,
				Data:  messageToProto(*u.Message),
			}
		}
	}
	return proto.Outbound{
		Type:  proto.OutboundTypeEvent,
		Event: proto.EventState,
		Data:  stateToProto(string(u.Reason), u.State),
	}
}

func errorFrame(err error) proto.Outbound {
	code := errorCode(err)
	if code == "" {
		code = "internal"
	}
	return proto.Outbound{
		Type:  proto.OutboundTypeError,
		Error: &proto.Error{Code: code, Msg: err.Error()},
	}
}

func stateToProto(reason string, st session.State) proto.StateData {
	out := proto.StateData{
		Reason:      reason,
		Messages:    messagesToProto(st.Messages),
		Users:       usersToProto(st.Users),
		Rooms:       st.Rooms,
		CurrentRoom: st.CurrentRoom,
		Connected:   st.Connected,
	}
	if out.Rooms == nil {
		out.Rooms = []string{}
	}
	if st.CurrentUser != nil {
		u := userToProto(*st.CurrentUser)
		out.CurrentUser = &u
	}
	return out
}

func messageToProto(m core.Message) proto.MessageData {
	return proto.MessageData{
		ID:   m.ID,
		Room: m.Room,
		User: m.Username,
		Text: m.Text,
		TS:   m.Timestamp,
	}
}

func messagesToProto(msgs []core.Message) []proto.MessageData {
	out := lo.Map(msgs, func(m core.Message, _ int) proto.MessageData {
		return messageToProto(m)
	})
	if out == nil {
		return []proto.MessageData{}
	}
	return out
}

func userToProto(u core.User) proto.UserData {
	return proto.UserData{ID: u.ID, Username: u.Username}
}

func usersToProto(users []core.User) []proto.UserData {
	out := lo.Map(users, func(u core.User, _ int) proto.UserData {
		return userToProto(u)
	})
	if out == nil {
		return []proto.UserData{}
	}
	return out
}

func notificationToProto(n session.Notification) proto.NotificationData {
	return proto.NotificationData{
		Title:       n.Title,
		Description: n.Description,
		Variant:     string(n.Variant),
	}
}

// errorCode maps domain errors, wrapped or bare sentinels, to their wire code.
func errorCode(err error) string {
	if code := core.ErrorCode(err); code != "" {
		return code
	}
	switch {
	case errors.Is(err, core.ErrInvalidUsername):
		return core.ErrCodeInvalidUsername
	case errors.Is(err, core.ErrAlreadyConnected):
		return core.ErrCodeAlreadyConnected
	case errors.Is(err, core.ErrNotConnected):
		return core.ErrCodeNotConnected
	case errors.Is(err, core.ErrRoomNotFound):
		return core.ErrCodeRoomNotFound
	case errors.Is(err, core.ErrBadRequest):
		return core.ErrCodeBadRequest
	default:
		return ""
	}
}
