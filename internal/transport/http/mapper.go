package http

import (
	"github.com/vovakirdan/lobbychat/internal/core"
	"github.com/vovakirdan/lobbychat/internal/proto"
	"github.com/vovakirdan/lobbychat/internal/store"
)

func outboundFromEvent(event *core.Event) proto.Outbound {
	switch event.Kind {
	case core.EventChat:
		return eventOutbound(proto.EventChat, messageFromCore(event.Message))
	case core.EventWhisper, core.EventReply:
		return eventOutbound(event.Kind.String(), proto.EventPrivate{
			From:     event.Message.From,
			To:       event.Message.To,
			Text:     event.Message.Text,
			TS:       event.Message.CreatedAt.Unix(),
			Mirrored: event.Mirrored,
		})
	case core.EventRoster:
		users := event.Users
		if users == nil {
			users = []string{}
		}
		return eventOutbound(proto.EventRoster, proto.EventRosterData{Users: users})
	case core.EventHistory:
		return eventOutbound(proto.EventHistory, proto.EventHistoryData{Messages: messagesFromStore(event.Messages)})
	case core.EventSystem:
		return eventOutbound(proto.EventSystem, proto.EventSystemData{
			Text:     event.Text,
			From:     event.From,
			Mirrored: event.Mirrored,
		})
	case core.EventForcedDisconnect:
		return eventOutbound(proto.EventForcedDisconnect, proto.EventForcedDisconnectData{Reason: event.Text})
	case core.EventBanToken:
		return eventOutbound(proto.EventBanToken, proto.EventBanTokenData{User: event.Target, Token: event.Token})
	case core.EventError:
		if event.Error == nil {
			return errorOutbound("unknown", "unknown error")
		}
		return errorOutbound(event.Error.Code, event.Error.Message)
	default:
		return proto.Outbound{Type: proto.OutboundTypeEvent}
	}
}

func eventOutbound(name string, data any) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeEvent, Event: name, Data: data}
}

func errorOutbound(code, msg string) proto.Outbound {
	return proto.Outbound{Type: proto.OutboundTypeError, Error: &proto.Error{Code: code, Msg: msg}}
}

func messageFromCore(msg core.Message) proto.EventMessage {
	return proto.EventMessage{
		ID:   msg.ID,
		User: msg.From,
		Text: msg.Text,
		TS:   msg.CreatedAt.Unix(),
	}
}

func messagesFromStore(msgs []*store.Message) []proto.EventMessage {
	out := make([]proto.EventMessage, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, proto.EventMessage{
			ID:   m.ID,
			User: m.Sender,
			Text: m.Body,
			TS:   m.CreatedAt.Unix(),
		})
	}
	return out
}
