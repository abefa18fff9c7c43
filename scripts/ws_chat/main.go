package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"

	"github.com/vovakirdan/lobbychat/internal/proto"
)

// inbound mirrors proto.Outbound with undecoded data.
type inbound struct {
	Type  string          `json:"type"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
	Error *proto.Error    `json:"error"`
}

func main() {
	if err := run(); err != nil {
		log.Printf("ws_chat: %v", err)
		os.Exit(1)
	}
}

func run() error {
	addr := flag.String("addr", "ws://localhost:8080/ws", "WebSocket address")
	user := flag.String("user", "cli-user", "username")
	token := flag.String("token", "", "JWT from /api/login (required when the server has a jwt_secret)")
	flag.Parse()

	baseCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithCancel(baseCtx)
	defer cancel()

	conn, _, err := websocket.Dial(ctx, *addr, nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}
	defer conn.CloseNow()

	helloPayload, err := json.Marshal(proto.HelloData{User: *user, Token: *token, Protocol: proto.ProtocolVersion})
	if err != nil {
		return fmt.Errorf("marshal hello: %w", err)
	}
	if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeHello, Data: helloPayload}); err != nil {
		return fmt.Errorf("send hello: %w", err)
	}

	fmt.Printf("Connected to %s as %s\n", *addr, *user)
	fmt.Println("Type messages and press Enter to send. /whisper <user> <text>, /reply <text>. Ctrl+C to exit.")

	go func() {
		defer cancel()
		readLoop(ctx, conn)
	}()

	writeLoop(ctx, conn)

	_ = conn.Close(websocket.StatusNormalClosure, "bye")
	return nil
}

func readLoop(ctx context.Context, conn *websocket.Conn) {
	for {
		var out inbound
		if err := wsjson.Read(ctx, conn, &out); err != nil {
			// Treat expected shutdowns quietly.
			if errors.Is(err, context.Canceled) {
				return
			}
			switch websocket.CloseStatus(err) {
			case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				return
			case websocket.StatusPolicyViolation:
				fmt.Println("*** disconnected by server")
				return
			}
			log.Printf("read error: %v", err)
			return
		}

		if out.Type == proto.OutboundTypeError && out.Error != nil {
			fmt.Printf("!!! %s: %s\n", out.Error.Code, out.Error.Msg)
			continue
		}
		if err := render(out); err != nil {
			log.Printf("decode %s: %v", out.Event, err)
		}
	}
}

func render(out inbound) error {
	switch out.Event {
	case proto.EventChat:
		var evt proto.EventMessage
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			return err
		}
		printMessage(evt)
	case proto.EventHistory:
		var evt proto.EventHistoryData
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			return err
		}
		for _, m := range evt.Messages {
			printMessage(m)
		}
	case proto.EventRoster:
		var evt proto.EventRosterData
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			return err
		}
		fmt.Printf("*** online: %s\n", strings.Join(evt.Users, ", "))
	case proto.EventWhisper, proto.EventReply:
		var evt proto.EventPrivate
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			return err
		}
		prefix := ""
		if evt.Mirrored {
			prefix = "(mirror) "
		}
		fmt.Printf("%s[%s -> %s] %s\n", prefix, evt.From, evt.To, evt.Text)
	case proto.EventSystem:
		var evt proto.EventSystemData
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			return err
		}
		if evt.From != "" {
			fmt.Printf("*** %s: %s\n", evt.From, evt.Text)
		} else {
			fmt.Printf("*** %s\n", evt.Text)
		}
	case proto.EventForcedDisconnect:
		var evt proto.EventForcedDisconnectData
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			return err
		}
		fmt.Printf("*** disconnected: %s\n", evt.Reason)
	case proto.EventBanToken:
		var evt proto.EventBanTokenData
		if err := json.Unmarshal(out.Data, &evt); err != nil {
			return err
		}
		fmt.Printf("*** ban token for %s: %s\n", evt.User, evt.Token)
	default:
		fmt.Printf("event=%s data=%s\n", out.Event, out.Data)
	}
	return nil
}

func printMessage(m proto.EventMessage) {
	ts := time.Unix(m.TS, 0).Format("15:04:05")
	fmt.Printf("%s %s: %s\n", ts, m.User, m.Text)
}

func writeLoop(ctx context.Context, conn *websocket.Conn) {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case line, ok := <-lines:
			if !ok {
				return
			}
			text := strings.TrimSpace(line)
			if text == "" {
				continue
			}

			payload, err := json.Marshal(proto.MsgData{Text: text})
			if err != nil {
				log.Printf("marshal msg: %v", err)
				return
			}
			if err := wsjson.Write(ctx, conn, proto.Inbound{Type: proto.InboundTypeMsg, Data: payload}); err != nil {
				log.Printf("send error: %v", err)
				return
			}
		}
	}
}
