// relayprobe connects to a relay server as a real client and prints every
// frame it receives. It can optionally send one message after logging in.
// Usage: go run ./cmd/relayprobe -url ws://localhost:3001/ws -identity alice
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/websocket"

	"github.com/jmorel/presence-relay/internal/protocol"
	"github.com/jmorel/presence-relay/internal/version"
)

func main() {
	url := flag.String("url", "ws://localhost:3001/ws", "relay websocket URL")
	identity := flag.String("identity", "probe", "identity to log in as")
	to := flag.String("to", "", "recipient identity for a one-shot message")
	message := flag.String("message", "", "message body to send after login")
	verbose := flag.Bool("verbose", false, "print full frame JSON")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))

	logger.Info("relayprobe", "version", version.Version, "url", *url)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("received shutdown signal")
		cancel()
	}()

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, *url, nil)
	if err != nil {
		logger.Error("dial failed", "url", *url, "error", err)
		os.Exit(1)
	}
	defer ws.Close()

	login, err := protocol.Encode(protocol.TypeLogin, protocol.LoginMsg{Identity: *identity})
	if err != nil {
		logger.Error("encode login", "error", err)
		os.Exit(1)
	}
	if err := ws.WriteMessage(websocket.TextMessage, login); err != nil {
		logger.Error("send login", "error", err)
		os.Exit(1)
	}
	logger.Info("logged in", "identity", *identity)

	if *to != "" {
		frame, err := protocol.Encode(protocol.TypeSendMessage, protocol.SendMessageMsg{
			To:      *to,
			Message: *message,
		})
		if err != nil {
			logger.Error("encode message", "error", err)
			os.Exit(1)
		}
		if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			logger.Error("send message", "error", err)
			os.Exit(1)
		}
		logger.Info("message sent", "to", *to)
	}

	// Unblock the read loop on shutdown.
	go func() {
		<-ctx.Done()
		ws.SetReadDeadline(time.Now())
		ws.Close()
	}()

	logger.Info("listening - press Ctrl+C to stop")

	for {
		_, data, err := ws.ReadMessage()
		if err != nil {
			if ctx.Err() != nil {
				logger.Info("probe stopped")
				return
			}
			logger.Error("read failed", "error", err)
			os.Exit(1)
		}

		env, err := protocol.Decode(data)
		if err != nil {
			logger.Warn("unparseable frame", "error", err, "data", string(data))
			continue
		}

		if *verbose {
			pretty, _ := json.MarshalIndent(json.RawMessage(data), "", "  ")
			fmt.Printf("[%s] %s\n", env.Type, pretty)
			continue
		}

		switch env.Type {
		case protocol.TypeUsers:
			var msg protocol.UsersMsg
			if err := json.Unmarshal(env.Msg, &msg); err != nil {
				logger.Warn("bad users frame", "error", err)
				continue
			}
			fmt.Printf("[USERS] online=%d %v\n", len(msg.Users), msg.Users)
		case protocol.TypeReceiveMessage:
			var msg struct {
				From      string `json:"from"`
				To        string `json:"to"`
				Body      string `json:"message"`
				Timestamp string `json:"timestamp"`
			}
			if err := json.Unmarshal(env.Msg, &msg); err != nil {
				logger.Warn("bad message frame", "error", err)
				continue
			}
			fmt.Printf("[MESSAGE] %s -> %s at %s: %s\n", msg.From, msg.To, msg.Timestamp, msg.Body)
		default:
			fmt.Printf("[%s] %s\n", env.Type, env.Msg)
		}
	}
}
