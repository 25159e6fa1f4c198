package transport

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"

	"github.com/AHARH1ST777/wordweave/internal/protocol"
)

func newTestServer(t *testing.T, handler func(conn *websocket.Conn)) *httptest.Server {
	t.Helper()
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()
		handler(conn)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func receiveMessage(t *testing.T, client *Client) protocol.Message {
	t.Helper()
	select {
	case msg, ok := <-client.Messages():
		if !ok {
			t.Fatalf("messages channel closed early")
		}
		return msg
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for message")
		return nil
	}
}

func TestDialReceivesDecodedMessages(t *testing.T) {
	frames := []string{
		`{"type":"game_started","game_id":"g1","mode":"solo"}`,
		`{"type":"matchmaking_stats","queue":5}`,
		`not json at all`,
		`{"type":"opponent_guess","attempts":2,"last_word":"река"}`,
	}
	srv := newTestServer(t, func(conn *websocket.Conn) {
		for _, frame := range frames {
			if err := conn.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		// Keep the connection open until the client is done.
		_, _, _ = conn.ReadMessage()
	})

	client, err := Dial(context.Background(), srv.URL, "player_a1", zerolog.Nop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	first := receiveMessage(t, client)
	if first.Type() != protocol.MsgGameStarted {
		t.Fatalf("expected game_started, got %s", first.Type())
	}
	// Unknown tag and malformed frame are skipped, not delivered.
	second := receiveMessage(t, client)
	if second.Type() != protocol.MsgOpponentGuess {
		t.Fatalf("expected opponent_guess, got %s", second.Type())
	}
}

func TestDialEmbedsClientIDInPath(t *testing.T) {
	gotPath := make(chan string, 1)
	upgrader := websocket.Upgrader{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath <- r.URL.Path
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_, _, _ = conn.ReadMessage()
	}))
	t.Cleanup(srv.Close)

	client, err := Dial(context.Background(), srv.URL, "player_a1", zerolog.Nop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})
	if path := <-gotPath; path != "/ws/player_a1" {
		t.Fatalf("expected /ws/player_a1, got %s", path)
	}
}

func TestSendWritesFrame(t *testing.T) {
	got := make(chan []byte, 1)
	srv := newTestServer(t, func(conn *websocket.Conn) {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		got <- data
	})

	client, err := Dial(context.Background(), srv.URL, "player_a1", zerolog.Nop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() {
		_ = client.Close()
	})

	if err := client.Send(protocol.Guess("g1", "кошка")); err != nil {
		t.Fatalf("send: %v", err)
	}
	select {
	case data := <-got:
		want := `{"action":"guess","game_id":"g1","word":"кошка"}`
		if string(data) != want {
			t.Fatalf("expected %s, got %s", want, data)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for frame")
	}
}

func TestSendAfterCloseIsDropped(t *testing.T) {
	srv := newTestServer(t, func(conn *websocket.Conn) {
		_, _, _ = conn.ReadMessage()
	})
	client, err := Dial(context.Background(), srv.URL, "player_a1", zerolog.Nop())
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	if err := client.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if err := client.Send(protocol.StartSolo()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	// Close is idempotent.
	if err := client.Close(); err != nil {
		t.Fatalf("second close: %v", err)
	}
}

func TestDisconnectedClient(t *testing.T) {
	client := NewDisconnected(zerolog.Nop())
	if err := client.Send(protocol.StartSolo()); !errors.Is(err, ErrClosed) {
		t.Fatalf("expected ErrClosed, got %v", err)
	}
	select {
	case <-client.Messages():
		t.Fatalf("disconnected client must never deliver messages")
	default:
	}
}

func TestDialRejectsBadScheme(t *testing.T) {
	if _, err := Dial(context.Background(), "ftp://example.com", "player_a1", zerolog.Nop()); err == nil {
		t.Fatalf("expected error for unsupported scheme")
	}
}
