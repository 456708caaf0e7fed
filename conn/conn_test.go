package conn

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"

	"github.com/makaohq/makao-client/events"
	utils "github.com/makaohq/makao-client/internal"
	"github.com/makaohq/makao-client/protocol"
)

func testManager(t *testing.T) (*Manager, *events.Bus, *MemoryTokenStore) {
	t.Helper()
	log := logrus.New()
	log.SetOutput(io.Discard)

	bus := events.NewBus(log)
	tokens := NewMemoryTokenStore()
	m := NewManager(bus, tokens, log)
	t.Cleanup(m.Close)
	return m, bus, tokens
}

func TestManagerURL(t *testing.T) {
	t.Run("a fresh join carries only the player name by default", func(t *testing.T) {
		m, _, _ := testManager(t)
		m.SetIdentity("dave", "example.com", "8000")

		target, err := m.URL(false)
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, target, "ws://example.com:8000/game?user=dave")
	})

	t.Run("lobby parameters appear only when set", func(t *testing.T) {
		m, _, _ := testManager(t)
		m.SetIdentity("dave", "example.com", "8000")
		m.SetLobby(Lobby{Name: "den", CreateNew: true, Private: true})

		target, err := m.URL(false)
		utils.AssertNoError(t, err)

		u, err := url.Parse(target)
		utils.AssertNoError(t, err)
		query := u.Query()
		utils.AssertEqual(t, query.Get("user"), "dave")
		utils.AssertEqual(t, query.Get("lobby"), "den")
		utils.AssertEqual(t, query.Get("new"), "true")
		utils.AssertEqual(t, query.Get("private"), "true")
		assert.False(t, query.Has("reconnect"))
	})

	t.Run("a reconnect replaces lobby parameters with the reconnect flag", func(t *testing.T) {
		m, _, _ := testManager(t)
		m.SetIdentity("dave", "example.com", "8000")
		m.SetLobby(Lobby{Name: "den"})

		target, err := m.URL(true)
		utils.AssertNoError(t, err)

		u, err := url.Parse(target)
		utils.AssertNoError(t, err)
		query := u.Query()
		utils.AssertEqual(t, query.Get("reconnect"), "true")
		assert.False(t, query.Has("lobby"))
	})

	t.Run("an incomplete identity fails fast", func(t *testing.T) {
		m, _, _ := testManager(t)
		m.SetIdentity("", "example.com", "8000")

		_, err := m.URL(false)
		assert.ErrorIs(t, err, ErrMissingIdentity)
	})
}

func TestManagerSend(t *testing.T) {
	t.Run("sending with no open channel drops the payload", func(t *testing.T) {
		m, _, _ := testManager(t)
		m.Send([]byte(`{"requestType":"DRAW"}`))
	})

	t.Run("commands issued before connecting are not delivered later", func(t *testing.T) {
		_, bus, _ := testManager(t)
		bus.Publish(events.CommandDraw, nil)

		received := make(chan []byte, 8)
		server, host, port := wsServer(t, received, nil)
		defer server.Close()

		m2, bus2, _ := testManager(t)
		m2.SetIdentity("dave", host, port)
		bus2.Publish(events.CommandDraw, nil)

		utils.AssertNoError(t, m2.Connect(context.Background()))

		bus2.Publish(events.CommandPass, nil)
		frame := waitFrame(t, received)
		assert.Contains(t, string(frame), "PASS")
	})
}

func TestManagerSessionID(t *testing.T) {
	t.Run("each manager gets its own identifier", func(t *testing.T) {
		m, _, _ := testManager(t)
		m2, _, _ := testManager(t)

		utils.AssertNotEmptyString(t, m.SessionID())
		assert.NotEqual(t, m.SessionID(), m2.SessionID())
	})

	t.Run("connection log lines carry the session identifier", func(t *testing.T) {
		log, hook := logtest.NewNullLogger()
		bus := events.NewBus(log)
		m := NewManager(bus, NewMemoryTokenStore(), log)
		t.Cleanup(m.Close)

		m.Send([]byte(`{"requestType":"MOVE","move":{"moveType":"DRAW"}}`))

		entry := hook.LastEntry()
		assert.NotNil(t, entry)
		utils.AssertEqual(t, entry.Data["session"], m.SessionID())
	})
}

func TestManagerReconnectIdentifier(t *testing.T) {
	t.Run("the local player's registration persists the identifier", func(t *testing.T) {
		m, bus, tokens := testManager(t)
		m.SetIdentity("dave", "example.com", "8000")

		bus.Publish(events.ActionRegisterPlayer, events.RegisterPlayerPayload{
			Username: "dave",
			PlayerID: "id-123",
		})

		got, ok := tokens.Get(ReconnectTokenKey)
		assert.True(t, ok)
		utils.AssertEqual(t, got, "id-123")
	})

	t.Run("other players' registrations are ignored", func(t *testing.T) {
		m, bus, tokens := testManager(t)
		m.SetIdentity("dave", "example.com", "8000")

		bus.Publish(events.ActionRegisterPlayer, events.RegisterPlayerPayload{
			Username: "mia",
			PlayerID: "id-456",
		})

		_, ok := tokens.Get(ReconnectTokenKey)
		assert.False(t, ok)
	})

	t.Run("reconnecting without a stored identifier fails fast", func(t *testing.T) {
		m, _, _ := testManager(t)
		m.SetIdentity("dave", "example.com", "8000")

		err := m.Reconnect(context.Background())
		assert.ErrorIs(t, err, ErrNoReconnectID)
	})
}

func TestManagerAgainstServer(t *testing.T) {
	t.Run("command events reach the server as encoded requests", func(t *testing.T) {
		received := make(chan []byte, 8)
		server, host, port := wsServer(t, received, nil)
		defer server.Close()

		m, bus, _ := testManager(t)
		m.SetIdentity("dave", host, port)

		opened := make(chan struct{}, 1)
		m.OnOpen(func() { opened <- struct{}{} })

		utils.AssertNoError(t, m.Connect(context.Background()))
		select {
		case <-opened:
		case <-time.After(time.Second):
			t.Fatal("open hook never fired")
		}

		bus.Publish(events.CommandDraw, nil)
		bus.Publish(events.CommandPlayCard, events.PlayCommandPayload{Suit: "H", Rank: "A", NextColor: "S"})

		var first protocol.Outbound
		utils.AssertNoError(t, json.Unmarshal(waitFrame(t, received), &first))
		utils.AssertEqual(t, first.RequestType, protocol.RequestMove)
		utils.AssertEqual(t, first.Move.MoveType, protocol.MoveDraw)

		var second protocol.Outbound
		utils.AssertNoError(t, json.Unmarshal(waitFrame(t, received), &second))
		utils.AssertEqual(t, second.Move.MoveType, protocol.MovePlay)
		utils.AssertEqual(t, second.Move.Card.Color, "HEARTS")
		utils.AssertEqual(t, second.Move.NextColor, "SPADES")
	})

	t.Run("inbound frames reach the receiver in arrival order", func(t *testing.T) {
		frames := []string{`{"one":1}`, `{"two":2}`, `{"three":3}`}
		server, host, port := wsServer(t, nil, frames)
		defer server.Close()

		m, _, _ := testManager(t)
		m.SetIdentity("dave", host, port)

		got := make(chan string, len(frames))
		m.SetReceiver(func(raw []byte) { got <- string(raw) })

		utils.AssertNoError(t, m.Connect(context.Background()))

		for _, want := range frames {
			select {
			case raw := <-got:
				utils.AssertEqual(t, raw, want)
			case <-time.After(time.Second):
				t.Fatalf("frame %q never arrived", want)
			}
		}
	})

	t.Run("replacing a live channel does not fire the close hook", func(t *testing.T) {
		server1, host1, port1 := wsServer(t, nil, nil)
		defer server1.Close()
		server2, host2, port2 := wsServer(t, nil, nil)
		defer server2.Close()

		m, _, _ := testManager(t)
		closed := make(chan error, 2)
		m.OnClose(func(err error) { closed <- err })

		m.SetIdentity("dave", host1, port1)
		utils.AssertNoError(t, m.Connect(context.Background()))

		// the re-dial closes the first channel underneath its read loop
		m.SetIdentity("dave", host2, port2)
		utils.AssertNoError(t, m.Connect(context.Background()))

		select {
		case <-closed:
			t.Fatal("close hook fired for the replaced channel")
		case <-time.After(300 * time.Millisecond):
		}

		server2.Close()
		select {
		case <-closed:
		case <-time.After(2 * time.Second):
			t.Fatal("close hook never fired for the live channel")
		}
	})

	t.Run("a server close fires the close hook once", func(t *testing.T) {
		server, host, port := wsServer(t, nil, []string{`{"bye":true}`})
		defer server.Close()

		m, _, _ := testManager(t)
		m.SetIdentity("dave", host, port)

		closed := make(chan error, 1)
		m.OnClose(func(err error) { closed <- err })

		utils.AssertNoError(t, m.Connect(context.Background()))
		server.Close()

		select {
		case <-closed:
		case <-time.After(2 * time.Second):
			t.Fatal("close hook never fired")
		}

		// the channel is gone; further sends are dropped, not queued
		m.Send([]byte(`{"requestType":"DRAW"}`))
	})
}

// wsTestServer wraps httptest.Server so Close also severs the upgraded
// websocket connections; httptest.Server.Close forgets hijacked conns and
// would otherwise leave them open.
type wsTestServer struct {
	*httptest.Server
	mu    sync.Mutex
	conns []*websocket.Conn
}

func (s *wsTestServer) track(ws *websocket.Conn) {
	s.mu.Lock()
	s.conns = append(s.conns, ws)
	s.mu.Unlock()
}

func (s *wsTestServer) Close() {
	s.mu.Lock()
	for _, ws := range s.conns {
		ws.Close()
	}
	s.conns = nil
	s.mu.Unlock()
	s.Server.Close()
}

// wsServer upgrades incoming connections, forwards received frames onto
// received (when non-nil) and writes the given frames to each client.
func wsServer(t *testing.T, received chan []byte, frames []string) (*wsTestServer, string, string) {
	t.Helper()
	upgrader := websocket.Upgrader{}

	server := &wsTestServer{}
	server.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ws, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		server.track(ws)
		for _, frame := range frames {
			if err := ws.WriteMessage(websocket.TextMessage, []byte(frame)); err != nil {
				return
			}
		}
		for {
			_, raw, err := ws.ReadMessage()
			if err != nil {
				return
			}
			if received != nil {
				received <- raw
			}
		}
	}))

	addr := strings.TrimPrefix(server.URL, "http://")
	host, port, ok := strings.Cut(addr, ":")
	if !ok {
		t.Fatalf("unexpected test server address %q", server.URL)
	}
	return server, host, port
}

func waitFrame(t *testing.T, received chan []byte) []byte {
	t.Helper()
	select {
	case raw := <-received:
		return raw
	case <-time.After(time.Second):
		t.Fatal("no frame received")
		return nil
	}
}
