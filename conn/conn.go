package conn

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/url"
	"sync"

	"github.com/gorilla/websocket"
	uuid "github.com/satori/go.uuid"
	"github.com/sirupsen/logrus"

	"github.com/makaohq/makao-client/events"
	"github.com/makaohq/makao-client/protocol"
)

var (
	ErrMissingIdentity = errors.New("player name, host and port must all be set")
	ErrNoReconnectID   = errors.New("no reconnect identifier stored")
)

// Lobby holds the optional lobby parameters for a fresh join. Parameters not
// applicable are omitted from the connection target entirely.
type Lobby struct {
	Name      string
	CreateNew bool
	Private   bool
}

// Manager owns the single transport channel to the game server. It builds
// the connection target from player identity and lobby parameters, maintains
// at most one live channel at a time, and is the only component allowed to
// write to it. Outbound payloads are never buffered: sending without an open
// channel is a warned no-op and callers must re-issue.
type Manager struct {
	bus    *events.Bus
	log    logrus.FieldLogger
	tokens TokenStore

	playerName string
	host       string
	port       string
	lobby      Lobby
	sessionID  string

	onOpen  func()
	onClose func(err error)
	onError func(err error)
	receive func(raw []byte)

	mu sync.Mutex
	ws *websocket.Conn
}

func NewManager(bus *events.Bus, tokens TokenStore, log logrus.FieldLogger) *Manager {
	// every connection log line carries this instance's session identifier
	sessionID := uuid.NewV4().String()
	m := &Manager{
		bus:       bus,
		log:       log.WithField("session", sessionID),
		tokens:    tokens,
		sessionID: sessionID,
	}
	m.subscribeCommands()
	return m
}

// SetIdentity records the local player identity used to build the target.
func (m *Manager) SetIdentity(playerName, host, port string) {
	m.playerName = playerName
	m.host = host
	m.port = port
}

// SetLobby records the lobby parameters for the next fresh join.
func (m *Manager) SetLobby(lobby Lobby) {
	m.lobby = lobby
}

// OnOpen installs the single opened-hook, replacing any previous one.
func (m *Manager) OnOpen(fn func()) { m.onOpen = fn }

// OnClose installs the single closed-hook, replacing any previous one.
func (m *Manager) OnClose(fn func(err error)) { m.onClose = fn }

// OnError installs the single error-hook, replacing any previous one.
func (m *Manager) OnError(fn func(err error)) { m.onError = fn }

// SetReceiver installs the sole consumer of inbound frames. Frames are
// delivered in arrival order.
func (m *Manager) SetReceiver(fn func(raw []byte)) { m.receive = fn }

// URL composes the connection target. Inapplicable parameters are omitted
// rather than sent empty.
func (m *Manager) URL(reconnect bool) (string, error) {
	if m.playerName == "" || m.host == "" || m.port == "" {
		return "", ErrMissingIdentity
	}

	query := url.Values{}
	query.Set("user", m.playerName)
	if reconnect {
		query.Set("reconnect", "true")
	} else {
		if m.lobby.Name != "" {
			query.Set("lobby", m.lobby.Name)
		}
		if m.lobby.CreateNew {
			query.Set("new", "true")
		}
		if m.lobby.Private {
			query.Set("private", "true")
		}
	}

	u := url.URL{
		Scheme:   "ws",
		Host:     net.JoinHostPort(m.host, m.port),
		Path:     "/game",
		RawQuery: query.Encode(),
	}
	return u.String(), nil
}

// Connect dials a fresh connection, replacing any live channel.
func (m *Manager) Connect(ctx context.Context) error {
	return m.dial(ctx, false)
}

// Reconnect dials using the persisted reconnect identifier. It fails fast
// when no identifier has been stored.
func (m *Manager) Reconnect(ctx context.Context) error {
	if _, ok := m.tokens.Get(ReconnectTokenKey); !ok {
		return ErrNoReconnectID
	}
	return m.dial(ctx, true)
}

func (m *Manager) dial(ctx context.Context, reconnect bool) error {
	target, err := m.URL(reconnect)
	if err != nil {
		return err
	}

	ws, _, err := websocket.DefaultDialer.DialContext(ctx, target, nil)
	if err != nil {
		if m.onError != nil {
			m.onError(err)
		}
		return fmt.Errorf("connecting to %s: %w", target, err)
	}

	m.mu.Lock()
	if m.ws != nil {
		// fresh dial replaces the prior channel; no pooling
		m.ws.Close()
	}
	m.ws = ws
	m.mu.Unlock()

	m.log.WithField("target", target).Info("connected")
	if m.onOpen != nil {
		m.onOpen()
	}

	go m.readPump(ws)
	return nil
}

// Send writes one payload to the live channel. With no open channel the
// payload is dropped with a warning; it is never queued for later delivery.
func (m *Manager) Send(payload []byte) {
	m.mu.Lock()
	ws := m.ws
	m.mu.Unlock()

	if ws == nil {
		m.log.Warn("send with no open channel, dropping payload")
		return
	}
	if err := ws.WriteMessage(websocket.TextMessage, payload); err != nil {
		m.log.WithError(err).Warn("send failed, dropping payload")
		if m.onError != nil {
			m.onError(err)
		}
	}
}

// Close shuts the live channel, if any.
func (m *Manager) Close() {
	m.mu.Lock()
	ws := m.ws
	m.ws = nil
	m.mu.Unlock()
	if ws != nil {
		ws.Close()
	}
}

// SessionID is this client instance's locally generated identifier.
func (m *Manager) SessionID() string {
	return m.sessionID
}

func (m *Manager) readPump(ws *websocket.Conn) {
	for {
		_, raw, err := ws.ReadMessage()
		if err != nil {
			m.mu.Lock()
			current := m.ws == ws
			if current {
				m.ws = nil
			}
			m.mu.Unlock()
			// a replaced channel dying is not a disconnect; only the live
			// channel's failure reaches the close hook
			if !current {
				return
			}
			m.log.WithError(err).Info("channel closed")
			if m.onClose != nil {
				m.onClose(err)
			}
			return
		}
		if m.receive != nil {
			m.receive(raw)
		}
	}
}

// subscribeCommands wires locally originated command events to the codec and
// the outbound channel. Encoding failures are logged and the command dropped.
func (m *Manager) subscribeCommands() {
	m.bus.Subscribe(events.CommandDraw, func(interface{}) {
		m.sendEncoded(protocol.EncodeDraw())
	})
	m.bus.Subscribe(events.CommandPass, func(interface{}) {
		m.sendEncoded(protocol.EncodePass())
	})
	m.bus.Subscribe(events.CommandReady, func(interface{}) {
		m.sendEncoded(protocol.EncodeControl(protocol.ControlReady))
	})
	m.bus.Subscribe(events.CommandUnready, func(interface{}) {
		m.sendEncoded(protocol.EncodeControl(protocol.ControlUnready))
	})
	m.bus.Subscribe(events.CommandRegisterNPC, func(interface{}) {
		m.sendEncoded(protocol.EncodeControl(protocol.ControlRegisterNPC))
	})
	m.bus.Subscribe(events.CommandPlayCard, func(payload interface{}) {
		p, ok := payload.(events.PlayCommandPayload)
		if !ok {
			m.log.WithField("payload", payload).Warn("dropping malformed play command")
			return
		}
		m.sendEncoded(protocol.EncodePlay(p.Suit, p.Rank, p.NextColor))
	})
	m.bus.Subscribe(events.CommandKick, func(payload interface{}) {
		p, ok := payload.(events.KickCommandPayload)
		if !ok {
			m.log.WithField("payload", payload).Warn("dropping malformed kick command")
			return
		}
		m.sendEncoded(protocol.EncodeKick(p.Username))
	})
	m.bus.Subscribe(events.CommandChat, func(payload interface{}) {
		p, ok := payload.(events.ChatCommandPayload)
		if !ok {
			m.log.WithField("payload", payload).Warn("dropping malformed chat command")
			return
		}
		m.sendEncoded(protocol.EncodeChat(p.Text))
	})

	// the server-issued reconnect identifier is persisted whenever the
	// local player's registration is confirmed
	m.bus.Subscribe(events.ActionRegisterPlayer, func(payload interface{}) {
		p, ok := payload.(events.RegisterPlayerPayload)
		if !ok || p.Username != m.playerName {
			return
		}
		if err := m.tokens.Put(ReconnectTokenKey, p.PlayerID); err != nil {
			m.log.WithError(err).Warn("could not persist reconnect identifier")
		}
	})
}

func (m *Manager) sendEncoded(payload []byte, err error) {
	if err != nil {
		m.log.WithError(err).Warn("dropping unencodable command")
		return
	}
	m.Send(payload)
}
