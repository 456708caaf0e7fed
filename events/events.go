package events

import "time"

// Event names a channel on the bus. The set below is closed: components
// publish and subscribe with these constants only.
type Event string

// Actions decoded from server messages.
const (
	ActionPlayers        Event = "Action:PLAYERS"
	ActionRegisterPlayer Event = "Action:REGISTER_PLAYER"
	ActionStartGame      Event = "Action:START_GAME"
	ActionStartPile      Event = "Action:START_PILE"
	ActionDraw           Event = "Action:DRAW"
	ActionPlayCard       Event = "Action:PLAY_CARD"
	ActionPlayerShift    Event = "Action:PLAYER_SHIFT"
	ActionHiddenDraw     Event = "Action:HIDDEN_DRAW"
	ActionPlayerRank     Event = "Action:PLAYER_RANK"
	ActionWin            Event = "Action:WIN"
	ActionLose           Event = "Action:LOSE"
	ActionEndGame        Event = "Action:END_GAME"
	ActionRemovePlayer   Event = "Action:REMOVE_PLAYER"
	ActionReady          Event = "Action:READY"
	ActionUnready        Event = "Action:UNREADY"
	ActionDestroy        Event = "Action:DESTROY"
	ActionDisqualified   Event = "Action:DISQUALIFIED"
	ActionPass           Event = "Action:PASS"
)

// Server messages outside the action stream.
const (
	ServerPlayerReady Event = "ServerMessage:PLAYER_READY"
	ServerChatMessage Event = "ServerMessage:CHAT_MESSAGE"
	ServerError       Event = "Server:ERROR"
)

// Commands originated by the local UI, consumed by the connection manager.
const (
	CommandDraw        Event = "Command:DRAW"
	CommandPlayCard    Event = "Command:PLAY_CARD"
	CommandPass        Event = "Command:PASS"
	CommandReady       Event = "Command:READY"
	CommandUnready     Event = "Command:UNREADY"
	CommandRegisterNPC Event = "Command:REGISTER_NPC"
	CommandKick        Event = "Command:KICK"
	CommandChat        Event = "Command:CHAT"
)

// Derived events published by the game state machine for renderers.
const (
	GameCardSpawned Event = "Game:CARD_SPAWNED"
	GameHiddenCard  Event = "Game:HIDDEN_CARD"
	GameTurnTick    Event = "Game:TURN_TICK"
	GameTurnExpired Event = "Game:TURN_EXPIRED"
	GameRestart     Event = "Game:RESTART"
)

// Events published by rendering collaborators back to the core.
const (
	RenderCardLanded Event = "Render:CARD_LANDED"
)

type PlayersPayload struct {
	PlayerNames []string
}

type RegisterPlayerPayload struct {
	Username string
	PlayerID string
}

type CardPayload struct {
	Suit string
	Rank string
}

type PlayCardPayload struct {
	PlayerName string
	Suit       string
	Rank       string
	NextColor  string
}

type ShiftPayload struct {
	PlayerName string
	ExpireAt   time.Time
}

type HiddenDrawPayload struct {
	PlayerName string
	Count      int
}

type HiddenCardPayload struct {
	PlayerName string
	Index      int
}

type RankPayload struct {
	PlayerName string
	Rank       int
}

type EndPayload struct {
	Scores map[string]int
}

type PlayerPayload struct {
	PlayerName string
}

type DestroyPayload struct {
	Reason string
}

type ChatPayload struct {
	Username  string
	Message   string
	Timestamp time.Time
}

type ErrorPayload struct {
	Message string
}

type TurnTickPayload struct {
	PlayerName string
	Remaining  time.Duration
}

type PlayCommandPayload struct {
	Suit      string
	Rank      string
	NextColor string
}

type KickCommandPayload struct {
	Username string
}

type ChatCommandPayload struct {
	Text string
}
