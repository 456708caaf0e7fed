package router

import (
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/makaohq/makao-client/events"
	"github.com/makaohq/makao-client/protocol"
)

// Phase tracks where the session is in its lifecycle. START_PILE, DRAW and
// PLAY_CARD may only be routed once START_GAME has been seen.
type Phase int

const (
	AwaitingStart Phase = iota
	InGame
	Terminated
)

var phaseNames = []string{"AwaitingStart", "InGame", "Terminated"}

func (p Phase) String() string {
	if p < AwaitingStart || p > Terminated {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

var (
	ErrMissingField   = errors.New("required field missing")
	ErrGameNotStarted = errors.New("game has not started")
)

// Router validates decoded server messages and publishes exactly one bus
// event per successfully routed action. Faulty messages are logged and
// dropped; routing never stops the stream.
type Router struct {
	bus   *events.Bus
	log   logrus.FieldLogger
	phase Phase
}

func New(bus *events.Bus, log logrus.FieldLogger) *Router {
	return &Router{bus: bus, log: log}
}

// Phase reports the session phase, for observability only.
func (r *Router) Phase() Phase {
	return r.phase
}

// HandleRaw decodes and routes one wire frame. All failures are local: the
// frame is discarded and the next one processes normally.
func (r *Router) HandleRaw(raw []byte) {
	in, err := protocol.DecodeInbound(raw)
	if err != nil {
		r.log.WithError(err).Warn("discarding undecodable message")
		return
	}
	r.Route(in)
}

// Route dispatches one decoded envelope.
func (r *Router) Route(in *protocol.Inbound) {
	switch in.MessageType {
	case protocol.MessageAction:
		if err := r.routeAction(in.Action, in.Error); err != nil {
			r.log.WithError(err).WithField("type", in.Action.Type).Warn("discarding action")
		}
	case protocol.MessageServer:
		if err := r.routeBody(in.Body); err != nil {
			r.log.WithError(err).WithField("bodyType", in.Body.BodyType).Warn("discarding server message")
		}
	case protocol.MessageError:
		r.bus.Publish(events.ServerError, events.ErrorPayload{Message: in.Error})
	}
}

func (r *Router) routeAction(a *protocol.Action, errMsg string) error {
	t, err := protocol.ParseActionType(a.Type)
	if err != nil {
		return err
	}

	if gated(t) && r.phase == AwaitingStart {
		return fmt.Errorf("%w: %s", ErrGameNotStarted, t)
	}

	switch t {
	case protocol.Players:
		if a.Players == nil {
			return missing(t, "players")
		}
		r.bus.Publish(events.ActionPlayers, events.PlayersPayload{PlayerNames: a.Players})

	case protocol.RegisterPlayer:
		if err := requirePlayerDto(t, a); err != nil {
			return err
		}
		if a.PlayerDto.PlayerID == "" {
			return missing(t, "playerDto.playerId")
		}
		r.bus.Publish(events.ActionRegisterPlayer, events.RegisterPlayerPayload{
			Username: a.PlayerDto.Username,
			PlayerID: a.PlayerDto.PlayerID,
		})

	case protocol.StartGame:
		if a.Players == nil {
			return missing(t, "players")
		}
		r.phase = InGame
		r.bus.Publish(events.ActionStartGame, events.PlayersPayload{PlayerNames: a.Players})

	case protocol.StartPile:
		card, err := requireCard(t, a)
		if err != nil {
			return err
		}
		r.bus.Publish(events.ActionStartPile, card)

	case protocol.Draw:
		card, err := requireCard(t, a)
		if err != nil {
			return err
		}
		r.bus.Publish(events.ActionDraw, card)

	case protocol.PlayCard:
		if err := requirePlayerDto(t, a); err != nil {
			return err
		}
		card, err := requireCard(t, a)
		if err != nil {
			return err
		}
		nextColor := ""
		if a.NextColor != "" {
			nextColor, err = protocol.ShortSuit(a.NextColor)
			if err != nil {
				return fmt.Errorf("%s: %w", t, err)
			}
		}
		r.bus.Publish(events.ActionPlayCard, events.PlayCardPayload{
			PlayerName: a.PlayerDto.Username,
			Suit:       card.Suit,
			Rank:       card.Rank,
			NextColor:  nextColor,
		})

	case protocol.PlayerShift:
		if err := requirePlayerDto(t, a); err != nil {
			return err
		}
		if a.ExpireAtMs == 0 {
			return missing(t, "expireAtMs")
		}
		r.bus.Publish(events.ActionPlayerShift, events.ShiftPayload{
			PlayerName: a.PlayerDto.Username,
			ExpireAt:   time.UnixMilli(a.ExpireAtMs),
		})

	case protocol.HiddenDraw:
		if err := requirePlayerDto(t, a); err != nil {
			return err
		}
		if a.Count <= 0 {
			return missing(t, "count")
		}
		r.bus.Publish(events.ActionHiddenDraw, events.HiddenDrawPayload{
			PlayerName: a.PlayerDto.Username,
			Count:      a.Count,
		})

	case protocol.PlayerRank:
		if err := requirePlayerDto(t, a); err != nil {
			return err
		}
		if a.PlayerRank == 0 {
			return missing(t, "playerRank")
		}
		r.bus.Publish(events.ActionPlayerRank, events.RankPayload{
			PlayerName: a.PlayerDto.Username,
			Rank:       a.PlayerRank,
		})

	case protocol.Win:
		if a.Scores == nil {
			return missing(t, "scores")
		}
		r.bus.Publish(events.ActionWin, events.EndPayload{Scores: a.Scores})

	case protocol.Lose:
		if a.Scores == nil {
			return missing(t, "scores")
		}
		r.bus.Publish(events.ActionLose, events.EndPayload{Scores: a.Scores})

	case protocol.EndGame:
		if a.Scores == nil {
			return missing(t, "scores")
		}
		r.bus.Publish(events.ActionEndGame, events.EndPayload{Scores: a.Scores})

	case protocol.RemovePlayer:
		if a.Username == "" {
			return missing(t, "username")
		}
		r.bus.Publish(events.ActionRemovePlayer, events.PlayerPayload{PlayerName: a.Username})

	case protocol.Ready:
		if a.Username == "" {
			return missing(t, "username")
		}
		r.bus.Publish(events.ActionReady, events.PlayerPayload{PlayerName: a.Username})

	case protocol.Unready:
		if a.Username == "" {
			return missing(t, "username")
		}
		r.bus.Publish(events.ActionUnready, events.PlayerPayload{PlayerName: a.Username})

	case protocol.Destroy:
		r.phase = Terminated
		// the server explains a teardown through the envelope's error field;
		// absent that, the game id is all there is to report
		reason := errMsg
		if reason == "" {
			reason = a.GameID
		}
		r.bus.Publish(events.ActionDestroy, events.DestroyPayload{Reason: reason})

	case protocol.Disqualified:
		if a.Username == "" {
			return missing(t, "username")
		}
		r.phase = Terminated
		r.bus.Publish(events.ActionDisqualified, events.PlayerPayload{PlayerName: a.Username})

	case protocol.Pass:
		if a.Username == "" {
			return missing(t, "username")
		}
		r.bus.Publish(events.ActionPass, events.PlayerPayload{PlayerName: a.Username})

	default:
		return fmt.Errorf("%w: %q", protocol.ErrUnknownActionType, a.Type)
	}

	return nil
}

func (r *Router) routeBody(b *protocol.Body) error {
	switch b.BodyType {
	case protocol.BodyReady:
		if b.Username == "" {
			return fmt.Errorf("%w: %s.username", ErrMissingField, b.BodyType)
		}
		r.bus.Publish(events.ServerPlayerReady, events.PlayerPayload{PlayerName: b.Username})

	case protocol.BodyChat:
		if b.Message == nil {
			return fmt.Errorf("%w: %s.message", ErrMissingField, b.BodyType)
		}
		r.bus.Publish(events.ServerChatMessage, events.ChatPayload{
			Username:  b.Message.Username,
			Message:   b.Message.Message,
			Timestamp: time.UnixMilli(b.Message.Timestamp),
		})

	default:
		return fmt.Errorf("unknown body type %q", b.BodyType)
	}

	return nil
}

func gated(t protocol.ActionType) bool {
	switch t {
	case protocol.StartPile, protocol.Draw, protocol.PlayCard:
		return true
	}
	return false
}

func missing(t protocol.ActionType, field string) error {
	return fmt.Errorf("%w: %s.%s", ErrMissingField, t, field)
}

func requirePlayerDto(t protocol.ActionType, a *protocol.Action) error {
	if a.PlayerDto == nil || a.PlayerDto.Username == "" {
		return missing(t, "playerDto.username")
	}
	return nil
}

// requireCard checks the wire card is present and resolves it to short form.
// A dictionary miss is a lookup fault and drops the action.
func requireCard(t protocol.ActionType, a *protocol.Action) (events.CardPayload, error) {
	if a.Card == nil {
		return events.CardPayload{}, missing(t, "card")
	}
	suit, err := protocol.ShortSuit(a.Card.Color)
	if err != nil {
		return events.CardPayload{}, err
	}
	rank, err := protocol.ShortRank(a.Card.Type)
	if err != nil {
		return events.CardPayload{}, err
	}
	return events.CardPayload{Suit: suit, Rank: rank}, nil
}
