package makao

import (
	"sync"
	"time"

	"github.com/RussellLuo/timingwheel"
	"github.com/sirupsen/logrus"

	"github.com/makaohq/makao-client/events"
)

// Layout is the immutable geometry passed to the game for computing card
// animation endpoints. Renderers receive finished targets, never the layout.
type Layout struct {
	HandX        float64
	HandY        float64
	CardSpacing  float64
	PileX        float64
	PileY        float64
	PileRotation float64
}

var DefaultLayout = Layout{
	HandX:       120,
	HandY:       540,
	CardSpacing: 48,
	PileX:       480,
	PileY:       300,
}

// hiddenDrawDelay paces the face-down placeholder cards animated toward a
// remote player, one per delay.
const hiddenDrawDelay = 150 * time.Millisecond

type Opts struct {
	Bus       *events.Bus
	LocalName string
	Layout    Layout
	Log       logrus.FieldLogger
}

// Game owns this client's view of the match: the local hand, the pile, the
// roster with remote card counts, and the turn countdown. It subscribes to
// routed action events, mutates the model, and publishes derived events for
// rendering collaborators. Every failure here is local: the faulty event is
// logged and dropped and the next correct one applies normally.
type Game struct {
	bus       *events.Bus
	log       logrus.FieldLogger
	localName string
	layout    Layout

	tw        *timingwheel.TimingWheel
	countdown *Countdown

	mu      sync.Mutex
	hand    *Hand
	pile    *Pile
	roster  *Roster
	started bool
	seq     uint64
}

func NewGame(opts Opts) *Game {
	g := &Game{
		bus:       opts.Bus,
		log:       opts.Log,
		localName: opts.LocalName,
		layout:    opts.Layout,
		hand:      NewHand(),
		pile:      NewPile(),
		roster:    NewRoster(),
	}
	if g.layout == (Layout{}) {
		g.layout = DefaultLayout
	}

	g.tw = timingwheel.NewTimingWheel(10*time.Millisecond, 64)
	g.tw.Start()
	g.countdown = NewCountdown(g.tw, g.publishTick, g.publishExpired)

	g.subscribe()
	return g
}

// Close stops the timer wheel. The game is unusable afterwards.
func (g *Game) Close() {
	g.countdown.Stop()
	g.tw.Stop()
}

func (g *Game) subscribe() {
	g.bus.Subscribe(events.ActionPlayers, g.onPlayers)
	g.bus.Subscribe(events.ActionRegisterPlayer, g.onRegisterPlayer)
	g.bus.Subscribe(events.ActionStartGame, g.onStartGame)
	g.bus.Subscribe(events.ActionStartPile, g.onStartPile)
	g.bus.Subscribe(events.ActionDraw, g.onDraw)
	g.bus.Subscribe(events.ActionPlayCard, g.onPlayCard)
	g.bus.Subscribe(events.ActionPlayerShift, g.onPlayerShift)
	g.bus.Subscribe(events.ActionHiddenDraw, g.onHiddenDraw)
	g.bus.Subscribe(events.ActionPlayerRank, g.onPlayerRank)
	g.bus.Subscribe(events.ActionWin, g.onScores)
	g.bus.Subscribe(events.ActionLose, g.onScores)
	g.bus.Subscribe(events.ActionEndGame, g.onEndGame)
	g.bus.Subscribe(events.ActionRemovePlayer, g.onRemovePlayer)
	g.bus.Subscribe(events.ActionReady, g.onReady)
	g.bus.Subscribe(events.ActionUnready, g.onUnready)
	g.bus.Subscribe(events.ActionDestroy, g.onDestroy)
	g.bus.Subscribe(events.ActionDisqualified, g.onDisqualified)
	g.bus.Subscribe(events.ServerPlayerReady, g.onServerReady)
	g.bus.Subscribe(events.RenderCardLanded, g.onCardLanded)
}

func (g *Game) onPlayers(payload interface{}) {
	p, ok := payload.(events.PlayersPayload)
	if !ok {
		g.dropPayload(events.ActionPlayers, payload)
		return
	}
	g.mu.Lock()
	g.roster.ReplaceAll(p.PlayerNames)
	g.mu.Unlock()
}

func (g *Game) onRegisterPlayer(payload interface{}) {
	p, ok := payload.(events.RegisterPlayerPayload)
	if !ok {
		g.dropPayload(events.ActionRegisterPlayer, payload)
		return
	}
	g.mu.Lock()
	g.roster.Add(p.Username)
	g.mu.Unlock()
}

func (g *Game) onStartGame(payload interface{}) {
	p, ok := payload.(events.PlayersPayload)
	if !ok {
		g.dropPayload(events.ActionStartGame, payload)
		return
	}
	g.mu.Lock()
	g.roster.ReplaceAll(p.PlayerNames)
	g.started = true
	g.mu.Unlock()
}

func (g *Game) onStartPile(payload interface{}) {
	p, ok := payload.(events.CardPayload)
	if !ok {
		g.dropPayload(events.ActionStartPile, payload)
		return
	}
	c := NewCard(p.Suit, p.Rank)
	c.SetTarget(g.layout.PileX, g.layout.PileY, g.layout.PileRotation)

	g.mu.Lock()
	err := g.pile.Place(c)
	g.mu.Unlock()
	if err != nil {
		g.log.WithError(err).Warn("dropping pile start")
		return
	}
	g.bus.Publish(events.GameCardSpawned, c)
}

func (g *Game) onDraw(payload interface{}) {
	p, ok := payload.(events.CardPayload)
	if !ok {
		g.dropPayload(events.ActionDraw, payload)
		return
	}
	c := NewCard(p.Suit, p.Rank)

	g.mu.Lock()
	c.SetTarget(g.layout.HandX+float64(g.hand.Len())*g.layout.CardSpacing, g.layout.HandY, 0)
	err := g.hand.Add(c)
	g.mu.Unlock()
	if err != nil {
		g.log.WithError(err).WithField("card", c).Error("dropping drawn card")
		return
	}
	g.bus.Publish(events.GameCardSpawned, c)
}

func (g *Game) onPlayCard(payload interface{}) {
	p, ok := payload.(events.PlayCardPayload)
	if !ok {
		g.dropPayload(events.ActionPlayCard, payload)
		return
	}

	g.mu.Lock()
	var c *Card
	if p.PlayerName == g.localName {
		removed, err := g.hand.Remove(p.Suit, p.Rank)
		if err != nil {
			g.mu.Unlock()
			g.log.WithError(err).WithField("player", p.PlayerName).Error("dropping play")
			return
		}
		c = removed
	} else {
		g.roster.AddCount(p.PlayerName, -1)
		c = NewCard(p.Suit, p.Rank)
	}

	c.SetTarget(g.layout.PileX, g.layout.PileY, g.layout.PileRotation)
	if err := g.pile.Place(c); err != nil {
		g.mu.Unlock()
		g.log.WithError(err).WithField("card", c).Error("dropping play")
		return
	}
	g.pile.SetNextColor(p.NextColor)
	g.mu.Unlock()
}

func (g *Game) onCardLanded(payload interface{}) {
	p, ok := payload.(events.CardPayload)
	if !ok {
		g.dropPayload(events.RenderCardLanded, payload)
		return
	}
	g.mu.Lock()
	err := g.pile.Land(p.Suit, p.Rank)
	g.mu.Unlock()
	if err != nil {
		g.log.WithError(err).Warn("ignoring card landing")
	}
}

func (g *Game) onPlayerShift(payload interface{}) {
	p, ok := payload.(events.ShiftPayload)
	if !ok {
		g.dropPayload(events.ActionPlayerShift, payload)
		return
	}
	g.countdown.StartShift(p.PlayerName, p.ExpireAt)
}

func (g *Game) onHiddenDraw(payload interface{}) {
	p, ok := payload.(events.HiddenDrawPayload)
	if !ok {
		g.dropPayload(events.ActionHiddenDraw, payload)
		return
	}

	g.mu.Lock()
	g.roster.AddCount(p.PlayerName, p.Count)
	seq := g.seq
	g.mu.Unlock()

	// placeholders fan out one per delay; a restart bumps the sequence
	// token so stale continuations publish nothing
	for i := 0; i < p.Count; i++ {
		index := i
		g.tw.AfterFunc(time.Duration(index+1)*hiddenDrawDelay, func() {
			g.mu.Lock()
			stale := seq != g.seq
			g.mu.Unlock()
			if stale {
				return
			}
			g.bus.Publish(events.GameHiddenCard, events.HiddenCardPayload{
				PlayerName: p.PlayerName,
				Index:      index,
			})
		})
	}
}

func (g *Game) onPlayerRank(payload interface{}) {
	p, ok := payload.(events.RankPayload)
	if !ok {
		g.dropPayload(events.ActionPlayerRank, payload)
		return
	}
	g.mu.Lock()
	g.roster.SetRank(p.PlayerName, p.Rank)
	g.mu.Unlock()
}

func (g *Game) onScores(payload interface{}) {
	p, ok := payload.(events.EndPayload)
	if !ok {
		g.dropPayload(events.ActionWin, payload)
		return
	}
	g.mu.Lock()
	g.roster.ApplyScores(p.Scores)
	g.mu.Unlock()
}

func (g *Game) onEndGame(payload interface{}) {
	p, ok := payload.(events.EndPayload)
	if !ok {
		g.dropPayload(events.ActionEndGame, payload)
		return
	}
	g.mu.Lock()
	g.roster.ApplyScores(p.Scores)
	g.mu.Unlock()
	g.Restart()
}

func (g *Game) onRemovePlayer(payload interface{}) {
	p, ok := payload.(events.PlayerPayload)
	if !ok {
		g.dropPayload(events.ActionRemovePlayer, payload)
		return
	}
	g.mu.Lock()
	g.roster.Remove(p.PlayerName)
	g.mu.Unlock()
}

func (g *Game) onReady(payload interface{}) {
	g.setReady(events.ActionReady, payload, true)
}

func (g *Game) onUnready(payload interface{}) {
	g.setReady(events.ActionUnready, payload, false)
}

func (g *Game) onServerReady(payload interface{}) {
	g.setReady(events.ServerPlayerReady, payload, true)
}

func (g *Game) setReady(event events.Event, payload interface{}, ready bool) {
	p, ok := payload.(events.PlayerPayload)
	if !ok {
		g.dropPayload(event, payload)
		return
	}
	g.mu.Lock()
	g.roster.SetReady(p.PlayerName, ready)
	g.mu.Unlock()
}

func (g *Game) onDestroy(payload interface{}) {
	g.Restart()
}

func (g *Game) onDisqualified(payload interface{}) {
	p, ok := payload.(events.PlayerPayload)
	if !ok {
		g.dropPayload(events.ActionDisqualified, payload)
		return
	}
	g.mu.Lock()
	g.roster.Remove(p.PlayerName)
	g.mu.Unlock()
}

// Restart returns the machine to its pre-start readiness for a new match
// without requiring a fresh connection. Visual resources are destroyed by
// renderers reacting to the restart event; pending hidden-draw continuations
// are invalidated through the sequence token.
func (g *Game) Restart() {
	g.countdown.Stop()

	g.mu.Lock()
	g.hand.Clear()
	g.pile.Reset()
	g.started = false
	g.seq++
	g.mu.Unlock()

	g.bus.Publish(events.GameRestart, nil)
}

func (g *Game) publishTick(player string, remaining time.Duration) {
	g.bus.Publish(events.GameTurnTick, events.TurnTickPayload{
		PlayerName: player,
		Remaining:  remaining,
	})
}

// publishExpired reports turn expiry as a recoverable condition; the server
// decides what actually becomes of the turn.
func (g *Game) publishExpired(player string) {
	g.bus.Publish(events.GameTurnExpired, events.TurnTickPayload{PlayerName: player})
}

func (g *Game) dropPayload(event events.Event, payload interface{}) {
	g.log.WithFields(logrus.Fields{
		"event":   event,
		"payload": payload,
	}).Warn("dropping event with unexpected payload shape")
}

// Started reports whether a match is in progress.
func (g *Game) Started() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.started
}

// Hand returns a snapshot of the local hand in display order.
func (g *Game) Hand() []*Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.hand.Cards()
}

// PileTop returns the topmost landed pile card, or nil.
func (g *Game) PileTop() *Card {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pile.Top()
}

// NextColor returns the pile's current color announcement.
func (g *Game) NextColor() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pile.NextColor()
}

// OtherPlayerCount returns a remote player's face-down card count.
func (g *Game) OtherPlayerCount(name string) int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roster.Count(name)
}

// Players returns a snapshot of the roster.
func (g *Game) Players() []Player {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.roster.Players()
}

// Countdown exposes the turn timer, mainly for observability.
func (g *Game) Countdown() *Countdown {
	return g.countdown
}
