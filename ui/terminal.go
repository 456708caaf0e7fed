// Package ui is a rendering collaborator. It talks to the core exclusively
// through bus events: it consumes actions and derived game events, draws a
// terminal view, and reports card landings back. It never reaches into the
// codec or router.
package ui

import (
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/sirupsen/logrus"

	makao "github.com/makaohq/makao-client"
	"github.com/makaohq/makao-client/events"
)

// C holds pre-configured color objects for terminal output.
var C = struct {
	Card, Turn, Info, Warn, Chat *color.Color
}{
	Card: color.New(color.FgHiWhite, color.Bold),
	Turn: color.New(color.FgYellow),
	Info: color.New(color.FgCyan),
	Warn: color.New(color.FgHiYellow),
	Chat: color.New(color.FgGreen),
}

var suitColors = map[string]*color.Color{
	"H": color.New(color.FgRed),
	"D": color.New(color.FgRed),
	"S": color.New(color.FgWhite),
	"C": color.New(color.FgWhite),
}

// ColorizeCard renders a short-form card with its suit color.
func ColorizeCard(suit, rank string) string {
	if c, ok := suitColors[suit]; ok {
		return c.Sprint(rank + suit)
	}
	return rank + suit
}

// Terminal renders the client's view of the match to an io.Writer. Terminal
// has no animation frames, so every card transition lands immediately and a
// landing event goes straight back onto the bus.
type Terminal struct {
	bus *events.Bus
	out io.Writer
	log logrus.FieldLogger

	mu      sync.Mutex
	local   string
	hand    []string
	top     string
	counts  map[string]int
	players []string
	ready   map[string]bool
}

func NewTerminal(bus *events.Bus, localName string, out io.Writer, log logrus.FieldLogger) *Terminal {
	t := &Terminal{
		bus:    bus,
		out:    out,
		log:    log,
		local:  localName,
		counts: map[string]int{},
		ready:  map[string]bool{},
	}
	t.subscribe()
	return t
}

func (t *Terminal) subscribe() {
	t.bus.Subscribe(events.ActionPlayers, t.onPlayers)
	t.bus.Subscribe(events.ActionStartGame, t.onStartGame)
	t.bus.Subscribe(events.GameCardSpawned, t.onCardSpawned)
	t.bus.Subscribe(events.ActionPlayCard, t.onPlayCard)
	t.bus.Subscribe(events.ActionHiddenDraw, t.onHiddenDraw)
	t.bus.Subscribe(events.GameHiddenCard, t.onHiddenCard)
	t.bus.Subscribe(events.GameTurnTick, t.onTurnTick)
	t.bus.Subscribe(events.GameTurnExpired, t.onTurnExpired)
	t.bus.Subscribe(events.ServerChatMessage, t.onChat)
	t.bus.Subscribe(events.ServerError, t.onServerError)
	t.bus.Subscribe(events.ActionReady, func(p interface{}) { t.onReady(p, true) })
	t.bus.Subscribe(events.ActionUnready, func(p interface{}) { t.onReady(p, false) })
	t.bus.Subscribe(events.ServerPlayerReady, func(p interface{}) { t.onReady(p, true) })
	t.bus.Subscribe(events.ActionPass, t.onPass)
	t.bus.Subscribe(events.GameRestart, t.onRestart)
	t.bus.Subscribe(events.ActionEndGame, t.onEndGame)
}

func (t *Terminal) onPass(payload interface{}) {
	p, ok := payload.(events.PlayerPayload)
	if !ok {
		return
	}
	fmt.Fprintf(t.out, "%s passes\n", p.PlayerName)
}

func (t *Terminal) onPlayers(payload interface{}) {
	p, ok := payload.(events.PlayersPayload)
	if !ok {
		return
	}
	t.mu.Lock()
	t.players = p.PlayerNames
	t.mu.Unlock()
	fmt.Fprintf(t.out, "%s\n", C.Info.Sprintf("players: %v", p.PlayerNames))
}

func (t *Terminal) onStartGame(payload interface{}) {
	p, ok := payload.(events.PlayersPayload)
	if !ok {
		return
	}
	t.mu.Lock()
	t.players = p.PlayerNames
	t.mu.Unlock()
	C.Info.Fprintln(t.out, "game on!")
}

func (t *Terminal) onCardSpawned(payload interface{}) {
	c, ok := payload.(*makao.Card)
	if !ok {
		return
	}
	t.mu.Lock()
	if c.State() == makao.InHand {
		t.hand = append(t.hand, ColorizeCard(c.Suit, c.Rank))
	}
	t.mu.Unlock()

	// no tweening on a terminal: the transition is instant
	if c.State() != makao.InHand {
		t.bus.Publish(events.RenderCardLanded, events.CardPayload{Suit: c.Suit, Rank: c.Rank})
	}
	t.renderHand()
}

func (t *Terminal) onPlayCard(payload interface{}) {
	p, ok := payload.(events.PlayCardPayload)
	if !ok {
		return
	}
	t.mu.Lock()
	t.top = ColorizeCard(p.Suit, p.Rank)
	if p.PlayerName == t.local {
		t.removeFromHand(ColorizeCard(p.Suit, p.Rank))
	} else if t.counts[p.PlayerName] > 0 {
		t.counts[p.PlayerName]--
	}
	t.mu.Unlock()

	t.bus.Publish(events.RenderCardLanded, events.CardPayload{Suit: p.Suit, Rank: p.Rank})

	line := fmt.Sprintf("%s plays %s", p.PlayerName, ColorizeCard(p.Suit, p.Rank))
	if p.NextColor != "" {
		line += fmt.Sprintf(" (next color %s)", p.NextColor)
	}
	fmt.Fprintln(t.out, line)
	t.renderHand()
}

func (t *Terminal) onHiddenDraw(payload interface{}) {
	p, ok := payload.(events.HiddenDrawPayload)
	if !ok {
		return
	}
	t.mu.Lock()
	t.counts[p.PlayerName] += p.Count
	t.mu.Unlock()
	fmt.Fprintf(t.out, "%s draws %d\n", p.PlayerName, p.Count)
}

func (t *Terminal) onHiddenCard(payload interface{}) {
	p, ok := payload.(events.HiddenCardPayload)
	if !ok {
		return
	}
	fmt.Fprintf(t.out, "  card %d -> %s\n", p.Index+1, p.PlayerName)
}

func (t *Terminal) onTurnTick(payload interface{}) {
	p, ok := payload.(events.TurnTickPayload)
	if !ok {
		return
	}
	// only redraw on whole seconds to keep the terminal calm
	if p.Remaining.Milliseconds()%1000 >= 100 {
		return
	}
	C.Turn.Fprintf(t.out, "\r%s: %ds left ", p.PlayerName, int(p.Remaining.Seconds()))
}

func (t *Terminal) onTurnExpired(payload interface{}) {
	p, ok := payload.(events.TurnTickPayload)
	if !ok {
		return
	}
	C.Warn.Fprintf(t.out, "\n%s ran out of time\n", p.PlayerName)
}

func (t *Terminal) onChat(payload interface{}) {
	p, ok := payload.(events.ChatPayload)
	if !ok {
		return
	}
	C.Chat.Fprintf(t.out, "[%s] %s: %s\n", p.Timestamp.Format("15:04"), p.Username, p.Message)
}

func (t *Terminal) onServerError(payload interface{}) {
	p, ok := payload.(events.ErrorPayload)
	if !ok {
		return
	}
	C.Warn.Fprintf(t.out, "server: %s\n", p.Message)
}

func (t *Terminal) onReady(payload interface{}, ready bool) {
	p, ok := payload.(events.PlayerPayload)
	if !ok {
		return
	}
	t.mu.Lock()
	t.ready[p.PlayerName] = ready
	t.mu.Unlock()
	t.renderRoster()
}

func (t *Terminal) onRestart(interface{}) {
	t.mu.Lock()
	t.hand = nil
	t.top = ""
	t.counts = map[string]int{}
	t.mu.Unlock()
	C.Info.Fprintln(t.out, "table cleared, waiting for the next match")
}

func (t *Terminal) onEndGame(payload interface{}) {
	p, ok := payload.(events.EndPayload)
	if !ok {
		return
	}
	w := table.NewWriter()
	w.SetOutputMirror(t.out)
	w.SetTitle("final scores")
	w.AppendHeader(table.Row{"player", "score"})

	names := make([]string, 0, len(p.Scores))
	for name := range p.Scores {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		w.AppendRow(table.Row{name, p.Scores[name]})
	}
	w.SetStyle(table.StyleRounded)
	w.Render()
}

func (t *Terminal) renderHand() {
	t.mu.Lock()
	hand := make([]string, len(t.hand))
	copy(hand, t.hand)
	top := t.top
	t.mu.Unlock()

	fmt.Fprintf(t.out, "hand: %v", hand)
	if top != "" {
		fmt.Fprintf(t.out, "   pile: %s", top)
	}
	fmt.Fprintln(t.out)
}

func (t *Terminal) renderRoster() {
	t.mu.Lock()
	defer t.mu.Unlock()

	w := table.NewWriter()
	w.SetOutputMirror(t.out)
	w.AppendHeader(table.Row{"player", "ready", "cards"})
	for _, name := range t.players {
		mark := ""
		if t.ready[name] {
			mark = "✔"
		}
		w.AppendRow(table.Row{name, mark, t.counts[name]})
	}
	w.SetStyle(table.StyleLight)
	w.Render()
}

func (t *Terminal) removeFromHand(rendered string) {
	for i, c := range t.hand {
		if c == rendered {
			t.hand = append(t.hand[:i], t.hand[i+1:]...)
			return
		}
	}
}
