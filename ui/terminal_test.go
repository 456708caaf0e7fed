package ui

import (
	"bytes"
	"io"
	"testing"

	"github.com/fatih/color"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"

	"github.com/makaohq/makao-client/events"
)

func testTerminal(t *testing.T) (*Terminal, *events.Bus, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true

	log := logrus.New()
	log.SetOutput(io.Discard)

	bus := events.NewBus(log)
	out := &bytes.Buffer{}
	return NewTerminal(bus, "me", out, log), bus, out
}

func TestTerminal(t *testing.T) {
	t.Run("plays are narrated with the announced color", func(t *testing.T) {
		_, bus, out := testTerminal(t)

		bus.Publish(events.ActionPlayCard, events.PlayCardPayload{
			PlayerName: "Bob", Suit: "H", Rank: "A", NextColor: "S",
		})

		assert.Contains(t, out.String(), "Bob plays AH")
		assert.Contains(t, out.String(), "next color S")
	})

	t.Run("a play is reported back to the core as landed", func(t *testing.T) {
		_, bus, _ := testTerminal(t)

		var landed []events.CardPayload
		bus.Subscribe(events.RenderCardLanded, func(payload interface{}) {
			landed = append(landed, payload.(events.CardPayload))
		})

		bus.Publish(events.ActionPlayCard, events.PlayCardPayload{
			PlayerName: "Bob", Suit: "H", Rank: "A",
		})

		assert.Equal(t, []events.CardPayload{{Suit: "H", Rank: "A"}}, landed)
	})

	t.Run("a remote play decrements that player's card count", func(t *testing.T) {
		term, bus, _ := testTerminal(t)

		bus.Publish(events.ActionHiddenDraw, events.HiddenDrawPayload{PlayerName: "Bob", Count: 3})
		bus.Publish(events.ActionPlayCard, events.PlayCardPayload{PlayerName: "Bob", Suit: "H", Rank: "A"})

		term.mu.Lock()
		defer term.mu.Unlock()
		assert.Equal(t, 2, term.counts["Bob"])
	})

	t.Run("a local play leaves remote counts alone", func(t *testing.T) {
		term, bus, _ := testTerminal(t)

		bus.Publish(events.ActionHiddenDraw, events.HiddenDrawPayload{PlayerName: "Bob", Count: 3})
		bus.Publish(events.ActionPlayCard, events.PlayCardPayload{PlayerName: "me", Suit: "H", Rank: "A"})

		term.mu.Lock()
		defer term.mu.Unlock()
		assert.Equal(t, 3, term.counts["Bob"])
	})

	t.Run("hidden draws and passes are narrated", func(t *testing.T) {
		_, bus, out := testTerminal(t)

		bus.Publish(events.ActionHiddenDraw, events.HiddenDrawPayload{PlayerName: "Bob", Count: 3})
		bus.Publish(events.ActionPass, events.PlayerPayload{PlayerName: "Bob"})

		assert.Contains(t, out.String(), "Bob draws 3")
		assert.Contains(t, out.String(), "Bob passes")
	})

	t.Run("a restart clears the table", func(t *testing.T) {
		term, bus, out := testTerminal(t)

		bus.Publish(events.ActionPlayCard, events.PlayCardPayload{PlayerName: "Bob", Suit: "H", Rank: "A"})
		bus.Publish(events.GameRestart, nil)

		assert.Contains(t, out.String(), "table cleared")
		term.mu.Lock()
		defer term.mu.Unlock()
		assert.Empty(t, term.hand)
		assert.Empty(t, term.top)
	})
}
