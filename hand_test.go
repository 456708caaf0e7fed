package makao

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	utils "github.com/makaohq/makao-client/internal"
)

func TestHand(t *testing.T) {
	t.Run("cards keep display order", func(t *testing.T) {
		h := NewHand()
		utils.AssertNoError(t, h.Add(NewCard("H", "A")))
		utils.AssertNoError(t, h.Add(NewCard("S", "10")))
		utils.AssertNoError(t, h.Add(NewCard("C", "7")))

		cards := h.Cards()
		utils.AssertEqual(t, len(cards), 3)
		utils.AssertEqual(t, cards[0].String(), "AH")
		utils.AssertEqual(t, cards[2].String(), "7C")
	})

	t.Run("adding moves the card into the hand state", func(t *testing.T) {
		h := NewHand()
		c := NewCard("H", "A")
		utils.AssertEqual(t, c.State(), Spawned)

		utils.AssertNoError(t, h.Add(c))
		utils.AssertEqual(t, c.State(), InHand)
	})

	t.Run("no duplicate pair while both are in hand", func(t *testing.T) {
		h := NewHand()
		utils.AssertNoError(t, h.Add(NewCard("H", "A")))

		err := h.Add(NewCard("H", "A"))
		assert.True(t, errors.Is(err, ErrDuplicateCard))
		utils.AssertEqual(t, h.Len(), 1)
	})

	t.Run("the pair may return once the first copy left", func(t *testing.T) {
		h := NewHand()
		utils.AssertNoError(t, h.Add(NewCard("H", "A")))

		_, err := h.Remove("H", "A")
		utils.AssertNoError(t, err)
		utils.AssertNoError(t, h.Add(NewCard("H", "A")))
	})

	t.Run("removing transfers ownership", func(t *testing.T) {
		h := NewHand()
		c := NewCard("D", "K")
		utils.AssertNoError(t, h.Add(c))

		removed, err := h.Remove("D", "K")
		utils.AssertNoError(t, err)
		utils.AssertEqual(t, removed, c)
		utils.AssertEqual(t, h.Len(), 0)
	})

	t.Run("removing an absent card errors and leaves the hand untouched", func(t *testing.T) {
		h := NewHand()
		utils.AssertNoError(t, h.Add(NewCard("H", "A")))
		utils.AssertNoError(t, h.Add(NewCard("S", "6")))

		_, err := h.Remove("C", "Q")
		assert.True(t, errors.Is(err, ErrCardNotInHand))
		utils.AssertEqual(t, h.Len(), 2)
	})

	t.Run("reorder moves a card within the hand", func(t *testing.T) {
		h := NewHand()
		utils.AssertNoError(t, h.Add(NewCard("H", "A")))
		utils.AssertNoError(t, h.Add(NewCard("S", "10")))
		utils.AssertNoError(t, h.Add(NewCard("C", "7")))

		h.Reorder(2, 0)

		cards := h.Cards()
		utils.AssertEqual(t, cards[0].String(), "7C")
		utils.AssertEqual(t, cards[1].String(), "AH")
	})

	t.Run("clear empties the hand", func(t *testing.T) {
		h := NewHand()
		utils.AssertNoError(t, h.Add(NewCard("H", "A")))

		removed := h.Clear()
		utils.AssertEqual(t, len(removed), 1)
		utils.AssertEqual(t, h.Len(), 0)
	})
}

func TestCardLifecycle(t *testing.T) {
	t.Run("progression is one way", func(t *testing.T) {
		c := NewCard("H", "A")
		utils.AssertNoError(t, c.PlaceInHand())
		utils.AssertNoError(t, c.MarkPlayed())

		assert.True(t, errors.Is(c.PlaceInHand(), ErrLifecycle))
		assert.True(t, errors.Is(c.MarkPlayed(), ErrLifecycle))
		utils.AssertEqual(t, c.State(), Played)
	})

	t.Run("a spawned card may be played without visiting the hand", func(t *testing.T) {
		c := NewCard("S", "J")
		utils.AssertNoError(t, c.MarkPlayed())
	})
}
