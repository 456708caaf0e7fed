package makao

import (
	"errors"
	"fmt"
)

var (
	ErrCardNotInHand = errors.New("no such card in hand")
	ErrDuplicateCard = errors.New("card already in hand")
)

// Hand is the local player's ordered cards. Order is display order, not deal
// order. No (suit, rank) pair appears twice while both copies are in hand.
type Hand struct {
	cards []*Card
}

func NewHand() *Hand {
	return &Hand{}
}

// Add takes ownership of a spawned card and places it in the hand.
func (h *Hand) Add(c *Card) error {
	if h.contains(c.Suit, c.Rank) {
		return fmt.Errorf("%w: %s", ErrDuplicateCard, c)
	}
	if err := c.PlaceInHand(); err != nil {
		return err
	}
	h.cards = append(h.cards, c)
	return nil
}

// Remove looks a card up by (suit, rank) and transfers it out of the hand.
// A miss is a contract violation reported as an error, never a crash.
func (h *Hand) Remove(suit, rank string) (*Card, error) {
	for i, c := range h.cards {
		if c.Suit == suit && c.Rank == rank {
			h.cards = append(h.cards[:i], h.cards[i+1:]...)
			return c, nil
		}
	}
	return nil, fmt.Errorf("%w: %s%s", ErrCardNotInHand, rank, suit)
}

// Reorder moves the card at from to position to, shifting the rest.
func (h *Hand) Reorder(from, to int) {
	if from < 0 || from >= len(h.cards) || to < 0 || to >= len(h.cards) || from == to {
		return
	}
	c := h.cards[from]
	h.cards = append(h.cards[:from], h.cards[from+1:]...)
	h.cards = append(h.cards[:to], append([]*Card{c}, h.cards[to:]...)...)
}

// Cards returns a snapshot of the hand in display order.
func (h *Hand) Cards() []*Card {
	snapshot := make([]*Card, len(h.cards))
	copy(snapshot, h.cards)
	return snapshot
}

func (h *Hand) Len() int {
	return len(h.cards)
}

// Clear empties the hand, returning the removed cards.
func (h *Hand) Clear() []*Card {
	removed := h.cards
	h.cards = nil
	return removed
}

func (h *Hand) contains(suit, rank string) bool {
	for _, c := range h.cards {
		if c.Suit == suit && c.Rank == rank {
			return true
		}
	}
	return false
}
