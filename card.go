package makao

import (
	"errors"
	"fmt"
)

// Lifecycle is a card's position in its one-way progression. A card never
// moves backwards and is never reused once played.
type Lifecycle int

const (
	Spawned Lifecycle = iota
	InHand
	Played
)

var lifecycleNames = []string{"Spawned", "InHand", "Played"}

func (l Lifecycle) String() string {
	if l < Spawned || l > Played {
		return fmt.Sprintf("Lifecycle(%d)", int(l))
	}
	return lifecycleNames[l]
}

var ErrLifecycle = errors.New("invalid card lifecycle transition")

// Card is one playing card in short form. A card belongs to exactly one
// container at a time; transfer between containers is an explicit move.
// The target fields are an animation endpoint consumed only by renderers.
type Card struct {
	Suit string
	Rank string

	state Lifecycle

	TargetX        float64
	TargetY        float64
	TargetRotation float64
}

// NewCard materialises a card in the Spawned state.
func NewCard(suit, rank string) *Card {
	return &Card{Suit: suit, Rank: rank}
}

func (c *Card) State() Lifecycle {
	return c.state
}

// PlaceInHand moves a freshly spawned card into the hand state.
func (c *Card) PlaceInHand() error {
	if c.state != Spawned {
		return fmt.Errorf("%w: %s -> %s", ErrLifecycle, c.state, InHand)
	}
	c.state = InHand
	return nil
}

// MarkPlayed moves a card to its terminal state.
func (c *Card) MarkPlayed() error {
	if c.state == Played {
		return fmt.Errorf("%w: card already played", ErrLifecycle)
	}
	c.state = Played
	return nil
}

// SetTarget records where the card should end up on screen.
func (c *Card) SetTarget(x, y, rotation float64) {
	c.TargetX = x
	c.TargetY = y
	c.TargetRotation = rotation
}

func (c *Card) String() string {
	return c.Rank + c.Suit
}
