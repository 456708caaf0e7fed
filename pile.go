package makao

import (
	"errors"
	"fmt"
)

// NoColorSelected is the pile's color announcement when the last color-choice
// rank was played without a choice.
const NoColorSelected = "NOT_SELECTED"

var ErrOutOfOrderArrival = errors.New("pile arrival out of play order")

// Pile holds the played cards. A play enqueues the card as "in flight" until
// its visual transition completes; the previously topmost card is only
// released once the new top has landed, and landings must follow play order.
// The superseded top stays in a single pending-removal slot for one extra
// frame so the outgoing card's transition can finish.
type Pile struct {
	cards          []*Card
	inFlight       []*Card
	pendingRemoval *Card
	nextColor      string
}

func NewPile() *Pile {
	return &Pile{nextColor: NoColorSelected}
}

// Place takes ownership of a card headed for the pile. The card counts as
// played immediately; it becomes the visible top when its transition lands.
func (p *Pile) Place(c *Card) error {
	if err := c.MarkPlayed(); err != nil {
		return err
	}
	p.inFlight = append(p.inFlight, c)
	return nil
}

// Land records that a card's transition to the pile finished. Landings must
// arrive in play order; an out-of-order landing is rejected untouched.
func (p *Pile) Land(suit, rank string) error {
	if len(p.inFlight) == 0 {
		return fmt.Errorf("%w: no card in flight", ErrOutOfOrderArrival)
	}
	head := p.inFlight[0]
	if head.Suit != suit || head.Rank != rank {
		return fmt.Errorf("%w: expected %s, got %s%s", ErrOutOfOrderArrival, head, rank, suit)
	}
	p.inFlight = p.inFlight[1:]

	if top := p.Top(); top != nil {
		p.pendingRemoval = top
	}
	p.cards = append(p.cards, head)
	return nil
}

// Top returns the topmost landed card, or nil before the pile starts.
func (p *Pile) Top() *Card {
	if len(p.cards) == 0 {
		return nil
	}
	return p.cards[len(p.cards)-1]
}

// PendingRemoval returns the card awaiting its removal frame, if any.
func (p *Pile) PendingRemoval() *Card {
	return p.pendingRemoval
}

// CollectPendingRemoval clears and returns the pending-removal slot.
func (p *Pile) CollectPendingRemoval() *Card {
	c := p.pendingRemoval
	p.pendingRemoval = nil
	return c
}

// NextColor returns the current color announcement.
func (p *Pile) NextColor() string {
	return p.nextColor
}

// SetNextColor records the announced color following a color-choice play.
// An empty choice resets the announcement to the sentinel.
func (p *Pile) SetNextColor(color string) {
	if color == "" {
		p.nextColor = NoColorSelected
		return
	}
	p.nextColor = color
}

// InFlight reports how many plays are still awaiting their landing.
func (p *Pile) InFlight() int {
	return len(p.inFlight)
}

func (p *Pile) Len() int {
	return len(p.cards)
}

// Reset empties the pile for a new match.
func (p *Pile) Reset() {
	p.cards = nil
	p.inFlight = nil
	p.pendingRemoval = nil
	p.nextColor = NoColorSelected
}
