package protocol

import (
	"errors"
	"fmt"
)

// The wire protocol spells cards out in full (HEARTS, ACE); the client works
// with the short forms (H, A). Both directions are fixed dictionaries and a
// miss is always an explicit failure, never a default card.

var ErrUnknownCardToken = errors.New("unknown card token")

var longToShortSuit = map[string]string{
	"HEARTS":   "H",
	"SPADES":   "S",
	"CLUBS":    "C",
	"DIAMONDS": "D",
}

var longToShortRank = map[string]string{
	"ACE":   "A",
	"KING":  "K",
	"QUEEN": "Q",
	"JACK":  "J",
	"TEN":   "10",
	"NINE":  "9",
	"EIGHT": "8",
	"SEVEN": "7",
	"SIX":   "6",
}

var shortToLongSuit = invert(longToShortSuit)
var shortToLongRank = invert(longToShortRank)

func invert(m map[string]string) map[string]string {
	inverted := make(map[string]string, len(m))
	for k, v := range m {
		inverted[v] = k
	}
	return inverted
}

// ShortSuit maps a wire suit name to its short form.
func ShortSuit(long string) (string, error) {
	short, ok := longToShortSuit[long]
	if !ok {
		return "", fmt.Errorf("%w: suit %q", ErrUnknownCardToken, long)
	}
	return short, nil
}

// LongSuit maps a short suit back to its wire name.
func LongSuit(short string) (string, error) {
	long, ok := shortToLongSuit[short]
	if !ok {
		return "", fmt.Errorf("%w: suit %q", ErrUnknownCardToken, short)
	}
	return long, nil
}

// ShortRank maps a wire rank name to its short form.
func ShortRank(long string) (string, error) {
	short, ok := longToShortRank[long]
	if !ok {
		return "", fmt.Errorf("%w: rank %q", ErrUnknownCardToken, long)
	}
	return short, nil
}

// LongRank maps a short rank back to its wire name.
func LongRank(short string) (string, error) {
	long, ok := shortToLongRank[short]
	if !ok {
		return "", fmt.Errorf("%w: rank %q", ErrUnknownCardToken, short)
	}
	return long, nil
}

// Suits lists the long-form suit names.
func Suits() []string {
	names := make([]string, 0, len(longToShortSuit))
	for long := range longToShortSuit {
		names = append(names, long)
	}
	return names
}

// Ranks lists the long-form rank names.
func Ranks() []string {
	names := make([]string, 0, len(longToShortRank))
	for long := range longToShortRank {
		names = append(names, long)
	}
	return names
}
