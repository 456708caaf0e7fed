package protocol

import (
	"errors"
	"fmt"
)

// ActionType enumerates every action the server may send.
type ActionType int

const (
	UnknownAction ActionType = iota
	Players
	RegisterPlayer
	StartGame
	StartPile
	Draw
	PlayCard
	PlayerShift
	HiddenDraw
	PlayerRank
	Win
	Lose
	EndGame
	RemovePlayer
	Ready
	Unready
	Destroy
	Disqualified
	Pass
)

var ErrUnknownActionType = errors.New("unknown action type")

var actionTypeNames = map[ActionType]string{
	Players:        "PLAYERS",
	RegisterPlayer: "REGISTER_PLAYER",
	StartGame:      "START_GAME",
	StartPile:      "START_PILE",
	Draw:           "DRAW",
	PlayCard:       "PLAY_CARD",
	PlayerShift:    "PLAYER_SHIFT",
	HiddenDraw:     "HIDDEN_DRAW",
	PlayerRank:     "PLAYER_RANK",
	Win:            "WIN",
	Lose:           "LOSE",
	EndGame:        "END_GAME",
	RemovePlayer:   "REMOVE_PLAYER",
	Ready:          "READY",
	Unready:        "UNREADY",
	Destroy:        "DESTROY",
	Disqualified:   "DISQUALIFIED",
	Pass:           "PASS",
}

var nameToActionType = map[string]ActionType{}

func init() {
	for t, name := range actionTypeNames {
		nameToActionType[name] = t
	}
}

func (t ActionType) String() string {
	if name, ok := actionTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ActionType(%d)", int(t))
}

// ParseActionType resolves a wire action name to its typed form.
func ParseActionType(name string) (ActionType, error) {
	t, ok := nameToActionType[name]
	if !ok {
		return UnknownAction, fmt.Errorf("%w: %q", ErrUnknownActionType, name)
	}
	return t, nil
}
