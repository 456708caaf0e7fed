package protocol

import "encoding/json"

// Outbound request envelope types.
const (
	RequestMove    = "MOVE"
	RequestControl = "CONTROL"
	RequestChat    = "CHAT"
)

const (
	MoveDraw = "DRAW"
	MovePlay = "PLAY"
	MovePass = "PASS"
)

const (
	ControlReady       = "READY"
	ControlUnready     = "UNREADY"
	ControlRegisterNPC = "REGISTER_NPC"
	ControlKick        = "KICK"
)

const ChatMessageType = "MESSAGE"

// Outbound is the wire envelope for every client-to-server request. The
// populated sub-struct matches RequestType, lowercased.
type Outbound struct {
	RequestType string   `json:"requestType"`
	Move        *Move    `json:"move,omitempty"`
	Control     *Control `json:"control,omitempty"`
	Chat        *Chat    `json:"chat,omitempty"`
}

type Move struct {
	MoveType  string `json:"moveType"`
	Card      *Card  `json:"card,omitempty"`
	NextColor string `json:"nextColor,omitempty"`
}

type Control struct {
	ControlType string `json:"controlType"`
	Username    string `json:"username,omitempty"`
}

type Chat struct {
	ChatType string `json:"chatType"`
	Message  string `json:"message"`
}

// EncodeDraw serialises a draw request.
func EncodeDraw() ([]byte, error) {
	return json.Marshal(Outbound{
		RequestType: RequestMove,
		Move:        &Move{MoveType: MoveDraw},
	})
}

// EncodePlay serialises a play request for a card given in short form.
// nextColor is a short suit token and may be empty when the played rank
// carries no color choice.
func EncodePlay(suit, rank, nextColor string) ([]byte, error) {
	longSuit, err := LongSuit(suit)
	if err != nil {
		return nil, err
	}
	longRank, err := LongRank(rank)
	if err != nil {
		return nil, err
	}
	longColor := ""
	if nextColor != "" {
		longColor, err = LongSuit(nextColor)
		if err != nil {
			return nil, err
		}
	}
	return json.Marshal(Outbound{
		RequestType: RequestMove,
		Move: &Move{
			MoveType:  MovePlay,
			Card:      &Card{Color: longSuit, Type: longRank},
			NextColor: longColor,
		},
	})
}

// EncodePass serialises a pass request.
func EncodePass() ([]byte, error) {
	return json.Marshal(Outbound{
		RequestType: RequestMove,
		Move:        &Move{MoveType: MovePass},
	})
}

// EncodeControl serialises READY, UNREADY and REGISTER_NPC requests.
func EncodeControl(controlType string) ([]byte, error) {
	return json.Marshal(Outbound{
		RequestType: RequestControl,
		Control:     &Control{ControlType: controlType},
	})
}

// EncodeKick serialises a kick request for the named player.
func EncodeKick(username string) ([]byte, error) {
	return json.Marshal(Outbound{
		RequestType: RequestControl,
		Control:     &Control{ControlType: ControlKick, Username: username},
	})
}

// EncodeChat serialises a chat message request.
func EncodeChat(text string) ([]byte, error) {
	return json.Marshal(Outbound{
		RequestType: RequestChat,
		Chat:        &Chat{ChatType: ChatMessageType, Message: text},
	})
}
