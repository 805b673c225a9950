package proto

// Message types exchanged with the room endpoint. Frames are flat JSON
// objects: {"type": "...", ...fields}.
const (
	// Server to client.
	TypeWelcome  = "welcome"
	TypeSnapshot = "snapshot"
	TypePos      = "pos"
	TypeHistory  = "history"
	TypeChat     = "chat"
	TypeJoin     = "join"

	// Client to server.
	TypeHello = "hello"
	TypeMove  = "move"
	TypeSay   = "say"

	// Both directions: the server announces a departure, the client
	// requests one.
	TypeLeave = "leave"
)

// Envelope is the common header of every frame.
type Envelope struct {
	Type string `json:"type"`
}

// Welcome assigns the connecting client its participant identity.
type Welcome struct {
	Type   string `json:"type"`
	UserID string `json:"userId"`
	Name   string `json:"name,omitempty"`
	Color  string `json:"color,omitempty"`
}

// Position is a participant location with optional identity fields.
// Absent fields decode as nil so callers can fall back to known values.
type Position struct {
	PlayerID string   `json:"playerId"`
	X        *float64 `json:"x,omitempty"`
	Y        *float64 `json:"y,omitempty"`
	Name     *string  `json:"name,omitempty"`
	Color    *string  `json:"color,omitempty"`
}

// Snapshot lists every known participant in the room.
type Snapshot struct {
	Type      string     `json:"type"`
	Positions []Position `json:"positions"`
}

// Pos reports a single participant position.
type Pos struct {
	Type string `json:"type"`
	Position
}

// ChatItem is one chat line as carried by chat and history frames.
type ChatItem struct {
	PlayerID string  `json:"playerId,omitempty"`
	Name     *string `json:"name,omitempty"`
	Color    *string `json:"color,omitempty"`
	Text     *string `json:"text,omitempty"`
	T        *int64  `json:"t,omitempty"`
}

// History replays recent chat lines for the room.
type History struct {
	Type     string     `json:"type"`
	Messages []ChatItem `json:"messages"`
}

// Chat is a live chat line.
type Chat struct {
	Type string `json:"type"`
	ChatItem
}

// Join announces a participant entering the room.
type Join struct {
	Type     string  `json:"type"`
	PlayerID string  `json:"playerId"`
	Name     *string `json:"name,omitempty"`
	Color    *string `json:"color,omitempty"`
}

// Leave announces a participant leaving. Sent by a client it carries no fields.
type Leave struct {
	Type     string  `json:"type"`
	PlayerID string  `json:"playerId,omitempty"`
	Name     *string `json:"name,omitempty"`
}

// Hello asks the server for a snapshot.
type Hello struct {
	Type string `json:"type"`
}

// Move reports the local participant position at client time T (epoch ms).
type Move struct {
	Type string  `json:"type"`
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	T    int64   `json:"t"`
}

// Say submits a chat line.
type Say struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// NewHello builds a hello frame.
func NewHello() Hello { return Hello{Type: TypeHello} }

// NewMove builds a move frame.
func NewMove(x, y float64, t int64) Move { return Move{Type: TypeMove, X: x, Y: y, T: t} }

// NewSay builds a say frame.
func NewSay(text string) Say { return Say{Type: TypeSay, Text: text} }

// NewLeave builds a client leave request.
func NewLeave() Leave { return Leave{Type: TypeLeave} }

// Ptr returns a pointer to v, for filling optional fields.
func Ptr[T any](v T) *T { return &v }
