package ws

// Event names carried in the message envelope.
const (
	EventJoinSession    = "joinSession"
	EventInitSession    = "initSession"
	EventCodeChange     = "codeChange"
	EventCodeUpdate     = "codeUpdate"
	EventLanguageChange = "languageChange"
	EventLanguageUpdate = "languageUpdate"
	EventRunResult      = "runResult"
	EventPing           = "ping"
	EventPong           = "pong"
	EventError          = "error"
)

// Message is the JSON envelope for every event in either direction.
// Unused fields are omitted; code and language stay present even when
// empty so a fresh session initializes an empty editor buffer.
type Message struct {
	Event     string `json:"event"`
	SessionID string `json:"sessionId,omitempty"`
	Code      string `json:"code"`
	Language  string `json:"language,omitempty"`
	Stdout    string `json:"stdout,omitempty"`
	Stderr    string `json:"stderr,omitempty"`
	Error     string `json:"error,omitempty"`
}
