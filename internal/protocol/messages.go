package protocol

import "time"

// MessageType identifies the kind of message sent over the websocket feed.
type MessageType string

const (
	// Server -> Client messages
	MsgLeaderboard MessageType = "leaderboard"
)

// Envelope is the top-level wire format for websocket messages.
type Envelope struct {
	Type    MessageType `json:"type"`
	Payload interface{} `json:"payload"`
}

// ScoreRecord is one finished game as stored by the score service.
type ScoreRecord struct {
	ID    string    `json:"_id"`
	Name  string    `json:"name"`
	Score int       `json:"score"`
	Level int       `json:"level"`
	Date  time.Time `json:"date"`
}

// LeaderboardPayload carries every stored score, highest first.
type LeaderboardPayload struct {
	Scores []ScoreRecord `json:"scores"`
}

// --- HTTP Request/Response types ---

// CreateScoreRequest is the JSON body for POST /api/scores.
// Score and Level are pointers so a missing field can be told apart from zero.
type CreateScoreRequest struct {
	Name  string     `json:"name"`
	Score *int       `json:"score"`
	Level *int       `json:"level"`
	Date  *time.Time `json:"date,omitempty"`
}

// RenameRequest is the JSON body for PUT /api/scores/{id}.
type RenameRequest struct {
	Name string `json:"name"`
}

// MessageResponse is a generic JSON status response.
type MessageResponse struct {
	Message string `json:"message"`
}

// ErrorResponse is a generic JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}
