package domain

import (
	"time"
)

// Warble represents a short text message authored by a user.
type Warble struct {
	ID         uint      `json:"id"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}

// CreateWarbleRequest represents a new-warble request.
type CreateWarbleRequest struct {
	Text string `form:"text" json:"text" binding:"required,max=140"`
}

// WarbleResponse represents a warble in API responses.
type WarbleResponse struct {
	ID         uint      `json:"id"`
	AuthorID   uint      `json:"author_id"`
	AuthorName string    `json:"author_name,omitempty"`
	Text       string    `json:"text"`
	Timestamp  time.Time `json:"timestamp"`
}

// ToResponse converts Warble to WarbleResponse.
func (w *Warble) ToResponse() WarbleResponse {
	return WarbleResponse{
		ID:         w.ID,
		AuthorID:   w.AuthorID,
		AuthorName: w.AuthorName,
		Text:       w.Text,
		Timestamp:  w.Timestamp,
	}
}

// WarblesToResponses converts a warble list for API responses.
func WarblesToResponses(warbles []Warble) []WarbleResponse {
	out := make([]WarbleResponse, 0, len(warbles))
	for i := range warbles {
		out = append(out, warbles[i].ToResponse())
	}
	return out
}
