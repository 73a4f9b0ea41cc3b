package app

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type Sender string

const (
	SenderUser      Sender = "user"
	SenderAssistant Sender = "assistant"
)

// ChatMessage is immutable after creation. Either Text or ImageURL (or both)
// may be set; an image-only message has an empty Text.
type ChatMessage struct {
	ID        string    `json:"id"`
	RoomID    string    `json:"roomId"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text,omitempty"`
	ImageURL  string    `json:"imageUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Chatroom's Title is mutable: the first user-authored message in the room
// retitles it (see Store.AddMessage). Everything else is fixed at creation.
type Chatroom struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	CreatedAt time.Time `json:"createdAt"`
}

type AuthUser struct {
	CountryCode string `json:"countryCode"` // e.g. +44
	Phone       string `json:"phone"`       // digits only
}

// AuthState carries a single field: signed in iff User != nil. The snapshot
// JSON still writes an isAuthenticated flag for the documented shape, but on
// load user presence is the source of truth, so the two can never disagree.
type AuthState struct {
	User *AuthUser
}

func (s AuthState) Authenticated() bool { return s.User != nil }

type authStateJSON struct {
	IsAuthenticated bool      `json:"isAuthenticated"`
	User            *AuthUser `json:"user"`
}

func (s AuthState) MarshalJSON() ([]byte, error) {
	return json.Marshal(authStateJSON{IsAuthenticated: s.User != nil, User: s.User})
}

func (s *AuthState) UnmarshalJSON(data []byte) error {
	var raw authStateJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	s.User = raw.User
	return nil
}

type ChatState struct {
	// Rooms are ordered most-recently-created first.
	Rooms []Chatroom `json:"rooms"`
	// ByRoomID holds each room's messages in creation order, append-only.
	ByRoomID map[string][]ChatMessage `json:"byRoomId"`
}

// StateVersion tags the persisted snapshot schema. Snapshots without a tag
// (or with unknown keys missing) are normalized by migrateState at load.
const StateVersion = 1

type RootState struct {
	Version int       `json:"version"`
	Auth    AuthState `json:"auth"`
	Chat    ChatState `json:"chat"`
}

func NewChatroom(title string) Chatroom {
	return Chatroom{
		ID:        uuid.NewString(),
		Title:     title,
		CreatedAt: time.Now().UTC(),
	}
}

func NewMessage(roomID string, sender Sender, text, imageURL string) ChatMessage {
	return ChatMessage{
		ID:        uuid.NewString(),
		RoomID:    roomID,
		Sender:    sender,
		Text:      text,
		ImageURL:  imageURL,
		CreatedAt: time.Now().UTC(),
	}
}
