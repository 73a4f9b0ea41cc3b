package app

import (
	"strings"
	"sync"

	"go.uber.org/zap"
)

const (
	stateKey = "state"
	themeKey = "theme_preference"
)

// Store is the root state container. It composes auth and chat state into one
// snapshot, applies intents under a mutex so no torn state is observable,
// rewrites the whole snapshot through Storage after every accepted intent,
// and notifies subscribers with a fresh copy.
//
// It is constructed explicitly and handed to consumers; there is no ambient
// global instance.
type Store struct {
	storage *Storage
	log     *zap.Logger

	mu        sync.Mutex
	state     RootState
	listeners []func(RootState)
}

// NewStore rehydrates the persisted snapshot, normalizing legacy or partial
// shapes instead of passing them downstream.
func NewStore(storage *Storage, log *zap.Logger) *Store {
	if log == nil {
		log = zap.NewNop()
	}
	st := migrateState(LoadFromStorage(storage, stateKey, RootState{}))
	log.Info("state rehydrated",
		zap.Int("version", st.Version),
		zap.Int("rooms", len(st.Chat.Rooms)),
		zap.Bool("authenticated", st.Auth.Authenticated()),
	)
	return &Store{storage: storage, log: log, state: st}
}

// migrateState fills empty defaults per top-level key for snapshots written
// before the version tag existed, or for a first run with no snapshot at all.
func migrateState(st RootState) RootState {
	if st.Chat.Rooms == nil {
		st.Chat.Rooms = []Chatroom{}
	}
	if st.Chat.ByRoomID == nil {
		st.Chat.ByRoomID = map[string][]ChatMessage{}
	}
	st.Version = StateVersion
	return st
}

// Subscribe registers fn to run after every applied intent with a snapshot
// copy. Subscribers must not assume any goroutine affinity.
func (s *Store) Subscribe(fn func(RootState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, fn)
}

// Snapshot returns a deep copy of the current state.
func (s *Store) Snapshot() RootState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneState(s.state)
}

// Room returns the room entry for id, if it is still listed.
func (s *Store) Room(id string) (Chatroom, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.state.Chat.Rooms {
		if r.ID == id {
			return r, true
		}
	}
	return Chatroom{}, false
}

// RoomMessages returns a copy of the room's message list, empty when the
// room has none (or does not exist).
func (s *Store) RoomMessages(roomID string) []ChatMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]ChatMessage(nil), s.state.Chat.ByRoomID[roomID]...)
}

// LoginSucceeded records the signed-in user. Field contents are not
// validated here; the OTP flow enforces format upstream.
func (s *Store) LoginSucceeded(user AuthUser) {
	s.apply(func(st *RootState) {
		u := user
		st.Auth.User = &u
	})
}

// Logout clears the signed-in user. Chat history is untouched and survives
// the next login.
func (s *Store) Logout() {
	s.apply(func(st *RootState) {
		st.Auth.User = nil
	})
}

// CreateRoom prepends room, keeping most-recently-created-first order.
// Callers supply unique IDs (uuids); collisions are not checked here.
func (s *Store) CreateRoom(room Chatroom) {
	s.apply(func(st *RootState) {
		st.Chat.Rooms = append([]Chatroom{room}, st.Chat.Rooms...)
		if _, ok := st.Chat.ByRoomID[room.ID]; !ok {
			st.Chat.ByRoomID[room.ID] = []ChatMessage{}
		}
	})
}

// DeleteRoom removes the room entry and discards its message list.
func (s *Store) DeleteRoom(roomID string) {
	s.apply(func(st *RootState) {
		rooms := make([]Chatroom, 0, len(st.Chat.Rooms))
		for _, r := range st.Chat.Rooms {
			if r.ID != roomID {
				rooms = append(rooms, r)
			}
		}
		st.Chat.Rooms = rooms
		delete(st.Chat.ByRoomID, roomID)
	})
}

// AddMessage appends msg to the room's list, creating the list on demand.
// Appending under a stale roomID is tolerated and never resurrects a deleted
// room in the rooms list.
//
// Title side effect: the first user-authored message in a room retitles it
// to the first 60 characters of the trimmed text, or "Image" for an
// image-only message. Later user messages never retitle.
func (s *Store) AddMessage(roomID string, msg ChatMessage) {
	s.apply(func(st *RootState) {
		existing := st.Chat.ByRoomID[roomID]
		firstUserMessage := msg.Sender == SenderUser
		if firstUserMessage {
			for _, m := range existing {
				if m.Sender == SenderUser {
					firstUserMessage = false
					break
				}
			}
		}
		st.Chat.ByRoomID[roomID] = append(existing, msg)
		if !firstUserMessage {
			return
		}
		for i := range st.Chat.Rooms {
			if st.Chat.Rooms[i].ID != roomID {
				continue
			}
			if title := proposedTitle(msg); title != "" {
				st.Chat.Rooms[i].Title = title
			}
			break
		}
	})
}

func proposedTitle(msg ChatMessage) string {
	title := strings.TrimSpace(msg.Text)
	if title == "" && msg.ImageURL != "" {
		title = "Image"
	}
	if r := []rune(title); len(r) > 60 {
		title = string(r[:60])
	}
	return title
}

func (s *Store) apply(mutate func(*RootState)) {
	s.mu.Lock()
	mutate(&s.state)
	SaveToStorage(s.storage, stateKey, s.state)
	snap := cloneState(s.state)
	listeners := append(([]func(RootState))(nil), s.listeners...)
	s.mu.Unlock()

	for _, fn := range listeners {
		fn(snap)
	}
}

func cloneState(st RootState) RootState {
	out := st
	if st.Auth.User != nil {
		u := *st.Auth.User
		out.Auth.User = &u
	}
	if st.Chat.Rooms != nil {
		out.Chat.Rooms = make([]Chatroom, len(st.Chat.Rooms))
		copy(out.Chat.Rooms, st.Chat.Rooms)
	}
	if st.Chat.ByRoomID != nil {
		out.Chat.ByRoomID = make(map[string][]ChatMessage, len(st.Chat.ByRoomID))
		for id, msgs := range st.Chat.ByRoomID {
			cp := msgs
			if msgs != nil {
				cp = make([]ChatMessage, len(msgs))
				copy(cp, msgs)
			}
			out.Chat.ByRoomID[id] = cp
		}
	}
	return out
}
