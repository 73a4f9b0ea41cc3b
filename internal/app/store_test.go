package app

import (
	"reflect"
	"strings"
	"testing"
)

func newTestStore(t *testing.T) (*Store, *Storage) {
	t.Helper()
	storage := NewStorage(NewFileMedium(t.TempDir(), 0), nil)
	return NewStore(storage, nil), storage
}

func TestCreateRoomOrderingIsMostRecentFirst(t *testing.T) {
	s, _ := newTestStore(t)

	a := NewChatroom("first")
	b := NewChatroom("second")
	c := NewChatroom("third")
	s.CreateRoom(a)
	s.CreateRoom(b)
	s.CreateRoom(c)

	rooms := s.Snapshot().Chat.Rooms
	want := []string{c.ID, b.ID, a.ID}
	got := []string{rooms[0].ID, rooms[1].ID, rooms[2].ID}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("room order mismatch: got %v, want %v", got, want)
	}
	for _, r := range rooms {
		if s.Snapshot().Chat.ByRoomID[r.ID] == nil {
			t.Fatalf("expected message list initialized for room %s", r.ID)
		}
	}
}

func TestFirstUserMessageSetsTitleOnce(t *testing.T) {
	s, _ := newTestStore(t)
	room := NewChatroom("New chat")
	s.CreateRoom(room)

	text := "Hello world this is a long message exceeding sixty characters for sure"
	s.AddMessage(room.ID, NewMessage(room.ID, SenderUser, text, ""))

	got, _ := s.Room(room.ID)
	want := string([]rune(text)[:60])
	if got.Title != want {
		t.Fatalf("title mismatch: got %q, want %q", got.Title, want)
	}

	s.AddMessage(room.ID, NewMessage(room.ID, SenderUser, "second", ""))
	got, _ = s.Room(room.ID)
	if got.Title != want {
		t.Fatalf("title changed on second user message: got %q", got.Title)
	}
}

func TestAssistantWelcomeDoesNotBlockTitle(t *testing.T) {
	s, _ := newTestStore(t)
	room := NewChatroom("New chat")
	s.CreateRoom(room)

	s.AddMessage(room.ID, NewMessage(room.ID, SenderAssistant, "Hello! Ask me anything.", ""))
	s.AddMessage(room.ID, NewMessage(room.ID, SenderUser, "trip planning", ""))

	got, _ := s.Room(room.ID)
	if got.Title != "trip planning" {
		t.Fatalf("expected first user message to retitle past the welcome, got %q", got.Title)
	}
}

func TestImageOnlyFirstMessageTitlesImage(t *testing.T) {
	s, _ := newTestStore(t)
	room := NewChatroom("New chat")
	s.CreateRoom(room)

	s.AddMessage(room.ID, NewMessage(room.ID, SenderUser, "", "x"))

	got, _ := s.Room(room.ID)
	if got.Title != "Image" {
		t.Fatalf("expected title Image, got %q", got.Title)
	}
}

func TestEmptyFirstMessageLeavesTitle(t *testing.T) {
	s, _ := newTestStore(t)
	room := NewChatroom("New chat")
	s.CreateRoom(room)

	s.AddMessage(room.ID, NewMessage(room.ID, SenderUser, "   ", ""))

	got, _ := s.Room(room.ID)
	if got.Title != "New chat" {
		t.Fatalf("expected title unchanged, got %q", got.Title)
	}
}

func TestDeleteRoomCascadesAndNeverResurrects(t *testing.T) {
	s, _ := newTestStore(t)
	room := NewChatroom("doomed")
	s.CreateRoom(room)
	s.AddMessage(room.ID, NewMessage(room.ID, SenderUser, "hi", ""))

	s.DeleteRoom(room.ID)

	snap := s.Snapshot()
	if len(snap.Chat.Rooms) != 0 {
		t.Fatalf("expected no rooms, got %d", len(snap.Chat.Rooms))
	}
	if _, ok := snap.Chat.ByRoomID[room.ID]; ok {
		t.Fatalf("expected message list discarded with the room")
	}

	// A message under the stale id is tolerated (created-on-demand list)
	// but must not bring the room back.
	s.AddMessage(room.ID, NewMessage(room.ID, SenderAssistant, "late reply", ""))
	snap = s.Snapshot()
	if len(snap.Chat.Rooms) != 0 {
		t.Fatalf("stale-id message resurrected the room")
	}
	if len(snap.Chat.ByRoomID[room.ID]) != 1 {
		t.Fatalf("expected stale-id message stored, got %d", len(snap.Chat.ByRoomID[room.ID]))
	}
}

func TestAuthTransitionsLeaveChatAlone(t *testing.T) {
	s, _ := newTestStore(t)
	room := NewChatroom("kept")
	s.CreateRoom(room)

	s.LoginSucceeded(AuthUser{CountryCode: "+44", Phone: "7700900123"})
	snap := s.Snapshot()
	if !snap.Auth.Authenticated() || snap.Auth.User == nil {
		t.Fatalf("expected signed-in state, got %+v", snap.Auth)
	}
	if snap.Auth.User.CountryCode != "+44" || snap.Auth.User.Phone != "7700900123" {
		t.Fatalf("unexpected user: %+v", snap.Auth.User)
	}

	s.Logout()
	snap = s.Snapshot()
	if snap.Auth.Authenticated() || snap.Auth.User != nil {
		t.Fatalf("expected signed-out state, got %+v", snap.Auth)
	}
	if len(snap.Chat.Rooms) != 1 {
		t.Fatalf("logout must not touch chat data")
	}
}

func TestRehydrationRestoresSnapshot(t *testing.T) {
	s, storage := newTestStore(t)
	room := NewChatroom("persisted")
	s.CreateRoom(room)
	s.AddMessage(room.ID, NewMessage(room.ID, SenderUser, "remember me", ""))
	s.LoginSucceeded(AuthUser{CountryCode: "+1", Phone: "5551234"})
	want := s.Snapshot()

	restored := NewStore(storage, nil)
	got := restored.Snapshot()
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("rehydrated snapshot mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestRehydrationMigratesPartialSnapshot(t *testing.T) {
	medium := NewFileMedium(t.TempDir(), 0)
	storage := NewStorage(medium, nil)

	// A stale shape missing the chat key entirely, written before the
	// version tag existed.
	raw := `{"auth":{"isAuthenticated":true,"user":{"countryCode":"+1","phone":"5551234"}}}`
	if err := medium.SetItem(storagePrefix+stateKey, raw); err != nil {
		t.Fatal(err)
	}

	s := NewStore(storage, nil)
	snap := s.Snapshot()
	if snap.Version != StateVersion {
		t.Fatalf("expected version %d, got %d", StateVersion, snap.Version)
	}
	if snap.Chat.Rooms == nil || snap.Chat.ByRoomID == nil {
		t.Fatalf("expected empty chat defaults, got %+v", snap.Chat)
	}
	if !snap.Auth.Authenticated() {
		t.Fatalf("expected auth carried over")
	}
}

func TestAuthFlagFollowsUserPresence(t *testing.T) {
	medium := NewFileMedium(t.TempDir(), 0)
	storage := NewStorage(medium, nil)

	// A snapshot where the stored flag disagrees with the identity: user
	// presence wins.
	raw := `{"version":1,"auth":{"isAuthenticated":true,"user":null},"chat":{"rooms":[],"byRoomId":{}}}`
	if err := medium.SetItem(storagePrefix+stateKey, raw); err != nil {
		t.Fatal(err)
	}

	s := NewStore(storage, nil)
	if s.Snapshot().Auth.Authenticated() {
		t.Fatalf("expected flag derived from user presence")
	}
}

func TestSubscribersSeeEveryIntent(t *testing.T) {
	s, _ := newTestStore(t)

	var seen []int
	s.Subscribe(func(st RootState) {
		seen = append(seen, len(st.Chat.Rooms))
	})

	s.CreateRoom(NewChatroom("one"))
	s.CreateRoom(NewChatroom("two"))
	s.Logout()

	if !reflect.DeepEqual(seen, []int{1, 2, 2}) {
		t.Fatalf("unexpected notifications: %v", seen)
	}
}

func TestSnapshotIsDeepCopy(t *testing.T) {
	s, _ := newTestStore(t)
	room := NewChatroom("guarded")
	s.CreateRoom(room)

	snap := s.Snapshot()
	snap.Chat.Rooms[0].Title = strings.Repeat("x", 10)
	snap.Chat.ByRoomID[room.ID] = append(snap.Chat.ByRoomID[room.ID], ChatMessage{ID: "rogue"})

	got, _ := s.Room(room.ID)
	if got.Title != "guarded" {
		t.Fatalf("snapshot mutation leaked into the store")
	}
	if len(s.RoomMessages(room.ID)) != 0 {
		t.Fatalf("snapshot mutation leaked into message lists")
	}
}
