package app

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"
)

type ReplyConfig struct {
	// MinDelay/MaxDelay bound the simulated network+inference latency:
	// uniform in [MinDelay, MaxDelay).
	MinDelay time.Duration
	MaxDelay time.Duration
	// CooldownRelease is how long after a delivered reply further replies
	// stay suppressed.
	CooldownRelease time.Duration
}

func DefaultReplyConfig() ReplyConfig {
	return ReplyConfig{
		MinDelay:        1200 * time.Millisecond,
		MaxDelay:        2400 * time.Millisecond,
		CooldownRelease: 800 * time.Millisecond,
	}
}

// ReplyProducer simulates the remote assistant. Sending a user message
// schedules a templated reply after a randomized delay, unless the cooldown
// window is active, in which case the message is stored but no reply is
// triggered. Every timer is cancelable: rooms cancel on deletion, everything
// cancels on logout or shutdown. Pending replies do not survive the process.
type ReplyProducer struct {
	store *Store
	cfg   ReplyConfig
	log   *zap.Logger

	mu       sync.Mutex
	rng      *rand.Rand
	pending  map[string]*time.Timer
	cooldown bool
	release  *time.Timer
}

func NewReplyProducer(store *Store, cfg ReplyConfig, log *zap.Logger) *ReplyProducer {
	def := DefaultReplyConfig()
	if cfg.MinDelay <= 0 {
		cfg.MinDelay = def.MinDelay
	}
	if cfg.MaxDelay <= cfg.MinDelay {
		cfg.MaxDelay = cfg.MinDelay + (def.MaxDelay - def.MinDelay)
	}
	if cfg.CooldownRelease <= 0 {
		cfg.CooldownRelease = def.CooldownRelease
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ReplyProducer{
		store:   store,
		cfg:     cfg,
		log:     log,
		rng:     rand.New(rand.NewSource(time.Now().UnixNano())),
		pending: make(map[string]*time.Timer),
	}
}

// Send stores the outgoing user message and, outside the cooldown window,
// schedules the simulated reply. The stored user message is returned.
func (p *ReplyProducer) Send(roomID, text, imageURL string) ChatMessage {
	msg := NewMessage(roomID, SenderUser, text, imageURL)
	p.store.AddMessage(roomID, msg)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cooldown {
		p.log.Debug("reply suppressed by cooldown", zap.String("room", roomID))
		return msg
	}
	p.cooldown = true
	delay := p.cfg.MinDelay + time.Duration(p.rng.Int63n(int64(p.cfg.MaxDelay-p.cfg.MinDelay)))
	p.pending[roomID] = time.AfterFunc(delay, func() {
		p.deliver(roomID, text)
	})
	p.log.Debug("reply scheduled", zap.String("room", roomID), zap.Duration("delay", delay))
	return msg
}

// Pending reports whether a reply is still scheduled for the room. The TUI
// uses this for its typing indicator.
func (p *ReplyProducer) Pending(roomID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, ok := p.pending[roomID]
	return ok
}

// CancelRoom stops the room's scheduled reply, if any. Called on room
// deletion: a reply must not land in a deleted room's recreated list.
func (p *ReplyProducer) CancelRoom(roomID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if t, ok := p.pending[roomID]; ok {
		if t.Stop() {
			p.cooldown = false
		}
		delete(p.pending, roomID)
	}
}

// CancelAll stops every scheduled reply and the cooldown release timer.
// Called on logout and on shutdown.
func (p *ReplyProducer) CancelAll() {
	p.mu.Lock()
	defer p.mu.Unlock()
	for id, t := range p.pending {
		t.Stop()
		delete(p.pending, id)
	}
	if p.release != nil {
		p.release.Stop()
		p.release = nil
	}
	p.cooldown = false
}

func (p *ReplyProducer) deliver(roomID, text string) {
	p.mu.Lock()
	delete(p.pending, roomID)
	p.mu.Unlock()

	p.store.AddMessage(roomID, NewMessage(roomID, SenderAssistant, replyText(text), ""))

	p.mu.Lock()
	defer p.mu.Unlock()
	p.release = time.AfterFunc(p.cfg.CooldownRelease, func() {
		p.mu.Lock()
		p.cooldown = false
		p.release = nil
		p.mu.Unlock()
	})
}

func replyText(text string) string {
	if text == "" {
		return "Nice image! What would you like to know about it?"
	}
	return fmt.Sprintf("You said: %s. Here's a thoughtful response.", text)
}
