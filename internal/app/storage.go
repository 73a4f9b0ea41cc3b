package app

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrQuotaExceeded is returned by a Medium when a write would overflow its
// size budget. Storage absorbs it like every other write failure.
var ErrQuotaExceeded = errors.New("storage quota exceeded")

// Medium is the process-external string KV that Storage writes through: a
// size-bounded, shared medium in the spirit of browser localStorage.
type Medium interface {
	GetItem(key string) (string, bool)
	SetItem(key, value string) error
	RemoveItem(key string)
}

// FileMedium keeps one file per key under Dir. Quota bounds the total byte
// size of all stored values; zero means unlimited.
type FileMedium struct {
	Dir   string
	Quota int64

	mu sync.Mutex
}

func NewFileMedium(dir string, quota int64) *FileMedium {
	return &FileMedium{Dir: dir, Quota: quota}
}

func (m *FileMedium) path(key string) string {
	return filepath.Join(m.Dir, sanitizeKey(key)+".json")
}

// sanitizeKey keeps keys filename-safe. Callers use fixed prefixed names, so
// this only matters for hostile or accidental input.
func sanitizeKey(key string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		case r == '-' || r == '_' || r == '.':
			return r
		default:
			return '_'
		}
	}, key)
}

func (m *FileMedium) GetItem(key string) (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, err := os.ReadFile(m.path(key))
	if err != nil {
		return "", false
	}
	return string(b), true
}

func (m *FileMedium) SetItem(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Quota > 0 {
		used, err := m.usedExcluding(key)
		if err == nil && used+int64(len(value)) > m.Quota {
			return ErrQuotaExceeded
		}
	}
	if err := os.MkdirAll(m.Dir, 0o755); err != nil {
		return err
	}
	return os.WriteFile(m.path(key), []byte(value), 0o644)
}

func (m *FileMedium) RemoveItem(key string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_ = os.Remove(m.path(key))
}

func (m *FileMedium) usedExcluding(key string) (int64, error) {
	ents, err := os.ReadDir(m.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return 0, nil
		}
		return 0, err
	}
	skip := sanitizeKey(key) + ".json"
	var total int64
	for _, e := range ents {
		if e.IsDir() || e.Name() == skip {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		total += info.Size()
	}
	return total, nil
}

const storagePrefix = "cli_chat_v1_"

// Storage is the durable store adapter: JSON values under namespaced keys.
// Failures never reach the caller; saves are dropped and loads fall back,
// trading durability for availability.
type Storage struct {
	medium Medium
	prefix string
	log    *zap.Logger
}

func NewStorage(medium Medium, log *zap.Logger) *Storage {
	if log == nil {
		log = zap.NewNop()
	}
	return &Storage{medium: medium, prefix: storagePrefix, log: log}
}

func (s *Storage) Remove(key string) {
	s.medium.RemoveItem(s.prefix + key)
}

// SaveToStorage serializes value and writes it under the namespaced key.
// Any failure (marshal, quota, IO) is logged and absorbed.
func SaveToStorage[T any](s *Storage, key string, value T) {
	data, err := json.Marshal(value)
	if err != nil {
		s.log.Debug("storage save dropped", zap.String("key", key), zap.Error(err))
		return
	}
	if err := s.medium.SetItem(s.prefix+key, string(data)); err != nil {
		s.log.Debug("storage write dropped", zap.String("key", key), zap.Error(err))
	}
}

// LoadFromStorage deserializes the stored value, or returns fallback on any
// failure: missing key, corrupt JSON, unavailable medium.
func LoadFromStorage[T any](s *Storage, key string, fallback T) T {
	raw, ok := s.medium.GetItem(s.prefix + key)
	if !ok || strings.TrimSpace(raw) == "" {
		return fallback
	}
	var out T
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		s.log.Debug("storage load fell back", zap.String("key", key), zap.Error(err))
		return fallback
	}
	return out
}
