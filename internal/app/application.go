package app

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
)

// Application wires the durable storage, the root state container and the
// reply producer together. Consumers receive it explicitly; nothing here is
// a package-level singleton.
type Application struct {
	Config  Config
	Logger  *zap.Logger
	Storage *Storage
	Store   *Store
	Replies *ReplyProducer
}

func NewApplication(cfg Config, log *zap.Logger) (*Application, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, err
	}
	storage := NewStorage(NewFileMedium(filepath.Join(cfg.DataDir, "storage"), cfg.StorageQuota), log)
	store := NewStore(storage, log)
	return &Application{
		Config:  cfg,
		Logger:  log,
		Storage: storage,
		Store:   store,
		Replies: NewReplyProducer(store, cfg.ReplyConfig(), log),
	}, nil
}

// ThemePreference returns the stored theme string, empty when unset.
func (a *Application) ThemePreference() string {
	return LoadFromStorage(a.Storage, themeKey, "")
}

func (a *Application) SaveThemePreference(mode string) {
	SaveToStorage(a.Storage, themeKey, mode)
}

// Reset discards the persisted snapshot and theme preference.
func (a *Application) Reset() {
	a.Storage.Remove(stateKey)
	a.Storage.Remove(themeKey)
}

// Close cancels outstanding timers and flushes the log. Pending replies are
// lost, not resumed.
func (a *Application) Close() {
	a.Replies.CancelAll()
	_ = a.Logger.Sync()
}
