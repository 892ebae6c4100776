package plugins

import (
	"fmt"
	"log/slog"
	"sync"
)

// Listener is the plugin callback surface. Embed BaseListener to only
// implement the hooks a plugin cares about.
type Listener interface {
	Name() string
	OnMessage(ev *MessageEvent)
	OnPreScoreChange(ev *PreScoreChangeEvent)
	OnPostScoreChange(ev *PostScoreChangeEvent)
	OnPreDankTime(ev *DankTimeEvent)
	OnPostDankTime(ev *DankTimeEvent)
	OnLeaderboard(ev *LeaderboardEvent)
	OnShutdown()
}

// BaseListener is a no-op Listener.
type BaseListener struct{}

func (BaseListener) OnMessage(*MessageEvent)                 {}
func (BaseListener) OnPreScoreChange(*PreScoreChangeEvent)   {}
func (BaseListener) OnPostScoreChange(*PostScoreChangeEvent) {}
func (BaseListener) OnPreDankTime(*DankTimeEvent)            {}
func (BaseListener) OnPostDankTime(*DankTimeEvent)           {}
func (BaseListener) OnLeaderboard(*LeaderboardEvent)         {}
func (BaseListener) OnShutdown()                             {}

// Host owns the registered plugin listeners. Registration is append-only
// and only allowed before Freeze; after that the listener set is shared by
// reference with every chat and must not change.
type Host struct {
	mu        sync.RWMutex
	frozen    bool
	listeners []Listener
}

func NewHost() *Host {
	return &Host{}
}

func (h *Host) Register(l Listener) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.frozen {
		return fmt.Errorf("plugin registration is closed, cannot register %q", l.Name())
	}
	h.listeners = append(h.listeners, l)
	slog.Info("Plugin registered", slog.String("plugin", l.Name()))
	return nil
}

// Freeze closes the registration phase. Called once, after all plugins are
// registered and before any chat is created.
func (h *Host) Freeze() {
	h.mu.Lock()
	h.frozen = true
	h.mu.Unlock()
}

func (h *Host) FireMessage(ev *MessageEvent) {
	for _, l := range h.snapshot() {
		l.OnMessage(ev)
	}
}

func (h *Host) FirePreScoreChange(ev *PreScoreChangeEvent) {
	for _, l := range h.snapshot() {
		l.OnPreScoreChange(ev)
	}
}

func (h *Host) FirePostScoreChange(ev *PostScoreChangeEvent) {
	for _, l := range h.snapshot() {
		l.OnPostScoreChange(ev)
	}
}

func (h *Host) FirePreDankTime(ev *DankTimeEvent) {
	for _, l := range h.snapshot() {
		l.OnPreDankTime(ev)
	}
}

func (h *Host) FirePostDankTime(ev *DankTimeEvent) {
	for _, l := range h.snapshot() {
		l.OnPostDankTime(ev)
	}
}

func (h *Host) FireLeaderboard(ev *LeaderboardEvent) {
	for _, l := range h.snapshot() {
		l.OnLeaderboard(ev)
	}
}

func (h *Host) FireShutdown() {
	for _, l := range h.snapshot() {
		l.OnShutdown()
	}
}

func (h *Host) snapshot() []Listener {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.listeners
}
