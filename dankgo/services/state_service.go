package services

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/danktimes/dankgo/dankgo/database/models"
	"github.com/danktimes/dankgo/dankgo/database/repositories"
	"github.com/danktimes/dankgo/dankgo/game"
	"github.com/danktimes/dankgo/dankgo/game/settings"
	"github.com/danktimes/dankgo/dankgo/plugins"
)

const defaultAutosaveInterval = 5 * time.Minute

// StateService moves chats between the in-memory registry and Postgres.
// The registry is the source of truth while the bot runs; the database is
// only written to, never read, after the startup restore.
type StateService struct {
	repo      repositories.ChatRepository
	chats     *game.Registry
	templates *settings.Registry
	events    *plugins.Host

	mu       sync.Mutex
	stopOnce sync.Once
	stop     chan struct{}
}

func NewStateService(repo repositories.ChatRepository, chats *game.Registry, templates *settings.Registry, events *plugins.Host) *StateService {
	return &StateService{
		repo:      repo,
		chats:     chats,
		templates: templates,
		events:    events,
		stop:      make(chan struct{}),
	}
}

// RestoreAll loads every persisted chat into the registry. A chat whose
// rows cannot be loaded is skipped with an error log; the rest restore.
func (s *StateService) RestoreAll(ctx context.Context) error {
	rows, err := s.repo.GetAllChats(ctx)
	if err != nil {
		return fmt.Errorf("load chats: %w", err)
	}

	restored := 0
	for _, row := range rows {
		snap, err := s.loadSnapshot(ctx, row)
		if err != nil {
			slog.Error("Failed to restore chat, skipping",
				slog.String("type", "db"),
				slog.Int64("chat_id", row.ID),
				slog.Any("error", err))
			continue
		}
		s.chats.Put(game.RestoreChat(snap, s.templates, s.events))
		restored++
	}

	slog.Info("Chat state restored",
		slog.String("type", "db"),
		slog.Int("chats", restored))
	return nil
}

func (s *StateService) loadSnapshot(ctx context.Context, row *models.Chat) (game.Snapshot, error) {
	snap := game.Snapshot{
		ID:         snowflake.ID(row.ID),
		Timezone:   row.Timezone,
		Running:    row.Running,
		LastHour:   row.LastHour,
		LastMinute: row.LastMinute,
		Settings:   make(map[string]string),
	}

	users, err := s.repo.GetUsers(ctx, row.ID)
	if err != nil {
		return snap, fmt.Errorf("load users: %w", err)
	}
	for _, u := range users {
		snap.Users = append(snap.Users, game.UserSnapshot{
			ID:                 snowflake.ID(u.UserID),
			Name:               u.Name,
			Score:              u.Score,
			LastScoreTimestamp: u.LastScoreTimestamp,
		})
	}

	dankTimes, err := s.repo.GetDankTimes(ctx, row.ID)
	if err != nil {
		return snap, fmt.Errorf("load dank times: %w", err)
	}
	for _, d := range dankTimes {
		snap.DankTimes = append(snap.DankTimes, game.DankTimeSnapshot{
			Hour:   d.Hour,
			Minute: d.Minute,
			Texts:  d.Texts,
			Points: d.Points,
		})
	}

	stored, err := s.repo.GetSettings(ctx, row.ID)
	if err != nil {
		return snap, fmt.Errorf("load settings: %w", err)
	}
	for _, st := range stored {
		snap.Settings[st.Name] = st.Value
	}
	return snap, nil
}

// SaveChat persists one chat's snapshot.
func (s *StateService) SaveChat(ctx context.Context, c *game.Chat) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.saveSnapshot(ctx, c.Snapshot())
}

// SaveAll persists every chat in the registry. Errors are counted, not
// fatal; one broken chat must not lose the rest on shutdown.
func (s *StateService) SaveAll(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := time.Now()
	failed := 0
	for _, c := range s.chats.All() {
		if err := s.saveSnapshot(ctx, c.Snapshot()); err != nil {
			slog.Error("Failed to save chat",
				slog.String("type", "db"),
				slog.String("chat_id", c.ID.String()),
				slog.Any("error", err))
			failed++
		}
	}

	slog.Info("Chat state saved",
		slog.String("type", "db"),
		slog.Int("chats", s.chats.Len()),
		slog.Int("failed", failed),
		slog.Duration("took", time.Since(start)))
	if failed > 0 {
		return fmt.Errorf("%d chats failed to save", failed)
	}
	return nil
}

func (s *StateService) saveSnapshot(ctx context.Context, snap game.Snapshot) error {
	chatID := int64(snap.ID)
	row := &models.Chat{
		ID:         chatID,
		Timezone:   snap.Timezone,
		Running:    snap.Running,
		LastHour:   snap.LastHour,
		LastMinute: snap.LastMinute,
	}
	if row.Timezone == "" {
		row.Timezone = "UTC"
	}

	users := make([]*models.ChatUser, 0, len(snap.Users))
	for _, u := range snap.Users {
		users = append(users, &models.ChatUser{
			ChatID:             chatID,
			UserID:             int64(u.ID),
			Name:               u.Name,
			Score:              u.Score,
			LastScoreTimestamp: u.LastScoreTimestamp,
		})
	}

	dankTimes := make([]*models.DankTime, 0, len(snap.DankTimes))
	for _, d := range snap.DankTimes {
		dankTimes = append(dankTimes, &models.DankTime{
			ChatID: chatID,
			Hour:   d.Hour,
			Minute: d.Minute,
			Texts:  d.Texts,
			Points: d.Points,
		})
	}

	stored := make([]*models.ChatSetting, 0, len(snap.Settings))
	for name, value := range snap.Settings {
		stored = append(stored, &models.ChatSetting{
			ChatID: chatID,
			Name:   name,
			Value:  value,
		})
	}

	return s.repo.SaveChat(ctx, row, users, dankTimes, stored)
}

// DeleteChat drops a chat from both the registry and the database, used
// when the transport reports the chat is gone.
func (s *StateService) DeleteChat(ctx context.Context, id snowflake.ID) error {
	s.chats.Remove(id)
	return s.repo.Delete(ctx, int64(id))
}

// StartAutosave persists all chats on a fixed interval until ctx is done
// or StopAutosave is called.
func (s *StateService) StartAutosave(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultAutosaveInterval
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-s.stop:
				return
			case <-ticker.C:
				if err := s.SaveAll(ctx); err != nil {
					slog.Error("Autosave incomplete",
						slog.String("type", "db"),
						slog.Any("error", err))
				}
			}
		}
	}()
}

func (s *StateService) StopAutosave() {
	s.stopOnce.Do(func() { close(s.stop) })
}
