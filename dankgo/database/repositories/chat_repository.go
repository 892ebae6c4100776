package repositories

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/uptrace/bun"

	"github.com/danktimes/dankgo/dankgo/database/models"
)

// ChatRepository persists chat snapshots. A snapshot save replaces the
// chat's child rows wholesale inside one transaction; partial chats are
// never observable.
type ChatRepository interface {
	GetAllChats(ctx context.Context) ([]*models.Chat, error)
	GetUsers(ctx context.Context, chatID int64) ([]*models.ChatUser, error)
	GetDankTimes(ctx context.Context, chatID int64) ([]*models.DankTime, error)
	GetSettings(ctx context.Context, chatID int64) ([]*models.ChatSetting, error)
	SaveChat(ctx context.Context, chat *models.Chat, users []*models.ChatUser, dankTimes []*models.DankTime, settings []*models.ChatSetting) error
	Delete(ctx context.Context, chatID int64) error
}

type chatRepository struct {
	db *bun.DB
}

func NewChatRepository(db *bun.DB) ChatRepository {
	return &chatRepository{db: db}
}

func (r *chatRepository) GetAllChats(ctx context.Context) ([]*models.Chat, error) {
	var chats []*models.Chat
	err := r.db.NewSelect().
		Model(&chats).
		Order("id ASC").
		Scan(ctx)
	if err != nil {
		slog.Error("Failed to load chats",
			slog.String("type", "db"),
			slog.String("operation", "GetAllChats"),
			slog.Any("error", err))
		return nil, err
	}
	return chats, nil
}

func (r *chatRepository) GetUsers(ctx context.Context, chatID int64) ([]*models.ChatUser, error) {
	var users []*models.ChatUser
	err := r.db.NewSelect().
		Model(&users).
		Where("chat_id = ?", chatID).
		Order("score DESC", "name ASC").
		Scan(ctx)
	return users, err
}

func (r *chatRepository) GetDankTimes(ctx context.Context, chatID int64) ([]*models.DankTime, error) {
	var dankTimes []*models.DankTime
	err := r.db.NewSelect().
		Model(&dankTimes).
		Where("chat_id = ?", chatID).
		Order("hour ASC", "minute ASC").
		Scan(ctx)
	return dankTimes, err
}

func (r *chatRepository) GetSettings(ctx context.Context, chatID int64) ([]*models.ChatSetting, error) {
	var settings []*models.ChatSetting
	err := r.db.NewSelect().
		Model(&settings).
		Where("chat_id = ?", chatID).
		Order("name ASC").
		Scan(ctx)
	return settings, err
}

func (r *chatRepository) SaveChat(ctx context.Context, chat *models.Chat, users []*models.ChatUser, dankTimes []*models.DankTime, settings []*models.ChatSetting) error {
	chat.UpdatedAt = time.Now()

	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().
			Model(chat).
			On("CONFLICT (id) DO UPDATE").
			Set("timezone = EXCLUDED.timezone").
			Set("running = EXCLUDED.running").
			Set("last_hour = EXCLUDED.last_hour").
			Set("last_minute = EXCLUDED.last_minute").
			Set("updated_at = EXCLUDED.updated_at").
			Exec(ctx); err != nil {
			return fmt.Errorf("upsert chat %d: %w", chat.ID, err)
		}

		for _, model := range []interface{}{
			(*models.ChatUser)(nil),
			(*models.DankTime)(nil),
			(*models.ChatSetting)(nil),
		} {
			if _, err := tx.NewDelete().
				Model(model).
				Where("chat_id = ?", chat.ID).
				Exec(ctx); err != nil {
				return fmt.Errorf("clear chat %d children: %w", chat.ID, err)
			}
		}

		if len(users) > 0 {
			if _, err := tx.NewInsert().Model(&users).Exec(ctx); err != nil {
				return fmt.Errorf("insert chat %d users: %w", chat.ID, err)
			}
		}
		if len(dankTimes) > 0 {
			if _, err := tx.NewInsert().Model(&dankTimes).Exec(ctx); err != nil {
				return fmt.Errorf("insert chat %d dank times: %w", chat.ID, err)
			}
		}
		if len(settings) > 0 {
			if _, err := tx.NewInsert().Model(&settings).Exec(ctx); err != nil {
				return fmt.Errorf("insert chat %d settings: %w", chat.ID, err)
			}
		}
		return nil
	})
}

func (r *chatRepository) Delete(ctx context.Context, chatID int64) error {
	return r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		for _, model := range []interface{}{
			(*models.ChatUser)(nil),
			(*models.DankTime)(nil),
			(*models.ChatSetting)(nil),
		} {
			if _, err := tx.NewDelete().
				Model(model).
				Where("chat_id = ?", chatID).
				Exec(ctx); err != nil {
				return err
			}
		}
		_, err := tx.NewDelete().
			Model((*models.Chat)(nil)).
			Where("id = ?", chatID).
			Exec(ctx)
		return err
	})
}
