package migration

import (
	"bufio"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/danktimes/dankgo/dankgo/database/repositories"
)

// Migrator imports chats from the original bot's MongoDB store, either a
// live database or a raw chats.bson dump. Broken chat documents are
// skipped and logged; import is idempotent because SaveChat replaces.
type Migrator struct {
	repo    repositories.ChatRepository
	mongoDB *mongo.Database

	imported int
	skipped  int
}

func NewMigrator(repo repositories.ChatRepository) *Migrator {
	return &Migrator{repo: repo}
}

// UseMongo enables direct-from-Mongo migration mode.
func (m *Migrator) UseMongo(ctx context.Context, uri, dbName string) error {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}
	m.mongoDB = client.Database(dbName)
	return nil
}

// MigrateFromMongo imports every chat document from the live database.
func (m *Migrator) MigrateFromMongo(ctx context.Context) error {
	if m.mongoDB == nil {
		return fmt.Errorf("mongoDB not configured; call UseMongo first")
	}

	start := time.Now()
	slog.Info("Starting legacy chat migration from MongoDB",
		slog.String("type", "db"))

	cur, err := m.mongoDB.Collection("chats").Find(ctx, bson.D{})
	if err != nil {
		return fmt.Errorf("failed to query chats: %w", err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var mc MongoChat
		if err := cur.Decode(&mc); err != nil {
			m.skipped++
			slog.Warn("Skipping undecodable chat document",
				slog.String("type", "db"),
				slog.Any("error", err))
			continue
		}
		m.importChat(ctx, mc)
	}
	if err := cur.Err(); err != nil {
		return fmt.Errorf("chats cursor failed: %w", err)
	}

	m.logFinalStats(time.Since(start))
	return nil
}

// MigrateFromDump imports chats from a mongodump chats.bson file, for
// migrating without a reachable legacy database.
func (m *Migrator) MigrateFromDump(ctx context.Context, path string) error {
	start := time.Now()
	slog.Info("Starting legacy chat migration from BSON dump",
		slog.String("type", "db"),
		slog.String("path", path))

	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open BSON dump: %w", err)
	}
	defer file.Close()

	reader := bufio.NewReader(file)
	for {
		doc, err := readBSONDocument(reader)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to read BSON document: %w", err)
		}

		var mc MongoChat
		if err := bson.Unmarshal(doc, &mc); err != nil {
			m.skipped++
			slog.Warn("Skipping undecodable chat document",
				slog.String("type", "db"),
				slog.Any("error", err))
			continue
		}
		m.importChat(ctx, mc)
	}

	m.logFinalStats(time.Since(start))
	return nil
}

// Each BSON document starts with an int32 little-endian total length that
// includes the length prefix itself.
func readBSONDocument(reader *bufio.Reader) ([]byte, error) {
	lengthBytes := make([]byte, 4)
	if _, err := io.ReadFull(reader, lengthBytes); err != nil {
		return nil, err
	}

	length := int32(binary.LittleEndian.Uint32(lengthBytes))
	if length < 5 {
		return nil, fmt.Errorf("invalid document length: %d", length)
	}

	doc := make([]byte, length)
	copy(doc, lengthBytes)
	if _, err := io.ReadFull(reader, doc[4:]); err != nil {
		return nil, fmt.Errorf("truncated document: %w", err)
	}
	return doc, nil
}

func (m *Migrator) importChat(ctx context.Context, mc MongoChat) {
	if mc.ID == 0 {
		m.skipped++
		slog.Warn("Skipping chat document without id", slog.String("type", "db"))
		return
	}

	err := m.repo.SaveChat(ctx,
		convertChat(mc),
		convertUsers(mc),
		convertDankTimes(mc),
		convertSettings(mc))
	if err != nil {
		m.skipped++
		slog.Error("Failed to import chat",
			slog.String("type", "db"),
			slog.Int64("chat_id", mc.ID),
			slog.Any("error", err))
		return
	}
	m.imported++
}

func (m *Migrator) logFinalStats(took time.Duration) {
	slog.Info("Legacy chat migration completed",
		slog.String("type", "db"),
		slog.Int("imported", m.imported),
		slog.Int("skipped", m.skipped),
		slog.Duration("took", took))
}
