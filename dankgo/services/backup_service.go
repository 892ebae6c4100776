package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/danktimes/dankgo/dankgo/game"
)

const defaultBackupInterval = 6 * time.Hour

// BackupService uploads periodic JSON snapshots of every chat to a
// Spaces bucket. Backups are a safety net over Postgres, not a restore
// path the bot reads itself.
type BackupService struct {
	client *s3.Client
	bucket string
	chats  *game.Registry
	logger *slog.Logger
}

func NewBackupService(spacesKey, spacesSecret, region, bucket string, chats *game.Registry) (*BackupService, error) {
	resolver := aws.EndpointResolverWithOptionsFunc(func(service, region string, options ...interface{}) (aws.Endpoint, error) {
		return aws.Endpoint{
			URL: fmt.Sprintf("https://%s.digitaloceanspaces.com", region),
		}, nil
	})

	cfg, err := config.LoadDefaultConfig(context.TODO(),
		config.WithEndpointResolverWithOptions(resolver),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(spacesKey, spacesSecret, "")),
		config.WithRegion(region),
	)
	if err != nil {
		return nil, fmt.Errorf("unable to load Spaces config: %w", err)
	}

	return &BackupService{
		client: s3.NewFromConfig(cfg),
		bucket: bucket,
		chats:  chats,
		logger: slog.With(slog.String("service", "backup")),
	}, nil
}

// Backup snapshots every chat and uploads them as a single JSON object
// keyed by timestamp.
func (s *BackupService) Backup(ctx context.Context) error {
	start := time.Now()

	snapshots := make([]game.Snapshot, 0, s.chats.Len())
	for _, c := range s.chats.All() {
		snapshots = append(snapshots, c.Snapshot())
	}

	payload, err := json.MarshalIndent(snapshots, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal backup: %w", err)
	}

	key := fmt.Sprintf("backups/chats-%s.json", start.UTC().Format("2006-01-02T15-04-05"))
	contentType := "application/json"
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(payload),
		ContentType: &contentType,
	})
	if err != nil {
		s.logger.Error("Backup upload failed",
			slog.String("key", key),
			slog.Any("error", err))
		return fmt.Errorf("upload backup %s: %w", key, err)
	}

	s.logger.Info("Backup uploaded",
		slog.String("key", key),
		slog.Int("chats", len(snapshots)),
		slog.Int("bytes", len(payload)),
		slog.Duration("took", time.Since(start)))
	return nil
}

// Run uploads backups on a fixed interval until ctx is done.
func (s *BackupService) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = defaultBackupInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Backup(ctx); err != nil {
				s.logger.Error("Scheduled backup failed", slog.Any("error", err))
			}
		}
	}
}
