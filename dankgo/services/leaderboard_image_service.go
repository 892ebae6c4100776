package services

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"log/slog"
	"strings"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/danktimes/dankgo/dankgo/game"
)

const imageMaxEntries = 10

// LeaderboardImageService renders a leaderboard as a PNG via headless
// Chrome. Text leaderboards stay the default; images are opt-in per
// command because generation costs ~1s.
type LeaderboardImageService struct {
	logger *slog.Logger
	tmpl   *template.Template
}

type leaderboardTemplateData struct {
	Title     string
	Timestamp string
	Entries   []game.LeaderboardEntry
}

func NewLeaderboardImageService() *LeaderboardImageService {
	service := &LeaderboardImageService{
		logger: slog.With(slog.String("service", "leaderboard_image")),
		tmpl: template.Must(template.New("leaderboard").Funcs(template.FuncMap{
			"add": func(a, b int) int { return a + b },
		}).Parse(leaderboardHTML)),
	}

	service.testChromedpAvailability()

	return service
}

func (s *LeaderboardImageService) testChromedpAvailability() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	chromedpCtx, cancel := chromedp.NewContext(ctx)
	defer cancel()

	err := chromedp.Run(chromedpCtx, chromedp.Navigate("data:text/html,<html><body>test</body></html>"))
	if err != nil {
		s.logger.Error("chromedp not available - image generation will fail",
			slog.String("error", err.Error()))
	} else {
		s.logger.Info("chromedp is available and working")
	}
}

// GenerateImage renders the given entries to a PNG screenshot.
func (s *LeaderboardImageService) GenerateImage(ctx context.Context, title string, entries []game.LeaderboardEntry) ([]byte, error) {
	start := time.Now()

	if len(entries) == 0 {
		return nil, fmt.Errorf("no leaderboard entries provided")
	}
	if len(entries) > imageMaxEntries {
		entries = entries[:imageMaxEntries]
	}

	data := leaderboardTemplateData{
		Title:     title,
		Timestamp: time.Now().Format("15:04 MST"),
		Entries:   entries,
	}

	htmlContent, err := s.generateHTML(data)
	if err != nil {
		return nil, fmt.Errorf("failed to generate HTML: %w", err)
	}

	chromedpCtx, cancel := chromedp.NewContext(ctx, chromedp.WithLogf(func(string, ...interface{}) {}))
	defer cancel()

	chromedpCtx, cancel = context.WithTimeout(chromedpCtx, 15*time.Second)
	defer cancel()

	var imageBytes []byte
	err = chromedp.Run(chromedpCtx,
		chromedp.Navigate("data:text/html,"+htmlContent),
		chromedp.WaitVisible("#leaderboard-container", chromedp.ByID),
		chromedp.Sleep(500*time.Millisecond),
		chromedp.Screenshot("#leaderboard-container", &imageBytes, chromedp.ByID),
	)
	if err != nil {
		s.logger.Error("Failed to generate image with chromedp",
			slog.String("error", err.Error()),
			slog.Duration("elapsed", time.Since(start)))
		return nil, fmt.Errorf("failed to generate image: %w", err)
	}

	s.logger.Info("Leaderboard image generated",
		slog.Int("entries", len(entries)),
		slog.Int("image_size", len(imageBytes)),
		slog.Duration("elapsed", time.Since(start)))

	return imageBytes, nil
}

func (s *LeaderboardImageService) generateHTML(data leaderboardTemplateData) (string, error) {
	var buf bytes.Buffer
	if err := s.tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	// data: URLs choke on raw # and newlines.
	htmlContent := strings.ReplaceAll(buf.String(), "#", "%23")
	htmlContent = strings.ReplaceAll(htmlContent, "\n", "")
	return htmlContent, nil
}

const leaderboardHTML = `<!DOCTYPE html>
<html>
<head>
<style>
  body { margin: 0; background: #1e1f22; font-family: 'Segoe UI', Arial, sans-serif; }
  #leaderboard-container { width: 480px; padding: 24px; background: linear-gradient(160deg, #2b2d31, #1e1f22); color: #f2f3f5; }
  .title { font-size: 22px; font-weight: 700; margin-bottom: 4px; }
  .timestamp { font-size: 12px; color: #949ba4; margin-bottom: 16px; }
  .row { display: flex; align-items: center; padding: 8px 12px; margin-bottom: 6px; background: rgba(255,255,255,0.04); border-radius: 8px; }
  .row.top { background: rgba(240,178,50,0.15); }
  .rank { width: 36px; font-size: 18px; font-weight: 700; color: #f0b232; }
  .name { flex: 1; font-size: 15px; }
  .change { width: 48px; font-size: 13px; text-align: right; }
  .change.up { color: #57f287; }
  .change.down { color: #ed4245; }
  .score { width: 72px; font-size: 16px; font-weight: 600; text-align: right; }
</style>
</head>
<body>
<div id="leaderboard-container">
  <div class="title">{{.Title}}</div>
  <div class="timestamp">{{.Timestamp}}</div>
  {{range $i, $e := .Entries}}
  <div class="row{{if eq $i 0}} top{{end}}">
    <div class="rank">{{add $i 1}}</div>
    <div class="name">{{$e.Name}}</div>
    <div class="change{{if gt $e.Change 0}} up{{else if lt $e.Change 0}} down{{end}}">{{if gt $e.Change 0}}+{{end}}{{if $e.Change}}{{$e.Change}}{{end}}</div>
    <div class="score">{{$e.Score}}</div>
  </div>
  {{end}}
</div>
</body>
</html>`
