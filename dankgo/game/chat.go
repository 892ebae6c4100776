package game

import (
	"fmt"
	"math"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/disgoorg/snowflake/v2"

	"github.com/danktimes/dankgo/dankgo/game/settings"
	"github.com/danktimes/dankgo/dankgo/plugins"
	"github.com/danktimes/dankgo/dankgo/timezone"
)

const staleAfter = 24 * time.Hour

// Chat owns one group chat's scoring state: its users, dank times and
// settings. Every mutation path locks mu; message handling and timer jobs
// run on separate goroutines and must never observe partial state.
type Chat struct {
	mu sync.Mutex

	ID       snowflake.ID
	running  bool
	settings *settings.Store
	events   *plugins.Host

	users           map[snowflake.ID]*User
	dankTimes       []*DankTime // sorted by (hour, minute), unique
	randomDankTimes []*DankTime // replaced wholesale once a day

	// The currently open window; -1/-1 until the first one opens.
	lastHour   int
	lastMinute int
	// Scorers of the open window in arrival order, for the post-callout
	// follow-up.
	scorers []snowflake.ID

	lastLeaderboard *Leaderboard

	now  func() time.Time
	rand *rand.Rand
}

func NewChat(id snowflake.ID, registry *settings.Registry, events *plugins.Host) *Chat {
	return &Chat{
		ID:         id,
		running:    false,
		settings:   registry.NewStore(),
		events:     events,
		users:      make(map[snowflake.ID]*User),
		lastHour:   -1,
		lastMinute: -1,
		now:        time.Now,
		rand:       rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Settings exposes the chat's setting store; the store does its own
// locking so live reads from timer goroutines are safe.
func (c *Chat) Settings() *settings.Store { return c.settings }

func (c *Chat) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.running
}

func (c *Chat) Start() {
	c.mu.Lock()
	c.running = true
	c.mu.Unlock()
}

func (c *Chat) Stop() {
	c.mu.Lock()
	c.running = false
	c.mu.Unlock()
}

// Location resolves the chat's configured time zone. A broken zone is a
// per-chat error, never a reason to crash a batch.
func (c *Chat) Location() (*time.Location, error) {
	return timezone.Load(c.settings.String(settings.Timezone))
}

// ProcessMessage runs the scoring state machine for one inbound message and
// returns any reply lines to post back to the chat.
func (c *Chat) ProcessMessage(userID snowflake.ID, userName, text string, sentAt time.Time) []string {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running {
		return nil
	}

	user := c.ensureUser(userID, userName)

	c.events.FireMessage(&plugins.MessageEvent{ChatID: c.ID, UserID: userID, Text: text})

	candidates := c.matchingDankTimes(text)
	if len(candidates) == 0 {
		return nil
	}

	loc, err := c.Location()
	if err != nil {
		return nil
	}
	now := c.now().In(loc)
	msgLocal := sentAt.In(loc)

	for _, d := range candidates {
		// The chat-local wall clock counts, and so does the message's own
		// send time: a delivery-lagged message is still timely.
		if matchesMinute(now, d) || matchesMinute(msgLocal, d) {
			return c.scoreDankTime(user, d, now)
		}
	}

	if c.settings.Bool(settings.PunishUntimelyDankTime) {
		worst := 0
		for _, d := range candidates {
			if pts := c.pointsOf(d); pts > worst {
				worst = pts
			}
		}
		c.alterScore(user, -worst, time.Time{})
	}
	return nil
}

func matchesMinute(t time.Time, d *DankTime) bool {
	return t.Hour() == d.Hour && t.Minute() == d.Minute
}

func (c *Chat) scoreDankTime(user *User, d *DankTime, now time.Time) []string {
	pts := c.pointsOf(d)
	handicapped := c.isHandicapped(user)
	var replies []string

	switch {
	case d.Hour != c.lastHour || d.Minute != c.lastMinute:
		// A new window opens: everyone may score again.
		for _, u := range c.users {
			u.Called = false
		}
		c.lastHour, c.lastMinute = d.Hour, d.Minute
		c.scorers = c.scorers[:0]

		award := scale(pts, c.settings.Float64(settings.FirstMultiplier))
		if handicapped {
			award = scale(pts, c.settings.Float64(settings.HandicapsMultiplier))
		}
		c.alterScore(user, award, now)
		user.Called = true
		c.scorers = append(c.scorers, user.ID)

		if c.settings.Bool(settings.FirstNotifications) {
			replies = append(replies, fmt.Sprintf("%s was the first to score!", user.Name))
		}

	case !user.Called:
		award := pts
		if handicapped {
			award = scale(pts, c.settings.Float64(settings.HandicapsMultiplier))
		}
		c.alterScore(user, award, now)
		user.Called = true
		c.scorers = append(c.scorers, user.ID)

	default:
		// Calling out twice in the same window costs the points it was
		// worth.
		c.alterScore(user, -pts, time.Time{})
	}
	return replies
}

func scale(points int, multiplier float64) int {
	return int(math.Round(float64(points) * multiplier))
}

// alterScore is the single score mutation entry point: plugin pre-hook,
// zero clamp, delta accumulation, conditional activity timestamp, plugin
// post-hook with the delta that actually landed.
func (c *Chat) alterScore(user *User, delta int, ts time.Time) int {
	pre := &plugins.PreScoreChangeEvent{ChatID: c.ID, UserID: user.ID, Change: delta}
	c.events.FirePreScoreChange(pre)
	delta = pre.Change

	newScore := user.score + delta
	if newScore < 0 {
		newScore = 0
	}
	actual := newScore - user.score
	user.score = newScore
	user.lastScoreChange += actual
	if actual > 0 && !ts.IsZero() {
		user.LastScoreTimestamp = ts.Unix()
	}

	c.events.FirePostScoreChange(&plugins.PostScoreChangeEvent{
		ChatID: c.ID,
		UserID: user.ID,
		Change: actual,
		Score:  user.score,
	})
	return actual
}

func (c *Chat) ensureUser(id snowflake.ID, name string) *User {
	u, ok := c.users[id]
	if !ok {
		u = newUser(id, name)
		c.users[id] = u
	}
	u.Name = name
	return u
}

func (c *Chat) matchingDankTimes(text string) []*DankTime {
	var out []*DankTime
	for _, d := range c.dankTimes {
		if d.HasText(text) {
			out = append(out, d)
		}
	}
	for _, d := range c.randomDankTimes {
		if d.HasText(text) {
			out = append(out, d)
		}
	}
	return out
}

func (c *Chat) pointsOf(d *DankTime) int {
	if d.pointsSetting != "" {
		if v := c.settings.Int(d.pointsSetting); v >= minPoints && v <= maxPoints {
			return v
		}
	}
	return d.points
}

// isHandicapped reports whether user sits in the bottom fraction of the
// ranking. Needs at least two users to mean anything.
func (c *Chat) isHandicapped(user *User) bool {
	if !c.settings.Bool(settings.Handicaps) || len(c.users) < 2 {
		return false
	}
	ranked := c.rankedUsers()
	cut := int(math.Round(float64(len(ranked)) * c.settings.Float64(settings.HandicapsBottomFraction)))
	for _, u := range ranked[len(ranked)-cut:] {
		if u.ID == user.ID {
			return true
		}
	}
	return false
}

func (c *Chat) rankedUsers() []*User {
	ranked := make([]*User, 0, len(c.users))
	for _, u := range c.users {
		ranked = append(ranked, u)
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].score != ranked[j].score {
			return ranked[i].score > ranked[j].score
		}
		return ranked[i].Name < ranked[j].Name
	})
	return ranked
}

// HardcoreModeCheck punishes every user whose last positive score change is
// a day or more ago. Driven by the nightly batch, never by messages.
func (c *Chat) HardcoreModeCheck(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.settings.Bool(settings.HardcoreMode) {
		return
	}
	fraction := c.settings.Float64(settings.HardcoreModePunishFraction)
	for _, u := range c.users {
		if u.score <= 0 {
			continue
		}
		if now.Unix()-u.LastScoreTimestamp < int64(staleAfter/time.Second) {
			continue
		}
		punishment := int(math.Round(float64(u.score) * fraction))
		if punishment < 10 {
			punishment = 10
		}
		c.alterScore(u, -punishment, time.Time{})
	}
}

// GenerateRandomDankTimes replaces the chat's random set for the day. An
// offset colliding with an existing (hour, minute) drops that iteration, so
// fewer entries than the configured frequency can come out.
func (c *Chat) GenerateRandomDankTimes() []*DankTime {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.randomDankTimes = c.randomDankTimes[:0]
	loc, err := c.Location()
	if err != nil {
		return nil
	}

	frequency := c.settings.Int(settings.RandomTimesFrequency)
	points := c.settings.Int(settings.RandomTimesPoints)
	for i := 0; i < frequency; i++ {
		t := c.now().In(loc).Add(
			time.Duration(c.rand.Intn(24))*time.Hour +
				time.Duration(c.rand.Intn(60))*time.Minute)
		hour, minute := t.Hour(), t.Minute()
		if c.hasDankTimeAt(hour, minute) {
			continue
		}
		text := fmt.Sprintf("%02d%02d", hour, minute)
		d, err := newRandomDankTime(hour, minute, []string{text}, settings.RandomTimesPoints, points)
		if err != nil {
			continue
		}
		c.randomDankTimes = append(c.randomDankTimes, d)
	}
	return copyDankTimes(c.randomDankTimes)
}

func (c *Chat) hasDankTimeAt(hour, minute int) bool {
	for _, d := range c.dankTimes {
		if d.Hour == hour && d.Minute == minute {
			return true
		}
	}
	for _, d := range c.randomDankTimes {
		if d.Hour == hour && d.Minute == minute {
			return true
		}
	}
	return false
}

// AddDankTime inserts a normal dank time, replacing any prior entry with
// the same (hour, minute).
func (c *Chat) AddDankTime(hour, minute int, texts []string, points int) error {
	d, err := NewDankTime(hour, minute, texts, points)
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, existing := range c.dankTimes {
		if existing.Hour == hour && existing.Minute == minute {
			c.dankTimes[i] = d
			return nil
		}
	}
	c.dankTimes = append(c.dankTimes, d)
	sortDankTimes(c.dankTimes)
	return nil
}

// RemoveDankTime removes the normal entry at (hour, minute), reporting
// whether one existed.
func (c *Chat) RemoveDankTime(hour, minute int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, d := range c.dankTimes {
		if d.Hour == hour && d.Minute == minute {
			c.dankTimes = append(c.dankTimes[:i], c.dankTimes[i+1:]...)
			return true
		}
	}
	return false
}

func (c *Chat) DankTimes() []*DankTime {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyDankTimes(c.dankTimes)
}

func (c *Chat) RandomDankTimes() []*DankTime {
	c.mu.Lock()
	defer c.mu.Unlock()
	return copyDankTimes(c.randomDankTimes)
}

func copyDankTimes(ts []*DankTime) []*DankTime {
	out := make([]*DankTime, len(ts))
	copy(out, ts)
	return out
}

// DankTimePoints resolves what d is worth right now, following the
// setting reference for random dank times.
func (c *Chat) DankTimePoints(d *DankTime) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.pointsOf(d)
}

// IsOpenWindow reports whether (hour, minute) is still the chat's open,
// credited window.
func (c *Chat) IsOpenWindow(hour, minute int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastHour == hour && c.lastMinute == minute
}

// ScorerNames returns the open window's scorers in arrival order.
func (c *Chat) ScorerNames() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	names := make([]string, 0, len(c.scorers))
	for _, id := range c.scorers {
		if u, ok := c.users[id]; ok {
			names = append(names, u.Name)
		}
	}
	return names
}

// Leaderboard renders the current standings against the previous snapshot,
// rotates the snapshot and resets every user's pending delta.
func (c *Chat) Leaderboard() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	board := newLeaderboard(c.rankedUsers())
	text := board.Render(c.lastLeaderboard)
	c.lastLeaderboard = board
	for _, u := range c.users {
		u.lastScoreChange = 0
	}

	c.events.FireLeaderboard(&plugins.LeaderboardEvent{ChatID: c.ID, Text: text})
	return text
}

// LeaderboardEntries returns the current ranked snapshot without rotating
// state, for renderers that need structured rows.
func (c *Chat) LeaderboardEntries() []LeaderboardEntry {
	c.mu.Lock()
	defer c.mu.Unlock()
	board := newLeaderboard(c.rankedUsers())
	out := make([]LeaderboardEntry, len(board.Entries))
	copy(out, board.Entries)
	return out
}

// ResetScores renders the final standings, then wipes all users and the
// open window. Dank times and settings survive a reset.
func (c *Chat) ResetScores() string {
	c.mu.Lock()
	defer c.mu.Unlock()

	board := newLeaderboard(c.rankedUsers())
	text := board.Render(c.lastLeaderboard)

	c.users = make(map[snowflake.ID]*User)
	c.scorers = nil
	c.lastLeaderboard = nil
	c.lastHour = -1
	c.lastMinute = -1

	c.events.FireLeaderboard(&plugins.LeaderboardEvent{ChatID: c.ID, Text: text})
	return text
}

// SetSetting parses, validates and commits a setting value; the error is
// user-facing.
func (c *Chat) SetSetting(name, raw string) error {
	return c.settings.Set(name, raw)
}
