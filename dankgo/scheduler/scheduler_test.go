package scheduler

import (
	"testing"
	"time"

	"github.com/disgoorg/snowflake/v2"
	"go.uber.org/mock/gomock"

	"github.com/danktimes/dankgo/dankgo/game"
	"github.com/danktimes/dankgo/dankgo/game/settings"
	"github.com/danktimes/dankgo/dankgo/plugins"
	"github.com/danktimes/dankgo/dankgo/transport/mock"
)

const testChatID = snowflake.ID(4242)

// newTestScheduler pins the clock to early morning so every armed timer
// is hours away and never fires during the test.
func newTestScheduler(t *testing.T) (*Scheduler, *game.Registry) {
	t.Helper()
	events := plugins.NewHost()
	events.Freeze()
	chats := game.NewRegistry(settings.NewDefaultRegistry(), events)
	s := New(chats, mock.NewMockTransport(gomock.NewController(t)), events)
	s.now = func() time.Time {
		return time.Date(2026, 8, 29, 1, 0, 0, 0, time.UTC)
	}
	t.Cleanup(s.Reset)
	return s, chats
}

func newRunningChat(t *testing.T, chats *game.Registry, times ...[2]int) *game.Chat {
	t.Helper()
	c := chats.GetOrCreate(testChatID)
	c.Start()
	for _, hm := range times {
		if err := c.AddDankTime(hm[0], hm[1], []string{"dank"}, 10); err != nil {
			t.Fatalf("AddDankTime(%d, %d) error = %v", hm[0], hm[1], err)
		}
	}
	return c
}

func TestUntilNext(t *testing.T) {
	now := time.Date(2026, 8, 29, 13, 0, 30, 0, time.UTC)

	tests := []struct {
		name   string
		hour   int
		minute int
		want   time.Duration
	}{
		{name: "later today", hour: 13, minute: 37, want: 36*time.Minute + 30*time.Second},
		{name: "already passed rolls to tomorrow", hour: 12, minute: 0, want: 22*time.Hour + 59*time.Minute + 30*time.Second},
		{name: "this exact minute rolls to tomorrow", hour: 13, minute: 0, want: 24*time.Hour - 30*time.Second},
		{name: "midnight", hour: 0, minute: 0, want: 10*time.Hour + 59*time.Minute + 30*time.Second},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := untilNext(now, tt.hour, tt.minute); got != tt.want {
				t.Errorf("untilNext(%02d:%02d) = %v, want %v", tt.hour, tt.minute, got, tt.want)
			}
		})
	}
}

func TestScheduleAllOfChat(t *testing.T) {
	s, chats := newTestScheduler(t)
	c := newRunningChat(t, chats, [2]int{13, 37}, [2]int{16, 20})
	c.Settings().Set(settings.RandomTimesFrequency, "3")
	c.GenerateRandomDankTimes()

	s.ScheduleAllOfChat(c)

	normal, random := s.Len()
	if normal != 2 {
		t.Errorf("normal timers = %d, want 2", normal)
	}
	if random != len(c.RandomDankTimes()) {
		t.Errorf("random timers = %d, want %d", random, len(c.RandomDankTimes()))
	}
}

func TestScheduleAllOfChat_StoppedChatArmsNothing(t *testing.T) {
	s, chats := newTestScheduler(t)
	c := newRunningChat(t, chats, [2]int{13, 37})
	c.Stop()

	s.ScheduleAllOfChat(c)

	if normal, random := s.Len(); normal != 0 || random != 0 {
		t.Errorf("stopped chat armed %d/%d timers, want 0/0", normal, random)
	}
}

func TestScheduleDankTime_ReplacesExistingSlot(t *testing.T) {
	s, chats := newTestScheduler(t)
	c := newRunningChat(t, chats, [2]int{13, 37})
	d := c.DankTimes()[0]

	s.ScheduleDankTime(c, d)
	s.ScheduleDankTime(c, d)

	if normal, _ := s.Len(); normal != 1 {
		t.Errorf("normal timers after re-schedule = %d, want 1", normal)
	}
}

func TestUnscheduleDankTime(t *testing.T) {
	s, chats := newTestScheduler(t)
	c := newRunningChat(t, chats, [2]int{13, 37}, [2]int{16, 20})
	s.ScheduleAllOfChat(c)

	s.UnscheduleDankTime(c.ID, 13, 37)
	if normal, _ := s.Len(); normal != 1 {
		t.Errorf("normal timers after unschedule = %d, want 1", normal)
	}

	// Unscheduling again, or unscheduling something never armed, is a no-op.
	s.UnscheduleDankTime(c.ID, 13, 37)
	s.UnscheduleDankTime(c.ID, 5, 5)
	s.UnscheduleRandomDankTime(c.ID, 16, 20)
	if normal, random := s.Len(); normal != 1 || random != 0 {
		t.Errorf("timers after repeated unschedule = %d/%d, want 1/0", normal, random)
	}
}

func TestUnscheduleAllOfChat(t *testing.T) {
	s, chats := newTestScheduler(t)
	c := newRunningChat(t, chats, [2]int{13, 37})
	c.Settings().Set(settings.RandomTimesFrequency, "2")
	c.GenerateRandomDankTimes()
	s.ScheduleAllOfChat(c)

	other := chats.GetOrCreate(snowflake.ID(9999))
	other.Start()
	if err := other.AddDankTime(16, 20, []string{"420"}, 10); err != nil {
		t.Fatalf("AddDankTime() error = %v", err)
	}
	s.ScheduleAllOfChat(other)

	s.UnscheduleAllOfChat(c.ID)

	if normal, random := s.Len(); normal != 1 || random != 0 {
		t.Errorf("timers after UnscheduleAllOfChat = %d/%d, want 1/0", normal, random)
	}
}

func TestReset(t *testing.T) {
	s, chats := newTestScheduler(t)
	c := newRunningChat(t, chats, [2]int{13, 37}, [2]int{16, 20})
	c.Settings().Set(settings.RandomTimesFrequency, "2")
	c.GenerateRandomDankTimes()
	s.ScheduleAllOfChat(c)

	s.Reset()

	if normal, random := s.Len(); normal != 0 || random != 0 {
		t.Errorf("timers after Reset = %d/%d, want 0/0", normal, random)
	}
}
