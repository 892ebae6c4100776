package migration

import (
	"strconv"

	"github.com/danktimes/dankgo/dankgo/database/models"
	"github.com/danktimes/dankgo/dankgo/game/settings"
)

func convertChat(mc MongoChat) *models.Chat {
	tz := mc.Timezone
	if tz == "" {
		tz = "UTC"
	}
	lastHour, lastMinute := mc.LastHour, mc.LastMinute
	if lastHour < 0 || lastHour > 23 || lastMinute < 0 || lastMinute > 59 {
		lastHour, lastMinute = -1, -1
	}
	return &models.Chat{
		ID:         mc.ID,
		Timezone:   tz,
		Running:    mc.Running,
		LastHour:   lastHour,
		LastMinute: lastMinute,
	}
}

func convertUsers(mc MongoChat) []*models.ChatUser {
	seen := make(map[int64]bool, len(mc.Users))
	users := make([]*models.ChatUser, 0, len(mc.Users))
	for _, mu := range mc.Users {
		if mu.ID == 0 || seen[mu.ID] {
			continue
		}
		seen[mu.ID] = true
		score := mu.Score
		if score < 0 {
			score = 0
		}
		users = append(users, &models.ChatUser{
			ChatID:             mc.ID,
			UserID:             mu.ID,
			Name:               mu.Name,
			Score:              score,
			LastScoreTimestamp: mu.LastScore,
		})
	}
	return users
}

func convertDankTimes(mc MongoChat) []*models.DankTime {
	type key struct{ h, m int }
	seen := make(map[key]bool, len(mc.DankTimes))
	dankTimes := make([]*models.DankTime, 0, len(mc.DankTimes))
	for _, md := range mc.DankTimes {
		if md.Hour < 0 || md.Hour > 23 || md.Minute < 0 || md.Minute > 59 {
			continue
		}
		if len(md.Texts) == 0 || md.Points < 1 {
			continue
		}
		k := key{md.Hour, md.Minute}
		if seen[k] {
			continue
		}
		seen[k] = true
		dankTimes = append(dankTimes, &models.DankTime{
			ChatID: mc.ID,
			Hour:   md.Hour,
			Minute: md.Minute,
			Texts:  md.Texts,
			Points: md.Points,
		})
	}
	return dankTimes
}

// convertSettings lifts the legacy chat's loose fields into the named
// settings the bot uses now. Only fields the document actually carried
// become rows; everything else falls back to defaults at restore.
func convertSettings(mc MongoChat) []*models.ChatSetting {
	out := make([]*models.ChatSetting, 0, 8)
	add := func(name, value string) {
		out = append(out, &models.ChatSetting{ChatID: mc.ID, Name: name, Value: value})
	}
	addBool := func(name string, v *bool) {
		if v != nil {
			add(name, strconv.FormatBool(*v))
		}
	}

	if mc.Multiplier >= 1 && mc.Multiplier <= 10 {
		add(settings.FirstMultiplier, strconv.FormatFloat(mc.Multiplier, 'f', -1, 64))
	}
	addBool(settings.AutoLeaderboards, mc.AutoLeaderboards)
	addBool(settings.SendNotifications, mc.Notifications)
	addBool(settings.HardcoreMode, mc.HardcoreMode)
	addBool(settings.Handicaps, mc.Handicaps)
	addBool(settings.FirstNotifications, mc.FirstNotifications)
	addBool(settings.PunishUntimelyDankTime, mc.PunishUntimely)
	if mc.RandomtimesFreq >= 0 && mc.RandomtimesFreq <= 24 {
		add(settings.RandomTimesFrequency, strconv.Itoa(mc.RandomtimesFreq))
	}
	if mc.RandomtimesPoints >= 1 && mc.RandomtimesPoints <= 10000 {
		add(settings.RandomTimesPoints, strconv.Itoa(mc.RandomtimesPoints))
	}
	return out
}
