package migration

// Legacy document shapes as stored by the original bot. Field names match
// the Mongo documents, not our models; converters.go maps between them.

type MongoChat struct {
	ID                 int64           `bson:"id"`
	Timezone           string          `bson:"timezone"`
	Running            bool            `bson:"running"`
	LastHour           int             `bson:"lastHour"`
	LastMinute         int             `bson:"lastMinute"`
	Users              []MongoUser     `bson:"users"`
	DankTimes          []MongoDankTime `bson:"dankTimes"`
	Multiplier         float64         `bson:"multiplier"`
	AutoLeaderboards   *bool           `bson:"autoLeaderboards"`
	Notifications      *bool           `bson:"notifications"`
	HardcoreMode       *bool           `bson:"hardcoremode"`
	Handicaps          *bool           `bson:"handicaps"`
	FirstNotifications *bool           `bson:"firstNotifications"`
	PunishUntimely     *bool           `bson:"punishhorriblereminders"`
	RandomtimesFreq    int             `bson:"numberOfRandomTimes"`
	RandomtimesPoints  int             `bson:"pointsPerRandomTime"`
}

type MongoUser struct {
	ID        int64  `bson:"id"`
	Name      string `bson:"name"`
	Score     int    `bson:"score"`
	LastScore int64  `bson:"lastScoreTimestamp"`
	Called    bool   `bson:"called"`
}

type MongoDankTime struct {
	Hour   int      `bson:"hour"`
	Minute int      `bson:"minute"`
	Texts  []string `bson:"texts"`
	Points int      `bson:"points"`
}
