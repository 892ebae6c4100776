package metrics

import "github.com/danktimes/dankgo/dankgo/plugins"

// GameListener bridges game events into Prometheus counters.
type GameListener struct {
	plugins.BaseListener
}

func (GameListener) Name() string { return "metrics" }

func (GameListener) OnPostScoreChange(ev *plugins.PostScoreChangeEvent) {
	if ev.Change > 0 {
		CalloutsScored.Inc()
	}
}
