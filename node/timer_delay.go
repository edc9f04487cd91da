package node

import (
	"time"
)

// delayTimer suspends the execution for a configured interval. The sweep
// loop resumes it with the timeout output when the timer fires, so that is
// the node's only output.
type delayTimer struct {
	baseExecutor
	timers TimerScheduler
}

var _ Executor = new(delayTimer)

func NewDelayTimer(timers TimerScheduler) *delayTimer {
	return &delayTimer{
		baseExecutor: newBaseExecutor(map[string]FieldRule{
			"delay_seconds": {Type: "number"},
			"delay_minutes": {Type: "number"},
			"delay_hours":   {Type: "number"},
			"delay_days":    {Type: "number"},
		}),
		timers: timers,
	}
}

func (t *delayTimer) Outputs() []string {
	return []string{"timeout"}
}

func (t *delayTimer) Execute(bag *ContextBag, config map[string]any) Result {
	seconds, _ := cfgFloat(config, "delay_seconds")
	minutes, _ := cfgFloat(config, "delay_minutes")
	hours, _ := cfgFloat(config, "delay_hours")
	days, _ := cfgFloat(config, "delay_days")
	total := int(seconds + minutes*60 + hours*3600 + days*86400)
	if total <= 0 {
		return Failed("delay must be greater than zero")
	}
	fireAt := time.Now().Add(time.Duration(total) * time.Second)
	timerId, err := t.timers.Schedule(bag.ExecutionId(), cfgString(config, "node_id", ""), "delay", fireAt)
	if err != nil {
		return Failed(err.Error())
	}
	return Waiting("timer", total, map[string]any{
		"timer_id": timerId,
		"fire_at":  fireAt.UTC().Format(time.RFC3339),
	})
}
