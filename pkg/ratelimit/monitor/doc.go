// Package monitor reports the state of a limiter.Set on a cron schedule.
//
//	r, err := monitor.New(set, "@every 30s", monitor.WithLogger(logger), monitor.WithMetrics(reg))
//	if err != nil {
//		return err
//	}
//	r.Start()
//	defer r.Stop()
//
// Schedules use robfig/cron syntax with an optional seconds field.
package monitor
