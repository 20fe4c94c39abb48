package config

// Built-in job schedules, keyed by job name.
var CronSchedules = map[string]string{
	"cache:sweep": "@every 10m",
	"logs:prune":  "@daily",
}

// LogRetentionDays is how long daily log files are kept by logs:prune.
const LogRetentionDays = 30
