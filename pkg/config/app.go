package config

import "time"

var AppVersion = "DEVELOPMENT"

const (
	AppName           = "glowclock"
	UserDbFile        = "user.db"
	LegacyStateFile   = "state.db"
	LogFile           = "core.log"
	PidFile           = "core.pid"
	CfgFile           = "config.toml"
	APIRequestTimeout = 30 * time.Second
)
