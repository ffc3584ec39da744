package config

import "github.com/spf13/viper"

// setDefaults applies the lowest-precedence configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("logging.level", "INFO")
	v.SetDefault("logging.format", "text")
	v.SetDefault("logging.output", "stderr")

	v.SetDefault("session.host", "localhost")
	v.SetDefault("session.port", 9898)
	v.SetDefault("session.role", "initiator")
	v.SetDefault("session.heartbeat_period", 30)
	v.SetDefault("session.logon_timeout", 0)

	v.SetDefault("journal.backend", "sqlite")
	v.SetDefault("journal.path", "fixlink-journal.db")

	v.SetDefault("metrics.enabled", false)
	v.SetDefault("metrics.port", 9090)
}
