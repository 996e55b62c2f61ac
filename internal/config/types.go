package config

// Config is the orderdesk main configuration carrier.
type Config struct {
	App     AppConfig     `mapstructure:"app"`
	Gateway GatewayConfig `mapstructure:"gateway"`
	Poll    PollConfig    `mapstructure:"poll"`
	Store   StoreConfig   `mapstructure:"store"`
}

type AppConfig struct {
	Env      string `mapstructure:"env"`
	LogLevel string `mapstructure:"log_level"`
	HTTPAddr string `mapstructure:"http_addr"`
	LogPath  string `mapstructure:"log_path"`
}

// GatewayConfig describes how to reach the broker router.
type GatewayConfig struct {
	BaseURL            string `mapstructure:"base_url"`
	APIToken           string `mapstructure:"api_token"`
	Username           string `mapstructure:"username"`
	Password           string `mapstructure:"password"`
	TimeoutSeconds     int    `mapstructure:"timeout_seconds"`
	InsecureSkipVerify bool   `mapstructure:"insecure_skip_verify"`
	// Symbol search is typed-ahead from the UI; the limiter keeps the router
	// from being hammered on every keystroke.
	SearchRatePerSec float64 `mapstructure:"search_rate_per_sec"`
	SearchBurst      int     `mapstructure:"search_burst"`
}

type PollConfig struct {
	IntervalMS int `mapstructure:"interval_ms"`
	// StartHidden keeps polling off until a surface reports itself visible.
	// Headless deployments leave this unset.
	StartHidden bool `mapstructure:"start_hidden"`
}

type StoreConfig struct {
	DraftPath string `mapstructure:"draft_path"`
	AuditPath string `mapstructure:"audit_path"`
}
