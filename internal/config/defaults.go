package config

const (
	defaultHTTPAddr       = ":9980"
	defaultPollIntervalMS = 3000
	defaultTimeoutSeconds = 15
	defaultDraftPath      = "data/orderdesk.db"
	defaultAuditPath      = "data/audit.db"
)

func (c *Config) applyDefaults() {
	if c.App.Env == "" {
		c.App.Env = "dev"
	}
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.App.HTTPAddr == "" {
		c.App.HTTPAddr = defaultHTTPAddr
	}
	if c.Gateway.TimeoutSeconds <= 0 {
		c.Gateway.TimeoutSeconds = defaultTimeoutSeconds
	}
	if c.Gateway.SearchRatePerSec <= 0 {
		c.Gateway.SearchRatePerSec = 5
	}
	if c.Gateway.SearchBurst <= 0 {
		c.Gateway.SearchBurst = 3
	}
	if c.Poll.IntervalMS <= 0 {
		c.Poll.IntervalMS = defaultPollIntervalMS
	}
	if c.Store.DraftPath == "" {
		c.Store.DraftPath = defaultDraftPath
	}
	if c.Store.AuditPath == "" {
		c.Store.AuditPath = defaultAuditPath
	}
}
