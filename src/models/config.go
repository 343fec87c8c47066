package models

// MConfig Structure
type MConfig struct {
	Name     string         `yaml:"name"`
	Host     string         `yaml:"host"`
	Port     int            `yaml:"port"`
	LogLevel string         `yaml:"log_level"`
	Storage  MStorageConfig `yaml:"storage"`
	Network  MNetworkConfig `yaml:"network"`
	Feed     MFeedConfig    `yaml:"feed"`
	Market   MMarketConfig  `yaml:"market"`
	Data     MDataConfig    `yaml:"data"`
}

type MStorageConfig struct {
	DBType             string `yaml:"db_type"` // "json", "sqlite" or "postgres"
	DBPath             string `yaml:"db_path"`
	DBConnectionString string `yaml:"db_connection_string"`
}

type MNetworkConfig struct {
	RequestTimeout int    `yaml:"timeout"`
	MaxRetries     int    `yaml:"retries"`
	UserAgent      string `yaml:"user_agent"`
}

type MFeedConfig struct {
	URL             string `yaml:"url"`
	CacheTTLMinutes int    `yaml:"cache_ttl_minutes"`
}

type MMarketConfig struct {
	TickIntervalSeconds int     `yaml:"tick_interval_seconds"`
	RetentionLimit      int     `yaml:"retention_limit"` // max samples kept per ticker
	DefaultPrice        float64 `yaml:"default_price"`
	BackfillDays        int     `yaml:"backfill_days"`
	Calendar            string  `yaml:"calendar"` // MIC code (e.g. "xnys") or "simple"
	OpenHour            int     `yaml:"open_hour"`
	CloseHour           int     `yaml:"close_hour"`
}

type MDataConfig struct {
	AuthorsFile string `yaml:"authors_file"`
	UsersFile   string `yaml:"users_file"`
}
