package config

// Config is the on-disk configuration.
type Config struct {
	Version  int            `yaml:"version"`
	LLM      LLMConfig      `yaml:"llm"`
	Device   DeviceConfig   `yaml:"device"`
	Telegram TelegramConfig `yaml:"telegram"`
	History  HistoryConfig  `yaml:"history"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Log      LogConfig      `yaml:"log"`
}

type LLMConfig struct {
	APIKey          string `yaml:"api_key"`
	BaseURL         string `yaml:"base_url"`
	Model           string `yaml:"model"`
	MaxSteps        int    `yaml:"max_steps"`
	ImageCapability *bool  `yaml:"image_capability"`
	Stream          *bool  `yaml:"stream"`
	RequestTimeout  string `yaml:"request_timeout"`
}

type DeviceConfig struct {
	Backend      string `yaml:"backend"`
	ADBPath      string `yaml:"adb_path"`
	Serial       string `yaml:"serial"`
	LaunchSettle string `yaml:"launch_settle"`
}

type TelegramConfig struct {
	Token        string  `yaml:"token"`
	PollTimeout  string  `yaml:"poll_timeout"`
	EditInterval string  `yaml:"edit_interval"`
	AllowedChats []int64 `yaml:"allowed_chats"`
}

type HistoryConfig struct {
	Path string `yaml:"path"`
}

type MetricsConfig struct {
	Addr string `yaml:"addr"`
}

type LogConfig struct {
	Level string `yaml:"level"`
}

// Device backends.
const (
	BackendADB  = "adb"
	BackendNone = "none"
)

// Built-in defaults for the non-LLM sections.
const (
	DefaultBackend      = BackendADB
	DefaultADBPath      = "adb"
	DefaultLaunchSettle = "2s"
	DefaultPollTimeout  = "30s"
	DefaultEditInterval = "2s"
	DefaultHistoryPath  = ".phoneclaw/history.duckdb"
	DefaultLogLevel     = "info"
)
