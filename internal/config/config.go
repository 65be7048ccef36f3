package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all hearth configuration.
type Config struct {
	Server   ServerConfig   `toml:"server" mapstructure:"server"`
	Database DatabaseConfig `toml:"database" mapstructure:"database"`
	Cloud    CloudConfig    `toml:"cloud" mapstructure:"cloud"`
	Soul     SoulConfig     `toml:"soul" mapstructure:"soul"`
	Offline  OfflineConfig  `toml:"offline" mapstructure:"offline"`
}

type ServerConfig struct {
	Bind string `toml:"bind" mapstructure:"bind"`
	Port int    `toml:"port" mapstructure:"port"`
}

type DatabaseConfig struct {
	Path string `toml:"path" mapstructure:"path"`
}

type CloudConfig struct {
	URL      string `toml:"url" mapstructure:"url"`
	Token    string `toml:"token" mapstructure:"token"`
	DeviceID string `toml:"device_id" mapstructure:"device_id"` // auto-provisioned when empty
	Agent    string `toml:"agent" mapstructure:"agent"`         // persona name, empty follows the soul
}

type SoulConfig struct {
	NVRAMPath     string `toml:"nvram_path" mapstructure:"nvram_path"` // binary record region
	FilePath      string `toml:"file_path" mapstructure:"file_path"`   // JSON fallback
	HeartbeatSecs int    `toml:"heartbeat_secs" mapstructure:"heartbeat_secs"`
	AutosaveSecs  int    `toml:"autosave_secs" mapstructure:"autosave_secs"`
	AutosyncMins  int    `toml:"autosync_mins" mapstructure:"autosync_mins"`
}

type OfflineConfig struct {
	QueueCapacity int `toml:"queue_capacity" mapstructure:"queue_capacity"`
}

// Default returns a Config with sensible defaults.
func Default() Config {
	return Config{
		Server: ServerConfig{
			Bind: "127.0.0.1",
			Port: 37878,
		},
		Database: DatabaseConfig{
			Path: "", // resolved at runtime via store.DefaultDBPath()
		},
		Cloud: CloudConfig{},
		Soul: SoulConfig{
			NVRAMPath:     "", // resolved at runtime under DataDir()
			FilePath:      "",
			HeartbeatSecs: 60,
			AutosaveSecs:  60,
			AutosyncMins:  30,
		},
		Offline: OfflineConfig{
			QueueCapacity: 50,
		},
	}
}

// DataDir returns the hearth data directory: ~/.hearth
func DataDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".hearth"), nil
}

// Load reads hearth.toml from the working directory or ~/.hearth,
// layered over defaults, with HEARTH_* environment overrides.
// A missing config file is not an error.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("hearth")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	if dir, err := DataDir(); err == nil {
		v.AddConfigPath(dir)
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// Config file not found; fall through to defaults
	}
	return load(v)
}

// LoadFrom reads configuration from an explicit file path.
func LoadFrom(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	def := Default()
	v.SetDefault("server.bind", def.Server.Bind)
	v.SetDefault("server.port", def.Server.Port)
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("cloud.url", def.Cloud.URL)
	v.SetDefault("cloud.token", def.Cloud.Token)
	v.SetDefault("cloud.device_id", def.Cloud.DeviceID)
	v.SetDefault("cloud.agent", def.Cloud.Agent)
	v.SetDefault("soul.nvram_path", def.Soul.NVRAMPath)
	v.SetDefault("soul.file_path", def.Soul.FilePath)
	v.SetDefault("soul.heartbeat_secs", def.Soul.HeartbeatSecs)
	v.SetDefault("soul.autosave_secs", def.Soul.AutosaveSecs)
	v.SetDefault("soul.autosync_mins", def.Soul.AutosyncMins)
	v.SetDefault("offline.queue_capacity", def.Offline.QueueCapacity)

	v.SetEnvPrefix("HEARTH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	cfg.normalize()
	return &cfg, nil
}

// normalize clamps nonsense values back to defaults.
func (c *Config) normalize() {
	def := Default()
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		c.Server.Port = def.Server.Port
	}
	if c.Server.Bind == "" {
		c.Server.Bind = def.Server.Bind
	}
	if c.Soul.HeartbeatSecs < 1 {
		c.Soul.HeartbeatSecs = def.Soul.HeartbeatSecs
	}
	if c.Soul.AutosaveSecs < 1 {
		c.Soul.AutosaveSecs = def.Soul.AutosaveSecs
	}
	if c.Soul.AutosyncMins < 1 {
		c.Soul.AutosyncMins = def.Soul.AutosyncMins
	}
	if c.Offline.QueueCapacity < 1 {
		c.Offline.QueueCapacity = def.Offline.QueueCapacity
	}
}

// ListenAddr returns the bind:port address string.
func (c *Config) ListenAddr() string {
	return fmt.Sprintf("%s:%d", c.Server.Bind, c.Server.Port)
}
