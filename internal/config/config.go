package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/pointerquest/internal/clock"
)

const (
	DefaultFPS      = 60
	DefaultSpeed    = 1.0
	DefaultDuration = 10.0
	DefaultSSHAddr  = ":23234"
	DefaultWSAddr   = ":8080"
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Lesson   string        `yaml:"lesson" toml:"lesson"`
	Scenario string        `yaml:"scenario" toml:"scenario"`
	Language string        `yaml:"language" toml:"language"`
	Speed    float64       `yaml:"speed" toml:"speed"`
	FPS      int           `yaml:"fps" toml:"fps"`
	MaxStep  time.Duration `yaml:"max_step" toml:"max_step"`
	Theme    string        `yaml:"theme" toml:"theme"`
	Catalog  string        `yaml:"catalog" toml:"catalog"`
	DataDir  string        `yaml:"data_dir" toml:"data_dir"`
	DBPath   string        `yaml:"db_path" toml:"db_path"`
	LogLevel string        `yaml:"log_level" toml:"log_level"`
	Record   RecordConfig  `yaml:"record" toml:"record"`
	Serve    ServeConfig   `yaml:"serve" toml:"serve"`
}

type RecordConfig struct {
	Duration float64 `yaml:"duration" toml:"duration"`
	FPS      int     `yaml:"fps" toml:"fps"`
}

type ServeConfig struct {
	SSHAddr     string        `yaml:"ssh_addr" toml:"ssh_addr"`
	HostKey     string        `yaml:"host_key" toml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout" toml:"idle_timeout"`
	// PasswordHash is a bcrypt hash; empty leaves the SSH server open.
	PasswordHash string   `yaml:"password_hash" toml:"password_hash"`
	StreamAddr   string   `yaml:"stream_addr" toml:"stream_addr"`
	Origins      []string `yaml:"origins" toml:"origins"`
}

func DefaultConfig() *Config {
	return &Config{
		Language: "auto",
		Speed:    DefaultSpeed,
		FPS:      DefaultFPS,
		MaxStep:  clock.DefaultMaxStep,
		Theme:    "midnight",
		DataDir:  "~/.pointerquest/runs",
		DBPath:   "~/.pointerquest/progress.db",
		LogLevel: "info",
		Record: RecordConfig{
			Duration: DefaultDuration,
			FPS:      DefaultFPS,
		},
		Serve: ServeConfig{
			SSHAddr:     DefaultSSHAddr,
			HostKey:     "~/.pointerquest/host_key",
			IdleTimeout: 30 * time.Minute,
			StreamAddr:  DefaultWSAddr,
		},
	}
}

// Load reads a YAML or, for a .toml extension, TOML file over the defaults.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg := DefaultConfig()
	if isTOML(path) {
		err = toml.Unmarshal(data, cfg)
	} else {
		err = yaml.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	var (
		data []byte
		err  error
	)
	if isTOML(path) {
		var b strings.Builder
		err = toml.NewEncoder(&b).Encode(cfg)
		data = []byte(b.String())
	} else {
		data, err = yaml.Marshal(cfg)
	}
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func isTOML(path string) bool {
	return strings.EqualFold(filepath.Ext(path), ".toml")
}

// Validate reports the first setting no host can run with.
func (c *Config) Validate() error {
	switch {
	case c.FPS <= 0 || c.FPS > 240:
		return fmt.Errorf("%w: fps %d outside 1..240", ErrInvalid, c.FPS)
	case c.Speed < clock.MinSpeed || c.Speed > clock.MaxSpeed:
		return fmt.Errorf("%w: speed %g outside [%g, %g]", ErrInvalid, c.Speed, clock.MinSpeed, clock.MaxSpeed)
	case c.MaxStep < 0:
		return fmt.Errorf("%w: negative max_step", ErrInvalid)
	case c.Record.Duration <= 0:
		return fmt.Errorf("%w: record duration must be positive", ErrInvalid)
	case c.Record.FPS <= 0:
		return fmt.Errorf("%w: record fps must be positive", ErrInvalid)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if c.Language != "auto" && c.Language != "" {
		if _, ok := languageOf(c.Language); !ok {
			return fmt.Errorf("%w: language %q", ErrInvalid, c.Language)
		}
	}
	return nil
}

// ExpandPath replaces a leading ~ with the home directory.
func ExpandPath(p string) string {
	if p == "" || p[0] != '~' {
		return p
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return p
	}
	return filepath.Join(home, p[1:])
}
