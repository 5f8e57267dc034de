package litex

import (
	"fmt"
	"os"

	"github.com/pkg/errors"
	"github.com/vilterp/litex/pkg/lang"
	"gopkg.in/yaml.v3"
)

// Config is what the server and the CLIs are started with.
type Config struct {
	Host string `yaml:"host" json:"host"`
	Port int    `yaml:"port" json:"port"`
	// DataFile is the bolt file snapshots are saved to. Empty disables snapshots.
	DataFile    string `yaml:"data_file" json:"data_file"`
	HistoryFile string `yaml:"history_file" json:"history_file"`
	// RunRoot is the directory `run` statements read from. Empty disables run.
	RunRoot string       `yaml:"run_root" json:"run_root"`
	Engine  lang.Options `yaml:"engine" json:"engine"`
}

func DefaultConfig() *Config {
	return &Config{
		Host:        "0.0.0.0",
		Port:        9000,
		DataFile:    "litex.data",
		HistoryFile: "/tmp/.litex-history",
		Engine:      lang.DefaultOptions(),
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (*Config, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "reading config")
	}
	config := DefaultConfig()
	if err := yaml.Unmarshal(contents, config); err != nil {
		return nil, errors.Wrapf(err, "parsing config %s", path)
	}
	if err := config.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", path)
	}
	return config, nil
}

func (c *Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return errors.Errorf("port out of range: %d", c.Port)
	}
	if c.Engine.MaxCheckDepth < 0 {
		return errors.Errorf("max_check_depth must not be negative; given %d", c.Engine.MaxCheckDepth)
	}
	return nil
}

func (c *Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
