package cspice

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/hsiuhsiu/cspice-go/pkg/cspice/logging"
)

// Config controls how a Library sets up the native toolkit.
type Config struct {
	// ErrorAction is installed the first time the native instance is
	// acquired. Only ActionReturn is accepted, and empty means ActionReturn:
	// the other actions either drop native errors or terminate the process.
	// SetErrorAction and WithErrorAction can still switch modes later.
	ErrorAction ErrorAction `yaml:"error_action" json:"error_action"`

	// ErrorDevice receives the toolkit's own error reports. Empty means
	// DeviceNull.
	ErrorDevice ErrorDevice `yaml:"error_device" json:"error_device"`

	// Kernels are furnished on the handle's first acquisition and unloaded
	// by Close.
	Kernels []string `yaml:"kernels" json:"kernels"`

	// Logger receives diagnostics. Nil means logging.New(nil).
	Logger logging.Logger `yaml:"-" json:"-"`
}

func (c Config) errorAction() ErrorAction {
	if c.ErrorAction == "" {
		return ActionReturn
	}
	return c.ErrorAction
}

func (c Config) errorDevice() ErrorDevice {
	if c.ErrorDevice == "" {
		return DeviceNull
	}
	return c.ErrorDevice
}

// Validate reports configuration values the toolkit would reject, and
// startup error actions other than RETURN.
func (c Config) Validate() error {
	if c.ErrorAction != "" && !c.ErrorAction.valid() {
		return fmt.Errorf("cspice: invalid error action %q", string(c.ErrorAction))
	}
	if c.errorAction() != ActionReturn {
		return fmt.Errorf("cspice: startup error action must be %s, not %s", ActionReturn, c.ErrorAction)
	}
	if strings.TrimSpace(string(c.ErrorDevice)) == "" && c.ErrorDevice != "" {
		return fmt.Errorf("cspice: blank error device")
	}
	for _, k := range c.Kernels {
		if strings.TrimSpace(k) == "" {
			return fmt.Errorf("cspice: blank kernel path in configuration")
		}
	}
	return nil
}

// LoadConfig reads a Config from a YAML (.yaml, .yml) or JSON (.json,
// .jsonc) file. JSON files may contain comments and trailing commas.
// Relative kernel paths are resolved against the directory of the file.
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("cspice: read config: %w", err)
	}

	var cfg Config
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("cspice: parse %s: %w", path, err)
		}
	case ".json", ".jsonc":
		if err := json.Unmarshal(jsonc.ToJSON(data), &cfg); err != nil {
			return Config{}, fmt.Errorf("cspice: parse %s: %w", path, err)
		}
	default:
		return Config{}, fmt.Errorf("cspice: unsupported config format %q", ext)
	}

	dir := filepath.Dir(path)
	for i, k := range cfg.Kernels {
		if strings.TrimSpace(k) != "" && !filepath.IsAbs(k) {
			cfg.Kernels[i] = filepath.Join(dir, k)
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
