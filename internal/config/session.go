package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"time"

	"github.com/banshee-data/depthsense/internal/device"
	"github.com/banshee-data/depthsense/internal/pointcloud"
	"github.com/banshee-data/depthsense/internal/units"
)

// DefaultConfigPath is the path to the canonical session defaults file.
const DefaultConfigPath = "config/session.defaults.json"

const (
	defaultFrameInterval      = time.Second / 60
	defaultHeartbeatMaxMisses = 30
)

// SessionConfig holds the startup parameters of a device session. Every
// field is optional; the Get* methods supply defaults for omitted ones so
// partial files are safe.
type SessionConfig struct {
	// Poll loop
	FrameInterval      *string `json:"frame_interval,omitempty"` // duration string like "33ms"
	HeartbeatMaxMisses *int    `json:"heartbeat_max_misses,omitempty"`

	// Device controls
	UserLimit       *int     `json:"user_limit,omitempty"`
	LowThresholdMM  *int     `json:"low_threshold_mm,omitempty"`
	HighThresholdMM *int     `json:"high_threshold_mm,omitempty"`
	EnabledChannels []string `json:"enabled_channels,omitempty"`
	RawChannels     []string `json:"raw_channels,omitempty"`
}

func ptrInt(v int) *int          { return &v }
func ptrString(v string) *string { return &v }

// EmptySessionConfig returns a SessionConfig with all fields unset.
func EmptySessionConfig() *SessionConfig {
	return &SessionConfig{}
}

// DefaultSessionConfig returns a SessionConfig with every scalar field set
// to its default value and only the color and depth channels enabled.
func DefaultSessionConfig() *SessionConfig {
	return &SessionConfig{
		FrameInterval:      ptrString(defaultFrameInterval.String()),
		HeartbeatMaxMisses: ptrInt(defaultHeartbeatMaxMisses),
		UserLimit:          ptrInt(device.MaxUsers),
		LowThresholdMM:     ptrInt(int(pointcloud.DefaultLowThreshold)),
		HighThresholdMM:    ptrInt(int(pointcloud.DefaultHighThreshold)),
		EnabledChannels:    []string{device.Color.String(), device.Depth.String()},
	}
}

// LoadSessionConfig loads a SessionConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadSessionConfig(path string) (*SessionConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptySessionConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// MustLoadDefaultConfig loads DefaultConfigPath, searching the current
// directory and its parents up to the repository root.
// Panics if the file cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *SessionConfig {
	candidates := []string{
		DefaultConfigPath,
		"../../" + DefaultConfigPath,    // from internal/<pkg>/
		"../../../" + DefaultConfigPath, // from cmd/<tool>/ subdirectories
	}
	for _, path := range candidates {
		if cfg, err := LoadSessionConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configuration values are valid.
func (c *SessionConfig) Validate() error {
	if c.FrameInterval != nil && *c.FrameInterval != "" {
		d, err := time.ParseDuration(*c.FrameInterval)
		if err != nil {
			return fmt.Errorf("invalid frame_interval '%s': %w", *c.FrameInterval, err)
		}
		if d <= 0 {
			return fmt.Errorf("frame_interval must be positive, got %s", d)
		}
	}

	if c.HeartbeatMaxMisses != nil && *c.HeartbeatMaxMisses < 1 {
		return fmt.Errorf("heartbeat_max_misses must be at least 1, got %d", *c.HeartbeatMaxMisses)
	}

	if c.UserLimit != nil && (*c.UserLimit < 1 || *c.UserLimit > device.MaxUsers) {
		return fmt.Errorf("user_limit must be between 1 and %d, got %d", device.MaxUsers, *c.UserLimit)
	}

	// The getters convert to the driver's int32 millimetres.
	if err := checkInt32("low_threshold_mm", c.LowThresholdMM); err != nil {
		return err
	}
	if err := checkInt32("high_threshold_mm", c.HighThresholdMM); err != nil {
		return err
	}
	if err := pointcloud.Validate(c.GetLowThreshold(), c.GetHighThreshold()); err != nil {
		return err
	}

	if _, err := parseChannels(c.EnabledChannels); err != nil {
		return fmt.Errorf("invalid enabled_channels: %w", err)
	}
	if _, err := parseChannels(c.RawChannels); err != nil {
		return fmt.Errorf("invalid raw_channels: %w", err)
	}

	return nil
}

// GetFrameInterval returns the poll loop interval.
func (c *SessionConfig) GetFrameInterval() time.Duration {
	if c.FrameInterval == nil || *c.FrameInterval == "" {
		return defaultFrameInterval
	}
	d, err := time.ParseDuration(*c.FrameInterval)
	if err != nil || d <= 0 {
		return defaultFrameInterval // default on parse error
	}
	return d
}

// GetHeartbeatMaxMisses returns how many consecutive failed liveness
// probes mark the device as lost.
func (c *SessionConfig) GetHeartbeatMaxMisses() int {
	if c.HeartbeatMaxMisses == nil {
		return defaultHeartbeatMaxMisses
	}
	return *c.HeartbeatMaxMisses
}

// GetUserLimit returns the user_limit value or the default.
func (c *SessionConfig) GetUserLimit() int {
	if c.UserLimit == nil {
		return device.MaxUsers
	}
	return *c.UserLimit
}

// GetLowThreshold returns the near point-cloud cutoff.
func (c *SessionConfig) GetLowThreshold() units.Millimetres {
	if c.LowThresholdMM == nil {
		return pointcloud.DefaultLowThreshold
	}
	return units.Millimetres(*c.LowThresholdMM)
}

// GetHighThreshold returns the far point-cloud cutoff.
func (c *SessionConfig) GetHighThreshold() units.Millimetres {
	if c.HighThresholdMM == nil {
		return pointcloud.DefaultHighThreshold
	}
	return units.Millimetres(*c.HighThresholdMM)
}

// GetEnabledChannels returns the channels to enable at startup. Unknown
// names are skipped; Validate reports them.
func (c *SessionConfig) GetEnabledChannels() []device.Channel {
	chans, _ := parseChannels(c.EnabledChannels)
	return chans
}

// GetRawChannels returns the channels whose raw samples are retained.
func (c *SessionConfig) GetRawChannels() []device.Channel {
	chans, _ := parseChannels(c.RawChannels)
	return chans
}

func checkInt32(name string, v *int) error {
	if v != nil && (*v < math.MinInt32 || *v > math.MaxInt32) {
		return fmt.Errorf("%s out of range: %d", name, *v)
	}
	return nil
}

func parseChannels(names []string) ([]device.Channel, error) {
	var firstErr error
	out := make([]device.Channel, 0, len(names))
	for _, name := range names {
		ch, err := device.ParseChannel(name)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		out = append(out, ch)
	}
	return out, firstErr
}
