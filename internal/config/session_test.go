package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/banshee-data/depthsense/internal/device"
	"github.com/banshee-data/depthsense/internal/units"
)

func writeConfig(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("Failed to write test config: %v", err)
	}
	return path
}

func TestDefaultSessionConfig(t *testing.T) {
	cfg := DefaultSessionConfig()

	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config does not validate: %v", err)
	}
	if got := cfg.GetFrameInterval(); got != time.Second/60 {
		t.Errorf("GetFrameInterval() = %v, want %v", got, time.Second/60)
	}
	if got := cfg.GetUserLimit(); got != device.MaxUsers {
		t.Errorf("GetUserLimit() = %d, want %d", got, device.MaxUsers)
	}
	if got := cfg.GetHighThreshold(); got != units.MaxSensorDepth {
		t.Errorf("GetHighThreshold() = %v, want %v", got, units.MaxSensorDepth)
	}
	chans := cfg.GetEnabledChannels()
	if len(chans) != 2 || chans[0] != device.Color || chans[1] != device.Depth {
		t.Errorf("GetEnabledChannels() = %v, want [color depth]", chans)
	}
}

func TestEmptySessionConfig_Defaults(t *testing.T) {
	cfg := EmptySessionConfig()

	if got := cfg.GetFrameInterval(); got != time.Second/60 {
		t.Errorf("GetFrameInterval() = %v, want %v", got, time.Second/60)
	}
	if got := cfg.GetHeartbeatMaxMisses(); got != 30 {
		t.Errorf("GetHeartbeatMaxMisses() = %d, want 30", got)
	}
	if got := cfg.GetLowThreshold(); got != 0 {
		t.Errorf("GetLowThreshold() = %v, want 0", got)
	}
	if len(cfg.GetEnabledChannels()) != 0 {
		t.Errorf("GetEnabledChannels() = %v, want none", cfg.GetEnabledChannels())
	}
}

func TestLoadSessionConfig(t *testing.T) {
	path := writeConfig(t, "session.json", `{
  "frame_interval": "33ms",
  "heartbeat_max_misses": 5,
  "user_limit": 2,
  "low_threshold_mm": 190,
  "high_threshold_mm": 3000,
  "enabled_channels": ["depth", "Skeleton-3D"],
  "raw_channels": ["depth"]
}`)

	cfg, err := LoadSessionConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}

	if got := cfg.GetFrameInterval(); got != 33*time.Millisecond {
		t.Errorf("GetFrameInterval() = %v, want 33ms", got)
	}
	if got := cfg.GetHeartbeatMaxMisses(); got != 5 {
		t.Errorf("GetHeartbeatMaxMisses() = %d, want 5", got)
	}
	if got := cfg.GetUserLimit(); got != 2 {
		t.Errorf("GetUserLimit() = %d, want 2", got)
	}
	if got := cfg.GetLowThreshold(); got != 190 {
		t.Errorf("GetLowThreshold() = %v, want 190", got)
	}
	if got := cfg.GetHighThreshold(); got != 3000 {
		t.Errorf("GetHighThreshold() = %v, want 3000", got)
	}
	chans := cfg.GetEnabledChannels()
	if len(chans) != 2 || chans[1] != device.Skeleton3D {
		t.Errorf("GetEnabledChannels() = %v, want [depth skeleton_3d]", chans)
	}
	if raw := cfg.GetRawChannels(); len(raw) != 1 || raw[0] != device.Depth {
		t.Errorf("GetRawChannels() = %v, want [depth]", raw)
	}
}

func TestLoadSessionConfig_PartialKeepsDefaults(t *testing.T) {
	path := writeConfig(t, "partial.json", `{"user_limit": 3}`)

	cfg, err := LoadSessionConfig(path)
	if err != nil {
		t.Fatalf("Failed to load config: %v", err)
	}
	if got := cfg.GetUserLimit(); got != 3 {
		t.Errorf("GetUserLimit() = %d, want 3", got)
	}
	if got := cfg.GetFrameInterval(); got != time.Second/60 {
		t.Errorf("GetFrameInterval() = %v, want default", got)
	}
}

func TestLoadSessionConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		file    string
		body    string
		wantErr string
	}{
		{"wrong extension", "session.yaml", `{}`, ".json extension"},
		{"bad json", "bad.json", `{"user_limit":`, "failed to parse"},
		{"bad interval", "interval.json", `{"frame_interval": "soon"}`, "invalid frame_interval"},
		{"zero interval", "zero.json", `{"frame_interval": "0s"}`, "must be positive"},
		{"user limit high", "users.json", `{"user_limit": 7}`, "user_limit"},
		{"user limit zero", "users0.json", `{"user_limit": 0}`, "user_limit"},
		{"misses", "misses.json", `{"heartbeat_max_misses": 0}`, "heartbeat_max_misses"},
		{"high threshold overflows int32", "wrap.json", `{"high_threshold_mm": 4294967396}`, "high_threshold_mm out of range"},
		{"low threshold below int32", "wraplow.json", `{"low_threshold_mm": -4294967296}`, "low_threshold_mm out of range"},
		{"thresholds inverted", "thr.json", `{"low_threshold_mm": 2000, "high_threshold_mm": 1000}`, "threshold"},
		{"unknown channel", "chan.json", `{"enabled_channels": ["thermal"]}`, "enabled_channels"},
		{"unknown raw channel", "raw.json", `{"raw_channels": ["sonar"]}`, "raw_channels"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.file, tt.body)
			_, err := LoadSessionConfig(path)
			if err == nil {
				t.Fatalf("expected error containing %q, got nil", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadSessionConfig_MissingFile(t *testing.T) {
	if _, err := LoadSessionConfig(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestGetEnabledChannels_SkipsUnknown(t *testing.T) {
	cfg := &SessionConfig{EnabledChannels: []string{"color", "thermal", "face"}}
	chans := cfg.GetEnabledChannels()
	if len(chans) != 2 || chans[0] != device.Color || chans[1] != device.Face {
		t.Errorf("GetEnabledChannels() = %v, want [color face]", chans)
	}
}

func TestMustLoadDefaultConfig(t *testing.T) {
	cfg := MustLoadDefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults file does not validate: %v", err)
	}
	if got := cfg.GetFrameInterval(); got <= 0 || got > time.Second {
		t.Errorf("GetFrameInterval() = %v, want a sub-second interval", got)
	}
	if len(cfg.GetEnabledChannels()) == 0 {
		t.Error("defaults file enables no channels")
	}
}
