package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/opd-ai/voxlink/audio"
	"github.com/opd-ai/voxlink/transport"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "voxlink.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
server:
  host: mumble.example.org
  port: 12345
  username: alice
  password: secret
  tokens: [lobby, staff]
  transport: websocket
  websocket_path: /mumble
audio:
  sample_rate: 24000
  channels: 1
  frame_duration: 40ms
  decoder: pure-go
connection:
  ping_interval: 5s
log:
  level: debug
  format: json
metrics:
  enabled: true
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())

	assert.Equal(t, "mumble.example.org", cfg.Server.Host)
	assert.Equal(t, uint16(12345), cfg.Server.Port)
	assert.Equal(t, []string{"lobby", "staff"}, cfg.Server.Tokens)
	assert.Equal(t, TransportWebSocket, cfg.Server.Transport)
	assert.Equal(t, "/mumble", cfg.Server.WebSocketPath)
	assert.Equal(t, audio.Setup{Rate: audio.Rate24k, Channels: audio.Mono}, cfg.Audio.Setup())
	assert.Equal(t, 40*time.Millisecond, cfg.Audio.FrameDuration)
	assert.Equal(t, DecoderPureGo, cfg.Audio.Decoder)
	assert.Equal(t, 5*time.Second, cfg.Connection.PingInterval)
	assert.Equal(t, "json", cfg.Log.Format)

	// Unset keys keep their defaults.
	assert.Equal(t, audio.DefaultBitrate, cfg.Audio.Bitrate)
	assert.Equal(t, ":9464", cfg.Metrics.Listen)
	assert.Equal(t, 10, cfg.Log.File.MaxSizeMB)
}

func TestLoadDefaultsWithoutFile(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	want := Default()
	assert.Equal(t, want.Server.Port, cfg.Server.Port)
	assert.Equal(t, want.Server.Transport, cfg.Server.Transport)
	assert.Equal(t, want.Audio, cfg.Audio)
	assert.Equal(t, want.Connection, cfg.Connection)
	assert.Equal(t, want.Log, cfg.Log)
	assert.Equal(t, want.Metrics, cfg.Metrics)
	assert.Empty(t, cfg.Server.Tokens)
}

func TestLoadEnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, "server:\n  host: from-file\n  username: alice\n")
	t.Setenv("VOXLINK_SERVER_HOST", "from-env")
	t.Setenv("VOXLINK_SERVER_PORT", "4000")
	t.Setenv("VOXLINK_AUDIO_FRAME_DURATION", "10ms")
	t.Setenv("VOXLINK_LOG_FILE_ENABLED", "true")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Server.Host)
	assert.Equal(t, uint16(4000), cfg.Server.Port)
	assert.Equal(t, 10*time.Millisecond, cfg.Audio.FrameDuration)
	assert.True(t, cfg.Log.File.Enabled)
	assert.Equal(t, "alice", cfg.Server.Username)
}

func TestLoadMissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	assert.Error(t, err)
}

func TestValidateJoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Server.Transport = "udp"
	cfg.Audio.SampleRate = 44100
	cfg.Audio.FrameDuration = 25 * time.Millisecond
	cfg.Server.ClientCert = "cert.pem"

	err := cfg.Validate()
	require.ErrorIs(t, err, ErrInvalid)
	for _, want := range []string{
		"server.host is required",
		"server.username is required",
		`server.transport "udp"`,
		"client_cert and server.client_key",
		"audio:",
		"audio.frame_duration",
	} {
		assert.Contains(t, err.Error(), want)
	}
}

func TestValidateDefaultsWithIdentity(t *testing.T) {
	cfg := Default()
	cfg.Server.Host = "localhost"
	cfg.Server.Username = "bob"
	assert.NoError(t, cfg.Validate())
	assert.Equal(t, transport.DefaultPort, cfg.Server.Port)
}

func TestRedacted(t *testing.T) {
	cfg := Default()
	cfg.Server.Password = "secret"
	cfg.Server.Tokens = []string{"t1"}

	r := cfg.Redacted()
	assert.Equal(t, "********", r.Server.Password)
	assert.Equal(t, []string{"********"}, r.Server.Tokens)
	assert.Equal(t, "secret", cfg.Server.Password)
	assert.Equal(t, []string{"t1"}, cfg.Server.Tokens)
}
