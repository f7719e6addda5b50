package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment override, e.g. VOXLINK_SERVER_HOST.
const EnvPrefix = "VOXLINK"

// Load reads the configuration. With an empty path, voxlink.yaml is looked
// up in the working directory and $HOME/.config/voxlink, and its absence is
// not an error. The result is not validated.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
	} else {
		v.SetConfigName("voxlink")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/voxlink")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// setDefaults registers every key, which also lets AutomaticEnv find keys
// that the file does not mention.
func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.username", d.Server.Username)
	v.SetDefault("server.password", d.Server.Password)
	v.SetDefault("server.tokens", d.Server.Tokens)
	v.SetDefault("server.transport", d.Server.Transport)
	v.SetDefault("server.websocket_path", d.Server.WebSocketPath)
	v.SetDefault("server.websocket_secure", d.Server.WebSocketSecure)
	v.SetDefault("server.insecure_skip_verify", d.Server.InsecureSkipVerify)
	v.SetDefault("server.client_cert", d.Server.ClientCert)
	v.SetDefault("server.client_key", d.Server.ClientKey)
	v.SetDefault("server.client_p12", d.Server.ClientP12)
	v.SetDefault("server.client_p12_password", d.Server.ClientP12Password)

	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.channels", d.Audio.Channels)
	v.SetDefault("audio.frame_duration", d.Audio.FrameDuration)
	v.SetDefault("audio.bitrate", d.Audio.Bitrate)
	v.SetDefault("audio.decoder", d.Audio.Decoder)

	v.SetDefault("connection.ping_interval", d.Connection.PingInterval)

	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("log.file.enabled", d.Log.File.Enabled)
	v.SetDefault("log.file.path", d.Log.File.Path)
	v.SetDefault("log.file.max_size_mb", d.Log.File.MaxSizeMB)
	v.SetDefault("log.file.max_backups", d.Log.File.MaxBackups)
	v.SetDefault("log.file.max_age_days", d.Log.File.MaxAgeDays)
	v.SetDefault("log.file.compress", d.Log.File.Compress)

	v.SetDefault("metrics.enabled", d.Metrics.Enabled)
	v.SetDefault("metrics.listen", d.Metrics.Listen)
}
