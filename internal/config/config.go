package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	cfgDirName  = "mediasession"
	cfgFileName = "config.yml"
	envPrefix   = "MEDIASESSION"
)

type AppConfig struct {
	Session SessionSettings `mapstructure:"session" yaml:"session"`
	Player  PlayerSettings  `mapstructure:"player" yaml:"player"`
	Hotkeys Hotkeys         `mapstructure:"hotkeys" yaml:"hotkeys"`
	Log     LogSettings     `mapstructure:"log" yaml:"log"`
}

type SessionSettings struct {
	Name                string   `mapstructure:"name" yaml:"name"`
	Identity            string   `mapstructure:"identity" yaml:"identity"`
	DesktopEntry        string   `mapstructure:"desktop_entry" yaml:"desktop_entry"`
	SupportedURISchemes []string `mapstructure:"supported_uri_schemes" yaml:"supported_uri_schemes"`
	SupportedMIMETypes  []string `mapstructure:"supported_mime_types" yaml:"supported_mime_types"`
	CanQuit             bool     `mapstructure:"can_quit" yaml:"can_quit"`
	CanRaise            bool     `mapstructure:"can_raise" yaml:"can_raise"`
	CanSetFullscreen    bool     `mapstructure:"can_set_fullscreen" yaml:"can_set_fullscreen"`
}

type PlayerSettings struct {
	SocketPath string   `mapstructure:"socket_path" yaml:"socket_path"`
	Volume     int      `mapstructure:"volume" yaml:"volume"`
	MusicDirs  []string `mapstructure:"music_dirs" yaml:"music_dirs"`
}

type Hotkeys struct {
	PlayPause    string `mapstructure:"play_pause" yaml:"play_pause"`
	Next         string `mapstructure:"next" yaml:"next"`
	Previous     string `mapstructure:"previous" yaml:"previous"`
	Stop         string `mapstructure:"stop" yaml:"stop"`
	SeekForward  string `mapstructure:"seek_forward" yaml:"seek_forward"`
	SeekBackward string `mapstructure:"seek_backward" yaml:"seek_backward"`
	Quit         string `mapstructure:"quit" yaml:"quit"`
}

type LogSettings struct {
	Level string `mapstructure:"level" yaml:"level"`
	JSON  bool   `mapstructure:"json" yaml:"json"`
	File  string `mapstructure:"file" yaml:"file"`
}

func Default() AppConfig {
	return AppConfig{
		Session: SessionSettings{
			Name:                "mediasession",
			Identity:            "Media Session",
			DesktopEntry:        "mediasession",
			SupportedURISchemes: []string{"file"},
			SupportedMIMETypes:  []string{"audio/mpeg", "audio/flac", "audio/ogg", "audio/wav"},
			CanQuit:             true,
			CanRaise:            false,
			CanSetFullscreen:    false,
		},
		Player: PlayerSettings{
			SocketPath: filepath.Join(os.TempDir(), "mediasession-mpv.sock"),
			Volume:     70,
			MusicDirs:  []string{"~/Music"},
		},
		Hotkeys: Hotkeys{
			PlayPause:    "space",
			Next:         "n",
			Previous:     "p",
			Stop:         "s",
			SeekForward:  "right",
			SeekBackward: "left",
			Quit:         "q",
		},
		Log: LogSettings{
			Level: "info",
		},
	}
}

// defaults flattens Default into viper keys such as "session.name".
func defaults() map[string]any {
	d := Default()
	return map[string]any{
		"session.name":                  d.Session.Name,
		"session.identity":              d.Session.Identity,
		"session.desktop_entry":         d.Session.DesktopEntry,
		"session.supported_uri_schemes": d.Session.SupportedURISchemes,
		"session.supported_mime_types":  d.Session.SupportedMIMETypes,
		"session.can_quit":              d.Session.CanQuit,
		"session.can_raise":             d.Session.CanRaise,
		"session.can_set_fullscreen":    d.Session.CanSetFullscreen,
		"player.socket_path":            d.Player.SocketPath,
		"player.volume":                 d.Player.Volume,
		"player.music_dirs":             d.Player.MusicDirs,
		"hotkeys.play_pause":            d.Hotkeys.PlayPause,
		"hotkeys.next":                  d.Hotkeys.Next,
		"hotkeys.previous":              d.Hotkeys.Previous,
		"hotkeys.stop":                  d.Hotkeys.Stop,
		"hotkeys.seek_forward":          d.Hotkeys.SeekForward,
		"hotkeys.seek_backward":         d.Hotkeys.SeekBackward,
		"hotkeys.quit":                  d.Hotkeys.Quit,
		"log.level":                     d.Log.Level,
		"log.json":                      d.Log.JSON,
		"log.file":                      d.Log.File,
	}
}

// New returns a viper instance with defaults and environment overrides
// (MEDIASESSION_SESSION_NAME and so on) set up, reading path from fs.
func New(fs afero.Fs, path string) *viper.Viper {
	v := viper.New()
	v.SetFs(fs)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults() {
		v.SetDefault(key, value)
	}
	return v
}

// Load reads the configuration held by v. A missing file leaves the defaults
// in place.
func Load(v *viper.Viper) (*AppConfig, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("could not read config %s: %w", v.ConfigFileUsed(), err)
		}
	}

	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("could not decode config: %w", err)
	}
	return &cfg, nil
}

// WriteDefault writes the default configuration to path, creating parent
// directories. An existing file is left untouched and reported as an error.
func WriteDefault(fs afero.Fs, path string) error {
	exists, err := afero.Exists(fs, path)
	if err != nil {
		return fmt.Errorf("could not stat %s: %w", path, err)
	}
	if exists {
		return fmt.Errorf("config %s already exists", path)
	}

	data, err := Marshal(Default())
	if err != nil {
		return err
	}
	if err := fs.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("could not create config directory: %w", err)
	}
	if err := afero.WriteFile(fs, path, data, 0o644); err != nil {
		return fmt.Errorf("could not write config %s: %w", path, err)
	}
	return nil
}

func Marshal(cfg AppConfig) ([]byte, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return nil, fmt.Errorf("could not marshal config: %w", err)
	}
	return data, nil
}

func GetConfigDirPath() (string, error) {
	configHome, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("could not get user config directory: %w", err)
	}
	return filepath.Join(configHome, cfgDirName), nil
}

// DefaultPath is the config file location used when no --config flag is
// given.
func DefaultPath() (string, error) {
	dir, err := GetConfigDirPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, cfgFileName), nil
}
