package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

type Config struct {
	DefaultProfile string             `toml:"default_profile"`
	Profiles       map[string]Profile `toml:"profiles"`
	File           string             `toml:"file"`
	Theme          string             `toml:"theme"`
	TUI            bool               `toml:"tui"`
}

type Profile struct {
	File  string `toml:"file"`
	Theme string `toml:"theme"`
	TUI   *bool  `toml:"tui"`
}

// Settings is the resolved runtime configuration
type Settings struct {
	Profile string
	File    string
	Theme   string
	TUI     bool
}

type ProfileError struct {
	Profile string
	Field   string
	Err     error
}

func (e *ProfileError) Error() string {
	if e.Profile == "" {
		return fmt.Sprintf("config: %s: %v", e.Field, e.Err)
	}

	if e.Field == "" {
		return fmt.Sprintf("profile %q: %v", e.Profile, e.Err)
	}

	return fmt.Sprintf("profile %q: %s: %v", e.Profile, e.Field, e.Err)
}

func (e *ProfileError) Unwrap() error {
	return e.Err
}

var (
	ErrEmptyPath   = errors.New("path is empty")
	ErrIsDirectory = errors.New("path is a directory")
)

func validateConfig(cfg Config) error {
	if cfg.DefaultProfile != "" {
		if _, ok := cfg.Profiles[cfg.DefaultProfile]; !ok {
			return &ProfileError{Field: "default_profile", Err: fmt.Errorf("profile %q not found", cfg.DefaultProfile)}
		}
	}

	for name, p := range cfg.Profiles {
		if strings.TrimSpace(p.File) == "" {
			return &ProfileError{Profile: name, Field: "file", Err: ErrEmptyPath}
		}
	}

	return nil
}

func selectProfile(profileFlag string, cfg Config) (string, *Profile, error) {
	name := profileFlag
	if name == "" {
		name = cfg.DefaultProfile
	}

	if name == "" {
		return "", nil, nil
	}

	if cfg.Profiles == nil {
		return "", nil, &ProfileError{Profile: name, Err: errors.New("no profiles defined in config")}
	}

	p, ok := cfg.Profiles[name]

	if !ok {
		return "", nil, &ProfileError{Profile: name, Err: errors.New("profile not found")}
	}

	return name, &p, nil
}

// resolveSettings merges flags, the selected profile and top-level config.
// The backing file comes from the first of: fileFlag, profile, config, default.
func resolveSettings(cfg Config, profileFlag, fileFlag string) (Settings, error) {
	s := Settings{File: defaultTaskFile, Theme: cfg.Theme, TUI: cfg.TUI}

	if cfg.File != "" {
		path, err := expandPath(cfg.File)
		if err != nil {
			return Settings{}, &ProfileError{Field: "file", Err: err}
		}
		s.File = path
	}

	name, p, err := selectProfile(profileFlag, cfg)
	if err != nil {
		return Settings{}, err
	}

	if p != nil {
		s.Profile = name

		path, err := resolveProfilePath(p.File)
		if err != nil {
			return Settings{}, &ProfileError{Profile: name, Field: "file", Err: err}
		}
		s.File = path

		if p.Theme != "" {
			s.Theme = p.Theme
		}
		if p.TUI != nil {
			s.TUI = *p.TUI
		}
	}

	if fileFlag != "" {
		path, err := expandPath(fileFlag)
		if err != nil {
			return Settings{}, err
		}
		s.File = path
	}

	s.File = filepath.Clean(s.File)

	if info, err := os.Stat(s.File); err == nil && info.IsDir() {
		return Settings{}, fmt.Errorf("%w: %s", ErrIsDirectory, s.File)
	}

	return s, nil
}

func configPath() (string, error) {
	configDir := os.Getenv("XDG_CONFIG_HOME")
	if configDir == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		configDir = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configDir, "td", "config.toml"), nil
}

func loadConfig() (Config, string, error) {
	path, err := configPath()

	if err != nil {
		return Config{}, "", err
	}

	cfg, err := readConfig(path)

	return cfg, path, err
}

func readConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)

	if err != nil {
		if os.IsNotExist(err) {
			return Config{}, nil
		}

		return Config{}, err
	}

	var cfg Config

	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return Config{}, err
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func expandPath(value string) (string, error) {
	value = strings.TrimSpace(value)

	if value == "" {
		return value, nil
	}

	expanded := os.ExpandEnv(value)

	if !strings.HasPrefix(expanded, "~") {
		return expanded, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	if expanded == "~" {
		return homeDir, nil
	}

	if strings.HasPrefix(expanded, "~/") || strings.HasPrefix(expanded, "~\\") {
		return filepath.Join(homeDir, expanded[2:]), nil
	}

	return expanded, nil
}

// resolveProfilePath expands a profile's file path; relative paths are
// taken from the home directory
func resolveProfilePath(value string) (string, error) {
	expanded, err := expandPath(value)

	if err != nil {
		return "", err
	}

	if expanded == "" {
		return "", ErrEmptyPath
	}

	if filepath.IsAbs(expanded) {
		return expanded, nil
	}

	homeDir, err := os.UserHomeDir()

	if err != nil {
		return "", err
	}

	return filepath.Join(homeDir, expanded), nil
}
