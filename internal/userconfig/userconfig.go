// Package userconfig persists viewer preferences as YAML.
package userconfig

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/brads3290/ccviewer/internal/datefmt"
	"github.com/brads3290/ccviewer/internal/sessionlist"
)

// Config is the set of user preferences.
type Config struct {
	Locale                   datefmt.Locale       `yaml:"locale" json:"locale"`
	SessionViewMode          sessionlist.ViewMode `yaml:"session_view_mode" json:"sessionViewMode"`
	ProjectViewMode          sessionlist.ViewMode `yaml:"project_view_mode" json:"projectViewMode"`
	HideNoUserMessageSession bool                 `yaml:"hide_no_user_message_session" json:"hideNoUserMessageSession"`
	UnifySameTitleSession    bool                 `yaml:"unify_same_title_session" json:"unifySameTitleSession"`
}

// Default returns the preferences used when nothing is stored.
func Default() Config {
	return Config{
		Locale:                   datefmt.LocaleEnglish,
		SessionViewMode:          sessionlist.ViewCard,
		ProjectViewMode:          sessionlist.ViewCard,
		HideNoUserMessageSession: true,
		UnifySameTitleSession:    false,
	}
}

// normalize fills missing values with defaults.
func (c Config) normalize() Config {
	if c.Locale == "" {
		c.Locale = datefmt.LocaleEnglish
	}
	c.SessionViewMode = sessionlist.ParseViewMode(string(c.SessionViewMode))
	c.ProjectViewMode = sessionlist.ParseViewMode(string(c.ProjectViewMode))
	return c
}

// ErrUnknownKey is returned by Get and Set for keys that do not exist.
var ErrUnknownKey = errors.New("unknown config key")

type field struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func viewModeField(p func(c *Config) *sessionlist.ViewMode) field {
	return field{
		get: func(c *Config) string { return string(*p(c)) },
		set: func(c *Config, v string) error {
			if v != string(sessionlist.ViewCard) && v != string(sessionlist.ViewList) {
				return fmt.Errorf("view mode must be card or list, got %q", v)
			}
			*p(c) = sessionlist.ViewMode(v)
			return nil
		},
	}
}

func boolField(p func(c *Config) *bool) field {
	return field{
		get: func(c *Config) string { return strconv.FormatBool(*p(c)) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("expected a boolean, got %q", v)
			}
			*p(c) = b
			return nil
		},
	}
}

var fields = map[string]field{
	"locale": {
		get: func(c *Config) string { return string(c.Locale) },
		set: func(c *Config, v string) error {
			if v == "" {
				return errors.New("locale must not be empty")
			}
			c.Locale = datefmt.Locale(v)
			return nil
		},
	},
	"session_view_mode":            viewModeField(func(c *Config) *sessionlist.ViewMode { return &c.SessionViewMode }),
	"project_view_mode":            viewModeField(func(c *Config) *sessionlist.ViewMode { return &c.ProjectViewMode }),
	"hide_no_user_message_session": boolField(func(c *Config) *bool { return &c.HideNoUserMessageSession }),
	"unify_same_title_session":     boolField(func(c *Config) *bool { return &c.UnifySameTitleSession }),
}

// Keys lists the settable keys in sorted order.
func Keys() []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Get returns the string form of one key.
func (c Config) Get(key string) (string, error) {
	f, ok := fields[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return f.get(&c), nil
}

// Set parses and assigns one key.
func (c *Config) Set(key, value string) error {
	f, ok := fields[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := f.set(c, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Store reads and writes the preference file.
type Store struct {
	path string
	mu   sync.Mutex
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string { return s.path }

// Load returns the stored preferences, or the defaults when the file does
// not exist.
func (s *Store) Load() (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.load()
}

func (s *Store) load() (Config, error) {
	cfg := Default()
	if s.path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read user config: %w", err)
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse user config %s: %w", s.path, err)
	}
	return cfg.normalize(), nil
}

// Save writes cfg.
func (s *Store) Save(cfg Config) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.save(cfg)
}

func (s *Store) save(cfg Config) error {
	if s.path == "" {
		return errors.New("user config path is not set")
	}
	data, err := yaml.Marshal(cfg.normalize())
	if err != nil {
		return fmt.Errorf("encode user config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("write user config: %w", err)
	}
	return nil
}

// Update applies fn to the stored preferences and saves the result.
func (s *Store) Update(fn func(c *Config) error) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	cfg, err := s.load()
	if err != nil {
		return Config{}, err
	}
	if err := fn(&cfg); err != nil {
		return Config{}, err
	}
	if err := s.save(cfg); err != nil {
		return Config{}, err
	}
	return cfg.normalize(), nil
}
