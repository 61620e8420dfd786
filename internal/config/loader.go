package config

import (
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the prefix of every environment override, e.g.
// CHEMGRAPH_DATABASE_HOST for database.host.
const envPrefix = "CHEMGRAPH"

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.SetDefault("chemistry.ring_exclusion_warning", DefaultRingExclusionWarning)
	bindEnvs(v, reflect.TypeOf(Config{}), "")
	return v
}

// bindEnvs registers every mapstructure key of t so that Unmarshal sees
// environment overrides for keys the YAML file does not mention.
func bindEnvs(v *viper.Viper, t reflect.Type, prefix string) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		tag := f.Tag.Get("mapstructure")
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}
		if f.Type.Kind() == reflect.Struct && f.Type.PkgPath() == t.PkgPath() {
			bindEnvs(v, f.Type, key)
			continue
		}
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at path, applies CHEMGRAPH_* overrides and
// defaults, and validates the result.
func Load(path string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return finalize(v)
}

// LoadFromEnv builds a Config from CHEMGRAPH_* variables and defaults only.
func LoadFromEnv() (*Config, error) {
	return finalize(newViper())
}

// LoadOptional reads path when it is non-empty and falls back to
// LoadFromEnv otherwise. The CLI uses it so that a config file is never
// required for offline conversion.
func LoadOptional(path string) (*Config, error) {
	if path == "" {
		return LoadFromEnv()
	}
	return Load(path)
}

func finalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Watcher reloads a config file whenever fsnotify reports a write or a
// re-create. Invalid revisions are reported through onError and leave the
// last good Config in place.
type Watcher struct {
	mu       sync.RWMutex
	current  *Config
	onChange func(*Config)
	onError  func(error)
	v        *viper.Viper
}

// Watch loads path and starts watching it. onChange receives every valid
// revision after the first; onError may be nil.
func Watch(path string, onChange func(*Config), onError func(error)) (*Watcher, error) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	cfg, err := finalize(v)
	if err != nil {
		return nil, err
	}
	w := &Watcher{current: cfg, onChange: onChange, onError: onError, v: v}
	v.OnConfigChange(w.handle)
	v.WatchConfig()
	return w, nil
}

func (w *Watcher) handle(e fsnotify.Event) {
	if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
		return
	}
	cfg, err := finalize(w.v)
	if err != nil {
		if w.onError != nil {
			w.onError(fmt.Errorf("config: reload %s: %w", e.Name, err))
		}
		return
	}
	w.mu.Lock()
	w.current = cfg
	w.mu.Unlock()
	if w.onChange != nil {
		w.onChange(cfg)
	}
}

// Current returns the last valid Config.
func (w *Watcher) Current() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.current
}

// MustLoad is Load that panics; for main functions only.
func MustLoad(path string) *Config {
	cfg, err := Load(path)
	if err != nil {
		panic(fmt.Sprintf("config: %v", err))
	}
	return cfg
}

//Personal.AI order the ending
