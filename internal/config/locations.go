package config

import (
	"fmt"
	"log"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// Location is one entry of the locations.options set.
type Location struct {
	Code  string `mapstructure:"code" json:"code"`
	Label string `mapstructure:"label" json:"label"`
}

// Locations holds the configured location option set. It is safe for
// concurrent use and can be swapped at runtime when the source file changes.
type Locations struct {
	mu      sync.RWMutex
	options []Location
}

func NewLocations(options ...Location) *Locations {
	l := &Locations{}
	l.Set(options)
	return l
}

// Set replaces the option set. Stored values outside the new set are left as they are.
func (l *Locations) Set(options []Location) {
	cp := make([]Location, len(options))
	copy(cp, options)

	l.mu.Lock()
	l.options = cp
	l.mu.Unlock()
}

// Options returns the options in configured order.
func (l *Locations) Options() []Location {
	l.mu.RLock()
	defer l.mu.RUnlock()

	cp := make([]Location, len(l.options))
	copy(cp, l.options)
	return cp
}

func (l *Locations) Has(code string) bool {
	_, ok := l.Label(code)
	return ok
}

func (l *Locations) Label(code string) (string, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for _, o := range l.options {
		if o.Code == code {
			return o.Label, true
		}
	}
	return "", false
}

// First returns the first configured code, or "" for an empty set.
func (l *Locations) First() string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if len(l.options) == 0 {
		return ""
	}
	return l.options[0].Code
}

// LoadLocations reads locations.options from a config file. When watch is
// true the file is watched and the set is reloaded on every change.
func LoadLocations(path string, watch bool) (*Locations, error) {
	v := viper.New()
	v.SetConfigFile(path)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read locations config: %w", err)
	}

	options, err := decodeLocations(v)
	if err != nil {
		return nil, err
	}
	locations := NewLocations(options...)

	if watch {
		v.OnConfigChange(func(e fsnotify.Event) {
			options, err := decodeLocations(v)
			if err != nil {
				log.Printf("locations reload failed (%s): %v", e.Name, err)
				return
			}
			locations.Set(options)
			log.Printf("locations reloaded from %s: %d options", e.Name, len(options))
		})
		v.WatchConfig()
	}

	return locations, nil
}

func decodeLocations(v *viper.Viper) ([]Location, error) {
	var options []Location
	if err := v.UnmarshalKey("locations.options", &options); err != nil {
		return nil, fmt.Errorf("decode locations.options: %w", err)
	}

	seen := make(map[string]bool, len(options))
	for _, o := range options {
		if o.Code == "" {
			return nil, fmt.Errorf("location with empty code")
		}
		if seen[o.Code] {
			return nil, fmt.Errorf("duplicate location code %q", o.Code)
		}
		seen[o.Code] = true
	}
	return options, nil
}
