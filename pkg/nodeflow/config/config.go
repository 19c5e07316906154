package config

import (
	"log/slog"
	"strings"
	"time"
)

// Config is a read-only view over decoded YAML or JSON. Keys may be dotted
// paths ("workflow.max_iterations") that walk nested sections. Accessors
// return the supplied default when a key is missing or holds the wrong type.
type Config struct {
	data map[string]any
}

// New wraps data. A nil map yields an empty Config.
func New(data map[string]any) Config {
	if data == nil {
		data = map[string]any{}
	}
	return Config{data: data}
}

// lookup resolves key, preferring an exact match over a dotted path.
func (c Config) lookup(key string) (any, bool) {
	if v, ok := c.data[key]; ok {
		return v, true
	}
	section := c.data
	parts := strings.Split(key, ".")
	for i, part := range parts {
		v, ok := section[part]
		if !ok {
			return nil, false
		}
		if i == len(parts)-1 {
			return v, true
		}
		if section, ok = v.(map[string]any); !ok {
			return nil, false
		}
	}
	return nil, false
}

// value looks up key and converts it with conv.
func value[T any](c Config, key string, def T, conv func(any) (T, bool)) T {
	v, ok := c.lookup(key)
	if !ok {
		return def
	}
	if out, ok := conv(v); ok {
		return out
	}
	return def
}

// Has reports whether key resolves to a value.
func (c Config) Has(key string) bool {
	_, ok := c.lookup(key)
	return ok
}

func (c Config) String(key, def string) string {
	return value(c, key, def, func(v any) (string, bool) {
		s, ok := v.(string)
		return s, ok
	})
}

func (c Config) Bool(key string, def bool) bool {
	return value(c, key, def, func(v any) (bool, bool) {
		b, ok := v.(bool)
		return b, ok
	})
}

// Int accepts integers and whole floats, since JSON decodes every number
// as float64.
func (c Config) Int(key string, def int) int {
	return value(c, key, def, toInt)
}

// Duration accepts Go duration strings ("1m30s") or a number of seconds.
func (c Config) Duration(key string, def time.Duration) time.Duration {
	return value(c, key, def, func(v any) (time.Duration, bool) {
		if s, ok := v.(string); ok {
			d, err := time.ParseDuration(s)
			return d, err == nil
		}
		if f, ok := v.(float64); ok {
			return time.Duration(f * float64(time.Second)), true
		}
		n, ok := toInt(v)
		return time.Duration(n) * time.Second, ok
	})
}

// Level parses slog level names such as "debug", "WARN" or "info+2".
func (c Config) Level(key string, def slog.Level) slog.Level {
	return value(c, key, def, func(v any) (slog.Level, bool) {
		s, ok := v.(string)
		if !ok {
			return 0, false
		}
		var lvl slog.Level
		return lvl, lvl.UnmarshalText([]byte(s)) == nil
	})
}

// Sub returns the section at key. Missing keys and scalars yield an empty
// Config.
func (c Config) Sub(key string) Config {
	return New(value[map[string]any](c, key, nil, func(v any) (map[string]any, bool) {
		m, ok := v.(map[string]any)
		return m, ok
	}))
}

func toInt(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case int64:
		return int(n), true
	case uint64:
		return int(n), true
	case float64:
		if n == float64(int(n)) {
			return int(n), true
		}
	}
	return 0, false
}
