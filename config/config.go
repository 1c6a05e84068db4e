package config

import (
	"os"
	"strconv"
	"strings"
)

// New snapshots the process environment into a map.
func New() map[string]string {
	environ := os.Environ()
	envAsMap := make(map[string]string, len(environ))
	for _, entry := range environ {
		if entry != "" {
			key, value := split(entry)
			envAsMap[key] = value
		}
	}
	return envAsMap
}

// assumes entry is not the empty string
func split(entry string) (key, value string) {
	parts := strings.SplitN(entry, "=", 2)
	if len(parts) < 2 {
		return parts[0], ""
	}
	return parts[0], parts[1]
}

func GetString(config map[string]string, key string, defaultValue string) string {
	if config == nil {
		return defaultValue
	}

	if val, ok := config[key]; ok {
		return val
	}
	return defaultValue
}

// GetFirstString returns the first non-empty value among keys.
func GetFirstString(config map[string]string, defaultValue string, keys ...string) string {
	for _, key := range keys {
		if val := strings.TrimSpace(GetString(config, key, "")); val != "" {
			return val
		}
	}
	return defaultValue
}

func GetInt(config map[string]string, key string, defaultValue int) int {
	if config == nil {
		return defaultValue
	}

	s, ok := config[key]
	if !ok {
		return defaultValue
	}

	asInt, err := strconv.Atoi(s)
	if err != nil {
		return defaultValue
	}

	return asInt
}

func GetBool(config map[string]string, key string, defaultValue bool) bool {
	s, ok := config[key]
	if !ok || s == "" {
		return defaultValue
	}

	asBool, err := strconv.ParseBool(strings.ToLower(s))
	if err != nil {
		return defaultValue
	}

	return asBool
}

// Merge copies every key of overlay that is missing or empty in base.
func Merge(base, overlay map[string]string) map[string]string {
	if base == nil {
		base = make(map[string]string, len(overlay))
	}
	for key, value := range overlay {
		if existing, ok := base[key]; !ok || existing == "" {
			base[key] = value
		}
	}
	return base
}
