package helper

import (
	"os"
	"strconv"
	"strings"
)

// EnvString replace $ENV.xxx with the env
func EnvString(key interface{}, defaults ...string) string {
	k, ok := key.(string)
	if !ok {
		if len(defaults) > 0 {
			return defaults[0]
		}
		return ""
	}

	if strings.HasPrefix(k, "$ENV.") {
		k = strings.TrimPrefix(k, "$ENV.")
		v := os.Getenv(k)
		if v == "" && len(defaults) > 0 {
			return defaults[0]
		}
		return v
	}

	if k == "" && len(defaults) > 0 {
		return defaults[0]
	}
	return k
}

// EnvInt replace $ENV.xxx with the env and cast to the integer
func EnvInt(key interface{}, defaults ...int) int {
	fallback := 0
	if len(defaults) > 0 {
		fallback = defaults[0]
	}

	switch v := key.(type) {
	case int:
		return v
	case string:
		if strings.HasPrefix(v, "$ENV.") {
			v = os.Getenv(strings.TrimPrefix(v, "$ENV."))
		}
		if v == "" {
			return fallback
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fallback
		}
		return n
	}
	return fallback
}

// Getenv returns the first non-empty environment variable of names
func Getenv(names ...string) string {
	for _, name := range names {
		if v := os.Getenv(name); v != "" {
			return v
		}
	}
	return ""
}
