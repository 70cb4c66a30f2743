package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type EventsCfg struct {
	Enabled bool
	Brokers []string
	Topic   string
	Queue   int
}

type SessionCfg struct {
	Driver    string
	File      string
	Namespace string
	RedisAddr string
}

type Config struct {
	Addr          string
	LogLevel      string
	LogConsole    bool
	LogSampleN    int
	BackendURL    string
	SignupURL     string
	SearchTimeout time.Duration
	ProbeTimeout  time.Duration
	Session       SessionCfg
	PostgresDSN   string
	H3Res         int
	Events        EventsCfg
}

// LoadDotenv loads a .env file into the process environment if one exists.
// Variables that are already set win.
func LoadDotenv(path string) error {
	if path == "" {
		path = ".env"
	}
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return err
	}
	return nil
}

func FromEnv() Config {
	res := getint("H3_RES", 9)
	if res < 0 || res > 15 {
		res = 9
	}

	return Config{
		Addr:          getenv("ADDR", ":8090"),
		LogLevel:      getenv("LOG_LEVEL", "info"),
		LogConsole:    getbool("LOG_CONSOLE", false),
		LogSampleN:    getint("LOG_SAMPLE_N", 0),
		BackendURL:    strings.TrimRight(getenv("BACKEND_URL", "http://localhost:8080/restaurantProject"), "/"),
		SignupURL:     strings.TrimRight(getenv("SIGNUP_URL", "http://localhost:8090"), "/"),
		SearchTimeout: getduration("SEARCH_TIMEOUT", 30*time.Second),
		ProbeTimeout:  getduration("PROBE_TIMEOUT", 3*time.Second),
		Session: SessionCfg{
			Driver:    strings.ToLower(getenv("SESSION_DRIVER", "file")),
			File:      getenv("SESSION_FILE", defaultSessionFile()),
			Namespace: getenv("SESSION_NAMESPACE", "default"),
			RedisAddr: getenv("REDIS_ADDR", "localhost:6379"),
		},
		PostgresDSN: getenv("POSTGRES_DSN", ""),
		H3Res:       res,
		Events: EventsCfg{
			Enabled: getbool("EVENTS_ENABLED", false),
			Brokers: splitList(getenv("KAFKA_BROKERS", "localhost:9092")),
			Topic:   getenv("KAFKA_TOPIC", "roulette-search-events"),
			Queue:   getint("EVENTS_QUEUE", 1024),
		},
	}
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return filepath.Join(".restaurant-roulette", "session.json")
	}
	return filepath.Join(home, ".restaurant-roulette", "session.json")
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func getint(k string, def int) int {
	if v := os.Getenv(k); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v := os.Getenv(k); v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "t", "true", "y", "yes":
			return true
		case "0", "f", "false", "n", "no":
			return false
		}
	}
	return def
}

func getduration(k string, def time.Duration) time.Duration {
	if v := os.Getenv(k); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}

// "a:9092, b:9092" -> ["a:9092","b:9092"]
func splitList(s string) []string {
	var out []string
	for p := range strings.SplitSeq(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
