package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	// ErrCodeInvalid means a variable is set but cannot be parsed.
	ErrCodeInvalid = "config_invalid"
	// ErrCodeEnvFile means the .env file exists but cannot be read.
	ErrCodeEnvFile = "config_env_file"
)

const (
	DefaultAPIURL      = "http://127.0.0.1:8081"
	DefaultAddr        = ":8080"
	DefaultRatePerSec  = 5.0
	DefaultHTTPTimeout = 10 * time.Second
	DefaultLogLevel    = "info"

	DefaultMockAddr = ":8081"
	DefaultMockDB   = "./data/animes.db"
	DefaultMockSeed = "./data/animes.json"
	DefaultFeedAddr = ":9090"
	DefaultGRPCAddr = ":50051"
)

// Manager is the configuration of the web application.
type Manager struct {
	APIURL      string        // ANIME_API_URL, base of the remote /animes collection
	Addr        string        // ANIME_ADDR
	RatePerSec  float64       // ANIME_RATE_PER_SEC, 0 disables pacing
	HTTPTimeout time.Duration // ANIME_HTTP_TIMEOUT
	LogLevel    string        // ANIME_LOG_LEVEL
}

// MockAPI is the configuration of the mock remote backend.
type MockAPI struct {
	Addr     string // MOCKAPI_ADDR
	DBPath   string // MOCKAPI_DB
	SeedPath string // MOCKAPI_SEED, empty disables seeding
	FeedAddr string // MOCKAPI_FEED_ADDR, empty disables the change feed
	GRPCAddr string // MOCKAPI_GRPC_ADDR, empty disables gRPC
	LogLevel string // ANIME_LOG_LEVEL
}

// Error is a structured configuration error.
type Error struct {
	Code string
	Key  string
	Err  error
}

func (e *Error) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Key, e.Err)
	}
	return fmt.Sprintf("%s: %v", e.Code, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Code extracts the error code, or "" when err is not an *Error.
func Code(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

// LoadEnvFile loads path into the process environment without overriding variables
// that are already set. A missing file is not an error.
func LoadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return &Error{Code: ErrCodeEnvFile, Key: path, Err: err}
	}
	return nil
}

// LoadManager reads the manager configuration through getenv (os.Getenv in production).
func LoadManager(getenv func(string) string) (Manager, error) {
	e := env{getenv: getenv}
	m := Manager{
		APIURL:      e.str("ANIME_API_URL", DefaultAPIURL),
		Addr:        e.str("ANIME_ADDR", DefaultAddr),
		RatePerSec:  e.float("ANIME_RATE_PER_SEC", DefaultRatePerSec),
		HTTPTimeout: e.duration("ANIME_HTTP_TIMEOUT", DefaultHTTPTimeout),
		LogLevel:    e.str("ANIME_LOG_LEVEL", DefaultLogLevel),
	}
	if e.err != nil {
		return Manager{}, e.err
	}

	u, err := url.Parse(m.APIURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		if err == nil {
			err = errors.New("want an absolute http(s) URL")
		}
		return Manager{}, &Error{Code: ErrCodeInvalid, Key: "ANIME_API_URL", Err: err}
	}
	m.APIURL = strings.TrimRight(m.APIURL, "/")
	if m.RatePerSec < 0 {
		return Manager{}, &Error{Code: ErrCodeInvalid, Key: "ANIME_RATE_PER_SEC", Err: errors.New("must not be negative")}
	}
	if m.HTTPTimeout <= 0 {
		return Manager{}, &Error{Code: ErrCodeInvalid, Key: "ANIME_HTTP_TIMEOUT", Err: errors.New("must be positive")}
	}
	return m, nil
}

// LoadMockAPI reads the mock backend configuration.
func LoadMockAPI(getenv func(string) string) (MockAPI, error) {
	e := env{getenv: getenv}
	m := MockAPI{
		Addr:     e.str("MOCKAPI_ADDR", DefaultMockAddr),
		DBPath:   e.str("MOCKAPI_DB", DefaultMockDB),
		SeedPath: e.optional("MOCKAPI_SEED", DefaultMockSeed),
		FeedAddr: e.optional("MOCKAPI_FEED_ADDR", DefaultFeedAddr),
		GRPCAddr: e.optional("MOCKAPI_GRPC_ADDR", DefaultGRPCAddr),
		LogLevel: e.str("ANIME_LOG_LEVEL", DefaultLogLevel),
	}
	if m.DBPath == "" {
		return MockAPI{}, &Error{Code: ErrCodeInvalid, Key: "MOCKAPI_DB", Err: errors.New("must not be empty")}
	}
	return m, e.err
}

// env collects the first parse error so loaders read top to bottom.
type env struct {
	getenv func(string) string
	err    error
}

func (e *env) lookup(key string) (string, bool) {
	v := strings.TrimSpace(e.getenv(key))
	return v, v != ""
}

func (e *env) str(key, def string) string {
	if v, ok := e.lookup(key); ok {
		return v
	}
	return def
}

// optional treats the literal "off" as an explicit empty value.
func (e *env) optional(key, def string) string {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	if strings.EqualFold(v, "off") {
		return ""
	}
	return v
}

func (e *env) float(key string, def float64) float64 {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return f
}

func (e *env) duration(key string, def time.Duration) time.Duration {
	v, ok := e.lookup(key)
	if !ok {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return def
	}
	return d
}

func (e *env) fail(key string, err error) {
	if e.err == nil {
		e.err = &Error{Code: ErrCodeInvalid, Key: key, Err: err}
	}
}
