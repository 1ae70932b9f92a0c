package bbtest

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"testing"

	"go.abhg.dev/bbs/internal/bitbucket/shambucket"
	"go.abhg.dev/bbs/internal/httptest"
	"gopkg.in/yaml.v3"
)

var _update = flag.Bool("update", false, "record fixtures against a real Bitbucket Server")

// Update reports whether fixtures are being recorded
// against a real server.
func Update() bool {
	return *_update
}

// Config holds the details of the Bitbucket Server that tests run against.
//
// In update mode, it is loaded from testconfig.yaml next to this file,
// with BITBUCKET_URL and BITBUCKET_TOKEN taking precedence.
// Otherwise, canonical placeholders are used.
type Config struct {
	// URL is the base URL of the server.
	URL string `yaml:"url"`

	// Token is a personal access token with admin permissions.
	Token string `yaml:"token"`

	// User is the name of an existing user
	// that permissions can be granted to.
	User string `yaml:"user"`

	// Group is the name of an existing group
	// that permissions can be granted to.
	Group string `yaml:"group"`
}

// Canonical placeholders used in recorded fixtures.
const (
	CanonicalURL   = "https://bitbucket.example.com"
	CanonicalToken = "token"
	CanonicalUser  = "test-user"
	CanonicalGroup = shambucket.DefaultGroup
)

// CanonicalConfig returns the configuration used in replay mode
// and against the fake server.
func CanonicalConfig() Config {
	return Config{
		URL:   CanonicalURL,
		Token: CanonicalToken,
		User:  CanonicalUser,
		Group: CanonicalGroup,
	}
}

type configState struct {
	config *Config
	loadE  error
}

var (
	_configOnce  sync.Once
	_configState configState
)

// LoadConfig returns the configuration of the real server.
// It fails the test if the configuration is missing or incomplete.
func LoadConfig(t testing.TB) Config {
	t.Helper()

	_configOnce.Do(func() {
		_configState.config, _configState.loadE = loadConfig(configFilePath())
	})
	if _configState.loadE != nil {
		t.Fatalf("Failed to load test config: %v", _configState.loadE)
	}
	return *_configState.config
}

func loadConfig(path string) (*Config, error) {
	cfg := CanonicalConfig()
	cfg.URL, cfg.Token, cfg.User = "", "", ""

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("parse %v: %w", path, err)
		}
	case os.IsNotExist(err):
		// Environment variables alone may be enough.
	default:
		return nil, err
	}

	if url := os.Getenv("BITBUCKET_URL"); url != "" {
		cfg.URL = url
	}
	if token := os.Getenv("BITBUCKET_TOKEN"); token != "" {
		cfg.Token = token
	}

	switch {
	case cfg.URL == "":
		return nil, fmt.Errorf("%v: url is required (or set BITBUCKET_URL)", path)
	case cfg.Token == "":
		return nil, fmt.Errorf("%v: token is required (or set BITBUCKET_TOKEN)", path)
	case cfg.User == "":
		return nil, fmt.Errorf("%v: user is required", path)
	}
	return &cfg, nil
}

// configFilePath returns the path to testconfig.yaml.
func configFilePath() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "testconfig.yaml")
}

// Sanitizers returns sanitizers that replace the values in cfg
// with their canonical placeholders.
func Sanitizers(cfg Config) []httptest.Sanitizer {
	canonical := CanonicalConfig()

	var sanitizers []httptest.Sanitizer
	add := func(actual, canonical string) {
		if actual != "" && actual != canonical {
			sanitizers = append(sanitizers, httptest.Sanitizer{
				Replace: actual,
				With:    canonical,
			})
		}
	}
	add(cfg.URL, canonical.URL)
	add(cfg.Token, canonical.Token)
	add(cfg.User, canonical.User)
	add(cfg.Group, canonical.Group)
	return sanitizers
}
