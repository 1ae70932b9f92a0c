// Package httptest provides utilities for HTTP testing.
// It includes helpers for the VCR library we use.
package httptest

import (
	"io"
	"maps"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/cassette"
	"gopkg.in/dnaeon/go-vcr.v4/pkg/recorder"
)

// DefaultFixtureDir is the directory, relative to the test's package,
// that holds recorded fixtures.
var DefaultFixtureDir = filepath.Join("testdata", "fixtures")

// Sanitizer replaces a sensitive or environment-specific value
// in recorded fixtures with a canonical placeholder.
type Sanitizer struct {
	// Replace is the string to search for in the fixture.
	Replace string

	// With is the canonical placeholder to substitute.
	With string
}

// RecorderOptions configures [NewRecorder].
type RecorderOptions struct {
	// Dir is the directory holding fixtures.
	// Defaults to DefaultFixtureDir.
	Dir string

	// Update records new fixtures against a real server
	// instead of replaying existing ones.
	Update bool

	// RealTransport sends requests in update mode.
	// Defaults to http.DefaultTransport.
	RealTransport http.RoundTripper

	// Sanitizers are applied to fixtures when they are saved.
	// Responses seen by the test while recording are unchanged.
	Sanitizers []Sanitizer
}

// FixtureExists reports whether a fixture with the given name
// was recorded in dir.
// An empty dir means DefaultFixtureDir.
func FixtureExists(dir, name string) bool {
	if dir == "" {
		dir = DefaultFixtureDir
	}
	_, err := os.Stat(filepath.Join(dir, name) + ".yaml")
	return err == nil
}

// NewRecorder builds an HTTP recorder/replayer for the fixture <dir>/<name>.
//
// It records in update mode and replays otherwise.
// In replay mode, requests that were not recorded fail.
func NewRecorder(t testing.TB, name string, opts RecorderOptions) *recorder.Recorder {
	t.Helper()

	dir := opts.Dir
	if dir == "" {
		dir = DefaultFixtureDir
	}

	realTransport := opts.RealTransport
	if realTransport == nil {
		realTransport = http.DefaultTransport
	}

	mode := recorder.ModeReplayOnly
	if opts.Update {
		mode = recorder.ModeRecordOnly
	}

	// Sanitize only what is written to disk.
	// The live caller must see the real response while recording.
	beforeSave := func(i *cassette.Interaction) error {
		sanitizeHeaders(i)
		applySanitizers(i, opts.Sanitizers)
		return nil
	}

	rec, err := recorder.New(filepath.Join(dir, name),
		recorder.WithMode(mode),
		recorder.WithRealTransport(realTransport),
		recorder.WithSkipRequestLatency(true),
		recorder.WithHook(beforeSave, recorder.BeforeSaveHook),
		recorder.WithMatcher(MatchRequest),
	)
	require.NoError(t, err)
	t.Cleanup(func() {
		assert.NoError(t, rec.Stop())
	})

	return rec
}

// MatchRequest matches requests by method, URL, and body.
// Headers are ignored since they are stripped on record.
func MatchRequest(r *http.Request, want cassette.Request) bool {
	if r.Method != want.Method || r.URL.String() != want.URL {
		return false
	}

	var body string
	if r.Body != nil && r.GetBody != nil {
		rc, err := r.GetBody()
		if err != nil {
			return false
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			return false
		}
		body = string(data)
	}
	return body == want.Body
}

// sanitizeHeaders removes all headers from the recorded interaction
// except for an allowlist of safe ones.
func sanitizeHeaders(i *cassette.Interaction) {
	allHeaders := make(http.Header)
	maps.Copy(allHeaders, i.Request.Headers)
	maps.Copy(allHeaders, i.Response.Headers)

	var toRemove []string
	for k := range allHeaders {
		switch strings.ToLower(k) {
		case "content-type", "content-length", "accept":
			// ok
		default:
			toRemove = append(toRemove, k)
		}
	}

	for _, k := range toRemove {
		delete(i.Request.Headers, k)
		delete(i.Response.Headers, k)
	}
}

// applySanitizers replaces environment-specific values
// in URLs and bodies.
func applySanitizers(i *cassette.Interaction, sanitizers []Sanitizer) {
	for _, s := range sanitizers {
		if s.Replace == "" {
			continue
		}
		i.Request.URL = strings.ReplaceAll(i.Request.URL, s.Replace, s.With)
		i.Request.Body = strings.ReplaceAll(i.Request.Body, s.Replace, s.With)
		i.Response.Body = strings.ReplaceAll(i.Response.Body, s.Replace, s.With)
	}
}
