// Package bbtest runs tests against a Bitbucket Server.
//
// Tests run in one of three modes:
//
//   - with -update, against the real server configured in testconfig.yaml,
//     recording every request as a fixture.
//   - if a fixture was recorded, by replaying it.
//   - otherwise, against an in-memory [shambucket.ShamBucket].
package bbtest

import (
	"fmt"
	"net/http"
	stdhttptest "net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
	"go.abhg.dev/bbs/internal/bitbucket"
	"go.abhg.dev/bbs/internal/bitbucket/shambucket"
	"go.abhg.dev/bbs/internal/httptest"
	"go.abhg.dev/bbs/internal/silog"
)

// Mode is the backend a test runs against.
type Mode int

const (
	// ModeFake runs against an in-memory fake server.
	ModeFake Mode = iota

	// ModeReplay replays recorded fixtures.
	ModeReplay

	// ModeRecord records fixtures against a real server.
	ModeRecord
)

func (m Mode) String() string {
	switch m {
	case ModeFake:
		return "fake"
	case ModeReplay:
		return "replay"
	case ModeRecord:
		return "record"
	default:
		return fmt.Sprintf("Mode(%d)", int(m))
	}
}

// Server is a Bitbucket Server that a test talks to.
type Server struct {
	// Client is connected to the server.
	Client *bitbucket.Client

	// Config describes the server.
	// Outside of ModeRecord, it holds canonical placeholders.
	Config Config

	Mode Mode

	// Sham is the fake server in ModeFake, and nil otherwise.
	Sham *shambucket.ShamBucket

	values *valueStore
}

// OpenOptions configures [Open].
type OpenOptions struct {
	// Dir holds fixtures. Defaults to httptest.DefaultFixtureDir.
	Dir string

	// Log receives logs from the client and the fake server.
	Log *silog.Logger
}

// Open connects to the Bitbucket Server for the test.
// name identifies the fixture; it is usually t.Name().
func Open(t testing.TB, name string, opts *OpenOptions) *Server {
	t.Helper()

	if opts == nil {
		opts = &OpenOptions{}
	}
	log := opts.Log
	if log == nil {
		log = silog.Nop()
	}

	switch {
	case Update():
		return openRecord(t, name, opts.Dir, log)
	case httptest.FixtureExists(opts.Dir, name):
		return openReplay(t, name, opts.Dir, log)
	default:
		return openFake(t, log)
	}
}

func openRecord(t testing.TB, name, dir string, log *silog.Logger) *Server {
	cfg := LoadConfig(t)

	rec := httptest.NewRecorder(t, name, httptest.RecorderOptions{
		Dir:        dir,
		Update:     true,
		Sanitizers: Sanitizers(cfg),
	})
	client := newClient(t, cfg.URL, cfg.Token, rec.GetDefaultClient(), log)

	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("Recording failed. Fixtures may be incomplete.")
		}
	})

	return &Server{
		Client: client,
		Config: cfg,
		Mode:   ModeRecord,
		values: newValueStore(t, dir, name, true),
	}
}

func openReplay(t testing.TB, name, dir string, log *silog.Logger) *Server {
	cfg := CanonicalConfig()
	rec := httptest.NewRecorder(t, name, httptest.RecorderOptions{Dir: dir})
	client := newClient(t, cfg.URL, cfg.Token, rec.GetDefaultClient(), log)

	t.Cleanup(func() {
		if t.Failed() {
			t.Logf("To update the test fixtures, run:")
			t.Logf("    BITBUCKET_URL=$url BITBUCKET_TOKEN=$token go test -update -run '^%s$'", t.Name())
		}
	})

	return &Server{
		Client: client,
		Config: cfg,
		Mode:   ModeReplay,
		values: newValueStore(t, dir, name, false),
	}
}

func openFake(t testing.TB, log *silog.Logger) *Server {
	cfg := CanonicalConfig()
	sb := shambucket.New(&shambucket.Options{
		Log:   log,
		Token: cfg.Token,
		Users: []string{cfg.User},
	})
	srv := stdhttptest.NewServer(sb)
	t.Cleanup(srv.Close)

	cfg.URL = srv.URL
	return &Server{
		Client: newClient(t, cfg.URL, cfg.Token, srv.Client(), log),
		Config: cfg,
		Mode:   ModeFake,
		Sham:   sb,
		values: newMemoryValueStore(t),
	}
}

func newClient(
	t testing.TB,
	url, token string,
	httpClient *http.Client,
	log *silog.Logger,
) *bitbucket.Client {
	t.Helper()

	client, err := bitbucket.NewClient(url, &bitbucket.ClientOptions{
		HTTPClient: httpClient,
		Token: &bitbucket.AuthenticationToken{
			AuthType:    bitbucket.AuthTypePersonalAccessToken,
			AccessToken: token,
		},
		Log: log,
	})
	require.NoError(t, err)
	return client
}
