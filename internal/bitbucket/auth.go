package bitbucket

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"go.abhg.dev/bbs/internal/secret"
	"go.abhg.dev/bbs/internal/silog"
	"go.abhg.dev/bbs/internal/ui"
	"golang.org/x/oauth2"
)

// AuthType identifies the authentication method used.
type AuthType int

const (
	// AuthTypePersonalAccessToken indicates authentication
	// with a Bitbucket Server personal or HTTP access token.
	AuthTypePersonalAccessToken AuthType = iota

	// AuthTypeBasic indicates authentication with a username and password.
	AuthTypeBasic

	// AuthTypeEnvironmentVariable indicates authentication via environment variable.
	// This is set to 100 to distinguish from user-selected auth types.
	AuthTypeEnvironmentVariable AuthType = 100
)

func (t AuthType) String() string {
	switch t {
	case AuthTypePersonalAccessToken:
		return "personal access token"
	case AuthTypeBasic:
		return "username and password"
	case AuthTypeEnvironmentVariable:
		return "environment variable"
	default:
		return fmt.Sprintf("AuthType(%d)", int(t))
	}
}

// AuthenticationToken holds the credentials used to talk to Bitbucket Server.
type AuthenticationToken struct {
	// AuthType specifies the authentication method used.
	AuthType AuthType `json:"auth_type"`

	// AccessToken is the personal access token.
	// Sent as a Bearer token.
	AccessToken string `json:"access_token,omitempty"`

	// Username and Password are used for Basic auth
	// when AuthType is AuthTypeBasic.
	Username string `json:"username,omitempty"`
	Password string `json:"password,omitempty"`
}

// Transport wraps base so that requests carry these credentials.
func (t *AuthenticationToken) Transport(base http.RoundTripper) http.RoundTripper {
	if base == nil {
		base = http.DefaultTransport
	}
	if t == nil {
		return base
	}

	if t.AuthType == AuthTypeBasic {
		return &basicAuthTransport{
			Base:     base,
			Username: t.Username,
			Password: t.Password,
		}
	}

	return &oauth2.Transport{
		Base: base,
		Source: oauth2.StaticTokenSource(&oauth2.Token{
			AccessToken: t.AccessToken,
		}),
	}
}

type basicAuthTransport struct {
	Base               http.RoundTripper
	Username, Password string
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// RoundTrippers must not modify the original request.
	req = req.Clone(req.Context())
	req.SetBasicAuth(t.Username, t.Password)
	return t.Base.RoundTrip(req)
}

// Auth loads, saves, and prompts for credentials
// for a single Bitbucket Server instance.
type Auth struct {
	// URL is the base URL of the server.
	// Credentials are stored against this URL.
	URL string // required

	// Token is a personal access token taken from the environment.
	// If set, it takes precedence over stored credentials.
	Token string

	Log *silog.Logger
}

func (a *Auth) logger() *silog.Logger {
	if a.Log == nil {
		return silog.Nop()
	}
	return a.Log
}

// AuthenticationFlow prompts the user to authenticate with Bitbucket Server.
// This rejects the request if the user is already authenticated
// with a BITBUCKET_TOKEN environment variable.
func (a *Auth) AuthenticationFlow(
	ctx context.Context,
	view ui.View,
) (*AuthenticationToken, error) {
	log := a.logger()

	if a.Token != "" {
		log.Error("Already authenticated with BITBUCKET_TOKEN.")
		log.Error("Unset BITBUCKET_TOKEN to login with a different method.")
		return nil, errors.New("already authenticated")
	}

	useToken := true
	if err := ui.Run(view, ui.NewConfirm().
		WithTitle("Use a personal access token?").
		WithDescription("Choose no to log in with a username and password").
		WithValue(&useToken),
	); err != nil {
		return nil, fmt.Errorf("prompt for auth method: %w", err)
	}

	if useToken {
		return a.tokenAuth(ctx, view)
	}
	return a.basicAuth(ctx, view)
}

func (a *Auth) tokenAuth(_ context.Context, view ui.View) (*AuthenticationToken, error) {
	a.logger().Infof("Create a token at: %s/plugins/servlet/access-tokens/manage",
		strings.TrimSuffix(a.URL, "/"))
	a.logger().Info("Required permissions: project admin, repository admin")

	token, err := promptRequired(view, "Enter personal access token", "token is required", true)
	if err != nil {
		return nil, fmt.Errorf("prompt for token: %w", err)
	}

	return &AuthenticationToken{
		AuthType:    AuthTypePersonalAccessToken,
		AccessToken: token,
	}, nil
}

func (a *Auth) basicAuth(_ context.Context, view ui.View) (*AuthenticationToken, error) {
	username, err := promptRequired(view, "Enter username", "username is required", false)
	if err != nil {
		return nil, fmt.Errorf("prompt for username: %w", err)
	}

	password, err := promptRequired(view, "Enter password", "password is required", true)
	if err != nil {
		return nil, fmt.Errorf("prompt for password: %w", err)
	}

	return &AuthenticationToken{
		AuthType: AuthTypeBasic,
		Username: username,
		Password: password,
	}, nil
}

func promptRequired(view ui.View, title, errMsg string, hidden bool) (string, error) {
	var value string
	input := ui.NewInput().
		WithTitle(title).
		WithValidate(requiredValidator(errMsg)).
		WithValue(&value)
	if hidden {
		input = input.WithHidden()
	}
	err := ui.Run(view, input)
	return value, err
}

func requiredValidator(errMsg string) func(string) error {
	return func(input string) error {
		if strings.TrimSpace(input) == "" {
			return errors.New(errMsg)
		}
		return nil
	}
}

// SaveAuthenticationToken saves the given authentication token to the stash.
func (a *Auth) SaveAuthenticationToken(stash secret.Stash, t *AuthenticationToken) error {
	// If the user has set BITBUCKET_TOKEN, we should not save it to the stash.
	if a.Token != "" && a.Token == t.AccessToken {
		return nil
	}

	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal token: %w", err)
	}

	return stash.SaveSecret(a.URL, "token", string(data))
}

// LoadAuthenticationToken loads the authentication token from the stash.
func (a *Auth) LoadAuthenticationToken(stash secret.Stash) (*AuthenticationToken, error) {
	// Environment variable takes precedence.
	if a.Token != "" {
		return &AuthenticationToken{
			AuthType:    AuthTypeEnvironmentVariable,
			AccessToken: a.Token,
		}, nil
	}

	data, err := stash.LoadSecret(a.URL, "token")
	if err != nil {
		return nil, fmt.Errorf("load token: %w", err)
	}

	var token AuthenticationToken
	if err := json.Unmarshal([]byte(data), &token); err != nil {
		return nil, fmt.Errorf("unmarshal token: %w", err)
	}

	return &token, nil
}

// ClearAuthenticationToken removes the authentication token from the stash.
func (a *Auth) ClearAuthenticationToken(stash secret.Stash) error {
	return stash.DeleteSecret(a.URL, "token")
}
