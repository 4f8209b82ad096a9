// Package identity signs the user in with the OAuth2 device code flow and
// resolves the signed-in profile every other command is scoped to.
package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"golang.org/x/oauth2"

	"github.com/Tiliavir/daylog/internal/config"
	"github.com/Tiliavir/daylog/internal/model"
)

// ErrSignedOut is returned when no session exists.
var ErrSignedOut = errors.New("not signed in; run `daylog login`")

func msEndpoint(tenantID, path string) string {
	return "https://login.microsoftonline.com/" + tenantID + "/oauth2/v2.0/" + path
}

// Authenticator owns the token and session files under <data_dir>/auth.
type Authenticator struct {
	oauth  *oauth2.Config
	cfg    config.IdentityConfig
	dir    string
	prompt io.Writer
	logger *zap.Logger
}

// New returns an Authenticator. Device-code instructions are written to
// prompt.
func New(cfg config.IdentityConfig, dataDir string, prompt io.Writer, logger *zap.Logger) *Authenticator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Authenticator{
		oauth:  oauth2Config(cfg),
		cfg:    cfg,
		dir:    filepath.Join(dataDir, "auth"),
		prompt: prompt,
		logger: logger.Named("identity"),
	}
}

// oauth2Config derives the endpoints from the tenant unless they are set
// explicitly.
func oauth2Config(cfg config.IdentityConfig) *oauth2.Config {
	deviceURL := cfg.DeviceAuthURL
	if deviceURL == "" {
		deviceURL = msEndpoint(cfg.TenantID, "devicecode")
	}
	tokenURL := cfg.TokenURL
	if tokenURL == "" {
		tokenURL = msEndpoint(cfg.TenantID, "token")
	}
	return &oauth2.Config{
		ClientID: cfg.ClientID,
		Scopes:   cfg.Scopes,
		Endpoint: oauth2.Endpoint{
			DeviceAuthURL: deviceURL,
			TokenURL:      tokenURL,
			AuthStyle:     oauth2.AuthStyleInParams,
		},
	}
}

func (a *Authenticator) tokenPath() string   { return filepath.Join(a.dir, "tokens.json") }
func (a *Authenticator) sessionPath() string { return filepath.Join(a.dir, "session.json") }

func readFile(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("corrupt file (delete %s to re-authenticate): %w", path, err)
	}
	return true, nil
}

// writeFile persists v with owner-only permissions via temp file + rename.
func writeFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating auth directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", filepath.Base(path), err)
	}
	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("saving %s: %w", filepath.Base(path), err)
	}
	return nil
}

func (a *Authenticator) loadToken() (*oauth2.Token, error) {
	var tok oauth2.Token
	ok, err := readFile(a.tokenPath(), &tok)
	if err != nil || !ok {
		return nil, err
	}
	return &tok, nil
}

func (a *Authenticator) saveToken(tok *oauth2.Token) error {
	return writeFile(a.tokenPath(), tok)
}

// token returns a usable token: the saved one, a refreshed one, or a new
// one from the device code flow when interactive is set.
func (a *Authenticator) token(ctx context.Context, interactive bool) (*oauth2.Token, error) {
	tok, err := a.loadToken()
	if err != nil {
		a.logger.Warn("discarding saved token", zap.Error(err))
		tok = nil
	}
	if tok != nil && tok.Valid() {
		return tok, nil
	}

	if tok != nil && tok.RefreshToken != "" {
		refreshed, err := a.oauth.TokenSource(ctx, tok).Token()
		if err == nil {
			if err := a.saveToken(refreshed); err != nil {
				a.logger.Warn("could not save refreshed token", zap.Error(err))
			}
			return refreshed, nil
		}
		a.logger.Info("token refresh failed, re-authenticating", zap.Error(err))
	}

	if !interactive {
		return nil, ErrSignedOut
	}

	resp, err := a.oauth.DeviceAuth(ctx)
	if err != nil {
		return nil, fmt.Errorf("device auth request failed: %w", err)
	}

	fmt.Fprintln(a.prompt)
	fmt.Fprintln(a.prompt, "To sign in, use a web browser to open the page:")
	fmt.Fprintf(a.prompt, "  %s\n", resp.VerificationURI)
	fmt.Fprintf(a.prompt, "Enter the code: %s\n", resp.UserCode)
	fmt.Fprintln(a.prompt)

	newTok, err := a.oauth.DeviceAccessToken(ctx, resp)
	if err != nil {
		return nil, fmt.Errorf("device authentication failed: %w", err)
	}
	if err := a.saveToken(newTok); err != nil {
		a.logger.Warn("could not save token", zap.Error(err))
	}
	return newTok, nil
}

// SignIn runs the device code flow (or reuses a saved token), resolves the
// profile and stores it as the current session.
func (a *Authenticator) SignIn(ctx context.Context) (model.User, error) {
	tok, err := a.token(ctx, true)
	if err != nil {
		return model.User{}, err
	}
	user, err := a.fetchProfile(ctx, tok)
	if err != nil {
		return model.User{}, err
	}
	if err := writeFile(a.sessionPath(), user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Current returns the signed-in user, or ErrSignedOut.
func (a *Authenticator) Current() (model.User, error) {
	var user model.User
	ok, err := readFile(a.sessionPath(), &user)
	if err != nil {
		return model.User{}, err
	}
	if !ok || user.ID == "" {
		return model.User{}, ErrSignedOut
	}
	return user, nil
}

// Refresh re-reads the profile with the saved token without prompting.
func (a *Authenticator) Refresh(ctx context.Context) (model.User, error) {
	tok, err := a.token(ctx, false)
	if err != nil {
		return model.User{}, err
	}
	user, err := a.fetchProfile(ctx, tok)
	if err != nil {
		return model.User{}, err
	}
	return user, writeFile(a.sessionPath(), user)
}

// SignOut forgets the session and the tokens. Signing out twice is fine.
func (a *Authenticator) SignOut() error {
	for _, p := range []string{a.sessionPath(), a.tokenPath()} {
		if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("removing %s: %w", p, err)
		}
	}
	return nil
}
