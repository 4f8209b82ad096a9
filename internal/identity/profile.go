package identity

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"

	"github.com/Tiliavir/daylog/internal/model"
	"github.com/Tiliavir/daylog/internal/storage"
)

const graphMeURL = "https://graph.microsoft.com/v1.0/me"

// savingTokenSource wraps a TokenSource and persists refreshed tokens.
type savingTokenSource struct {
	ts   oauth2.TokenSource
	save func(*oauth2.Token) error
}

func (s *savingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := s.ts.Token()
	if err != nil {
		return nil, err
	}
	// Best-effort save; ignore errors.
	_ = s.save(tok)
	return tok, nil
}

// profileResponse covers both Microsoft Graph /me and OIDC userinfo.
type profileResponse struct {
	ID                string `json:"id"`
	Sub               string `json:"sub"`
	DisplayName       string `json:"displayName"`
	Name              string `json:"name"`
	Mail              string `json:"mail"`
	UserPrincipalName string `json:"userPrincipalName"`
	Email             string `json:"email"`
	Picture           string `json:"picture"`
}

func (p profileResponse) user() model.User {
	u := model.User{ID: p.ID, Name: p.DisplayName, Email: p.Mail, AvatarURL: p.Picture}
	if u.ID == "" {
		u.ID = p.Sub
	}
	if u.Name == "" {
		u.Name = p.Name
	}
	if u.Email == "" {
		u.Email = p.Email
	}
	if u.Email == "" {
		u.Email = p.UserPrincipalName
	}
	return u
}

func (a *Authenticator) fetchProfile(ctx context.Context, tok *oauth2.Token) (model.User, error) {
	endpoint := a.cfg.UserInfoURL
	if endpoint == "" {
		endpoint = graphMeURL
	}
	client := oauth2.NewClient(ctx, &savingTokenSource{
		ts:   a.oauth.TokenSource(ctx, tok),
		save: a.saveToken,
	})

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return model.User{}, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return model.User{}, fmt.Errorf("profile request failed: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return model.User{}, fmt.Errorf("reading response body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return model.User{}, fmt.Errorf("profile endpoint error %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var p profileResponse
	if err := json.Unmarshal(body, &p); err != nil {
		return model.User{}, fmt.Errorf("decoding profile: %w", err)
	}
	user := p.user()
	if err := storage.ValidateKey(user.ID); err != nil {
		return model.User{}, fmt.Errorf("profile has no usable id: %w", err)
	}
	return user, nil
}
