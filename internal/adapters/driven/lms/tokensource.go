package lms

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
	"github.com/opencourse-labs/stride-cli/internal/logger"
)

// expirySkew refreshes a token slightly before the server would reject it.
const expirySkew = time.Minute

// persistingTokenSource yields access tokens from the configuration
// store, refreshing through the LMS token endpoint when the stored
// token has expired. Refreshed tokens are written back so other stride
// invocations reuse them.
type persistingTokenSource struct {
	config driven.ConfigStore

	mu sync.Mutex
}

// Token implements oauth2.TokenSource.
func (s *persistingTokenSource) Token() (*oauth2.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	access := s.config.GetString(driven.ConfigKeyAccessToken)
	if access == "" {
		return nil, fmt.Errorf("no stored session, run login first: %w", domain.ErrAuthRequired)
	}

	expiry, _ := time.Parse(time.RFC3339, s.config.GetString(driven.ConfigKeyTokenExpiry))
	if expiry.IsZero() || time.Now().Before(expiry.Add(-expirySkew)) {
		return &oauth2.Token{AccessToken: access, TokenType: "Bearer", Expiry: expiry}, nil
	}

	return s.refresh()
}

// refresh exchanges the stored refresh token for a new access token and
// persists the pair. Caller holds the mutex.
func (s *persistingTokenSource) refresh() (*oauth2.Token, error) {
	refreshToken := s.config.GetString(driven.ConfigKeyRefreshToken)
	if refreshToken == "" {
		return nil, fmt.Errorf("session expired and no refresh token stored: %w", domain.ErrAuthExpired)
	}
	base := strings.TrimRight(s.config.GetString(driven.ConfigKeyAPIBaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("api base url not configured: %w", domain.ErrInvalidInput)
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", s.config.GetString(driven.ConfigKeyClientID))
	form.Set("refresh_token", refreshToken)

	ctx, cancel := context.WithTimeout(context.Background(), DefaultTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, fmt.Errorf("create refresh request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := (&http.Client{Timeout: DefaultTimeout}).Do(req)
	if err != nil {
		return nil, fmt.Errorf("refresh request: %w: %v", domain.ErrConnectivity, err)
	}
	defer resp.Body.Close()

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, fmt.Errorf("decode refresh response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || token.AccessToken == "" {
		return nil, fmt.Errorf("refresh rejected with status %d: %w", resp.StatusCode, domain.ErrAuthExpired)
	}

	expiry := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if err := errors.Join(
		s.config.Set(driven.ConfigKeyAccessToken, token.AccessToken),
		s.config.Set(driven.ConfigKeyRefreshToken, token.RefreshToken),
		s.config.Set(driven.ConfigKeyTokenExpiry, expiry.Format(time.RFC3339)),
	); err != nil {
		return nil, fmt.Errorf("persist refreshed tokens: %w", err)
	}
	logger.Debug("lms: refreshed access token, expires %s", expiry.Format(time.RFC3339))

	return &oauth2.Token{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    "Bearer",
		Expiry:       expiry,
	}, nil
}
