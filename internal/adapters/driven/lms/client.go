package lms

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"golang.org/x/oauth2"
	"golang.org/x/time/rate"

	"github.com/opencourse-labs/stride-cli/internal/core/domain"
	"github.com/opencourse-labs/stride-cli/internal/core/ports/driven"
	"github.com/opencourse-labs/stride-cli/internal/logger"
)

const (
	// DefaultTimeout is the default HTTP request timeout.
	DefaultTimeout = 30 * time.Second

	// RequestRate is the proactive throttle (requests per second).
	RequestRate = 4

	// blocksPath is the course blocks endpoint.
	blocksPath = "/api/courses/v1/blocks/"

	// enrollmentsPath is the user enrolments endpoint; %s is the username.
	enrollmentsPath = "/api/mobile/v1/users/%s/course_enrollments/"

	// completionPath is the completion batch endpoint.
	completionPath = "/api/completion/v1/completion-batch"

	// tokenPath is the OAuth2 token endpoint.
	tokenPath = "/oauth2/access_token"
)

// blocksRequestedFields lists the per-block fields the client asks for.
// Matches what the rest of the application actually reads.
const blocksRequestedFields = "contains_gated_content,graded,completion,student_view_data"

// Ensure Client implements the port.
var _ driven.CourseAPI = (*Client)(nil)

// Client talks to an Open edX compatible LMS.
type Client struct {
	config  driven.ConfigStore
	http    *http.Client
	limiter *rate.Limiter
}

// NewClient creates an LMS client reading its base URL and credentials
// from the configuration store. The underlying HTTP client refreshes
// expired access tokens transparently and persists the replacement.
func NewClient(config driven.ConfigStore) *Client {
	c := &Client{
		config:  config,
		limiter: rate.NewLimiter(rate.Limit(RequestRate), 1),
	}
	c.http = &http.Client{
		Timeout: DefaultTimeout,
		Transport: &oauth2.Transport{
			Source: &persistingTokenSource{config: config},
			Base:   http.DefaultTransport,
		},
	}
	return c
}

// baseURL reads the configured API root, without a trailing slash.
func (c *Client) baseURL() (string, error) {
	base := strings.TrimRight(c.config.GetString(driven.ConfigKeyAPIBaseURL), "/")
	if base == "" {
		return "", fmt.Errorf("api base url not configured: %w", domain.ErrInvalidInput)
	}
	return base, nil
}

// Login performs the OAuth2 password grant and persists the resulting
// tokens plus the username. It uses a plain HTTP client: there is no
// token to refresh yet.
func (c *Client) Login(ctx context.Context, username, password string) error {
	base, err := c.baseURL()
	if err != nil {
		return err
	}

	form := url.Values{}
	form.Set("grant_type", "password")
	form.Set("client_id", c.config.GetString(driven.ConfigKeyClientID))
	form.Set("username", username)
	form.Set("password", password)
	form.Set("token_type", "jwt")

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+tokenPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	resp, err := (&http.Client{Timeout: DefaultTimeout}).Do(req)
	if err != nil {
		return fmt.Errorf("token request: %w: %v", domain.ErrConnectivity, err)
	}
	defer resp.Body.Close()

	var token tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return fmt.Errorf("decode token response: %w", err)
	}
	if resp.StatusCode != http.StatusOK || token.Error != "" {
		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusBadRequest {
			return fmt.Errorf("login rejected: %s: %w", token.ErrorDesc, domain.ErrAuthInvalid)
		}
		return fmt.Errorf("login failed with status %d: %w", resp.StatusCode, domain.ErrRemote)
	}

	expiry := time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if err := errors.Join(
		c.config.Set(driven.ConfigKeyUsername, username),
		c.config.Set(driven.ConfigKeyAccessToken, token.AccessToken),
		c.config.Set(driven.ConfigKeyRefreshToken, token.RefreshToken),
		c.config.Set(driven.ConfigKeyTokenExpiry, expiry.Format(time.RFC3339)),
	); err != nil {
		return fmt.Errorf("persist tokens: %w", err)
	}
	logger.Debug("lms: logged in as %s, token expires %s", username, expiry.Format(time.RFC3339))
	return nil
}

// FetchCourseStructure fetches the complete block graph for a course.
func (c *Client) FetchCourseStructure(ctx context.Context, courseID string) (*domain.CourseStructure, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}
	username := c.config.GetString(driven.ConfigKeyUsername)
	if username == "" {
		return nil, fmt.Errorf("fetch course structure: %w", domain.ErrAuthRequired)
	}

	query := url.Values{}
	query.Set("course_id", courseID)
	query.Set("username", username)
	query.Set("depth", "all")
	query.Set("student_view_data", "video,discussion")
	query.Set("requested_fields", blocksRequestedFields)

	var payload blocksResponse
	if err := c.getJSON(ctx, base+blocksPath+"?"+query.Encode(), &payload); err != nil {
		return nil, fmt.Errorf("fetch course structure %q: %w", courseID, err)
	}

	structure := payload.mapToDomain(courseID)
	if root := structure.RootBlock(); root != nil {
		structure.Name = root.DisplayName
	}
	logger.Debug("lms: fetched structure for %s (%d blocks)", courseID, len(structure.BlockData))
	return structure, nil
}

// EnrolledCourses lists the authenticated user's enrolments, following
// pagination to the end.
func (c *Client) EnrolledCourses(ctx context.Context) ([]domain.EnrolledCourse, error) {
	base, err := c.baseURL()
	if err != nil {
		return nil, err
	}
	username := c.config.GetString(driven.ConfigKeyUsername)
	if username == "" {
		return nil, fmt.Errorf("list enrolments: %w", domain.ErrAuthRequired)
	}

	next := base + fmt.Sprintf(enrollmentsPath, url.PathEscape(username))
	var courses []domain.EnrolledCourse
	for next != "" {
		var page enrollmentsResponse
		if err := c.getJSON(ctx, next, &page); err != nil {
			return nil, fmt.Errorf("list enrolments: %w", err)
		}
		for i := range page.Results {
			courses = append(courses, page.Results[i].mapToDomain())
		}
		next = page.Next
	}
	return courses, nil
}

// MarkBlocksCompletion reports the given blocks as fully completed.
func (c *Client) MarkBlocksCompletion(ctx context.Context, courseID string, blockIDs []string) error {
	base, err := c.baseURL()
	if err != nil {
		return err
	}

	body := completionBody{
		CourseKey: courseID,
		Blocks:    make(map[string]float64, len(blockIDs)),
	}
	for _, id := range blockIDs {
		body.Blocks[id] = 1.0
	}
	encoded, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode completion body: %w", err)
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, base+completionPath, strings.NewReader(string(encoded)))
	if err != nil {
		return fmt.Errorf("create completion request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapTransportError(err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body) //nolint:errcheck

	if err := mapStatusError(resp.StatusCode); err != nil {
		return fmt.Errorf("mark blocks completion: %w", err)
	}
	return nil
}

// getJSON performs a throttled GET and decodes the payload into out.
func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return wrapTransportError(err)
	}
	defer resp.Body.Close()

	if err := mapStatusError(resp.StatusCode); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// wrapTransportError maps client-side failures onto the domain.
// A cancelled context stays a context error so callers can tell an
// abort from a network fault.
func wrapTransportError(err error) error {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return err
	}
	// Token source failures already carry a domain sentinel.
	if errors.Is(err, domain.ErrAuthRequired) || errors.Is(err, domain.ErrAuthExpired) || errors.Is(err, domain.ErrInvalidInput) {
		return err
	}
	var retrieval *oauth2.RetrieveError
	if errors.As(err, &retrieval) {
		return fmt.Errorf("refresh token: %w", domain.ErrAuthExpired)
	}
	return fmt.Errorf("request: %w: %v", domain.ErrConnectivity, err)
}

// mapStatusError maps HTTP status codes onto sentinel errors.
func mapStatusError(status int) error {
	switch {
	case status >= 200 && status < 300:
		return nil
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return fmt.Errorf("status %d: %w", status, domain.ErrAuthExpired)
	case status == http.StatusNotFound:
		return fmt.Errorf("status %d: %w", status, domain.ErrNotFound)
	case status >= 500:
		return fmt.Errorf("status %d: %w", status, domain.ErrRemote)
	default:
		return fmt.Errorf("unexpected status %d: %w", status, domain.ErrRemote)
	}
}
