package classifications

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"user-backend/internal/shared/telemetry"
)

// HTTPSource queries the authorization service's /userPermissions endpoint.
type HTTPSource struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSource builds an unauthenticated source client.
func NewHTTPSource(baseURL string, timeout time.Duration) *HTTPSource {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &HTTPSource{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
	}
}

// NewOAuthHTTPSource builds a source client that authenticates with the
// client-credentials flow; tokens are fetched and refreshed transparently.
func NewOAuthHTTPSource(ctx context.Context, baseURL, tokenURL, clientID, clientSecret string, timeout time.Duration) *HTTPSource {
	cfg := clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
	}
	client := cfg.Client(ctx)
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	client.Timeout = timeout
	return &HTTPSource{baseURL: baseURL, client: client}
}

// userPermissions is the upstream payload. A JSON null body means the user is
// unknown there.
type userPermissions struct {
	ClassificationsAllow []struct {
		ClassificationID    int `json:"classificationId"`
		ClassificationLayer int `json:"classificationLayer"`
	} `json:"classificationsAllow"`
}

// FetchUserClassifications implements Source. Any transport or decode failure
// degrades to absent.
func (s *HTTPSource) FetchUserClassifications(ctx context.Context, userID string) ([]Classification, bool) {
	endpoint := s.baseURL + "/userPermissions?" + url.Values{"userName": {userID}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, false
	}

	resp, err := s.client.Do(req)
	if err != nil {
		telemetry.Warn("classifications.source_unreachable", map[string]any{
			"user_id": userID,
			"error":   err.Error(),
		})
		return nil, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		telemetry.Warn("classifications.source_status", map[string]any{
			"user_id": userID,
			"status":  resp.StatusCode,
		})
		return nil, false
	}

	var permissions *userPermissions
	if err := json.NewDecoder(resp.Body).Decode(&permissions); err != nil {
		return nil, false
	}
	if permissions == nil {
		// Upstream answers null for unknown users.
		return nil, false
	}

	out := make([]Classification, 0, len(permissions.ClassificationsAllow))
	for _, allow := range permissions.ClassificationsAllow {
		out = append(out, Classification{
			ID:     allow.ClassificationID,
			Layer:  allow.ClassificationLayer,
			UserID: userID,
		})
	}
	return out, true
}

var (
	_ Source = (*HTTPSource)(nil)
	_ Source = AbsentSource{}
)
