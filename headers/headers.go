package headers

import (
	"net/http"

	"github.com/hollowlog/reddit-harvester/config"
)

const (
	// OAuthBaseURL serves authenticated listing requests.
	OAuthBaseURL = "https://oauth.reddit.com"
	// PublicBaseURL serves the unauthenticated .json endpoints used in
	// read-only mode.
	PublicBaseURL = "https://www.reddit.com"
)

// RedditHeaders carries everything a request to Reddit needs. An empty
// AccessToken means read-only mode against the public endpoints. Host
// overrides the API host when set, which keeps tests off the network.
type RedditHeaders struct {
	AccessToken string
	UserAgent   string
	Host        string
}

func NewRedditHeaders(cfg *config.Config) *RedditHeaders {
	return &RedditHeaders{
		UserAgent: cfg.Account.UserAgent,
	}
}

func (r *RedditHeaders) GetBasicHeaders() map[string]string {
	headers := map[string]string{
		"Accept":     "application/json",
		"User-Agent": r.UserAgent,
	}
	if r.AccessToken != "" {
		headers["Authorization"] = "Bearer " + r.AccessToken
	}
	return headers
}

func (r *RedditHeaders) AddHeadersToRequest(req *http.Request) {
	for key, value := range r.GetBasicHeaders() {
		req.Header.Set(key, value)
	}
}

// BaseURL picks the API host matching the auth mode.
func (r *RedditHeaders) BaseURL() string {
	if r.Host != "" {
		return r.Host
	}
	if r.AccessToken != "" {
		return OAuthBaseURL
	}
	return PublicBaseURL
}
