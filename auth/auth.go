package auth

// Auth handles the OAuth handshake against Reddit. With no credentials
// configured the tool runs read-only against the public .json endpoints,
// which is enough for listing scrapes at a lower rate limit.
import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/hollowlog/reddit-harvester/config"
	"github.com/hollowlog/reddit-harvester/headers"
	"github.com/hollowlog/reddit-harvester/logger"
)

// Overridable in tests.
var tokenURL = "https://www.reddit.com/api/v1/access_token"

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
	Scope       string `json:"scope"`
}

type aboutResponse struct {
	Kind string `json:"kind"`
	Data struct {
		DisplayName string `json:"display_name"`
		Subscribers int    `json:"subscribers"`
	} `json:"data"`
}

// Login performs the client-credentials grant and returns request headers
// for the scrape. Missing or rejected credentials fall back to read-only
// mode instead of failing the run.
func Login(cfg *config.Config) (*headers.RedditHeaders, error) {
	redditHeaders := headers.NewRedditHeaders(cfg)

	if cfg.Account.ClientID == "" || cfg.Account.ClientSecret == "" {
		logger.Logger.Printf("No Reddit API credentials found, using read-only mode")
		return redditHeaders, nil
	}

	token, err := requestToken(cfg)
	if err != nil {
		logger.Logger.Printf("Could not authenticate: %v, falling back to read-only mode", err)
		return redditHeaders, nil
	}

	redditHeaders.AccessToken = token.AccessToken
	logger.Logger.Printf("Successfully authenticated with the Reddit API (scope %q, expires in %ds)",
		token.Scope, token.ExpiresIn)

	return redditHeaders, nil
}

func requestToken(cfg *config.Config) (*Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	req, err := http.NewRequest("POST", tokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, err
	}
	req.SetBasicAuth(cfg.Account.ClientID, cfg.Account.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("User-Agent", cfg.Account.UserAgent)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("token request failed with status code %d", resp.StatusCode)
	}

	var token Token
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return nil, err
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("token response contained no access token")
	}

	return &token, nil
}

// TestConnection fetches a public subreddit's about page to confirm the API
// is reachable with the current headers.
func TestConnection(redditHeaders *headers.RedditHeaders) error {
	reqURL := redditHeaders.BaseURL() + "/r/test/about.json"
	req, err := http.NewRequest("GET", reqURL, nil)
	if err != nil {
		return err
	}
	redditHeaders.AddHeadersToRequest(req)

	client := &http.Client{}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("connection test failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("connection test failed with status code %d", resp.StatusCode)
	}

	var about aboutResponse
	if err := json.NewDecoder(resp.Body).Decode(&about); err != nil {
		return fmt.Errorf("connection test returned an unexpected body: %w", err)
	}

	logger.Logger.Printf("Successfully connected to the Reddit API (r/%s)", about.Data.DisplayName)
	return nil
}
