// Package identity is a client for the Data Together identity service. It
// exchanges a morph.io API key for a JWT, verifies the token against the
// service's published RSA key, and checks session state at the end of a
// scrape.
package identity

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrNoAPIKey is returned when no Data Together API key is configured. Set
// the environment variable MORPH_DT_API_KEY; for instructions on how to do
// this in morph.io, see https://morph.io/documentation/secret_values.
var ErrNoAPIKey = errors.New("Data Together API key not set")

// Client talks to the identity service at a fixed base URL.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// New creates an identity client. A nil httpClient gets a default with a
// 30 second timeout.
func New(baseURL, apiKey string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		http:    httpClient,
	}
}

// Token requests a JWT from the identity service and verifies its RS256
// signature against the service's public key before returning it.
func (c *Client) Token(ctx context.Context) (string, error) {
	if c.apiKey == "" {
		return "", ErrNoAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/jwt", nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("access_token", c.apiKey)
	token, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("Unable to get JWT from %s: %v", c.baseURL, err)
	}

	req, err = http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/publickey", nil)
	if err != nil {
		return "", err
	}
	pubPEM, err := c.do(req)
	if err != nil {
		return "", fmt.Errorf("Unable to get public key from %s: %v", c.baseURL, err)
	}

	if err := verify(token, pubPEM); err != nil {
		return "", fmt.Errorf("Could not verify Data Together signature on JWT: %v", err)
	}
	return token, nil
}

// CheckSession notifies the identity service that the scrape has completed
// by fetching the session for the given bearer token. Any status other than
// 200 is an error.
func (c *Client) CheckSession(ctx context.Context, token string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/session", nil)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("Unable to reach session endpoint at %s: %v", c.baseURL, err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("Session check returned status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return nil
}

// do performs a request and returns the response body as a string, erroring
// on non-200 statuses.
func (c *Client) do(req *http.Request) (string, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("status %d %s", resp.StatusCode, http.StatusText(resp.StatusCode))
	}
	return strings.TrimSpace(string(body)), nil
}

// verify parses the token, pinning the signing method to RS256 so a token
// signed with a symmetric key can never masquerade as the service's.
func verify(token string, pubPEM string) error {
	key, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pubPEM))
	if err != nil {
		return fmt.Errorf("parsing public key: %v", err)
	}
	_, err = jwt.Parse(token, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v (only RS256 allowed)", t.Header["alg"])
		}
		return key, nil
	})
	return err
}
