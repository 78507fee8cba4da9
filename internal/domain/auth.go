package domain

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"time"
)

// AuthType defines supported authentication methods.
type AuthType int

const (
	// BasicAuth uses username and password (or API token) authentication
	BasicAuth AuthType = iota
	// TokenAuth uses a bearer token
	TokenAuth
)

// String returns the string representation of AuthType.
func (a AuthType) String() string {
	switch a {
	case BasicAuth:
		return "basic"
	case TokenAuth:
		return "token"
	default:
		return "unknown"
	}
}

// Credentials stores authentication information for one remote service.
type Credentials struct {
	Type     AuthType // BasicAuth or TokenAuth
	Username string   // Used for basic auth
	Password string   // Used for basic auth
	Token    string   // Used for token auth
}

// NewAuthenticatedClient returns an HTTP client that adds the authentication
// header for creds to every request and gives up on a request after timeout.
func NewAuthenticatedClient(creds *Credentials, timeout time.Duration) (*http.Client, error) {
	if err := validateCredentials(creds); err != nil {
		return nil, err
	}

	transport := &authenticatedTransport{
		base:        http.DefaultTransport,
		credentials: creds,
	}

	return &http.Client{
		Transport: transport,
		Timeout:   timeout,
	}, nil
}

// validateCredentials validates a Credentials object.
func validateCredentials(creds *Credentials) error {
	if creds == nil {
		return fmt.Errorf("credentials cannot be nil")
	}

	switch creds.Type {
	case BasicAuth:
		if creds.Username == "" {
			return fmt.Errorf("username is required for basic authentication")
		}
		if creds.Password == "" {
			return fmt.Errorf("password is required for basic authentication")
		}
	case TokenAuth:
		if creds.Token == "" {
			return fmt.Errorf("token is required for token authentication")
		}
	default:
		return fmt.Errorf("invalid authentication type: %v", creds.Type)
	}

	return nil
}

// authenticatedTransport is an http.RoundTripper that adds authentication headers.
type authenticatedTransport struct {
	base        http.RoundTripper
	credentials *Credentials
}

// RoundTrip implements http.RoundTripper by adding authentication headers to requests.
func (t *authenticatedTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	// Clone the request to avoid modifying the original
	clonedReq := req.Clone(req.Context())

	switch t.credentials.Type {
	case BasicAuth:
		auth := t.credentials.Username + ":" + t.credentials.Password
		encodedAuth := base64.StdEncoding.EncodeToString([]byte(auth))
		clonedReq.Header.Set("Authorization", "Basic "+encodedAuth)
	case TokenAuth:
		clonedReq.Header.Set("Authorization", "Bearer "+t.credentials.Token)
	}

	return t.base.RoundTrip(clonedReq)
}
