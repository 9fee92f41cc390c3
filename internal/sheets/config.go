// Package sheets publishes mining runs to Google Sheets.
package sheets

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNoAuth is returned when neither a service account nor OAuth2 credentials are set.
	ErrNoAuth = errors.New("no authentication method configured")
	// ErrAmbiguousAuth is returned when both methods are configured at once.
	ErrAmbiguousAuth = errors.New("multiple authentication methods configured; use either OAuth2 or service account")
)

// AuthMethod is how the writer obtains tokens for the Sheets API.
type AuthMethod int

const (
	AuthNone AuthMethod = iota
	AuthOAuth
	AuthServiceAccount
)

// Config holds the configuration for the Google Sheets writer.
type Config struct {
	ClientID           string
	ClientSecret       string
	RefreshToken       string
	ServiceAccountPath string
	SpreadsheetID      string // empty creates a new spreadsheet named SpreadsheetName
	SpreadsheetName    string
	TimeZone           string
	BatchSize          int // rows per values.update call
	RetryAttempts      int
	RetryDelay         time.Duration
	EnableFormatting   bool
}

// DefaultConfig returns the settings used when config.yaml leaves them out.
func DefaultConfig() Config {
	return Config{
		SpreadsheetName:  "Basket Analysis",
		TimeZone:         "UTC",
		BatchSize:        1000,
		RetryAttempts:    3,
		RetryDelay:       time.Second,
		EnableFormatting: true,
	}
}

// Auth reports which credentials are complete. A partial OAuth2 triple
// counts as none.
func (c *Config) Auth() (AuthMethod, error) {
	oauth := c.ClientID != "" && c.ClientSecret != "" && c.RefreshToken != ""
	account := c.ServiceAccountPath != ""

	switch {
	case oauth && account:
		return AuthNone, ErrAmbiguousAuth
	case oauth:
		return AuthOAuth, nil
	case account:
		return AuthServiceAccount, nil
	default:
		return AuthNone, ErrNoAuth
	}
}

// Validate checks credentials and batching settings.
func (c *Config) Validate() error {
	if _, err := c.Auth(); err != nil {
		return err
	}
	if c.BatchSize <= 0 {
		return fmt.Errorf("batch size must be positive, got %d", c.BatchSize)
	}
	if c.RetryAttempts < 0 {
		return fmt.Errorf("retry attempts cannot be negative, got %d", c.RetryAttempts)
	}
	if c.RetryDelay < 0 {
		return fmt.Errorf("retry delay cannot be negative, got %s", c.RetryDelay)
	}
	return nil
}
