package business

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"github.com/rs/zerolog/log"
)

// ErrInvalidBusiness is returned when a profile cannot be parsed or fails validation.
var ErrInvalidBusiness = errors.New("invalid business configuration")

// Parse decodes and validates a business profile document.
func Parse(data []byte) (*Config, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBusiness, err)
	}
	if cfg.ID == "" {
		cfg.ID = Slug(cfg.Name)
	}
	return &cfg, nil
}

// LoadFromFile membaca business profile dari file JSON statis
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read business file %s: %w", path, err)
	}
	return Parse(data)
}

// Fetch loads the profile from {apiURL}/business.
func Fetch(ctx context.Context, client *http.Client, apiURL string) (*Config, error) {
	if client == nil {
		client = http.DefaultClient
	}

	url := strings.TrimRight(apiURL, "/") + "/business"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch business: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("business API returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	return Parse(body)
}

// Load tries the remote endpoint first (when configured) and falls back to the static file.
func Load(ctx context.Context, client *http.Client, apiURL, path string) (*Config, error) {
	if apiURL != "" {
		cfg, err := Fetch(ctx, client, apiURL)
		if err == nil {
			return cfg, nil
		}
		log.Warn().Err(err).Str("api_url", apiURL).Msg("failed to load business from API, falling back to static data")
	}
	return LoadFromFile(path)
}
