package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"golang.org/x/oauth2"
)

// Cache persists a single OAuth2 token to a file so it survives process
// restarts. A missing or unreadable cache file is treated as an empty cache,
// never as an error: the acquirer simply re-authenticates.
//
// A single Cache handle is shared by the acquirer across concurrent request
// goroutines; a mutex serializes access. There is no cross-process locking.
// Concurrent writers from separate processes race last-write-wins, which is
// acceptable because token refreshes are idempotent from the identity
// provider's perspective.
type Cache struct {
	path string

	mu sync.Mutex
	// loaded is a snapshot of the last token read from or written to disk,
	// used to skip writes when nothing changed. Guarded by mu.
	loaded *oauth2.Token
}

// NewCache creates a Cache backed by the file at path.
func NewCache(path string) *Cache {
	return &Cache{path: path}
}

// Path returns the cache file location.
func (c *Cache) Path() string {
	return c.path
}

// Load reads the cached token from disk. It returns nil (without error) when
// the file does not exist or does not parse as a token.
func (c *Cache) Load() (*oauth2.Token, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	data, err := os.ReadFile(c.path)
	if err != nil {
		c.loaded = nil
		return nil, nil
	}

	var tok oauth2.Token
	if err := json.Unmarshal(data, &tok); err != nil {
		// A corrupted cache is equivalent to an empty one; the caller
		// re-authenticates and the next Save overwrites the junk.
		c.loaded = nil
		return nil, nil
	}

	c.loaded = &tok
	return &tok, nil
}

// Save writes the token to disk, but only when it differs from the token
// observed by the last Load or Save on this handle.
func (c *Cache) Save(tok *oauth2.Token) error {
	if tok == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded != nil && sameToken(c.loaded, tok) {
		return nil
	}

	data, err := json.Marshal(tok)
	if err != nil {
		return fmt.Errorf("failed to serialize token: %w", err)
	}

	if err := os.WriteFile(c.path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token cache %s: %w", c.path, err)
	}

	c.loaded = tok
	return nil
}

func sameToken(a, b *oauth2.Token) bool {
	return a.AccessToken == b.AccessToken &&
		a.RefreshToken == b.RefreshToken &&
		a.Expiry.Equal(b.Expiry)
}
