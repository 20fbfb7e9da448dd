// Package client provides the content cache used by editing tools and
// site frontends: it loads the shared site document from the content
// API, mirrors it to a local store for degraded reads, and mediates
// every write through the API's optimistic-concurrency check.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"folio/api/internal/content"
)

// mirrorKey is the key the current document is mirrored under.
const mirrorKey = "siteContent"

// ErrConflict reports that a write was rejected because someone else
// committed a newer version first. The client has already adopted the
// server's document; the caller must redo the edit against it.
var ErrConflict = errors.New("content version conflict")

// User-visible sync errors. The two cases imply different recovery
// actions (re-fetch-and-redo vs. retry-send-later) and must stay
// distinguishable.
const (
	conflictMessage  = "Someone else updated the site. Your changes were not saved. Please review the latest content and try again."
	localOnlyMessage = "Unable to sync content to the server. Changes are saved locally only."
)

type Options struct {
	// BaseURL of the content API, without trailing slash.
	BaseURL string
	// HTTPClient defaults to a client with a 15s timeout.
	HTTPClient *http.Client
	// AdminToken supplies the shared write secret per request.
	AdminToken func() string
	// Mirror is the local fallback store; optional.
	Mirror Mirror
	// Logger defaults to a no-op logger.
	Logger *zap.Logger
}

type Client struct {
	baseURL    string
	http       *http.Client
	adminToken func() string
	mirror     Mirror
	log        *zap.Logger

	mu            sync.RWMutex
	content       content.SiteContent
	isLoaded      bool
	lastSyncError string
}

func New(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	adminToken := opts.AdminToken
	if adminToken == nil {
		adminToken = func() string { return "" }
	}
	return &Client{
		baseURL:    opts.BaseURL,
		http:       httpClient,
		adminToken: adminToken,
		mirror:     opts.Mirror,
		log:        log,
		content:    content.Default(),
	}
}

// Load runs the once-per-session load sequence: server first, local
// mirror second, compiled-in default last. It always resolves to a
// complete document and marks the client loaded; it never fails.
func (c *Client) Load(ctx context.Context) content.SiteContent {
	raw := c.fetchRemote(ctx)
	if raw == nil && c.mirror != nil {
		data, err := c.mirror.Get(ctx, mirrorKey)
		if err == nil {
			raw = data
		} else if !errors.Is(err, ErrMirrorMiss) {
			c.log.Warn("read mirror", zap.Error(err))
		}
	}

	adopted := content.Default()
	if raw != nil {
		var loaded content.SiteContent
		if err := json.Unmarshal(raw, &loaded); err != nil {
			c.log.Warn("decode stored content, using default", zap.Error(err))
		} else {
			adopted = content.Merge(adopted, loaded)
		}
	}

	c.mu.Lock()
	c.content = adopted
	c.isLoaded = true
	c.mu.Unlock()
	return adopted
}

// fetchRemote returns the raw server document, or nil on any failure.
// A successful fetch refreshes the mirror.
func (c *Client) fetchRemote(ctx context.Context) []byte {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/content", nil)
	if err != nil {
		return nil
	}
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("fetch content", zap.Error(err))
		return nil
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		c.log.Warn("fetch content", zap.Int("status", resp.StatusCode))
		return nil
	}
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		c.log.Warn("read content response", zap.Error(err))
		return nil
	}
	c.setMirror(ctx, raw)
	return raw
}

// Content returns the current in-memory document and whether the load
// sequence has completed. Consumers must not render real content
// before isLoaded is true.
func (c *Client) Content() (content.SiteContent, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.content, c.isLoaded
}

// LastSyncError returns the current user-visible sync error, or ""
// when the last operation synced cleanly.
func (c *Client) LastSyncError() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSyncError
}

// UpdateContent applies newContent optimistically, then submits it to
// the content API with the document's version as expectedVersion.
//
// On success the server's document (authoritative version) replaces
// the optimistic state. On conflict the server's current document is
// adopted, the conflict message is surfaced and ErrConflict returned.
// On any other failure the attempted document is persisted to the
// mirror, the local-only message is surfaced and the error returned.
// In every case the in-memory state is a complete document.
func (c *Client) UpdateContent(ctx context.Context, newContent content.SiteContent) error {
	c.mu.Lock()
	c.content = newContent
	c.lastSyncError = ""
	c.mu.Unlock()

	expectedVersion := newContent.Meta.Version
	if expectedVersion == 0 {
		expectedVersion = 1
	}

	body, err := json.Marshal(map[string]any{
		"content":         newContent,
		"expectedVersion": expectedVersion,
	})
	if err != nil {
		return c.degradeToLocal(ctx, newContent, fmt.Errorf("encode content: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/content", bytes.NewReader(body))
	if err != nil {
		return c.degradeToLocal(ctx, newContent, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-admin-token", c.adminToken())

	resp, err := c.http.Do(req)
	if err != nil {
		return c.degradeToLocal(ctx, newContent, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		updated, raw, err := decodeDocument(resp.Body)
		if err != nil {
			return c.degradeToLocal(ctx, newContent, err)
		}
		c.mu.Lock()
		c.content = updated
		c.mu.Unlock()
		c.setMirror(ctx, raw)
		return nil

	case http.StatusConflict:
		current, raw, err := decodeDocument(resp.Body)
		if err != nil {
			return c.degradeToLocal(ctx, newContent, err)
		}
		c.mu.Lock()
		c.content = current
		c.lastSyncError = conflictMessage
		c.mu.Unlock()
		c.setMirror(ctx, raw)
		return ErrConflict

	default:
		var payload struct {
			Message string `json:"message"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&payload)
		if payload.Message == "" {
			payload.Message = fmt.Sprintf("unexpected status %d", resp.StatusCode)
		}
		return c.degradeToLocal(ctx, newContent, fmt.Errorf("sync content: %s", payload.Message))
	}
}

// degradeToLocal records the local-only sync error, best-effort
// persists the attempted document to the mirror, and propagates err.
func (c *Client) degradeToLocal(ctx context.Context, attempted content.SiteContent, err error) error {
	c.mu.Lock()
	c.lastSyncError = localOnlyMessage
	c.mu.Unlock()

	if raw, marshalErr := json.Marshal(attempted); marshalErr == nil {
		c.setMirror(ctx, raw)
	}
	c.log.Warn("content sync failed, saved locally only", zap.Error(err))
	return err
}

func (c *Client) setMirror(ctx context.Context, raw []byte) {
	if c.mirror == nil {
		return
	}
	if err := c.mirror.Set(ctx, mirrorKey, raw); err != nil {
		c.log.Warn("write mirror", zap.Error(err))
	}
}

func decodeDocument(r io.Reader) (content.SiteContent, []byte, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return content.SiteContent{}, nil, fmt.Errorf("read response: %w", err)
	}
	var doc content.SiteContent
	if err := json.Unmarshal(raw, &doc); err != nil {
		return content.SiteContent{}, nil, fmt.Errorf("decode response: %w", err)
	}
	return doc, raw, nil
}
