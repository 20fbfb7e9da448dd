// Package app implements the content access API: the versioned
// content store over a blob backend, the admin login, and the
// background upload surface.
package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sync"
	"time"

	"golang.org/x/crypto/bcrypt"

	"folio/api/internal/auth"
	"folio/api/internal/blob"
	"folio/api/internal/config"
	"folio/api/internal/content"
	"folio/api/internal/util"
)

// Object keys on the blob backend. Canonical is public, backup is
// private and holds exactly the document that was canonical before the
// last successful write.
const (
	contentKey        = "siteContent.json"
	backupKey         = "siteContent.backup.json"
	backgroundMetaKey = "uploads/background.meta.json"
	uploadsPrefix     = "uploads/"

	defaultBackground = "default-background.jpg"
)

type Service struct {
	cfg   config.Config
	blobs blob.ObjectStore
	now   func() time.Time

	// writeMu serializes this process's write path. The version check
	// is still the only cross-process correctness mechanism; the blob
	// backend offers no transaction across the backup and canonical
	// writes.
	writeMu sync.Mutex
}

func New(cfg config.Config, blobs blob.ObjectStore) *Service {
	return &Service{
		cfg:   cfg,
		blobs: blobs,
		now:   time.Now,
	}
}

func (s *Service) Ping(ctx context.Context) error {
	return s.blobs.Ping(ctx)
}

func (s *Service) AdminToken() string {
	return s.cfg.AdminToken
}

// loadStored fetches the canonical document. found is false when no
// document has ever been written.
func (s *Service) loadStored(ctx context.Context) (raw []byte, doc content.SiteContent, found bool, err error) {
	raw, err = s.blobs.Get(ctx, contentKey)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, content.SiteContent{}, false, nil
	}
	if err != nil {
		return nil, content.SiteContent{}, false, fmt.Errorf("load content: %w", err)
	}
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, content.SiteContent{}, false, fmt.Errorf("decode stored content: %w", err)
	}
	return raw, doc, true, nil
}

// CurrentContent returns the canonical document, or the compiled-in
// default (version 1, current timestamp) when nothing has been
// written. The default is not persisted.
func (s *Service) CurrentContent(ctx context.Context) (content.SiteContent, error) {
	_, doc, found, err := s.loadStored(ctx)
	if err != nil {
		return content.SiteContent{}, err
	}
	if !found {
		return content.Default(), nil
	}
	return doc, nil
}

// SaveContent commits a new document under optimistic concurrency
// control. When expectedVersion is supplied and does not match the
// stored version, it returns the current stored document together with
// ErrVersionConflict and performs no writes. On success the prior
// canonical document, if any, is copied verbatim to the backup slot
// before the new document is written, and the returned document
// carries the incremented version.
func (s *Service) SaveContent(ctx context.Context, payload content.SiteContent, expectedVersion *int) (content.SiteContent, error) {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	raw, stored, found, err := s.loadStored(ctx)
	if err != nil {
		return content.SiteContent{}, err
	}

	currentVersion := 1
	if found && stored.Meta.Version > 0 {
		currentVersion = stored.Meta.Version
	}

	if expectedVersion != nil && *expectedVersion != currentVersion {
		current := content.Default()
		if found {
			current = stored
		}
		return current, ErrVersionConflict
	}

	if found {
		if err := s.blobs.Put(ctx, backupKey, raw, blob.PutOptions{ContentType: "application/json"}); err != nil {
			return content.SiteContent{}, fmt.Errorf("write backup: %w", err)
		}
	}

	updated := payload
	updated.Meta = content.Meta{
		Version:   currentVersion + 1,
		UpdatedAt: s.now().UTC(),
	}

	data, err := json.Marshal(updated)
	if err != nil {
		return content.SiteContent{}, fmt.Errorf("encode content: %w", err)
	}
	if err := s.blobs.Put(ctx, contentKey, data, blob.PutOptions{ContentType: "application/json", Public: true}); err != nil {
		return content.SiteContent{}, fmt.Errorf("write content: %w", err)
	}
	return updated, nil
}

// Login checks the admin password and issues a session token for the
// upload surface. Content writes do not use these tokens; they carry
// the shared admin token header instead.
func (s *Service) Login(password string) (string, error) {
	switch {
	case s.cfg.AdminPasswordHash != "":
		if bcrypt.CompareHashAndPassword([]byte(s.cfg.AdminPasswordHash), []byte(password)) != nil {
			return "", ErrUnauthorized
		}
	case s.cfg.AdminPassword != "":
		if password != s.cfg.AdminPassword {
			return "", ErrUnauthorized
		}
	default:
		return "", ErrUnauthorized
	}

	token, err := auth.IssueToken([]byte(s.cfg.SessionSecret), auth.Claims{
		Sub: "admin",
		JTI: util.NewID("jti"),
		Exp: s.now().Add(s.cfg.SessionTTL).Unix(),
	})
	if err != nil {
		return "", fmt.Errorf("issue session token: %w", err)
	}
	return token, nil
}

// VerifySession parses an upload-surface session token.
func (s *Service) VerifySession(token string) error {
	_, err := auth.ParseToken([]byte(s.cfg.SessionSecret), token)
	return err
}

type backgroundMeta struct {
	Key string `json:"key"`
}

// Background returns the URL path of the current background image.
func (s *Service) Background(ctx context.Context) (string, error) {
	meta, err := s.loadBackgroundMeta(ctx)
	if err != nil {
		return "", err
	}
	if meta == nil {
		return "/uploads/" + defaultBackground, nil
	}
	return "/" + meta.Key, nil
}

// SaveBackground replaces the uploaded background image, removing the
// previous upload if the file name changed.
func (s *Service) SaveBackground(ctx context.Context, filename string, data []byte, contentType string) (string, error) {
	ext := path.Ext(filename)
	key := uploadsPrefix + "background" + ext

	meta, err := s.loadBackgroundMeta(ctx)
	if err != nil {
		return "", err
	}

	if err := s.blobs.Put(ctx, key, data, blob.PutOptions{ContentType: contentType, Public: true}); err != nil {
		return "", fmt.Errorf("store background: %w", err)
	}

	if meta != nil && meta.Key != key {
		if err := s.blobs.Delete(ctx, meta.Key); err != nil && !errors.Is(err, blob.ErrNotFound) {
			return "", fmt.Errorf("remove previous background: %w", err)
		}
	}

	encoded, err := json.Marshal(backgroundMeta{Key: key})
	if err != nil {
		return "", fmt.Errorf("encode background meta: %w", err)
	}
	if err := s.blobs.Put(ctx, backgroundMetaKey, encoded, blob.PutOptions{ContentType: "application/json"}); err != nil {
		return "", fmt.Errorf("store background meta: %w", err)
	}
	return "/" + key, nil
}

// RemoveBackground deletes the uploaded background and falls back to
// the default image.
func (s *Service) RemoveBackground(ctx context.Context) error {
	meta, err := s.loadBackgroundMeta(ctx)
	if err != nil {
		return err
	}
	if meta == nil {
		return nil
	}
	if err := s.blobs.Delete(ctx, meta.Key); err != nil && !errors.Is(err, blob.ErrNotFound) {
		return fmt.Errorf("remove background: %w", err)
	}
	if err := s.blobs.Delete(ctx, backgroundMetaKey); err != nil && !errors.Is(err, blob.ErrNotFound) {
		return fmt.Errorf("remove background meta: %w", err)
	}
	return nil
}

// Upload returns the stored bytes for an uploaded asset.
func (s *Service) Upload(ctx context.Context, name string) ([]byte, error) {
	return s.blobs.Get(ctx, uploadsPrefix+name)
}

func (s *Service) loadBackgroundMeta(ctx context.Context) (*backgroundMeta, error) {
	data, err := s.blobs.Get(ctx, backgroundMetaKey)
	if errors.Is(err, blob.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load background meta: %w", err)
	}
	var meta backgroundMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("decode background meta: %w", err)
	}
	return &meta, nil
}
