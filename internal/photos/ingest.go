// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package photos implements the recipe photo ingestion pipeline:
// validate, store, moderate, persist. Validation failures store nothing;
// moderation is advisory and never fails an upload.
package photos

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sethvargo/go-retry"

	"nutra/internal/ai"
	"nutra/internal/imaging"
	"nutra/internal/models"
	"nutra/internal/store"
)

const (
	// MaxPhotoBytes is the upload size ceiling.
	MaxPhotoBytes = 10 << 20

	// thumbMaxWidth bounds admin-console thumbnails.
	thumbMaxWidth = 480
)

// Typed validation failures, mapped to client errors by handlers.
var (
	ErrTooLarge        = errors.New("photo exceeds the 10 MiB limit")
	ErrUnsupportedType = errors.New("unsupported photo type (jpeg, png, webp allowed)")
	ErrRecipeNotFound  = errors.New("recipe not found")
)

// photoExt maps allowed content types to storage key extensions.
var photoExt = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

// Storage is the subset of the object storage client the pipeline needs.
type Storage interface {
	Upload(ctx context.Context, key, contentType string, body io.Reader, size int64) error
	FileURL(key string) string
}

// Moderator classifies an uploaded photo as food / not-food.
type Moderator interface {
	CheckFood(ctx context.Context, imageURL string) (*ai.FoodCheck, error)
}

// Recipes is the subset of the recipe store the pipeline needs.
type Recipes interface {
	FindByID(id uuid.UUID) (*models.Recipe, error)
	UpdatePhoto(id uuid.UUID, p store.PhotoUpdate) error
}

// Pipeline runs photo ingestion end to end.
type Pipeline struct {
	storage   Storage
	moderator Moderator
	recipes   Recipes
}

// NewPipeline creates the ingestion pipeline. All dependencies are
// required; callers without configured storage should not construct one.
func NewPipeline(storage Storage, moderator Moderator, recipes Recipes) *Pipeline {
	return &Pipeline{storage: storage, moderator: moderator, recipes: recipes}
}

// Upload is the raw file handed to the pipeline.
type Upload struct {
	Data        []byte
	ContentType string // from the multipart part; sniffed when empty
}

// Meta is the photo metadata produced by a successful ingestion.
type Meta struct {
	Path             string                  `json:"photo_path"`
	URL              string                  `json:"photo_url"`
	ThumbPath        *string                 `json:"photo_thumb_path,omitempty"`
	Width            *int                    `json:"photo_width,omitempty"`
	Height           *int                    `json:"photo_height,omitempty"`
	SizeBytes        int64                   `json:"photo_size_bytes"`
	ModerationStatus models.ModerationStatus `json:"moderation_status"`
	ModeratedAt      time.Time               `json:"moderated_at"`
	Moderation       *ai.FoodCheck           `json:"moderation,omitempty"`
}

// Ingest validates, stores, moderates, and (when recipeID is set)
// persists a photo. Order matters: nothing is stored until validation
// passes, and moderation runs only after the object is reachable by URL.
func (p *Pipeline) Ingest(ctx context.Context, up Upload, recipeID *uuid.UUID) (*Meta, error) {
	if int64(len(up.Data)) > MaxPhotoBytes {
		return nil, ErrTooLarge
	}
	contentType := up.ContentType
	if contentType == "" {
		contentType = http.DetectContentType(up.Data)
	}
	ext, ok := photoExt[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	if recipeID != nil {
		recipe, err := p.recipes.FindByID(*recipeID)
		if err != nil {
			return nil, fmt.Errorf("ingest photo: %w", err)
		}
		if recipe == nil {
			return nil, ErrRecipeNotFound
		}
	}

	key := photoKey(recipeID, ext)
	if err := p.storage.Upload(ctx, key, contentType, bytes.NewReader(up.Data), int64(len(up.Data))); err != nil {
		return nil, fmt.Errorf("ingest photo: %w", err)
	}
	url := p.storage.FileURL(key)

	meta := &Meta{
		Path:      key,
		URL:       url,
		SizeBytes: int64(len(up.Data)),
	}

	// Dimensions are metadata, not a gate: an undecodable-but-allowed
	// file still uploads with null dimensions.
	if w, h, err := imaging.Dimensions(up.Data); err == nil {
		meta.Width, meta.Height = &w, &h
	} else {
		slog.Warn("photo dimension probe failed", "key", key, "error", err)
	}

	meta.ModerationStatus, meta.Moderation = p.moderate(ctx, url)
	meta.ModeratedAt = time.Now().UTC()

	// Thumbnail generation is best-effort.
	if thumb, err := imaging.Thumbnail(up.Data, thumbMaxWidth); err != nil {
		slog.Warn("photo thumbnail failed", "key", key, "error", err)
	} else if thumb != nil {
		thumbKey := key + "-thumb.jpg"
		if err := p.storage.Upload(ctx, thumbKey, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err != nil {
			slog.Warn("photo thumbnail upload failed", "key", thumbKey, "error", err)
		} else {
			meta.ThumbPath = &thumbKey
		}
	}

	if recipeID != nil {
		err := p.recipes.UpdatePhoto(*recipeID, store.PhotoUpdate{
			Path:             meta.Path,
			URL:              meta.URL,
			ThumbPath:        meta.ThumbPath,
			Width:            meta.Width,
			Height:           meta.Height,
			SizeBytes:        meta.SizeBytes,
			ModerationStatus: meta.ModerationStatus,
			ModeratedAt:      meta.ModeratedAt,
		})
		if err != nil {
			// The stored object stays behind; the recipe record is the
			// source of truth and must not claim a photo it doesn't have.
			return nil, fmt.Errorf("ingest photo: %w", err)
		}
	}

	return meta, nil
}

// IngestGenerated stores an AI-generated recipe image and persists its
// metadata. Generated images skip the advisory food check: they were
// produced from a dish prompt and carry the approved status directly.
func (p *Pipeline) IngestGenerated(ctx context.Context, recipeID uuid.UUID, data []byte, contentType string) (*Meta, error) {
	if int64(len(data)) > MaxPhotoBytes {
		return nil, ErrTooLarge
	}
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	ext, ok := photoExt[contentType]
	if !ok {
		return nil, ErrUnsupportedType
	}

	key := photoKey(&recipeID, ext)
	if err := p.storage.Upload(ctx, key, contentType, bytes.NewReader(data), int64(len(data))); err != nil {
		return nil, fmt.Errorf("ingest generated photo: %w", err)
	}

	meta := &Meta{
		Path:             key,
		URL:              p.storage.FileURL(key),
		SizeBytes:        int64(len(data)),
		ModerationStatus: models.ModerationApproved,
		ModeratedAt:      time.Now().UTC(),
	}
	if w, h, err := imaging.Dimensions(data); err == nil {
		meta.Width, meta.Height = &w, &h
	}
	if thumb, err := imaging.Thumbnail(data, thumbMaxWidth); err == nil && thumb != nil {
		thumbKey := key + "-thumb.jpg"
		if err := p.storage.Upload(ctx, thumbKey, "image/jpeg", bytes.NewReader(thumb), int64(len(thumb))); err == nil {
			meta.ThumbPath = &thumbKey
		}
	}

	err := p.recipes.UpdatePhoto(recipeID, store.PhotoUpdate{
		Path:             meta.Path,
		URL:              meta.URL,
		ThumbPath:        meta.ThumbPath,
		Width:            meta.Width,
		Height:           meta.Height,
		SizeBytes:        meta.SizeBytes,
		ModerationStatus: meta.ModerationStatus,
		ModeratedAt:      meta.ModeratedAt,
	})
	if err != nil {
		return nil, fmt.Errorf("ingest generated photo: %w", err)
	}
	return meta, nil
}

// moderate runs the advisory food check with one bounded retry. Any
// persistent failure maps to the sentinel "error" status so the photo
// stays distinguishable from a rejected one.
func (p *Pipeline) moderate(ctx context.Context, imageURL string) (models.ModerationStatus, *ai.FoodCheck) {
	var check *ai.FoodCheck
	backoff := retry.WithMaxRetries(1, retry.NewConstant(2*time.Second))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		c, err := p.moderator.CheckFood(ctx, imageURL)
		if err != nil {
			return retry.RetryableError(err)
		}
		check = c
		return nil
	})
	if err != nil {
		slog.Warn("photo moderation unavailable", "url", imageURL, "error", err)
		return models.ModerationError, nil
	}
	if check.IsFood {
		return models.ModerationApproved, check
	}
	return models.ModerationRejected, check
}

// photoKey builds the storage key: photos for a known recipe live under
// its ID, anonymous uploads under a throwaway tmp- prefix.
func photoKey(recipeID *uuid.UUID, ext string) string {
	dir := "tmp-" + randomToken()
	if recipeID != nil {
		dir = recipeID.String()
	}
	return fmt.Sprintf("recipes/%s/%d-%s.%s", dir, time.Now().Unix(), randomToken(), ext)
}

// randomToken returns 8 hex chars of randomness for key uniqueness.
func randomToken() string {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%08x", time.Now().UnixNano()&0xffffffff)
	}
	return hex.EncodeToString(b)
}
