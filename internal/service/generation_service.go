package service

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/thumbsmith/thumbsmith/internal/gemini"
	"github.com/thumbsmith/thumbsmith/internal/hf"
	"github.com/thumbsmith/thumbsmith/internal/models"
)

type dimensions struct {
	Width  int
	Height int
}

var defaultDimensions = dimensions{Width: 768, Height: 768}

// dimensionTable maps layout then size preset to pixel dimensions. Unknown
// combinations fall back to defaultDimensions.
var dimensionTable = map[string]map[string]dimensions{
	"square": {
		"small":  {512, 512},
		"medium": {768, 768},
		"large":  {1024, 1024},
	},
	"landscape": {
		"small":  {640, 384},
		"medium": {896, 512},
		"large":  {1024, 576},
	},
	"portrait": {
		"small":  {384, 640},
		"medium": {512, 896},
		"large":  {576, 1024},
	},
}

// stylePrefixes are prepended verbatim before the prompt for recognized
// style tags. "default" and unknown tags leave the prompt unmodified.
var stylePrefixes = map[string]string{
	"cinematic":      "cinematic film still, dramatic lighting, anamorphic lens,",
	"photorealistic": "ultra-realistic photograph, 8k UHD, DSLR quality,",
	"anime":          "anime art style, vibrant colors, cel-shaded,",
	"digital-art":    "digital illustration, highly detailed, artstation trending,",
	"3d-render":      "3D render, octane render, unreal engine 5, volumetric lighting,",
	"neon":           "neon lights, cyberpunk aesthetic, glowing edges,",
	"watercolor":     "watercolor painting, soft washes, artistic brushstrokes,",
}

type GenerationService struct {
	log       *slog.Logger
	users     UserStore
	thumbs    ThumbnailStore
	enhancer  Enhancer
	images    ImageGenerator
	uploader  Uploader
	notifier  Notifier
	freeLimit int
}

func NewGenerationService(log *slog.Logger, users UserStore, thumbs ThumbnailStore, enhancer Enhancer, images ImageGenerator, uploader Uploader, notifier Notifier, freeLimit int) *GenerationService {
	return &GenerationService{
		log:       log,
		users:     users,
		thumbs:    thumbs,
		enhancer:  enhancer,
		images:    images,
		uploader:  uploader,
		notifier:  notifier,
		freeLimit: freeLimit,
	}
}

// GenerateInput carries the caller-resolved option flags for one pipeline run.
type GenerateInput struct {
	Prompt         string
	Enhance        bool
	Size           string
	Layout         string
	Style          string
	NegativePrompt string
}

// Generate runs the full pipeline for an authenticated user: quota gate,
// best-effort enhancement, style and dimension resolution, the upstream
// image call, asset persistence, usage accounting and a fire-and-forget
// notification. The run is all-or-nothing with respect to the counter and
// the asset: an upstream failure releases the quota reservation and
// persists nothing.
func (s *GenerationService) Generate(ctx context.Context, userID int64, in GenerateInput) (*models.Thumbnail, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("find user: %w", err)
	}
	if user == nil {
		return nil, notFoundf("user not found")
	}

	// Cheap pre-check so obviously over-quota requests fail before any
	// external call. The authoritative gate is the atomic reservation below.
	if !user.IsPremium && user.GenerationCount >= s.freeLimit {
		return nil, ErrQuotaExceeded
	}

	prompt := strings.TrimSpace(in.Prompt)
	if prompt == "" {
		return nil, invalidf("prompt is required")
	}

	finalPrompt := prompt
	if in.Enhance {
		finalPrompt = s.bestEffortEnhance(ctx, prompt, in.Style)
	}

	dims := resolveDimensions(in.Layout, in.Size)

	if prefix, ok := stylePrefixes[in.Style]; ok && in.Style != "default" {
		finalPrompt = prefix + " " + finalPrompt
	}

	// Negative prompts are a premium-only feature; the flag is owned here,
	// not by the image client.
	negative := ""
	if user.IsPremium {
		negative = strings.TrimSpace(in.NegativePrompt)
	}

	reserved, err := s.users.ReserveGeneration(ctx, user.ID, s.freeLimit)
	if err != nil {
		return nil, fmt.Errorf("reserve generation: %w", err)
	}
	if !reserved {
		return nil, ErrQuotaExceeded
	}

	image, err := s.images.Generate(ctx, finalPrompt, hf.GenerateOptions{
		Width:          dims.Width,
		Height:         dims.Height,
		NegativePrompt: negative,
	})
	if err != nil {
		s.release(user.ID)
		if errors.Is(err, hf.ErrNotConfigured) {
			return nil, ErrUnavailable
		}
		s.log.Error("image generation failed", "user", user.ID, "err", err)
		return nil, ErrGeneration
	}

	imageURL := s.storeImage(ctx, image.Data)

	thumb := &models.Thumbnail{
		UserID:         user.ID,
		OriginalPrompt: prompt,
		EnhancedPrompt: finalPrompt,
		ImageURL:       imageURL,
		Size:           image.Size,
		Layout:         layoutOrDefault(in.Layout),
		Style:          styleOrDefault(in.Style),
	}
	if err := s.thumbs.Create(ctx, thumb); err != nil {
		s.release(user.ID)
		return nil, fmt.Errorf("persist thumbnail: %w", err)
	}

	go s.notifier.SendThumbnailReady(user.Email, user.Name, prompt, imageURL)

	return thumb, nil
}

// EnhancePrompt is the standalone strict variant: unlike the pipeline's
// internal fallback, a missing credential or provider failure is surfaced.
func (s *GenerationService) EnhancePrompt(ctx context.Context, prompt, style string) (string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", invalidf("prompt is required")
	}
	enhanced, err := s.enhancer.Enhance(ctx, prompt, style)
	if err != nil {
		if isNotConfigured(err) {
			return "", ErrUnavailable
		}
		s.log.Error("prompt enhancement failed", "err", err)
		return "", ErrEnhancement
	}
	return enhanced, nil
}

// GenerateImage is the standalone image-only operation: no quota, no
// persistence, the raw picture inlined as a data URL.
func (s *GenerationService) GenerateImage(ctx context.Context, prompt string) (string, string, error) {
	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", "", invalidf("prompt is required")
	}
	image, err := s.images.Generate(ctx, prompt, hf.GenerateOptions{})
	if err != nil {
		if errors.Is(err, hf.ErrNotConfigured) {
			return "", "", ErrUnavailable
		}
		s.log.Error("image generation failed", "err", err)
		return "", "", ErrGeneration
	}
	return dataURL(image.Data), image.Size, nil
}

func (s *GenerationService) ListThumbnails(ctx context.Context, userID int64) ([]models.Thumbnail, error) {
	return s.thumbs.ListByUser(ctx, userID)
}

// DeleteThumbnail removes one of the caller's own assets and pairs the
// deletion with a clamped usage decrement on the owner.
func (s *GenerationService) DeleteThumbnail(ctx context.Context, userID, thumbnailID int64) error {
	thumb, err := s.thumbs.FindByID(ctx, thumbnailID)
	if err != nil {
		return fmt.Errorf("find thumbnail: %w", err)
	}
	if thumb == nil {
		return notFoundf("thumbnail not found")
	}
	if thumb.UserID != userID {
		return ErrForbidden
	}

	deleted, err := s.thumbs.Delete(ctx, thumbnailID)
	if err != nil {
		return fmt.Errorf("delete thumbnail: %w", err)
	}
	if !deleted {
		return notFoundf("thumbnail not found")
	}
	if err := s.users.AdjustGenerationCount(ctx, userID, -1); err != nil {
		return fmt.Errorf("adjust generation count: %w", err)
	}
	return nil
}

// bestEffortEnhance never fails: any enhancement problem falls back to the
// original prompt. An unconfigured enhancer is not even worth a log line.
func (s *GenerationService) bestEffortEnhance(ctx context.Context, prompt, style string) string {
	enhanced, err := s.enhancer.Enhance(ctx, prompt, style)
	if err != nil {
		if !isNotConfigured(err) {
			s.log.Warn("prompt enhancement failed, using original prompt", "err", err)
		}
		return prompt
	}
	return enhanced
}

func (s *GenerationService) storeImage(ctx context.Context, data []byte) string {
	if s.uploader != nil {
		url, err := s.uploader.Upload(ctx, data, "image/png")
		if err == nil {
			return url
		}
		s.log.Warn("image upload failed, inlining image", "err", err)
	}
	return dataURL(data)
}

func (s *GenerationService) release(userID int64) {
	if err := s.users.ReleaseGeneration(context.Background(), userID); err != nil {
		s.log.Error("release generation reservation failed", "user", userID, "err", err)
	}
}

func resolveDimensions(layout, size string) dimensions {
	if byLayout, ok := dimensionTable[layout]; ok {
		if dims, ok := byLayout[size]; ok {
			return dims
		}
	}
	return defaultDimensions
}

func layoutOrDefault(layout string) string {
	if layout == "" {
		return "landscape"
	}
	return layout
}

func styleOrDefault(style string) string {
	if style == "" {
		return "default"
	}
	return style
}

func dataURL(data []byte) string {
	return "data:image/png;base64," + base64.StdEncoding.EncodeToString(data)
}

func isNotConfigured(err error) bool {
	return errors.Is(err, gemini.ErrNotConfigured) || errors.Is(err, hf.ErrNotConfigured)
}
