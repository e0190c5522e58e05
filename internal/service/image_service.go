package service

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"image"
	"image/draw"
	"image/jpeg"
	_ "image/gif" // Register GIF decoder
	_ "image/png" // Register PNG decoder
	"log/slog"
	"mime"
	"net/http"
	"strings"

	"photogram/internal/config"
	"photogram/internal/middleware"
	"photogram/internal/models"
	"photogram/internal/storage"

	"github.com/chai2010/webp"
	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp" // Register WebP decoder
)

const (
	DefaultImageMaxUploadSizeMB = 10
	MasterMaxSize               = 2048
	ThumbnailSize               = 256
	JPEGQuality                 = 82
	WebPQuality                 = 70
)

// Image kinds select the storage prefix and whether the image is cropped.
const (
	ImageKindProfile = "profiles"
	ImageKindPost    = "posts"
)

var allowedRatios = []struct {
	name  string
	ratio float64
}{
	{name: "landscape", ratio: 1.91},
	{name: "square", ratio: 1.0},
	{name: "portrait", ratio: 0.8},
}

type UploadImageInput struct {
	UserID      uint
	Kind        string
	Filename    string
	ContentType string
	Content     []byte
}

// ImageRef locates a stored image and its renditions.
type ImageRef struct {
	Key      string            `json:"key"`
	URL      string            `json:"url"`
	Variants map[string]string `json:"variants"`
}

type ImageService struct {
	store              storage.ImageStore
	maxUploadSizeBytes int64
}

func NewImageService(store storage.ImageStore, cfg *config.Config) *ImageService {
	maxUploadSizeMB := DefaultImageMaxUploadSizeMB
	if cfg != nil && cfg.ImageMaxUploadSizeMB > 0 {
		maxUploadSizeMB = cfg.ImageMaxUploadSizeMB
	}
	return &ImageService{
		store:              store,
		maxUploadSizeBytes: int64(maxUploadSizeMB) * 1024 * 1024,
	}
}

// Upload validates the image, writes a master JPEG plus JPEG and WebP
// thumbnails, and returns where they live. Post photos are center-cropped to
// the nearest allowed aspect ratio; profile images are cropped square.
func (s *ImageService) Upload(ctx context.Context, in UploadImageInput) (*ImageRef, error) {
	if in.UserID == 0 {
		return nil, models.NewValidationError("Invalid user")
	}
	if in.Kind != ImageKindProfile && in.Kind != ImageKindPost {
		return nil, models.NewValidationError("Invalid image kind")
	}
	if len(in.Content) == 0 {
		return nil, models.NewValidationError("No file uploaded")
	}
	if int64(len(in.Content)) > s.maxUploadSizeBytes {
		return nil, models.NewValidationError(fmt.Sprintf("File too large (max %dMB)", s.maxUploadSizeBytes/(1024*1024)))
	}

	detectedType := http.DetectContentType(in.Content)
	if !isAllowedImageMIME(detectedType) {
		return nil, models.NewValidationError("Invalid image type")
	}

	decoded, format, err := image.Decode(bytes.NewReader(in.Content))
	if err != nil {
		return nil, models.NewValidationError("Invalid image file")
	}
	sourceMimeType := decodedFormatToMime(format)
	if sourceMimeType == "" {
		return nil, models.NewValidationError("Unsupported image format")
	}
	if provided := normalizeContentType(in.ContentType); strings.HasPrefix(provided, "image/") && !isMatchingContentType(provided, sourceMimeType) {
		return nil, models.NewValidationError("Image content type mismatch")
	}

	b := decoded.Bounds()
	var cropX, cropY, cropW, cropH int
	if in.Kind == ImageKindProfile {
		cropX, cropY, cropW, cropH = squareCrop(b.Dx(), b.Dy())
	} else {
		_, cropX, cropY, cropW, cropH = selectCropMode(b.Dx(), b.Dy())
	}
	cropped := cropToRect(decoded, b.Min.X+cropX, b.Min.Y+cropY, cropW, cropH)

	master := resizeToFit(cropped, MasterMaxSize, MasterMaxSize)
	thumb := resizeToFit(cropped, ThumbnailSize, ThumbnailSize)

	masterJPEG, err := encodeJPEG(master, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	thumbJPEG, err := encodeJPEG(thumb, JPEGQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	thumbWebP, err := encodeWebP(thumb, WebPQuality)
	if err != nil {
		return nil, models.NewInternalError(err)
	}

	base := fmt.Sprintf("%s/%d/%s", in.Kind, in.UserID, contentHash(in.UserID, in.Content))
	objects := []struct {
		name, key, contentType string
		data                   []byte
	}{
		{"master", base + ".jpg", "image/jpeg", masterJPEG},
		{"thumb_jpg", base + "_thumb.jpg", "image/jpeg", thumbJPEG},
		{"thumb_webp", base + "_thumb.webp", "image/webp", thumbWebP},
	}

	ref := &ImageRef{Key: base + ".jpg", Variants: map[string]string{}}
	var written []string
	for _, o := range objects {
		url, err := s.store.Put(ctx, o.key, o.contentType, o.data)
		if err != nil {
			s.cleanup(ctx, written)
			return nil, models.NewInternalError(err)
		}
		written = append(written, o.key)
		if o.name == "master" {
			ref.URL = url
		} else {
			ref.Variants[o.name] = url
		}
	}

	middleware.Logger.InfoContext(ctx, "image stored",
		slog.String("key", ref.Key),
		slog.String("source_format", format),
		slog.Int("width", b.Dx()),
		slog.Int("height", b.Dy()),
	)
	return ref, nil
}

// Remove deletes a master image and its renditions by master key.
func (s *ImageService) Remove(ctx context.Context, key string) {
	if key == "" {
		return
	}
	base := strings.TrimSuffix(key, ".jpg")
	s.cleanup(ctx, []string{key, base + "_thumb.jpg", base + "_thumb.webp"})
}

// KeyFromURL recovers the storage key from a URL produced by Upload.
func (s *ImageService) KeyFromURL(url string) string {
	for _, kind := range []string{ImageKindProfile, ImageKindPost} {
		if i := strings.Index(url, "/"+kind+"/"); i >= 0 {
			return url[i+1:]
		}
	}
	return ""
}

func (s *ImageService) cleanup(ctx context.Context, keys []string) {
	for _, k := range keys {
		if err := s.store.Delete(ctx, k); err != nil {
			middleware.Logger.WarnContext(ctx, "image cleanup failed", slog.String("key", k), slog.String("error", err.Error()))
		}
	}
}

func squareCrop(w, h int) (x, y, side, side2 int) {
	side = w
	if h < side {
		side = h
	}
	return (w - side) / 2, (h - side) / 2, side, side
}

func selectCropMode(w, h int) (mode string, cropX, cropY, cropW, cropH int) {
	if w <= 0 || h <= 0 {
		return "free", 0, 0, w, h
	}
	ratio := float64(w) / float64(h)
	bestMode := "square"
	bestRatio := 1.0
	bestDist := absFloat(ratio - 1.0)
	for _, r := range allowedRatios {
		d := absFloat(ratio - r.ratio)
		if d < bestDist {
			bestDist = d
			bestRatio = r.ratio
			bestMode = r.name
		}
	}

	if ratio > bestRatio {
		cropH = h
		cropW = int(float64(h) * bestRatio)
		cropX = (w - cropW) / 2
	} else {
		cropW = w
		cropH = int(float64(w) / bestRatio)
		cropY = (h - cropH) / 2
	}
	if cropW < 1 {
		cropW = 1
	}
	if cropH < 1 {
		cropH = 1
	}
	return bestMode, cropX, cropY, cropW, cropH
}

func cropToRect(src image.Image, x, y, w, h int) image.Image {
	if w <= 0 || h <= 0 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(dst, dst.Bounds(), src, image.Point{X: x, Y: y}, draw.Src)
	return dst
}

func resizeToFit(src image.Image, maxWidth, maxHeight int) image.Image {
	bounds := src.Bounds()
	w := bounds.Dx()
	h := bounds.Dy()
	if w <= 0 || h <= 0 || (w <= maxWidth && h <= maxHeight) {
		return src
	}

	scale := float64(maxWidth) / float64(w)
	if s := float64(maxHeight) / float64(h); s < scale {
		scale = s
	}
	newW := max(int(float64(w)*scale), 1)
	newH := max(int(float64(h)*scale), 1)

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, xdraw.Over, nil)
	return dst
}

func encodeJPEG(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := jpeg.Encode(buf, img, &jpeg.Options{Quality: quality}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func encodeWebP(img image.Image, quality int) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := webp.Encode(buf, img, &webp.Options{Quality: float32(quality)}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func isAllowedImageMIME(contentType string) bool {
	switch normalizeContentType(contentType) {
	case "image/jpeg", "image/jpg", "image/png", "image/gif", "image/webp":
		return true
	default:
		return false
	}
}

func normalizeContentType(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return strings.ToLower(strings.TrimSpace(mediaType))
}

func isMatchingContentType(provided, detected string) bool {
	p := normalizeContentType(provided)
	d := normalizeContentType(detected)
	if p == d {
		return true
	}
	return (p == "image/jpg" && d == "image/jpeg") || (p == "image/jpeg" && d == "image/jpg")
}

func decodedFormatToMime(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "jpeg", "jpg":
		return "image/jpeg"
	case "png":
		return "image/png"
	case "gif":
		return "image/gif"
	case "webp":
		return "image/webp"
	default:
		return ""
	}
}

func contentHash(userID uint, content []byte) string {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "%d:", userID)
	h.Write(content)
	return hex.EncodeToString(h.Sum(nil))[:32]
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
