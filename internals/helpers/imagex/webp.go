// Package imagex re-encodes uploaded photos to WebP before they are stored.
package imagex

import (
	"bytes"
	"fmt"
	"image"
	"math"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/chai2010/webp"
	"github.com/disintegration/imaging"
	"golang.org/x/image/draw"

	"portalku_backend/internals/configs"
)

/* =======================================================================
   Konfigurasi WebP (ENV-Driven)
======================================================================= */

type WebPOptions struct {
	MaxW     int     // batas lebar (resize keep-aspect)
	MaxH     int     // batas tinggi
	Quality  float32 // 0 → 80
	TargetKB int     // 0 = non-aktif
	MinQ     float32
}

func OptionsFromEnv() WebPOptions {
	return WebPOptions{
		MaxW:     configs.Int("IMAGE_WEBP_MAX_W"),
		MaxH:     configs.Int("IMAGE_WEBP_MAX_H"),
		Quality:  float32(configs.Conf.GetFloat64("IMAGE_WEBP_QUALITY")),
		TargetKB: configs.Int("IMAGE_WEBP_TARGET_KB"),
		MinQ:     45,
	}
}

// Result is the re-encoded file, ready for upload.
type Result struct {
	Data        []byte
	ContentType string
	FileName    string
}

// Optimizer returns ok=false when the input is not an image it handles;
// the caller then stores the original bytes.
type Optimizer func(data []byte, filename string) (Result, bool, error)

// NewWebPOptimizer returns nil when IMAGE_WEBP_ENABLED is off.
func NewWebPOptimizer(opt WebPOptions) Optimizer {
	if !configs.Bool("IMAGE_WEBP_ENABLED") {
		return nil
	}
	return func(data []byte, filename string) (Result, bool, error) {
		if !IsRasterImage(data, filename) {
			return Result{}, false, nil
		}
		out, err := ConvertToWebP(data, filename, opt)
		if err != nil {
			return Result{}, false, err
		}
		name := strings.TrimSuffix(filename, filepath.Ext(filename)) + ".webp"
		return Result{Data: out, ContentType: "image/webp", FileName: name}, true, nil
	}
}

// IsRasterImage sniffs jpeg/png/webp.
func IsRasterImage(data []byte, filename string) bool {
	head := data
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	switch {
	case strings.Contains(ct, "jpeg"), strings.Contains(ct, "png"), strings.Contains(ct, "webp"):
		return true
	}
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".jpg", ".jpeg", ".png", ".webp":
		return len(data) > 0
	}
	return false
}

func decodeImage(all []byte, filename string) (image.Image, error) {
	if len(all) == 0 {
		return nil, fmt.Errorf("empty file")
	}
	head := all
	if len(head) > 512 {
		head = head[:512]
	}
	ct := http.DetectContentType(head)
	if strings.Contains(ct, "webp") || strings.EqualFold(filepath.Ext(filename), ".webp") {
		return webp.Decode(bytes.NewReader(all))
	}
	// jpeg/png lewat imaging supaya orientasi EXIF ikut dibaca
	return imaging.Decode(bytes.NewReader(all), imaging.AutoOrientation(true))
}

func downscaleIfNeeded(src image.Image, maxW, maxH int) image.Image {
	if maxW <= 0 && maxH <= 0 {
		return src
	}
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	if (maxW > 0 && w > maxW) || (maxH > 0 && h > maxH) {
		scale := 1.0
		if maxW > 0 {
			scale = math.Min(scale, float64(maxW)/float64(w))
		}
		if maxH > 0 {
			scale = math.Min(scale, float64(maxH)/float64(h))
		}
		nw := max(int(math.Round(float64(w)*scale)), 1)
		nh := max(int(math.Round(float64(h)*scale)), 1)
		dst := image.NewRGBA(image.Rect(0, 0, nw, nh))
		draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
		return dst
	}
	return src
}

func encodeQ(img image.Image, q float32) ([]byte, error) {
	buf := new(bytes.Buffer)
	if err := webp.Encode(buf, img, &webp.Options{Quality: q}); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ConvertToWebP: decode → resize (opsional) → encode webp.
// Dengan TargetKB > 0, quality di-binary-search sampai ukuran masuk target.
func ConvertToWebP(all []byte, filename string, opt WebPOptions) ([]byte, error) {
	img, err := decodeImage(all, filename)
	if err != nil {
		return nil, err
	}
	img = downscaleIfNeeded(img, opt.MaxW, opt.MaxH)

	q := opt.Quality
	if q <= 0 {
		q = 80
	}
	if opt.TargetKB <= 0 {
		return encodeQ(img, q)
	}

	target := opt.TargetKB * 1024
	low, high := opt.MinQ, q
	if low <= 0 || low > high {
		low = high / 2
	}
	var best []byte
	for i := 0; i < 7; i++ {
		mid := (low + high) / 2
		data, err := encodeQ(img, mid)
		if err != nil {
			return nil, err
		}
		if len(data) <= target {
			best = data
			low = mid
		} else {
			high = mid
		}
	}
	if best == nil {
		return encodeQ(img, opt.MinQ)
	}
	return best, nil
}
