package psiweb

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"strings"

	"golang.org/x/image/draw"
)

const (
	// AssetRoot is the public prefix all content images are served under.
	AssetRoot = "/public/images/"
	// PlaceholderImage is returned whenever no image reference is stored.
	PlaceholderImage = AssetRoot + "placeholder.jpg"

	maxImageWidth = 1200
	jpegQuality   = 80
)

// ImageURL maps a stored image reference to a servable URL. Three
// historical conventions are handled: a bare filename that lives in the
// category's folder, a legacy value that is already a relative path, and
// an absent value. The result is always non-empty; a dangling filename
// just 404s in the browser and the views swap in a fallback via onerror.
func ImageURL(filename *string, categorySlug string) string {
	if filename == nil {
		return PlaceholderImage
	}
	name := strings.TrimSpace(*filename)
	if name == "" {
		return PlaceholderImage
	}
	if strings.Contains(name, "/") {
		return AssetRoot + strings.TrimPrefix(name, "/")
	}
	if categorySlug == "" {
		return AssetRoot + name
	}
	return AssetRoot + categorySlug + "/" + name
}

// CategoryFallbackURL is the client-side onerror fallback for a broken
// cover image: the category default when a slug is known, otherwise the
// global placeholder.
func CategoryFallbackURL(categorySlug string) string {
	if categorySlug == "" {
		return PlaceholderImage
	}
	return AssetRoot + categorySlug + "/default.jpg"
}

// ProcessedImage describes the output of ProcessImage.
type ProcessedImage struct {
	Filename string
	Width    int
	Height   int
	Size     int
}

// ProcessImage decodes an image, scales it down to maxImageWidth when
// wider, and re-encodes it as JPEG. Cover images are dropped into the
// asset tree out-of-band; the images command runs this over a directory
// so everything served is uniform.
func ProcessImage(src io.Reader, originalName string) (ProcessedImage, []byte, error) {
	img, _, err := image.Decode(src)
	if err != nil {
		return ProcessedImage{}, nil, fmt.Errorf("decode image: %w", err)
	}

	bounds := img.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w > maxImageWidth {
		newH := h * maxImageWidth / w
		dst := image.NewRGBA(image.Rect(0, 0, maxImageWidth, newH))
		draw.CatmullRom.Scale(dst, dst.Bounds(), img, bounds, draw.Over, nil)
		img = dst
		w = maxImageWidth
		h = newH
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, img, &jpeg.Options{Quality: jpegQuality}); err != nil {
		return ProcessedImage{}, nil, fmt.Errorf("encode jpeg: %w", err)
	}

	name := originalName
	if i := strings.LastIndex(name, "."); i > 0 {
		name = name[:i]
	}
	return ProcessedImage{
		Filename: Slugify(name) + ".jpg",
		Width:    w,
		Height:   h,
		Size:     buf.Len(),
	}, buf.Bytes(), nil
}
