// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package assemble

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"os"

	// Decoders for every extension the image cache accepts.
	_ "image/gif"
	_ "image/png"

	xdraw "golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

// maxPixels bounds the long side of an embedded photo. Larger images are
// scaled down before embedding; the printed size does not change.
const maxPixels = 1600

// photo is a cached image re-encoded as an opaque JPEG ready for embedding.
type photo struct {
	data          []byte
	width, height int
}

// loadPhoto decodes the image at path, flattens transparency onto white and
// re-encodes it as JPEG. Any decode error means the page goes without a photo.
func loadPhoto(path string) (*photo, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, format, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("decoding %s: %w", path, err)
	}
	b := src.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return nil, fmt.Errorf("decoding %s: empty %s image", path, format)
	}

	w, h := b.Dx(), b.Dy()
	if long := max(w, h); long > maxPixels {
		w = max(1, w*maxPixels/long)
		h = max(1, h*maxPixels/long)
	}

	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), image.White, image.Point{}, xdraw.Src)
	if w == b.Dx() && h == b.Dy() {
		xdraw.Draw(dst, dst.Bounds(), src, b.Min, xdraw.Over)
	} else {
		xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, b, xdraw.Over, nil)
	}

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, dst, &jpeg.Options{Quality: 90}); err != nil {
		return nil, fmt.Errorf("encoding %s: %w", path, err)
	}
	return &photo{data: buf.Bytes(), width: w, height: h}, nil
}
