/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"bytes"
	"fmt"
	"image"
	"image/jpeg"
	"image/png"
	"io"

	"github.com/jung-kurt/gofpdf"

	"gocollector/internal/domain"
	"gocollector/internal/version"
)

// DefaultFilePrefix starts every exported file name.
const DefaultFilePrefix = "nongdam"

// EncodeOptions tune the encoders.
type EncodeOptions struct {
	JPEGQuality int // 1..100, default 90
	Title       string
}

// Encode writes img in format and returns the format actually used. JPEG
// cannot carry transparency, so an image with any non-opaque pixel requested
// as JPEG is written as PNG.
func Encode(w io.Writer, img image.Image, format domain.Format, opts EncodeOptions) (domain.Format, error) {
	if img == nil {
		return "", fmt.Errorf("encode: nil image")
	}
	switch format {
	case domain.FormatJPEG:
		if !opaque(img) {
			return domain.FormatPNG, encodePNG(w, img)
		}
		q := opts.JPEGQuality
		if q <= 0 || q > 100 {
			q = 90
		}
		if err := jpeg.Encode(w, img, &jpeg.Options{Quality: q}); err != nil {
			return "", fmt.Errorf("encode jpeg: %w", err)
		}
		return domain.FormatJPEG, nil
	case domain.FormatPDF:
		return domain.FormatPDF, encodePDF(w, img, opts.Title)
	default:
		return domain.FormatPNG, encodePNG(w, img)
	}
}

// opaque reports whether every pixel of img is fully opaque.
func opaque(img image.Image) bool {
	if o, ok := img.(interface{ Opaque() bool }); ok {
		return o.Opaque()
	}
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		for x := b.Min.X; x < b.Max.X; x++ {
			if _, _, _, a := img.At(x, y).RGBA(); a != 0xffff {
				return false
			}
		}
	}
	return true
}

func encodePNG(w io.Writer, img image.Image) error {
	if err := png.Encode(w, img); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}

// encodePDF embeds the collage as a lossless PNG on a single page sized to
// the image, one point per pixel.
func encodePDF(w io.Writer, img image.Image, title string) error {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return fmt.Errorf("encode pdf image: %w", err)
	}
	b := img.Bounds()
	wd, ht := float64(b.Dx()), float64(b.Dy())
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: wd, Ht: ht},
	})
	if title != "" {
		pdf.SetTitle(title, true)
	}
	pdf.SetCreator(version.String(), false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: wd, Ht: ht})
	opt := gofpdf.ImageOptions{ImageType: "PNG"}
	pdf.RegisterImageOptionsReader("collage", opt, &buf)
	pdf.ImageOptions("collage", 0, 0, wd, ht, false, opt, 0, "")
	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

// Filename returns <prefix>_<list>_list.<ext>.
func Filename(prefix string, list domain.ListKind, format domain.Format) string {
	if trimmed(prefix) == "" {
		prefix = DefaultFilePrefix
	}
	return fmt.Sprintf("%s_%s_list.%s", trimmed(prefix), list, format.Ext())
}
