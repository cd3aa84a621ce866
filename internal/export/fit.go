/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package export

import (
	"image"

	"github.com/disintegration/imaging"
)

// ContainSize scales (srcW, srcH) to fit within (maxW, maxH) preserving
// aspect ratio. Small images are scaled up.
func ContainSize(srcW, srcH, maxW, maxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return maxW, maxH
	}
	newW, newH := maxW, srcH*maxW/srcW
	if newH > maxH {
		newH = maxH
		newW = srcW * maxH / srcH
	}
	return max(newW, 1), max(newH, 1)
}

// CoverSize scales (srcW, srcH) so it covers (boxW, boxH) preserving aspect
// ratio; the excess on one axis is cropped by the caller.
func CoverSize(srcW, srcH, boxW, boxH int) (int, int) {
	if srcW <= 0 || srcH <= 0 {
		return boxW, boxH
	}
	newW, newH := boxW, srcH*boxW/srcW
	if newH < boxH {
		newH = boxH
		newW = srcW * boxH / srcH
	}
	return max(newW, boxW), max(newH, boxH)
}

// fitContain returns img scaled into box and its centered placement.
func fitContain(img image.Image, box image.Rectangle) (image.Image, image.Rectangle) {
	b := img.Bounds()
	w, h := ContainSize(b.Dx(), b.Dy(), box.Dx(), box.Dy())
	scaled := imaging.Resize(img, w, h, imaging.Lanczos)
	x := box.Min.X + (box.Dx()-w)/2
	y := box.Min.Y + (box.Dy()-h)/2
	return scaled, image.Rect(x, y, x+w, y+h)
}

// fitCover returns img scaled to cover box, cropped around its center.
func fitCover(img image.Image, box image.Rectangle) (image.Image, image.Rectangle) {
	b := img.Bounds()
	w, h := CoverSize(b.Dx(), b.Dy(), box.Dx(), box.Dy())
	scaled := imaging.Resize(img, w, h, imaging.Lanczos)
	cropped := imaging.CropCenter(scaled, box.Dx(), box.Dy())
	return cropped, box
}
