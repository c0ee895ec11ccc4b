package vision

import "image"

// SkinRegionDetector approximates face detection by clustering
// skin-tone pixels into connected regions and keeping the ones with
// face-like proportions. It is deliberately cheap: the classifier only
// needs a count and rough boxes, not landmarks. Hosts with a cascade or
// DNN detector can plug it in through the FaceDetector interface.
type SkinRegionDetector struct {
	minArea int
}

func NewSkinRegionDetector(minArea int) *SkinRegionDetector {
	if minArea <= 0 {
		minArea = 900
	}
	return &SkinRegionDetector{minArea: minArea}
}

// Detect returns approximate face bounding boxes in image coordinates.
func (d *SkinRegionDetector) Detect(img image.Image) []image.Rectangle {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return nil
	}

	mask := make([]bool, w*h)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			mask[y*w+x] = isSkin(uint8(r>>8), uint8(g>>8), uint8(bl>>8))
		}
	}

	var boxes []image.Rectangle
	for _, reg := range labelRegions(mask, w, h) {
		if reg.area < d.minArea {
			continue
		}
		rw := reg.bounds.Dx() + 1
		rh := reg.bounds.Dy() + 1
		aspect := float64(rw) / float64(rh)
		if aspect < 0.4 || aspect > 1.8 {
			continue
		}
		// Faces fill most of their bounding box; stray skin-tone
		// scatter does not.
		fill := float64(reg.area) / float64(rw*rh)
		if fill < 0.4 {
			continue
		}
		boxes = append(boxes, reg.bounds.Add(b.Min))
	}

	return boxes
}

// isSkin is the classic RGB-space skin rule: dominant red channel with
// sufficient spread between channels.
func isSkin(r, g, b uint8) bool {
	if r < 95 || g < 40 || b < 20 {
		return false
	}
	if r <= g || r <= b {
		return false
	}
	max := r
	min := r
	if g > max {
		max = g
	}
	if b > max {
		max = b
	}
	if g < min {
		min = g
	}
	if b < min {
		min = b
	}
	if max-min <= 15 {
		return false
	}
	diff := int(r) - int(g)
	if diff < 0 {
		diff = -diff
	}
	return diff > 15
}
