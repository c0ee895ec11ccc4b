package vision

import (
	"context"
	"image"
	"image/color"
	"math"
	"sort"
	"sync"

	"github.com/Yousef-M1/Clipper/internal/config"
	"github.com/Yousef-M1/Clipper/internal/frame"
	"github.com/corona10/goimagehash"
	"github.com/nfnt/resize"
	"github.com/rs/zerolog"
)

// FeatureVector holds everything the segmenter and classifier need to
// know about one sampled frame. Histogram buckets are non-negative and
// sum to 1 so that correlation between frames stays well-defined.
type FeatureVector struct {
	ColorHist      []float64 // HistogramBins per RGB channel, concatenated
	EdgeDensity    float64   // fraction of pixels over the gradient cutoff, [0,1]
	Brightness     float64   // mean luma, [0,255]
	Contrast       float64   // luma standard deviation within the frame
	FaceCount      int
	Faces          []image.Rectangle
	HasText        bool
	Motion         float64 // mean abs luma diff vs previous sample, 0 for the first
	Hash           uint64  // dHash of the resized frame
	DominantColors []color.RGBA
}

// FrameFeatures pairs a feature vector with its sample timestamp.
type FrameFeatures struct {
	Timestamp float64
	FeatureVector
}

// FaceDetector counts faces and returns approximate bounding boxes.
// The default is a skin-region heuristic; hosts with a real detector
// can substitute their own.
type FaceDetector interface {
	Detect(img image.Image) []image.Rectangle
}

// Extractor computes feature vectors for sampled frames.
type Extractor struct {
	logger  zerolog.Logger
	cfg     config.FeatureConfig
	faces   FaceDetector
	workers int
}

func NewExtractor(logger zerolog.Logger, cfg config.FeatureConfig, faces FaceDetector, workers int) *Extractor {
	if cfg.AnalysisWidth <= 0 || cfg.AnalysisHeight <= 0 {
		cfg.AnalysisWidth, cfg.AnalysisHeight = 320, 240
	}
	if cfg.HistogramBins <= 0 {
		cfg.HistogramBins = 16
	}
	if faces == nil {
		faces = NewSkinRegionDetector(cfg.FaceMinArea)
	}
	if workers <= 0 {
		workers = 1
	}
	return &Extractor{
		logger:  logger.With().Str("component", "feature-extractor").Logger(),
		cfg:     cfg,
		faces:   faces,
		workers: workers,
	}
}

// ExtractAll computes features for every sample. Per-frame work is
// farmed out across workers; the only sequential dependency is motion,
// which is resolved afterwards by a paired-index pass over the retained
// luma planes rather than shared mutable state.
func (e *Extractor) ExtractAll(ctx context.Context, samples []frame.Frame) []FrameFeatures {
	if len(samples) == 0 {
		return nil
	}

	features := make([]FrameFeatures, len(samples))
	lumas := make([]*lumaPlane, len(samples))

	var wg sync.WaitGroup
	jobs := make(chan int)

	for w := 0; w < e.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				fv, luma := e.extractOne(samples[i].Image)
				features[i] = FrameFeatures{Timestamp: samples[i].Timestamp, FeatureVector: fv}
				lumas[i] = luma
			}
		}()
	}

dispatch:
	for i := range samples {
		select {
		case jobs <- i:
		case <-ctx.Done():
			// Unprocessed frames keep zero vectors; the caller already
			// treats a canceled run as partial.
			break dispatch
		}
	}
	close(jobs)
	wg.Wait()

	// Second pass: motion against the immediately preceding sample.
	for i := 1; i < len(features); i++ {
		if lumas[i] != nil && lumas[i-1] != nil {
			features[i].Motion = meanAbsDiff(lumas[i], lumas[i-1])
		}
	}

	e.logger.Debug().Int("frames", len(features)).Msg("feature extraction complete")
	return features
}

// lumaPlane is a fixed-size grayscale copy of an analysis frame.
type lumaPlane struct {
	w, h int
	pix  []float64
}

func (e *Extractor) extractOne(src image.Image) (FeatureVector, *lumaPlane) {
	w, h := e.cfg.AnalysisWidth, e.cfg.AnalysisHeight
	img := resize.Resize(uint(w), uint(h), src, resize.Bilinear)

	luma := toLuma(img, w, h)

	fv := FeatureVector{
		ColorHist:   e.colorHistogram(img, w, h),
		EdgeDensity: edgeDensity(luma, e.cfg.EdgeGradient),
		FaceCount:   0,
		HasText:     e.detectText(luma),
	}
	fv.Brightness, fv.Contrast = lumaStats(luma)
	fv.DominantColors = dominantColors(img, w, h, e.cfg.DominantColors)

	if boxes := e.faces.Detect(img); len(boxes) > 0 {
		fv.Faces = boxes
		fv.FaceCount = len(boxes)
	}

	if hash, err := goimagehash.DifferenceHash(img); err == nil {
		fv.Hash = hash.GetHash()
	}

	return fv, luma
}

func toLuma(img image.Image, w, h int) *lumaPlane {
	lp := &lumaPlane{w: w, h: h, pix: make([]float64, w*h)}
	b := img.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			lp.pix[y*w+x] = 0.299*float64(r>>8) + 0.587*float64(g>>8) + 0.114*float64(bl>>8)
		}
	}
	return lp
}

// colorHistogram bins each RGB channel independently and concatenates
// the three normalized histograms.
func (e *Extractor) colorHistogram(img image.Image, w, h int) []float64 {
	bins := e.cfg.HistogramBins
	hist := make([]float64, 3*bins)
	total := float64(w * h * 3)
	if total == 0 {
		// Degenerate frame: uniform histogram keeps correlation defined.
		for i := range hist {
			hist[i] = 1.0 / float64(len(hist))
		}
		return hist
	}

	b := img.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			// v*bins/256 stays inside the channel segment for any
			// configured bin count, including ones that do not divide 256.
			hist[int(r>>8)*bins/256]++
			hist[bins+int(g>>8)*bins/256]++
			hist[2*bins+int(bl>>8)*bins/256]++
		}
	}
	for i := range hist {
		hist[i] /= total
	}
	return hist
}

// edgeDensity is the fraction of interior pixels whose combined
// horizontal and vertical luma gradient exceeds the cutoff.
func edgeDensity(lp *lumaPlane, cutoff float64) float64 {
	if lp.w < 3 || lp.h < 3 {
		return 0
	}
	edges := 0
	interior := 0
	for y := 1; y < lp.h-1; y++ {
		for x := 1; x < lp.w-1; x++ {
			gx := lp.pix[y*lp.w+x+1] - lp.pix[y*lp.w+x-1]
			gy := lp.pix[(y+1)*lp.w+x] - lp.pix[(y-1)*lp.w+x]
			if math.Abs(gx)+math.Abs(gy) > cutoff {
				edges++
			}
			interior++
		}
	}
	return float64(edges) / float64(interior)
}

func lumaStats(lp *lumaPlane) (mean, stddev float64) {
	n := float64(len(lp.pix))
	if n == 0 {
		return 0, 0
	}
	var sum, sqSum float64
	for _, v := range lp.pix {
		sum += v
		sqSum += v * v
	}
	mean = sum / n
	variance := sqSum/n - mean*mean
	if variance < 0 {
		variance = 0
	}
	return mean, math.Sqrt(variance)
}

func meanAbsDiff(a, b *lumaPlane) float64 {
	if len(a.pix) != len(b.pix) || len(a.pix) == 0 {
		return 0
	}
	var sum float64
	for i := range a.pix {
		sum += math.Abs(a.pix[i] - b.pix[i])
	}
	return sum / float64(len(a.pix))
}

// detectText looks for clusters of high-local-gradient cells with
// text-like aspect ratios. Captions and lower-thirds produce several
// such rectangular regions; natural scenes rarely do.
func (e *Extractor) detectText(lp *lumaPlane) bool {
	const cell = 8
	cw, ch := lp.w/cell, lp.h/cell
	if cw < 2 || ch < 2 {
		return false
	}

	mask := make([]bool, cw*ch)
	for cy := 0; cy < ch; cy++ {
		for cx := 0; cx < cw; cx++ {
			var grad float64
			for y := cy * cell; y < (cy+1)*cell && y < lp.h-1; y++ {
				for x := cx * cell; x < (cx+1)*cell && x < lp.w-1; x++ {
					grad += math.Abs(lp.pix[y*lp.w+x+1] - lp.pix[y*lp.w+x])
				}
			}
			mask[cy*cw+cx] = grad/float64(cell*cell) > e.cfg.TextCellGradient
		}
	}

	regions := labelRegions(mask, cw, ch)
	textLike := 0
	for _, r := range regions {
		rw := r.bounds.Dx() + 1
		rh := r.bounds.Dy() + 1
		aspect := float64(rw) / float64(rh)
		if aspect > 1.5 && aspect < 12 && r.area >= 2 {
			textLike++
		}
	}
	return textLike > e.cfg.TextMinRegions
}

// dominantColors quantizes the frame to a coarse RGB cube and returns
// the mean color of the most populated buckets, largest first.
func dominantColors(img image.Image, w, h, k int) []color.RGBA {
	if k <= 0 {
		k = 5
	}
	const levels = 4
	const shift = 8 - 2 // 256 / 4 levels

	type bucket struct {
		count   int
		r, g, b uint64
	}
	buckets := make(map[int]*bucket)

	b := img.Bounds()
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			r, g, bl, _ := img.At(b.Min.X+x, b.Min.Y+y).RGBA()
			r8, g8, b8 := r>>8, g>>8, bl>>8
			key := int(r8>>shift)*levels*levels + int(g8>>shift)*levels + int(b8>>shift)
			bk := buckets[key]
			if bk == nil {
				bk = &bucket{}
				buckets[key] = bk
			}
			bk.count++
			bk.r += uint64(r8)
			bk.g += uint64(g8)
			bk.b += uint64(b8)
		}
	}

	keys := make([]int, 0, len(buckets))
	for key := range buckets {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool {
		bi, bj := buckets[keys[i]], buckets[keys[j]]
		if bi.count != bj.count {
			return bi.count > bj.count
		}
		return keys[i] < keys[j]
	})

	if len(keys) > k {
		keys = keys[:k]
	}
	colors := make([]color.RGBA, 0, len(keys))
	for _, key := range keys {
		bk := buckets[key]
		n := uint64(bk.count)
		colors = append(colors, color.RGBA{
			R: uint8(bk.r / n),
			G: uint8(bk.g / n),
			B: uint8(bk.b / n),
			A: 255,
		})
	}
	return colors
}

// HistogramCorrelation is the Pearson correlation between two
// histograms, the same measure OpenCV calls HISTCMP_CORREL. Flat
// histograms compare as 1 when equal and 0 otherwise.
func HistogramCorrelation(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}
	n := float64(len(a))
	var meanA, meanB float64
	for i := range a {
		meanA += a[i]
		meanB += b[i]
	}
	meanA /= n
	meanB /= n

	var cov, varA, varB float64
	for i := range a {
		da := a[i] - meanA
		db := b[i] - meanB
		cov += da * db
		varA += da * da
		varB += db * db
	}
	if varA == 0 || varB == 0 {
		if equalHist(a, b) {
			return 1
		}
		return 0
	}
	return cov / math.Sqrt(varA*varB)
}

func equalHist(a, b []float64) bool {
	const eps = 1e-9
	for i := range a {
		if math.Abs(a[i]-b[i]) > eps {
			return false
		}
	}
	return true
}

// HammingDistance counts differing bits between two perceptual hashes.
func HammingDistance(a, b uint64) int {
	xor := a ^ b
	count := 0
	for xor != 0 {
		count++
		xor &= xor - 1
	}
	return count
}
