package vision

import "image"

// region is a 4-connected component of set cells in a boolean mask.
type region struct {
	area   int
	bounds image.Rectangle
}

// labelRegions runs a flood fill over a w×h mask and returns the
// connected components. Used by both the text heuristic and the skin
// region face detector.
func labelRegions(mask []bool, w, h int) []region {
	visited := make([]bool, len(mask))
	var regions []region
	var stack []int

	for start := range mask {
		if !mask[start] || visited[start] {
			continue
		}

		r := region{bounds: image.Rect(start%w, start/w, start%w, start/w)}
		stack = append(stack[:0], start)
		visited[start] = true

		for len(stack) > 0 {
			idx := stack[len(stack)-1]
			stack = stack[:len(stack)-1]

			x, y := idx%w, idx/w
			r.area++
			if x < r.bounds.Min.X {
				r.bounds.Min.X = x
			}
			if x > r.bounds.Max.X {
				r.bounds.Max.X = x
			}
			if y < r.bounds.Min.Y {
				r.bounds.Min.Y = y
			}
			if y > r.bounds.Max.Y {
				r.bounds.Max.Y = y
			}

			for _, n := range [4]int{idx - 1, idx + 1, idx - w, idx + w} {
				if n < 0 || n >= len(mask) {
					continue
				}
				// Reject horizontal wrap-around.
				if (n == idx-1 && x == 0) || (n == idx+1 && x == w-1) {
					continue
				}
				if mask[n] && !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}

		regions = append(regions, r)
	}

	return regions
}
