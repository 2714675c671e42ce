package pixelart

import "math"

// Match returns the palette color closest to query under the metric.
// If several colors are equally close, the first one in the palette wins.
func Match(query Color, p Palette, m Metric) (Color, error) {
	i, err := MatchIndex(query, p, m)
	if err != nil {
		return Color{}, err
	}
	return p[i], nil
}

// MatchIndex is like Match but returns the index of the palette color.
func MatchIndex(query Color, p Palette, m Metric) (int, error) {
	if err := p.validate(); err != nil {
		return 0, err
	}
	if err := validateMetric(m); err != nil {
		return 0, err
	}
	return matchIndex(query, p, m), nil
}

// matchIndex does a linear scan over the palette, keeping the best color found
// so far. Only a strictly closer color replaces the current best.
func matchIndex(query Color, p Palette, m Metric) int {
	if pr, ok := m.(Projector); ok {
		proj := make([]Vec3, len(p))
		for i := range p {
			proj[i] = pr.Project(p[i])
		}
		return projectedIndex(pr.Project(query), proj)
	}
	if d, ok := m.(Distancer); ok {
		best := 0
		bestDist := math.Inf(1)
		for i := range p {
			dist := d.Distance(query, p[i])
			if dist < bestDist {
				best, bestDist = i, dist
				if dist == 0 {
					break
				}
			}
		}
		return best
	}

	best := 0
	for i := 1; i < len(p); i++ {
		if m.Compare(p[i], p[best], query) < 0 {
			best = i
		}
	}
	return best
}

// rawIndex is matchIndex specialized for Raw, working on ints.
func rawIndex(query Color, p Palette) int {
	best := 0
	bestDist := math.MaxInt
	for i := range p {
		dist := RawDistance(query, p[i])
		if dist < bestDist {
			best, bestDist = i, dist
			if dist == 0 {
				break
			}
		}
	}
	return best
}

// projectedIndex finds the closest projected palette entry, see Projector.
func projectedIndex(query Vec3, p []Vec3) int {
	best := 0
	bestDist := math.Inf(1)
	for i := range p {
		dist := sqDist(query, p[i])
		if dist < bestDist {
			best, bestDist = i, dist
		}
	}
	return best
}
