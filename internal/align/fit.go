// Package align makes independently acquired embryos comparable: a robust
// voxelsize correction normalizing measured volumes to a fixed target, and
// a temporal alignment mapping each embryo's timepoints onto a reference
// embryo's developmental clock.
package align

import (
	"fmt"
	"math"
	"math/rand"
	"sort"

	"gonum.org/v1/gonum/stat"
)

// LineFit is a fitted line y = Slope*x + Intercept.
type LineFit struct {
	Slope     float64
	Intercept float64
}

// At evaluates the fitted line.
func (f LineFit) At(x float64) float64 {
	return f.Slope*x + f.Intercept
}

// RobustFitConfig tunes the consensus line fit: a fixed number of random
// 2-point candidates, an inlier threshold equal to the median absolute
// residual of a plain least-squares fit, and a deterministic seed so
// reruns agree.
type RobustFitConfig struct {
	// Samples is the number of random 2-point candidate lines tried.
	Samples int
	// Seed makes the sampling deterministic.
	Seed int64
}

// DefaultRobustFitConfig returns the standard tuning.
func DefaultRobustFitConfig() RobustFitConfig {
	return RobustFitConfig{Samples: 100, Seed: 1}
}

// olsFit is an ordinary least-squares line fit via the covariance/variance
// formula.
func olsFit(xs, ys []float64) LineFit {
	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	return LineFit{Slope: slope, Intercept: intercept}
}

// RobustLineFit fits a line tolerating outliers: an initial least-squares
// fit sets the inlier threshold, random 2-point candidates vote for the
// largest consensus set, and the winner is refit by least squares over its
// inliers. Needs at least two points with distinct x.
func RobustLineFit(xs, ys []float64, cfg RobustFitConfig) (LineFit, error) {
	if len(xs) != len(ys) {
		return LineFit{}, fmt.Errorf("robust fit: mismatched series lengths %d and %d", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return LineFit{}, fmt.Errorf("robust fit: need at least 2 points, got %d", len(xs))
	}
	xSpread := false
	for i := 1; i < len(xs); i++ {
		if xs[i] != xs[0] {
			xSpread = true
			break
		}
	}
	if !xSpread {
		return LineFit{}, fmt.Errorf("robust fit: all %d points share the same x", len(xs))
	}

	initial := olsFit(xs, ys)
	threshold := medianAbsResidual(xs, ys, initial)
	if threshold == 0 {
		// The data is already exactly linear.
		return initial, nil
	}

	rng := rand.New(rand.NewSource(cfg.Seed))
	best := initial
	bestInliers := countInliers(xs, ys, initial, threshold)
	for s := 0; s < cfg.Samples; s++ {
		i := rng.Intn(len(xs))
		j := rng.Intn(len(xs))
		if i == j || xs[i] == xs[j] {
			continue
		}
		slope := (ys[j] - ys[i]) / (xs[j] - xs[i])
		candidate := LineFit{Slope: slope, Intercept: ys[i] - slope*xs[i]}
		if n := countInliers(xs, ys, candidate, threshold); n > bestInliers {
			best = candidate
			bestInliers = n
		}
	}

	// Refit over the winning consensus set.
	var inX, inY []float64
	for i := range xs {
		if math.Abs(ys[i]-best.At(xs[i])) <= threshold {
			inX = append(inX, xs[i])
			inY = append(inY, ys[i])
		}
	}
	if len(inX) < 2 {
		return best, nil
	}
	return olsFit(inX, inY), nil
}

func countInliers(xs, ys []float64, fit LineFit, threshold float64) int {
	n := 0
	for i := range xs {
		if math.Abs(ys[i]-fit.At(xs[i])) <= threshold {
			n++
		}
	}
	return n
}

func medianAbsResidual(xs, ys []float64, fit LineFit) float64 {
	residuals := make([]float64, len(xs))
	for i := range xs {
		residuals[i] = math.Abs(ys[i] - fit.At(xs[i]))
	}
	sort.Float64s(residuals)
	mid := len(residuals) / 2
	if len(residuals)%2 == 1 {
		return residuals[mid]
	}
	return (residuals[mid-1] + residuals[mid]) / 2
}
