// Package sampling reads elevations on rings and sectors around a
// center point. Samples that fall outside the raster or on nodata are
// dropped, never null-padded; callers that need "all samples present"
// semantics must check the returned counts themselves.
package sampling

import (
	"math"
	"sync/atomic"

	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/optional"
	"github.com/jparkgeo/pungsu/pkg/raster"
)

// Mode selects which extremum a sector or ring search keeps.
type Mode int

const (
	Max Mode = iota
	Min
)

// directionOffsets are the five azimuth offsets a directional mean
// averages over, centered on the cardinal.
var directionOffsets = [5]float64{-30, -15, 0, 15, 30}

// Sampler samples a raster provider around center points. It keeps
// running sample/nodata tallies, safe for concurrent readers.
type Sampler struct {
	dem     raster.Provider
	samples atomic.Uint64
	nodata  atomic.Uint64
}

// New creates a Sampler over the given elevation provider.
func New(dem raster.Provider) *Sampler {
	return &Sampler{dem: dem}
}

// sample reads the provider and tallies the outcome.
func (s *Sampler) sample(p geom.Point) (float64, bool) {
	v, ok := s.dem.Sample(p)
	s.samples.Add(1)
	if !ok {
		s.nodata.Add(1)
	}
	return v, ok
}

// Counts returns the total samples taken and how many hit nodata or
// fell outside the raster.
func (s *Sampler) Counts() (samples, nodata uint64) {
	return s.samples.Load(), s.nodata.Load()
}

// At samples the elevation at a single point.
func (s *Sampler) At(p geom.Point) optional.Float {
	v, ok := s.sample(p)
	if !ok {
		return optional.None()
	}
	return optional.Some(v)
}

// Ring samples the elevations at radius along each azimuth, returning
// only the successful samples in azimuth order.
func (s *Sampler) Ring(center geom.Point, radius float64, azimuths []float64) []float64 {
	values := make([]float64, 0, len(azimuths))
	for _, az := range azimuths {
		if v, ok := s.sample(center.Offset(radius, az)); ok {
			values = append(values, v)
		}
	}
	return values
}

// FullRing samples the full circle at the given azimuth step.
func (s *Sampler) FullRing(center geom.Point, radius float64, stepDeg int) []float64 {
	if stepDeg < 1 {
		stepDeg = 1
	}
	azimuths := make([]float64, 0, 360/stepDeg)
	for az := 0; az < 360; az += stepDeg {
		azimuths = append(azimuths, float64(az))
	}
	return s.Ring(center, radius, azimuths)
}

// DirectionMean averages five samples fanned ±30° around a cardinal
// azimuth. Absent when no sample succeeds.
func (s *Sampler) DirectionMean(center geom.Point, radius, centerAzimuth float64) optional.Float {
	sum := 0.0
	n := 0
	for _, off := range directionOffsets {
		az := math.Mod(centerAzimuth+off+360, 360)
		if v, ok := s.sample(center.Offset(radius, az)); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return optional.None()
	}
	return optional.Some(sum / float64(n))
}

// Extreme is the result of a sector or ring extremum search.
type Extreme struct {
	Point     geom.Point
	Elevation float64
	// Azimuth of the winning sample; for ring searches this is the
	// full-circle azimuth of the extremum.
	Azimuth float64
}

// SectorExtreme scans sampleCount evenly spaced azimuths across a
// span (degrees) centered on centerAzimuth and returns the maximum or
// minimum sampled elevation. Ties keep the first sample found.
func (s *Sampler) SectorExtreme(center geom.Point, radius, centerAzimuth float64, mode Mode, span float64, sampleCount int) (Extreme, bool) {
	var best Extreme
	found := false
	for i := 0; i < sampleCount; i++ {
		ratio := 0.0
		if sampleCount > 1 {
			ratio = float64(i) / float64(sampleCount-1)
		}
		az := math.Mod(centerAzimuth-span/2+ratio*span+360, 360)
		p := center.Offset(radius, az)
		v, ok := s.sample(p)
		if !ok {
			continue
		}
		if !found || (mode == Max && v > best.Elevation) || (mode == Min && v < best.Elevation) {
			best = Extreme{Point: p, Elevation: v, Azimuth: az}
			found = true
		}
	}
	return best, found
}

// RingExtreme scans the full circle at an 8° step and returns the
// extremum.
func (s *Sampler) RingExtreme(center geom.Point, radius float64, mode Mode) (Extreme, bool) {
	var best Extreme
	found := false
	for az := 0; az < 360; az += 8 {
		p := center.Offset(radius, float64(az))
		v, ok := s.sample(p)
		if !ok {
			continue
		}
		if !found || (mode == Max && v > best.Elevation) || (mode == Min && v < best.Elevation) {
			best = Extreme{Point: p, Elevation: v, Azimuth: float64(az)}
			found = true
		}
	}
	return best, found
}

// SectorGentle scans a 90° frontal sector at a 6° step and returns
// the sample whose elevation is closest to the reference; used to
// place the apron landmark on near-level ground.
func (s *Sampler) SectorGentle(center geom.Point, radius, centerAzimuth, reference float64) (Extreme, bool) {
	var best Extreme
	bestDelta := math.Inf(1)
	found := false
	for off := -45; off <= 45; off += 6 {
		az := math.Mod(centerAzimuth+float64(off)+360, 360)
		p := center.Offset(radius, az)
		v, ok := s.sample(p)
		if !ok {
			continue
		}
		delta := math.Abs(v - reference)
		if delta < bestDelta {
			best = Extreme{Point: p, Elevation: v, Azimuth: az}
			bestDelta = delta
			found = true
		}
	}
	return best, found
}
