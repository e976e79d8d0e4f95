package vector

import (
	"github.com/jparkgeo/pungsu/pkg/geom"
	"github.com/jparkgeo/pungsu/pkg/optional"
)

// SiteFeature is one input site to score: a point plus the slope and
// aspect the caller sampled for it (both may be absent when no slope
// or aspect raster backs the site layer).
type SiteFeature struct {
	ID        int
	Point     geom.Point
	SlopeDeg  optional.Float
	AspectDeg optional.Float
}
