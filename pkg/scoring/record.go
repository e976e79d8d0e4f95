package scoring

import (
	"fmt"

	"github.com/jparkgeo/pungsu/pkg/optional"
)

// SiteRecord is the typed result written per scored site, mirroring
// the fs_-prefixed field set of the produced site-score layer.
type SiteRecord struct {
	SiteID     int
	Culture    string
	Period     string
	Model      string
	Confidence optional.Float
	Note       string
	Reason     string
	WaterM     optional.Float // distance to nearest water, meters
	Slope      optional.Float // slope indicator score
	Aspect     optional.Float
	Form       optional.Float
	Long       optional.Float
	DemWater   optional.Float // terrain-derived wetness score
	TPINorm    optional.Float
	Conv       optional.Float
	Water      optional.Float // blended water indicator
	Total      optional.Float // weighted total, 0..100
}

func fmtOpt(v optional.Float, digits int) string {
	if !v.Valid {
		return "n/a"
	}
	return fmt.Sprintf("%.*f", digits, v.Value)
}

// ComposeReason builds the per-site explanation string.
func ComposeReason(rec SiteRecord, slopeDeg, aspectDeg optional.Float) string {
	return fmt.Sprintf(
		"model=%s culture=%s period=%s total=%s slope=%s aspect=%s water_m=%s top=%s",
		rec.Model, rec.Culture, rec.Period,
		fmtOpt(rec.Total, 2), fmtOpt(slopeDeg, 2), fmtOpt(aspectDeg, 1),
		fmtOpt(rec.WaterM, 1), rec.Note,
	)
}
