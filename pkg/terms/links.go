package terms

import (
	"fmt"
	"sort"

	"github.com/jparkgeo/pungsu/pkg/config"
	"github.com/jparkgeo/pungsu/pkg/geom"
)

// MinLinkScore drops links whose endpoint mean falls below it.
const MinLinkScore = 0.48

// linkPlan is the fixed structural wiring between landmark pairs. The
// third entry names the term whose style the link is drawn in. Radial
// spokes from the core and the court are deliberately absent.
var linkPlan = [][3]string{
	{config.TermJusan, config.TermDunoe, config.TermJusan},
	{config.TermDunoe, config.TermJojongsan, config.TermDunoe},
	{config.TermNaecheongyong, config.TermOecheongyong, config.TermNaecheongyong},
	{config.TermNaebaekho, config.TermOebaekho, config.TermNaebaekho},
	{config.TermAnsan, config.TermJosan, config.TermAnsan},
	{config.TermMyeongdang, config.TermMisa, config.TermMyeongdang},
	{config.TermNaesugu, config.TermOesugu, config.TermNaesugu},
	{config.TermNaesugu, config.TermIpsu, config.TermNaesugu},
}

// Link is one structural connection between two landmarks of the same
// parent site.
type Link struct {
	StyleID  string
	Label    string
	ParentID int
	Rank     int
	Score    float64
	Culture  string
	Period   string
	SrcID    string
	DstID    string
	Path     []geom.Point
	LengthM  float64
	Azimuth  float64
	Curved   bool
	Reason   string
}

// BuildLinks connects landmarks per the fixed plan, one link per
// unordered pair and style within a parent. Links bow toward the
// parent core when it is present.
func BuildLinks(landmarks []Landmark, catalog config.TermCatalog) []Link {
	grouped := map[int]map[string]Landmark{}
	for _, l := range landmarks {
		if l.TermID == "" {
			continue
		}
		byTerm, ok := grouped[l.ParentID]
		if !ok {
			byTerm = map[string]Landmark{}
			grouped[l.ParentID] = byTerm
		}
		byTerm[l.TermID] = l
	}

	parents := make([]int, 0, len(grouped))
	for id := range grouped {
		parents = append(parents, id)
	}
	sort.Ints(parents)

	var links []Link
	seen := map[string]bool{}
	for _, parentID := range parents {
		byTerm := grouped[parentID]

		var core *geom.Point
		if hyeol, ok := byTerm[config.TermHyeol]; ok {
			p := hyeol.Point
			core = &p
		}

		for _, plan := range linkPlan {
			srcID, dstID, styleID := plan[0], plan[1], plan[2]
			src, okSrc := byTerm[srcID]
			dst, okDst := byTerm[dstID]
			if !okSrc || !okDst {
				continue
			}

			lo, hi := srcID, dstID
			if hi < lo {
				lo, hi = hi, lo
			}
			edgeKey := fmt.Sprintf("%d|%s|%s|%s", parentID, lo, hi, styleID)
			if seen[edgeKey] {
				continue
			}
			seen[edgeKey] = true

			if src.Point.Equal(dst.Point) {
				continue
			}
			score := (src.Score + dst.Score) / 2
			if score < MinLinkScore {
				continue
			}
			length := src.Point.DistanceTo(dst.Point)
			if length <= 0 {
				continue
			}
			azimuth := src.Point.AzimuthTo(dst.Point)

			links = append(links, Link{
				StyleID:  styleID,
				Label:    catalog.Label(styleID),
				ParentID: parentID,
				Rank:     src.Rank,
				Score:    score,
				Culture:  firstNonEmpty(src.Culture, dst.Culture),
				Period:   firstNonEmpty(src.Period, dst.Period),
				SrcID:    srcID,
				DstID:    dstID,
				Path:     geom.BentPath(src.Point, dst.Point, core),
				LengthM:  length,
				Azimuth:  azimuth,
				Curved:   true,
				Reason: fmt.Sprintf(
					"structural link %s->%s for site #%d. style=%s, curved, score=%.3f, length=%.1fm, azimuth=%.1f",
					srcID, dstID, parentID, styleID, score, length, azimuth),
			})
		}
	}
	return links
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}
