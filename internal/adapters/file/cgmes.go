package file

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"iter"
	"strconv"
	"strings"

	"github.com/samirrijal/gridgeo/internal/core/domain"
)

// glDocument is the subset of a CGMES Geographical Location profile document needed to
// build position records.
type glDocument struct {
	XMLName           xml.Name             `xml:"RDF"`
	CoordinateSystems []glCoordinateSystem `xml:"CoordinateSystem"`
	Locations         []glLocation         `xml:"Location"`
	PositionPoints    []glPositionPoint    `xml:"PositionPoint"`
}

type glObject struct {
	ID    string `xml:"ID,attr"`
	About string `xml:"about,attr"`
	Name  string `xml:"IdentifiedObject.name"`
}

func (o glObject) key() string {
	if o.ID != "" {
		return normalizeRDFID(o.ID)
	}
	return normalizeRDFID(o.About)
}

type glCoordinateSystem struct {
	glObject
	CRSURN string `xml:"CoordinateSystem.crsUrn"`
}

type glLocation struct {
	glObject
	CoordinateSystem     rdfResource   `xml:"Location.CoordinateSystem"`
	PowerSystemResources []rdfResource `xml:"Location.PowerSystemResources"`
}

type glPositionPoint struct {
	glObject
	Location       rdfResource `xml:"PositionPoint.Location"`
	SequenceNumber string      `xml:"PositionPoint.sequenceNumber"`
	XPosition      string      `xml:"PositionPoint.xPosition"`
	YPosition      string      `xml:"PositionPoint.yPosition"`
}

type rdfResource struct {
	Resource string `xml:"resource,attr"`
}

func (r rdfResource) key() string { return normalizeRDFID(r.Resource) }

// normalizeRDFID strips the fragment marker and the leading underscore CGMES uses to
// make mRIDs valid XML ids.
func normalizeRDFID(id string) string {
	id = strings.TrimSpace(id)
	if i := strings.LastIndex(id, "#"); i >= 0 {
		id = id[i+1:]
	}
	return strings.TrimPrefix(id, "_")
}

// CGMESRecords reads a GL profile RDF/XML document. Every position point yields one
// record per power system resource of its location; x is the longitude and y the
// latitude. The document is decoded in full before the first record is yielded.
func CGMESRecords(ctx context.Context, r io.Reader) iter.Seq2[domain.CoordinateRecord, error] {
	return func(yield func(domain.CoordinateRecord, error) bool) {
		var doc glDocument
		if err := xml.NewDecoder(r).Decode(&doc); err != nil {
			yield(domain.CoordinateRecord{}, fmt.Errorf("decode gl profile: %w", err))
			return
		}

		systems := make(map[string]glCoordinateSystem, len(doc.CoordinateSystems))
		for _, cs := range doc.CoordinateSystems {
			systems[cs.key()] = cs
		}
		locations := make(map[string]glLocation, len(doc.Locations))
		for _, loc := range doc.Locations {
			locations[loc.key()] = loc
		}

		for _, pp := range doc.PositionPoints {
			if err := ctx.Err(); err != nil {
				yield(domain.CoordinateRecord{}, err)
				return
			}
			loc, ok := locations[pp.Location.key()]
			if !ok {
				yield(domain.CoordinateRecord{}, &domain.MalformedRecordError{
					ElementID: pp.key(), Field: "PositionPoint.Location", Value: pp.Location.Resource,
				})
				return
			}
			cs, ok := systems[loc.CoordinateSystem.key()]
			if !ok {
				yield(domain.CoordinateRecord{}, &domain.MalformedRecordError{
					ElementID: loc.key(), Field: "Location.CoordinateSystem", Value: loc.CoordinateSystem.Resource,
				})
				return
			}
			if len(loc.PowerSystemResources) == 0 {
				yield(domain.CoordinateRecord{}, &domain.MalformedRecordError{
					ElementID: loc.key(), Field: "Location.PowerSystemResources",
				})
				return
			}
			for _, psr := range loc.PowerSystemResources {
				rec, err := pointRecord(psr.key(), loc, cs, pp)
				if !yield(rec, err) || err != nil {
					return
				}
			}
		}
	}
}

func pointRecord(elementID string, loc glLocation, cs glCoordinateSystem, pp glPositionPoint) (domain.CoordinateRecord, error) {
	rec := domain.CoordinateRecord{
		ElementID:   elementID,
		CRSName:     strings.TrimSpace(cs.Name),
		CRSURN:      strings.TrimSpace(cs.CRSURN),
		DisplayName: strings.TrimSpace(loc.Name),
	}
	var err error
	raw := strings.TrimSpace(pp.SequenceNumber)
	if rec.Sequence, err = strconv.Atoi(raw); err != nil {
		return rec, &domain.MalformedRecordError{ElementID: elementID, Field: "PositionPoint.sequenceNumber", Value: raw, Err: err}
	}
	raw = strings.TrimSpace(pp.XPosition)
	if rec.Longitude, err = strconv.ParseFloat(raw, 64); err != nil {
		return rec, &domain.MalformedRecordError{ElementID: elementID, Field: "PositionPoint.xPosition", Value: raw, Err: err}
	}
	raw = strings.TrimSpace(pp.YPosition)
	if rec.Latitude, err = strconv.ParseFloat(raw, 64); err != nil {
		return rec, &domain.MalformedRecordError{ElementID: elementID, Field: "PositionPoint.yPosition", Value: raw, Err: err}
	}
	return rec, nil
}
