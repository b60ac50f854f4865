package csvfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/jmdelacruz/lotlocate/internal/core/domain"
)

// Repository reads survey reference monuments from a CSV file on disk.
// The file is read fresh on every List call; callers are expected to
// sit behind the reference point cache.
type Repository struct {
	path string
}

func NewRepository(path string) *Repository {
	return &Repository{path: path}
}

// List loads, cleans and sorts all reference points from the CSV file.
func (r *Repository) List(ctx context.Context) ([]domain.ReferencePoint, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("open reference CSV %s: %w", r.path, err)
	}
	defer f.Close()

	pts, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("parse reference CSV %s: %w", r.path, err)
	}
	return pts, nil
}

// Parse reads reference points from CSV data. The header row must
// contain LOCATION, POINT_OF_REFERENCE, EASTINGS and NORTHINGS columns
// (any order, extra columns ignored). Rows with blank or spreadsheet
// error values ("#REF!") in any required column are skipped, as are
// rows whose coordinates fail to parse. Duplicate display names keep
// the first occurrence; the result is sorted by display name.
func Parse(r io.Reader) ([]domain.ReferencePoint, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header row: %w", err)
	}
	// A UTF-8 BOM glues itself onto the first column name.
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\uFEFF")
	}

	idx := map[string]int{}
	for i, name := range header {
		idx[strings.ToUpper(strings.TrimSpace(name))] = i
	}
	for _, required := range []string{"LOCATION", "POINT_OF_REFERENCE", "EASTINGS", "NORTHINGS"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("missing required column %s", required)
		}
	}

	seen := map[string]bool{}
	var pts []domain.ReferencePoint

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}

		loc := field(rec, idx["LOCATION"])
		por := field(rec, idx["POINT_OF_REFERENCE"])
		eastStr := field(rec, idx["EASTINGS"])
		northStr := field(rec, idx["NORTHINGS"])

		if !usable(loc) || !usable(por) || !usable(eastStr) || !usable(northStr) {
			continue
		}

		east, err := parseCoord(eastStr)
		if err != nil {
			continue
		}
		north, err := parseCoord(northStr)
		if err != nil {
			continue
		}

		name := loc + " - " + por
		if seen[name] {
			continue
		}
		seen[name] = true

		pts = append(pts, domain.ReferencePoint{
			DisplayName: name,
			Easting:     east,
			Northing:    north,
		})
	}

	sort.Slice(pts, func(i, j int) bool {
		return pts[i].DisplayName < pts[j].DisplayName
	})

	return pts, nil
}

func field(rec []string, i int) string {
	if i >= len(rec) {
		return ""
	}
	return strings.TrimSpace(rec[i])
}

func usable(v string) bool {
	return v != "" && v != "#REF!"
}

// parseCoord accepts coordinates with thousands separators ("543,210.50").
func parseCoord(v string) (float64, error) {
	return strconv.ParseFloat(strings.ReplaceAll(v, ",", ""), 64)
}
