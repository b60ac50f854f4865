package crs

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ctessum/geom/proj"
	"github.com/jellydator/ttlcache/v3"

	"github.com/jmdelacruz/lotlocate/internal/core/ports"
	"github.com/jmdelacruz/lotlocate/internal/pkg/metrics"
)

// proj4Defs maps the EPSG codes this service accepts to their proj4
// definitions. The Philippine Transverse Mercator zones (Luzon datum,
// EPSG 25391-25395) carry nearly all cadastral survey data in the
// country; the PRS92 zones (3121-3125) are the modern equivalents.
var proj4Defs = map[int]string{
	// Luzon 1911 PTM zones I-V
	25391: "+proj=tmerc +lat_0=0 +lon_0=117 +k=0.99995 +x_0=500000 +y_0=0 +ellps=clrk66 +units=m +no_defs",
	25392: "+proj=tmerc +lat_0=0 +lon_0=119 +k=0.99995 +x_0=500000 +y_0=0 +ellps=clrk66 +units=m +no_defs",
	25393: "+proj=tmerc +lat_0=0 +lon_0=121 +k=0.99995 +x_0=500000 +y_0=0 +ellps=clrk66 +units=m +no_defs",
	25394: "+proj=tmerc +lat_0=0 +lon_0=123 +k=0.99995 +x_0=500000 +y_0=0 +ellps=clrk66 +units=m +no_defs",
	25395: "+proj=tmerc +lat_0=0 +lon_0=125 +k=0.99995 +x_0=500000 +y_0=0 +ellps=clrk66 +units=m +no_defs",
	// PRS92 PTM zones I-V
	3121: "+proj=tmerc +lat_0=0 +lon_0=117 +k=0.99995 +x_0=500000 +y_0=0 +ellps=clrk66 +units=m +no_defs",
	3122: "+proj=tmerc +lat_0=0 +lon_0=119 +k=0.99995 +x_0=500000 +y_0=0 +ellps=clrk66 +units=m +no_defs",
	3123: "+proj=tmerc +lat_0=0 +lon_0=121 +k=0.99995 +x_0=500000 +y_0=0 +ellps=clrk66 +units=m +no_defs",
	3124: "+proj=tmerc +lat_0=0 +lon_0=123 +k=0.99995 +x_0=500000 +y_0=0 +ellps=clrk66 +units=m +no_defs",
	3125: "+proj=tmerc +lat_0=0 +lon_0=125 +k=0.99995 +x_0=500000 +y_0=0 +ellps=clrk66 +units=m +no_defs",
	// UTM zone 51N, covers most of the archipelago
	32651: "+proj=utm +zone=51 +datum=WGS84 +units=m +no_defs",
	// WGS 84 geographic
	4326: "+proj=longlat +datum=WGS84 +no_defs",
}

const wgs84Def = "+proj=longlat +datum=WGS84 +no_defs"

type transformerPair struct {
	forward ports.Transform
	inverse ports.Transform
}

// Provider builds coordinate transformer pairs between a projected CRS
// and WGS 84 geographic coordinates. Pairs are memoised: the proj4
// parse and transform construction only happen once per EPSG code.
type Provider struct {
	cache *ttlcache.Cache[int, transformerPair]
	wgs84 *proj.SR
}

// NewProvider creates a Provider. It fails only if the WGS 84
// definition itself cannot be parsed, which would mean a broken build.
func NewProvider() (*Provider, error) {
	wgs84, err := proj.Parse(wgs84Def)
	if err != nil {
		return nil, fmt.Errorf("parse WGS 84 definition: %w", err)
	}

	cache := ttlcache.New[int, transformerPair](
		ttlcache.WithTTL[int, transformerPair](time.Hour),
	)
	go cache.Start()

	return &Provider{cache: cache, wgs84: wgs84}, nil
}

// SupportedEPSG reports whether the given code has a registered
// projection definition.
func SupportedEPSG(code int) bool {
	_, ok := proj4Defs[code]
	return ok
}

// GetTransformers returns forward (projected -> lon/lat) and inverse
// (lon/lat -> projected) transforms for the given EPSG code string.
func (p *Provider) GetTransformers(targetEPSG string) (ports.Transform, ports.Transform, error) {
	code, err := strconv.Atoi(strings.TrimSpace(targetEPSG))
	if err != nil {
		return nil, nil, fmt.Errorf("EPSG code %q is not a number", targetEPSG)
	}

	if item := p.cache.Get(code); item != nil {
		metrics.TransformerCacheHits.Inc()
		pair := item.Value()
		return pair.forward, pair.inverse, nil
	}
	metrics.TransformerCacheMisses.Inc()

	def, ok := proj4Defs[code]
	if !ok {
		return nil, nil, fmt.Errorf("EPSG:%d has no registered projection definition", code)
	}

	src, err := proj.Parse(def)
	if err != nil {
		return nil, nil, fmt.Errorf("parse projection for EPSG:%d: %w", code, err)
	}

	fwd, err := src.NewTransform(p.wgs84)
	if err != nil {
		return nil, nil, fmt.Errorf("build forward transform for EPSG:%d: %w", code, err)
	}
	inv, err := p.wgs84.NewTransform(src)
	if err != nil {
		return nil, nil, fmt.Errorf("build inverse transform for EPSG:%d: %w", code, err)
	}

	pair := transformerPair{
		forward: ports.Transform(fwd),
		inverse: ports.Transform(inv),
	}
	p.cache.Set(code, pair, ttlcache.DefaultTTL)

	return pair.forward, pair.inverse, nil
}
