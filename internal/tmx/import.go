// Package tmx imports prize placements from Tiled maps. Objects of the
// "Prizes" object group become placement records in file order; one map tile
// is one world unit and the map's Y axis is the world's Z axis.
package tmx

import (
	"errors"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strconv"
	"strings"

	"github.com/lafriks/go-tiled"

	"github.com/udisondev/toycar/internal/model"
)

// PrizeLayer is the object group read by the importer.
const PrizeLayer = "Prizes"

// ErrNoPrizeLayer is returned for maps without a Prizes object group.
var ErrNoPrizeLayer = errors.New("map has no " + PrizeLayer + " object group")

// Level is one imported map.
type Level struct {
	Number  int
	Path    string
	Records []model.PlacementRecord
}

// LoadPlacements reads the Prizes group of the map at tmxPath in fsys.
func LoadPlacements(fsys fs.FS, tmxPath string) ([]model.PlacementRecord, error) {
	m, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return nil, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}
	return placements(m, tmxPath)
}

// LoadLevel reads a map and its level number: the map's "level" property,
// otherwise the digits of the file name (level3.tmx is level 3).
func LoadLevel(fsys fs.FS, tmxPath string) (Level, error) {
	m, err := tiled.LoadFile(tmxPath, tiled.WithFileSystem(fsys))
	if err != nil {
		return Level{}, fmt.Errorf("load TMX %s: %w", tmxPath, err)
	}

	n := m.Properties.GetInt("level")
	if n == 0 {
		n = numberFromName(tmxPath)
	}
	if n < 1 {
		return Level{}, fmt.Errorf("TMX %s: cannot determine level number", tmxPath)
	}

	recs, err := placements(m, tmxPath)
	if err != nil {
		return Level{}, err
	}
	return Level{Number: n, Path: tmxPath, Records: recs}, nil
}

// LoadDir imports every .tmx file in dir, ordered by level number.
func LoadDir(fsys fs.FS, dir string) ([]Level, error) {
	pattern := path.Join(dir, "*.tmx")
	matches, err := fs.Glob(fsys, pattern)
	if err != nil {
		return nil, fmt.Errorf("glob %s: %w", pattern, err)
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no .tmx files found in %s", dir)
	}

	levels := make([]Level, 0, len(matches))
	seen := make(map[int]string, len(matches))
	for _, p := range matches {
		lvl, err := LoadLevel(fsys, p)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[lvl.Number]; ok {
			return nil, fmt.Errorf("level %d defined by both %s and %s", lvl.Number, prev, p)
		}
		seen[lvl.Number] = p
		levels = append(levels, lvl)
	}

	sort.Slice(levels, func(i, j int) bool { return levels[i].Number < levels[j].Number })
	return levels, nil
}

func placements(m *tiled.Map, tmxPath string) ([]model.PlacementRecord, error) {
	tileW, tileH := float64(m.TileWidth), float64(m.TileHeight)
	if tileW == 0 {
		tileW = 1
	}
	if tileH == 0 {
		tileH = 1
	}

	for _, og := range m.ObjectGroups {
		if og.Name != PrizeLayer {
			continue
		}

		recs := make([]model.PlacementRecord, 0, len(og.Objects))
		for _, o := range og.Objects {
			x, z := o.X/tileW, o.Y/tileH
			rec := model.PlacementRecord{
				X:     &x,
				Z:     &z,
				Y:     floatProp(o.Properties, "height"),
				Role:  o.Properties.GetString("role"),
				Name:  o.Name,
				Model: o.Properties.GetString("model"),
				Type:  o.Class,
			}
			if rec.Type == "" {
				rec.Type = o.Type //nolint:staticcheck // TMX uses type= attribute
			}
			recs = append(recs, rec)
		}
		return recs, nil
	}

	return nil, fmt.Errorf("TMX %s: %w", tmxPath, ErrNoPrizeLayer)
}

func floatProp(props tiled.Properties, name string) *float64 {
	s := props.GetString(name)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return nil
	}
	return &v
}

func numberFromName(p string) int {
	stem := strings.TrimSuffix(path.Base(p), path.Ext(p))
	digits := strings.TrimLeftFunc(stem, func(r rune) bool { return r < '0' || r > '9' })
	n, err := strconv.Atoi(digits)
	if err != nil {
		return 0
	}
	return n
}
