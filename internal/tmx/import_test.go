package tmx

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/toycar/internal/model"
)

const prizeMap = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" tiledversion="1.10.2" orientation="orthogonal" renderorder="right-down" width="10" height="10" tilewidth="16" tileheight="16" infinite="0" nextlayerid="3" nextobjectid="4">
 <properties>
  <property name="level" type="int" value="2"/>
 </properties>
 <objectgroup id="1" name="Decor">
  <object id="9" name="tree" x="0" y="0"/>
 </objectgroup>
 <objectgroup id="2" name="Prizes">
  <object id="1" name="coin" type="prize" x="32" y="48"/>
  <object id="2" x="160" y="16">
   <properties>
    <property name="height" type="float" value="3"/>
    <property name="model" value="gem"/>
   </properties>
  </object>
  <object id="3" name="trophy" x="-16" y="0">
   <properties>
    <property name="role" value="finalPrize"/>
   </properties>
  </object>
 </objectgroup>
</map>
`

const noPrizesMap = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="4" height="4" tilewidth="16" tileheight="16" infinite="0">
 <objectgroup id="1" name="Decor"/>
</map>
`

const emptyPrizesMap = `<?xml version="1.0" encoding="UTF-8"?>
<map version="1.10" orientation="orthogonal" renderorder="right-down" width="4" height="4" tilewidth="16" tileheight="16" infinite="0">
 <objectgroup id="1" name="Prizes"/>
</map>
`

func mapFS(files map[string]string) fstest.MapFS {
	fsys := fstest.MapFS{}
	for name, data := range files {
		fsys[name] = &fstest.MapFile{Data: []byte(data)}
	}
	return fsys
}

func TestLoadPlacements(t *testing.T) {
	fsys := mapFS(map[string]string{"maps/a.tmx": prizeMap})

	recs, err := LoadPlacements(fsys, "maps/a.tmx")
	require.NoError(t, err)
	require.Len(t, recs, 3)

	assert.Equal(t, model.NewVec3(2, model.DefaultY, 3), recs[0].Position())
	assert.Equal(t, "coin", recs[0].Name)
	assert.Equal(t, "prize", recs[0].Type)
	assert.Empty(t, recs[0].Role)

	assert.Equal(t, model.NewVec3(10, 3, 1), recs[1].Position())
	assert.Equal(t, "gem", recs[1].Model)

	assert.Equal(t, "finalPrize", recs[2].Role)
	assert.Equal(t, model.NewVec3(-1, model.DefaultY, 0), recs[2].Position())
}

func TestLoadPlacements_NoPrizeLayer(t *testing.T) {
	fsys := mapFS(map[string]string{"a.tmx": noPrizesMap})

	_, err := LoadPlacements(fsys, "a.tmx")
	assert.ErrorIs(t, err, ErrNoPrizeLayer)
}

func TestLoadPlacements_EmptyPrizeLayer(t *testing.T) {
	fsys := mapFS(map[string]string{"a.tmx": emptyPrizesMap})

	recs, err := LoadPlacements(fsys, "a.tmx")
	require.NoError(t, err)
	assert.Empty(t, recs)
}

func TestLoadPlacements_MissingFile(t *testing.T) {
	_, err := LoadPlacements(fstest.MapFS{}, "nope.tmx")
	assert.Error(t, err)
}

func TestLoadDir(t *testing.T) {
	fsys := mapFS(map[string]string{
		"maps/level5.tmx":  emptyPrizesMap,
		"maps/custom.tmx":  prizeMap, // level from map property
		"maps/readme.txt":  "not a map",
		"other/level1.tmx": emptyPrizesMap,
	})

	levels, err := LoadDir(fsys, "maps")
	require.NoError(t, err)
	require.Len(t, levels, 2)

	assert.Equal(t, 2, levels[0].Number)
	assert.Equal(t, "maps/custom.tmx", levels[0].Path)
	assert.Len(t, levels[0].Records, 3)

	assert.Equal(t, 5, levels[1].Number)
	assert.Empty(t, levels[1].Records)
}

func TestLoadDir_Errors(t *testing.T) {
	t.Run("empty dir", func(t *testing.T) {
		_, err := LoadDir(fstest.MapFS{}, "maps")
		assert.Error(t, err)
	})

	t.Run("duplicate level", func(t *testing.T) {
		fsys := mapFS(map[string]string{
			"maps/level2.tmx": emptyPrizesMap,
			"maps/x.tmx":      prizeMap,
		})
		_, err := LoadDir(fsys, "maps")
		assert.ErrorContains(t, err, "level 2")
	})

	t.Run("no level number", func(t *testing.T) {
		fsys := mapFS(map[string]string{"maps/intro.tmx": emptyPrizesMap})
		_, err := LoadDir(fsys, "maps")
		assert.ErrorContains(t, err, "level number")
	})
}

func TestNumberFromName(t *testing.T) {
	assert.Equal(t, 3, numberFromName("maps/level3.tmx"))
	assert.Equal(t, 12, numberFromName("12.tmx"))
	assert.Equal(t, 0, numberFromName("intro.tmx"))
}
