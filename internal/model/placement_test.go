package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlacementRecord_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Vec3
	}{
		{name: "empty object defaults", input: `{}`, want: Vec3{X: 0, Y: 1.5, Z: 0}},
		{name: "lowercase", input: `{"x":1,"y":2,"z":3}`, want: Vec3{X: 1, Y: 2, Z: 3}},
		{name: "uppercase", input: `{"X":4,"Y":5,"Z":6}`, want: Vec3{X: 4, Y: 5, Z: 6}},
		{name: "lowercase wins", input: `{"x":1,"X":9}`, want: Vec3{X: 1, Y: 1.5, Z: 0}},
		{name: "null lowercase falls back to uppercase", input: `{"x":null,"X":9}`, want: Vec3{X: 9, Y: 1.5, Z: 0}},
		{name: "explicit zero height kept", input: `{"y":0}`, want: Vec3{X: 0, Y: 0, Z: 0}},
		{name: "mistyped coordinate ignored", input: `{"x":"far","z":-4}`, want: Vec3{X: 0, Y: 1.5, Z: -4}},
		{name: "non-object element", input: `42`, want: Vec3{X: 0, Y: 1.5, Z: 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var r PlacementRecord
			require.NoError(t, json.Unmarshal([]byte(tt.input), &r))
			assert.Equal(t, tt.want, r.Position())
		})
	}
}

func TestPlacementRecord_Hints(t *testing.T) {
	var r PlacementRecord
	require.NoError(t, json.Unmarshal([]byte(`{"name":"coin","model":7,"type":"gem","role":"finalPrize"}`), &r))

	assert.Equal(t, "finalPrize", r.Role)
	assert.Equal(t, []string{"coin", "gem"}, r.ModelHints(), "mistyped model hint must be dropped")
}

func TestPlacementRecord_SliceDecode(t *testing.T) {
	var recs []PlacementRecord
	require.NoError(t, json.Unmarshal([]byte(`[{"x":1},null,{"Z":2}]`), &recs))

	require.Len(t, recs, 3)
	assert.Equal(t, Vec3{X: 1, Y: 1.5, Z: 0}, recs[0].Position())
	assert.Equal(t, Vec3{X: 0, Y: 1.5, Z: 0}, recs[1].Position())
	assert.Equal(t, Vec3{X: 0, Y: 1.5, Z: 2}, recs[2].Position())
}

func TestPlacementRecord_MarshalRoundTrip(t *testing.T) {
	in := At(1, 2, 3).WithRole("default").WithName("coin")

	data, err := json.Marshal(in)
	require.NoError(t, err)
	assert.JSONEq(t, `{"x":1,"y":2,"z":3,"role":"default","name":"coin"}`, string(data))

	var out PlacementRecord
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in.Position(), out.Position())
	assert.Equal(t, in.Role, out.Role)
}

func TestVec3_DistanceSquared(t *testing.T) {
	a := NewVec3(0, 0, 0)
	b := NewVec3(1, 2, 2)

	assert.InDelta(t, 9.0, a.DistanceSquared(b), 1e-9)
	assert.InDelta(t, 9.0, b.DistanceSquared(a), 1e-9)
}
