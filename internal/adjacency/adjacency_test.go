package adjacency

import (
	"slices"
	"testing"

	"github.com/Faultbox/meshbuild/pkg/math"
)

func TestPNAEN(t *testing.T) {
	tests := []struct {
		name      string
		positions []math.Vec3
		indices   []uint32
		want      []uint32
	}{
		{
			name:      "welded quad",
			positions: []math.Vec3{{X: 0}, {X: 1}, {X: 1, Y: 1}, {Y: 1}},
			indices:   []uint32{0, 1, 2, 0, 2, 3},
			want: []uint32{
				0, 1, 2, 0, 1, 1, 2, 0, 2, 0, 1, 2,
				0, 2, 3, 2, 0, 2, 3, 3, 0, 0, 2, 3,
			},
		},
		{
			name: "seam quad",
			positions: []math.Vec3{
				{X: 0}, {X: 1}, {X: 1, Y: 1},
				{X: 0}, {X: 1, Y: 1}, {Y: 1},
			},
			indices: []uint32{0, 1, 2, 3, 4, 5},
			want: []uint32{
				0, 1, 2, 0, 1, 1, 2, 3, 4, 0, 1, 2,
				3, 4, 5, 2, 0, 4, 5, 5, 3, 0, 2, 5,
			},
		},
		{
			name: "single triangle",
			positions: []math.Vec3{
				{X: 0}, {X: 1}, {Y: 1},
			},
			indices: []uint32{0, 1, 2},
			want:    []uint32{0, 1, 2, 0, 1, 1, 2, 2, 0, 0, 1, 2},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PNAEN{}.Build(tt.positions, tt.indices)
			if len(got) != len(tt.indices)/3*IndicesPerTriangle {
				t.Fatalf("expected %d indices, got %d", len(tt.indices)/3*IndicesPerTriangle, len(got))
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Build =\n%v\nwant\n%v", got, tt.want)
			}
		})
	}
}
