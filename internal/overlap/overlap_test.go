package overlap

import (
	"errors"
	"testing"

	"github.com/Faultbox/meshbuild/internal/meshtest"
	"github.com/Faultbox/meshbuild/pkg/math"
	"github.com/Faultbox/meshbuild/pkg/mesh"
)

func TestBuildQuad(t *testing.T) {
	d := meshtest.UnitQuad()
	table, err := FromDescription(d, math.ThreshPointsAreSame)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}

	// Corners 0/3 and 2/4 share positions
	tests := []struct {
		corner int
		want   []int32
	}{
		{0, []int32{3}},
		{1, nil},
		{2, []int32{4}},
		{3, []int32{0}},
		{4, []int32{2}},
		{5, nil},
	}
	for _, tt := range tests {
		got := table.Find(tt.corner)
		if len(got) != len(tt.want) {
			t.Errorf("Find(%d) = %v, want %v", tt.corner, got, tt.want)
			continue
		}
		for i := range got {
			if got[i] != tt.want[i] {
				t.Errorf("Find(%d) = %v, want %v", tt.corner, got, tt.want)
			}
		}
	}
	if table.Pairs() != 2 {
		t.Errorf("Pairs() = %d, want 2", table.Pairs())
	}
}

func TestSymmetry(t *testing.T) {
	d := meshtest.Cube(true)
	for _, tol := range []float32{0, math.ThreshPointsAreSame, 0.5, 2} {
		table, err := FromDescription(d, tol)
		if err != nil {
			t.Fatalf("Build failed: %v", err)
		}
		for a := 0; a < table.Len(); a++ {
			for _, b := range table.Find(a) {
				if !table.Overlaps(int(b), a) {
					t.Errorf("tolerance %v: %d overlaps %d but not the reverse", tol, a, b)
				}
				if int(b) == a {
					t.Errorf("tolerance %v: corner %d overlaps itself", tol, a)
				}
			}
		}
	}
}

func TestCubeCornerValence(t *testing.T) {
	table, err := FromDescription(meshtest.Cube(true), 0)
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	// 36 corners over 8 positions; each position is referenced by 3 sides
	// and each side touches a corner once or twice.
	total := 0
	for c := 0; c < table.Len(); c++ {
		if len(table.Find(c)) == 0 {
			t.Errorf("corner %d has no overlaps", c)
		}
		total += len(table.Find(c))
	}
	if total != 2*table.Pairs() {
		t.Errorf("sum of overlaps %d != 2 * pairs %d", total, table.Pairs())
	}
}

func TestTolerance(t *testing.T) {
	points := []math.Vec3{{X: 0}, {X: 0.00001}, {X: 0.001}}

	exact, _ := BuildPoints(points, 0)
	if exact.Pairs() != 0 {
		t.Errorf("exact table has %d pairs, want 0", exact.Pairs())
	}

	near, _ := BuildPoints(points, math.ThreshPointsAreSame)
	if !near.Overlaps(0, 1) || near.Overlaps(0, 2) {
		t.Errorf("unexpected overlaps with threshold: %v", near.overlaps)
	}
}

func TestSweepPrunesOnZ(t *testing.T) {
	points := []math.Vec3{{Z: 0}, {Z: 5}, {Z: 0.000001}}
	var pairs [][2]int
	Sweep(points, 0.001, 0.001, func(a, b int) {
		pairs = append(pairs, [2]int{a, b})
	})
	if len(pairs) != 1 || pairs[0] != [2]int{0, 2} {
		t.Errorf("Sweep pairs = %v, want [[0 2]]", pairs)
	}
}

func TestBuildErrors(t *testing.T) {
	_, err := Build([]math.Vec3{{}}, []mesh.Wedge{{PointIndex: 1}}, 0)
	if !errors.Is(err, ErrPointIndex) {
		t.Errorf("expected ErrPointIndex, got %v", err)
	}
	_, err = BuildPoints(nil, -1)
	if !errors.Is(err, ErrTolerance) {
		t.Errorf("expected ErrTolerance, got %v", err)
	}
}
