package main

import (
	"fmt"
	"os"

	"github.com/c2h5oh/datasize"

	"github.com/Faultbox/meshbuild/internal/diag"
	"github.com/Faultbox/meshbuild/internal/gltfio"
	"github.com/Faultbox/meshbuild/internal/pipeline"
	"github.com/Faultbox/meshbuild/internal/skeletal"
)

// Per-vertex stream sizes in bytes.
const (
	positionSize = 12
	tangentSize  = 8
	tangent16    = 16
	uvSize       = 8
	colorSize    = 4
	skinSize     = 2*skeletal.MaxTotalInfluences + skeletal.MaxTotalInfluences
)

func size(n int) string {
	return datasize.ByteSize(n).HumanReadable()
}

// vertexBytes is the GPU footprint of one static vertex.
func vertexBytes(numUVs int, highPrecision bool) int {
	t := tangentSize
	if highPrecision {
		t = tangent16
	}
	return positionSize + t + numUVs*uvSize + colorSize
}

func indexBytes(n int, use32 bool) int {
	if use32 {
		return 4 * n
	}
	return 2 * n
}

func printLOD(name string, lod *pipeline.LOD, highPrecision bool) {
	fmt.Printf("Mesh: %s\n", name)
	fmt.Printf("  Vertices:  %d (%s)\n", len(lod.Vertices), size(len(lod.Vertices)*vertexBytes(lod.NumUVs, highPrecision)))
	fmt.Printf("  Triangles: %d in %d sections\n", len(lod.Indices)/3, len(lod.Sections))
	fmt.Printf("  Indices:   %d (%s, 32-bit: %v)\n", len(lod.Indices), size(indexBytes(len(lod.Indices), lod.Use32Bit)), lod.Use32Bit)
	fmt.Printf("  ACMR:      %.3f\n", lod.Stats.ACMR)
	fmt.Printf("  Dropped:   %d degenerate, %d collapsed\n", lod.Stats.NumDegenerate, lod.Stats.NumRejected)
	buffers := []struct {
		name    string
		indices []uint32
	}{
		{"depth-only", lod.DepthOnly},
		{"reversed", lod.Reversed},
		{"reversed depth-only", lod.ReversedDepthOnly},
		{"adjacency", lod.Adjacency},
		{"wireframe", lod.Wireframe},
	}
	for _, b := range buffers {
		if b.indices == nil {
			continue
		}
		fmt.Printf("  %-20s %d indices (%s)\n", b.name+":", len(b.indices), size(indexBytes(len(b.indices), lod.Use32Bit)))
	}
	fmt.Printf("  Bounds:    %v - %v, radius %.3f\n", lod.Bounds.Min, lod.Bounds.Max, lod.Bounds.SphereRadius)
	fmt.Printf("  Elapsed:   %s\n\n", lod.Stats.Elapsed)
}

func printModel(name string, model *skeletal.Model, numUVs int) {
	fmt.Printf("Skinned mesh: %s\n", name)
	fmt.Printf("  Vertices:     %d (%s)\n", len(model.Vertices),
		size(len(model.Vertices)*(vertexBytes(numUVs, false)+skinSize)))
	fmt.Printf("  Triangles:    %d\n", len(model.Indices)/3)
	fmt.Printf("  Active bones: %d\n", len(model.ActiveBones))
	fmt.Printf("  Sections:     %d\n", len(model.Sections))
	for i, s := range model.Sections {
		fmt.Printf("    [%d] material %d: %d vertices, %d triangles, %d bones, %d influences\n",
			i, s.Material, s.NumVertices, s.NumTriangles, len(s.BoneMap), s.MaxBoneInfluences)
	}
	fmt.Println()
}

func printMesh(m gltfio.Mesh) {
	d := m.Desc
	fmt.Printf("Mesh: %s\n", m.Name)
	fmt.Printf("  Points:    %d\n", len(d.Positions))
	fmt.Printf("  Triangles: %d\n", d.NumTriangles())
	fmt.Printf("  UVs:       %d\n", d.NumUVs)
	fmt.Printf("  Colors:    %v\n", d.HasColors)
	if m.Skin != nil {
		fmt.Printf("  Bones:     %d\n", m.Skin.NumBones)
		fmt.Printf("  Influences: %d\n", len(m.Skin.Influences))
	}
	fmt.Println()
}

func printDiagnostics(diags *diag.List) {
	items := diags.Items()
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(os.Stderr, "%d diagnostics (%d warnings):\n", len(items), diags.Warnings())
	for _, d := range items {
		fmt.Fprintf(os.Stderr, "  %s\n", d)
	}
}
