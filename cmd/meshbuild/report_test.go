package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOutputPath(t *testing.T) {
	tests := []struct {
		args []string
		want string
	}{
		{[]string{"rock.gltf"}, "rock_built.glb"},
		{[]string{"assets/hero.glb"}, "assets/hero_built.glb"},
		{[]string{"rock.gltf", "out.glb"}, "out.glb"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, outputPath(tt.args))
	}
}

func TestFootprint(t *testing.T) {
	assert.Equal(t, 32, vertexBytes(1, false))
	assert.Equal(t, 48, vertexBytes(2, true))
	assert.Equal(t, 12, indexBytes(6, false))
	assert.Equal(t, 24, indexBytes(6, true))
	assert.Equal(t, "2.0 KB", size(2048))
}
