package gan

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiscriminatorFilters(t *testing.T) {
	spec := DefaultNetworkSpec(28, 28, 1)
	want := map[int]int{1: 64, 2: 128, 3: 256, 4: 512}
	for layer, filters := range want {
		assert.Equal(t, filters, DiscriminatorFilters(spec, layer), "layer %d", layer)
	}
}

func TestGeneratorFilters(t *testing.T) {
	spec := DefaultNetworkSpec(28, 28, 1)
	want := map[int]int{1: 128, 2: 64, 3: 32}
	for layer, filters := range want {
		assert.Equal(t, filters, GeneratorFilters(spec, layer), "layer %d", layer)
	}
}

func TestFilterSchedulesMirror(t *testing.T) {
	spec := DefaultNetworkSpec(28, 28, 1)
	spec.BaseDepth = 48
	for layer := 1; layer <= 4; layer++ {
		assert.Equal(t, spec.BaseDepth<<(layer-1), DiscriminatorFilters(spec, layer))
		assert.Equal(t, (4*spec.BaseDepth)>>layer, GeneratorFilters(spec, layer))
	}
}
