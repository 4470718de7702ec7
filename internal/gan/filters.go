package gan

// DiscriminatorFilters returns the convolution filter count for the given
// discriminator layer, counting from 1. The depth doubles at every layer as
// the spatial resolution halves.
func DiscriminatorFilters(spec NetworkSpec, layer int) int {
	return spec.BaseDepth << (layer - 1)
}

// GeneratorFilters returns the transposed-convolution filter count for the
// given generator layer, counting from 1. The depth halves at every layer,
// mirroring the discriminator schedule in reverse from four times its base.
func GeneratorFilters(spec NetworkSpec, layer int) int {
	return spec.GeneratorDepth() >> layer
}
