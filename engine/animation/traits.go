package animation

// Traits describes how values of T are created, recycled, copied, and blended.
//
// Value types implement Create and Recycle as no-ops. Reference types (poses, buffers) use
// them to take storage from and return it to a pool. Blending is a fold:
//
//	BeginBlend(&acc)
//	for each contribution: BlendNext(&acc, &value, weight)
//	EndBlend(&acc)
//
// where the weights of one fold sum to 1.
type Traits[T any] interface {
	// Create prepares value to hold data shaped like reference.
	//
	// Parameters:
	//   - reference: an existing value describing the shape (e.g. bone count)
	//   - value: the value to prepare
	Create(reference, value *T)

	// Recycle releases storage taken by Create and resets value.
	//
	// Parameters:
	//   - value: the value to release
	Recycle(value *T)

	// Copy copies source into target. Both must have been created with the same shape.
	//
	// Parameters:
	//   - source: the value to read
	//   - target: the value to write
	Copy(source, target *T)

	// BeginBlend resets the accumulator.
	//
	// Parameters:
	//   - value: the accumulator
	BeginBlend(value *T)

	// BlendNext adds a weighted contribution to the accumulator.
	//
	// Parameters:
	//   - value: the accumulator
	//   - next: the contribution
	//   - normalizedWeight: the weight of the contribution, in [0, 1]
	BlendNext(value, next *T, normalizedWeight float32)

	// EndBlend finalizes the accumulator (for example re-normalizes rotations).
	//
	// Parameters:
	//   - value: the accumulator
	EndBlend(value *T)
}
