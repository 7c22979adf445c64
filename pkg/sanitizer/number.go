package sanitizer

const (
	MinCapacity = 1

	MaxCapacity = 1000
)

// NormalizeCapacity clamps a shared-equipment capacity into its valid range.
func NormalizeCapacity(capacity int) int {
	if capacity < MinCapacity {
		return MinCapacity
	}
	if capacity > MaxCapacity {
		return MaxCapacity
	}
	return capacity
}
