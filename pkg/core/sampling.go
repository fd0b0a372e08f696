package core

import (
	"math/rand"
)

// NewRowRandom returns a generator for a single render row.
// The stream depends only on (seed, row), so parallel rows never share state
// and a row renders identically regardless of which worker picks it up.
func NewRowRandom(seed int64, row int) *rand.Rand {
	// splitmix64 finalizer spreads neighbouring rows across the seed space
	z := uint64(seed) + uint64(row+1)*0x9E3779B97F4A7C15
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	z ^= z >> 31
	return rand.New(rand.NewSource(int64(z)))
}

// RandomInUnitSphere generates a random point inside a unit sphere
func RandomInUnitSphere(random *rand.Rand) Vec3 {
	for {
		// Generate random point in [-1,1]³ cube
		p := Vec3{
			X: 2*random.Float32() - 1,
			Y: 2*random.Float32() - 1,
			Z: 2*random.Float32() - 1,
		}
		// Accept if strictly inside unit sphere
		if p.LengthSquared() < 1.0 {
			return p
		}
	}
}

// RandomInUnitDisk generates a random point in a unit disk (for depth of field)
func RandomInUnitDisk(random *rand.Rand) Vec3 {
	for {
		// Generate random point in [-1,1] x [-1,1] square
		p := NewVec3(2*random.Float32()-1, 2*random.Float32()-1, 0)
		// Accept if strictly inside unit disk
		if p.Dot(p) < 1.0 {
			return p
		}
	}
}
