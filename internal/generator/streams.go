package generator

import "math/rand/v2"

// maxSeed bounds every derived seed, matching the seed range accepted by config.
const maxSeed = 1 << 30

// streamSalt is the fixed second word of every PCG source.
const streamSalt = 0x6b6970706c65

// Stream is an explicitly owned, seeded source of random decisions.
// A Stream is not safe for concurrent use.
type Stream struct {
	seed int64
	r    *rand.Rand
}

// NewStream creates a stream whose sequence is fully determined by seed.
func NewStream(seed int64) *Stream {
	return &Stream{
		seed: seed,
		r:    rand.New(rand.NewPCG(uint64(seed), streamSalt)),
	}
}

// InitialSeed returns the seed the stream was created with.
func (s *Stream) InitialSeed() int64 {
	return s.seed
}

// IntRange returns a uniform integer in [lo, hi]. It panics if hi < lo.
func (s *Stream) IntRange(lo, hi int) int {
	return lo + s.r.IntN(hi-lo+1)
}

// Pick returns a uniform index in [0, n). It panics if n <= 0.
func (s *Stream) Pick(n int) int {
	return s.r.IntN(n)
}

// Percent returns a uniform integer in [1, 100], used for activation gates.
func (s *Stream) Percent() int {
	return s.IntRange(1, 100)
}

// Shuffle permutes n elements using swap.
func (s *Stream) Shuffle(n int, swap func(i, j int)) {
	s.r.Shuffle(n, swap)
}

// Seed draws a seed for a child stream.
func (s *Stream) Seed() int64 {
	return int64(s.IntRange(0, maxSeed))
}

// StreamSet holds the independent streams of one generation run.
//
// Root derives the other three and then draws the run's target module count.
// Mutations drives category, rule and track selection. Names drives label
// generation. Tracks seeds each new track's private stream.
type StreamSet struct {
	Root      *Stream
	Mutations *Stream
	Names     *Stream
	Tracks    *Stream
}

// NewStreamSet derives the named streams from one root seed.
func NewStreamSet(seed int64) *StreamSet {
	root := NewStream(seed)
	return &StreamSet{
		Root:      root,
		Mutations: NewStream(root.Seed()),
		Names:     NewStream(root.Seed()),
		Tracks:    NewStream(root.Seed()),
	}
}
