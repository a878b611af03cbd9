package board

// Zobrist keys for position hashing.
// Boards have variable size, so keys are derived on demand from the cell
// index with a fixed-seed generator instead of being tabulated.

const zobristSeed = 0x98F107A2BEEF1234

// Simple PRNG for reproducible Zobrist keys
type prng struct {
	state uint64
}

func newPRNG(seed uint64) *prng {
	if seed == 0 {
		seed = zobristSeed
	}
	return &prng{state: seed}
}

// xorshift64* algorithm
func (p *prng) next() uint64 {
	p.state ^= p.state >> 12
	p.state ^= p.state << 25
	p.state ^= p.state >> 27
	return p.state * 0x2545F4914F6CDD1D
}

// mix64 is the splitmix64 finalizer; it spreads a small integer over all
// 64 bits before the xorshift step.
func mix64(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xBF58476D1CE4E5B9
	z = (z ^ (z >> 27)) * 0x94D049BB133111EB
	return z ^ (z >> 31)
}

// zobristCell returns the key for side s occupying cell index idx.
func zobristCell(s Side, idx int) uint64 {
	rng := newPRNG(mix64(zobristSeed ^ uint64(idx)<<2 ^ uint64(s)))
	return rng.next()
}

// baseHash seeds the hash of an empty board so that boards of different
// geometry never share keys.
func baseHash(width, height, k int, gravity bool) uint64 {
	g := uint64(0)
	if gravity {
		g = 1
	}
	rng := newPRNG(mix64(uint64(width)<<40 ^ uint64(height)<<20 ^ uint64(k)<<1 ^ g))
	return rng.next()
}

// ZobristSide returns the key mixed into cache lookups made on behalf of s.
func ZobristSide(s Side) uint64 {
	return newPRNG(mix64(zobristSeed ^ 0xA5A5A5A5 ^ uint64(s))).next()
}

// ComputeHash recomputes the hash of a grid from scratch.
func (g *Grid) ComputeHash() uint64 {
	h := baseHash(g.width, g.height, g.k, g.gravity)
	for idx, c := range g.cells {
		if c != Empty {
			h ^= zobristCell(c.Side(), idx)
		}
	}
	return h
}
