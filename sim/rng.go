package sim

import (
	"hash/fnv"
	"math/rand/v2"
)

// SimulationKey uniquely identifies a reproducible simulation run.
// Two simulations with the same SimulationKey and identical configuration
// MUST produce bit-for-bit identical results.
type SimulationKey int64

// NewSimulationKey creates a SimulationKey from a seed value.
func NewSimulationKey(seed int64) SimulationKey {
	return SimulationKey(seed)
}

// RNG subsystem names. Each subsystem draws from its own stream, so the
// order in which subsystems consume randomness never perturbs another
// subsystem's sequence.
const (
	SubsystemFlights    = "flights"    // synthetic flight generation
	SubsystemPassengers = "passengers" // passenger attribute synthesis
	SubsystemCheckin    = "checkin"    // check-in service draws
	SubsystemScreening  = "screening"  // bag scan duration draws
	SubsystemSecurity   = "security"   // security screening service draws
	SubsystemPassport   = "passport"   // e-gate and booth service draws
	SubsystemBoarding   = "boarding"   // boarding-pass scan draws
	SubsystemPatience   = "patience"   // patience deadline draws
)

// PartitionedRNG provides deterministic, isolated random streams per
// subsystem. Each stream is a PCG seeded with (masterSeed, fnv1a64(name)),
// exposed both as a rand.Source (for distribution samplers) and as a
// *rand.Rand (for direct draws); both views share the one underlying stream.
//
// Thread-safety: NOT thread-safe. Must be called from a single goroutine.
type PartitionedRNG struct {
	key     SimulationKey
	sources map[string]*rand.PCG
	rands   map[string]*rand.Rand
}

// NewPartitionedRNG creates a PartitionedRNG from a SimulationKey.
func NewPartitionedRNG(key SimulationKey) *PartitionedRNG {
	return &PartitionedRNG{
		key:     key,
		sources: make(map[string]*rand.PCG),
		rands:   make(map[string]*rand.Rand),
	}
}

// SourceFor returns the named subsystem's random source. The same name
// always returns the same source instance (cached). Never returns nil.
func (p *PartitionedRNG) SourceFor(name string) rand.Source {
	return p.pcgFor(name)
}

// ForSubsystem returns a *rand.Rand over the named subsystem's source.
// The same name always returns the same instance (cached). Never returns nil.
func (p *PartitionedRNG) ForSubsystem(name string) *rand.Rand {
	if r, ok := p.rands[name]; ok {
		return r
	}
	r := rand.New(p.pcgFor(name))
	p.rands[name] = r
	return r
}

// Key returns the SimulationKey used to create this PartitionedRNG.
func (p *PartitionedRNG) Key() SimulationKey {
	return p.key
}

func (p *PartitionedRNG) pcgFor(name string) *rand.PCG {
	if src, ok := p.sources[name]; ok {
		return src
	}
	src := rand.NewPCG(uint64(p.key), fnv1a64(name))
	p.sources[name] = src
	return src
}

// fnv1a64 computes a 64-bit FNV-1a hash of the input string.
func fnv1a64(s string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(s))
	return h.Sum64()
}
