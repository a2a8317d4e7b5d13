package sim

import (
	"fmt"
	"math/rand/v2"

	"gonum.org/v1/gonum/stat/distuv"
)

// DistSpec describes a distribution family and its parameters. Duration
// parameters are in minutes; samplers convert to ticks and clamp draws at
// zero, since a service or patience duration is never negative.
type DistSpec struct {
	Type   string             `yaml:"type"`
	Params map[string]float64 `yaml:"params"`
}

// DurationSampler draws nonnegative durations in ticks.
type DurationSampler interface {
	Sample() int64
}

// CountSampler draws nonnegative integer counts.
type CountSampler interface {
	Sample() int
}

type deterministicSampler struct {
	ticks int64
}

func (s *deterministicSampler) Sample() int64 {
	return s.ticks
}

type exponentialSampler struct {
	dist distuv.Exponential
}

func (s *exponentialSampler) Sample() int64 {
	return clampTicks(s.dist.Rand())
}

type uniformSampler struct {
	dist distuv.Uniform
}

func (s *uniformSampler) Sample() int64 {
	return clampTicks(s.dist.Rand())
}

type normalSampler struct {
	dist distuv.Normal
}

func (s *normalSampler) Sample() int64 {
	return clampTicks(s.dist.Rand())
}

type gammaSampler struct {
	dist distuv.Gamma
}

func (s *gammaSampler) Sample() int64 {
	return clampTicks(s.dist.Rand())
}

// clampTicks converts a draw in minutes to ticks, flooring at zero.
func clampTicks(minutes float64) int64 {
	if minutes <= 0 {
		return 0
	}
	return MinutesToTicks(minutes)
}

// requireParam checks that all required keys exist in a params map.
func requireParam(params map[string]float64, keys ...string) error {
	for _, k := range keys {
		if _, ok := params[k]; !ok {
			return fmt.Errorf("distribution requires parameter %q", k)
		}
	}
	return nil
}

// NewDurationSampler creates a DurationSampler from a DistSpec, drawing from
// the given source. Parameters are validated here so a bad scenario fails
// before the run starts.
func NewDurationSampler(spec DistSpec, src rand.Source) (DurationSampler, error) {
	switch spec.Type {
	case "deterministic":
		if err := requireParam(spec.Params, "value"); err != nil {
			return nil, err
		}
		v := spec.Params["value"]
		if v < 0 {
			return nil, fmt.Errorf("deterministic value must be nonnegative, got %f", v)
		}
		return &deterministicSampler{ticks: MinutesToTicks(v)}, nil

	case "exponential":
		if err := requireParam(spec.Params, "mean"); err != nil {
			return nil, err
		}
		mean := spec.Params["mean"]
		if mean <= 0 {
			return nil, fmt.Errorf("exponential mean must be positive, got %f", mean)
		}
		return &exponentialSampler{dist: distuv.Exponential{Rate: 1 / mean, Src: src}}, nil

	case "uniform":
		if err := requireParam(spec.Params, "min", "max"); err != nil {
			return nil, err
		}
		lo, hi := spec.Params["min"], spec.Params["max"]
		if lo < 0 || hi < lo {
			return nil, fmt.Errorf("uniform requires 0 <= min <= max, got [%f, %f]", lo, hi)
		}
		return &uniformSampler{dist: distuv.Uniform{Min: lo, Max: hi, Src: src}}, nil

	case "normal":
		if err := requireParam(spec.Params, "mean", "std_dev"); err != nil {
			return nil, err
		}
		sigma := spec.Params["std_dev"]
		if sigma <= 0 {
			return nil, fmt.Errorf("normal std_dev must be positive, got %f", sigma)
		}
		return &normalSampler{dist: distuv.Normal{Mu: spec.Params["mean"], Sigma: sigma, Src: src}}, nil

	case "gamma":
		if err := requireParam(spec.Params, "shape", "scale"); err != nil {
			return nil, err
		}
		shape, scale := spec.Params["shape"], spec.Params["scale"]
		if shape <= 0 || scale <= 0 {
			return nil, fmt.Errorf("gamma shape and scale must be positive, got shape=%f scale=%f", shape, scale)
		}
		return &gammaSampler{dist: distuv.Gamma{Alpha: shape, Beta: 1 / scale, Src: src}}, nil

	default:
		return nil, fmt.Errorf("unknown distribution type %q", spec.Type)
	}
}

// ValidateDistSpec checks a DistSpec without keeping the sampler.
func ValidateDistSpec(spec DistSpec) error {
	_, err := NewDurationSampler(spec, nil)
	return err
}

type poissonCounter struct {
	dist distuv.Poisson
	max  int
}

func (s *poissonCounter) Sample() int {
	n := int(s.dist.Rand())
	if n < 0 {
		n = 0
	}
	if s.max >= 0 && n > s.max {
		n = s.max
	}
	return n
}

// NewPoissonCount creates a Poisson count sampler clamped to [0, max].
// A negative max disables the upper clamp.
func NewPoissonCount(mean float64, max int, src rand.Source) (CountSampler, error) {
	if mean <= 0 {
		return nil, fmt.Errorf("poisson mean must be positive, got %f", mean)
	}
	return &poissonCounter{dist: distuv.Poisson{Lambda: mean, Src: src}, max: max}, nil
}
