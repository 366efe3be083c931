package charity

import (
	"errors"
	"math/big"
)

// OneUnit is the number of base units in one whole donation unit. All
// monetary values in the ledger are wei-style integers in this denomination.
var OneUnit = new(big.Int).Exp(big.NewInt(10), big.NewInt(18), nil)

// impactPerUnit is the impact score earned per whole unit donated.
const impactPerUnit = 100

// ImpactScore computes the reputation contribution of a single donation:
// floor(amount * 100 / OneUnit). Integer division truncates, so amounts below
// one hundredth of a unit score zero.
func ImpactScore(amount *big.Int) *big.Int {
	if amount == nil || amount.Sign() <= 0 {
		return big.NewInt(0)
	}
	score := new(big.Int).Mul(amount, big.NewInt(impactPerUnit))
	return score.Div(score, OneUnit)
}

// ErrInvalidThresholds marks tier threshold sets that are not strictly
// ascending and positive.
var ErrInvalidThresholds = errors.New("charity: invalid badge thresholds")

// TierThresholds holds the lifetime-giving cutoffs for the four badge tiers.
// A donor qualifies for a tier once the sum of all their donations across all
// causes meets or exceeds its threshold.
type TierThresholds struct {
	Bronze  *big.Int
	Silver  *big.Int
	Gold    *big.Int
	Diamond *big.Int
}

// DefaultTierThresholds returns the standard cutoffs: 0.1, 0.5, 1 and 10
// whole units.
func DefaultTierThresholds() *TierThresholds {
	tenth := new(big.Int).Div(OneUnit, big.NewInt(10))
	half := new(big.Int).Div(OneUnit, big.NewInt(2))
	return &TierThresholds{
		Bronze:  tenth,
		Silver:  half,
		Gold:    new(big.Int).Set(OneUnit),
		Diamond: new(big.Int).Mul(OneUnit, big.NewInt(10)),
	}
}

// Clone returns a deep copy of the thresholds.
func (t *TierThresholds) Clone() *TierThresholds {
	if t == nil {
		return nil
	}
	clone := &TierThresholds{}
	if t.Bronze != nil {
		clone.Bronze = new(big.Int).Set(t.Bronze)
	}
	if t.Silver != nil {
		clone.Silver = new(big.Int).Set(t.Silver)
	}
	if t.Gold != nil {
		clone.Gold = new(big.Int).Set(t.Gold)
	}
	if t.Diamond != nil {
		clone.Diamond = new(big.Int).Set(t.Diamond)
	}
	return clone
}

// Validate ensures the thresholds are positive and strictly ascending.
func (t *TierThresholds) Validate() error {
	if t == nil {
		return ErrInvalidThresholds
	}
	ordered := []*big.Int{t.Bronze, t.Silver, t.Gold, t.Diamond}
	for i, cutoff := range ordered {
		if cutoff == nil || cutoff.Sign() <= 0 {
			return ErrInvalidThresholds
		}
		if i > 0 && cutoff.Cmp(ordered[i-1]) <= 0 {
			return ErrInvalidThresholds
		}
	}
	return nil
}

func (t *TierThresholds) threshold(tier BadgeTier) *big.Int {
	if t == nil {
		return nil
	}
	switch tier {
	case BadgeTierBronze:
		return t.Bronze
	case BadgeTierSilver:
		return t.Silver
	case BadgeTierGold:
		return t.Gold
	case BadgeTierDiamond:
		return t.Diamond
	default:
		return nil
	}
}

var tiersDescending = []BadgeTier{BadgeTierDiamond, BadgeTierGold, BadgeTierSilver, BadgeTierBronze}

// nextBadge returns the tier to mint for the supplied profile, testing
// thresholds from highest to lowest. At most one tier is returned per
// invocation: a donation that jumps a donor across several thresholds mints
// only the highest qualifying tier; lower tiers are picked up one at a time
// by later donations. BadgeTierUnspecified means no new badge is due.
func nextBadge(profile *DonorProfile, thresholds *TierThresholds) BadgeTier {
	if profile == nil || profile.LifetimeTotal == nil {
		return BadgeTierUnspecified
	}
	for _, tier := range tiersDescending {
		if profile.HasBadge(tier) {
			continue
		}
		cutoff := thresholds.threshold(tier)
		if cutoff == nil {
			continue
		}
		if profile.LifetimeTotal.Cmp(cutoff) >= 0 {
			return tier
		}
	}
	return BadgeTierUnspecified
}
