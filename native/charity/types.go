package charity

import (
	"fmt"
	"math/big"
	"strings"
)

// BadgeTier enumerates the lifetime-giving achievement tiers in ascending
// order. The zero value is reserved so uninitialised badges are detectable.
type BadgeTier uint8

const (
	// BadgeTierUnspecified prevents zero-value badges from being persisted
	// unintentionally.
	BadgeTierUnspecified BadgeTier = iota
	// BadgeTierBronze is the entry tier.
	BadgeTierBronze
	// BadgeTierSilver is the second tier.
	BadgeTierSilver
	// BadgeTierGold is the third tier.
	BadgeTierGold
	// BadgeTierDiamond is the highest tier.
	BadgeTierDiamond
)

// String returns the canonical tier name used in events and tooling.
func (t BadgeTier) String() string {
	switch t {
	case BadgeTierBronze:
		return "bronze"
	case BadgeTierSilver:
		return "silver"
	case BadgeTierGold:
		return "gold"
	case BadgeTierDiamond:
		return "diamond"
	default:
		return "unspecified"
	}
}

// Cause is a fundraising campaign. Name and TargetAmount are immutable after
// creation; CurrentAmount only grows through donations and resets to zero on
// withdrawal. TargetReached is a one-way flag: once set the cause never
// accepts another donation, even after its balance is withdrawn.
type Cause struct {
	ID            [32]byte
	Name          string
	Description   string
	Beneficiary   [20]byte
	TargetAmount  *big.Int
	CurrentAmount *big.Int
	DonorCount    uint64
	Active        bool
	TargetReached bool
	CreatedAt     int64
	Milestones    []*Milestone
}

// Clone returns a deep copy of the cause to avoid callers mutating shared
// state.
func (c *Cause) Clone() *Cause {
	if c == nil {
		return nil
	}
	clone := *c
	if c.TargetAmount != nil {
		clone.TargetAmount = new(big.Int).Set(c.TargetAmount)
	}
	if c.CurrentAmount != nil {
		clone.CurrentAmount = new(big.Int).Set(c.CurrentAmount)
	}
	if len(c.Milestones) > 0 {
		clone.Milestones = make([]*Milestone, len(c.Milestones))
		for i, m := range c.Milestones {
			clone.Milestones[i] = m.Clone()
		}
	}
	return &clone
}

// Milestone is a sub-goal within a cause, completed once cumulative funding
// reaches its target. Completion is a historical fact and never reverts.
type Milestone struct {
	Description  string
	TargetAmount *big.Int
	Completed    bool
	CompletedAt  int64
}

// Clone returns a copy safe for modification.
func (m *Milestone) Clone() *Milestone {
	if m == nil {
		return nil
	}
	clone := *m
	if m.TargetAmount != nil {
		clone.TargetAmount = new(big.Int).Set(m.TargetAmount)
	}
	return &clone
}

// Validate ensures the milestone fields are sane prior to persistence.
func (m *Milestone) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: milestone must not be nil", ErrInvalidName)
	}
	if strings.TrimSpace(m.Description) == "" {
		return fmt.Errorf("%w: description required", ErrInvalidName)
	}
	if m.TargetAmount == nil || m.TargetAmount.Sign() <= 0 {
		return fmt.Errorf("%w: milestone target must be positive", ErrInvalidAmount)
	}
	return nil
}

// Donation is an immutable record appended to a donor's history on every
// accepted donation. CauseName is a denormalized snapshot kept for historical
// display.
type Donation struct {
	CauseID     [32]byte
	CauseName   string
	Donor       [20]byte
	Amount      *big.Int
	ImpactScore *big.Int
	Timestamp   int64
}

// Clone returns a deep copy of the donation record.
func (d *Donation) Clone() *Donation {
	if d == nil {
		return nil
	}
	clone := *d
	if d.Amount != nil {
		clone.Amount = new(big.Int).Set(d.Amount)
	}
	if d.ImpactScore != nil {
		clone.ImpactScore = new(big.Int).Set(d.ImpactScore)
	}
	return &clone
}

// DonorProfile aggregates per-donor state: the incrementally maintained
// lifetime total across all causes, the running impact score, and the four
// badge flags. Flags are set at most once and never cleared.
type DonorProfile struct {
	Donor         [20]byte
	LifetimeTotal *big.Int
	ImpactScore   *big.Int
	BronzeBadge   bool
	SilverBadge   bool
	GoldBadge     bool
	DiamondBadge  bool
}

// Clone returns a deep copy of the profile.
func (p *DonorProfile) Clone() *DonorProfile {
	if p == nil {
		return nil
	}
	clone := *p
	if p.LifetimeTotal != nil {
		clone.LifetimeTotal = new(big.Int).Set(p.LifetimeTotal)
	}
	if p.ImpactScore != nil {
		clone.ImpactScore = new(big.Int).Set(p.ImpactScore)
	}
	return &clone
}

// HasBadge reports whether the flag for the supplied tier is set.
func (p *DonorProfile) HasBadge(tier BadgeTier) bool {
	if p == nil {
		return false
	}
	switch tier {
	case BadgeTierBronze:
		return p.BronzeBadge
	case BadgeTierSilver:
		return p.SilverBadge
	case BadgeTierGold:
		return p.GoldBadge
	case BadgeTierDiamond:
		return p.DiamondBadge
	default:
		return false
	}
}

func (p *DonorProfile) setBadge(tier BadgeTier) {
	switch tier {
	case BadgeTierBronze:
		p.BronzeBadge = true
	case BadgeTierSilver:
		p.SilverBadge = true
	case BadgeTierGold:
		p.GoldBadge = true
	case BadgeTierDiamond:
		p.DiamondBadge = true
	}
}

// Badge records a minted achievement token. Token ids come from a single
// monotonically increasing counter and are never reassigned.
type Badge struct {
	TokenID   uint64
	Tier      BadgeTier
	Donor     [20]byte
	AwardedAt int64
}

// Clone returns a copy safe for modification.
func (b *Badge) Clone() *Badge {
	if b == nil {
		return nil
	}
	clone := *b
	return &clone
}

// Counters carries the global mutable counters. All mutation flows through
// the engine commands; external writers must never touch these directly.
type Counters struct {
	TotalDonations   *big.Int
	NextBadgeTokenID uint64
	CauseNonce       uint64
}

// Clone returns a deep copy of the counters.
func (c *Counters) Clone() *Counters {
	if c == nil {
		return nil
	}
	clone := *c
	if c.TotalDonations != nil {
		clone.TotalDonations = new(big.Int).Set(c.TotalDonations)
	}
	return &clone
}

func newCounters() *Counters {
	return &Counters{TotalDonations: big.NewInt(0)}
}
