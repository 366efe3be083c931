package charity

import (
	"errors"
	"math/big"
	"testing"
)

func TestCauseCloneIsDeep(t *testing.T) {
	original := &Cause{
		ID:            [32]byte{0x01},
		Name:          "Water Wells",
		Beneficiary:   addr(0x02),
		TargetAmount:  units(10),
		CurrentAmount: units(3),
		Active:        true,
		Milestones: []*Milestone{
			{Description: "drill site", TargetAmount: units(2)},
		},
	}
	clone := original.Clone()

	clone.CurrentAmount.SetInt64(0)
	clone.Milestones[0].Completed = true
	clone.Milestones[0].TargetAmount.SetInt64(1)

	if original.CurrentAmount.Cmp(units(3)) != 0 {
		t.Fatalf("clone shared the current amount")
	}
	if original.Milestones[0].Completed {
		t.Fatalf("clone shared the milestone slice")
	}
	if original.Milestones[0].TargetAmount.Cmp(units(2)) != 0 {
		t.Fatalf("clone shared the milestone target")
	}
}

func TestDonorProfileCloneIsDeep(t *testing.T) {
	original := &DonorProfile{
		Donor:         addr(0x10),
		LifetimeTotal: units(5),
		ImpactScore:   big.NewInt(500),
		GoldBadge:     true,
	}
	clone := original.Clone()
	clone.LifetimeTotal.SetInt64(0)
	clone.ImpactScore.SetInt64(0)

	if original.LifetimeTotal.Cmp(units(5)) != 0 || original.ImpactScore.Cmp(big.NewInt(500)) != 0 {
		t.Fatalf("clone shared big.Int fields")
	}
}

func TestMilestoneValidate(t *testing.T) {
	valid := &Milestone{Description: "drill site", TargetAmount: units(1)}
	if err := valid.Validate(); err != nil {
		t.Fatalf("valid milestone rejected: %v", err)
	}
	empty := &Milestone{Description: "   ", TargetAmount: units(1)}
	if err := empty.Validate(); !errors.Is(err, ErrInvalidName) {
		t.Fatalf("blank description should fail with ErrInvalidName, got %v", err)
	}
	noTarget := &Milestone{Description: "drill site"}
	if err := noTarget.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("missing target should fail with ErrInvalidAmount, got %v", err)
	}
	negative := &Milestone{Description: "drill site", TargetAmount: big.NewInt(-1)}
	if err := negative.Validate(); !errors.Is(err, ErrInvalidAmount) {
		t.Fatalf("negative target should fail with ErrInvalidAmount, got %v", err)
	}
}

func TestDonorProfileBadgeFlags(t *testing.T) {
	profile := &DonorProfile{}
	for _, tier := range tiersDescending {
		if profile.HasBadge(tier) {
			t.Fatalf("fresh profile should hold no %s badge", tier)
		}
	}
	profile.setBadge(BadgeTierSilver)
	if !profile.HasBadge(BadgeTierSilver) || profile.HasBadge(BadgeTierBronze) {
		t.Fatalf("badge flags mis-set: %+v", profile)
	}
}
