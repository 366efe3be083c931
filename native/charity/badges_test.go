package charity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTierThresholdsValidate(t *testing.T) {
	require.NoError(t, DefaultTierThresholds().Validate())

	var nilSet *TierThresholds
	require.ErrorIs(t, nilSet.Validate(), ErrInvalidThresholds)

	missing := DefaultTierThresholds()
	missing.Silver = nil
	require.ErrorIs(t, missing.Validate(), ErrInvalidThresholds)

	negative := DefaultTierThresholds()
	negative.Bronze = big.NewInt(-1)
	require.ErrorIs(t, negative.Validate(), ErrInvalidThresholds)

	unordered := DefaultTierThresholds()
	unordered.Gold = new(big.Int).Set(unordered.Silver)
	require.ErrorIs(t, unordered.Validate(), ErrInvalidThresholds)
}

func TestTierThresholdsCloneIsDeep(t *testing.T) {
	original := DefaultTierThresholds()
	clone := original.Clone()
	clone.Bronze.SetInt64(7)
	require.NotEqual(t, 0, original.Bronze.Cmp(clone.Bronze))
}

func TestNextBadgePolicy(t *testing.T) {
	thresholds := DefaultTierThresholds()
	profile := func(total *big.Int, tiers ...BadgeTier) *DonorProfile {
		p := &DonorProfile{LifetimeTotal: total, ImpactScore: big.NewInt(0)}
		for _, tier := range tiers {
			p.setBadge(tier)
		}
		return p
	}

	cases := []struct {
		name    string
		profile *DonorProfile
		want    BadgeTier
	}{
		{"below bronze", profile(big.NewInt(1)), BadgeTierUnspecified},
		{"exactly bronze", profile(thresholds.Bronze), BadgeTierBronze},
		{"between silver and gold", profile(thresholds.Silver), BadgeTierSilver},
		{"exactly gold", profile(thresholds.Gold), BadgeTierGold},
		{"just under gold", profile(new(big.Int).Sub(thresholds.Gold, big.NewInt(1))), BadgeTierSilver},
		{"past diamond from zero", profile(units(20)), BadgeTierDiamond},
		{"diamond held, gold next", profile(units(20), BadgeTierDiamond), BadgeTierGold},
		{"all held", profile(units(20), BadgeTierBronze, BadgeTierSilver, BadgeTierGold, BadgeTierDiamond), BadgeTierUnspecified},
		{"bronze held, still below silver", profile(thresholds.Bronze, BadgeTierBronze), BadgeTierUnspecified},
		{"nil profile", nil, BadgeTierUnspecified},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			require.Equal(t, tc.want, nextBadge(tc.profile, thresholds))
		})
	}
}

func TestImpactScoreNonPositiveAmounts(t *testing.T) {
	require.Zero(t, ImpactScore(nil).Sign())
	require.Zero(t, ImpactScore(big.NewInt(-100)).Sign())
}
