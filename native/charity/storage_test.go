package charity

import (
	"math/big"
	"testing"

	"github.com/stretchr/testify/require"

	"givechain/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(storage.NewKV(storage.NewMemDB()))
}

func TestStoreRoundTripCause(t *testing.T) {
	store := newTestStore(t)

	id := [32]byte{0x01, 0x02}
	cause := &Cause{
		ID:            id,
		Name:          "Water Wells",
		Description:   "clean water",
		Beneficiary:   addr(0x02),
		TargetAmount:  units(10),
		CurrentAmount: units(3),
		DonorCount:    2,
		Active:        true,
		CreatedAt:     1_700_000_000,
		Milestones: []*Milestone{
			{Description: "drill site", TargetAmount: units(2), Completed: true, CompletedAt: 1_700_000_100},
			{Description: "pump install", TargetAmount: units(8)},
		},
	}
	require.NoError(t, store.CausePut(cause))
	require.NoError(t, store.CauseNamePut(cause.Name, id))

	loaded, ok, err := store.CauseGet(id)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, cause, loaded)

	resolved, ok, err := store.CauseIDByName("Water Wells")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, id, resolved)

	_, ok, err = store.CauseGet([32]byte{0xFF})
	require.NoError(t, err)
	require.False(t, ok)
	_, ok, err = store.CauseIDByName("water wells")
	require.NoError(t, err)
	require.False(t, ok)
}

func TestStoreRoundTripDonorAndContribution(t *testing.T) {
	store := newTestStore(t)
	donor := addr(0x10)
	causeID := [32]byte{0xAA}

	profile := &DonorProfile{
		Donor:         donor,
		LifetimeTotal: units(5),
		ImpactScore:   big.NewInt(500),
		BronzeBadge:   true,
		GoldBadge:     true,
	}
	require.NoError(t, store.DonorPut(profile))
	loaded, ok, err := store.DonorGet(donor)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, profile, loaded)

	_, ok, err = store.ContributionGet(causeID, donor)
	require.NoError(t, err)
	require.False(t, ok)

	require.NoError(t, store.ContributionPut(causeID, donor, units(5)))
	total, ok, err := store.ContributionGet(causeID, donor)
	require.NoError(t, err)
	require.True(t, ok)
	require.Zero(t, total.Cmp(units(5)))
}

func TestStoreDonationHistoryAppends(t *testing.T) {
	store := newTestStore(t)
	donor := addr(0x10)

	history, err := store.DonationList(donor)
	require.NoError(t, err)
	require.Empty(t, history)

	first := &Donation{CauseID: [32]byte{0x01}, CauseName: "A", Donor: donor, Amount: units(1), ImpactScore: big.NewInt(100), Timestamp: 10}
	second := &Donation{CauseID: [32]byte{0x02}, CauseName: "B", Donor: donor, Amount: units(2), ImpactScore: big.NewInt(200), Timestamp: 20}
	require.NoError(t, store.DonationAppend(donor, first))
	require.NoError(t, store.DonationAppend(donor, second))

	history, err = store.DonationList(donor)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, first, history[0])
	require.Equal(t, second, history[1])
}

func TestStoreRoundTripBadgeAndCounters(t *testing.T) {
	store := newTestStore(t)

	badge := &Badge{TokenID: 7, Tier: BadgeTierSilver, Donor: addr(0x10), AwardedAt: 42}
	require.NoError(t, store.BadgePut(badge))
	loaded, ok, err := store.BadgeGet(7)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, badge, loaded)

	_, ok, err = store.CountersGet()
	require.NoError(t, err)
	require.False(t, ok)

	counters := &Counters{TotalDonations: units(12), NextBadgeTokenID: 8, CauseNonce: 3}
	require.NoError(t, store.CountersPut(counters))
	got, ok, err := store.CountersGet()
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, counters, got)
}

func TestStoreRoleGrants(t *testing.T) {
	store := newTestStore(t)
	admin := addr(0xAD)

	require.False(t, store.HasRole(RoleAdmin, admin[:]))
	require.NoError(t, store.GrantRole(RoleAdmin, admin))
	require.True(t, store.HasRole(RoleAdmin, admin[:]))
	require.False(t, store.HasRole("ROLE_OTHER", admin[:]))
}

func TestStoreNotInitialised(t *testing.T) {
	var store *Store
	require.Error(t, store.CausePut(&Cause{}))
	_, _, err := store.CountersGet()
	require.Error(t, err)
	require.False(t, store.HasRole(RoleAdmin, nil))
}

// TestLedgerSurvivesReopen drives the engine over a bolt-backed store, closes
// the database and verifies the full ledger state after reopening.
func TestLedgerSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	admin := addr(0xAD)
	donor := addr(0x10)
	beneficiary := addr(0x02)

	db, err := storage.Open("bolt", dir)
	require.NoError(t, err)
	store := NewStore(storage.NewKV(db))
	require.NoError(t, store.GrantRole(RoleAdmin, admin))

	engine := NewEngine()
	engine.SetState(store)
	engine.SetNowFunc(func() int64 { return 1_700_000_000 })

	cause, err := engine.CreateCause(admin, "Education Fund", "books", beneficiary, units(10))
	require.NoError(t, err)
	_, _, err = engine.AddMilestone(admin, cause.ID, "first classroom", units(1))
	require.NoError(t, err)
	_, err = engine.Donate(donor, cause.ID, units(1))
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = storage.Open("bolt", dir)
	require.NoError(t, err)
	defer db.Close()
	engine = NewEngine()
	engine.SetState(NewStore(storage.NewKV(db)))

	reloaded, err := engine.GetCauseByName("Education Fund")
	require.NoError(t, err)
	require.Equal(t, cause.ID, reloaded.ID)
	require.Zero(t, reloaded.CurrentAmount.Cmp(units(1)))
	require.Equal(t, uint64(1), reloaded.DonorCount)
	require.True(t, reloaded.Milestones[0].Completed)

	profile, err := engine.Profile(donor)
	require.NoError(t, err)
	require.Zero(t, profile.LifetimeTotal.Cmp(units(1)))
	require.True(t, profile.GoldBadge)

	total, err := engine.TotalDonations()
	require.NoError(t, err)
	require.Zero(t, total.Cmp(units(1)))
}
