package charity

import (
	"encoding/binary"
	"fmt"
	"math/big"
	"strings"
	"time"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"

	"givechain/core/events"
	"givechain/core/types"
)

// RoleAdmin guards the administrative commands CreateCause and AddMilestone.
// Grants are persisted in the state backend so the capability survives
// restarts.
const RoleAdmin = "ROLE_CHARITY_ADMIN"

// engineState is the narrow persistence surface required by the engine. All
// getters return deep copies; the engine writes back explicitly.
type engineState interface {
	HasRole(role string, addr []byte) bool
	CauseGet(id [32]byte) (*Cause, bool, error)
	CausePut(cause *Cause) error
	CauseIDByName(name string) ([32]byte, bool, error)
	CauseNamePut(name string, id [32]byte) error
	DonorGet(addr [20]byte) (*DonorProfile, bool, error)
	DonorPut(profile *DonorProfile) error
	ContributionGet(causeID [32]byte, donor [20]byte) (*big.Int, bool, error)
	ContributionPut(causeID [32]byte, donor [20]byte, total *big.Int) error
	DonationAppend(donor [20]byte, donation *Donation) error
	DonationList(donor [20]byte) ([]*Donation, error)
	BadgePut(badge *Badge) error
	CountersGet() (*Counters, bool, error)
	CountersPut(counters *Counters) error
}

// Payout executes the external fund transfer that settles a withdrawal. The
// transfer runs outside the ledger and may transitively re-enter the engine
// before it returns, which is why the balance is zeroed and persisted first.
type Payout interface {
	Transfer(to [20]byte, amount *big.Int) error
}

// Engine wires the donation ledger business logic with persistence and event
// emission. Mutating commands are expected to run strictly serialized; the
// engine keeps no internal goroutines.
type Engine struct {
	state      engineState
	emitter    events.Emitter
	payout     Payout
	thresholds *TierThresholds
	nowFn      func() int64
}

// NewEngine constructs an engine with default dependencies.
func NewEngine() *Engine {
	return &Engine{
		emitter:    events.NoopEmitter{},
		thresholds: DefaultTierThresholds(),
		nowFn: func() int64 {
			return time.Now().Unix()
		},
	}
}

// SetState configures the state backend used by the engine.
func (e *Engine) SetState(state engineState) { e.state = state }

// SetEmitter configures the event emitter. Passing nil resets to a no-op.
func (e *Engine) SetEmitter(emitter events.Emitter) {
	if emitter == nil {
		e.emitter = events.NoopEmitter{}
		return
	}
	e.emitter = emitter
}

// SetPayout configures the collaborator that moves withdrawn funds to the
// beneficiary.
func (e *Engine) SetPayout(payout Payout) { e.payout = payout }

// SetNowFunc overrides the time source used for deterministic testing.
func (e *Engine) SetNowFunc(now func() int64) {
	if now == nil {
		e.nowFn = func() int64 { return time.Now().Unix() }
		return
	}
	e.nowFn = now
}

// SetTierThresholds replaces the badge cutoffs. The set must be positive and
// strictly ascending.
func (e *Engine) SetTierThresholds(t *TierThresholds) error {
	if err := t.Validate(); err != nil {
		return err
	}
	e.thresholds = t.Clone()
	return nil
}

func (e *Engine) emit(evt *types.Event) {
	if e == nil || evt == nil || e.emitter == nil {
		return
	}
	e.emitter.Emit(WrapEvent(evt))
}

func (e *Engine) now() int64 {
	if e == nil || e.nowFn == nil {
		return time.Now().Unix()
	}
	return e.nowFn()
}

func isZeroAddress(addr [20]byte) bool {
	var zero [20]byte
	return addr == zero
}

func (e *Engine) counters() (*Counters, error) {
	counters, ok, err := e.state.CountersGet()
	if err != nil {
		return nil, err
	}
	if !ok || counters == nil {
		counters = newCounters()
	}
	if counters.TotalDonations == nil {
		counters.TotalDonations = big.NewInt(0)
	}
	return counters, nil
}

func (e *Engine) profile(donor [20]byte) (*DonorProfile, error) {
	profile, ok, err := e.state.DonorGet(donor)
	if err != nil {
		return nil, err
	}
	if !ok || profile == nil {
		profile = &DonorProfile{Donor: donor, LifetimeTotal: big.NewInt(0), ImpactScore: big.NewInt(0)}
	}
	if profile.LifetimeTotal == nil {
		profile.LifetimeTotal = big.NewInt(0)
	}
	if profile.ImpactScore == nil {
		profile.ImpactScore = big.NewInt(0)
	}
	return profile, nil
}

// deriveCauseID hashes the immutable creation fields together with a
// persisted sequence nonce, so identifiers are collision resistant without
// depending on wall-clock uniqueness.
func deriveCauseID(name string, beneficiary [20]byte, nonce uint64) [32]byte {
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], nonce)
	digest := ethcrypto.Keccak256Hash([]byte(name), beneficiary[:], seq[:])
	var id [32]byte
	copy(id[:], digest.Bytes())
	return id
}

// CreateCause registers a new fundraising cause and emits the corresponding
// event. Only holders of RoleAdmin may create causes. Names are unique,
// case-sensitive and immutable.
func (e *Engine) CreateCause(caller [20]byte, name string, description string, beneficiary [20]byte, target *big.Int) (*Cause, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if !e.state.HasRole(RoleAdmin, caller[:]) {
		return nil, ErrUnauthorized
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return nil, fmt.Errorf("%w: cause name empty", ErrInvalidName)
	}
	if target == nil || target.Sign() <= 0 {
		return nil, fmt.Errorf("%w: cause target", ErrInvalidAmount)
	}
	if isZeroAddress(beneficiary) {
		return nil, ErrInvalidBeneficiary
	}
	if _, exists, err := e.state.CauseIDByName(trimmed); err != nil {
		return nil, err
	} else if exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateName, trimmed)
	}
	counters, err := e.counters()
	if err != nil {
		return nil, err
	}
	nonce := counters.CauseNonce
	counters.CauseNonce++
	id := deriveCauseID(trimmed, beneficiary, nonce)
	if _, exists, err := e.state.CauseGet(id); err != nil {
		return nil, err
	} else if exists {
		return nil, ErrIDCollision
	}
	// Persist the bumped nonce first so a failed creation never reuses it.
	if err := e.state.CountersPut(counters); err != nil {
		return nil, err
	}
	cause := &Cause{
		ID:            id,
		Name:          trimmed,
		Description:   strings.TrimSpace(description),
		Beneficiary:   beneficiary,
		TargetAmount:  new(big.Int).Set(target),
		CurrentAmount: big.NewInt(0),
		Active:        true,
		CreatedAt:     e.now(),
	}
	if err := e.state.CausePut(cause); err != nil {
		return nil, err
	}
	if err := e.state.CauseNamePut(trimmed, id); err != nil {
		return nil, err
	}
	e.emit(CauseCreatedEvent(cause))
	return cause.Clone(), nil
}

// AddMilestone appends a new, initially incomplete milestone to the cause's
// ordered list. Duplicate descriptions and targets are permitted; milestones
// are never removed or reordered.
func (e *Engine) AddMilestone(caller [20]byte, causeID [32]byte, description string, target *big.Int) (*Milestone, int, error) {
	if e == nil || e.state == nil {
		return nil, 0, ErrNilState
	}
	if !e.state.HasRole(RoleAdmin, caller[:]) {
		return nil, 0, ErrUnauthorized
	}
	milestone := &Milestone{
		Description:  strings.TrimSpace(description),
		TargetAmount: target,
	}
	if err := milestone.Validate(); err != nil {
		return nil, 0, err
	}
	milestone.TargetAmount = new(big.Int).Set(target)
	cause, ok, err := e.state.CauseGet(causeID)
	if err != nil {
		return nil, 0, err
	}
	if !ok || cause == nil {
		return nil, 0, ErrCauseNotFound
	}
	cause.Milestones = append(cause.Milestones, milestone)
	index := len(cause.Milestones) - 1
	if err := e.state.CausePut(cause); err != nil {
		return nil, 0, err
	}
	e.emit(MilestoneAddedEvent(causeID, index, milestone))
	return milestone.Clone(), index, nil
}

// completeMilestones scans the full milestone list in insertion order and
// marks every still-incomplete milestone whose target the current amount now
// covers. Completed milestones are never revisited, so re-running the scan
// without a new donation is a no-op.
func completeMilestones(cause *Cause, now int64) []int {
	var completed []int
	for i, milestone := range cause.Milestones {
		if milestone == nil || milestone.Completed {
			continue
		}
		if milestone.TargetAmount == nil || cause.CurrentAmount.Cmp(milestone.TargetAmount) < 0 {
			continue
		}
		milestone.Completed = true
		milestone.CompletedAt = now
		completed = append(completed, i)
	}
	return completed
}

// Donate records a contribution against a cause. The pipeline is fixed:
// ledger accounting, milestone evaluation, target check, badge award, then
// notifications. The operation commits fully or rejects with no state change.
func (e *Engine) Donate(donor [20]byte, causeID [32]byte, amount *big.Int) (*Donation, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if amount == nil || amount.Sign() <= 0 {
		return nil, fmt.Errorf("%w: donation", ErrInvalidAmount)
	}
	cause, ok, err := e.state.CauseGet(causeID)
	if err != nil {
		return nil, err
	}
	if !ok || cause == nil {
		return nil, ErrCauseNotFound
	}
	if !cause.Active {
		return nil, ErrCauseInactive
	}
	if cause.TargetReached {
		return nil, ErrTargetReached
	}
	contributed, hasContributed, err := e.state.ContributionGet(causeID, donor)
	if err != nil {
		return nil, err
	}
	if contributed == nil {
		contributed = big.NewInt(0)
	}
	profile, err := e.profile(donor)
	if err != nil {
		return nil, err
	}
	counters, err := e.counters()
	if err != nil {
		return nil, err
	}

	now := e.now()
	if !hasContributed || contributed.Sign() == 0 {
		cause.DonorCount++
	}
	contributed = new(big.Int).Add(contributed, amount)
	if cause.CurrentAmount == nil {
		cause.CurrentAmount = big.NewInt(0)
	}
	cause.CurrentAmount = new(big.Int).Add(cause.CurrentAmount, amount)
	counters.TotalDonations = new(big.Int).Add(counters.TotalDonations, amount)

	score := ImpactScore(amount)
	profile.ImpactScore = new(big.Int).Add(profile.ImpactScore, score)
	profile.LifetimeTotal = new(big.Int).Add(profile.LifetimeTotal, amount)

	donation := &Donation{
		CauseID:     causeID,
		CauseName:   cause.Name,
		Donor:       donor,
		Amount:      new(big.Int).Set(amount),
		ImpactScore: score,
		Timestamp:   now,
	}

	completed := completeMilestones(cause, now)

	targetReachedNow := cause.TargetAmount != nil && cause.CurrentAmount.Cmp(cause.TargetAmount) >= 0
	if targetReachedNow {
		cause.TargetReached = true
	}

	var badge *Badge
	if tier := nextBadge(profile, e.thresholds); tier != BadgeTierUnspecified {
		badge = &Badge{
			TokenID:   counters.NextBadgeTokenID,
			Tier:      tier,
			Donor:     donor,
			AwardedAt: now,
		}
		counters.NextBadgeTokenID++
		profile.setBadge(tier)
	}

	if err := e.state.ContributionPut(causeID, donor, contributed); err != nil {
		return nil, err
	}
	if err := e.state.CausePut(cause); err != nil {
		return nil, err
	}
	if err := e.state.CountersPut(counters); err != nil {
		return nil, err
	}
	if err := e.state.DonorPut(profile); err != nil {
		return nil, err
	}
	if err := e.state.DonationAppend(donor, donation); err != nil {
		return nil, err
	}
	if badge != nil {
		if err := e.state.BadgePut(badge); err != nil {
			return nil, err
		}
	}

	for _, i := range completed {
		e.emit(MilestoneCompletedEvent(causeID, i, cause.Milestones[i]))
	}
	if targetReachedNow {
		e.emit(TargetReachedEvent(cause))
	}
	if badge != nil {
		e.emit(BadgeEarnedEvent(badge))
	}
	e.emit(DonationReceivedEvent(donation))
	e.emit(ImpactScoreUpdatedEvent(donor, profile.ImpactScore))
	return donation.Clone(), nil
}

// WithdrawFunds drains the cause balance to its beneficiary. The balance is
// zeroed and persisted strictly before the external transfer so a re-entrant
// withdrawal observes zero and fails with ErrNothingToWithdraw instead of
// double-spending. If the transfer fails the prior balance is restored before
// ErrTransferFailed surfaces.
func (e *Engine) WithdrawFunds(caller [20]byte, causeID [32]byte) (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	if e.payout == nil {
		return nil, ErrPayoutNotConfigured
	}
	cause, ok, err := e.state.CauseGet(causeID)
	if err != nil {
		return nil, err
	}
	if !ok || cause == nil {
		return nil, ErrCauseNotFound
	}
	if caller != cause.Beneficiary {
		return nil, ErrUnauthorized
	}
	if cause.CurrentAmount == nil || cause.CurrentAmount.Sign() == 0 {
		return nil, ErrNothingToWithdraw
	}
	amount := new(big.Int).Set(cause.CurrentAmount)
	cause.CurrentAmount = big.NewInt(0)
	if err := e.state.CausePut(cause); err != nil {
		return nil, err
	}
	if err := e.payout.Transfer(cause.Beneficiary, amount); err != nil {
		// Reload before restoring: the transfer may have re-entered the
		// engine and advanced other cause fields in the meantime.
		current, ok, loadErr := e.state.CauseGet(causeID)
		if loadErr != nil || !ok || current == nil {
			return nil, fmt.Errorf("%w: %v (balance restore failed)", ErrTransferFailed, err)
		}
		if current.CurrentAmount == nil {
			current.CurrentAmount = big.NewInt(0)
		}
		current.CurrentAmount = new(big.Int).Add(current.CurrentAmount, amount)
		if putErr := e.state.CausePut(current); putErr != nil {
			return nil, fmt.Errorf("%w: %v (balance restore failed)", ErrTransferFailed, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrTransferFailed, err)
	}
	e.emit(FundsWithdrawnEvent(cause, amount, e.now()))
	return amount, nil
}

// GetCause returns a snapshot of the cause with the supplied identifier.
func (e *Engine) GetCause(causeID [32]byte) (*Cause, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	cause, ok, err := e.state.CauseGet(causeID)
	if err != nil {
		return nil, err
	}
	if !ok || cause == nil {
		return nil, ErrCauseNotFound
	}
	return cause.Clone(), nil
}

// GetCauseByName resolves the unique, case-sensitive cause name.
func (e *Engine) GetCauseByName(name string) (*Cause, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	id, ok, err := e.state.CauseIDByName(strings.TrimSpace(name))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCauseNotFound
	}
	return e.GetCause(id)
}

// Milestones returns the cause's ordered milestone list.
func (e *Engine) Milestones(causeID [32]byte) ([]*Milestone, error) {
	cause, err := e.GetCause(causeID)
	if err != nil {
		return nil, err
	}
	return cause.Milestones, nil
}

// History returns the donor's ordered donation records.
func (e *Engine) History(donor [20]byte) ([]*Donation, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	donations, err := e.state.DonationList(donor)
	if err != nil {
		return nil, err
	}
	out := make([]*Donation, len(donations))
	for i, d := range donations {
		out[i] = d.Clone()
	}
	return out, nil
}

// Profile returns the donor's aggregate state: lifetime total, running impact
// score and badge flags. Unknown donors yield a zeroed profile.
func (e *Engine) Profile(donor [20]byte) (*DonorProfile, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	profile, err := e.profile(donor)
	if err != nil {
		return nil, err
	}
	return profile.Clone(), nil
}

// DonorImpactScore returns the donor's running impact score.
func (e *Engine) DonorImpactScore(donor [20]byte) (*big.Int, error) {
	profile, err := e.Profile(donor)
	if err != nil {
		return nil, err
	}
	return profile.ImpactScore, nil
}

// DonorBadges returns the donor's badge flags keyed by tier name.
func (e *Engine) DonorBadges(donor [20]byte) (map[BadgeTier]bool, error) {
	profile, err := e.Profile(donor)
	if err != nil {
		return nil, err
	}
	flags := make(map[BadgeTier]bool, len(tiersDescending))
	for _, tier := range tiersDescending {
		flags[tier] = profile.HasBadge(tier)
	}
	return flags, nil
}

// TotalDonations returns the global sum of all accepted donations.
func (e *Engine) TotalDonations() (*big.Int, error) {
	if e == nil || e.state == nil {
		return nil, ErrNilState
	}
	counters, err := e.counters()
	if err != nil {
		return nil, err
	}
	return new(big.Int).Set(counters.TotalDonations), nil
}
