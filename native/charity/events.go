package charity

import (
	"encoding/hex"
	"math/big"
	"strconv"

	"givechain/core/events"
	"givechain/core/types"
	"givechain/crypto"
)

const (
	// EventTypeCauseCreated is emitted when a new cause is registered.
	EventTypeCauseCreated = "charity.cause.created"
	// EventTypeMilestoneAdded is emitted when a milestone is appended to a cause.
	EventTypeMilestoneAdded = "charity.milestone.added"
	// EventTypeMilestoneCompleted is emitted when cumulative funding unlocks a milestone.
	EventTypeMilestoneCompleted = "charity.milestone.completed"
	// EventTypeDonationReceived is emitted for every accepted donation.
	EventTypeDonationReceived = "charity.donation.received"
	// EventTypeTargetReached is emitted once, when a cause meets its funding target.
	EventTypeTargetReached = "charity.cause.target_reached"
	// EventTypeBadgeEarned is emitted when a badge token is minted for a donor.
	EventTypeBadgeEarned = "charity.badge.earned"
	// EventTypeImpactScoreUpdated is emitted after a donor's running score changes.
	EventTypeImpactScoreUpdated = "charity.donor.impact_updated"
	// EventTypeFundsWithdrawn is emitted when a beneficiary drains a cause balance.
	EventTypeFundsWithdrawn = "charity.funds.withdrawn"
)

type eventEnvelope struct {
	evt *types.Event
}

func (e eventEnvelope) EventType() string {
	if e.evt == nil {
		return ""
	}
	return e.evt.Type
}

func (e eventEnvelope) Event() *types.Event { return e.evt }

// WrapEvent converts a raw event payload into the emitter-friendly envelope.
func WrapEvent(evt *types.Event) events.Event { return eventEnvelope{evt: evt} }

func causeIDHex(id [32]byte) string { return hex.EncodeToString(id[:]) }

func bech32Addr(addr [20]byte) string {
	a, err := crypto.NewAddress(addr[:])
	if err != nil {
		return ""
	}
	return a.String()
}

func formatAmount(v *big.Int) string {
	if v == nil {
		return "0"
	}
	return v.String()
}

// CauseCreatedEvent returns the payload announcing a freshly registered cause.
func CauseCreatedEvent(cause *Cause) *types.Event {
	return &types.Event{
		Type: EventTypeCauseCreated,
		Attributes: map[string]string{
			"causeId":     causeIDHex(cause.ID),
			"name":        cause.Name,
			"beneficiary": bech32Addr(cause.Beneficiary),
			"target":      formatAmount(cause.TargetAmount),
			"createdAt":   strconv.FormatInt(cause.CreatedAt, 10),
		},
	}
}

// MilestoneAddedEvent returns the payload for a newly appended milestone.
func MilestoneAddedEvent(causeID [32]byte, index int, milestone *Milestone) *types.Event {
	return &types.Event{
		Type: EventTypeMilestoneAdded,
		Attributes: map[string]string{
			"causeId":     causeIDHex(causeID),
			"index":       strconv.Itoa(index),
			"description": milestone.Description,
			"target":      formatAmount(milestone.TargetAmount),
		},
	}
}

// MilestoneCompletedEvent returns the payload for a milestone unlocked by a
// donation.
func MilestoneCompletedEvent(causeID [32]byte, index int, milestone *Milestone) *types.Event {
	return &types.Event{
		Type: EventTypeMilestoneCompleted,
		Attributes: map[string]string{
			"causeId":     causeIDHex(causeID),
			"index":       strconv.Itoa(index),
			"description": milestone.Description,
			"target":      formatAmount(milestone.TargetAmount),
			"completedAt": strconv.FormatInt(milestone.CompletedAt, 10),
		},
	}
}

// DonationReceivedEvent returns the payload for an accepted donation.
func DonationReceivedEvent(donation *Donation) *types.Event {
	return &types.Event{
		Type: EventTypeDonationReceived,
		Attributes: map[string]string{
			"donor":       bech32Addr(donation.Donor),
			"causeId":     causeIDHex(donation.CauseID),
			"causeName":   donation.CauseName,
			"amount":      formatAmount(donation.Amount),
			"impactScore": formatAmount(donation.ImpactScore),
			"timestamp":   strconv.FormatInt(donation.Timestamp, 10),
		},
	}
}

// TargetReachedEvent returns the payload announcing a cause hit its target.
func TargetReachedEvent(cause *Cause) *types.Event {
	return &types.Event{
		Type: EventTypeTargetReached,
		Attributes: map[string]string{
			"causeId": causeIDHex(cause.ID),
			"name":    cause.Name,
			"total":   formatAmount(cause.CurrentAmount),
			"target":  formatAmount(cause.TargetAmount),
		},
	}
}

// BadgeEarnedEvent returns the payload for a freshly minted badge token.
func BadgeEarnedEvent(badge *Badge) *types.Event {
	return &types.Event{
		Type: EventTypeBadgeEarned,
		Attributes: map[string]string{
			"donor":     bech32Addr(badge.Donor),
			"tier":      badge.Tier.String(),
			"tokenId":   strconv.FormatUint(badge.TokenID, 10),
			"awardedAt": strconv.FormatInt(badge.AwardedAt, 10),
		},
	}
}

// ImpactScoreUpdatedEvent returns the payload carrying a donor's new running
// score.
func ImpactScoreUpdatedEvent(donor [20]byte, score *big.Int) *types.Event {
	return &types.Event{
		Type: EventTypeImpactScoreUpdated,
		Attributes: map[string]string{
			"donor": bech32Addr(donor),
			"score": formatAmount(score),
		},
	}
}

// FundsWithdrawnEvent returns the payload for a completed withdrawal.
func FundsWithdrawnEvent(cause *Cause, amount *big.Int, withdrawnAt int64) *types.Event {
	return &types.Event{
		Type: EventTypeFundsWithdrawn,
		Attributes: map[string]string{
			"causeId":     causeIDHex(cause.ID),
			"beneficiary": bech32Addr(cause.Beneficiary),
			"amount":      formatAmount(amount),
			"withdrawnAt": strconv.FormatInt(withdrawnAt, 10),
		},
	}
}
