package charity

import (
	"errors"
	"fmt"
	"math/big"

	ethcrypto "github.com/ethereum/go-ethereum/crypto"
)

// kvStore abstracts the subset of storage functionality required by the
// ledger store. givechain/storage.KV satisfies it over any database backend.
type kvStore interface {
	KVGet(key []byte, out interface{}) (bool, error)
	KVPut(key []byte, value interface{}) error
}

var (
	causePrefix    = []byte("charity/cause/")
	nameIdxPrefix  = []byte("charity/causename/")
	donorPrefix    = []byte("charity/donor/")
	contribPrefix  = []byte("charity/contrib/")
	historyPrefix  = []byte("charity/history/")
	badgePrefix    = []byte("charity/badge/")
	rolePrefix     = []byte("charity/role/")
	countersKeyRaw = []byte("charity/counters")
)

func causeKey(id [32]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", causePrefix, id))
}

// nameIdxKey hashes the name so arbitrary display names produce fixed-size,
// separator-free keys.
func nameIdxKey(name string) []byte {
	digest := ethcrypto.Keccak256([]byte(name))
	return []byte(fmt.Sprintf("%s%x", nameIdxPrefix, digest))
}

func donorKey(addr [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", donorPrefix, addr))
}

func contribKey(causeID [32]byte, donor [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x/%x", contribPrefix, causeID, donor))
}

func historyKey(donor [20]byte) []byte {
	return []byte(fmt.Sprintf("%s%x", historyPrefix, donor))
}

func badgeKey(tokenID uint64) []byte {
	return []byte(fmt.Sprintf("%s%020d", badgePrefix, tokenID))
}

func roleKey(role string, addr []byte) []byte {
	return []byte(fmt.Sprintf("%s%s/%x", rolePrefix, role, addr))
}

// Store persists the charity ledger over a generic key-value backend and
// satisfies the engine's state contract. It also keeps the durable role
// grants backing the admin capability.
type Store struct {
	kv kvStore
}

// NewStore constructs a ledger store bound to the provided KV backend.
func NewStore(kv kvStore) *Store {
	return &Store{kv: kv}
}

var errStoreNotInitialised = errors.New("charity: store not initialised")

func (s *Store) ready() error {
	if s == nil || s.kv == nil {
		return errStoreNotInitialised
	}
	return nil
}

// GrantRole persists a role grant for the supplied address.
func (s *Store) GrantRole(role string, addr [20]byte) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.kv.KVPut(roleKey(role, addr[:]), true)
}

// HasRole reports whether the address holds the supplied role.
func (s *Store) HasRole(role string, addr []byte) bool {
	if s == nil || s.kv == nil {
		return false
	}
	var granted bool
	ok, err := s.kv.KVGet(roleKey(role, addr), &granted)
	if err != nil || !ok {
		return false
	}
	return granted
}

// CauseGet loads the cause record with the supplied identifier.
func (s *Store) CauseGet(id [32]byte) (*Cause, bool, error) {
	if err := s.ready(); err != nil {
		return nil, false, err
	}
	stored := new(Cause)
	ok, err := s.kv.KVGet(causeKey(id), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored, true, nil
}

// CausePut stores the cause record, overwriting any previous version.
func (s *Store) CausePut(cause *Cause) error {
	if err := s.ready(); err != nil {
		return err
	}
	if cause == nil {
		return errors.New("charity: cause required")
	}
	return s.kv.KVPut(causeKey(cause.ID), cause.Clone())
}

// CauseIDByName resolves the name index entry for the supplied display name.
func (s *Store) CauseIDByName(name string) ([32]byte, bool, error) {
	var id [32]byte
	if err := s.ready(); err != nil {
		return id, false, err
	}
	ok, err := s.kv.KVGet(nameIdxKey(name), &id)
	if err != nil || !ok {
		return id, false, err
	}
	return id, true, nil
}

// CauseNamePut binds a display name to a cause identifier. Names are
// immutable, so entries are only ever written once.
func (s *Store) CauseNamePut(name string, id [32]byte) error {
	if err := s.ready(); err != nil {
		return err
	}
	return s.kv.KVPut(nameIdxKey(name), id)
}

// DonorGet loads the aggregate profile for the supplied donor.
func (s *Store) DonorGet(addr [20]byte) (*DonorProfile, bool, error) {
	if err := s.ready(); err != nil {
		return nil, false, err
	}
	stored := new(DonorProfile)
	ok, err := s.kv.KVGet(donorKey(addr), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored, true, nil
}

// DonorPut stores the donor profile.
func (s *Store) DonorPut(profile *DonorProfile) error {
	if err := s.ready(); err != nil {
		return err
	}
	if profile == nil {
		return errors.New("charity: profile required")
	}
	return s.kv.KVPut(donorKey(profile.Donor), profile.Clone())
}

// ContributionGet returns the donor's cumulative contribution to the cause.
func (s *Store) ContributionGet(causeID [32]byte, donor [20]byte) (*big.Int, bool, error) {
	if err := s.ready(); err != nil {
		return nil, false, err
	}
	total := new(big.Int)
	ok, err := s.kv.KVGet(contribKey(causeID, donor), total)
	if err != nil || !ok {
		return nil, false, err
	}
	return total, true, nil
}

// ContributionPut stores the donor's cumulative contribution to the cause.
func (s *Store) ContributionPut(causeID [32]byte, donor [20]byte, total *big.Int) error {
	if err := s.ready(); err != nil {
		return err
	}
	if total == nil {
		total = big.NewInt(0)
	}
	return s.kv.KVPut(contribKey(causeID, donor), total)
}

// DonationAppend appends an immutable donation record to the donor's history.
func (s *Store) DonationAppend(donor [20]byte, donation *Donation) error {
	if err := s.ready(); err != nil {
		return err
	}
	if donation == nil {
		return errors.New("charity: donation required")
	}
	var history []*Donation
	if _, err := s.kv.KVGet(historyKey(donor), &history); err != nil {
		return err
	}
	history = append(history, donation.Clone())
	return s.kv.KVPut(historyKey(donor), history)
}

// DonationList returns the donor's ordered donation history.
func (s *Store) DonationList(donor [20]byte) ([]*Donation, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	var history []*Donation
	if _, err := s.kv.KVGet(historyKey(donor), &history); err != nil {
		return nil, err
	}
	return history, nil
}

// BadgePut stores a minted badge token record under its token id.
func (s *Store) BadgePut(badge *Badge) error {
	if err := s.ready(); err != nil {
		return err
	}
	if badge == nil {
		return errors.New("charity: badge required")
	}
	return s.kv.KVPut(badgeKey(badge.TokenID), badge.Clone())
}

// BadgeGet loads the badge record with the supplied token id.
func (s *Store) BadgeGet(tokenID uint64) (*Badge, bool, error) {
	if err := s.ready(); err != nil {
		return nil, false, err
	}
	stored := new(Badge)
	ok, err := s.kv.KVGet(badgeKey(tokenID), stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored, true, nil
}

// CountersGet loads the global counters.
func (s *Store) CountersGet() (*Counters, bool, error) {
	if err := s.ready(); err != nil {
		return nil, false, err
	}
	stored := new(Counters)
	ok, err := s.kv.KVGet(countersKeyRaw, stored)
	if err != nil || !ok {
		return nil, false, err
	}
	return stored, true, nil
}

// CountersPut stores the global counters.
func (s *Store) CountersPut(counters *Counters) error {
	if err := s.ready(); err != nil {
		return err
	}
	if counters == nil {
		return errors.New("charity: counters required")
	}
	return s.kv.KVPut(countersKeyRaw, counters.Clone())
}
