package storage

import (
	"encoding/json"
	"errors"
)

// KV layers a JSON codec over a Database, giving higher layers a typed
// get/put surface without committing them to a wire format.
type KV struct {
	db Database
}

// NewKV wraps the supplied database.
func NewKV(db Database) *KV {
	return &KV{db: db}
}

var errNilDatabase = errors.New("storage: database not configured")

// KVGet unmarshals the value stored under key into out. It reports whether
// the key existed.
func (kv *KV) KVGet(key []byte, out interface{}) (bool, error) {
	if kv == nil || kv.db == nil {
		return false, errNilDatabase
	}
	raw, found, err := kv.db.Get(key)
	if err != nil {
		return false, err
	}
	if !found {
		return false, nil
	}
	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return false, err
		}
	}
	return true, nil
}

// KVPut marshals value and stores it under key.
func (kv *KV) KVPut(key []byte, value interface{}) error {
	if kv == nil || kv.db == nil {
		return errNilDatabase
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	return kv.db.Put(key, raw)
}
