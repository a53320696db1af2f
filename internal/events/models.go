// Package events holds the append-only log of accepted state transitions.
//
// Every entry point appends exactly one event inside its transaction
// boundary. The store assigns transaction ids (strictly increasing from 1,
// no gaps, no reuse) and seals each event into a SHA3-256 hash chain so an
// auditor can detect any rewrite of history.
package events

import (
	"encoding/hex"
	"encoding/json"
	"fmt"

	"golang.org/x/crypto/sha3"

	id "github.com/grace-umanah/bit-holdings/pkg/domain"
)

// Event records one accepted state transition. Events are never mutated or
// deleted once appended.
type Event struct {
	TxID     id.TxID        `json:"tx_id"`
	Action   id.Action      `json:"action"`
	AssetID  id.AssetID     `json:"asset_id"`
	Party    id.Participant `json:"party"`
	Height   uint64         `json:"height"`
	PrevHash string         `json:"prev_hash"`
	Hash     string         `json:"hash"`
}

// GenesisHash anchors the chain before the first event.
var GenesisHash = hex.EncodeToString(make([]byte, 32))

// seal computes the event's chain hash from its content and the previous
// event's hash. Stores call this while holding the append lock.
func seal(prevHash string, e Event) Event {
	e.PrevHash = prevHash
	digest := sha3.Sum256(fmt.Appendf(nil, "%d|%s|%d|%s|%d|%s",
		uint64(e.TxID), e.Action, uint64(e.AssetID), e.Party, e.Height, e.PrevHash))
	e.Hash = hex.EncodeToString(digest[:])
	return e
}

// VerifyChain checks that a contiguous run of events starting at the genesis
// anchor has unbroken ids and an intact hash chain.
func VerifyChain(run []Event) error {
	prevHash := GenesisHash
	for i, e := range run {
		if uint64(e.TxID) != uint64(i)+1 {
			return fmt.Errorf("event %d: expected tx id %d, got %d", i, i+1, e.TxID)
		}
		resealed := seal(prevHash, Event{
			TxID: e.TxID, Action: e.Action, AssetID: e.AssetID, Party: e.Party, Height: e.Height,
		})
		if resealed.Hash != e.Hash || resealed.PrevHash != e.PrevHash {
			return fmt.Errorf("event %d: hash chain broken", e.TxID)
		}
		prevHash = e.Hash
	}
	return nil
}

// StreamPayload is the JSON structure published to the event stream. Field
// names are part of the consumer contract; change them only with a topic
// version bump.
type StreamPayload struct {
	TxID     uint64 `json:"tx_id"`
	Action   string `json:"action"`
	AssetID  uint64 `json:"asset_id"`
	Party    string `json:"party"`
	Height   uint64 `json:"height"`
	PrevHash string `json:"prev_hash"`
	Hash     string `json:"hash"`
}

// MarshalStreamPayload encodes an event for the outbox / stream.
func MarshalStreamPayload(e Event) ([]byte, error) {
	return json.Marshal(StreamPayload{
		TxID:     uint64(e.TxID),
		Action:   e.Action.String(),
		AssetID:  uint64(e.AssetID),
		Party:    e.Party.String(),
		Height:   e.Height,
		PrevHash: e.PrevHash,
		Hash:     e.Hash,
	})
}
