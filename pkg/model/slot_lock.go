package model

import "time"

// SlotLock is an advisory lock serializing commit attempts for one slot.
// The _id encodes (academy, sport, court, date, start); a second insert for
// the same slot fails with a duplicate key error, which is how a concurrent
// committer loses the race before the transaction even starts.
type SlotLock struct {
	ID        string    `bson:"_id" json:"id"`
	ExpiresAt time.Time `bson:"expires_at" json:"expires_at"`
	CreatedAt time.Time `bson:"created_at" json:"created_at"`
}
