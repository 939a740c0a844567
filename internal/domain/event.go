package domain

import "time"

const (
	KafkaTopicOrphanedBlobs = "commission-orphaned-blobs"
	KafkaGroupID            = "commission-orphan-reclaimer"
)

// OrphanedBlobs is published when keys written during a failed request
// could not be deleted inline.
type OrphanedBlobs struct {
	ID         string    `json:"id"`
	Keys       []string  `json:"keys"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
