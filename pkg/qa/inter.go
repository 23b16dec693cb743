package qa

import "time"

type PayloadProvider interface {
	// Payload returns the carried item
	Payload() any
	// CreatedAt time the item entered the pipeline (UTC)
	CreatedAt() time.Time
}

var _ PayloadProvider = Message{}
