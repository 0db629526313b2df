package models

import "time"

// MediaMeta is the side record kept per stored file, keyed by storage key.
type MediaMeta struct {
	Key       string    `json:"key" bson:"key"`
	NoIndex   bool      `json:"noindex" bson:"noindex"`
	CreatedAt time.Time `json:"created_at" bson:"createdAt"`
	UpdatedAt time.Time `json:"updated_at" bson:"updatedAt"`
}
