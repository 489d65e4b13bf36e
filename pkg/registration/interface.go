package registration

import "context"

// Item links one uploaded photo to the checklist entry it documents.
type Item struct {
	ContextID int64  `json:"contextId" bson:"contextId"`
	URL       string `json:"url" bson:"url"`
}

// Registrar records uploaded photos against a service record. A nil error
// means every item was persisted.
type Registrar interface {
	Register(ctx context.Context, recordID int64, items []Item) error
}
