package library

import (
	"time"
)

// Event topics, before any deployment prefix is applied.
const (
	TopicStructureImported = "structure.imported"
	TopicStructureDeleted  = "structure.deleted"
)

// EventType tells imported and deleted events apart on the wire.
type EventType string

const (
	EventImported EventType = "imported"
	EventDeleted  EventType = "deleted"
)

// Event announces a library change. The key on the bus is StructureID.
type Event struct {
	Type        EventType `json:"type"`
	StructureID string    `json:"structure_id"`
	Format      string    `json:"format"`
	DocumentKey string    `json:"document_key"`
	ContentHash string    `json:"content_hash"`
	OccurredAt  time.Time `json:"occurred_at"`
}

func newEvent(t EventType, s *Structure) Event {
	return Event{
		Type:        t,
		StructureID: s.ID.String(),
		Format:      s.Format,
		DocumentKey: s.DocumentKey,
		ContentHash: s.ContentHash,
		OccurredAt:  time.Now().UTC(),
	}
}

// ImportedEvent is raised after s has been stored.
func ImportedEvent(s *Structure) Event { return newEvent(EventImported, s) }

// DeletedEvent is raised after s has been removed.
func DeletedEvent(s *Structure) Event { return newEvent(EventDeleted, s) }

// Topic is the topic e is published on.
func (e Event) Topic() string {
	if e.Type == EventDeleted {
		return TopicStructureDeleted
	}
	return TopicStructureImported
}

//Personal.AI order the ending
