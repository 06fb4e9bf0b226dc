package event

import (
	"time"
)

type Type string

const (
	TypePromptSaved      Type = "prompt_saved"
	TypePromptUpdated    Type = "prompt_updated"
	TypePromptRemoved    Type = "prompt_removed"
	TypePromptMoved      Type = "prompt_moved"
	TypePromptRated      Type = "prompt_rated"
	TypeTemplateCreated  Type = "template_created"
	TypeTemplateUpdated  Type = "template_updated"
	TypeTemplateDeleted  Type = "template_deleted"
	TypeFolderCreated    Type = "folder_created"
	TypeFolderDeleted    Type = "folder_deleted"
	TypeCatalogRefreshed Type = "catalog_refreshed"
	TypeLibraryImported  Type = "library_imported"
)

// Channel groups event types that share one subscription.
type Channel string

const (
	ChannelLibrary Channel = "library"
	ChannelCatalog Channel = "catalog"
)

// Channels lists every channel, in subscription order.
var Channels = []Channel{ChannelLibrary, ChannelCatalog}

var typeToChannel = map[Type]Channel{
	TypePromptSaved:      ChannelLibrary,
	TypePromptUpdated:    ChannelLibrary,
	TypePromptRemoved:    ChannelLibrary,
	TypePromptMoved:      ChannelLibrary,
	TypeTemplateCreated:  ChannelLibrary,
	TypeTemplateUpdated:  ChannelLibrary,
	TypeTemplateDeleted:  ChannelLibrary,
	TypeFolderCreated:    ChannelLibrary,
	TypeFolderDeleted:    ChannelLibrary,
	TypeLibraryImported:  ChannelLibrary,
	TypePromptRated:      ChannelCatalog,
	TypeCatalogRefreshed: ChannelCatalog,
}

// ChannelFor returns the channel for a given event type.
func ChannelFor(t Type) Channel { return typeToChannel[t] }

// Event carries identifiers only, not full state.
// Subscribers fetch fresh state from the library.
type Event struct {
	Type      Type      `json:"type"`
	EntityID  string    `json:"entity_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func New(eventType Type, entityID string) Event {
	return Event{
		Type:      eventType,
		EntityID:  entityID,
		Timestamp: time.Now().UTC(),
	}
}
