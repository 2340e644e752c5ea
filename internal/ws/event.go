package ws

// Типы событий живой ленты склада.
const (
	EventItemCreated       = "item_created"
	EventItemUpdated       = "item_updated"
	EventItemDeleted       = "item_deleted"
	EventInventoryReplaced = "inventory_replaced"
	EventEntryAdded        = "entry_added"
)

// Event — исходящее сообщение клиентам ленты.
type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}
