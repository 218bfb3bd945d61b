package events

const (
	TopicItemUpdated        = "item.updated"
	TopicOrderCreated       = "order.created"
	TopicOrderStatusChanged = "order.status_changed"
)

// Partition key = correlation id, so every event for one order (or one item)
// keeps its ordering.
func PartitionKey(id string) []byte { return []byte(id) }
