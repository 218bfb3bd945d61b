package redisx

import "time"

const (
	// Session lookup: session:{token} -> JSON user
	KeySession = "session:%s"

	// Cart hash per user: cart:{user_id}, field item_id -> JSON line
	KeyCart = "cart:%s"

	// Reverse index for the item feed: cart_holders:{item_id} -> set of user ids
	KeyCartHolders = "cart_holders:%s"

	// Dedup event processing: dedup:{service}:{event_id}
	KeyDedup = "dedup:%s:%s"
)

var (
	TTLCart  = 48 * time.Hour
	TTLDedup = 48 * time.Hour
)
