package storage

// cartKeyPrefix is the storage key namespace for persisted carts
const cartKeyPrefix = "pawradise_cart:"

// CartKey returns the storage key for a session's cart
func CartKey(sessionID string) string {
	return cartKeyPrefix + sessionID
}
