package cache

import "strings"

const keyPrefix = "board:"

// Key kinds, used as the "kind" metrics label.
const (
	KindAllFlights = "all_flights"
	KindOther      = "other"
)

// AllFlightsKey caches GET /api/all_flights?date=... as
// board:all_flights:{date}.
func AllFlightsKey(date string) string {
	return keyPrefix + KindAllFlights + ":" + date
}

// KeyKind returns the board a key belongs to, or KindOther for keys this
// service did not build.
func KeyKind(key string) string {
	rest, ok := strings.CutPrefix(key, keyPrefix)
	if !ok {
		return KindOther
	}
	kind, _, ok := strings.Cut(rest, ":")
	if !ok || kind != KindAllFlights {
		return KindOther
	}
	return kind
}
