package services

import "math/rand"

// EventBroadcaster — то, что сервисам нужно от WebSocket-хаба.
type EventBroadcaster interface {
	BroadcastToRoom(roomID string, message interface{})
}

// drawMaps выбирает n случайных карт из пула без повторов.
// Если пул меньше n, возвращается перемешанный пул целиком.
func drawMaps(pool []string, n int) []string {
	shuffled := make([]string, len(pool))
	copy(shuffled, pool)
	rand.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if n > len(shuffled) {
		n = len(shuffled)
	}
	return shuffled[:n]
}
