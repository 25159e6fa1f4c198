package session

// Bucket maps a server-assigned rank onto the qualitative closeness label
// shown next to a guess. Display-only; thresholds are fixed.
func Bucket(rank int) string {
	switch {
	case rank < 100:
		return "очень близко"
	case rank < 500:
		return "близко"
	case rank < 1000:
		return "средне"
	default:
		return "далеко"
	}
}
