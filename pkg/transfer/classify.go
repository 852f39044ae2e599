package transfer

// Classify determines the direction of a decoded transfer relative to the
// watched address set. The second return value is false when neither side
// is watched and the transfer should be discarded.
//
// A transfer between two watched addresses classifies as IN: the recipient
// check runs first and wins.
func Classify(d *Decoded, watched WatchedSet) (Direction, bool) {
	if watched.Contains(d.To) {
		return DirectionIn, true
	}
	if watched.Contains(d.From) {
		return DirectionOut, true
	}
	return "", false
}
