// ===== internal/channel/selection.go =====
package channel

// EvenlyDistributedSelection picks count channels spread evenly across
// channels for the given tick. Picks are step = len(channels)/count apart,
// starting at tick modulo len(channels), so successive ticks rotate every
// interface through the whole list.
//
// When there are more interfaces than channels the step is clamped to one and
// the walk keeps wrapping, so every interface still gets a channel and
// channels repeat.
func EvenlyDistributedSelection(channels []int, count, tick int) []int {
	n := len(channels)
	if n == 0 || count <= 0 {
		return nil
	}

	offset := tick % n
	if offset < 0 {
		offset += n
	}

	if n == 1 {
		selected := make([]int, count)
		for i := range selected {
			selected[i] = channels[0]
		}
		return selected
	}
	if count == 1 {
		return []int{channels[offset]}
	}

	step := n / count
	if step < 1 {
		step = 1
	}

	selected := make([]int, count)
	for i := range selected {
		selected[i] = channels[(i*step+offset)%n]
	}
	return selected
}
