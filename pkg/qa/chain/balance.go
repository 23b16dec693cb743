package chain

// BalanceLanes splits lanes parallel lanes evenly over steps stages,
// rounding up. A single lane, or no steps, always gives one worker.
func BalanceLanes(lanes, steps int) int {
	if lanes <= 1 || steps <= 0 {
		return 1
	}
	return (lanes + steps - 1) / steps
}
