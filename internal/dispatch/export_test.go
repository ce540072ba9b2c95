package dispatch

// FastBudget exposes the extraction counter to tests.
func (d *Dispatcher) FastBudget() int64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fastBudget
}
