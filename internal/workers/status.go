package workers

// GetStatus returns a snapshot of every registered worker's health, keyed by
// worker name. Callers poll this instead of the scheduler pushing state.
func (s *Scheduler) GetStatus() map[string]WorkerHealth {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := make(map[string]WorkerHealth, len(s.workers))
	for _, w := range s.workers {
		if hw, ok := w.(WorkerWithHealth); ok {
			status[w.Name()] = hw.Health()
		}
	}
	return status
}
