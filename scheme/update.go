package scheme

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Update drives one tick: every running block's Hook.Update is called,
// in the cached topological order of the ESG, so a block never runs
// before the blocks that feed it (spec §4.8). A block that is not
// currently running is skipped. Update is best-effort: a failing
// block's error is recorded and execution continues with the next
// block in order, so one erroring block does not starve the rest of the
// schedule (a block whose Update blocks still stalls the whole tick). All per-block errors are joined (errors.Join)
// into the single returned error; a nil return means every running
// block updated cleanly.
//
// Update returns ErrCyclicSchedule without touching any block if the
// cached order is not currently valid (the scheme was left in a cyclic
// state by a prior rejected mutation that the caller didn't roll back,
// or Executable() would report false).
func (s *Scheme) Update(t time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.graph.order == nil {
		return fmt.Errorf("scheme: Update: %w", ErrCyclicSchedule)
	}

	start := time.Now()
	var errs []error
	for _, name := range s.graph.order {
		v := s.blocks.lookup(name)
		if v == nil || v.peer.State() != StateRunning {
			continue
		}
		if err := v.hook.Update(t); err != nil {
			s.logger.Warn("block update failed", blockField(name), zap.Error(err))
			if s.metrics != nil {
				s.metrics.tickBlockFailuresTotal.Inc()
			}
			errs = append(errs, fmt.Errorf("%s: %w", name, err))
		}
	}
	s.lastUpdate = t

	if s.metrics != nil {
		s.metrics.tickDuration.Observe(time.Since(start).Seconds())
		s.metrics.conflictsTotal.Set(float64(s.countConflictEdgesLocked()))
	}

	return errors.Join(errs...)
}

// LastUpdate returns the timestamp passed to the most recent call to
// Update that ran the schedule (including one whose blocks reported
// errors), or the zero time if no such call has been made.
func (s *Scheme) LastUpdate() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastUpdate
}

func (s *Scheme) countConflictEdgesLocked() int {
	total := 0
	for _, neighbors := range s.graph.rcg {
		total += len(neighbors)
	}
	return total / 2
}
