package swmesh

import "sync/atomic"

// Stats is a point-in-time snapshot of loader activity.
type Stats struct {
	Loaded     int64 // files decoded successfully
	Failed     int64 // files that failed to read or decode
	BytesRead  int64 // raw bytes obtained from the store
	Active     int64 // loads currently in flight
	PeakActive int64 // highest observed concurrent loads
}

// loaderStats tracks activity with atomics so concurrent loads never
// contend on a lock for bookkeeping.
type loaderStats struct {
	loaded    atomic.Int64
	failed    atomic.Int64
	bytesRead atomic.Int64
	active    atomic.Int64
	peak      atomic.Int64
}

func (s *loaderStats) enter() {
	a := s.active.Add(1)
	for {
		p := s.peak.Load()
		if a <= p || s.peak.CompareAndSwap(p, a) {
			return
		}
	}
}

func (s *loaderStats) exit() {
	s.active.Add(-1)
}

func (s *loaderStats) success(bytes int) {
	s.loaded.Add(1)
	s.bytesRead.Add(int64(bytes))
}

func (s *loaderStats) failure(bytes int) {
	s.failed.Add(1)
	s.bytesRead.Add(int64(bytes))
}

func (s *loaderStats) snapshot() Stats {
	return Stats{
		Loaded:     s.loaded.Load(),
		Failed:     s.failed.Load(),
		BytesRead:  s.bytesRead.Load(),
		Active:     s.active.Load(),
		PeakActive: s.peak.Load(),
	}
}
