package scheduler

// UniformSampler draws an unbiased uniform integer from a closed interval.
// Satisfied by *randsrc.Source; kept as an interface here so the release-time
// algorithm can be tested against a deterministic stand-in.
type UniformSampler interface {
	UniformIntClosed(lower, upper int64) int64
}

// DelayScheduler is the anti-fingerprinting engine: it decorrelates the
// timing between captured events and their emission to the compositor,
// while preserving admit order for every kind except pointer motion.
type DelayScheduler struct {
	queue       *ScheduledQueue
	rng         UniformSampler
	maxDelayMs  int64
	prevRelease int64
}

// New returns a DelayScheduler bounding every delay to [0, maxDelayMs].
func New(rng UniformSampler, maxDelayMs int64) *DelayScheduler {
	return &DelayScheduler{
		queue:      NewQueue(),
		rng:        rng,
		maxDelayMs: maxDelayMs,
	}
}

// Admit appends a non-motion packet with a release time drawn per the
// release-time algorithm: the lower bound is clamped so the new release
// time can never precede the previous one, and capped so the lower bound
// never exceeds maxDelayMs.
func (s *DelayScheduler) Admit(p InputPacket, now int64) {
	lower := s.prevRelease - now
	if lower < 0 {
		lower = 0
	}
	if lower > s.maxDelayMs {
		lower = s.maxDelayMs
	}

	delay := s.rng.UniformIntClosed(lower, s.maxDelayMs)
	release := now + delay

	p.ReleaseTime = release
	s.prevRelease = release
	s.queue.Push(p)
}

// NextReleaseTime returns the release time of the head packet, or false if
// the queue is empty.
func (s *DelayScheduler) NextReleaseTime() (int64, bool) {
	p, ok := s.queue.Peek()
	if !ok {
		return 0, false
	}
	return p.ReleaseTime, true
}

// DrainReady removes and returns every packet ready for release at now.
func (s *DelayScheduler) DrainReady(now int64) []InputPacket {
	return s.queue.DrainReady(now)
}

// Len returns the number of packets currently queued.
func (s *DelayScheduler) Len() int {
	return s.queue.Len()
}
