package scheme

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Scheme is a deterministic execution scheme: a container of blocks, a
// Data-Flow Graph, a derived Execution Scheduling Graph, a derived
// Resource Conflict Graph, a group registry, and the enable/disable
// policy and update driver that operate on them.
//
// Concurrency: a Scheme is driven from a single goroutine (its "own
// thread" in spec terms). Every exported method takes the same
// internal mutex, so enable/disable/switch calls are atomic with
// respect to Update, as required by spec §5. The scheme performs no
// blocking I/O of its own; a slow Hook.Update can stall a tick, and
// the scheme does not interrupt it.
type Scheme struct {
	mu sync.Mutex

	blocks *blockTable
	graph  *graphModel
	groups map[string]map[string]struct{}

	// explicitLatch records edges latched via LatchConnection/Latch,
	// keyed by block-name pair. It survives regenerate's full DFG/ESG
	// rebuilds, unlike the derived per-edge latched flag itself.
	explicitLatch map[edgeKey]bool

	lastUpdate time.Time

	logger  *zap.Logger
	metrics *metrics
}

// Option configures a Scheme at construction time.
type Option func(*Scheme)

// WithLogger overrides the default no-op logger.
func WithLogger(logger *zap.Logger) Option {
	return func(s *Scheme) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithMetricsNamespace sets the Prometheus metric namespace (default
// "conman"). Pass "" to turn metrics off: the Scheme then keeps no
// collectors at all.
func WithMetricsNamespace(namespace string) Option {
	return func(s *Scheme) {
		if namespace == "" {
			s.metrics = nil
			return
		}
		s.metrics = newMetrics(namespace)
	}
}

// NewScheme constructs an empty Scheme.
func NewScheme(opts ...Option) *Scheme {
	s := &Scheme{
		blocks:        newBlockTable(),
		graph:         newGraphModel(),
		groups:        make(map[string]map[string]struct{}),
		explicitLatch: make(map[edgeKey]bool),
		logger:        zap.NewNop(),
		metrics:       newMetrics("conman"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddBlock adds a new block to the scheme under peer.Name(). Returns
// ErrMissingHook if peer.Hook() is nil, and ErrNameCollision if the
// name is already used by a group. Returns ErrCyclicSchedule (with the
// addition rolled back) if adding the block's connections would make
// the ESG cyclic — topology never silently accepts a schedule it can't
// run.
//
// On success the block's activity binding to the scheme's own activity
// is the host framework's responsibility (spec §6); this Go rendition
// has no thread/activity primitive of its own to rebind.
func (s *Scheme) AddBlock(peer Peer) error {
	if peer == nil {
		return fmt.Errorf("scheme: AddBlock: %w", ErrMissingHook)
	}
	hook := peer.Hook()
	if hook == nil {
		return fmt.Errorf("scheme: AddBlock(%q): %w", peer.Name(), ErrMissingHook)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	name := peer.Name()
	if _, isGroup := s.groups[name]; isGroup {
		return fmt.Errorf("scheme: AddBlock(%q): %w", name, ErrNameCollision)
	}
	if s.blocks.has(name) {
		// Idempotent: re-adding the same name is a no-op success.
		return nil
	}

	s.blocks.add(&blockVertex{name: name, peer: peer, hook: hook})

	if err := s.recomputeAllLocked(); err != nil {
		// Roll back: remove the block we just added and recompute again
		// so the scheme is left exactly as it was before this call.
		s.blocks.remove(name)
		_ = s.recomputeAllLocked()
		s.logger.Error("add block rejected: would make schedule cyclic",
			blockField(name), zap.Error(err))
		return fmt.Errorf("scheme: AddBlock(%q): %w", name, err)
	}

	s.logger.Info("block added", blockField(name), zap.Int("blocks", s.blocks.size()))
	s.logExecutionOrdering()
	if s.metrics != nil {
		s.metrics.blocksTotal.Set(float64(s.blocks.size()))
	}
	return nil
}

// RemoveBlock removes the named block. Idempotent: removing a block
// not currently in the scheme succeeds (mirrors the host-framework
// "succeed if the block isn't already in the scheme" behavior of the
// original implementation).
func (s *Scheme) RemoveBlock(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.blocks.has(name) {
		return nil
	}
	s.blocks.remove(name)
	for key := range s.explicitLatch {
		if key.source == name || key.sink == name {
			delete(s.explicitLatch, key)
		}
	}
	// Removing a vertex only removes edges. recomputeAllLocked re-scans
	// the remaining blocks' current port wiring, so it fails here only
	// if that wiring is itself cyclic; the removal stands either way and
	// the cached order is then left nil.
	_ = s.recomputeAllLocked()

	s.logger.Info("block removed", blockField(name), zap.Int("blocks", s.blocks.size()))
	if s.metrics != nil {
		s.metrics.blocksTotal.Set(float64(s.blocks.size()))
	}
	return nil
}

// GetBlocks returns block names in insertion order.
func (s *Scheme) GetBlocks() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.blocks.names()
}

func (s *Scheme) logExecutionOrdering() {
	s.logger.Debug("scheme ordering", zap.Strings("order", s.graph.order))
}
