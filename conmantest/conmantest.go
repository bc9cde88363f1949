// Package conmantest provides an in-memory Hook/Peer pair usable by
// scheme's own tests and by integrators exercising the scheme package
// without a real host component framework.
package conmantest

import (
	"fmt"
	"sync"
	"time"

	"github.com/concord-systems/conman/scheme"
)

// Block is an in-memory scheme.Peer/scheme.Hook double. Its ports are
// declared up front and its channel routing is mutable afterwards via
// Connect, so tests can wire up a Data-Flow Graph without a real
// component registry. Every method is safe for concurrent use.
type Block struct {
	mu sync.Mutex

	name   string
	period time.Duration
	state  scheme.TaskState

	ports          map[string]*port
	outputLayers   map[string]int
	inputExclusive map[string]scheme.Exclusivity

	startFails bool
	stopFails  bool
	updateErr  error

	updates   int
	lastTick  time.Time
	starts    int
	stops     int
}

type port struct {
	direction scheme.PortDirection
	channels  []scheme.ChannelEndpoint
}

// NewBlock constructs a Block named name, initially in StateConfigured.
func NewBlock(name string) *Block {
	return &Block{
		name:           name,
		period:         100 * time.Millisecond,
		state:          scheme.StateConfigured,
		ports:          make(map[string]*port),
		outputLayers:   make(map[string]int),
		inputExclusive: make(map[string]scheme.Exclusivity),
	}
}

// WithInputPort declares an input port named name with the given
// exclusivity and returns the Block for chaining.
func (b *Block) WithInputPort(name string, mode scheme.Exclusivity) *Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ports[name] = &port{direction: scheme.PortInput}
	b.inputExclusive[name] = mode
	return b
}

// WithOutputPort declares an output port named name on layer 0 and
// returns the Block for chaining.
func (b *Block) WithOutputPort(name string) *Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ports[name] = &port{direction: scheme.PortOutput}
	b.outputLayers[name] = 0
	return b
}

// Connect routes this Block's output port outPort to sinkBlock's input
// port inPort, so regenerate picks up a Data-Flow Graph edge between
// them.
func (b *Block) Connect(outPort, sinkBlock, inPort string) *Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	p := b.ports[outPort]
	p.channels = append(p.channels, scheme.ChannelEndpoint{BlockName: sinkBlock, PortName: inPort})
	return b
}

// FailStart makes the next Start call (and every one after, until
// FailStart(false)) report failure.
func (b *Block) FailStart(fail bool) *Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.startFails = fail
	return b
}

// FailStop is FailStart's mirror for Stop.
func (b *Block) FailStop(fail bool) *Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.stopFails = fail
	return b
}

// FailUpdate makes every subsequent Update call return err (nil clears
// the failure).
func (b *Block) FailUpdate(err error) *Block {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updateErr = err
	return b
}

// Updates reports how many times Update has been called.
func (b *Block) Updates() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.updates
}

// Name implements scheme.Peer.
func (b *Block) Name() string { return b.name }

// Hook implements scheme.Peer.
func (b *Block) Hook() scheme.Hook { return b }

// State implements scheme.Peer.
func (b *Block) State() scheme.TaskState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Start implements scheme.Peer.
func (b *Block) Start() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.startFails {
		return false
	}
	b.state = scheme.StateRunning
	b.starts++
	return true
}

// Stop implements scheme.Peer.
func (b *Block) Stop() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.stopFails {
		return false
	}
	b.state = scheme.StateConfigured
	b.stops++
	return true
}

// Ports implements scheme.Peer.
func (b *Block) Ports() []scheme.PortDescriptor {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := make([]scheme.PortDescriptor, 0, len(b.ports))
	for name, p := range b.ports {
		name, p := name, p
		out = append(out, scheme.PortDescriptor{
			Name:      name,
			Direction: p.direction,
			Channels: func() []scheme.ChannelEndpoint {
				b.mu.Lock()
				defer b.mu.Unlock()
				return append([]scheme.ChannelEndpoint(nil), p.channels...)
			},
		})
	}
	return out
}

// Period implements scheme.Hook.
func (b *Block) Period() time.Duration {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.period
}

// SetOutputLayer implements scheme.Hook.
func (b *Block) SetOutputLayer(port string, layer int) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.ports[port]; !ok {
		return fmt.Errorf("conmantest: %s: unknown port %q", b.name, port)
	}
	b.outputLayers[port] = layer
	return nil
}

// GetOutputLayer implements scheme.Hook.
func (b *Block) GetOutputLayer(port string) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.ports[port]; !ok {
		return 0, fmt.Errorf("conmantest: %s: unknown port %q", b.name, port)
	}
	return b.outputLayers[port], nil
}

// SetInputExclusivity implements scheme.Hook.
func (b *Block) SetInputExclusivity(port string, mode scheme.Exclusivity) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.ports[port]; !ok {
		return fmt.Errorf("conmantest: %s: unknown port %q", b.name, port)
	}
	b.inputExclusive[port] = mode
	return nil
}

// GetInputExclusivity implements scheme.Hook.
func (b *Block) GetInputExclusivity(port string) (scheme.Exclusivity, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	mode, ok := b.inputExclusive[port]
	if !ok {
		return scheme.Unrestricted, fmt.Errorf("conmantest: %s: unknown port %q", b.name, port)
	}
	return mode, nil
}

// PortsOnLayer implements scheme.Hook.
func (b *Block) PortsOnLayer(layer int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []string
	for name, l := range b.outputLayers {
		if l == layer {
			out = append(out, name)
		}
	}
	return out
}

// SetReadHardwareHook implements scheme.Hook as a no-op.
func (b *Block) SetReadHardwareHook(op string) error { return nil }

// SetComputeEstimationHook implements scheme.Hook as a no-op.
func (b *Block) SetComputeEstimationHook(op string) error { return nil }

// SetComputeControlHook implements scheme.Hook as a no-op.
func (b *Block) SetComputeControlHook(op string) error { return nil }

// SetWriteHardwareHook implements scheme.Hook as a no-op.
func (b *Block) SetWriteHardwareHook(op string) error { return nil }

// Init implements scheme.Hook.
func (b *Block) Init(t time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.lastTick = t
	return nil
}

// Update implements scheme.Hook, recording the call and returning
// whatever error FailUpdate configured.
func (b *Block) Update(t time.Time) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updates++
	b.lastTick = t
	return b.updateErr
}
