package scheme

import "time"

// Exclusivity is the access mode of an input port. EXCLUSIVE inputs
// induce conflicts between the blocks feeding them.
type Exclusivity int

const (
	// Unrestricted ports may be fed by any number of source blocks
	// without inducing a conflict.
	Unrestricted Exclusivity = iota
	// Exclusive ports induce a conflict edge between every pair of
	// distinct blocks that write to them.
	Exclusive
)

// String renders the exclusivity mode for logs and test failure output.
func (e Exclusivity) String() string {
	if e == Exclusive {
		return "EXCLUSIVE"
	}
	return "UNRESTRICTED"
}

// PortDirection classifies a block's port.
type PortDirection int

const (
	// PortInput ports are sinks of a data-flow connection.
	PortInput PortDirection = iota
	// PortOutput ports are sources of a data-flow connection.
	PortOutput
)

// ChannelEndpoint names the far end of a connected output-port channel.
type ChannelEndpoint struct {
	BlockName string
	PortName  string
}

// PortDescriptor describes one port of a block, as reported by the
// host framework's port/connection discovery contract (spec §6).
// Channels is consulted only for PortOutput ports; it enumerates the
// currently connected sink endpoints and is the sole source of DFG
// edges (topology.regenerate calls it once per output port per tick
// of topology maintenance).
type PortDescriptor struct {
	Name      string
	Direction PortDirection
	Channels  func() []ChannelEndpoint
}

// Hook is the uniform, block-local interface the scheme invokes to
// read a block's nominal period, query or set its port layer and
// input exclusivity, and run its per-tick update. A block is accepted
// by AddBlock only if its Peer.Hook() is non-nil.
type Hook interface {
	// Period reports the block's nominal execution period. Informational
	// only; the scheme does not enforce it.
	Period() time.Duration

	SetOutputLayer(port string, layer int) error
	GetOutputLayer(port string) (int, error)

	SetInputExclusivity(port string, mode Exclusivity) error
	GetInputExclusivity(port string) (Exclusivity, error)

	// PortsOnLayer returns the names of this block's output ports
	// tagged with the given layer.
	PortsOnLayer(layer int) []string

	// SetReadHardwareHook, SetComputeEstimationHook,
	// SetComputeControlHook and SetWriteHardwareHook name the
	// block-local callback to invoke in each execution phase. The
	// scheme stores these only to pass through to the block; it does
	// not interpret op.
	SetReadHardwareHook(op string) error
	SetComputeEstimationHook(op string) error
	SetComputeControlHook(op string) error
	SetWriteHardwareHook(op string) error

	// Init is called synchronously each time the scheme attempts to
	// enable the block, just before Start; it runs even if Start then
	// fails.
	Init(t time.Time) error

	// Update is called once per tick while the block is Running. A
	// non-nil error signals a scheme-level error for that tick but
	// does not stop the remaining blocks in the ESG order from being
	// invoked.
	Update(t time.Time) error
}

// TaskState mirrors the subset of host-framework lifecycle states the
// scheme cares about. Any state other than StateConfigured/StateRunning
// is treated as "not enabled" per spec §4.7.
type TaskState int

const (
	StateUnknown TaskState = iota
	StateConfigured
	StateRunning
)

// String renders the task state for logs and test failure output.
func (s TaskState) String() string {
	switch s {
	case StateConfigured:
		return "Configured"
	case StateRunning:
		return "Running"
	default:
		return "Unknown"
	}
}

// Peer is the host-framework contract the scheme consumes for one
// block: its identity, its Hook, its ports (and, transitively, their
// connections), its runtime state, and the Start/Stop primitives the
// enable/disable policy drives. The scheme references a Peer but does
// not own its lifetime; a Peer added to a Scheme must outlive its
// removal from that Scheme.
type Peer interface {
	Name() string
	Hook() Hook
	Ports() []PortDescriptor
	State() TaskState
	Start() bool
	Stop() bool
}
