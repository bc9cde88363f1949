// Package scheme is a deterministic execution scheme for real-time
// control blocks.
//
// A Scheme accepts independent computational units ("blocks") from a
// host component framework, models the data-flow connections between
// their ports as a Data-Flow Graph (DFG), derives a safe per-tick
// Execution Scheduling Graph (ESG) by excluding latched feedback
// edges, derives a Resource Conflict Graph (RCG) from exclusive input
// ports, and drives a cooperative update cycle that invokes each
// enabled block's hook exactly once per tick in topological order.
//
// Three graphs share one block arena:
//
//	hook.go      — Hook/Peer contracts a host framework implements (C1)
//	vertex.go    — block arena: stable dense indices, name lookup (C2)
//	graphs.go    — DFG/ESG/RCG adjacency + edge property stores (C2)
//	topology.go  — regenerate + topological sort (C3)
//	conflict.go  — RCG derivation (C4)
//	group.go     — named, recursively expanding block sets (C5)
//	latch.go     — feedback-edge marking (C6)
//	enable.go    — conflict-aware enable/disable/switch policy (C7)
//	update.go    — per-tick traversal (C8)
//	introspect.go / cycles.go — inspection queries (C9)
//
// The scheme itself never blocks and never spawns goroutines; it is
// driven entirely by its host calling AddBlock/RemoveBlock/group and
// latch operations between ticks, and Update once per tick, all from
// the same goroutine (see the package-level concurrency note on
// Scheme).
package scheme
