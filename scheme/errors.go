package scheme

import "errors"

// Sentinel errors returned by Scheme operations. Every exported method
// documents which of these it can return; callers should match with
// errors.Is rather than comparing error strings.
var (
	// ErrMissingHook is returned by AddBlock when the peer's Hook() is nil.
	ErrMissingHook = errors.New("scheme: block is missing the hook interface")

	// ErrNotInScheme is returned when a name does not resolve to a block
	// currently held by the scheme.
	ErrNotInScheme = errors.New("scheme: block not in scheme")

	// ErrNameCollision is returned when a group name collides with an
	// existing block name, or a block name with an existing group name.
	ErrNameCollision = errors.New("scheme: name collides with an existing block or group")

	// ErrUnknownName is returned when a name resolves to neither a block
	// nor a group.
	ErrUnknownName = errors.New("scheme: unknown block or group name")

	// ErrUnknownMember is returned by SetGroup when a proposed member
	// resolves to neither a block nor a group; the group is left
	// unchanged.
	ErrUnknownMember = errors.New("scheme: unknown group member")

	// ErrNotConfigured is returned by EnableBlock when the target block
	// is neither Configured nor Running.
	ErrNotConfigured = errors.New("scheme: block is not configured")

	// ErrConflict is returned by EnableBlock (force=false) when a
	// running RCG neighbor would need to be disabled first.
	ErrConflict = errors.New("scheme: block conflicts with a running block")

	// ErrStartFailed is returned when a block rejects Start().
	ErrStartFailed = errors.New("scheme: block failed to start")

	// ErrStopFailed is returned when a block rejects Stop().
	ErrStopFailed = errors.New("scheme: block failed to stop")

	// ErrCyclicSchedule is returned when an operation would leave the
	// ESG without a topological ordering; the triggering change is
	// rolled back before this is returned.
	ErrCyclicSchedule = errors.New("scheme: execution scheduling graph is cyclic")

	// ErrNoSuchEdge is returned by strict-mode latch operations that
	// target a data-flow edge which does not exist.
	ErrNoSuchEdge = errors.New("scheme: no such data-flow edge")

	// ErrCycleSearchTruncated is returned by GetFlowCycles/
	// GetExecutionCycles instead of a result when the scheme holds more
	// than MaxCycleSearchVertices blocks.
	ErrCycleSearchTruncated = errors.New("scheme: cycle search truncated at vertex cap")
)
