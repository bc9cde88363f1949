package scheme_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/concord-systems/conman/conmantest"
	"github.com/concord-systems/conman/scheme"
)

// ScenariosSuite runs the six literal end-to-end scenarios from the
// original spec, each as one suite method, asserting the exact
// documented expectations rather than just the individual operations
// they compose.
type ScenariosSuite struct {
	suite.Suite
}

func TestScenariosSuite(t *testing.T) {
	suite.Run(t, new(ScenariosSuite))
}

// S1: a freshly constructed scheme has no blocks, is trivially
// executable, and has a zero latch count along every measure.
func (s *ScenariosSuite) TestS1EmptyScheme() {
	sc := scheme.NewScheme()

	require.Empty(s.T(), sc.GetBlocks())
	require.True(s.T(), sc.Executable())
	require.Equal(s.T(), 0, sc.LatchCount(nil))

	maxCount, err := sc.MaxLatchCount()
	require.NoError(s.T(), err)
	require.Equal(s.T(), 0, maxCount)
}

// S2: a block with no hook is rejected; a valid block is accepted and
// grows the scheme; re-adding the same peer is idempotent. The
// original's name/pointer add-overload distinction doesn't carry over
// (AddBlockByName was dropped, see DESIGN.md) — this exercises the
// same invalid/valid/idempotent sequence through the one AddBlock.
func (s *ScenariosSuite) TestS2BlockAdditionSequence() {
	sc := scheme.NewScheme()

	require.ErrorIs(s.T(), sc.AddBlock(nil), scheme.ErrMissingHook)
	require.Empty(s.T(), sc.GetBlocks())

	vb1 := conmantest.NewBlock("vb1")
	require.NoError(s.T(), sc.AddBlock(vb1))
	require.Equal(s.T(), []string{"vb1"}, sc.GetBlocks())

	require.NoError(s.T(), sc.AddBlock(vb1))
	require.Equal(s.T(), []string{"vb1"}, sc.GetBlocks())

	vb2 := conmantest.NewBlock("vb2")
	require.NoError(s.T(), sc.AddBlock(vb2))
	require.Equal(s.T(), []string{"vb1", "vb2"}, sc.GetBlocks())
}

// S3: querying an unknown group fails cleanly and leaves nothing
// behind; an empty name and a repeated name are both valid groups.
func (s *ScenariosSuite) TestS3GroupRegistryBasics() {
	sc := scheme.NewScheme()

	require.False(s.T(), sc.HasGroup("fail"))
	_, err := sc.GetGroupMembers("fail")
	require.ErrorIs(s.T(), err, scheme.ErrUnknownName)

	require.NoError(s.T(), sc.AddGroup(""))
	require.NoError(s.T(), sc.AddGroup("win"))
	require.NoError(s.T(), sc.AddGroup("win"))
	require.True(s.T(), sc.HasGroup("win"))
}

// S4: a group defined in terms of other groups, one of which refers to
// itself, expands to exactly the member blocks — the self-reference
// resolves without looping forever.
func (s *ScenariosSuite) TestS4NestedSelfReferencingGroup() {
	sc := scheme.NewScheme()
	for _, name := range []string{"vb1", "vb2", "vb3"} {
		require.NoError(s.T(), sc.AddBlock(conmantest.NewBlock(name)))
	}

	require.NoError(s.T(), sc.SetGroup("win1", []string{"vb1"}))
	require.NoError(s.T(), sc.SetGroup("win2", []string{"vb2"}))
	require.NoError(s.T(), sc.SetGroup("win3", []string{"vb3"}))
	require.NoError(s.T(), sc.SetGroup("win123", []string{"win1", "win2", "win3", "win123"}))

	members, err := sc.GetGroupMembers("win123")
	require.NoError(s.T(), err)
	require.ElementsMatch(s.T(), []string{"vb1", "vb2", "vb3"}, members)
}

// S5: a and b both feed c's exclusive input, so they conflict. Enabling
// a then b without force is rejected and a keeps running; the same call
// with force cascades a forced disable of a before starting b.
func (s *ScenariosSuite) TestS5ConflictForcesCascadingDisable() {
	sc := scheme.NewScheme()
	a := conmantest.NewBlock("a").WithOutputPort("out").Connect("out", "c", "in")
	b := conmantest.NewBlock("b").WithOutputPort("out").Connect("out", "c", "in")
	c := conmantest.NewBlock("c").WithInputPort("in", scheme.Exclusive)
	require.NoError(s.T(), sc.AddBlock(a))
	require.NoError(s.T(), sc.AddBlock(b))
	require.NoError(s.T(), sc.AddBlock(c))

	require.NoError(s.T(), sc.EnableBlock("a", false))

	err := sc.EnableBlock("b", false)
	require.ErrorIs(s.T(), err, scheme.ErrConflict)
	require.Equal(s.T(), scheme.StateRunning, a.State())
	require.Equal(s.T(), scheme.StateConfigured, b.State())

	require.NoError(s.T(), sc.EnableBlock("b", true))
	require.Equal(s.T(), scheme.StateConfigured, a.State())
	require.Equal(s.T(), scheme.StateRunning, b.State())
}

// S6: a and b close a Data-Flow Graph cycle through a's output feeding
// b and b's output feeding back to a. The scheme never persists a
// cyclic schedule (invariant I6), so the cycle can only be observed
// here by wiring the closing edge directly on the peer after both
// blocks are already in the scheme (regenerate only re-scans port
// state on the next recompute) and then forcing that recompute by
// attempting to add an unrelated probe block — its own addition rolls
// back, but the recompute it triggers surfaces the a/b cycle that was
// already latent in their port wiring. Executable flips false once the
// cycle is visible, then true again once latch_connection breaks it.
func (s *ScenariosSuite) TestS6LatchingBreaksAFeedbackCycle() {
	sc := scheme.NewScheme()
	a := conmantest.NewBlock("a").
		WithInputPort("in", scheme.Unrestricted).
		WithOutputPort("out")
	b := conmantest.NewBlock("b").
		WithInputPort("in", scheme.Unrestricted).
		WithOutputPort("out").
		Connect("out", "a", "in")

	require.NoError(s.T(), sc.AddBlock(a))
	require.NoError(s.T(), sc.AddBlock(b))
	require.True(s.T(), sc.Executable())

	// Wire the closing edge directly on the peer, then force a recompute
	// by attempting to add an unrelated block.
	a.Connect("out", "b", "in")
	err := sc.AddBlock(conmantest.NewBlock("probe"))
	require.ErrorIs(s.T(), err, scheme.ErrCyclicSchedule)
	require.Equal(s.T(), []string{"a", "b"}, sc.GetBlocks())
	require.False(s.T(), sc.Executable())

	flowCycles, err := sc.GetFlowCycles()
	require.NoError(s.T(), err)
	require.Len(s.T(), flowCycles, 1)
	execCycles, err := sc.GetExecutionCycles()
	require.NoError(s.T(), err)
	require.Len(s.T(), execCycles, 1)

	require.NoError(s.T(), sc.LatchConnection("b", "a", true))
	require.True(s.T(), sc.Executable())

	execCycles, err = sc.GetExecutionCycles()
	require.NoError(s.T(), err)
	require.Empty(s.T(), execCycles)

	require.NoError(s.T(), sc.EnableBlock("a", false))
	require.NoError(s.T(), sc.EnableBlock("b", false))
	require.NoError(s.T(), sc.Update(time.Now()))
	require.Equal(s.T(), 1, a.Updates())
	require.Equal(s.T(), 1, b.Updates())
}
