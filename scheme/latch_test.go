package scheme_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/concord-systems/conman/conmantest"
	"github.com/concord-systems/conman/scheme"
)

// LatchSuite exercises edge-level and port-level latching, including
// the feedback-loop scenario a deterministic scheme exists to support:
// a Data-Flow Graph cycle whose Execution Scheduling Graph is acyclic
// because one edge in the cycle is latched.
type LatchSuite struct {
	suite.Suite
}

func TestLatchSuite(t *testing.T) {
	suite.Run(t, new(LatchSuite))
}

func (s *LatchSuite) TestLatchConnectionOnExistingEdge() {
	sc := scheme.NewScheme()
	a := conmantest.NewBlock("a").WithOutputPort("out").Connect("out", "b", "in")
	b := conmantest.NewBlock("b").WithInputPort("in", scheme.Unrestricted)
	require.NoError(s.T(), sc.AddBlock(a))
	require.NoError(s.T(), sc.AddBlock(b))

	require.NoError(s.T(), sc.LatchConnection("a", "b", true))
	require.Equal(s.T(), 1, sc.LatchCount([]string{"a", "b"}))
	require.True(s.T(), sc.Executable())
}

func (s *LatchSuite) TestLatchConnectionSelfReferenceIsNoOp() {
	sc := scheme.NewScheme()
	require.NoError(s.T(), sc.AddBlock(conmantest.NewBlock("a")))
	require.NoError(s.T(), sc.LatchConnection("a", "a", true))
	require.Equal(s.T(), 0, sc.LatchCount([]string{"a", "a"}))
}

func (s *LatchSuite) TestLatchStrictRejectsMissingEdge() {
	sc := scheme.NewScheme()
	require.NoError(s.T(), sc.AddBlock(conmantest.NewBlock("a")))
	require.NoError(s.T(), sc.AddBlock(conmantest.NewBlock("c")))

	err := sc.Latch([]string{"a"}, []string{"c"}, true, true)
	require.ErrorIs(s.T(), err, scheme.ErrNoSuchEdge)
}

func (s *LatchSuite) TestLatchNonStrictSkipsMissingEdge() {
	sc := scheme.NewScheme()
	require.NoError(s.T(), sc.AddBlock(conmantest.NewBlock("a")))
	require.NoError(s.T(), sc.AddBlock(conmantest.NewBlock("c")))

	err := sc.Latch([]string{"a"}, []string{"c"}, true, false)
	require.NoError(s.T(), err)
}

// TestLatchInputsAllowsFeedbackLoop mirrors the original scheme's
// reason for existing: a flow cycle between two blocks is accepted
// because one endpoint's input was latched before the second block
// (and therefore the cycle) was even added.
func (s *LatchSuite) TestLatchInputsAllowsFeedbackLoop() {
	sc := scheme.NewScheme()

	a := conmantest.NewBlock("a").
		WithInputPort("in", scheme.Unrestricted).
		WithOutputPort("out").
		Connect("out", "b", "in")
	b := conmantest.NewBlock("b").
		WithInputPort("in", scheme.Unrestricted).
		WithOutputPort("out").
		Connect("out", "a", "in")

	require.NoError(s.T(), sc.AddBlock(a))
	require.NoError(s.T(), sc.LatchInputs("a", true))
	require.NoError(s.T(), sc.AddBlock(b))

	require.True(s.T(), sc.Executable())
	require.Equal(s.T(), 1, sc.LatchCount([]string{"b", "a"}))

	flowCycles, err := sc.GetFlowCycles()
	require.NoError(s.T(), err)
	require.Len(s.T(), flowCycles, 1)

	execCycles, err := sc.GetExecutionCycles()
	require.NoError(s.T(), err)
	require.Empty(s.T(), execCycles)
}
