package scheme_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/concord-systems/conman/conmantest"
	"github.com/concord-systems/conman/scheme"
)

// EnableSuite exercises the enable/disable policy, including conflict
// rejection, forced cascading disable, and the bulk operations.
type EnableSuite struct {
	suite.Suite
	sc         *scheme.Scheme
	a, b, c    *conmantest.Block
}

func TestEnableSuite(t *testing.T) {
	suite.Run(t, new(EnableSuite))
}

// SetupTest builds a and b both feeding c's single exclusive input
// port, so a and b conflict with each other.
func (s *EnableSuite) SetupTest() {
	s.sc = scheme.NewScheme()
	s.a = conmantest.NewBlock("a").WithOutputPort("out").Connect("out", "c", "in")
	s.b = conmantest.NewBlock("b").WithOutputPort("out").Connect("out", "c", "in")
	s.c = conmantest.NewBlock("c").WithInputPort("in", scheme.Exclusive)

	require.NoError(s.T(), s.sc.AddBlock(s.a))
	require.NoError(s.T(), s.sc.AddBlock(s.b))
	require.NoError(s.T(), s.sc.AddBlock(s.c))
}

func (s *EnableSuite) TestEnableUnknownBlock() {
	err := s.sc.EnableBlock("ghost", false)
	require.ErrorIs(s.T(), err, scheme.ErrNotInScheme)
}

func (s *EnableSuite) TestEnableThenDisable() {
	require.NoError(s.T(), s.sc.EnableBlock("a", false))
	require.Equal(s.T(), scheme.StateRunning, s.a.State())

	require.NoError(s.T(), s.sc.DisableBlock("a"))
	require.Equal(s.T(), scheme.StateConfigured, s.a.State())
}

func (s *EnableSuite) TestEnableConflictRejectedWithoutForce() {
	require.NoError(s.T(), s.sc.EnableBlock("a", false))
	err := s.sc.EnableBlock("b", false)
	require.ErrorIs(s.T(), err, scheme.ErrConflict)
	require.Equal(s.T(), scheme.StateConfigured, s.b.State())
}

func (s *EnableSuite) TestEnableConflictForcedCascadesDisable() {
	require.NoError(s.T(), s.sc.EnableBlock("a", false))
	require.NoError(s.T(), s.sc.EnableBlock("b", true))

	require.Equal(s.T(), scheme.StateConfigured, s.a.State())
	require.Equal(s.T(), scheme.StateRunning, s.b.State())
}

func (s *EnableSuite) TestEnableStartFailureReported() {
	s.a.FailStart(true)
	err := s.sc.EnableBlock("a", false)
	require.ErrorIs(s.T(), err, scheme.ErrStartFailed)
	require.Equal(s.T(), scheme.StateConfigured, s.a.State())
}

func (s *EnableSuite) TestEnableBlocksStrictRollsBackOnFailure() {
	s.b.FailStart(true)
	err := s.sc.EnableBlocks([]string{"a", "b"}, false, true)
	require.Error(s.T(), err)
	// a starts first, then b is refused because it conflicts with the
	// now-running a; strict mode rolls a back too.
	require.Equal(s.T(), scheme.StateConfigured, s.a.State())
	require.Equal(s.T(), scheme.StateConfigured, s.b.State())
}

func (s *EnableSuite) TestEnableBlocksNonStrictBestEffort() {
	s.b.FailStart(true)
	err := s.sc.EnableBlocks([]string{"a", "b"}, false, false)
	require.Error(s.T(), err)
	require.Equal(s.T(), scheme.StateRunning, s.a.State())
	require.Equal(s.T(), scheme.StateConfigured, s.b.State())
}

func (s *EnableSuite) TestSwitchBlocksDisablesBeforeEnabling() {
	require.NoError(s.T(), s.sc.EnableBlock("a", false))
	err := s.sc.SwitchBlocks([]string{"a"}, []string{"b"}, false, false)
	require.NoError(s.T(), err)
	require.Equal(s.T(), scheme.StateConfigured, s.a.State())
	require.Equal(s.T(), scheme.StateRunning, s.b.State())
}

func (s *EnableSuite) TestSetEnabledBlocksConvergesToExactSet() {
	require.NoError(s.T(), s.sc.EnableBlock("a", false))
	err := s.sc.SetEnabledBlocks([]string{"b"}, true)
	require.NoError(s.T(), err)

	require.Equal(s.T(), scheme.StateConfigured, s.a.State())
	require.Equal(s.T(), scheme.StateRunning, s.b.State())
	require.Equal(s.T(), scheme.StateConfigured, s.c.State())
}

// TestSetEnabledBlocksNeverForces confirms that since "b" conflicts with
// "a" through their shared exclusive sink "c", a caller can't
// force both into the requested set through SetEnabledBlocks: the
// enable phase is always non-forced, so a second conflicting target in
// the same call fails instead of silently cascading a disable.
func (s *EnableSuite) TestSetEnabledBlocksNeverForces() {
	require.NoError(s.T(), s.sc.EnableBlock("a", false))
	err := s.sc.SetEnabledBlocks([]string{"a", "b"}, false)
	require.Error(s.T(), err)
	require.Equal(s.T(), scheme.StateRunning, s.a.State())
	require.Equal(s.T(), scheme.StateConfigured, s.b.State())
}
