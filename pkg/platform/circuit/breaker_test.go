package circuit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
)

type BreakerSuite struct {
	suite.Suite
	now time.Time
}

func TestBreakerSuite(t *testing.T) {
	suite.Run(t, new(BreakerSuite))
}

func (s *BreakerSuite) SetupTest() {
	s.now = time.Unix(1_700_000_000, 0)
}

func (s *BreakerSuite) newBreaker() *Breaker {
	return New("Node1",
		WithFailureThreshold(2),
		WithCooldown(time.Minute),
		WithClock(func() time.Time { return s.now }),
	)
}

func (s *BreakerSuite) TestOpensAfterThreshold() {
	b := s.newBreaker()
	s.Equal("Node1", b.Name())

	s.False(b.RecordFailure().Opened)
	s.True(b.Allow())
	s.True(b.RecordFailure().Opened)
	s.Equal(StateOpen, b.State())
	s.False(b.Allow())
}

func (s *BreakerSuite) TestProbeAfterCooldownCloses() {
	b := s.newBreaker()
	b.RecordFailure()
	b.RecordFailure()

	s.now = s.now.Add(2 * time.Minute)
	s.True(b.Allow())
	s.True(b.RecordSuccess().Closed)
	s.Equal(StateClosed, b.State())
}

func (s *BreakerSuite) TestSuccessResetsFailureCount() {
	b := s.newBreaker()
	b.RecordFailure()
	b.RecordSuccess()
	b.RecordFailure()
	s.Equal(StateClosed, b.State())
}

func (s *BreakerSuite) TestBlacklistIsTerminal() {
	b := s.newBreaker()
	s.True(b.Blacklist())
	s.False(b.Blacklist())
	s.False(b.Allow())

	b.RecordSuccess()
	s.now = s.now.Add(time.Hour)
	s.Equal(StateBlacklisted, b.State())
	s.False(b.Allow())
	s.Equal("blacklisted", b.State().String())
}
