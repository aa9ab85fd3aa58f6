package score

import (
	"testing"

	"github.com/stretchr/testify/suite"
)

// ComputeSuite tests risk score derivation.
type ComputeSuite struct {
	suite.Suite
}

func TestComputeSuite(t *testing.T) {
	suite.Run(t, new(ComputeSuite))
}

// TestReasonKeywords verifies the keyword tiers and their precedence.
func (s *ComputeSuite) TestReasonKeywords() {
	s.Run("neutral reason scores the base", func() {
		s.Equal(50, Compute("late return of equipment", false, false))
	})

	s.Run("high-risk keywords add thirty", func() {
		for _, reason := range []string{
			"fraud on invoice",
			"theft reported",
			"violence at branch",
			"criminal record",
			"scam attempt",
		} {
			s.Equal(80, Compute(reason, false, false), "reason %q", reason)
		}
	})

	s.Run("medium-risk keywords add fifteen", func() {
		for _, reason := range []string{
			"payment dispute",
			"repeat complaint",
			"unpaid balance",
			"contract breach",
		} {
			s.Equal(65, Compute(reason, false, false), "reason %q", reason)
		}
	})

	s.Run("matching is case-insensitive", func() {
		s.Equal(80, Compute("FRAUD alert", false, false))
		s.Equal(65, Compute("Unpaid Invoices", false, false))
	})

	s.Run("keywords match inside words", func() {
		s.Equal(80, Compute("defrauded the branch", false, false))
	})

	s.Run("high tier wins when both tiers match", func() {
		s.Equal(80, Compute("fraud dispute", false, false))
		s.Equal(80, Compute("dispute escalated to theft", false, false))
	})

	s.Run("only the first high keyword counts", func() {
		s.Equal(80, Compute("fraud and theft and violence", false, false))
	})
}

// TestEvidence verifies document and face image contributions.
func (s *ComputeSuite) TestEvidence() {
	s.Run("documents add ten", func() {
		s.Equal(60, Compute("late return", true, false))
	})

	s.Run("face image adds ten", func() {
		s.Equal(60, Compute("late return", false, true))
	})

	s.Run("both add twenty", func() {
		s.Equal(70, Compute("late return", true, true))
	})

	s.Run("evidence stacks with keywords", func() {
		s.Equal(100, Compute("fraud", true, true))
		s.Equal(85, Compute("dispute", true, true))
	})
}

// TestClamp verifies the score never leaves its range.
func (s *ComputeSuite) TestClamp() {
	s.Run("never exceeds one hundred", func() {
		s.Equal(100, Compute("fraud theft violence criminal scam", true, true))
	})

	s.Run("never below the base", func() {
		s.Equal(50, Compute("", false, false))
	})
}

// TestMonotonicity verifies adding evidence never lowers a score.
func (s *ComputeSuite) TestMonotonicity() {
	for _, reason := range []string{"", "late return", "dispute", "fraud"} {
		bare := Compute(reason, false, false)
		withDocs := Compute(reason, true, false)
		withFace := Compute(reason, false, true)
		withBoth := Compute(reason, true, true)

		s.GreaterOrEqual(withDocs, bare, "reason %q", reason)
		s.GreaterOrEqual(withFace, bare, "reason %q", reason)
		s.GreaterOrEqual(withBoth, withDocs, "reason %q", reason)
		s.GreaterOrEqual(withBoth, withFace, "reason %q", reason)
		s.LessOrEqual(withBoth, 100, "reason %q", reason)
	}
}
