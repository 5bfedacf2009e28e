package endoperation

import "github.com/akhelper/endop-service/viewport"

// Session is the state shared by the groups of one screenshot: the labels
// already given out and whether anything was uncertain. It is not safe for
// concurrent use and lives only as long as one Recognize call.
type Session struct {
	Viewport          viewport.Viewport
	LearnUnrecognized bool

	claimed       []string
	lowConfidence bool
}

// NewSession starts a session for a screenshot with the given viewport.
func NewSession(vp viewport.Viewport, learn bool) *Session {
	return &Session{Viewport: vp, LearnUnrecognized: learn}
}

// Claim records label as used. Claiming twice has no effect.
func (s *Session) Claim(label string) {
	if !s.Claimed(label) {
		s.claimed = append(s.claimed, label)
	}
}

// Claimed reports whether label was already given to a group.
func (s *Session) Claimed(label string) bool {
	for _, l := range s.claimed {
		if l == label {
			return true
		}
	}
	return false
}

// ClaimedLabels returns the claimed labels in claim order.
func (s *Session) ClaimedLabels() []string {
	return append([]string(nil), s.claimed...)
}

// MarkLowConfidence flags the session. The flag is never cleared.
func (s *Session) MarkLowConfidence() {
	s.lowConfidence = true
}

// LowConfidence reports whether any step was uncertain.
func (s *Session) LowConfidence() bool {
	return s.lowConfidence
}
