package provider

import "context"

// Adapter is the uniform contract every provider integration implements.
// Inspect never returns an error: provider-specific faults are mapped into
// the Result status so one provider's failure cannot escape its boundary.
type Adapter interface {
	ID() string
	DisplayName() string
	Modes() []AuthMode
	Inspect(ctx context.Context, session *Session) *Result
}
