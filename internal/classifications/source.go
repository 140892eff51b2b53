package classifications

import "context"

// Source fetches a user's current classification set from the external
// authorization service.
//
// The boolean result distinguishes "no data" from "empty set": ok is false
// when the upstream reports the user does not exist, and implementations must
// also normalize transport failures and timeouts to (nil, false). Callers
// never get to tell a downed source apart from an unknown user. An existing
// user with no classifications yields an empty slice and ok true.
type Source interface {
	FetchUserClassifications(ctx context.Context, userID string) ([]Classification, bool)
}

// AbsentSource reports every user as unknown. Stands in when no source
// endpoint is configured.
type AbsentSource struct{}

// FetchUserClassifications implements Source.
func (AbsentSource) FetchUserClassifications(context.Context, string) ([]Classification, bool) {
	return nil, false
}
