package gate

import "context"

// Policy defines authorization rules for a resource type.
// U is the principal type (e.g., uint for a user ID, *User for a full
// user struct). Implementations check whether user may perform action
// on resource.
type Policy[U any] interface {
	// Can returns true if user is authorized to perform action on
	// resource. For store/index, resource is nil (type-scoped check).
	Can(ctx context.Context, user U, action Action, resource any) bool
}
