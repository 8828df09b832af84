package gate

// Action describes the kind of operation a principal wants to perform.
// The set is closed: dispatchers only ever pass one of these values.
type Action string

const (
	ActionIndex   Action = "index"
	ActionShow    Action = "show"
	ActionStore   Action = "store"
	ActionUpdate  Action = "update"
	ActionReplace Action = "replace"
	ActionDelete  Action = "delete"
)
