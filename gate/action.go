package gate

// Action describes the kind of operation a user wants to perform.
type Action string

const (
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionReply  Action = "reply"
	ActionReact  Action = "react"
)
