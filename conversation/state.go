package conversation

// State is a step of a chat turn, logged in this order.
type State string

const (
	AwaitingInput     State = "AWAITING_INPUT"
	PersistingUserMsg State = "PERSISTING_USER_MSG"
	BuildingContext   State = "BUILDING_CONTEXT"
	Generating        State = "GENERATING"
	PersistingAIMsg   State = "PERSISTING_AI_MSG"
	EmbeddingBoth     State = "EMBEDDING_BOTH"
	UpdatingMemory    State = "UPDATING_MEMORY"
	MaybeAutoNaming   State = "MAYBE_AUTO_NAMING"
	Done              State = "DONE"
)

// Best-effort task names.
const (
	TaskEmbedUserMessage = "embed_user_message"
	TaskEmbedAIMessage   = "embed_ai_message"
	TaskUpdateMemory     = "update_memory"
	TaskAutoName         = "auto_name"
)
