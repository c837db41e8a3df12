// Package events provides the process-wide publish/subscribe bus that
// decouples the storage, path, and assessment engines from the UI and
// from each other. Handlers run synchronously in subscription order;
// emissions happen only after the state change that justifies them is
// durable.
package events

// Event names emitted by the core engines. Payload types are documented
// on the emitting package.
const (
	StorageInitialized = "storage:initialized"
	StorageItemSet     = "storage:item:set"
	StorageItemDeleted = "storage:item:deleted"
	StorageCleared     = "storage:store:cleared"
	StorageCleanupDone = "storage:cleanup:completed"

	LessonCompleted  = "lesson:completed"
	DayCompleted     = "day:completed"
	PathCompleted    = "path:completed"
	MilestoneReached = "milestone:reached"

	AssessmentCreated           = "assessment:created"
	AssessmentResponseProcessed = "assessment:response-processed"
	AssessmentCompleted         = "assessment:completed"

	LLMRequest = "llm:request"
)
