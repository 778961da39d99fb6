package pipeline

// Stage identifies a step of the message pipeline state machine:
// Received → IdempotencyChecked → ContextLoaded → Classified → Extracted →
// Validated → Persisted → Responded, with Failed(stage) reachable from any
// stage.
type Stage string

const (
	StageReceived           Stage = "received"
	StageIdempotencyChecked Stage = "idempotency_checked"
	StageContextLoaded      Stage = "context_loaded"
	StageClassified         Stage = "classified"
	StageExtracted          Stage = "extracted"
	StageValidated          Stage = "validated"
	StagePersisted          Stage = "persisted"
	StageResponded          Stage = "responded"
)

// StepStatus describes how a stage concluded.
type StepStatus string

const (
	StepOK       StepStatus = "ok"
	StepFallback StepStatus = "fallback"
	StepDegraded StepStatus = "degraded"
	StepSkipped  StepStatus = "skipped"
	StepFailed   StepStatus = "failed"
)

// Step is one entry of the pipeline trace consumed by the UI's thinking
// visualization.
type Step struct {
	Stage  Stage      `json:"stage"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

// Trace is an append-only ordered log of pipeline steps. Each component
// records its own step as it executes; steps are never reconstructed after
// the fact and never fabricated for stages that did not run.
type Trace struct {
	steps []Step
}

// Append records a completed step.
func (t *Trace) Append(stage Stage, status StepStatus, detail string) {
	t.steps = append(t.steps, Step{Stage: stage, Status: status, Detail: detail})
}

// Fail records the terminal failed state for a stage.
func (t *Trace) Fail(stage Stage, detail string) {
	t.Append(stage, StepFailed, detail)
}

// Steps returns a copy of the recorded steps in order.
func (t *Trace) Steps() []Step {
	out := make([]Step, len(t.steps))
	copy(out, t.steps)
	return out
}
