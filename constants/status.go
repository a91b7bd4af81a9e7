package constants

// Stage identifies one extraction strategy in the cascade.
type Stage string

// Stable values (usage-log rows store these exact strings).
const (
	StageNativeText Stage = "native_text"
	StageOCR        Stage = "ocr"
	StageVision     Stage = "vision"
)

// AttemptStatus is the outcome of a single stage invocation.
type AttemptStatus string

const (
	AttemptSuccess AttemptStatus = "success"
	AttemptEmpty   AttemptStatus = "empty"
	AttemptError   AttemptStatus = "error"
)

// EntityType selects which target schema a pipeline run extracts against.
type EntityType string

const (
	EntityResume   EntityType = "resume"
	EntityJobOffer EntityType = "job_offer"
)

// InputType is the usage-log classification of what was sent to the model.
type InputType string

const (
	InputText   InputType = "text"
	InputPDF    InputType = "pdf"
	InputImage  InputType = "image"
	InputVision InputType = "vision"
)
