package constants

// Stage is a step of an ingestion run. Stages only move forward; any failure
// ends the run in StageFailed.
type Stage string

const (
	StageReceiving  Stage = "RECEIVING"
	StageDecoded    Stage = "DECODED"
	StageClassified Stage = "CLASSIFIED"
	StageExtracted  Stage = "EXTRACTED"
	StageDone       Stage = "DONE"
	StageFailed     Stage = "FAILED"
)

// Downstream steps of an upload that may be skipped without failing it.
const (
	StepStorage         = "storage"
	StepAnalysis        = "analysis"
	StepAnalysisPersist = "analysis_persist"
	StepRegistry        = "registry"
	StepEvents          = "events"
)

// Storage backends reported to clients.
const (
	StorageMinIO  = "minio"
	StorageMemory = "memory"
	StorageNone   = "none"
)
