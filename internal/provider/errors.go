package provider

import (
	"fmt"
	"time"

	"github.com/Satianurag/green-ai-carbon-scheduler/internal/models"
)

// ProviderError means a remote data source was unreachable or unparsable.
// It is fatal to the scheduling attempt that triggered it; the caller owns
// the retry policy.
type ProviderError struct {
	Source    models.Source
	Op        string // "fetch", "parse", "select"
	Endpoint  string
	Timestamp time.Time // when the attempt was made (UTC)
	Err       error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %s %s at %s: %v",
		e.Source, e.Op, e.Endpoint, e.Timestamp.Format(time.RFC3339), e.Err)
}

func (e *ProviderError) Unwrap() error { return e.Err }

// DataError means a local data file is malformed or, after filtering,
// empty. It indicates misconfiguration and is fatal.
type DataError struct {
	Path   string
	Reason string
	Err    error
}

func (e *DataError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("data %s: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("data %s: %s", e.Path, e.Reason)
}

func (e *DataError) Unwrap() error { return e.Err }
