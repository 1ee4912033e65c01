package catalog

import (
	"context"
	"errors"
	"fmt"
)

// Phase groups the steps of a cataloguing run.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseTransaction
	PhaseScan
	PhaseCancelled
	PhaseFinalize
)

func (p Phase) String() string {
	switch p {
	case PhaseSetup:
		return "setup"
	case PhaseTransaction:
		return "transaction"
	case PhaseScan:
		return "scan"
	case PhaseCancelled:
		return "cancelled"
	case PhaseFinalize:
		return "finalize"
	default:
		return fmt.Sprintf("phase(%d)", int(p))
	}
}

// Step identifies the operation a run was performing when it failed.
type Step int

const (
	StepOpenConnection Step = iota + 1
	StepPrepareStatements
	StepResolveVolume
	StepResolveRoot

	StepBeginTransaction
	StepDropIndexes
	StepWipeDisk
	StepUpdateDisk
	StepCreateDisk
	StepCreateRootDirectory
	StepLoadRootDirectory

	StepSetItemCount
	StepInsertDirectory
	StepInsertFile
	StepMarkAccessDenied

	StepCancelled

	StepRebuildIndexes
	StepLoadDisk
	StepCommit
)

var stepNames = map[Step]string{
	StepOpenConnection:      "open connection",
	StepPrepareStatements:   "prepare statements",
	StepResolveVolume:       "resolve volume",
	StepResolveRoot:         "resolve scan root",
	StepBeginTransaction:    "begin transaction",
	StepDropIndexes:         "drop indexes",
	StepWipeDisk:            "remove previous disk contents",
	StepUpdateDisk:          "update disk",
	StepCreateDisk:          "create disk",
	StepCreateRootDirectory: "create root directory",
	StepLoadRootDirectory:   "load root directory",
	StepSetItemCount:        "set item count",
	StepInsertDirectory:     "insert directory",
	StepInsertFile:          "insert file",
	StepMarkAccessDenied:    "mark access denied",
	StepCancelled:           "cancelled",
	StepRebuildIndexes:      "rebuild indexes",
	StepLoadDisk:            "load disk",
	StepCommit:              "commit",
}

func (s Step) String() string {
	if name, ok := stepNames[s]; ok {
		return name
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Phase returns the phase the step belongs to.
func (s Step) Phase() Phase {
	switch {
	case s <= StepResolveRoot:
		return PhaseSetup
	case s <= StepLoadRootDirectory:
		return PhaseTransaction
	case s <= StepMarkAccessDenied:
		return PhaseScan
	case s == StepCancelled:
		return PhaseCancelled
	default:
		return PhaseFinalize
	}
}

// CatalogError reports the step at which a cataloguing run failed. Nothing
// the run wrote survives such a failure.
type CatalogError struct {
	Step Step
	Err  error
}

func (e *CatalogError) Error() string {
	if e.Step == StepCancelled {
		return "cataloguing cancelled"
	}
	return fmt.Sprintf("cataloguing failed at %s: %v", e.Step, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

func (e *CatalogError) Phase() Phase {
	return e.Step.Phase()
}

// Cancelled reports whether err is a cancelled cataloguing run.
func Cancelled(err error) bool {
	var ce *CatalogError
	if errors.As(err, &ce) {
		return ce.Step == StepCancelled
	}
	return errors.Is(err, context.Canceled)
}

func stepError(step Step, err error) *CatalogError {
	return &CatalogError{Step: step, Err: err}
}
