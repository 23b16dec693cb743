package qa

import (
	"errors"
	"fmt"
)

// ErrConfig is matched by every pipeline definition error, so callers can
// tell a bad definition apart from a runtime failure with errors.Is.
var ErrConfig = errors.New("configuration error")

var (
	ErrStageExists     = fmt.Errorf("%w: stage already registered", ErrConfig)
	ErrEmptyName       = fmt.Errorf("%w: stage and successor names must not be empty", ErrConfig)
	ErrNegativeWorkers = fmt.Errorf("%w: worker count cannot be negative", ErrConfig)
	ErrNilWorker       = fmt.Errorf("%w: worker function is nil", ErrConfig)
	ErrUnknownStage    = fmt.Errorf("%w: stage is not registered", ErrConfig)
	ErrCycle           = fmt.Errorf("%w: stage visited twice, the pipeline may be circular", ErrConfig)
	ErrTerminalData    = fmt.Errorf("%w: data cannot be bound to the terminal stage", ErrConfig)
	ErrUnreachableData = fmt.Errorf("%w: data bound to a stage the entry stage never reaches", ErrConfig)
)

var (
	ErrKilled     = errors.New("pipeline killed")
	ErrRunning    = errors.New("pipeline is already running")
	ErrNotRunning = errors.New("pipeline is not running")
)
