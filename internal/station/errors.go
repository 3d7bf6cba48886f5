package station

import "fmt"

// InvalidSelectionError is returned when no station, or a position outside
// the station sequence, was chosen.
type InvalidSelectionError struct {
	Index int
	Count int
}

func (e *InvalidSelectionError) Error() string {
	if e.Index < 0 {
		return "no station chosen"
	}
	return fmt.Sprintf("invalid station index %d (have %d stations)", e.Index, e.Count)
}

// UnknownStationError is returned when a station ID is not in the dataset
type UnknownStationError struct {
	ID string
}

func (e *UnknownStationError) Error() string {
	return fmt.Sprintf("station not found: %s", e.ID)
}

// DataLoadError wraps a failure to fetch or parse the station dataset
type DataLoadError struct {
	Message string
	Err     error
}

func (e *DataLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("station data unavailable: %s: %v", e.Message, e.Err)
	}
	return fmt.Sprintf("station data unavailable: %s", e.Message)
}

func (e *DataLoadError) Unwrap() error {
	return e.Err
}

func NewDataLoadError(message string, err error) *DataLoadError {
	return &DataLoadError{
		Message: message,
		Err:     err,
	}
}
