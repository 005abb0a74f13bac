package availability

import "errors"

var (
	ErrSlotNotFound    = errors.New("availability slot not found")
	ErrSlotUnavailable = errors.New("no available slots at the requested time")
)
