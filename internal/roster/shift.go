package roster

import "fmt"

// ShiftID identifies one of the three nightly half-hour shifts.
type ShiftID string

const (
	Shift1 ShiftID = "shift1"
	Shift2 ShiftID = "shift2"
	Shift3 ShiftID = "shift3"
)

// ShiftsPerDay is the fixed number of shifts per calendar day.
const ShiftsPerDay = 3

// SlotCapacity is the maximum number of approved guards per (date, shift) slot.
const SlotCapacity = 1

// AllShifts lists the shift identifiers in display order.
var AllShifts = []ShiftID{Shift1, Shift2, Shift3}

// shiftWindows maps each shift to its display time window.
var shiftWindows = map[ShiftID]string{
	Shift1: "19:00 - 19:30",
	Shift2: "19:30 - 20:00",
	Shift3: "20:00 - 20:30",
}

// Valid reports whether s is one of the three known shift identifiers.
func (s ShiftID) Valid() bool {
	_, ok := shiftWindows[s]
	return ok
}

// Window returns the display time window for the shift, e.g. "19:00 - 19:30".
func (s ShiftID) Window() string {
	return shiftWindows[s]
}

func (s ShiftID) String() string {
	return string(s)
}

// ParseShiftID validates a raw shift identifier.
func ParseShiftID(raw string) (ShiftID, error) {
	s := ShiftID(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown shift identifier: %q", raw)
	}
	return s, nil
}
