package models

import (
	"bytes"
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// Number is a lenient numeric field. The upstream API sends numbers, numeric
// strings, "NaN" and null for the same attribute; anything that does not
// parse to a finite value decodes as 0.
type Number float64

// Float returns the value as float64, mapping non-finite values to 0.
func (n Number) Float() float64 {
	f := float64(n)
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0
	}
	return f
}

// UnmarshalJSON implements json.Unmarshaler.
func (n *Number) UnmarshalJSON(data []byte) error {
	*n = 0
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		data = []byte(strings.TrimSpace(s))
	}
	f, err := strconv.ParseFloat(string(data), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return nil
	}
	*n = Number(f)
	return nil
}

// MarshalJSON never emits NaN or Inf.
func (n Number) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(n.Float(), 'f', -1, 64)), nil
}

// Measure is a value with a unit, e.g. FuelConsumed or TripCost.
type Measure struct {
	Value Number `json:"Value"`
	Unit  string `json:"Unit,omitempty"`
}

// WaitingTime holds the idle duration reported on a trip ("HH:MM:SS").
// Bare JSON numbers are kept in their textual form.
type WaitingTime string

// UnmarshalJSON implements json.Unmarshaler.
func (w *WaitingTime) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*w = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*w = WaitingTime(s)
		return nil
	}
	*w = WaitingTime(data)
	return nil
}
