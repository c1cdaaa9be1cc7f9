package entity

import (
	"fmt"
	"math"
	"strconv"
)

// Integer is a JSON number holding an integral value. Clients that encode
// every number as a float send 5.0 for 5; both decode, 5.5 does not.
// Quoted numbers are rejected.
type Integer int

func (n *Integer) UnmarshalJSON(b []byte) error {
	raw := string(b)
	if raw == "null" {
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil || f != math.Trunc(f) || math.Abs(f) > math.MaxInt32 {
		return fmt.Errorf("expected an integer, got %s", raw)
	}
	*n = Integer(f)
	return nil
}
