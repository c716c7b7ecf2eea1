package domain

import "strconv"

// Epoch is a discrete, monotonically increasing version of a log's state.
type Epoch uint64

func ParseEpoch(s string) (Epoch, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, ErrMalformedRecord
	}
	return Epoch(v), nil
}

func (e Epoch) String() string {
	return strconv.FormatUint(uint64(e), 10)
}

// Prev returns the predecessor epoch. Callers must not ask for the
// predecessor of the start epoch.
func (e Epoch) Prev() Epoch {
	return e - 1
}
