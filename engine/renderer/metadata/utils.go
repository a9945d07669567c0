package metadata

import "math"

const (
	InvalidID       uint32 = math.MaxUint32
	InvalidIDUint16 uint16 = math.MaxUint16
	InvalidIDUint64 uint64 = math.MaxUint64
)
