package accumulator

// HeaderSource is a drainable stream of Extended Header Records. Records flow
// by move from the decoder into the validator: Drain removes and returns
// them, it does not retain a copy.
type HeaderSource interface {
	// Drain removes and returns up to n records, in order, from the front of
	// the source. It returns fewer than n records only when the source is
	// exhausted.
	Drain(n int) []ExtendedHeaderRecord
	// Remaining reports how many records are left without consuming them.
	Remaining() int
}

// SliceSource is a HeaderSource backed by an in-memory slice, used by the
// CLI tools (which decode a whole directory up front) and by tests.
type SliceSource struct {
	records []ExtendedHeaderRecord
}

// NewSliceSource wraps records as a HeaderSource. Ownership of records
// transfers to the SliceSource; callers must not use the slice afterwards.
func NewSliceSource(records []ExtendedHeaderRecord) *SliceSource {
	return &SliceSource{records: records}
}

func (s *SliceSource) Drain(n int) []ExtendedHeaderRecord {
	if n > len(s.records) {
		n = len(s.records)
	}
	out := s.records[:n]
	s.records = s.records[n:]
	return out
}

func (s *SliceSource) Remaining() int {
	return len(s.records)
}
