package partition

import "github.com/mxfgo/mxf/klv"

// Markers records the file-position bookmarks used to compute a partition
// pack's HeaderByteCount and IndexByteCount once the header metadata and
// index table segment have been written (spec §4.3).
type Markers struct {
	headerStart int64
	headerEnd   int64
	indexStart  int64
	indexEnd    int64
}

// MarkHeaderStart records the current stream position as the start of the
// header metadata region.
func (m *Markers) MarkHeaderStart(s *klv.Stream) error {
	pos, err := s.Position()
	if err != nil {
		return err
	}
	m.headerStart = pos

	return nil
}

// MarkHeaderEnd records the current stream position as the end of the
// header metadata region.
func (m *Markers) MarkHeaderEnd(s *klv.Stream) error {
	pos, err := s.Position()
	if err != nil {
		return err
	}
	m.headerEnd = pos

	return nil
}

// MarkIndexStart records the current stream position as the start of the
// index table segment region.
func (m *Markers) MarkIndexStart(s *klv.Stream) error {
	pos, err := s.Position()
	if err != nil {
		return err
	}
	m.indexStart = pos

	return nil
}

// MarkIndexEnd records the current stream position as the end of the index
// table segment region.
func (m *Markers) MarkIndexEnd(s *klv.Stream) error {
	pos, err := s.Position()
	if err != nil {
		return err
	}
	m.indexEnd = pos

	return nil
}

// HeaderByteCount returns the byte span recorded between MarkHeaderStart and
// MarkHeaderEnd.
func (m *Markers) HeaderByteCount() uint64 {
	return uint64(m.headerEnd - m.headerStart)
}

// IndexByteCount returns the byte span recorded between MarkIndexStart and
// MarkIndexEnd.
func (m *Markers) IndexByteCount() uint64 {
	if m.indexEnd == 0 && m.indexStart == 0 {
		return 0
	}

	return uint64(m.indexEnd - m.indexStart)
}

// ApplyTo back-patches p.HeaderByteCount and p.IndexByteCount from the
// recorded marker spans.
func (m *Markers) ApplyTo(p *Pack) {
	p.HeaderByteCount = m.HeaderByteCount()
	p.IndexByteCount = m.IndexByteCount()
}
