package geotable

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/spf13/afero"
	"github.com/zeebo/xxh3"
)

const (
	// SnapshotVersion is a version of the binary layout. Snapshots of
	// other versions are rejected as corrupted.
	SnapshotVersion uint16 = 1

	snapshotMaxRanges      = 1 << 28
	snapshotMaxFieldLength = 1 << 16
	snapshotPreallocate    = 1 << 20
)

var snapshotMagic = []byte("GEOTBL")

// SourceFingerprint identifies a version of the text source a snapshot
// was built from.
type SourceFingerprint struct {
	Size    int64
	ModTime int64
}

func (s SourceFingerprint) IsZero() bool {
	return s == SourceFingerprint{}
}

// SaveSnapshot serializes a table into a compact binary form.
//
// Layout is a snappy stream of: magic, version, fingerprint, number of
// ranges, ranges themselves (start and end as big endian uint32, then 8
// length-prefixed strings), and xxh3 checksum of everything before it.
func SaveSnapshot(w io.Writer, table *Table, fingerprint SourceFingerprint) error {
	compressed := snappy.NewBufferedWriter(w)
	hasher := xxh3.New()
	enc := &snapshotEncoder{w: io.MultiWriter(compressed, hasher)}

	enc.Bytes(snapshotMagic)
	enc.Uint16(SnapshotVersion)
	enc.Uint64(uint64(fingerprint.Size))
	enc.Uint64(uint64(fingerprint.ModTime))
	enc.Uvarint(uint64(len(table.ranges)))

	for i := range table.ranges {
		current := &table.ranges[i]

		enc.Uint32(current.Start)
		enc.Uint32(current.End)

		for _, v := range current.Info.fields() {
			enc.String(*v)
		}
	}

	if enc.err != nil {
		return fmt.Errorf("cannot encode snapshot: %w", enc.err)
	}

	checksum := [8]byte{}

	binary.BigEndian.PutUint64(checksum[:], hasher.Sum64())

	if _, err := compressed.Write(checksum[:]); err != nil {
		return fmt.Errorf("cannot write checksum: %w", err)
	}

	if err := compressed.Close(); err != nil {
		return fmt.Errorf("cannot flush snapshot: %w", err)
	}

	return nil
}

// LoadSnapshot deserializes a table written by SaveSnapshot. Any
// structural mismatch is reported as ErrCorruptSnapshot.
func LoadSnapshot(r io.Reader) (*Table, SourceFingerprint, error) {
	buffered := bufio.NewReader(snappy.NewReader(r))
	dec := &snapshotDecoder{
		r:      buffered,
		hasher: xxh3.New(),
	}

	fingerprint := SourceFingerprint{}

	if magic := dec.Bytes(len(snapshotMagic)); dec.err == nil && !bytes.Equal(magic, snapshotMagic) {
		return nil, fingerprint, fmt.Errorf("%w: unknown magic %q", ErrCorruptSnapshot, magic)
	}

	if version := dec.Uint16(); dec.err == nil && version != SnapshotVersion {
		return nil, fingerprint, fmt.Errorf("%w: unsupported version %d (expected %d)",
			ErrCorruptSnapshot, version, SnapshotVersion)
	}

	fingerprint.Size = int64(dec.Uint64())
	fingerprint.ModTime = int64(dec.Uint64())

	count := dec.Uvarint()
	if dec.err == nil && count > snapshotMaxRanges {
		return nil, fingerprint, fmt.Errorf("%w: implausible number of ranges %d", ErrCorruptSnapshot, count)
	}

	preallocate := count
	if preallocate > snapshotPreallocate {
		preallocate = snapshotPreallocate
	}

	ranges := make([]AddressRange, 0, preallocate)

	for i := uint64(0); i < count && dec.err == nil; i++ {
		current := AddressRange{
			Start: dec.Uint32(),
			End:   dec.Uint32(),
		}

		for _, v := range current.Info.fields() {
			*v = dec.String()
		}

		ranges = append(ranges, current)
	}

	if dec.err != nil {
		return nil, fingerprint, fmt.Errorf("%w: %v", ErrCorruptSnapshot, dec.err)
	}

	expected := dec.hasher.Sum64()
	checksum := [8]byte{}

	if _, err := io.ReadFull(buffered, checksum[:]); err != nil {
		return nil, fingerprint, fmt.Errorf("%w: cannot read checksum: %v", ErrCorruptSnapshot, err)
	}

	if actual := binary.BigEndian.Uint64(checksum[:]); actual != expected {
		return nil, fingerprint, fmt.Errorf("%w: checksum mismatch. expected=%x, actual=%x",
			ErrCorruptSnapshot, expected, actual)
	}

	if _, err := buffered.ReadByte(); !errors.Is(err, io.EOF) {
		return nil, fingerprint, fmt.Errorf("%w: unexpected data after checksum", ErrCorruptSnapshot)
	}

	table := NewTable(ranges)
	table.origin = OriginSnapshot

	return table, fingerprint, nil
}

// WriteSnapshotFile saves a snapshot atomically: data goes to a temporary
// file in the same directory which is renamed into path afterwards.
func WriteSnapshotFile(fs afero.Fs, path string, table *Table, fingerprint SourceFingerprint) error {
	return writeFileAtomic(fs, path, func(w io.Writer) error {
		return SaveSnapshot(w, table, fingerprint)
	})
}

// ReadSnapshotFile loads a snapshot from path.
func ReadSnapshotFile(fs afero.Fs, path string) (*Table, SourceFingerprint, error) {
	fp, err := fs.Open(path)
	if err != nil {
		return nil, SourceFingerprint{}, fmt.Errorf("cannot open snapshot: %w", err)
	}

	defer fp.Close()

	return LoadSnapshot(fp)
}

type snapshotEncoder struct {
	w       io.Writer
	err     error
	scratch [binary.MaxVarintLen64]byte
}

func (s *snapshotEncoder) Bytes(data []byte) {
	if s.err == nil {
		_, s.err = s.w.Write(data)
	}
}

func (s *snapshotEncoder) Uint16(value uint16) {
	binary.BigEndian.PutUint16(s.scratch[:], value)
	s.Bytes(s.scratch[:2])
}

func (s *snapshotEncoder) Uint32(value uint32) {
	binary.BigEndian.PutUint32(s.scratch[:], value)
	s.Bytes(s.scratch[:4])
}

func (s *snapshotEncoder) Uint64(value uint64) {
	binary.BigEndian.PutUint64(s.scratch[:], value)
	s.Bytes(s.scratch[:8])
}

func (s *snapshotEncoder) Uvarint(value uint64) {
	n := binary.PutUvarint(s.scratch[:], value)
	s.Bytes(s.scratch[:n])
}

func (s *snapshotEncoder) String(value string) {
	if s.err == nil && len(value) > snapshotMaxFieldLength {
		s.err = fmt.Errorf("field is too long: %d bytes", len(value))

		return
	}

	s.Uvarint(uint64(len(value)))

	if s.err == nil {
		_, s.err = io.WriteString(s.w, value)
	}
}

// snapshotDecoder hashes only bytes it consumed so a trailing checksum
// can be read from the same buffered reader without polluting a hash.
type snapshotDecoder struct {
	r       *bufio.Reader
	hasher  *xxh3.Hasher
	err     error
	scratch [8]byte
}

func (s *snapshotDecoder) Bytes(n int) []byte {
	if s.err != nil {
		return nil
	}

	buf := make([]byte, n)

	if _, err := io.ReadFull(s.r, buf); err != nil {
		s.err = s.wrapEOF(err)

		return nil
	}

	s.hasher.Write(buf) // nolint: errcheck

	return buf
}

func (s *snapshotDecoder) fixed(n int) []byte {
	if s.err != nil {
		return s.scratch[:n]
	}

	if _, err := io.ReadFull(s.r, s.scratch[:n]); err != nil {
		s.err = s.wrapEOF(err)

		return s.scratch[:n]
	}

	s.hasher.Write(s.scratch[:n]) // nolint: errcheck

	return s.scratch[:n]
}

func (s *snapshotDecoder) Uint16() uint16 {
	return binary.BigEndian.Uint16(s.fixed(2))
}

func (s *snapshotDecoder) Uint32() uint32 {
	return binary.BigEndian.Uint32(s.fixed(4))
}

func (s *snapshotDecoder) Uint64() uint64 {
	return binary.BigEndian.Uint64(s.fixed(8))
}

func (s *snapshotDecoder) Uvarint() uint64 {
	if s.err != nil {
		return 0
	}

	value, err := binary.ReadUvarint(hashingByteReader{s})
	if err != nil {
		s.err = s.wrapEOF(err)

		return 0
	}

	return value
}

func (s *snapshotDecoder) String() string {
	length := s.Uvarint()

	switch {
	case s.err != nil:
		return ""
	case length > snapshotMaxFieldLength:
		s.err = fmt.Errorf("implausible field length %d", length)

		return ""
	}

	return string(s.Bytes(int(length)))
}

func (s *snapshotDecoder) wrapEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}

type hashingByteReader struct {
	dec *snapshotDecoder
}

func (h hashingByteReader) ReadByte() (byte, error) {
	b, err := h.dec.r.ReadByte()
	if err == nil {
		h.dec.hasher.Write([]byte{b}) // nolint: errcheck
	}

	return b, err
}
