package encoding

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"
	"github.com/vmihailenco/msgpack/v5"
)

// SnapshotMagic heads every snapshot stream.
const SnapshotMagic = "querygate-snapshot/1"

// ErrBadSnapshot is returned when a stream does not start with SnapshotMagic.
var ErrBadSnapshot = errors.New("not a querygate snapshot")

// SnapshotWriter writes a zstd-compressed stream of msgpack records.
type SnapshotWriter struct {
	zw  *zstd.Encoder
	enc *msgpack.Encoder
}

// NewSnapshotWriter starts a snapshot on w and writes the stream header.
func NewSnapshotWriter(w io.Writer, level zstd.EncoderLevel) (*SnapshotWriter, error) {
	zw, err := zstd.NewWriter(w, zstd.WithEncoderLevel(level))
	if err != nil {
		return nil, err
	}
	s := &SnapshotWriter{zw: zw, enc: msgpack.NewEncoder(zw)}
	if err := s.enc.EncodeString(SnapshotMagic); err != nil {
		zw.Close()
		return nil, fmt.Errorf("write snapshot header: %w", err)
	}
	return s, nil
}

// Write appends one record.
func (s *SnapshotWriter) Write(v interface{}) error {
	return s.enc.Encode(v)
}

// Close flushes the compressed stream. It does not close the underlying writer.
func (s *SnapshotWriter) Close() error {
	return s.zw.Close()
}

// SnapshotReader reads records written by SnapshotWriter.
type SnapshotReader struct {
	zr  *zstd.Decoder
	dec *msgpack.Decoder
}

// NewSnapshotReader opens a snapshot and checks its header.
func NewSnapshotReader(r io.Reader) (*SnapshotReader, error) {
	zr, err := zstd.NewReader(r)
	if err != nil {
		return nil, err
	}
	dec := msgpack.NewDecoder(zr)
	dec.UseLooseInterfaceDecoding(true)

	magic, err := dec.DecodeString()
	if err != nil || magic != SnapshotMagic {
		zr.Close()
		return nil, ErrBadSnapshot
	}
	return &SnapshotReader{zr: zr, dec: dec}, nil
}

// Read decodes the next record into v. It returns io.EOF after the last one.
func (s *SnapshotReader) Read(v interface{}) error {
	err := s.dec.Decode(v)
	if errors.Is(err, io.ErrUnexpectedEOF) {
		return fmt.Errorf("truncated snapshot: %w", err)
	}
	return err
}

func (s *SnapshotReader) Close() {
	s.zr.Close()
}
