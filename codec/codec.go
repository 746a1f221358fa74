// Package codec serializes per-scene records as tagged JSON lines or msgpack streams
package codec

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/YishiMichael/morphing-sub001/core"
	"github.com/YishiMichael/morphing-sub001/timeline"
)

// Format names a wire encoding
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// maxLine bounds one JSON record
const maxLine = 64 << 20

var (
	ErrMalformed     = errors.New("malformed record")
	ErrUnknownFormat = errors.New("unknown record format")
)

// MalformedError reports a record that failed to decode
// Index counts records from zero within the stream
type MalformedError struct {
	Index int
	Scene string
	Err   error
}

func (e *MalformedError) Error() string {
	if e.Scene != "" {
		return fmt.Sprintf("record %d (scene %q): %v", e.Index, e.Scene, e.Err)
	}
	return fmt.Sprintf("record %d: %v", e.Index, e.Err)
}

func (e *MalformedError) Unwrap() error { return e.Err }

// Is matches ErrMalformed
func (e *MalformedError) Is(target error) bool { return target == ErrMalformed }

// Record is the output of one recorded scene
type Record struct {
	ID       uuid.UUID
	Scene    string
	Interval core.TimeInterval
	Entries  []timeline.Entry
}

// NewRecord stamps a fresh record identity
func NewRecord(scene string, iv core.TimeInterval, entries []timeline.Entry) *Record {
	return &Record{ID: uuid.New(), Scene: scene, Interval: iv, Entries: entries}
}

// ParseFormat validates a format name
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatJSON, FormatMsgpack:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
}

// Marshal encodes a single record
func Marshal(rec *Record, f Format) ([]byte, error) {
	switch f {
	case FormatJSON:
		wr, err := jsonWire.record(rec)
		if err != nil {
			return nil, err
		}
		return json.Marshal(wr)
	case FormatMsgpack:
		wr, err := msgpackWire.record(rec)
		if err != nil {
			return nil, err
		}
		return msgpack.Marshal(wr)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
}

// Unmarshal decodes a single record; failures wrap ErrMalformed
func Unmarshal(data []byte, f Format) (*Record, error) {
	var (
		rec *Record
		err error
	)
	switch f {
	case FormatJSON:
		rec, err = decodeWith(jsonWire, data, json.Unmarshal)
	case FormatMsgpack:
		rec, err = decodeWith(msgpackWire, data, msgpack.Unmarshal)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, f)
	}
	if err != nil && !errors.Is(err, ErrMalformed) {
		err = &MalformedError{Err: err}
	}
	return rec, err
}

func decodeWith[R ~[]byte](w wire[R], data []byte, unmarshal func([]byte, any) error) (*Record, error) {
	var wr wireRecord[R]
	if err := unmarshal(data, &wr); err != nil {
		return nil, err
	}
	return w.fromRecord(&wr)
}

func (w wire[R]) fromRecord(wr *wireRecord[R]) (*Record, error) {
	id, err := uuid.Parse(wr.ID)
	if err != nil {
		return nil, &MalformedError{Scene: wr.Scene, Err: fmt.Errorf("id: %w", err)}
	}
	if err := wr.Interval.Validate(); err != nil {
		return nil, &MalformedError{Scene: wr.Scene, Err: err}
	}
	entries, err := w.fromEntries(wr.Entries)
	if err != nil {
		return nil, &MalformedError{Scene: wr.Scene, Err: err}
	}
	for i, e := range entries {
		if err := e.Validate(); err != nil {
			return nil, &MalformedError{Scene: wr.Scene, Err: fmt.Errorf("entry %d: %w", i, err)}
		}
	}
	return &Record{ID: id, Scene: wr.Scene, Interval: wr.Interval, Entries: entries}, nil
}

// Encoder writes a stream of records
type Encoder struct {
	w      io.Writer
	format Format
	mp     *msgpack.Encoder
}

// NewEncoder writes records to w in format f
func NewEncoder(w io.Writer, f Format) (*Encoder, error) {
	if _, err := ParseFormat(string(f)); err != nil {
		return nil, err
	}
	enc := &Encoder{w: w, format: f}
	if f == FormatMsgpack {
		enc.mp = msgpack.NewEncoder(w)
	}
	return enc, nil
}

// Encode appends one record to the stream
func (e *Encoder) Encode(rec *Record) error {
	switch e.format {
	case FormatMsgpack:
		wr, err := msgpackWire.record(rec)
		if err != nil {
			return fmt.Errorf("scene %q: %w", rec.Scene, err)
		}
		return e.mp.Encode(wr)
	default:
		b, err := Marshal(rec, FormatJSON)
		if err != nil {
			return fmt.Errorf("scene %q: %w", rec.Scene, err)
		}
		b = append(b, '\n')
		_, err = e.w.Write(b)
		return err
	}
}

// Decoder reads a stream of records
// A MalformedError leaves the decoder positioned at the next record when the
// stream framing survived; io.EOF marks the end
type Decoder struct {
	format Format
	lines  *bufio.Scanner
	mp     *msgpack.Decoder
	index  int
	broken error
}

// NewDecoder reads records from r in format f
func NewDecoder(r io.Reader, f Format) (*Decoder, error) {
	if _, err := ParseFormat(string(f)); err != nil {
		return nil, err
	}
	d := &Decoder{format: f}
	switch f {
	case FormatMsgpack:
		d.mp = msgpack.NewDecoder(r)
	default:
		d.lines = bufio.NewScanner(r)
		d.lines.Buffer(make([]byte, 0, 64*1024), maxLine)
	}
	return d, nil
}

// Decode returns the next record
func (d *Decoder) Decode() (*Record, error) {
	if d.broken != nil {
		return nil, d.broken
	}
	idx := d.index
	rec, err := d.next()
	if err == io.EOF {
		return nil, io.EOF
	}
	d.index++
	if err != nil {
		var me *MalformedError
		if !errors.As(err, &me) {
			me = &MalformedError{Err: err}
		}
		me.Index = idx
		return nil, me
	}
	return rec, nil
}

func (d *Decoder) next() (*Record, error) {
	if d.format == FormatMsgpack {
		var raw msgpack.RawMessage
		if err := d.mp.Decode(&raw); err != nil {
			if err == io.EOF {
				return nil, io.EOF
			}
			// Framing is lost; nothing after this point can be trusted
			d.broken = &MalformedError{Index: d.index, Err: err}
			return nil, d.broken
		}
		return decodeWith(msgpackWire, raw, msgpack.Unmarshal)
	}

	for d.lines.Scan() {
		line := bytes.TrimSpace(d.lines.Bytes())
		if len(line) == 0 {
			continue
		}
		return decodeWith(jsonWire, line, json.Unmarshal)
	}
	if err := d.lines.Err(); err != nil {
		d.broken = &MalformedError{Index: d.index, Err: err}
		return nil, d.broken
	}
	return nil, io.EOF
}

// DecodeAll reads every record, collecting per-record failures instead of stopping
func DecodeAll(r io.Reader, f Format) ([]*Record, []error, error) {
	dec, err := NewDecoder(r, f)
	if err != nil {
		return nil, nil, err
	}
	var (
		recs []*Record
		errs []error
	)
	for {
		rec, err := dec.Decode()
		if err == io.EOF {
			return recs, errs, nil
		}
		if err != nil {
			errs = append(errs, err)
			if dec.broken != nil {
				return recs, errs, nil
			}
			continue
		}
		recs = append(recs, rec)
	}
}
