// Package marshal implements a pooled streaming JSON encoder/decoder used to
// convert evaluator Values to and from their JSON representation (the
// read_json/write_json stdlib functions, and the serialized-value output
// format described in spec section 6).
//
// The package deals only in JSON syntax tokens and the handful of Go
// primitive types JSON can represent (nil, bool, int64, float64, string,
// []interface{}, map[string]interface{}); it knows nothing about the
// evaluator's Value type, so it carries no import-cycle risk.
package marshal

import (
	"bytes"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/grailbio/base/log"
)

// Encoder writes a JSON document incrementally. The zero value is not
// usable; call NewEncoder.
type Encoder struct {
	buf       bytes.Buffer
	needComma []bool // one entry per open array/object; true once an element has been written
}

var encoderPool = sync.Pool{New: func() interface{} { return &Encoder{} }}

// NewEncoder returns an Encoder from the free pool. Call ReleaseEncoder when
// done to return it.
func NewEncoder() *Encoder {
	e := encoderPool.Get().(*Encoder)
	e.Reset()
	return e
}

// ReleaseEncoder returns the final encoded bytes and puts e back in the pool.
func ReleaseEncoder(e *Encoder) []byte {
	data := append([]byte(nil), e.buf.Bytes()...)
	e.Reset()
	encoderPool.Put(e)
	return data
}

// Reset clears the encoder for reuse.
func (e *Encoder) Reset() {
	e.buf.Reset()
	e.needComma = e.needComma[:0]
}

// Bytes returns the bytes written so far without releasing the encoder.
func (e *Encoder) Bytes() []byte { return e.buf.Bytes() }

func (e *Encoder) beforeValue() {
	n := len(e.needComma)
	if n == 0 {
		return
	}
	if e.needComma[n-1] {
		e.buf.WriteByte(',')
	} else {
		e.needComma[n-1] = true
	}
}

// PutNull writes a JSON null.
func (e *Encoder) PutNull() {
	e.beforeValue()
	e.buf.WriteString("null")
}

// PutBool writes a JSON bool.
func (e *Encoder) PutBool(v bool) {
	e.beforeValue()
	if v {
		e.buf.WriteString("true")
	} else {
		e.buf.WriteString("false")
	}
}

// PutInt writes a JSON number with no fractional part.
func (e *Encoder) PutInt(v int64) {
	e.beforeValue()
	e.buf.WriteString(strconv.FormatInt(v, 10))
}

// PutFloat writes a JSON number.
func (e *Encoder) PutFloat(v float64) {
	e.beforeValue()
	e.buf.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
}

// PutString writes a quoted, escaped JSON string.
func (e *Encoder) PutString(s string) {
	e.beforeValue()
	b, err := json.Marshal(s)
	if err != nil {
		log.Panicf("marshal: invalid string %q: %v", s, err)
	}
	e.buf.Write(b)
}

// BeginArray opens a JSON array.
func (e *Encoder) BeginArray() {
	e.beforeValue()
	e.buf.WriteByte('[')
	e.needComma = append(e.needComma, false)
}

// EndArray closes the innermost open array.
func (e *Encoder) EndArray() {
	e.needComma = e.needComma[:len(e.needComma)-1]
	e.buf.WriteByte(']')
}

// BeginObject opens a JSON object.
func (e *Encoder) BeginObject() {
	e.beforeValue()
	e.buf.WriteByte('{')
	e.needComma = append(e.needComma, false)
}

// PutKey writes an object member key. Must be called before the member's
// value, inside a BeginObject/EndObject pair.
func (e *Encoder) PutKey(k string) {
	e.beforeValue()
	b, err := json.Marshal(k)
	if err != nil {
		log.Panicf("marshal: invalid key %q: %v", k, err)
	}
	e.buf.Write(b)
	e.buf.WriteByte(':')
	// A key write is not itself a value; undo the comma bookkeeping it
	// triggered so the following value doesn't get a spurious comma.
	e.needComma[len(e.needComma)-1] = false
}

// EndObject closes the innermost open object.
func (e *Encoder) EndObject() {
	e.needComma = e.needComma[:len(e.needComma)-1]
	e.buf.WriteByte('}')
}

// Decoder parses a JSON document into the generic node shape
// (nil/bool/int64/float64/string/[]interface{}/map[string]interface{}).
type Decoder struct {
	data []byte
}

var decoderPool = sync.Pool{New: func() interface{} { return &Decoder{} }}

// NewDecoder returns a Decoder from the free pool.
func NewDecoder(data []byte) *Decoder {
	d := decoderPool.Get().(*Decoder)
	d.data = data
	return d
}

// ReleaseDecoder returns d to the free pool.
func ReleaseDecoder(d *Decoder) {
	d.data = nil
	decoderPool.Put(d)
}

// Decode parses the full document, numbers decoding to int64 when they have
// no fractional/exponent part and to float64 otherwise.
func (d *Decoder) Decode() (interface{}, error) {
	dec := json.NewDecoder(bytes.NewReader(d.data))
	dec.UseNumber()
	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return nil, err
	}
	return normalize(raw), nil
}

func normalize(v interface{}) interface{} {
	switch x := v.(type) {
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return i
		}
		f, err := x.Float64()
		if err != nil {
			log.Panicf("marshal: invalid json number %v: %v", x, err)
		}
		return f
	case map[string]interface{}:
		for k, elem := range x {
			x[k] = normalize(elem)
		}
		return x
	case []interface{}:
		for i, elem := range x {
			x[i] = normalize(elem)
		}
		return x
	default:
		return v
	}
}
