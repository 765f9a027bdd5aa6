package timeseries

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// Encode serializes readings as a length-prefixed binary frame of columnar
// arrays (timestamps[], values[]), per spec §4.9. Layout:
//
//	uint32 count
//	count * int64  (unix nanoseconds, ascending)
//	count * float64 (IEEE 754, big-endian)
func Encode(readings []Reading) []byte {
	buf := new(bytes.Buffer)
	binary.Write(buf, binary.BigEndian, uint32(len(readings)))
	for _, r := range readings {
		binary.Write(buf, binary.BigEndian, r.Timestamp.UTC().UnixNano())
	}
	for _, r := range readings {
		binary.Write(buf, binary.BigEndian, r.Value)
	}
	return buf.Bytes()
}

// Decode is the inverse of Encode.
func Decode(data []byte) ([]Reading, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("timeseries: frame too short (%d bytes)", len(data))
	}
	r := bytes.NewReader(data)
	var count uint32
	if err := binary.Read(r, binary.BigEndian, &count); err != nil {
		return nil, fmt.Errorf("timeseries: read count: %w", err)
	}

	want := 4 + int(count)*8 + int(count)*8
	if len(data) != want {
		return nil, fmt.Errorf("timeseries: frame size %d does not match expected %d for %d readings", len(data), want, count)
	}

	timestamps := make([]int64, count)
	for i := range timestamps {
		if err := binary.Read(r, binary.BigEndian, &timestamps[i]); err != nil {
			return nil, fmt.Errorf("timeseries: read timestamp %d: %w", i, err)
		}
	}

	out := make([]Reading, count)
	for i := range out {
		var v float64
		if err := binary.Read(r, binary.BigEndian, &v); err != nil {
			return nil, fmt.Errorf("timeseries: read value %d: %w", i, err)
		}
		out[i] = Reading{Timestamp: time.Unix(0, timestamps[i]).UTC(), Value: v}
	}
	return out, nil
}
