package snapshot

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/thoreinstein/claudeguard/internal/errors"
	"github.com/thoreinstein/claudeguard/internal/risk"
)

// Record is the metadata stored with a backup. It is written once and never
// modified.
type Record struct {
	BackupID         string     `json:"backup_id"`
	Timestamp        Stamp      `json:"timestamp"`
	OperationType    string     `json:"operation_type"`
	OperationDetails Details    `json:"operation_details"`
	RiskLevel        risk.Level `json:"risk_level"`

	// AffectedFiles holds slash-separated paths relative to ProjectRoot, in
	// the order they were copied.
	AffectedFiles []string `json:"affected_files"`

	GitCommit   string `json:"git_commit,omitempty"`
	ProjectRoot string `json:"project_root"`
}

// stampSeconds is the second-resolution part of the on-disk timestamp. A
// stamp is stampSeconds plus "_ffffff" microseconds, the same as the time
// part of a backup id, so it sorts lexicographically in time order.
const stampSeconds = "20060102_150405"

// Stamp is a backup time stored as YYYYMMDD_HHMMSS_ffffff in local time.
// Decoding also accepts RFC 3339.
type Stamp struct {
	time.Time
}

// NewStamp truncates t to the microseconds a Stamp can hold.
func NewStamp(t time.Time) Stamp {
	return Stamp{Time: t.Truncate(time.Microsecond)}
}

// String returns the on-disk form.
func (s Stamp) String() string {
	local := s.Local()
	return fmt.Sprintf("%s_%06d", local.Format(stampSeconds), local.Nanosecond()/1000)
}

func (s Stamp) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *Stamp) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err != nil {
		return errors.Wrap(err, "timestamp must be a string")
	}
	t, err := ParseStamp(text)
	if err != nil {
		return err
	}
	s.Time = t
	return nil
}

// ParseStamp reads YYYYMMDD_HHMMSS_ffffff (local time) or RFC 3339.
func ParseStamp(text string) (time.Time, error) {
	if len(text) == len(stampSeconds)+7 && text[len(stampSeconds)] == '_' {
		base, err := time.ParseInLocation(stampSeconds, text[:len(stampSeconds)], time.Local)
		if err == nil {
			if us, err := strconv.Atoi(text[len(stampSeconds)+1:]); err == nil && us >= 0 {
				return base.Add(time.Duration(us) * time.Microsecond), nil
			}
		}
	}
	t, err := time.Parse(time.RFC3339Nano, text)
	if err != nil {
		return time.Time{}, errors.Newf("unrecognized timestamp %q", text)
	}
	return t, nil
}

// Details is a JSON object that remembers the order its keys were set in.
// The zero value is an empty object ready to use.
type Details struct {
	keys   []string
	values map[string]json.RawMessage
}

// Set stores value under key, encoding it as JSON. Setting an existing key
// replaces its value and keeps its position.
func (d *Details) Set(key string, value any) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return errors.Wrapf(err, "encoding detail %q", key)
	}
	d.put(key, raw)
	return nil
}

// SetRaw stores an already encoded JSON value. raw must be valid JSON.
func (d *Details) SetRaw(key string, raw json.RawMessage) {
	d.put(key, append(json.RawMessage(nil), raw...))
}

// SetString stores a string value.
func (d *Details) SetString(key, value string) {
	raw, _ := json.Marshal(value) // strings always encode
	d.put(key, raw)
}

func (d *Details) put(key string, raw json.RawMessage) {
	if d.values == nil {
		d.values = make(map[string]json.RawMessage)
	}
	if _, ok := d.values[key]; !ok {
		d.keys = append(d.keys, key)
	}
	d.values[key] = raw
}

// Get returns the raw JSON stored under key.
func (d Details) Get(key string) (json.RawMessage, bool) {
	raw, ok := d.values[key]
	return raw, ok
}

// Text returns the value under key for display: strings unquoted, anything
// else as compact JSON.
func (d Details) Text(key string) string {
	raw, ok := d.values[key]
	if !ok {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// Keys returns the keys in insertion order.
func (d Details) Keys() []string {
	return append([]string(nil), d.keys...)
}

// Len returns the number of keys.
func (d Details) Len() int {
	return len(d.keys)
}

// MarshalJSON encodes the object with keys in insertion order.
func (d Details) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		k, err := json.Marshal(key)
		if err != nil {
			return nil, err
		}
		buf.Write(k)
		buf.WriteByte(':')
		buf.Write(d.values[key])
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// UnmarshalJSON decodes an object, keeping the document's key order.
// A JSON null decodes to an empty object.
func (d *Details) UnmarshalJSON(data []byte) error {
	*d = Details{}

	dec := json.NewDecoder(bytes.NewReader(data))
	tok, err := dec.Token()
	if err != nil {
		return errors.Wrap(err, "decoding operation details")
	}
	if tok == nil {
		return nil
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return errors.Newf("operation details: expected object, got %v", tok)
	}

	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return errors.Wrap(err, "decoding operation details")
		}
		key, ok := tok.(string)
		if !ok {
			return errors.Newf("operation details: expected key, got %v", tok)
		}
		var raw json.RawMessage
		if err := dec.Decode(&raw); err != nil {
			return errors.Wrapf(err, "decoding detail %q", key)
		}
		d.put(key, raw)
	}

	if _, err := dec.Token(); err != nil {
		return errors.Wrap(err, "decoding operation details")
	}
	return nil
}

// String renders the details as key=value pairs for logs.
func (d Details) String() string {
	var buf bytes.Buffer
	for i, key := range d.keys {
		if i > 0 {
			buf.WriteByte(' ')
		}
		fmt.Fprintf(&buf, "%s=%s", key, d.Text(key))
	}
	return buf.String()
}
