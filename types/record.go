// (c) Siemens AG 2023
//
// SPDX-License-Identifier: MIT

package types

import "encoding/json"

// Record is the flat projection of an [Outcome] for external consumers, such
// as JSON encoders and journals. Optional fields are nil when the outcome's
// variant doesn't carry them.
type Record struct {
	TypeName   string   `json:"type_name"`             // "Pong", "Timeout", "Unknown", or "PingExited"
	DurationMS *float64 `json:"duration_ms,omitempty"` // Pong only
	Line       string   `json:"line,omitempty"`        // raw text, stderr for PingExited
	ExitCode   *int     `json:"exit_code,omitempty"`   // PingExited only
	Stderr     *string  `json:"stderr,omitempty"`      // PingExited only
	IsSuccess  bool     `json:"is_success"`
	IsTimeout  bool     `json:"is_timeout"`
	IsUnknown  bool     `json:"is_unknown"`
	IsExited   bool     `json:"is_exited"`
}

// Record returns the record projection of this outcome.
func (o Outcome) Record() Record {
	r := Record{
		TypeName:  o.TypeName(),
		Line:      o.Line(),
		IsSuccess: o.IsSuccess(),
		IsTimeout: o.IsTimeout(),
		IsUnknown: o.IsUnknown(),
		IsExited:  o.IsExited(),
	}
	if ms, ok := o.DurationMS(); ok {
		r.DurationMS = &ms
	}
	if code, ok := o.ExitCode(); ok {
		r.ExitCode = &code
	}
	if stderr, ok := o.Stderr(); ok {
		r.Stderr = &stderr
	}
	return r
}

// ToMap returns the record projection of this outcome as a map, leaving out
// the fields not carried by the outcome's variant.
func (o Outcome) ToMap() map[string]any {
	r := o.Record()
	m := map[string]any{
		"type_name":  r.TypeName,
		"line":       r.Line,
		"is_success": r.IsSuccess,
		"is_timeout": r.IsTimeout,
		"is_unknown": r.IsUnknown,
		"is_exited":  r.IsExited,
	}
	if r.DurationMS != nil {
		m["duration_ms"] = *r.DurationMS
	}
	if r.ExitCode != nil {
		m["exit_code"] = *r.ExitCode
	}
	if r.Stderr != nil {
		m["stderr"] = *r.Stderr
	}
	return m
}

// MarshalJSON renders the outcome as its [Record].
func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.Record())
}
