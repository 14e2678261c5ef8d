package models

import "time"

// ProbeResult captures the outcome of a single connect-and-wait probe.
type ProbeResult struct {
	Endpoint   string    `json:"endpoint"`
	OK         bool      `json:"ok"`
	Kind       string    `json:"kind,omitempty"`
	RemoteAddr string    `json:"remote_addr,omitempty"`
	LatencyMs  int64     `json:"latency_ms"`
	Received   bool      `json:"received"`
	Binary     bool      `json:"binary,omitempty"`
	Message    []byte    `json:"message,omitempty"`
	Error      string    `json:"error,omitempty"`
	CheckedAt  time.Time `json:"checked_at"`
}
