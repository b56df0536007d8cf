package models

import "time"

// ClassificationRecord is one row of the classification journal, written
// every time the user aircraft is identified.
type ClassificationRecord struct {
	ID           int64     `json:"id"`
	SessionID    string    `json:"session_id"`          // Aircraft session that produced the record
	Timestamp    time.Time `json:"timestamp"`           // When the aircraft was classified
	Variant      string    `json:"variant"`             // Variant name, e.g. zibo-b738
	Vendor       string    `json:"vendor,omitempty"`    // Add-on vendor, empty for generic aircraft
	ICAO         string    `json:"icao"`                // Type designator after correction
	ReportedICAO string    `json:"reported_icao"`       // Type designator as the aircraft reported it
	Signature    string    `json:"signature,omitempty"` // Plugin signature of the matching rule bucket
	Rule         string    `json:"rule,omitempty"`      // Rule that decided the variant
	Fallback     bool      `json:"fallback"`            // Family default used for lack of evidence
	EngineCount  int       `json:"engine_count"`
	EngineType   string    `json:"engine_type"`
	Author       string    `json:"author,omitempty"`
	Description  string    `json:"description,omitempty"`
	TailNumber   string    `json:"tail_number,omitempty"`
	FilePath     string    `json:"file_path,omitempty"`
}

// Corrected reports whether the designator was rewritten.
func (r *ClassificationRecord) Corrected() bool {
	return r.ICAO != r.ReportedICAO
}
