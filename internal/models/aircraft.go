package models

// TypeDesignator describes an ICAO aircraft type designator (Doc 8643).
// Fields correspond to columns of the type designator CSV file.
type TypeDesignator struct {
	ICAO         string `json:"icao"`         // Primary key - 2 to 4 character designator
	Manufacturer string `json:"manufacturer"` // Manufacturer name
	Model        string `json:"model"`        // Model name
	Description  string `json:"description"`  // Aircraft description code, e.g. L2J
	EngineType   string `json:"engine_type"`  // Jet, Turboprop/Turboshaft, Piston or Electric
	EngineCount  int    `json:"engine_count"` // Number of engines
	WTC          string `json:"wtc"`          // Wake turbulence category: L, M, H or J
}

// Name returns manufacturer and model as one string.
func (d *TypeDesignator) Name() string {
	switch {
	case d.Manufacturer == "":
		return d.Model
	case d.Model == "":
		return d.Manufacturer
	default:
		return d.Manufacturer + " " + d.Model
	}
}
