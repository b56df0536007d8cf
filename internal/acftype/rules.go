package acftype

// Candidate pairs a secondary probe with the variant it selects.
type Candidate struct {
	Probe   Probe
	Variant Variant
}

// Bucket groups the variants sharing one plugin signature. Candidates are
// tested in order; Default is used when none matches.
type Bucket struct {
	Signature  string
	Candidates []Candidate
	Default    Variant
}

// Correction maps evidence about an aircraft without a dedicated add-on to
// the type designator it should report.
type Correction struct {
	Probe Probe
	ICAO  string
}

func desc(text string, v Variant) Candidate {
	return Candidate{Probe: Probe{Field: FieldDescription, Op: Contains, Text: text}, Variant: v}
}

func author(text string, v Variant) Candidate {
	return Candidate{Probe: Probe{Field: FieldAuthor, Op: Contains, Text: text}, Variant: v}
}

func icao(text string, v Variant) Candidate {
	return Candidate{Probe: Probe{Field: FieldICAO, Op: Equals, Text: text}, Variant: v}
}

func file(text string, v Variant) Candidate {
	return Candidate{Probe: Probe{Field: FieldFileName, Op: HasPrefix, Text: text}, Variant: v}
}

// DefaultBuckets is the signature decision list, most specific first.
// Several Airbus add-ons are built on the QPAC plugin and also register its
// signature, so theirs must come before it.
var DefaultBuckets = []Bucket{
	{
		Signature: "ru.flightfactor-steptosky.757767avionics",
		Candidates: []Candidate{
			icao("B752", B752FF),
			icao("B753", B753FF),
			icao("B763", B763FF),
			desc("757-300", B753FF),
			desc("767", B763FF),
			desc("757", B752FF),
		},
		Default: B752FF,
	},
	{Signature: "ru.flightfactor-steptosky.777avionics", Default: B77LFF},
	{Signature: "XP11.ToLiss.A319.systems", Default: A319TL},
	{Signature: "XP11.ToLiss.A321.systems", Default: A321TL},
	{Signature: "XP11.ToLiss.A346.systems", Default: A346TL},
	{Signature: "ff.a320.ultimate", Default: A320FF},
	{
		Signature: "QPAC.airbus.fbw",
		Candidates: []Candidate{
			author("RWDesigns", A330RW),
			author("FlightFactor", A350FF),
			desc("A350", A350FF),
			desc("A330", A330RW),
			desc("A320", A320QP),
		},
		Default: A320QP,
	},
	{
		Signature: "bs.x737.plugin",
		Candidates: []Candidate{
			desc("737-800", B737EA),
			desc("737-700", B737EA7),
		},
		Default: B737EA,
	},
	{
		Signature: "zibomod.by.Zibo",
		Candidates: []Candidate{
			icao("B739", B739ZB),
			desc("737-900", B739ZB),
			icao("B738", B738ZB),
			desc("737-800", B738ZB),
		},
		Default: B738ZB,
	},
	{Signature: "ixeg.733.systems", Default: B733IX},
	{Signature: "rotate.md80.core", Default: MD88RO},
	{
		Signature: "FJCC.SSGERJ",
		Candidates: []Candidate{
			desc("E170", E170SS),
			desc("E-170", E170SS),
			desc("E195", E195SS),
			desc("E-195", E195SS),
			icao("E195", E195SS),
		},
		Default: E170SS,
	},
	{
		Signature: "ERJ_Functions",
		Candidates: []Candidate{
			icao("E175", E175XC),
			icao("E195", E195XC),
			desc("E195", E195XC),
			desc("E175", E175XC),
		},
		Default: E175XC,
	},
	{Signature: "FJS.Q4XP.Manager", Default: DH8DFJ},
	{
		Signature: "FlyJSim.Systems",
		Candidates: []Candidate{
			icao("B722", B722FJ),
			icao("B732", B732FJ),
			file("727", B722FJ),
			desc("727", B722FJ),
			desc("737-200", B732FJ),
		},
		Default: B732FJ,
	},
	{Signature: "dden.challenger300", Default: CL30DD},
	{Signature: "RWDesigns.HA4T", Default: HA4TRW},
}

// DefaultCorrections fixes the designator of stock aircraft known to report
// a wrong or missing one.
var DefaultCorrections = []Correction{
	{Probe: Probe{Field: FieldDescription, Op: Contains, Text: "Boeing 747-400"}, ICAO: "B744"},
	{Probe: Probe{Field: FieldDescription, Op: Contains, Text: "Boeing 737-800"}, ICAO: "B738"},
	{Probe: Probe{Field: FieldDescription, Op: Contains, Text: "MD-82"}, ICAO: "MD82"},
	{Probe: Probe{Field: FieldDescription, Op: Contains, Text: "A330-300"}, ICAO: "A333"},
	{Probe: Probe{Field: FieldDescription, Op: Contains, Text: "King Air C90"}, ICAO: "BE9L"},
	{Probe: Probe{Field: FieldDescription, Op: Contains, Text: "Baron 58"}, ICAO: "BE58"},
	{Probe: Probe{Field: FieldDescription, Op: Contains, Text: "Cirrus SR22"}, ICAO: "SR22"},
	{Probe: Probe{Field: FieldDescription, Op: Contains, Text: "Columbia 400"}, ICAO: "COL4"},
	{Probe: Probe{Field: FieldDescription, Op: Contains, Text: "PA-18"}, ICAO: "PA18"},
	{Probe: Probe{Field: FieldFileName, Op: HasPrefix, Text: "Cessna_172"}, ICAO: "C172"},
}
