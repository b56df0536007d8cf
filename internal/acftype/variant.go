// Package acftype identifies which third-party aircraft add-on is loaded in
// the host and classifies it into one of a closed set of variants.
package acftype

import "strings"

// Variant is the classification of the user aircraft. Exactly one variant
// is active at a time; Generic covers everything without dedicated support.
type Variant int

const (
	Generic Variant = iota
	A319TL
	A321TL
	A346TL
	A320QP
	A330RW
	A350FF
	A320FF
	B733IX
	B737EA
	B737EA7
	B738ZB
	B739ZB
	B752FF
	B753FF
	B763FF
	B77LFF
	MD88RO
	E170SS
	E195SS
	E175XC
	E195XC
	DH8DFJ
	B722FJ
	B732FJ
	CL30DD
	HA4TRW

	numVariants
)

// Group is a set of variants sharing an underlying vendor dependency or
// airframe, so dispatch code can test membership without listing members.
type Group int

const (
	GroupQPAC Group = iota
	GroupToLiSS
	GroupA320Series
	GroupSharedValues
	GroupB737
	GroupX737
	GroupZibo
	GroupFF75x
	GroupEJet
	GroupXCrafts
	GroupFlyJSim
	GroupRotate
)

var groupNames = [...]string{
	GroupQPAC:         "qpac",
	GroupToLiSS:       "toliss",
	GroupA320Series:   "a320-series",
	GroupSharedValues: "shared-values",
	GroupB737:         "b737",
	GroupX737:         "x737",
	GroupZibo:         "zibo",
	GroupFF75x:        "ff-757-767",
	GroupEJet:         "e-jet",
	GroupXCrafts:      "x-crafts",
	GroupFlyJSim:      "flyjsim",
	GroupRotate:       "rotate",
}

func (g Group) String() string {
	if g >= 0 && int(g) < len(groupNames) {
		return groupNames[g]
	}
	return "unknown"
}

// Info is the static description of a variant.
type Info struct {
	Name   string
	Vendor string
	// ICAO is the type designator the variant is known to be.
	ICAO   string
	Groups []Group
}

var infos = [numVariants]Info{
	Generic: {Name: "generic", Vendor: ""},
	A319TL:  {Name: "toliss-a319", Vendor: "ToLiSS", ICAO: "A319", Groups: []Group{GroupQPAC, GroupToLiSS, GroupA320Series}},
	A321TL:  {Name: "toliss-a321", Vendor: "ToLiSS", ICAO: "A321", Groups: []Group{GroupQPAC, GroupToLiSS, GroupA320Series}},
	A346TL:  {Name: "toliss-a346", Vendor: "ToLiSS", ICAO: "A346", Groups: []Group{GroupQPAC, GroupToLiSS}},
	A320QP:  {Name: "qpac-a320", Vendor: "QPAC", ICAO: "A320", Groups: []Group{GroupQPAC, GroupA320Series}},
	A330RW:  {Name: "rwdesigns-a330", Vendor: "RWDesigns", ICAO: "A333", Groups: []Group{GroupQPAC}},
	A350FF:  {Name: "flightfactor-a350", Vendor: "FlightFactor", ICAO: "A359", Groups: []Group{GroupQPAC}},
	A320FF:  {Name: "flightfactor-a320", Vendor: "FlightFactor", ICAO: "A320", Groups: []Group{GroupA320Series, GroupSharedValues}},
	B733IX:  {Name: "ixeg-b733", Vendor: "IXEG", ICAO: "B733", Groups: []Group{GroupB737}},
	B737EA:  {Name: "x737-800", Vendor: "EADT", ICAO: "B738", Groups: []Group{GroupB737, GroupX737}},
	B737EA7: {Name: "x737-700", Vendor: "EADT", ICAO: "B737", Groups: []Group{GroupB737, GroupX737}},
	B738ZB:  {Name: "zibo-b738", Vendor: "Zibo", ICAO: "B738", Groups: []Group{GroupB737, GroupZibo}},
	B739ZB:  {Name: "zibo-b739", Vendor: "Zibo", ICAO: "B739", Groups: []Group{GroupB737, GroupZibo}},
	B752FF:  {Name: "flightfactor-b752", Vendor: "FlightFactor", ICAO: "B752", Groups: []Group{GroupFF75x}},
	B753FF:  {Name: "flightfactor-b753", Vendor: "FlightFactor", ICAO: "B753", Groups: []Group{GroupFF75x}},
	B763FF:  {Name: "flightfactor-b763", Vendor: "FlightFactor", ICAO: "B763", Groups: []Group{GroupFF75x}},
	B77LFF:  {Name: "flightfactor-b77l", Vendor: "FlightFactor", ICAO: "B77L"},
	MD88RO:  {Name: "rotate-md88", Vendor: "Rotate", ICAO: "MD88", Groups: []Group{GroupRotate}},
	E170SS:  {Name: "ssg-e170", Vendor: "SSG", ICAO: "E170", Groups: []Group{GroupEJet}},
	E195SS:  {Name: "ssg-e195", Vendor: "SSG", ICAO: "E195", Groups: []Group{GroupEJet}},
	E175XC:  {Name: "xcrafts-e175", Vendor: "X-Crafts", ICAO: "E175", Groups: []Group{GroupEJet, GroupXCrafts}},
	E195XC:  {Name: "xcrafts-e195", Vendor: "X-Crafts", ICAO: "E195", Groups: []Group{GroupEJet, GroupXCrafts}},
	DH8DFJ:  {Name: "flyjsim-q400", Vendor: "FlyJSim", ICAO: "DH8D", Groups: []Group{GroupFlyJSim}},
	B722FJ:  {Name: "flyjsim-b722", Vendor: "FlyJSim", ICAO: "B722", Groups: []Group{GroupFlyJSim}},
	B732FJ:  {Name: "flyjsim-b732", Vendor: "FlyJSim", ICAO: "B732", Groups: []Group{GroupFlyJSim, GroupB737}},
	CL30DD:  {Name: "dden-cl300", Vendor: "DDen", ICAO: "CL30"},
	HA4TRW:  {Name: "rwdesigns-ha4t", Vendor: "RWDesigns", ICAO: "HA4T"},
}

// Info returns the static description of v; unknown values describe
// Generic.
func (v Variant) Info() Info {
	if v < 0 || v >= numVariants {
		return infos[Generic]
	}
	return infos[v]
}

func (v Variant) String() string { return v.Info().Name }

// In reports whether v is a member of g.
func (v Variant) In(g Group) bool {
	for _, m := range v.Info().Groups {
		if m == g {
			return true
		}
	}
	return false
}

// Variants returns every variant, Generic first.
func Variants() []Variant {
	out := make([]Variant, 0, numVariants)
	for v := Generic; v < numVariants; v++ {
		out = append(out, v)
	}
	return out
}

// ParseVariant looks a variant up by name, case-insensitively.
func ParseVariant(name string) (Variant, bool) {
	for v := Generic; v < numVariants; v++ {
		if strings.EqualFold(infos[v].Name, name) {
			return v, true
		}
	}
	return Generic, false
}
