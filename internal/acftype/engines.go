package acftype

// EngineType mirrors the host's engine type codes.
type EngineType int

const (
	EngineUnknown EngineType = iota - 1
	EngineRecipCarb
	EngineRecipInjected
	EngineFreeTurbine
	EngineElectric
	EngineLowBypassJet
	EngineHighBypassJet
	EngineRocket
	EngineTipRockets
	EngineFixedTurbine
)

// MaxEngines is the most engines the host models.
const MaxEngines = 8

var engineNames = map[EngineType]string{
	EngineUnknown:       "unknown",
	EngineRecipCarb:     "recip-carb",
	EngineRecipInjected: "recip-injected",
	EngineFreeTurbine:   "free-turbine",
	EngineElectric:      "electric",
	EngineLowBypassJet:  "low-bypass-jet",
	EngineHighBypassJet: "high-bypass-jet",
	EngineRocket:        "rocket",
	EngineTipRockets:    "tip-rockets",
	EngineFixedTurbine:  "fixed-turbine",
}

func (t EngineType) String() string {
	if s, ok := engineNames[t]; ok {
		return s
	}
	return "unknown"
}

func engineType(code int) EngineType {
	t := EngineType(code)
	if t < EngineRecipCarb || t > EngineFixedTurbine {
		return EngineUnknown
	}
	return t
}

// Engines is the probed engine configuration.
type Engines struct {
	Count int
	Type  EngineType
}

// NormalizeEngines turns the raw engine count and per-engine type codes
// into a homogeneous configuration. The count is clamped to [0,
// MaxEngines]; when a later engine's type differs from the first one the
// count is cut at that engine, since add-ons keep disabled phantom engines
// of other types behind the real ones.
func NormalizeEngines(count int, types []int) Engines {
	if count < 0 {
		count = 0
	}
	if count > MaxEngines {
		count = MaxEngines
	}
	if count == 0 {
		return Engines{Type: EngineUnknown}
	}
	if len(types) == 0 {
		return Engines{Count: count, Type: EngineUnknown}
	}
	if count > len(types) {
		count = len(types)
	}
	first := engineType(types[0])
	for i := 1; i < count; i++ {
		if engineType(types[i]) != first {
			count = i
			break
		}
	}
	return Engines{Count: count, Type: first}
}
