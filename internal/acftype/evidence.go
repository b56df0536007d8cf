package acftype

import (
	"path/filepath"

	"acfkit/internal/xplm"
)

// Data fields describing the user aircraft.
const (
	AuthorDataRef      = "sim/aircraft/view/acf_author"
	DescriptionDataRef = "sim/aircraft/view/acf_descrip"
	ICAODataRef        = "sim/aircraft/view/acf_ICAO"
	TailNumberDataRef  = "sim/aircraft/view/acf_tailnum"
	NumEnginesDataRef  = "sim/aircraft/engine/acf_num_engines"
	EngineTypeDataRef  = "sim/aircraft/prop/acf_en_type"
)

// Evidence is what a probing pass learned about the loaded aircraft. It is
// read-only once captured.
type Evidence struct {
	Plugins     map[string]bool
	Author      string
	Description string
	ICAO        string
	TailNumber  string
	FileName    string
	FilePath    string
	EngineCount int
	EngineTypes []int
}

// HasPlugin reports whether the plugin with signature was loaded.
func (ev Evidence) HasPlugin(signature string) bool { return ev.Plugins[signature] }

// Field returns one string attribute.
func (ev Evidence) Field(f Field) string {
	switch f {
	case FieldAuthor:
		return ev.Author
	case FieldDescription:
		return ev.Description
	case FieldICAO:
		return ev.ICAO
	case FieldTailNumber:
		return ev.TailNumber
	case FieldFileName:
		return ev.FileName
	case FieldFilePath:
		return ev.FilePath
	default:
		return ""
	}
}

// Capture reads the evidence from the host, querying presence of each of
// the given plugin signatures.
func Capture(h xplm.Host, signatures []string) Evidence {
	ev := Evidence{Plugins: make(map[string]bool, len(signatures))}
	for _, sig := range signatures {
		if h.FindPluginBySignature(sig) {
			ev.Plugins[sig] = true
		}
	}

	ev.Author = xplm.ReadString(h, h.FindDataRef(AuthorDataRef), xplm.AuthorSize)
	ev.Description = xplm.ReadString(h, h.FindDataRef(DescriptionDataRef), xplm.DescriptionSize)
	ev.ICAO = xplm.ReadString(h, h.FindDataRef(ICAODataRef), xplm.ICAOSize)
	ev.TailNumber = xplm.ReadString(h, h.FindDataRef(TailNumberDataRef), xplm.TailNumberSize)

	ev.FileName, ev.FilePath = h.UserAircraftModel()
	if ev.FileName == "" && ev.FilePath != "" {
		ev.FileName = filepath.Base(ev.FilePath)
	}

	if ref := h.FindDataRef(NumEnginesDataRef); ref.Valid() {
		ev.EngineCount = h.GetInt(ref)
	}
	if ref := h.FindDataRef(EngineTypeDataRef); ref.Valid() {
		types := make([]int, MaxEngines)
		n := h.GetIntArray(ref, types, 0)
		ev.EngineTypes = types[:n]
	}
	return ev
}
