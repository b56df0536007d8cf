// Package xplm describes the capability surface of the simulator host that
// acfkit runs inside of. Everything the core needs from the host goes
// through these interfaces; adapters (an in-memory host, a UDP bridge to a
// live simulator) implement them.
package xplm

// DataRef is an opaque handle to a host data field. The zero value means
// the field could not be resolved.
type DataRef uint32

// Valid reports whether the handle was resolved.
func (r DataRef) Valid() bool { return r != 0 }

// CommandRef is an opaque handle to a host command. The zero value means
// the command could not be resolved.
type CommandRef uint32

// Valid reports whether the handle was resolved.
func (r CommandRef) Valid() bool { return r != 0 }

// Phase is the phase of a command invocation.
type Phase int

const (
	PhaseBegin Phase = iota
	PhaseContinue
	PhaseEnd
)

func (p Phase) String() string {
	switch p {
	case PhaseBegin:
		return "begin"
	case PhaseContinue:
		return "continue"
	case PhaseEnd:
		return "end"
	default:
		return "unknown"
	}
}

// CommandHandler is called for each phase of a command. Returning true lets
// the host pass the command on to other handlers.
type CommandHandler func(ref CommandRef, phase Phase) bool

// DataAccess reads and writes host data fields. Reads of unresolved or
// mistyped handles return zero values; writes to them are ignored.
type DataAccess interface {
	FindDataRef(name string) DataRef
	GetInt(ref DataRef) int
	SetInt(ref DataRef, v int)
	GetFloat(ref DataRef) float32
	SetFloat(ref DataRef, v float32)
	// GetIntArray copies up to len(dst) elements starting at offset and
	// returns the number of elements copied.
	GetIntArray(ref DataRef, dst []int, offset int) int
	GetFloatArray(ref DataRef, dst []float32, offset int) int
	SetFloatArray(ref DataRef, src []float32, offset int)
	GetBytes(ref DataRef, dst []byte, offset int) int
	SetBytes(ref DataRef, src []byte, offset int)
}

// Commands finds, creates and invokes host commands.
type Commands interface {
	FindCommand(name string) CommandRef
	CreateCommand(name, description string) CommandRef
	// RegisterCommandHandler attaches h to ref and returns a function that
	// detaches it again.
	RegisterCommandHandler(ref CommandRef, before bool, h CommandHandler) (unregister func())
	CommandOnce(ref CommandRef)
	CommandBegin(ref CommandRef)
	CommandEnd(ref CommandRef)
}

// Plugins answers presence queries for other plugins loaded in the host.
// Absence is a normal answer, never an error.
type Plugins interface {
	FindPluginBySignature(signature string) bool
}

// Aircraft describes the user aircraft model currently loaded.
type Aircraft interface {
	// UserAircraftModel returns the model file name and its full path.
	UserAircraftModel() (fileName, path string)
}

// Host is the full capability surface.
type Host interface {
	DataAccess
	Commands
	Plugins
	Aircraft
}
