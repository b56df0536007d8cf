// Package session holds the per-aircraft resolution cache: the current
// classification and the host handles resolved for it. A Context is created
// when the plugin is enabled, reset on every aircraft change and updated
// lazily by the first action that needs it.
//
// Nothing here is safe for concurrent use; the host calls in on one thread.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"acfkit/internal/acftype"
	"acfkit/internal/xplm"

	"github.com/Masterminds/semver/v3"
	"github.com/google/uuid"
)

// DefaultSharedValuesConstraint accepts the shared value interface versions
// the vendor handles are known for.
const DefaultSharedValuesConstraint = ">= 1.0.0, < 3.0.0"

// ErrIncompatible is returned when the shared value interface reports a
// version outside the accepted constraint.
var ErrIncompatible = errors.New("shared value interface version not supported")

// DesignatorLookup describes ICAO type designators.
type DesignatorLookup interface {
	DescribeDesignator(code string) (string, bool)
}

// Snapshot is handed to observers after every classification.
type Snapshot struct {
	SessionID      string
	At             time.Time
	Classification acftype.Classification
	Evidence       acftype.Evidence
}

// Config holds the dependencies of a Context.
type Config struct {
	Host       xplm.Host
	Classifier *acftype.Classifier
	// SharedValues performs the vendor handshake; optional.
	SharedValues xplm.SharedValuesProvider
	// SharedValuesConstraint is a semver constraint; empty means
	// DefaultSharedValuesConstraint.
	SharedValuesConstraint string
	// Designators is optional.
	Designators DesignatorLookup
	Logger      *slog.Logger
}

// Context is the resolution cache for the aircraft currently loaded.
type Context struct {
	host        xplm.Host
	classifier  *acftype.Classifier
	shared      xplm.SharedValuesProvider
	constraint  *semver.Constraints
	designators DesignatorLookup
	log         *slog.Logger

	upToDate  bool
	class     acftype.Classification
	evidence  acftype.Evidence
	sessionID string
	probes    int

	bindings  []Unbinder
	hooks     []func(acftype.Classification)
	observers []func(Snapshot)
}

// New creates a Context. It fails when required dependencies are missing or
// the constraint does not parse.
func New(cfg Config) (*Context, error) {
	if cfg.Host == nil {
		return nil, fmt.Errorf("host is required")
	}
	if cfg.Classifier == nil {
		return nil, fmt.Errorf("classifier is required")
	}
	constraint := cfg.SharedValuesConstraint
	if constraint == "" {
		constraint = DefaultSharedValuesConstraint
	}
	cons, err := semver.NewConstraint(constraint)
	if err != nil {
		return nil, fmt.Errorf("invalid shared values constraint %q: %w", constraint, err)
	}
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	return &Context{
		host:        cfg.Host,
		classifier:  cfg.Classifier,
		shared:      cfg.SharedValues,
		constraint:  cons,
		designators: cfg.Designators,
		log:         log,
	}, nil
}

// Host returns the host the context resolves against.
func (c *Context) Host() xplm.Host { return c.host }

// Logger returns the context logger.
func (c *Context) Logger() *slog.Logger { return c.log }

// Register adds a binding to be unbound on Reset.
func (c *Context) Register(b Unbinder) { c.bindings = append(c.bindings, b) }

// OnUpdate registers a hook run after each classification, used to resolve
// handles that are cheap and always safe to look up.
func (c *Context) OnUpdate(fn func(acftype.Classification)) { c.hooks = append(c.hooks, fn) }

// Observe registers an observer notified after each classification.
func (c *Context) Observe(fn func(Snapshot)) { c.observers = append(c.observers, fn) }

// UpToDate reports whether the classification is current.
func (c *Context) UpToDate() bool { return c.upToDate }

// Probes returns how many probing passes the context has run.
func (c *Context) Probes() int { return c.probes }

// SessionID identifies the current classification; it changes with every
// probing pass and is empty while the context is reset.
func (c *Context) SessionID() string { return c.sessionID }

// Classification returns the current classification without probing.
func (c *Context) Classification() (acftype.Classification, bool) {
	return c.class, c.upToDate
}

// Evidence returns the evidence of the last probing pass.
func (c *Context) Evidence() acftype.Evidence { return c.evidence }

// Reset forgets the classification and unbinds every subsystem. The
// context itself stays allocated.
func (c *Context) Reset() {
	c.upToDate = false
	c.class = acftype.Classification{}
	c.evidence = acftype.Evidence{}
	c.sessionID = ""
	for _, b := range c.bindings {
		b.Unbind()
	}
	c.log.Debug("Aircraft session reset")
}

// Update classifies the loaded aircraft unless the classification is
// already current, in which case it returns the cached one.
func (c *Context) Update() acftype.Classification {
	if c.upToDate {
		return c.class
	}

	c.probes++
	ev := acftype.Capture(c.host, c.classifier.Signatures())
	cl := c.classifier.Classify(ev)

	if cl.ICAOCorrected() {
		ref := c.host.FindDataRef(acftype.ICAODataRef)
		if ref.Valid() {
			xplm.WriteString(c.host, ref, cl.ICAO, xplm.ICAOSize)
			c.log.Info("Corrected aircraft ICAO designator",
				"reported", cl.ReportedICAO,
				"corrected", cl.ICAO)
		} else {
			c.log.Debug("Cannot write corrected ICAO designator", "error", Missing("dataref", acftype.ICAODataRef))
		}
	}

	if c.designators != nil && cl.ICAO != "" {
		if name, ok := c.designators.DescribeDesignator(cl.ICAO); ok {
			c.log.Info("Type designator", "icao", cl.ICAO, "model", name)
		} else {
			c.log.Debug("Unknown type designator", "icao", cl.ICAO)
		}
	}

	c.class = cl
	c.evidence = ev
	c.upToDate = true
	c.sessionID = uuid.NewString()

	c.log.Info("Aircraft identified",
		"session", c.sessionID,
		"variant", cl.Variant.String(),
		"icao", cl.ICAO,
		"engines", cl.Engines.Count,
		"engine_type", cl.Engines.Type.String(),
		"rule", cl.Rule)

	for _, fn := range c.hooks {
		fn(cl)
	}
	snap := Snapshot{SessionID: c.sessionID, At: time.Now(), Classification: cl, Evidence: ev}
	for _, fn := range c.observers {
		fn(snap)
	}
	return cl
}

// SharedValues performs the vendor handshake and checks the reported
// version. It is attempted anew on each call; callers cache the result in a
// Binding.
func (c *Context) SharedValues() (xplm.SharedValues, error) {
	if c.shared == nil {
		return nil, xplm.ErrNoSharedValues
	}
	sv, err := c.shared.SharedValues()
	if err != nil {
		return nil, err
	}
	v, err := semver.NewVersion(sv.Version())
	if err != nil {
		return nil, fmt.Errorf("%w: %q: %v", ErrIncompatible, sv.Version(), err)
	}
	if !c.constraint.Check(v) {
		return nil, fmt.Errorf("%w: %s", ErrIncompatible, v)
	}
	return sv, nil
}
