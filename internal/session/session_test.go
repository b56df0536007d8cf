package session

import (
	"errors"
	"testing"

	"acfkit/internal/acftype"
	"acfkit/internal/xplm"
	"acfkit/internal/xplm/memhost"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDesignators map[string]string

func (f fakeDesignators) DescribeDesignator(code string) (string, bool) {
	name, ok := f[code]
	return name, ok
}

func newX737Host() *memhost.Host {
	h := memhost.New()
	h.AddPlugin("bs.x737.plugin")
	h.DefineString(acftype.DescriptionDataRef, "Boeing 737-800", xplm.DescriptionSize)
	h.DefineString(acftype.ICAODataRef, "738", xplm.ICAOSize)
	h.DefineInt(acftype.NumEnginesDataRef, 2)
	h.DefineInts(acftype.EngineTypeDataRef, []int{5, 5})
	return h
}

func newContext(t *testing.T, h *memhost.Host) *Context {
	t.Helper()
	c, err := New(Config{
		Host:         h,
		Classifier:   acftype.NewClassifier(nil),
		SharedValues: h,
	})
	require.NoError(t, err)
	return c
}

func TestNew_RequiresDependencies(t *testing.T) {
	_, err := New(Config{Classifier: acftype.NewClassifier(nil)})
	assert.EqualError(t, err, "host is required")

	_, err = New(Config{Host: memhost.New()})
	assert.EqualError(t, err, "classifier is required")

	_, err = New(Config{Host: memhost.New(), Classifier: acftype.NewClassifier(nil), SharedValuesConstraint: "not a constraint"})
	assert.Error(t, err)
}

func TestUpdate_IsIdempotent(t *testing.T) {
	c := newContext(t, newX737Host())

	first := c.Update()
	second := c.Update()

	assert.Equal(t, 1, c.Probes())
	assert.Equal(t, first, second)
	assert.Equal(t, acftype.B737EA, first.Variant)
}

func TestUpdate_WritesBackCorrectedICAO(t *testing.T) {
	h := newX737Host()
	c := newContext(t, h)

	cl := c.Update()
	assert.Equal(t, "B738", cl.ICAO)
	assert.Equal(t, "B738", h.String(acftype.ICAODataRef))
	assert.Equal(t, 1, h.Writes(acftype.ICAODataRef))

	// After a reset the corrected designator is what the host reports.
	c.Reset()
	cl = c.Update()
	assert.False(t, cl.ICAOCorrected())
	assert.Equal(t, 1, h.Writes(acftype.ICAODataRef))
}

func TestReset_UnbindsAndReprobes(t *testing.T) {
	h := newX737Host()
	c := newContext(t, h)
	b := NewBinding[xplm.CommandRef](c, "test")

	c.Update()
	resolves := 0
	resolve := func() (xplm.CommandRef, error) {
		resolves++
		return xplm.CommandRef(7), nil
	}
	ref, ok := b.EnsureBound(resolve)
	require.True(t, ok)
	assert.Equal(t, xplm.CommandRef(7), ref)
	_, ok = b.EnsureBound(resolve)
	require.True(t, ok)
	assert.Equal(t, 1, resolves)

	oldSession := c.SessionID()
	c.Reset()
	assert.False(t, b.Bound())
	assert.False(t, c.UpToDate())
	_, ok = c.Classification()
	assert.False(t, ok)
	assert.Empty(t, c.SessionID())

	c.Update()
	assert.Equal(t, 2, c.Probes())
	assert.NotEqual(t, oldSession, c.SessionID())
	_, ok = b.EnsureBound(resolve)
	require.True(t, ok)
	assert.Equal(t, 2, resolves)
}

func TestBinding_RetriesUntilResolved(t *testing.T) {
	c := newContext(t, memhost.New())
	b := NewBinding[int](c, "late")

	attempts := 0
	available := false
	resolve := func() (int, error) {
		attempts++
		if !available {
			return 0, Missing("dataref", "vendor/late")
		}
		return 42, nil
	}

	_, ok := b.EnsureBound(resolve)
	assert.False(t, ok)
	_, ok = b.EnsureBound(resolve)
	assert.False(t, ok)
	assert.False(t, b.Bound())

	available = true
	v, ok := b.EnsureBound(resolve)
	assert.True(t, ok)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, attempts)
}

func TestMissingError(t *testing.T) {
	err := Missing("command", "x/y")
	var me *MissingError
	require.True(t, errors.As(err, &me))
	assert.Equal(t, "command", me.Kind)
	assert.EqualError(t, err, `command "x/y" not found`)
}

func TestHooksAndObserversRunPerClassification(t *testing.T) {
	c := newContext(t, newX737Host())

	var hooked []acftype.Variant
	var snaps []Snapshot
	c.OnUpdate(func(cl acftype.Classification) { hooked = append(hooked, cl.Variant) })
	c.Observe(func(s Snapshot) { snaps = append(snaps, s) })

	c.Update()
	c.Update()
	c.Reset()
	c.Update()

	assert.Equal(t, []acftype.Variant{acftype.B737EA, acftype.B737EA}, hooked)
	require.Len(t, snaps, 2)
	assert.NotEmpty(t, snaps[0].SessionID)
	assert.Equal(t, "Boeing 737-800", snaps[0].Evidence.Description)
}

func TestSharedValuesHandshake(t *testing.T) {
	h := memhost.New()
	c := newContext(t, h)

	_, err := c.SharedValues()
	assert.ErrorIs(t, err, xplm.ErrNoSharedValues)

	h.EnableSharedValues("3.2.0", nil)
	_, err = c.SharedValues()
	assert.ErrorIs(t, err, ErrIncompatible)

	h.EnableSharedValues("garbage", nil)
	_, err = c.SharedValues()
	assert.ErrorIs(t, err, ErrIncompatible)

	h.EnableSharedValues("2.1.0", nil)
	sv, err := c.SharedValues()
	require.NoError(t, err)
	assert.Equal(t, "2.1.0", sv.Version())
}

func TestSharedValues_NoProvider(t *testing.T) {
	c, err := New(Config{Host: memhost.New(), Classifier: acftype.NewClassifier(nil)})
	require.NoError(t, err)

	_, err = c.SharedValues()
	assert.ErrorIs(t, err, xplm.ErrNoSharedValues)
}

func TestUpdate_DesignatorLookupDoesNotAlterClassification(t *testing.T) {
	h := newX737Host()
	c, err := New(Config{
		Host:        h,
		Classifier:  acftype.NewClassifier(nil),
		Designators: fakeDesignators{"B738": "BOEING 737-800"},
	})
	require.NoError(t, err)

	cl := c.Update()
	assert.Equal(t, acftype.B737EA, cl.Variant)
	assert.Equal(t, "B738", cl.ICAO)
}

func TestManager(t *testing.T) {
	m := NewManager(Config{Host: memhost.New(), Classifier: acftype.NewClassifier(nil)})
	assert.Nil(t, m.Current())

	c := m.GetOrCreate()
	require.NotNil(t, c)
	assert.Same(t, c, m.GetOrCreate())

	m.Destroy()
	assert.Nil(t, m.Current())
	assert.NotSame(t, c, m.GetOrCreate())
}

func TestManager_CreationFailureReturnsNil(t *testing.T) {
	m := NewManager(Config{Classifier: acftype.NewClassifier(nil)})
	assert.Nil(t, m.GetOrCreate())
	assert.Nil(t, m.Current())
}
