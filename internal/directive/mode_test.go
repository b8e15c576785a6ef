package directive

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestMode(t *testing.T) {
	require.Equal(t, "Legend", Legend.String())
	require.Equal(t, "Python", Python.String())
	require.Equal(t, "Mode(7)", Mode(7).String())

	require.Equal(t, LegendIdentity, Legend.Identity())
	require.Equal(t, PythonIdentity, Python.Identity())
	require.Equal(t, 0, Legend.CursorLine())
	require.Equal(t, 2, Python.CursorLine())
}

func TestParseMode(t *testing.T) {
	require.Equal(t, Python, ParseMode("Python"))
	require.Equal(t, Legend, ParseMode("Legend"))
	require.Equal(t, Legend, ParseMode(""))
	require.Equal(t, Legend, ParseMode("python"))
}

func TestParseModeFold(t *testing.T) {
	m, err := ParseModeFold(" PYTHON ")
	require.NoError(t, err)
	require.Equal(t, Python, m)

	m, err = ParseModeFold("legend")
	require.NoError(t, err)
	require.Equal(t, Legend, m)

	_, err = ParseModeFold("ruby")
	require.Error(t, err)
}

func TestSelectorOptions(t *testing.T) {
	opts := SelectorOptions()
	require.Equal(t, []SelectorOption{
		{Label: "-- Select Kernel --", Value: ""},
		{Label: "Python", Value: "Python"},
		{Label: "Legend", Value: "Legend"},
	}, opts)
	for _, o := range opts {
		if o.Value != "" {
			require.Equal(t, o.Value, ParseMode(o.Value).String())
		}
	}
}

func TestIdentitiesFor(t *testing.T) {
	require.Equal(t, LegendIdentity, Identities{}.For(Legend))
	require.Equal(t, PythonIdentity, Identities{}.For(Python))
	require.Equal(t, Identities{Legend: LegendIdentity, Python: PythonIdentity}, DefaultIdentities())
	ids := Identities{Legend: "text/x-legend2"}
	require.Equal(t, "text/x-legend2", ids.For(Legend))
	require.Equal(t, PythonIdentity, ids.For(Python))
}

func TestFrameScheduler(t *testing.T) {
	s := NewFrameScheduler()
	var order []int
	s.Defer(func() {
		order = append(order, 1)
		s.Defer(func() { order = append(order, 3) })
	})
	s.Defer(func() { order = append(order, 2) })

	require.Equal(t, 2, s.Pending())
	require.Equal(t, 2, s.Flush())
	require.Equal(t, []int{1, 2}, order)
	require.Equal(t, 1, s.Pending(), "work deferred during a flush waits a frame")
	require.Equal(t, 1, s.Flush())
	require.Equal(t, []int{1, 2, 3}, order)
}
