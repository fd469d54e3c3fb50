package solver

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/samuelfneumann/griddqn/rlerror"
)

func TestFromName(t *testing.T) {
	for _, name := range []Type{RMSProp, Adam, Vanilla} {
		s, err := FromName(string(name), 0.1, 32)
		require.NoError(t, err)
		require.Equal(t, name, s.Type)
		require.NotNil(t, s.Solver)
	}

	s, err := FromName("RMSProp", 0.25, 8)
	require.NoError(t, err)
	require.Equal(t, 0.25, s.Config.(RMSPropConfig).StepSize)

	_, err = FromName("LBFGS", 0.1, 32)
	require.True(t, rlerror.IsInvalidConfiguration(err))

	_, err = FromName("Adam", 0, 32)
	require.True(t, rlerror.IsInvalidConfiguration(err))
}

func TestUnmarshalJSON(t *testing.T) {
	var s Solver
	data := `{"Type": "Adam", "Config": {"StepSize": 0.01, "Epsilon": 1e-8,
		"Beta1": 0.9, "Beta2": 0.999, "Batch": 16}}`
	require.NoError(t, json.Unmarshal([]byte(data), &s))
	require.Equal(t, Adam, s.Type)
	require.Equal(t, 16, s.Config.(AdamConfig).Batch)
	require.NotNil(t, s.Solver)

	err := json.Unmarshal([]byte(`{"Type": "Nesterov", "Config": {}}`), &s)
	require.True(t, rlerror.IsInvalidConfiguration(err))
}

func TestRMSPropClip(t *testing.T) {
	s, err := NewRMSProp(0.1, 1e-8, 0.9, 4, 1.0)
	require.NoError(t, err)
	require.Equal(t, RMSProp, s.Type)
	require.Equal(t, 1.0, s.Config.(RMSPropConfig).Clip)
}
