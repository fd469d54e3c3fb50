package initwfn

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/samuelfneumann/griddqn/rlerror"
)

func TestUnmarshalJSON(t *testing.T) {
	var init InitWFn
	err := json.Unmarshal([]byte(`{"Type": "Gaussian", "Config": {"Mean": 1, "StdDev": 0.5}}`), &init)
	require.NoError(t, err)
	require.Equal(t, Gaussian, init.Type)
	require.Equal(t, GaussianConfig{Mean: 1, StdDev: 0.5}, init.Config)
	require.NotNil(t, init.InitWFn())

	err = json.Unmarshal([]byte(`{"Type": "Zeroes"}`), &init)
	require.NoError(t, err)
	require.Equal(t, Zeroes, init.Type)

	err = json.Unmarshal([]byte(`{"Type": "Orthogonal"}`), &init)
	require.True(t, rlerror.IsInvalidConfiguration(err))
}

func TestRoundTrip(t *testing.T) {
	data, err := json.Marshal(NewGlorotU(2))
	require.NoError(t, err)

	var init InitWFn
	require.NoError(t, json.Unmarshal(data, &init))
	require.Equal(t, GlorotUConfig{Gain: 2}, init.Config)
}

func TestConstant(t *testing.T) {
	values := NewConstant(3).InitWFn()(tensor.Float64, 2, 2)
	require.Equal(t, []float64{3, 3, 3, 3}, values.([]float64))
}
