package component_test

import (
	"testing"
	"time"

	"github.com/arthur-debert/stgcore/pkg/component"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParamsGetters(t *testing.T) {
	p := component.Params{
		"resolution": "16",
		"dt":         0.5,
		"verbose":    "true",
		"name":       "box",
		"dims":       "x, y z",
		"list":       []interface{}{"a", "b"},
		"broken":     "sixteen",
	}

	tests := []struct {
		name string
		got  func() (interface{}, error)
		want interface{}
	}{
		{"int_from_string", func() (interface{}, error) { return p.Int("resolution", 1) }, 16},
		{"uint_from_string", func() (interface{}, error) { return p.Uint("resolution", 1) }, uint(16)},
		{"float_native", func() (interface{}, error) { return p.Float("dt", 1) }, 0.5},
		{"float_default", func() (interface{}, error) { return p.Float("missing", 2.5) }, 2.5},
		{"bool_from_string", func() (interface{}, error) { return p.Bool("verbose", false) }, true},
		{"string", func() (interface{}, error) { return p.String("name", "") }, "box"},
		{"strings_split", func() (interface{}, error) { return p.Strings("dims", nil) }, []string{"x", "y", "z"}},
		{"strings_list", func() (interface{}, error) { return p.Strings("list", nil) }, []string{"a", "b"}},
		{"strings_default", func() (interface{}, error) { return p.Strings("missing", []string{"d"}) }, []string{"d"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.got()
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("bad_value", func(t *testing.T) {
		_, err := p.Int("broken", 0)
		assert.True(t, errors.IsErrorCode(err, errors.ErrBadParam))
	})
}

func TestParamsRequired(t *testing.T) {
	p := component.Params{"steps": 10}

	v, err := p.RequireInt("steps")
	require.NoError(t, err)
	assert.Equal(t, 10, v)

	_, err = p.RequireFloat("dt")
	assert.True(t, errors.IsErrorCode(err, errors.ErrMissingParam))
	d, _ := errors.Detail(err, "param")
	assert.Equal(t, "dt", d)
}

func TestParamsDecode(t *testing.T) {
	type solverParams struct {
		Tolerance float64       `param:"tolerance"`
		MaxIts    int           `param:"max_its"`
		Timeout   time.Duration `param:"timeout"`
		Fields    []string      `param:"fields"`
	}

	p := component.Params{
		"tolerance": "1e-6",
		"max_its":   "200",
		"timeout":   "2s",
		"fields":    "velocity,pressure",
	}

	var got solverParams
	require.NoError(t, p.Decode(&got))
	assert.Equal(t, solverParams{
		Tolerance: 1e-6,
		MaxIts:    200,
		Timeout:   2 * time.Second,
		Fields:    []string{"velocity", "pressure"},
	}, got)
}

func TestParamsSub(t *testing.T) {
	p := component.Params{"bc": map[string]interface{}{"left": 1}}
	assert.True(t, p.Sub("bc").Has("left"))
	assert.Empty(t, p.Sub("missing"))
	assert.Equal(t, []string{"bc"}, p.Keys())
}
