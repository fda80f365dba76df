package component

import (
	"sort"
	"strings"

	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/go-viper/mapstructure/v2"
)

// Params is a parameter dictionary. Values arrive from TOML, YAML or XML,
// so getters convert weakly: "3" reads as 3 and "true" as true.
type Params map[string]interface{}

// Has reports whether key is set.
func (p Params) Has(key string) bool {
	_, ok := p[key]
	return ok
}

// Keys returns the parameter names, sorted.
func (p Params) Keys() []string {
	keys := make([]string, 0, len(p))
	for k := range p {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Sub returns a nested dictionary, or an empty one.
func (p Params) Sub(key string) Params {
	switch v := p[key].(type) {
	case map[string]interface{}:
		return Params(v)
	case Params:
		return v
	default:
		return Params{}
	}
}

// Float returns key as a float64, or def when absent.
func (p Params) Float(key string, def float64) (float64, error) {
	return get(p, key, def)
}

// Int returns key as an int, or def when absent.
func (p Params) Int(key string, def int) (int, error) {
	return get(p, key, def)
}

// Uint returns key as a uint, or def when absent.
func (p Params) Uint(key string, def uint) (uint, error) {
	return get(p, key, def)
}

// Bool returns key as a bool, or def when absent.
func (p Params) Bool(key string, def bool) (bool, error) {
	return get(p, key, def)
}

// String returns key as a string, or def when absent.
func (p Params) String(key string, def string) (string, error) {
	return get(p, key, def)
}

// Strings returns key as a list. A single string is split on commas and
// whitespace, which is how lists are written in XML.
func (p Params) Strings(key string, def []string) ([]string, error) {
	raw, ok := p[key]
	if !ok {
		return def, nil
	}
	if s, ok := raw.(string); ok {
		return splitList(s), nil
	}
	return get(p, key, def)
}

// RequireFloat is Float without a default.
func (p Params) RequireFloat(key string) (float64, error) {
	return require[float64](p, key)
}

// RequireInt is Int without a default.
func (p Params) RequireInt(key string) (int, error) {
	return require[int](p, key)
}

// RequireUint is Uint without a default.
func (p Params) RequireUint(key string) (uint, error) {
	return require[uint](p, key)
}

// RequireBool is Bool without a default.
func (p Params) RequireBool(key string) (bool, error) {
	return require[bool](p, key)
}

// RequireString is String without a default.
func (p Params) RequireString(key string) (string, error) {
	return require[string](p, key)
}

// Decode fills a struct from the dictionary using `param` field tags.
func (p Params) Decode(target interface{}) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           target,
		TagName:          "param",
		WeaklyTypedInput: true,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to create parameter decoder")
	}
	if err := dec.Decode(map[string]interface{}(p)); err != nil {
		return errors.Wrap(err, errors.ErrBadParam, "failed to decode parameters")
	}
	return nil
}

func get[T any](p Params, key string, def T) (T, error) {
	raw, ok := p[key]
	if !ok || raw == nil {
		return def, nil
	}
	var out T
	if err := mapstructure.WeakDecode(raw, &out); err != nil {
		return def, errors.Wrapf(err, errors.ErrBadParam, "parameter '%s' has an invalid value %v", key, raw).
			WithDetail("param", key)
	}
	return out, nil
}

func require[T any](p Params, key string) (T, error) {
	var zero T
	if !p.Has(key) {
		return zero, errors.Newf(errors.ErrMissingParam, "required parameter '%s' is missing", key).
			WithDetail("param", key)
	}
	return get(p, key, zero)
}

func splitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n'
	})
}
