package config

import (
	_ "embed"
	stderrors "errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"

	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/logging"
	"github.com/go-viper/mapstructure/v2"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

//go:embed embedded/defaults.toml
var defaultConfig []byte

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "STG_"

// Format is a run description syntax.
type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatXML  Format = "xml"
)

// Formats lists the supported syntaxes.
var Formats = []Format{FormatTOML, FormatYAML, FormatXML}

// rawBytesProvider implements koanf provider for raw bytes
type rawBytesProvider struct{ bytes []byte }

func (r *rawBytesProvider) ReadBytes() ([]byte, error) { return r.bytes, nil }
func (r *rawBytesProvider) Read() (map[string]interface{}, error) {
	return nil, stderrors.New("not implemented")
}

// FormatFromPath picks the syntax from a file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".xml":
		return FormatXML, nil
	default:
		return "", errors.Newf(errors.ErrConfigLoad, "cannot tell the format of '%s'", path).
			WithDetail("path", path)
	}
}

// ParseFormat validates a format name given on the command line.
func ParseFormat(name string) (Format, error) {
	f := Format(strings.ToLower(name))
	if f == "yml" {
		f = FormatYAML
	}
	for _, known := range Formats {
		if f == known {
			return f, nil
		}
	}
	return "", errors.Newf(errors.ErrInvalidInput, "unknown format '%s'", name).
		WithDetail("format", name)
}

// Parser returns the koanf parser for a format.
func (f Format) Parser() (koanf.Parser, error) {
	switch f {
	case FormatTOML:
		return toml.Parser(), nil
	case FormatYAML:
		return yaml.Parser(), nil
	case FormatXML:
		return XMLParser(), nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format '%s'", f).
			WithDetail("format", string(f))
	}
}

// Load reads a run description from path.
func Load(path string) (*RunConfig, error) {
	return LoadWithOverrides(path, nil)
}

// LoadWithOverrides reads a run description from path and applies
// overrides last. Keys are dotted paths such as "params.dt".
func LoadWithOverrides(path string, overrides map[string]interface{}) (*RunConfig, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(path); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigLoad, "cannot read run description %s", path).
			WithDetail("path", path)
	}
	return load(file.Provider(path), format, path, overrides)
}

// LoadBytes reads a run description held in memory.
func LoadBytes(data []byte, format Format) (*RunConfig, error) {
	return load(&rawBytesProvider{bytes: data}, format, "<bytes>", nil)
}

func load(source koanf.Provider, format Format, origin string, overrides map[string]interface{}) (*RunConfig, error) {
	logger := logging.GetLogger("config")

	parser, err := format.Parser()
	if err != nil {
		return nil, err
	}

	k := koanf.New(".")

	// 1. Embedded defaults
	if err := k.Load(&rawBytesProvider{bytes: defaultConfig}, toml.Parser()); err != nil {
		return nil, errors.Wrap(err, errors.ErrInternal, "failed to load embedded defaults")
	}

	// 2. The run description
	if err := k.Load(source, parser); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to load run description from %s", origin).
			WithDetail("path", origin).
			WithDetail("format", string(format))
	}

	// 3. Environment overrides
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to load environment overrides")
	}

	// 4. Explicit overrides
	if len(overrides) > 0 {
		if err := k.Load(confmap.Provider(overrides, "."), nil); err != nil {
			return nil, errors.Wrap(err, errors.ErrConfigLoad, "failed to apply overrides")
		}
	}

	// 5. Unmarshal
	var cfg RunConfig
	unmarshalConf := koanf.UnmarshalConf{
		Tag: "koanf",
		DecoderConfig: &mapstructure.DecoderConfig{
			Result:           &cfg,
			WeaklyTypedInput: true,
			DecodeHook: mapstructure.ComposeDecodeHookFunc(
				mapstructure.StringToTimeDurationHookFunc(),
				stringToListHookFunc(),
			),
		},
	}
	if err := k.UnmarshalWithConf("", &cfg, unmarshalConf); err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "failed to decode run description from %s", origin).
			WithDetail("path", origin)
	}

	// 6. Validate
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger.Debug().
		Str("origin", origin).
		Str("format", string(format)).
		Int("toolboxes", len(cfg.Toolboxes)).
		Int("components", len(cfg.Components)).
		Msg("Run description loaded")
	return &cfg, nil
}

// envKey maps STG_JOURNAL__WATCH_RANK to journal.watch_rank.
func envKey(s string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimPrefix(s, EnvPrefix)), "__", ".")
}

// stringToListHookFunc splits a string on commas and whitespace when a
// list of strings is expected, so "Base Domain,FEM" reads as three names.
func stringToListHookFunc() mapstructure.DecodeHookFunc {
	return func(f reflect.Type, t reflect.Type, data interface{}) (interface{}, error) {
		if f.Kind() != reflect.String || t.Kind() != reflect.Slice || t.Elem().Kind() != reflect.String {
			return data, nil
		}
		return SplitList(reflect.ValueOf(data).String()), nil
	}
}

// ParseOverrides turns key=value pairs into an override map.
func ParseOverrides(pairs []string) (map[string]interface{}, error) {
	out := make(map[string]interface{}, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, errors.Newf(errors.ErrInvalidInput, "override '%s' is not key=value", pair).
				WithDetail("override", pair)
		}
		out[key] = value
	}
	return out, nil
}

// SplitList splits on commas and whitespace, dropping empty items.
func SplitList(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}
