package config

import (
	"bytes"

	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Render writes the resolved run description in the given syntax. The
// output loads back to an equivalent RunConfig.
func (c *RunConfig) Render(format Format) ([]byte, error) {
	switch format {
	case FormatTOML:
		var buf bytes.Buffer
		enc := toml.NewEncoder(&buf)
		enc.SetIndentTables(true)
		if err := enc.Encode(c); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to render TOML")
		}
		return buf.Bytes(), nil

	case FormatYAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(c); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to render YAML")
		}
		if err := enc.Close(); err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to render YAML")
		}
		return buf.Bytes(), nil

	case FormatXML:
		out, err := XMLParser().Marshal(c.toMap())
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrInternal, "failed to render XML")
		}
		return out, nil

	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format '%s'", format).
			WithDetail("format", string(format))
	}
}

func (c *RunConfig) toMap() map[string]interface{} {
	m := map[string]interface{}{
		"toolboxes": asList(c.Toolboxes),
	}
	if len(c.Params) > 0 {
		m["params"] = c.Params
	}

	jrnl := map[string]interface{}{
		"format":     c.Journal.Format,
		"watch_rank": c.Journal.WatchRank,
	}
	if len(c.Journal.Streams) > 0 {
		streams := make([]interface{}, 0, len(c.Journal.Streams))
		for _, s := range c.Journal.Streams {
			streams = append(streams, map[string]interface{}{
				"category": s.Category,
				"name":     s.Name,
				"enabled":  s.Enabled,
			})
		}
		jrnl[streamsKey] = streams
	}
	m[xmlJournal] = jrnl

	if len(c.Components) > 0 {
		comps := make([]interface{}, 0, len(c.Components))
		for _, in := range c.Components {
			entry := map[string]interface{}{
				"name": in.Name,
				"type": in.Type,
			}
			if len(in.Params) > 0 {
				entry["params"] = in.Params
			}
			if len(in.Refs) > 0 {
				refs := make(map[string]interface{}, len(in.Refs))
				for k, v := range in.Refs {
					refs[k] = v
				}
				entry["refs"] = refs
			}
			comps = append(comps, entry)
		}
		m["components"] = comps
	}
	return m
}
