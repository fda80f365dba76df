package config

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/beevik/etree"
)

// XML dialect: a StGermainData root holding param, list and struct
// elements, each named by a name attribute.
const (
	xmlRoot   = "StGermainData"
	xmlParam  = "param"
	xmlList   = "list"
	xmlStruct = "struct"
	xmlElem   = "element"

	xmlTypeKey  = "Type"
	xmlRefsKey  = "refs"
	xmlRankKey  = "journal-rank"
	xmlJournal  = "journal"
	streamsKey  = "streams"
	journalStem = "journal."
)

// toolbox lists may be spelled any of these ways.
var toolboxListNames = map[string]bool{"import": true, "plugins": true, "toolboxes": true}

type xmlParser struct{}

// XMLParser returns a koanf parser for StGermain-style XML run
// descriptions.
//
// Root-level params named "journal.<category>[.<stream>]" become journal
// stream settings and "journal-rank" sets the watched rank. A struct named
// "components" holds one struct per instance, whose "Type" param names the
// component type and whose optional "refs" struct holds references.
// Remaining root-level entries form the root parameter dictionary.
func XMLParser() *xmlParser {
	return &xmlParser{}
}

func (p *xmlParser) Unmarshal(b []byte) (map[string]interface{}, error) {
	doc := etree.NewDocument()
	if err := doc.ReadFromBytes(b); err != nil {
		return nil, errors.Wrap(err, errors.ErrConfigParse, "malformed XML")
	}
	root := doc.Root()
	if root == nil {
		return nil, errors.New(errors.ErrConfigParse, "XML document has no root element")
	}
	if root.Tag != xmlRoot {
		return nil, errors.Newf(errors.ErrConfigParse, "XML root element is <%s>, expected <%s>", root.Tag, xmlRoot).
			WithDetail("root", root.Tag)
	}

	out := make(map[string]interface{})
	params := make(map[string]interface{})
	jrnl := make(map[string]interface{})
	var toolboxes []interface{}
	var streams []interface{}

	for _, el := range root.ChildElements() {
		tag := elementTag(el)
		name := el.SelectAttrValue("name", "")

		switch {
		case tag == xmlList && toolboxListNames[name]:
			names, err := toolboxNames(el)
			if err != nil {
				return nil, err
			}
			toolboxes = append(toolboxes, names...)

		case tag == xmlStruct && name == "components":
			comps, err := components(el)
			if err != nil {
				return nil, err
			}
			out["components"] = comps

		case tag == xmlStruct && name == xmlJournal:
			v, err := structValue(el)
			if err != nil {
				return nil, err
			}
			for k, val := range v {
				jrnl[k] = val
			}

		case tag == xmlParam && strings.HasPrefix(name, journalStem):
			setting, err := streamSetting(name, strings.TrimSpace(el.Text()))
			if err != nil {
				return nil, err
			}
			streams = append(streams, setting)

		case tag == xmlParam && name == xmlRankKey:
			jrnl["watch_rank"] = strings.TrimSpace(el.Text())

		default:
			if name == "" {
				return nil, errors.Newf(errors.ErrConfigParse, "<%s> at the top level needs a name", tag)
			}
			v, err := value(el)
			if err != nil {
				return nil, err
			}
			params[name] = v
		}
	}

	if toolboxes != nil {
		out["toolboxes"] = toolboxes
	}
	if len(params) > 0 {
		out["params"] = params
	}
	if len(streams) > 0 {
		if existing, ok := jrnl[streamsKey].([]interface{}); ok {
			streams = append(existing, streams...)
		}
		jrnl[streamsKey] = streams
	}
	if len(jrnl) > 0 {
		out[xmlJournal] = jrnl
	}
	return out, nil
}

func (p *xmlParser) Marshal(m map[string]interface{}) ([]byte, error) {
	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)
	root := doc.CreateElement(xmlRoot)

	if tbs, ok := m["toolboxes"]; ok {
		list := root.CreateElement(xmlList)
		list.CreateAttr("name", "import")
		for _, tb := range asList(tbs) {
			list.CreateElement(xmlParam).SetText(fmt.Sprint(tb))
		}
	}

	if params, ok := m["params"].(map[string]interface{}); ok {
		for _, k := range sortedKeys(params) {
			writeValue(root, k, params[k])
		}
	}

	if j, ok := m[xmlJournal].(map[string]interface{}); ok {
		writeValue(root, xmlJournal, j)
	}

	if comps, ok := m["components"]; ok {
		container := root.CreateElement(xmlStruct)
		container.CreateAttr("name", "components")
		for _, c := range asList(comps) {
			cm, ok := c.(map[string]interface{})
			if !ok {
				return nil, errors.Newf(errors.ErrInvalidInput, "component entry is %T, not a map", c)
			}
			el := container.CreateElement(xmlStruct)
			el.CreateAttr("name", fmt.Sprint(cm["name"]))
			writeValue(el, xmlTypeKey, cm["type"])
			if params, ok := cm["params"].(map[string]interface{}); ok {
				for _, k := range sortedKeys(params) {
					writeValue(el, k, params[k])
				}
			}
			if refs, ok := cm["refs"].(map[string]interface{}); ok && len(refs) > 0 {
				writeValue(el, xmlRefsKey, refs)
			}
		}
	}

	doc.Indent(2)
	return doc.WriteToBytes()
}

func elementTag(el *etree.Element) string {
	if el.Tag == xmlElem {
		return el.SelectAttrValue("type", xmlParam)
	}
	return el.Tag
}

func value(el *etree.Element) (interface{}, error) {
	switch elementTag(el) {
	case xmlParam:
		return strings.TrimSpace(el.Text()), nil
	case xmlStruct:
		return structValue(el)
	case xmlList:
		var items []interface{}
		for _, child := range el.ChildElements() {
			v, err := value(child)
			if err != nil {
				return nil, err
			}
			items = append(items, v)
		}
		if items == nil {
			items = []interface{}{}
		}
		return items, nil
	default:
		return nil, errors.Newf(errors.ErrConfigParse, "unknown XML element <%s>", el.Tag).
			WithDetail("element", el.Tag)
	}
}

func structValue(el *etree.Element) (map[string]interface{}, error) {
	out := make(map[string]interface{})
	for _, child := range el.ChildElements() {
		name := child.SelectAttrValue("name", "")
		if name == "" {
			return nil, errors.Newf(errors.ErrConfigParse, "<%s> inside struct '%s' needs a name",
				child.Tag, el.SelectAttrValue("name", "")).
				WithDetail("struct", el.SelectAttrValue("name", ""))
		}
		v, err := value(child)
		if err != nil {
			return nil, err
		}
		out[name] = v
	}
	return out, nil
}

func toolboxNames(el *etree.Element) ([]interface{}, error) {
	var names []interface{}
	for _, child := range el.ChildElements() {
		switch elementTag(child) {
		case xmlParam:
			for _, n := range SplitList(child.Text()) {
				names = append(names, n)
			}
		case xmlStruct:
			// Plugin entries written as structs carry the name in a Type param.
			s, err := structValue(child)
			if err != nil {
				return nil, err
			}
			n, _ := s[xmlTypeKey].(string)
			if n == "" {
				return nil, errors.New(errors.ErrConfigParse, "plugin struct without a Type param")
			}
			names = append(names, n)
		default:
			return nil, errors.Newf(errors.ErrConfigParse, "unexpected <%s> in toolbox list", child.Tag)
		}
	}
	return names, nil
}

func components(el *etree.Element) ([]interface{}, error) {
	var out []interface{}
	for _, child := range el.ChildElements() {
		if elementTag(child) != xmlStruct {
			return nil, errors.Newf(errors.ErrConfigParse, "components may only contain structs, found <%s>", child.Tag)
		}
		name := child.SelectAttrValue("name", "")
		body, err := structValue(child)
		if err != nil {
			return nil, err
		}

		typeName, _ := body[xmlTypeKey].(string)
		delete(body, xmlTypeKey)
		if typeName == "" {
			typeName, _ = body["type"].(string)
			delete(body, "type")
		}

		entry := map[string]interface{}{
			"name": name,
			"type": typeName,
		}
		if refs, ok := body[xmlRefsKey].(map[string]interface{}); ok {
			entry["refs"] = refs
			delete(body, xmlRefsKey)
		}
		if len(body) > 0 {
			entry["params"] = body
		}
		out = append(out, entry)
	}
	return out, nil
}

// streamSetting turns "journal.info.Context" = "off" into a setting.
func streamSetting(key, raw string) (map[string]interface{}, error) {
	rest := strings.TrimPrefix(key, journalStem)
	category, name, _ := strings.Cut(rest, ".")
	enabled, err := parseSwitch(raw)
	if err != nil {
		return nil, errors.Wrapf(err, errors.ErrConfigParse, "journal setting '%s' has value '%s'", key, raw).
			WithDetail("param", key)
	}
	return map[string]interface{}{
		"category": category,
		"name":     name,
		"enabled":  enabled,
	}, nil
}

func parseSwitch(s string) (bool, error) {
	switch strings.ToLower(s) {
	case "on":
		return true, nil
	case "off":
		return false, nil
	}
	return strconv.ParseBool(s)
}

func writeValue(parent *etree.Element, name string, v interface{}) {
	switch val := v.(type) {
	case map[string]interface{}:
		el := parent.CreateElement(xmlStruct)
		if name != "" {
			el.CreateAttr("name", name)
		}
		for _, k := range sortedKeys(val) {
			writeValue(el, k, val[k])
		}
	case map[string]string:
		m := make(map[string]interface{}, len(val))
		for k, s := range val {
			m[k] = s
		}
		writeValue(parent, name, m)
	case []interface{}, []string, []map[string]interface{}:
		el := parent.CreateElement(xmlList)
		if name != "" {
			el.CreateAttr("name", name)
		}
		for _, item := range asList(val) {
			writeValue(el, "", item)
		}
	default:
		el := parent.CreateElement(xmlParam)
		if name != "" {
			el.CreateAttr("name", name)
		}
		el.SetText(fmt.Sprint(val))
	}
}

func asList(v interface{}) []interface{} {
	switch l := v.(type) {
	case []interface{}:
		return l
	case []string:
		out := make([]interface{}, len(l))
		for i, s := range l {
			out[i] = s
		}
		return out
	case []map[string]interface{}:
		out := make([]interface{}, len(l))
		for i, m := range l {
			out[i] = m
		}
		return out
	default:
		return nil
	}
}

func sortedKeys(m map[string]interface{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
