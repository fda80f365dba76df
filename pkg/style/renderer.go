package style

import (
	"fmt"
	"sort"
	"strings"

	"github.com/arthur-debert/stgcore/pkg/component"
	"github.com/arthur-debert/stgcore/pkg/errors"
	"github.com/arthur-debert/stgcore/pkg/factory"
	"github.com/arthur-debert/stgcore/pkg/registry"
	"github.com/arthur-debert/stgcore/pkg/toolbox"
	"github.com/pterm/pterm"
)

// TypeInfo describes one registered type.
type TypeInfo struct {
	Name   string
	Parent string
	Kind   registry.Kind
	Owner  string
}

// ToolboxInfo describes one catalogue entry.
type ToolboxInfo struct {
	Name string
	Deps []string
	// Position is the 1-based place in the initialisation order, 0 when
	// the toolbox is not initialised.
	Position int
}

// InstanceInfo describes one factory instance.
type InstanceInfo struct {
	Name       string
	Type       string
	State      component.State
	Executions int
}

// TypesOf lists every type of t, sorted by name.
func TypesOf(t *registry.TypeRegistry) []TypeInfo {
	var out []TypeInfo
	for _, name := range t.Names() {
		e, err := t.Entry(name)
		if err != nil {
			continue
		}
		out = append(out, TypeInfo{Name: e.Name, Parent: e.Parent, Kind: e.Kind, Owner: e.Owner})
	}
	return out
}

// ToolboxesOf lists the catalogue of m in submission order.
func ToolboxesOf(m *toolbox.Manager) []ToolboxInfo {
	position := make(map[string]int)
	for i, name := range m.InitOrder() {
		position[name] = i + 1
	}
	var out []ToolboxInfo
	for _, name := range m.Names() {
		deps, _ := m.Dependencies(name)
		out = append(out, ToolboxInfo{Name: name, Deps: deps, Position: position[name]})
	}
	return out
}

// InstancesOf lists the instances of f in declaration order.
func InstancesOf(f *factory.Factory) []InstanceInfo {
	var out []InstanceInfo
	for _, name := range f.Names() {
		inst, err := f.Instance(name)
		if err != nil {
			continue
		}
		out = append(out, InstanceInfo{
			Name:       name,
			Type:       inst.TypeName(),
			State:      inst.State(),
			Executions: inst.Executions(),
		})
	}
	return out
}

// Renderer renders CLI listings.
type Renderer interface {
	RenderTypeTree(types []TypeInfo) string
	RenderToolboxes(toolboxes []ToolboxInfo) string
	RenderInstances(instances []InstanceInfo) string
	RenderError(err error) string
}

type typeNode struct {
	info     TypeInfo
	children []*typeNode
}

// typeForest arranges types under their parents. Types whose parent is
// empty or unregistered are roots.
func typeForest(types []TypeInfo) []*typeNode {
	nodes := make(map[string]*typeNode, len(types))
	for _, t := range types {
		nodes[t.Name] = &typeNode{info: t}
	}
	var roots []*typeNode
	for _, t := range types {
		n := nodes[t.Name]
		if parent, ok := nodes[t.Parent]; ok && t.Parent != t.Name {
			parent.children = append(parent.children, n)
			continue
		}
		roots = append(roots, n)
	}
	sortNodes(roots)
	return roots
}

func sortNodes(nodes []*typeNode) {
	sort.Slice(nodes, func(i, j int) bool { return nodes[i].info.Name < nodes[j].info.Name })
	for _, n := range nodes {
		sortNodes(n.children)
	}
}

func typeLabel(t TypeInfo) []string {
	var tags []string
	if t.Kind != registry.KindConcrete {
		tags = append(tags, t.Kind.String())
	}
	if t.Owner != "" {
		tags = append(tags, t.Owner)
	}
	return tags
}

func sortedDetails(err error) []string {
	details := errors.GetErrorDetails(err)
	keys := make([]string, 0, len(details))
	for k := range details {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%v", k, details[k]))
	}
	return out
}

// TerminalRenderer renders with lipgloss and pterm.
type TerminalRenderer struct{}

// NewTerminalRenderer creates a terminal renderer.
func NewTerminalRenderer() *TerminalRenderer {
	return &TerminalRenderer{}
}

func (r *TerminalRenderer) RenderTypeTree(types []TypeInfo) string {
	if len(types) == 0 {
		return MutedStyle.Render("No types registered")
	}
	root := pterm.TreeNode{Text: TitleStyle.Render(fmt.Sprintf("Types (%d)", len(types)))}
	for _, n := range typeForest(types) {
		root.Children = append(root.Children, r.treeNode(n))
	}
	out, err := pterm.DefaultTree.WithRoot(root).Srender()
	if err != nil {
		return r.RenderError(err)
	}
	return strings.TrimRight(out, "\n")
}

func (r *TerminalRenderer) treeNode(n *typeNode) pterm.TreeNode {
	text := KindStyle(n.info.Kind).Render(n.info.Name)
	if tags := typeLabel(n.info); len(tags) > 0 {
		text += " " + MutedStyle.Render("("+strings.Join(tags, ", ")+")")
	}
	node := pterm.TreeNode{Text: text}
	for _, c := range n.children {
		node.Children = append(node.Children, r.treeNode(c))
	}
	return node
}

func (r *TerminalRenderer) RenderToolboxes(toolboxes []ToolboxInfo) string {
	if len(toolboxes) == 0 {
		return MutedStyle.Render("No toolboxes submitted")
	}
	data := pterm.TableData{{"#", "Toolbox", "Depends on", "Initialised"}}
	for i, tb := range toolboxes {
		initialised := PendingIndicator
		if tb.Position > 0 {
			initialised = fmt.Sprintf("%s %d", SuccessIndicator, tb.Position)
		}
		data = append(data, []string{
			fmt.Sprint(i),
			ToolboxStyle.Render(tb.Name),
			strings.Join(tb.Deps, ", "),
			initialised,
		})
	}
	out, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return r.RenderError(err)
	}
	return strings.TrimRight(out, "\n")
}

func (r *TerminalRenderer) RenderInstances(instances []InstanceInfo) string {
	if len(instances) == 0 {
		return MutedStyle.Render("No instances")
	}
	var b strings.Builder
	b.WriteString(TitleStyle.Render("Instances") + "\n")
	for _, in := range instances {
		state := StateStyle(in.State).Sprint(fmt.Sprintf(" %-13s", in.State))
		fmt.Fprintf(&b, "%s %s %s %s", StateIndicator(in.State), state, Bold(in.Name), MutedStyle.Render(in.Type))
		if in.Executions > 0 {
			b.WriteString(MutedStyle.Render(fmt.Sprintf(" x%d", in.Executions)))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *TerminalRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	code := errors.GetErrorCode(err)
	if code == errors.ErrUnknown {
		return fmt.Sprintf("%s %s", pterm.Error.Prefix.Text, ErrorStyle.Render(err.Error()))
	}
	out := fmt.Sprintf("%s %s %s", pterm.Error.Prefix.Text, CodeStyle.Render(string(code)), err.Error())
	for _, d := range sortedDetails(err) {
		out += "\n" + Indent(MutedStyle.Render(d), 1)
	}
	return out
}

// PlainRenderer renders plain text with no styling.
type PlainRenderer struct{}

// NewPlainRenderer creates a plain text renderer.
func NewPlainRenderer() *PlainRenderer {
	return &PlainRenderer{}
}

func (r *PlainRenderer) RenderTypeTree(types []TypeInfo) string {
	if len(types) == 0 {
		return "No types registered"
	}
	var b strings.Builder
	var walk func(n *typeNode, depth int)
	walk = func(n *typeNode, depth int) {
		b.WriteString(strings.Repeat("  ", depth) + n.info.Name)
		if tags := typeLabel(n.info); len(tags) > 0 {
			b.WriteString(" (" + strings.Join(tags, ", ") + ")")
		}
		b.WriteString("\n")
		for _, c := range n.children {
			walk(c, depth+1)
		}
	}
	for _, n := range typeForest(types) {
		walk(n, 0)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *PlainRenderer) RenderToolboxes(toolboxes []ToolboxInfo) string {
	if len(toolboxes) == 0 {
		return "No toolboxes submitted"
	}
	var b strings.Builder
	for i, tb := range toolboxes {
		fmt.Fprintf(&b, "%d %s", i, tb.Name)
		if len(tb.Deps) > 0 {
			fmt.Fprintf(&b, " <- %s", strings.Join(tb.Deps, ", "))
		}
		if tb.Position > 0 {
			fmt.Fprintf(&b, " [initialised %d]", tb.Position)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *PlainRenderer) RenderInstances(instances []InstanceInfo) string {
	if len(instances) == 0 {
		return "No instances"
	}
	var b strings.Builder
	for _, in := range instances {
		fmt.Fprintf(&b, "%s (%s): %s", in.Name, in.Type, in.State)
		if in.Executions > 0 {
			fmt.Fprintf(&b, ", executed %d", in.Executions)
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

func (r *PlainRenderer) RenderError(err error) string {
	if err == nil {
		return ""
	}
	out := fmt.Sprintf("Error: %s", err.Error())
	for _, d := range sortedDetails(err) {
		out += "\n  " + d
	}
	return out
}
