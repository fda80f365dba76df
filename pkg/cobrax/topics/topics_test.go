package topics

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func helpFS() fstest.MapFS {
	return fstest.MapFS{
		"help/journal.txt":            {Data: []byte("Streams are enabled per category")},
		"help/lifecycle.md":           {Data: []byte("# Lifecycle\n\nconstruct, build, initialise")},
		"help/option-watch-rank.txt":  {Data: []byte("Watch rank help")},
		"help/option-execute.txt":     {Data: []byte("Execute help")},
		"help/advanced/toolboxes.txt": {Data: []byte("Toolbox help")},
		"help/config.txxt":            {Data: []byte("Configuration Guide")},
		"help/ignore.json":            {Data: []byte("{}")},
	}
}

func TestScanTopics(t *testing.T) {
	t.Run("default extensions", func(t *testing.T) {
		tm := New(helpFS())
		require.NoError(t, tm.scanTopics())

		tests := []struct {
			name    string
			exists  bool
			content string
		}{
			{"journal", true, "Streams are enabled per category"},
			{"lifecycle", true, "# Lifecycle\n\nconstruct, build, initialise"},
			{"toolboxes", true, "Toolbox help"},
			{"config", false, ""},
			{"ignore", false, ""},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				topic, exists := tm.GetTopic(tt.name)
				assert.Equal(t, tt.exists, exists)
				if exists {
					assert.Equal(t, tt.content, topic.Content)
				}
			})
		}
	})

	t.Run("custom extensions", func(t *testing.T) {
		tm := NewWithOptions(helpFS(), Options{Extensions: []string{".txxt"}})
		require.NoError(t, tm.scanTopics())
		assert.Equal(t, []string{"config"}, tm.ListTopics())
	})

	t.Run("nil source", func(t *testing.T) {
		tm := New(nil)
		require.NoError(t, tm.scanTopics())
		assert.Empty(t, tm.ListTopics())
	})

	t.Run("empty source", func(t *testing.T) {
		tm := New(fstest.MapFS{})
		require.NoError(t, tm.scanTopics())
		assert.Empty(t, tm.ListTopics())
	})
}

func TestGetTopic(t *testing.T) {
	tm := New(helpFS())
	require.NoError(t, tm.scanTopics())

	tests := []struct {
		input    string
		expected string
		exists   bool
	}{
		{"journal", "journal", true},
		{"option-watch-rank", "option-watch-rank", true},
		{"watch-rank", "option-watch-rank", true},
		{"--watch-rank", "option-watch-rank", true},
		{"-execute", "option-execute", true},
		{"-w", "", false},
		{"nonexistent", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			topic, exists := tm.GetTopic(tt.input)
			assert.Equal(t, tt.exists, exists)
			if exists {
				assert.Equal(t, tt.expected, topic.Name)
			}
		})
	}
}

func TestListTopics(t *testing.T) {
	tm := New(helpFS())
	require.NoError(t, tm.scanTopics())
	assert.Equal(t, []string{"journal", "lifecycle", "option-execute", "option-watch-rank", "toolboxes"}, tm.ListTopics())
}

type upperRenderer struct{ formats []string }

func (r *upperRenderer) Render(content, format string) string {
	r.formats = append(r.formats, format)
	return strings.ToUpper(content)
}

func TestShowUsesRenderer(t *testing.T) {
	r := &upperRenderer{}
	tm := NewWithOptions(helpFS(), Options{Renderer: r})
	require.NoError(t, tm.scanTopics())

	var out bytes.Buffer
	assert.True(t, tm.Show(&out, "lifecycle"))
	assert.Equal(t, "# LIFECYCLE\n\nCONSTRUCT, BUILD, INITIALISE", out.String())
	assert.Equal(t, []string{".md"}, r.formats)
	assert.False(t, tm.Show(&out, "missing"))
}

func TestGlamourRendererSkipsText(t *testing.T) {
	r := &GlamourRenderer{Style: "notty", Width: 40}
	assert.Equal(t, "plain text", r.Render("plain text", ".txt"))
	assert.Contains(t, r.Render("# Lifecycle\n\nconstruct", ".md"), "construct")
}

func newRoot() *cobra.Command {
	root := &cobra.Command{Use: "testapp", Short: "Test application"}
	root.AddCommand(&cobra.Command{
		Use:   "run",
		Short: "Run something",
		Run:   func(cmd *cobra.Command, args []string) {},
	})
	return root
}

func execute(t *testing.T, root *cobra.Command, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func TestInitialize(t *testing.T) {
	root := newRoot()
	require.NoError(t, Initialize(root, helpFS()))

	helpCmd, _, err := root.Find([]string{"help"})
	require.NoError(t, err)
	assert.Equal(t, "help [command or topic]", helpCmd.Use)

	t.Run("topic", func(t *testing.T) {
		out := execute(t, root, "help", "journal")
		assert.Equal(t, "Streams are enabled per category", out)
	})

	t.Run("flag topic", func(t *testing.T) {
		out := execute(t, root, "help", "watch-rank")
		assert.Contains(t, out, "Watch rank help")
	})

	t.Run("list", func(t *testing.T) {
		out := execute(t, root, "help", "topics")
		assert.Contains(t, out, "General topics:\n  journal\n  lifecycle\n  toolboxes")
		assert.Contains(t, out, "Option topics:\n  --execute\n  --watch-rank")
		assert.Contains(t, out, "Use 'testapp help <topic>'")
	})

	t.Run("command falls through", func(t *testing.T) {
		out := execute(t, root, "help", "run")
		assert.Contains(t, out, "Run something")
	})
}
