// Package toolboxes submits the demo toolboxes to a catalogue.
package toolboxes

import (
	"github.com/arthur-debert/stgcore/pkg/toolbox"
	"github.com/arthur-debert/stgcore/pkg/toolboxes/fem"
)

// Submit adds every demo toolbox to m. Nothing is initialised.
func Submit(m *toolbox.Manager) error {
	_, err := fem.Register(m)
	return err
}
