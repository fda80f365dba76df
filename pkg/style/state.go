package style

import (
	"github.com/arthur-debert/stgcore/pkg/component"
	"github.com/pterm/pterm"
)

// StateStyle returns the pterm style for an instance state.
func StateStyle(state component.State) *pterm.Style {
	switch state {
	case component.StateExecuting, component.StateInitialised:
		return pterm.NewStyle(pterm.BgGreen, pterm.FgWhite)
	case component.StateBuilt:
		return pterm.NewStyle(pterm.FgGreen)
	case component.StateConstructed, component.StateConfigBound:
		return pterm.NewStyle(pterm.BgYellow, pterm.FgBlack)
	case component.StateDestroyed:
		return pterm.NewStyle(pterm.FgGray)
	default:
		return pterm.NewStyle(pterm.BgRed, pterm.FgWhite)
	}
}

// StateIndicator returns a one-character marker for an instance state.
func StateIndicator(state component.State) string {
	switch state {
	case component.StateBuilt, component.StateInitialised, component.StateExecuting:
		return SuccessIndicator
	case component.StateUnconstructed:
		return ErrorIndicator
	default:
		return PendingIndicator
	}
}
