// Package classify decides whether a detected window should be represented
// as a taskbar entry. Classification is a pure function of the window
// snapshot and its owning application's identifier; unknown or missing
// attributes always fall through to reject, since under-reporting is safer
// than surfacing decorative surfaces as entries.
package classify

import "github.com/1broseidon/perch/internal/platform"

// Minimum dimensions for a window to count as user-facing. Anything at or
// below these is a tooltip, menu, or HUD sliver.
const (
	MinWidth  = 100
	MinHeight = 50
)

// Verdict is the classification result plus the rule that produced it.
// The rule name exists for diagnostics only.
type Verdict struct {
	Include bool
	Rule    string
}

// Classifier evaluates the layered rule table. Construct one per
// monitoring session; the zero value is not usable.
type Classifier struct {
	overrides     []Override
	floatingAllow map[string]bool
}

// New returns a classifier using the given per-application override table
// and floating-level allow list. Pass nil for either to use the defaults.
func New(overrides []Override, floatingAllow []string) *Classifier {
	if overrides == nil {
		overrides = DefaultOverrides
	}
	if floatingAllow == nil {
		floatingAllow = DefaultFloatingAllowlist
	}

	allow := make(map[string]bool, len(floatingAllow))
	for _, id := range floatingAllow {
		allow[id] = true
	}

	return &Classifier{
		overrides:     overrides,
		floatingAllow: allow,
	}
}

// Classify decides whether the window should be represented. Rules apply
// in strict precedence order; the first rule that matches wins.
func (c *Classifier) Classify(w platform.Window, appID string) Verdict {
	// 1. The window must have a resolvable handle at all.
	if w.ID == 0 {
		return Verdict{Include: false, Rule: "invalid-handle"}
	}

	// 2. Size floor, regardless of any other attribute.
	if w.Bounds.Width <= MinWidth || w.Bounds.Height <= MinHeight {
		return Verdict{Include: false, Rule: "size-floor"}
	}

	// 3. Per-application overrides bypass the generic rules entirely.
	for _, ov := range c.overrides {
		if ov.AppID != appID {
			continue
		}
		if include, matched := ov.Apply(w); matched {
			return Verdict{Include: include, Rule: "override:" + ov.Name}
		}
	}

	switch w.Level {
	case platform.LevelNormal:
		// 4. Normal-level windows need a standard document/dialog subrole.
		if w.Subrole == platform.SubroleStandard || w.Subrole == platform.SubroleDialog {
			return Verdict{Include: true, Rule: "normal-standard-subrole"}
		}
		return Verdict{Include: false, Rule: "normal-nonstandard-subrole"}

	case platform.LevelFloating:
		// 5. Floating panels are rejected unless the application is known
		// to use legitimate always-on-top utility windows.
		if c.floatingAllow[appID] {
			return Verdict{Include: true, Rule: "floating-allowlist"}
		}
		return Verdict{Include: false, Rule: "floating-panel"}
	}

	// 6. Docks, overlays, and anything else.
	return Verdict{Include: false, Rule: "unhandled-level"}
}
