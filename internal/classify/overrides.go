package classify

import (
	"strings"

	"github.com/1broseidon/perch/internal/platform"
)

// Override is one entry of the per-application exception table. When the
// owning application matches AppID and Apply reports matched, its include
// result bypasses the generic rule chain entirely.
//
// The table is the escape hatch for applications that do not conform to
// the generic window contract. Keep entries data-driven and independent of
// the core decision tree so they stay reviewable on their own.
type Override struct {
	AppID string
	Name  string
	// Apply returns (include, matched). matched=false falls through to
	// the generic rules.
	Apply func(w platform.Window) (include, matched bool)
}

// DefaultOverrides is the maintained exception list. Each entry documents
// the nonconforming behavior it works around.
var DefaultOverrides = []Override{
	{
		// Steam reports a nonstandard subrole for its main and chat
		// windows while they animate in. Accept on title plus role
		// presence alone.
		AppID: "com.valvesoftware.Steam",
		Name:  "steam-title-role",
		Apply: func(w platform.Window) (bool, bool) {
			return w.Title != "" && w.Role != "", true
		},
	},
	{
		// GIMP single-window mode marks detached tool shelves as normal
		// level. Require the standard subrole and reject the dockables
		// by their title prefix.
		AppID: "org.gimp.GIMP",
		Name:  "gimp-dockables",
		Apply: func(w platform.Window) (bool, bool) {
			if strings.HasPrefix(w.Title, "Tool") || strings.HasSuffix(w.Title, "Dockable") {
				return false, true
			}
			return w.Subrole == platform.SubroleStandard, true
		},
	},
	{
		// Electron splash frames carry a standard subrole but no title
		// while loading. Only suppress the splash shape; everything else
		// falls through to the generic rules.
		AppID: "com.discordapp.Discord",
		Name:  "discord-splash",
		Apply: func(w platform.Window) (bool, bool) {
			if w.Title == "" && w.Bounds.Width <= 320 && w.Bounds.Height <= 380 {
				return false, true
			}
			return false, false
		},
	},
}

// DefaultFloatingAllowlist names applications whose always-on-top utility
// panels are genuine user-facing windows (rule 5). Everything else at the
// floating level is treated as a Find bar or picker panel and rejected.
var DefaultFloatingAllowlist = []string{
	"org.keepassxc.KeePassXC",
	"com.obsproject.Studio",
	"org.videolan.VLC",
}
