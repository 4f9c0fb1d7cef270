// ABOUTME: Glyphs for chat participants and status, with plain Unicode fallbacks
// ABOUTME: Nerd Font glyphs are used only when the terminal is known to have them

package icons

import (
	"os"
	"strconv"
	"strings"
	"sync"
)

var (
	nerdOnce sync.Once
	nerd     bool
)

// nerdTerminals usually ship with a Nerd Font configured
var nerdTerminals = []string{"iterm.app", "alacritty", "wezterm", "kitty", "ghostty"}

// nerdFontsFrom decides from the environment. SUPPORTBOT_NERD_FONTS wins
// when it parses as a bool.
func nerdFontsFrom(getenv func(string) string) bool {
	if v, err := strconv.ParseBool(getenv("SUPPORTBOT_NERD_FONTS")); err == nil {
		return v
	}
	program := strings.ToLower(getenv("TERM_PROGRAM") + " " + getenv("TERM"))
	for _, name := range nerdTerminals {
		if strings.Contains(program, name) {
			return true
		}
	}
	return false
}

// HasNerdFonts reports whether Nerd Font glyphs should be used
func HasNerdFonts() bool {
	nerdOnce.Do(func() { nerd = nerdFontsFrom(os.Getenv) })
	return nerd
}

// Icon is a glyph with a fallback for terminals without Nerd Fonts
type Icon struct {
	NerdFont string
	Fallback string
}

func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

var (
	App      = Icon{"󰚩", "◈"} // nf-md-robot
	User     = Icon{"󰀄", "●"} // nf-md-account
	Bot      = Icon{"󰚩", "◆"} // nf-md-robot
	NewChat  = Icon{"󰐕", "+"} // nf-md-plus
	CheckOK  = Icon{"󰗠", "✓"} // nf-md-check_circle
	Critical = Icon{"󰅙", "✗"} // nf-md-close_circle
	Pending  = Icon{"󰔟", "…"} // nf-md-timer_sand
)
