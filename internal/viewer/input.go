package viewer

// Key enumerates the discrete input actions the engine understands. Hosts
// map their own key events (Qt scan codes, terminal bytes, MIDI pedals)
// onto these.
type Key int

const (
	// KeyUnknown is delivered for unmapped input; the engine ignores it.
	KeyUnknown Key = iota

	// KeyNextAnchor jumps to the next anchor, wrapping at the end.
	KeyNextAnchor

	// KeyPrevAnchor jumps to the previous anchor, wrapping at the start.
	KeyPrevAnchor

	// KeyZoomIn zooms in by the configured step and leaves fit-to-width.
	KeyZoomIn

	// KeyZoomOut zooms out by the configured step and leaves fit-to-width.
	KeyZoomOut

	// KeyResetZoom re-enables fit-to-width.
	KeyResetZoom

	// KeySaveAnchors writes the anchor file.
	KeySaveAnchors

	// KeyLoadAnchors reloads the anchor file, resetting the cursor.
	KeyLoadAnchors

	// KeyTogglePresentation enters presentation mode.
	KeyTogglePresentation

	// KeyExitPresentation leaves presentation mode. It is the only way
	// out; in normal mode it is a no-op.
	KeyExitPresentation

	// KeyAddAnchorAtTop marks the document position currently at the top
	// of the viewport.
	KeyAddAnchorAtTop
)

// String returns the action name for logging.
func (k Key) String() string {
	switch k {
	case KeyNextAnchor:
		return "next-anchor"
	case KeyPrevAnchor:
		return "prev-anchor"
	case KeyZoomIn:
		return "zoom-in"
	case KeyZoomOut:
		return "zoom-out"
	case KeyResetZoom:
		return "reset-zoom"
	case KeySaveAnchors:
		return "save-anchors"
	case KeyLoadAnchors:
		return "load-anchors"
	case KeyTogglePresentation:
		return "toggle-presentation"
	case KeyExitPresentation:
		return "exit-presentation"
	case KeyAddAnchorAtTop:
		return "add-anchor-at-top"
	default:
		return "unknown"
	}
}

// MouseButton identifies which button a MouseDown event carries.
type MouseButton int

const (
	// MouseLeft adds an anchor at the clicked position.
	MouseLeft MouseButton = iota

	// MouseRight removes the anchor nearest the clicked position.
	MouseRight
)

// Mode is the viewer display mode.
type Mode int

const (
	// ModeNormal shows the anchor overlay and accepts editing input.
	ModeNormal Mode = iota

	// ModePresentation hides the overlay and chrome and ignores all
	// editing input; navigation and zoom stay live.
	ModePresentation
)

// String returns the mode name for logging.
func (m Mode) String() string {
	switch m {
	case ModeNormal:
		return "normal"
	case ModePresentation:
		return "presentation"
	default:
		return "unknown"
	}
}
