package playback

type Command int

const (
	CmdNone Command = iota
	CmdAdvance
	CmdRetreat
	CmdSave
	CmdQuit
)

func (c Command) String() string {
	switch c {
	case CmdAdvance:
		return "advance"
	case CmdRetreat:
		return "retreat"
	case CmdSave:
		return "save"
	case CmdQuit:
		return "quit"
	}
	return "none"
}

const keyEscape = 27

// KeyMap binds key codes, as reported by the display, to commands.
type KeyMap map[int]Command

var DefaultKeyMap = KeyMap{
	'n':       CmdAdvance,
	'p':       CmdRetreat,
	's':       CmdSave,
	'q':       CmdQuit,
	keyEscape: CmdQuit,
}

// Lookup resolves a raw key code. Negative codes mean no key was pressed.
func (k KeyMap) Lookup(code int) Command {
	if code < 0 {
		return CmdNone
	}
	if cmd, ok := k[code&0xFF]; ok {
		return cmd
	}
	return CmdNone
}
