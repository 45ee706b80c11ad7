package playback

// PathPrompter asks the operator where a saved frame should go. An empty
// answer means the save was abandoned.
type PathPrompter interface {
	PromptSavePath() (string, error)
}

// PathPrompterFunc adapts a plain function into a PathPrompter.
type PathPrompterFunc func() (string, error)

func (f PathPrompterFunc) PromptSavePath() (string, error) { return f() }
