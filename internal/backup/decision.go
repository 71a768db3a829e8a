package backup

type Action uint8

const (
	// ActionUpload uploads a file with no remote counterpart.
	ActionUpload Action = iota
	// ActionReplace deletes and re-uploads an object whose size differs.
	ActionReplace
	// ActionSkip leaves an object of the same size alone.
	ActionSkip
	// ActionSkipUnknownSize leaves an object alone because its size is not reported.
	ActionSkipUnknownSize
)

func (a Action) String() string {
	switch a {
	case ActionUpload:
		return "upload"
	case ActionReplace:
		return "replace"
	case ActionSkip:
		return "skip"
	case ActionSkipUnknownSize:
		return "skip (unknown size)"
	default:
		return "unknown"
	}
}

// Decide compares a local file against the index.
// Objects without a reported size are skipped rather than overwritten.
func Decide(index Index, file LocalFile) Action {
	obj, ok := index[file.RemoteName]
	if !ok {
		return ActionUpload
	}

	if obj.Size == nil {
		return ActionSkipUnknownSize
	}
	if *obj.Size == file.Size {
		return ActionSkip
	}

	return ActionReplace
}
