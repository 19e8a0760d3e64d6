package loadable

// Branch is the rendering branch a presentation layer picks for a value.
type Branch int

const (
	BranchNotRequested Branch = iota
	BranchLoading
	BranchLoaded
	BranchPartialLoaded
	BranchFailed
)

func (b Branch) String() string {
	switch b {
	case BranchLoading:
		return "loading"
	case BranchLoaded:
		return "loaded"
	case BranchPartialLoaded:
		return "partial_loaded"
	case BranchFailed:
		return "failed"
	default:
		return "not_requested"
	}
}

// Branch maps the variant to its rendering branch. PartialLoaded renders as
// NotRequested; use BranchAllowPartial to display partial data.
func (l Loadable[T]) Branch() Branch {
	b := l.BranchAllowPartial()
	if b == BranchPartialLoaded {
		return BranchNotRequested
	}
	return b
}

// BranchAllowPartial is Branch with PartialLoaded rendered as its own branch.
func (l Loadable[T]) BranchAllowPartial() Branch {
	switch l.kind {
	case KindLoading:
		return BranchLoading
	case KindLoaded:
		return BranchLoaded
	case KindPartialLoaded:
		return BranchPartialLoaded
	case KindFailed:
		return BranchFailed
	default:
		return BranchNotRequested
	}
}
