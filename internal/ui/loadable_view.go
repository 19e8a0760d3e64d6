package ui

import (
	"strings"

	"github.com/five82/ava/internal/loadable"
)

// slotView describes how one slot renders in each branch.
type slotView[T any] struct {
	// allowPartial shows PartialLoaded data; otherwise it renders as not
	// requested.
	allowPartial bool
	idle         string
	body         func(T) string
}

// renderSlot renders l through the branch its kind selects. spin is the
// current spinner frame.
func renderSlot[T any](l loadable.Loadable[T], v slotView[T], styles Styles, spin string) string {
	branch := l.Branch()
	if v.allowPartial {
		branch = l.BranchAllowPartial()
	}

	switch branch {
	case loadable.BranchLoading:
		line := spin + " " + styles.InfoText.Render("Loading...")
		if prev, ok := l.Value(); ok {
			return line + "\n" + v.body(prev)
		}
		return line

	case loadable.BranchLoaded:
		value, _ := l.Value()
		return v.body(value)

	case loadable.BranchPartialLoaded:
		value, _ := l.Value()
		return v.body(value) + "\n" + styles.MutedText.Render("more available (m)")

	case loadable.BranchFailed:
		var b strings.Builder
		b.WriteString(styles.DangerText.Render("Failed: " + l.Err().Error()))
		b.WriteString("\n")
		b.WriteString(styles.MutedText.Render("r: retry"))
		return b.String()

	default:
		return styles.FaintText.Render(v.idle)
	}
}

// kindBadge renders the state of a slot as a colored label.
func kindBadge(kind loadable.Kind, styles Styles) string {
	return styles.KindStyle(kind).Render(kindLabel(kind))
}

func kindLabel(kind loadable.Kind) string {
	switch kind {
	case loadable.KindLoading:
		return "LOADING"
	case loadable.KindLoaded:
		return "LOADED"
	case loadable.KindPartialLoaded:
		return "PARTIAL"
	case loadable.KindFailed:
		return "FAILED"
	default:
		return "IDLE"
	}
}
