package loadable

import (
	"context"
	"errors"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestZeroValueIsNotRequested(t *testing.T) {
	var l Loadable[int]
	require.Equal(t, KindNotRequested, l.Kind())
	_, ok := l.Value()
	require.False(t, ok)
	require.False(t, l.Ready())
}

func TestSetLoadingKeepsPreviousValue(t *testing.T) {
	bag := NewCancelBag(context.Background())

	loaded := Loaded([]string{"a", "b"})
	loading, h := loaded.SetLoading(bag)

	require.Equal(t, KindLoading, loading.Kind())
	require.Same(t, h, loading.Handle())
	prev, ok := loading.Value()
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, prev)
	require.Equal(t, 1, bag.Len())

	// Re-entering Loading from Loading carries the same previous value.
	again, h2 := loading.SetLoading(bag)
	prev, ok = again.Value()
	require.True(t, ok)
	require.Equal(t, []string{"a", "b"}, prev)
	require.NotEqual(t, h.ID(), h2.ID())
}

func TestSetLoadingFromFailedHasNoPrevious(t *testing.T) {
	l, _ := Failed[int](errors.New("boom")).SetLoading(nil)
	_, ok := l.Value()
	require.False(t, ok)
}

func TestFromResult(t *testing.T) {
	ok := FromResult(3, nil)
	require.Equal(t, KindLoaded, ok.Kind())

	bad := FromResult(0, errors.New("offline"))
	require.Equal(t, KindFailed, bad.Kind())
	require.EqualError(t, bad.Err(), "offline")
}

func TestMap(t *testing.T) {
	itoa := func(i int) string { return strconv.Itoa(i) }

	tests := []struct {
		name     string
		in       Loadable[int]
		wantKind Kind
		want     string
		hasValue bool
	}{
		{"not requested", NotRequested[int](), KindNotRequested, "", false},
		{"loaded", Loaded(4), KindLoaded, "4", true},
		{"partial", PartialLoaded(5), KindPartialLoaded, "5", true},
		{"failed", Failed[int](errors.New("x")), KindFailed, "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := Map(tt.in, itoa)
			require.Equal(t, tt.wantKind, out.Kind())
			v, ok := out.Value()
			require.Equal(t, tt.hasValue, ok)
			require.Equal(t, tt.want, v)
		})
	}

	prev := 9
	h := NewHandle(context.Background())
	out := Map(Loading(&prev, h), itoa)
	v, ok := out.Value()
	require.True(t, ok)
	require.Equal(t, "9", v)
	require.Same(t, h, out.Handle())
}

func TestEqual(t *testing.T) {
	h := NewHandle(context.Background())
	sentinel := errors.New("gone")

	require.True(t, Equal(NotRequested[int](), NotRequested[int](), nil))
	require.True(t, Equal(Loaded(1), Loaded(1), nil))
	require.False(t, Equal(Loaded(1), Loaded(2), nil))
	require.False(t, Equal(Loaded(1), PartialLoaded(1), nil))
	require.False(t, Equal(Loading[int](nil, h), Loading[int](nil, h), nil))
	require.True(t, Equal(Failed[int](sentinel), Failed[int](sentinel), nil))
	require.True(t, Equal(Failed[int](errors.New("same")), Failed[int](errors.New("same")), nil))
	require.False(t, Equal(Failed[int](errors.New("a")), Failed[int](errors.New("b")), nil))

	byLen := func(a, b string) bool { return len(a) == len(b) }
	require.True(t, Equal(Loaded("ab"), Loaded("cd"), byLen))
}

func TestBranchHidesPartialUnlessAllowed(t *testing.T) {
	p := PartialLoaded([]int{1})
	require.Equal(t, BranchNotRequested, p.Branch())
	require.Equal(t, BranchPartialLoaded, p.BranchAllowPartial())
	require.False(t, p.Ready())

	require.Equal(t, BranchLoaded, Loaded(1).Branch())
	require.Equal(t, BranchFailed, Failed[int](errors.New("x")).Branch())
	require.Equal(t, BranchLoading, Loading[int](nil, nil).Branch())
}

func TestLoadableCancelInvokesHandle(t *testing.T) {
	l, h := NotRequested[int]().SetLoading(nil)
	l.Cancel()
	require.True(t, h.Cancelled())
	require.Equal(t, KindLoading, l.Kind())
}
