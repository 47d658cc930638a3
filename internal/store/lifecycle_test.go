package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPendingClearsErrorAndMessage(t *testing.T) {
	m := Menu{}
	m.Error, m.Message = "old error", "old message"

	meta := m.Begin(OpMenuList)
	m = m.Reduce(MenuAction{Meta: meta})
	assert.True(t, m.IsLoading)
	assert.Empty(t, m.Error)
	assert.Empty(t, m.Message)

	m = m.Reduce(MenuAction{Meta: meta.Reject("boom")})
	assert.False(t, m.IsLoading)
	assert.Equal(t, "boom", m.Error)
	assert.Empty(t, m.Message)
}

func TestLoadingUntilAllSettle(t *testing.T) {
	m := Menu{}
	list := m.Begin(OpMenuList)
	m = m.Reduce(MenuAction{Meta: list})
	get := m.Begin(OpMenuGet)
	m = m.Reduce(MenuAction{Meta: get})
	require.True(t, m.IsLoading)

	m = m.Reduce(MenuAction{Meta: list.Fulfill("ok")})
	assert.True(t, m.IsLoading, "get is still in flight")
	assert.True(t, m.InFlight(OpMenuGet))
	assert.False(t, m.InFlight(OpMenuList))

	m = m.Reduce(MenuAction{Meta: get.Reject("nope")})
	assert.False(t, m.IsLoading)
}

func TestStaleResponseDiscarded(t *testing.T) {
	m := Menu{}
	first := m.Begin(OpMenuList)
	m = m.Reduce(MenuAction{Meta: first, Filter: filterSearch("soup")})
	second := m.Begin(OpMenuList)
	m = m.Reduce(MenuAction{Meta: second, Filter: filterSearch("cake")})
	require.Greater(t, second.Gen, first.Gen)

	// The newer request resolves first; the older one must not overwrite it.
	m = m.Reduce(MenuAction{Meta: second.Fulfill("cakes"), Items: items("cake-1"), Filter: filterSearch("cake")})
	assert.True(t, m.IsLoading)
	m = m.Reduce(MenuAction{Meta: first.Fulfill("soups"), Items: items("soup-1", "soup-2"), Filter: filterSearch("soup")})

	assert.False(t, m.IsLoading)
	assert.Equal(t, "cakes", m.Message)
	assert.Equal(t, []string{"cake-1"}, ids(m.Items))
	assert.Equal(t, "cake", m.Filter.Search)
}

func TestStaleRejectionDiscarded(t *testing.T) {
	m := Menu{}
	first := m.Begin(OpMenuGet)
	m = m.Reduce(MenuAction{Meta: first})
	second := m.Begin(OpMenuGet)
	m = m.Reduce(MenuAction{Meta: second})

	m = m.Reduce(MenuAction{Meta: second.Fulfill("found"), Item: item("b")})
	m = m.Reduce(MenuAction{Meta: first.Reject("timeout")})
	assert.Empty(t, m.Error)
	assert.Equal(t, "found", m.Message)
	require.NotNil(t, m.Current)
	assert.Equal(t, "b", m.Current.ID)
}

func TestFencesAreIndependent(t *testing.T) {
	m := Menu{Items: items("a", "b")}
	updA := m.Begin(OpMenuUpdate, "a")
	m = m.Reduce(MenuAction{Meta: updA})
	updB := m.Begin(OpMenuUpdate, "b")
	m = m.Reduce(MenuAction{Meta: updB})

	renamed := func(id, title string) MenuAction {
		it := item(id)
		it.Title = title
		return MenuAction{Item: it}
	}
	a := renamed("a", "A2")
	a.Meta = updA.Fulfill("updated a")
	b := renamed("b", "B2")
	b.Meta = updB.Fulfill("updated b")

	m = m.Reduce(b).Reduce(a)
	assert.Equal(t, "A2", m.Items[0].Title)
	assert.Equal(t, "B2", m.Items[1].Title)
}

func TestUnfencedRunsAllApply(t *testing.T) {
	m := Menu{}
	c1 := m.BeginUnfenced(OpMenuCreate)
	m = m.Reduce(MenuAction{Meta: c1})
	c2 := m.BeginUnfenced(OpMenuCreate)
	m = m.Reduce(MenuAction{Meta: c2})

	m = m.Reduce(MenuAction{Meta: c2.Fulfill("created"), Item: item("two")})
	m = m.Reduce(MenuAction{Meta: c1.Fulfill("created"), Item: item("one")})
	assert.Equal(t, []string{"two", "one"}, ids(m.Items))
	assert.False(t, m.IsLoading)
}

func TestResetDropsInFlightResponses(t *testing.T) {
	m := Menu{}
	list := m.Begin(OpMenuList)
	m = m.Reduce(MenuAction{Meta: list})
	create := m.BeginUnfenced(OpMenuCreate)
	m = m.Reduce(MenuAction{Meta: create})

	m = m.Reset()
	assert.False(t, m.IsLoading)

	m = m.Reduce(MenuAction{Meta: list.Fulfill("late"), Items: items("x")})
	m = m.Reduce(MenuAction{Meta: create.Fulfill("late"), Item: item("y")})
	assert.Empty(t, m.Items)
	assert.Empty(t, m.Message)
	assert.False(t, m.IsLoading)

	// New requests after the reset still work.
	next := m.Begin(OpMenuList)
	m = m.Reduce(MenuAction{Meta: next})
	m = m.Reduce(MenuAction{Meta: next.Fulfill("fresh"), Items: items("z")})
	assert.Equal(t, []string{"z"}, ids(m.Items))
}

func TestClearIsIdempotent(t *testing.T) {
	m := Menu{}
	m.Error, m.Message = "e", "m"

	once := m.ClearError()
	twice := once.ClearError()
	assert.Equal(t, once, twice)
	assert.Equal(t, "m", twice.Message)

	once = m.ClearMessage()
	twice = once.ClearMessage()
	assert.Equal(t, once, twice)
	assert.Equal(t, "e", twice.Error)
}

func TestReduceDoesNotMutatePrevious(t *testing.T) {
	before := Menu{Items: items("a", "b", "c"), Filtered: items("a", "b", "c")}
	meta := before.Begin(OpMenuDelete, "b")
	mid := before.Reduce(MenuAction{Meta: meta, ID: "b"})
	after := mid.Reduce(MenuAction{Meta: meta.Fulfill("deleted"), ID: "b"})

	assert.Equal(t, []string{"a", "b", "c"}, ids(before.Items))
	assert.False(t, before.IsLoading)
	assert.False(t, before.InFlight(OpMenuDelete))
	assert.True(t, mid.IsLoading)
	assert.Equal(t, []string{"a", "c"}, ids(after.Items))
}

func TestPhaseString(t *testing.T) {
	assert.Equal(t, "pending", Pending.String())
	assert.Equal(t, "fulfilled", Fulfilled.String())
	assert.Equal(t, "rejected", Rejected.String())
	assert.Equal(t, "unknown", Phase(0).String())
}
