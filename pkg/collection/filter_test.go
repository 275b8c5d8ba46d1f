package collection

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func menuWithSections(t *testing.T) *Collection {
	return buildCollection(t,
		section("sec1",
			header("h1", "MenuSection 1"),
			item("1", "Foo"),
			item("2", "Bar"),
			item("3", "Baz"),
		),
		separator("sep1"),
		section("sec2",
			header("h2", "MenuSection 2"),
			item("4", "Copy"),
			item("5", "Cut"),
			item("6", "Paste"),
		),
	)
}

func TestFilterFlatList(t *testing.T) {
	c := buildCollection(t, item("1", "Foo"), item("2", "Bar"), item("3", "Baz"))

	out := c.Filter(containsFold("ba"))

	require.NoError(t, Validate(out))
	assert.Equal(t, []Key{"2", "3"}, topKeys(out))
	assert.Equal(t, Key("2"), out.FirstKey())
	assert.Equal(t, Key("3"), out.LastKey())
	assert.True(t, out.Frozen())
}

func TestFilterDropsSectionsAndSeparator(t *testing.T) {
	c := buildCollection(t,
		section("s1", item("foo", "Foo"), item("bar", "Bar")),
		separator("sep"),
		section("s2", item("baz", "Baz")),
	)

	out := c.Filter(func(text string) bool { return text == "Baz" })

	require.NoError(t, Validate(out))
	assert.Equal(t, []Key{"s2"}, topKeys(out))
	assert.Equal(t, []Key{"baz"}, childKeys(out, "s2"))
	assert.Nil(t, out.Item("s1"))
	assert.Nil(t, out.Item("sep"))
	assert.Equal(t, 2, out.Size())
	assert.Equal(t, Key("baz"), out.LastKey())
}

func TestFilterMatchingNothing(t *testing.T) {
	c := buildCollection(t,
		item("1", "a"), item("2", "b"), item("3", "c"), item("4", "d"), item("5", "e"),
	)

	out := c.Filter(func(string) bool { return false })

	require.NoError(t, Validate(out))
	assert.Equal(t, 0, out.Size())
	assert.Equal(t, Key(""), out.FirstKey())
	assert.Equal(t, Key(""), out.LastKey())
}

func TestFilterEmptyCollection(t *testing.T) {
	out := Empty().Filter(func(string) bool { return true })
	assert.Equal(t, 0, out.Size())
	assert.Equal(t, Key(""), out.FirstKey())
	assert.Equal(t, Key(""), out.LastKey())
}

func TestFilterSectionEmptiness(t *testing.T) {
	tests := []struct {
		name  string
		match Predicate
	}{
		{name: "no child matches", match: func(string) bool { return false }},
		{name: "only header matches", match: func(text string) bool { return text == "Header" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := buildCollection(t,
				section("s", header("h", "Header"), item("a", "A"), item("b", "B")),
			)
			got := c.Filter(tt.match)
			require.NoError(t, Validate(got))
			assert.Nil(t, got.Item("s"))
			assert.Nil(t, got.Item("h"), "children of a dropped section must not linger")
			assert.Equal(t, 0, got.Size())
		})
	}
}

func TestFilterKeepsMatchingHeader(t *testing.T) {
	c := menuWithSections(t)

	out := c.Filter(containsFold("menusection 2"))
	assert.Equal(t, 0, out.Size(), "a section holding only its header is dropped")

	out = c.Filter(func(text string) bool { return text == "MenuSection 2" || text == "Cut" })
	require.NoError(t, Validate(out))
	assert.Equal(t, []Key{"sec2"}, topKeys(out))
	assert.Equal(t, []Key{"h2", "5"}, childKeys(out, "sec2"))
}

func TestFilterSeparatorBetweenSurvivingSections(t *testing.T) {
	c := menuWithSections(t)

	out := c.Filter(containsFold("a"))

	require.NoError(t, Validate(out))
	assert.Equal(t, []Key{"sec1", "sep1", "sec2"}, topKeys(out))
	assert.Equal(t, []Key{"2", "3"}, childKeys(out, "sec1"))
	assert.Equal(t, []Key{"6"}, childKeys(out, "sec2"))
	assert.Equal(t, Key("6"), out.LastKey())
	assert.Equal(t, Key("sep1"), out.KeyAfter("3"))
	assert.Equal(t, Key("sec2"), out.KeyAfter("sep1"))
}

func TestFilterTrailingSeparatorIsPruned(t *testing.T) {
	c := buildCollection(t,
		section("s1", item("a", "apple")),
		separator("sep1"),
		section("s2", item("b", "banana")),
		separator("sep2"),
		section("s3", item("c", "cherry")),
	)

	out := c.Filter(func(text string) bool { return text != "cherry" })

	require.NoError(t, Validate(out))
	assert.Equal(t, []Key{"s1", "sep1", "s2"}, topKeys(out))
	assert.Nil(t, out.Item("sep2"))
	assert.Equal(t, Key(""), out.Item("s2").NextKey)
	assert.Equal(t, Key("b"), out.LastKey())
}

func TestFilterLeadingAndRepeatedSeparators(t *testing.T) {
	c := buildCollection(t,
		separator("lead"),
		item("x", "x-ray"),
		separator("afterItem"),
		section("s1", item("a", "xylophone")),
		separator("sep1"),
		section("s2", item("b", "nothing")),
		separator("sep2"),
		section("s3", item("c", "xenon")),
	)

	out := c.Filter(containsFold("x"))

	require.NoError(t, Validate(out))
	assert.Equal(t, []Key{"x", "s1", "sep1", "s3"}, topKeys(out))
	assert.Nil(t, out.Item("lead"))
	assert.Nil(t, out.Item("afterItem"), "separators only follow sections")
	assert.Nil(t, out.Item("sep2"), "a separator cannot follow another separator")
}

func TestFilterSeparatorFollowedByItemIsDropped(t *testing.T) {
	tests := []struct {
		name  string
		roots []shape
	}{
		{
			name:  "item directly after separator",
			roots: []shape{section("s1", item("a", "alpha")), separator("sep"), item("b", "alphabet")},
		},
		{
			name: "section between separator and item filtered out",
			roots: []shape{
				section("s1", item("a", "alpha")),
				separator("sep"),
				section("s2", item("z", "zzz")),
				item("b", "alphabet"),
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := buildCollection(t, tt.roots...)

			out := c.Filter(containsFold("alpha"))

			require.NoError(t, Validate(out))
			assert.Equal(t, []Key{"s1", "b"}, topKeys(out))
			assert.Nil(t, out.Item("sep"))
			assert.Equal(t, Key("b"), out.Item("s1").NextKey)
			assert.Equal(t, Key("s1"), out.Item("b").PrevKey)
			assert.Equal(t, Key("b"), out.LastKey())
		})
	}
}

func TestFilterSectionEndingInHeaderIsDropped(t *testing.T) {
	c := buildCollection(t,
		section("s", item("a", "Alpha"), header("h", "Alpha header")),
		item("x", "alpha x"),
	)

	out := c.Filter(containsFold("alpha"))

	require.NoError(t, Validate(out))
	assert.Equal(t, []Key{"x"}, topKeys(out))
	assert.Nil(t, out.Item("a"))
	assert.Nil(t, out.Item("h"))
}

func TestFilterChildlessSection(t *testing.T) {
	c := buildCollection(t,
		section("empty"),
		separator("sep"),
		section("s", item("a", "A")),
		item("x", "X"),
	)

	out := c.Filter(func(string) bool { return true })

	require.NoError(t, Validate(out))
	assertSameStructure(t, c, out)
	assert.Equal(t, []Key{"empty", "sep", "s", "x"}, topKeys(out))

	out = c.Filter(func(text string) bool { return text == "X" })
	require.NoError(t, Validate(out))
	assert.Equal(t, []Key{"x"}, topKeys(out), "a childless section is tested on its own text")
}

func TestFilterMatchAllIsStructuralClone(t *testing.T) {
	c := buildCollection(t,
		item("top", "Top", item("child", "Child", item("grandchild", "Grandchild"))),
		section("s1", header("h1", "Header"), item("a", "A")),
		separator("sep"),
		section("s2", item("b", "B")),
		section("s3"),
	)

	out := c.Filter(func(string) bool { return true })

	require.NoError(t, Validate(out))
	assertSameStructure(t, c, out)
}

func TestFilterIsIdempotent(t *testing.T) {
	c := menuWithSections(t)
	first := c.Filter(containsFold("c"))
	second := c.Filter(containsFold("c"))
	assertSameStructure(t, first, second)
}

func TestFilterLeavesSourceUntouched(t *testing.T) {
	c := menuWithSections(t)
	before := snapshotLinks(c)

	_ = c.Filter(containsFold("cut"))

	assert.Equal(t, before, snapshotLinks(c))
	assert.Equal(t, 11, c.Size())
}

func TestFilterSubsetProperty(t *testing.T) {
	c := buildCollection(t,
		item("new", "New File"),
		item("open", "Open File"),
		separator("sep0"),
		section("edit", header("eh", "Edit"), item("undo", "Undo"), item("redo", "Redo")),
		separator("sep1"),
		section("view", item("zoom", "Zoom In"), item("zoomout", "Zoom Out")),
	)
	match := containsFold("o")

	out := c.Filter(match)
	require.NoError(t, Validate(out))

	for n := range out.Walk() {
		if n.Type == TypeItem {
			assert.True(t, match(n.TextValue), "retained item %q must match", n.Key)
		}
	}
	for n := range c.Walk() {
		if n.Type == TypeItem && match(n.TextValue) {
			got := out.Item(n.Key)
			if assert.NotNil(t, got, "matching item %q missing", n.Key) {
				assert.Equal(t, n.TextValue, got.TextValue)
			}
		}
	}
	assertNoDanglingSeparators(t, out)
}

func TestFilterNestedItems(t *testing.T) {
	c := buildCollection(t,
		item("projects", "Projects",
			item("p1", "Project alpha"),
			item("p2", "Project beta", item("p2a", "beta notes")),
		),
		item("photos", "Photos"),
	)

	out := c.Filter(containsFold("p"))
	require.NoError(t, Validate(out))
	assert.Equal(t, []Key{"projects", "photos"}, topKeys(out))
	assert.Equal(t, []Key{"p1", "p2"}, childKeys(out, "projects"))
	assert.False(t, out.Item("p2").HasChildNodes)
	assert.Nil(t, out.Item("p2a"))

	out = c.Filter(containsFold("beta"))
	assert.Equal(t, 0, out.Size(), "descendants of a dropped node are dropped with it")
}

func TestFilterEPropagatesPredicateError(t *testing.T) {
	c := menuWithSections(t)
	boom := errors.New("boom")

	out, err := c.FilterE(func(text string) (bool, error) {
		if text == "Cut" {
			return false, boom
		}
		return true, nil
	})

	assert.Nil(t, out)
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), `"5"`)
}

func TestFilterDoesNotRecoverPanics(t *testing.T) {
	c := buildCollection(t, item("1", "Foo"))
	assert.Panics(t, func() {
		c.Filter(func(string) bool { panic("predicate failed") })
	})
}

func TestValidateDetectsBrokenLinks(t *testing.T) {
	b := NewBuilder()
	a := NewNode(TypeItem, "a")
	a.NextKey = "b"
	bn := NewNode(TypeItem, "b")
	require.NoError(t, b.AddNode(a))
	require.NoError(t, b.AddNode(bn))
	c, err := b.Commit("a", "b")
	require.NoError(t, err)

	assert.ErrorIs(t, Validate(c), ErrInvalidStructure)
}

func TestValidateDetectsCyclesAndOrphans(t *testing.T) {
	b := NewBuilder()
	a := NewNode(TypeItem, "a")
	a.NextKey = "a"
	a.PrevKey = "a"
	require.NoError(t, b.AddNode(a))
	c, err := b.Commit("a", "a")
	require.NoError(t, err)
	assert.ErrorIs(t, Validate(c), ErrInvalidStructure)

	b = NewBuilder()
	require.NoError(t, b.AddNode(NewNode(TypeItem, "a")))
	require.NoError(t, b.AddNode(NewNode(TypeItem, "orphan")))
	c, err = b.Commit("a", "a")
	require.NoError(t, err)
	assert.ErrorIs(t, Validate(c), ErrInvalidStructure)
}

type links struct {
	Type                                      NodeType
	Text                                      string
	Parent, Prev, Next, FirstChild, LastChild Key
}

func snapshotLinks(c *Collection) map[Key]links {
	out := make(map[Key]links, c.Size())
	for k := range c.Keys() {
		n := c.Item(k)
		out[k] = links{
			Type: n.Type, Text: n.TextValue,
			Parent: n.ParentKey, Prev: n.PrevKey, Next: n.NextKey,
			FirstChild: n.FirstChildKey, LastChild: n.LastChildKey,
		}
	}
	return out
}

func assertSameStructure(t *testing.T, want, got *Collection) {
	t.Helper()
	assert.Equal(t, want.FirstKey(), got.FirstKey())
	assert.Equal(t, want.LastKey(), got.LastKey())
	assert.Equal(t, snapshotLinks(want), snapshotLinks(got))
}

func assertNoDanglingSeparators(t *testing.T, c *Collection) {
	t.Helper()
	for n := range c.Walk() {
		if n.Type != TypeSeparator {
			continue
		}
		assert.NotEmpty(t, n.PrevKey, "separator %q has no previous sibling", n.Key)
		assert.NotEmpty(t, n.NextKey, "separator %q has no next sibling", n.Key)
	}
}
