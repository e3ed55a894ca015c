package kwtree

import (
	"fmt"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// buildFinalized compiles a finalized tree from keywords.
func buildFinalized(t *testing.T, opts Opts, keywords ...string) *Tree {
	t.Helper()
	tree := New(opts)
	for _, kw := range keywords {
		require.NoError(t, tree.Add(kw))
	}
	require.NoError(t, tree.Finalize())
	return tree
}

func TestSearchAll_ClassicOverlap(t *testing.T) {
	// The textbook scenario: keywords {he, she, his, hers} over "ushers".
	// "she" and "he" both end at position 4 (longer first), "hers" ends at 6.
	tree := buildFinalized(t, Opts{}, "he", "she", "his", "hers")

	matches, err := tree.SearchAll("ushers")
	require.NoError(t, err)
	assert.Equal(t, []Match{
		{Keyword: "she", Start: 1},
		{Keyword: "he", Start: 2},
		{Keyword: "hers", Start: 2},
	}, matches)
}

func TestSearchAll_NestedSuffixes(t *testing.T) {
	// Keywords nested as strict suffixes of a longer match are all reported:
	// "abcd" contains "bc" and "c" even though the scan never leaves the
	// "abcd" branch.
	tree := buildFinalized(t, Opts{}, "abcd", "bc", "c")

	matches, err := tree.SearchAll("abcd")
	require.NoError(t, err)
	assert.Equal(t, []Match{
		{Keyword: "bc", Start: 1},
		{Keyword: "c", Start: 2},
		{Keyword: "abcd", Start: 0},
	}, matches)
}

func TestSearchAll_RepeatedOccurrences(t *testing.T) {
	// Self-overlapping occurrences each count once.
	tree := buildFinalized(t, Opts{}, "aa")

	matches, err := tree.SearchAll("aaaa")
	require.NoError(t, err)
	assert.Equal(t, []Match{
		{Keyword: "aa", Start: 0},
		{Keyword: "aa", Start: 1},
		{Keyword: "aa", Start: 2},
	}, matches)
}

func TestSearchAll_NoMatch(t *testing.T) {
	tree := buildFinalized(t, Opts{}, "auth", "login")

	matches, err := tree.SearchAll("hello world")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestSearchAll_Ordering(t *testing.T) {
	// Matches come out in non-decreasing end position; among equal end
	// positions, longer keywords first.
	tree := buildFinalized(t, Opts{}, "a", "ba", "cba")

	matches, err := tree.SearchAll("cba")
	require.NoError(t, err)
	require.Equal(t, []Match{
		{Keyword: "cba", Start: 0},
		{Keyword: "ba", Start: 1},
		{Keyword: "a", Start: 2},
	}, matches)

	for i := 1; i < len(matches); i++ {
		prev, cur := matches[i-1], matches[i]
		assert.LessOrEqual(t, prev.End(), cur.End())
		if prev.End() == cur.End() {
			assert.GreaterOrEqual(t,
				utf8.RuneCountInString(prev.Keyword),
				utf8.RuneCountInString(cur.Keyword))
		}
	}
}

func TestSearchAll_Unicode(t *testing.T) {
	// Offsets are rune offsets, not byte offsets.
	tree := buildFinalized(t, Opts{}, "中国", "国中")

	matches, err := tree.SearchAll("中国中")
	require.NoError(t, err)
	assert.Equal(t, []Match{
		{Keyword: "中国", Start: 0},
		{Keyword: "国中", Start: 1},
	}, matches)
}

func TestSearchOne(t *testing.T) {
	tree := buildFinalized(t, Opts{}, "he", "she", "his", "hers")

	m, err := tree.SearchOne("ushers")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, Match{Keyword: "she", Start: 1}, *m)

	m, err = tree.SearchOne("nothing here matches")
	require.NoError(t, err)
	assert.Nil(t, m)
}

func TestIter_Lazy(t *testing.T) {
	// The iterator is pull-based: taking two matches and walking away is
	// fine, and each pull picks up exactly where the last one stopped.
	tree := buildFinalized(t, Opts{}, "aa")

	it, err := tree.Iter("aaaa")
	require.NoError(t, err)

	first := it.Next()
	require.NotNil(t, first)
	assert.Equal(t, 0, first.Start)

	second := it.Next()
	require.NotNil(t, second)
	assert.Equal(t, 1, second.Start)
}

func TestIter_Exhausted(t *testing.T) {
	tree := buildFinalized(t, Opts{}, "x")

	it, err := tree.Iter("x")
	require.NoError(t, err)
	require.NotNil(t, it.Next())
	assert.Nil(t, it.Next())
	assert.Nil(t, it.Next()) // stays nil once drained
}

func TestAdd_AfterFinalize(t *testing.T) {
	tree := buildFinalized(t, Opts{}, "he")

	err := tree.Add("she")
	require.ErrorIs(t, err, ErrAlreadyFinalized)

	// The failed Add left search behavior untouched.
	matches, err := tree.SearchAll("she")
	require.NoError(t, err)
	assert.Equal(t, []Match{{Keyword: "he", Start: 1}}, matches)
}

func TestFinalize_Twice(t *testing.T) {
	tree := buildFinalized(t, Opts{}, "he")
	assert.ErrorIs(t, tree.Finalize(), ErrAlreadyFinalized)
}

func TestSearch_BeforeFinalize(t *testing.T) {
	tree := New(Opts{})
	require.NoError(t, tree.Add("he"))

	_, err := tree.SearchAll("he")
	assert.ErrorIs(t, err, ErrNotFinalized)

	_, err = tree.SearchOne("he")
	assert.ErrorIs(t, err, ErrNotFinalized)

	_, err = tree.Iter("he")
	assert.ErrorIs(t, err, ErrNotFinalized)
}

func TestAdd_EmptyKeyword(t *testing.T) {
	// The empty keyword is silently ignored: no node, no matches ever.
	tree := New(Opts{})
	require.NoError(t, tree.Add(""))
	assert.Equal(t, 1, tree.Len()) // root only

	require.NoError(t, tree.Finalize())

	matches, err := tree.SearchAll("")
	require.NoError(t, err)
	assert.Empty(t, matches)

	matches, err = tree.SearchAll("anything")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestAdd_Idempotent(t *testing.T) {
	tree := New(Opts{})
	require.NoError(t, tree.Add("he"))
	nodes := tree.Len()
	require.NoError(t, tree.Add("he"))
	assert.Equal(t, nodes, tree.Len())

	require.NoError(t, tree.Finalize())
	matches, err := tree.SearchAll("he")
	require.NoError(t, err)
	assert.Len(t, matches, 1)
}

func TestCaseInsensitive_ReportsOriginalCasing(t *testing.T) {
	// Matching is folded, but the reported keyword keeps the casing it was
	// added with.
	tree := buildFinalized(t, Opts{CaseInsensitive: true}, "Abc")

	matches, err := tree.SearchAll("xxABCxx")
	require.NoError(t, err)
	assert.Equal(t, []Match{{Keyword: "Abc", Start: 2}}, matches)
}

func TestCaseInsensitive_RecasedReAdd(t *testing.T) {
	// Re-adding the same folded keyword re-marks the same node; the latest
	// casing wins.
	tree := New(Opts{CaseInsensitive: true})
	require.NoError(t, tree.Add("abc"))
	nodes := tree.Len()
	require.NoError(t, tree.Add("ABC"))
	require.Equal(t, nodes, tree.Len())
	require.NoError(t, tree.Finalize())

	m, err := tree.SearchOne("abc")
	require.NoError(t, err)
	require.NotNil(t, m)
	assert.Equal(t, "ABC", m.Keyword)
}

func TestCaseSensitive_Default(t *testing.T) {
	tree := buildFinalized(t, Opts{}, "Abc")

	matches, err := tree.SearchAll("xxABCxx")
	require.NoError(t, err)
	assert.Empty(t, matches)
}

func TestConcurrentSearch(t *testing.T) {
	// A finalized tree is immutable; concurrent searches must agree.
	tree := buildFinalized(t, Opts{}, "he", "she", "his", "hers")
	want, err := tree.SearchAll("ushers say she sold his shells")
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, err := tree.SearchAll("ushers say she sold his shells")
			if err != nil {
				errs <- err
				return
			}
			if len(got) != len(want) {
				errs <- fmt.Errorf("expected %d matches, got %d", len(want), len(got))
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Errorf("concurrent search error: %v", err)
	}
}

func BenchmarkSearchAll(b *testing.B) {
	tree := New(Opts{})
	for i := 0; i < 500; i++ {
		if err := tree.Add(fmt.Sprintf("keyword%d", i)); err != nil {
			b.Fatal(err)
		}
	}
	if err := tree.Finalize(); err != nil {
		b.Fatal(err)
	}

	var text string
	for i := 0; i < 50; i++ {
		text += fmt.Sprintf("some filler keyword%d more filler ", i*7%500)
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := tree.SearchAll(text); err != nil {
			b.Fatal(err)
		}
	}
}
