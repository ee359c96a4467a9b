package paginator

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNumPages(t *testing.T) {
	cases := []struct {
		total   int64
		perPage int
		want    int
	}{
		{0, 10, 1},
		{1, 10, 1},
		{10, 10, 1},
		{11, 10, 2},
		{13, 10, 2},
		{20, 10, 2},
		{21, 10, 3},
		{5, 0, 5},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, New(tc.total, tc.perPage).NumPages(), "total=%d perPage=%d", tc.total, tc.perPage)
	}
}

func TestPageResolvesRawNumber(t *testing.T) {
	p := New(25, 10)

	assert.Equal(t, 1, p.Page("").Number)
	assert.Equal(t, 1, p.Page("abc").Number)
	assert.Equal(t, 1, p.Page("0").Number)
	assert.Equal(t, 1, p.Page("-4").Number)
	assert.Equal(t, 2, p.Page("2").Number)
	assert.Equal(t, 2, p.Page(" 2 ").Number)
	assert.Equal(t, 3, p.Page("3").Number)
	assert.Equal(t, 3, p.Page("99").Number, "out of range clamps to the last page")
}

func TestLastPageHoldsRemainder(t *testing.T) {
	for _, total := range []int64{1, 9, 10, 13, 20, 27, 30} {
		p := New(total, 10)
		last := p.Page("999")

		want := int(total % 10)
		if want == 0 {
			want = 10
		}
		assert.Equal(t, want, last.Len(), "total=%d", total)
	}
}

func TestPageWindow(t *testing.T) {
	p := New(13, 10)

	first := p.Page("1")
	assert.Equal(t, 0, first.Offset())
	assert.Equal(t, 10, first.Limit())
	assert.Equal(t, 10, first.Len())
	assert.True(t, first.HasNext())
	assert.False(t, first.HasPrevious())
	assert.Equal(t, 2, first.NextNumber())

	second := p.Page("2")
	assert.Equal(t, 10, second.Offset())
	assert.Equal(t, 3, second.Len())
	assert.False(t, second.HasNext())
	assert.True(t, second.HasPrevious())
	assert.Equal(t, 1, second.PreviousNumber())
	assert.Equal(t, []int{1, 2}, second.PageRange())
}

func TestEmptyResultSet(t *testing.T) {
	page := New(0, 10).Page("3")

	assert.Equal(t, 1, page.Number)
	assert.Equal(t, 0, page.Len())
	assert.False(t, page.HasOtherPages())
}
