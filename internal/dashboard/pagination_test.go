package dashboard_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shashiranjanraj/laundry/internal/dashboard"
)

func TestPageCount(t *testing.T) {
	cases := map[int]int{0: 0, 1: 1, 5: 1, 6: 2, 12: 3, 15: 3}
	for total, want := range cases {
		assert.Equal(t, want, dashboard.PageCount(total), "total=%d", total)
	}
}

func TestPageLinks(t *testing.T) {
	assert.Empty(t, dashboard.PageLinks(0))
	assert.Equal(t, []int{1, 2, 3}, dashboard.PageLinks(12))
}

func TestVisible(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}
	p := dashboard.NewPagination()
	assert.Equal(t, 1, p.Current())
	assert.Equal(t, []int{1, 2, 3, 4, 5}, dashboard.Visible(p, items))

	p.SetPage(2)
	assert.Equal(t, []int{6, 7}, dashboard.Visible(p, items))

	// stale page after the list shrank
	assert.Empty(t, dashboard.Visible(p, items[:3]))
	assert.Equal(t, 2, p.Current())
}
