package paging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPageURL(t *testing.T) {
	got, err := PageURL("https://www.hastnet.se/till-salu/hastar/?sidan={page}", 7)
	require.NoError(t, err)
	assert.Equal(t, "https://www.hastnet.se/till-salu/hastar/?sidan=7", got)

	_, err = PageURL("https://example.com/?p=1", 2)
	assert.ErrorContains(t, err, "placeholder")

	_, err = PageURL("/relative?page={page}", 2)
	assert.ErrorContains(t, err, "not absolute")

	_, err = PageURL("https://example.com/?p={page}", 0)
	assert.Error(t, err)
}

func TestBatches(t *testing.T) {
	tests := []struct {
		name             string
		start, end, size int
		want             [][]int
	}{
		{"uneven tail", 1, 5, 2, [][]int{{1, 2}, {3, 4}, {5}}},
		{"single page", 3, 3, 4, [][]int{{3}}},
		{"size covers range", 1, 4, 10, [][]int{{1, 2, 3, 4}}},
		{"size one", 2, 4, 1, [][]int{{2}, {3}, {4}}},
		{"exact multiple", 1, 6, 3, [][]int{{1, 2, 3}, {4, 5, 6}}},
		{"near max int", math.MaxInt - 2, math.MaxInt, 2, [][]int{{math.MaxInt - 2, math.MaxInt - 1}, {math.MaxInt}}},
		{"size near max int", math.MaxInt - 1, math.MaxInt, math.MaxInt, [][]int{{math.MaxInt - 1, math.MaxInt}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Batches(tt.start, tt.end, tt.size)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, len(tt.want), CountBatches(tt.start, tt.end, tt.size))
		})
	}
}

func TestBatches_InvalidInput(t *testing.T) {
	_, err := Batches(1, 5, 0)
	assert.Error(t, err)

	_, err = Batches(6, 5, 2)
	assert.Error(t, err)
}

func TestBatches_RangeTooLarge(t *testing.T) {
	got, err := Batches(1, MaxPages, 5)
	require.NoError(t, err)
	assert.Len(t, got, MaxPages/5)

	_, err = Batches(1, MaxPages+1, 5)
	assert.ErrorContains(t, err, "exceeds")

	_, err = Batches(1, math.MaxInt, 5)
	assert.Error(t, err)
}
