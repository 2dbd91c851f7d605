package paging

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int
	}{
		{"missing", nil, 1},
		{"zero", 0, 1},
		{"negative", -4, 1},
		{"valid int", 3, 3},
		{"int64", int64(7), 7},
		{"integral float", 2.0, 2},
		{"fractional float", 2.5, 1},
		{"numeric string", "5", 5},
		{"padded string", " 4 ", 4},
		{"garbage string", "abc", 1},
		{"negative string", "-2", 1},
		{"query values", []string{"6", "9"}, 6},
		{"empty query values", []string{}, 1},
		{"unsupported type", struct{}{}, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, Request{Page: tt.want}, Normalize(tt.raw))
		})
	}
}

func TestRequestOffset(t *testing.T) {
	assert.Equal(t, 0, Request{Page: 1}.Offset(10))
	assert.Equal(t, 10, Request{Page: 2}.Offset(10))
	assert.Equal(t, 40, Request{Page: 5}.Offset(10))
	assert.Equal(t, 0, Request{}.Offset(10))
	assert.Equal(t, 0, Request{Page: 3}.Offset(0))
}

func TestRequestOffset_Saturates(t *testing.T) {
	assert.Equal(t, math.MaxInt, Request{Page: math.MaxInt}.Offset(10))
	assert.Equal(t, math.MaxInt, Normalize("1000000000000000000").Offset(100))
	assert.Equal(t, math.MaxInt, Normalize(1e300).Page)

	edge := math.MaxInt/10 + 1
	assert.Equal(t, math.MaxInt/10*10, Request{Page: edge}.Offset(10))
	assert.Equal(t, math.MaxInt, Request{Page: edge + 1}.Offset(10))
}

func TestTotalPages(t *testing.T) {
	assert.Equal(t, 1, TotalPages(0, 10))
	assert.Equal(t, 1, TotalPages(10, 10))
	assert.Equal(t, 3, TotalPages(23, 10))
	assert.Equal(t, 3, TotalPages(23, 0), "falls back to the default page size")
}

func TestClamp(t *testing.T) {
	assert.Equal(t, 1, Clamp(0, 3))
	assert.Equal(t, 3, Clamp(9, 3))
	assert.Equal(t, 2, Clamp(2, 3))
	assert.Equal(t, 1, Clamp(4, 0))
}

func TestWindow(t *testing.T) {
	tests := []struct {
		name    string
		current int
		total   int
		want    []int
	}{
		{"few pages", 1, 3, []int{1, 2, 3}},
		{"exactly fits", 4, 7, []int{1, 2, 3, 4, 5, 6, 7}},
		{"near start", 2, 20, []int{1, 2, 3, 4, 5, Ellipsis, 20}},
		{"middle", 10, 20, []int{1, Ellipsis, 9, 10, 11, Ellipsis, 20}},
		{"near end", 19, 20, []int{1, Ellipsis, 16, 17, 18, 19, 20}},
		{"current out of range", 50, 20, []int{1, Ellipsis, 16, 17, 18, 19, 20}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Window(tt.current, tt.total, 1))
		})
	}
}
