package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseIndexList(t *testing.T) {
	cases := []struct {
		in      string
		want    []int
		wantErr bool
	}{
		{"", nil, false},
		{"all", nil, false},
		{"0;2;5", []int{0, 2, 5}, false},
		{" 3 ", []int{3}, false},
		{"1;x", nil, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			got, err := ParseIndexList(c.in)
			if c.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, c.want, got)
		})
	}
}

func TestReverseG(t *testing.T) {
	in := []int32{1, 2, 3}
	assert.Equal(t, []int32{3, 2, 1}, ReverseG(in))
	assert.Equal(t, []int32{1, 2, 3}, in)
	assert.Equal(t, 1.24, RoundFloat(1.2351, 2))
}
