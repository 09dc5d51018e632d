package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"Fresh Mangoes", "fresh-mangoes"},
		{"Café crème brûlée", "cafe-creme-brulee"},
		{"  lots   of   spaces  ", "lots-of-spaces"},
		{"UPPER & lower!", "upper-lower"},
		{"100% Natural Honey", "100-natural-honey"},
		{"---", ""},
		{"", ""},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Slugify(c.in), "input %q", c.in)
	}
}
