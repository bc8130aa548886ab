package handicapdomain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTenth(t *testing.T) {
	tests := map[float64]float64{
		25.74:  25.7,
		25.76:  25.8,
		0.15:   0.2,
		0.25:   0.2,
		0.35:   0.4,
		-0.15:  -0.2,
		13.499: 13.5,
	}
	for in, want := range tests {
		assert.Equal(t, want, RoundTenth(in), "RoundTenth(%v)", in)
	}
}

func TestRoundWhole(t *testing.T) {
	assert.Equal(t, 2, RoundWhole(2.5))
	assert.Equal(t, 4, RoundWhole(3.5))
	assert.Equal(t, 3, RoundWhole(3.4))
}
