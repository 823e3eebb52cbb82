package rgb565

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRoundTripExtremes(t *testing.T) {
	r, g, b := Unpack(Pack(0xFF, 0xFF, 0xFF))
	assert.Equal(t, [3]uint8{0xFF, 0xFF, 0xFF}, [3]uint8{r, g, b})
	r, g, b = Unpack(Pack(0, 0, 0))
	assert.Equal(t, [3]uint8{0, 0, 0}, [3]uint8{r, g, b})
}

func TestPackLayout(t *testing.T) {
	assert.Equal(t, uint16(0xF800), Pack(0xFF, 0, 0))
	assert.Equal(t, uint16(0x07E0), Pack(0, 0xFF, 0))
	assert.Equal(t, uint16(0x001F), Pack(0, 0, 0xFF))
}
