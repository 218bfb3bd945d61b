package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderConfirmation(t *testing.T) {
	html, err := RenderConfirmation(ConfirmationData{
		CustomerName: "Gilles",
		OrderRef:     "a1b2c3d4",
		Lines: []ConfirmationLine{
			{Name: "Casquette", Quantity: 2, PriceCents: 1300},
			{Name: "Poutine", Quantity: 1, PriceCents: 1200},
		},
		TotalCents:   3800,
		LocationName: "Kiosque paddock",
	})
	require.NoError(t, err)

	s := string(html)
	assert.Contains(t, s, "Gilles")
	assert.Contains(t, s, "a1b2c3d4")
	assert.Contains(t, s, "Casquette")
	assert.Contains(t, s, "26.00 $") // 2 x 13.00
	assert.Contains(t, s, "38.00 $")
	assert.Contains(t, s, "Kiosque paddock")
}

func TestRenderConfirmationEscapesHTML(t *testing.T) {
	html, err := RenderConfirmation(ConfirmationData{
		CustomerName: "<script>alert(1)</script>",
		OrderRef:     "ref",
	})
	require.NoError(t, err)
	assert.NotContains(t, string(html), "<script>alert(1)</script>")
}

func TestFormatCents(t *testing.T) {
	assert.Equal(t, "0.05 $", formatCents(5))
	assert.Equal(t, "12.00 $", formatCents(1200))
	assert.Equal(t, "12.34 $", formatCents(1234))
}
