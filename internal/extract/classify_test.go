package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsGraded_PrimaryIndicators(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"psa with grade", "PSA 10 GEM MINT"},
		{"full company name", "PROFESSIONAL SPORTS AUTHENTICATOR"},
		{"cert number", "CERT #98765432"},
		{"certification number", "CERTIFICATION 81234567"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.True(t, IsGraded(tt.text))
		})
	}
}

func TestIsGraded_SecondaryWithQR(t *testing.T) {
	// Two weak indicators plus QR caption text.
	text := "PSA AUTHENTIC\nSCAN FOR VERIFICATION"
	assert.True(t, IsGraded(text))
}

func TestIsGraded_SecondaryAloneInsufficient(t *testing.T) {
	// One weak indicator, no QR.
	assert.False(t, IsGraded("PSA"))
	// Two weak indicators but no QR caption.
	assert.False(t, IsGraded("PSA AUTHENTIC"))
}

func TestIsGraded_RawCardText(t *testing.T) {
	text := "PAUL SKENES\n2024 TOPPS CHROME #150\nROOKIE CARD\nPITTSBURGH PIRATES"
	assert.False(t, IsGraded(text))
}
