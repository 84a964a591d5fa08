package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayerFromFilename(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"paul-skenes-front.jpg", "Paul Skenes"},
		{"paul-skenes-back.jpg", "Paul Skenes"},
		{"/tmp/cards/juan-soto-front.png", "Juan Soto"},
		{"mike-trout-2.jpg", "Mike Trout"},
		{"shohei-ohtani(1).jpeg", "Shohei Ohtani"},
		{"victor-wembanyama-front-2.jpg", "Victor Wembanyama"},
		{"scan001.jpg", ""},
		{"IMG_1234.png", ""},
		{"", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, PlayerFromFilename(tt.path), "path=%s", tt.path)
	}
}
