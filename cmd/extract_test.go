package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBackPath(t *testing.T) {
	assert.Empty(t, backPath([]string{"front.jpg"}))
	assert.Equal(t, "back.jpg", backPath([]string{"front.jpg", "back.jpg"}))
}
