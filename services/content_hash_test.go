package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashContentDeterministic(t *testing.T) {
	a := HashContent([]byte("same input"))
	b := HashContent([]byte("same input"))
	c := HashContent([]byte("different input"))

	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.Len(t, a, 40) // hex SHA-1
}
