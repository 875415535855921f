package fingerprint

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew(t *testing.T) {
	a := New("Titre", "corps du texte")
	b := New("Titre", "corps du texte")
	c := New("Titre", "corps modifié")

	assert.Len(t, a, 64)
	assert.Equal(t, a, b)
	assert.NotEqual(t, a, c)
	assert.NotEqual(t, a, New("Autre titre", "corps du texte"))
}
