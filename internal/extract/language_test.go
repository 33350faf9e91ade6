package extract

import (
	"testing"

	"github.com/pemistahl/lingua-go"
	"github.com/stretchr/testify/assert"
)

func TestLinguaDetector(t *testing.T) {
	d := NewLinguaDetector(lingua.English, lingua.French)

	lang, ok := d.Detect("The committee reviewed the annual budget and approved the new hiring plan for next year.")
	assert.True(t, ok)
	assert.Equal(t, "en", lang)

	lang, ok = d.Detect("Le comité a examiné le budget annuel et approuvé le nouveau plan de recrutement.")
	assert.True(t, ok)
	assert.Equal(t, "fr", lang)

	_, ok = d.Detect("too short")
	assert.False(t, ok)
}
