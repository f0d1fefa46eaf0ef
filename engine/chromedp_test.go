package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestXPathLiteral(t *testing.T) {
	assert.Equal(t, `"INITIATE STORY MODE"`, xpathLiteral("INITIATE STORY MODE"))
	assert.Equal(t, `'say "hi"'`, xpathLiteral(`say "hi"`))
	assert.Equal(t, `"it's fine"`, xpathLiteral("it's fine"))
	assert.Equal(t, `concat("it's ", '"', "quoted", '"', "")`, xpathLiteral(`it's "quoted"`))
}

func TestTextXPath(t *testing.T) {
	assert.Equal(t, `//*[text()[contains(., "START")]]`, textXPath("START"))
}
