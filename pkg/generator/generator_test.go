package generator_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"gatherguru/pkg/generator"
)

func TestGenerateRandomID(t *testing.T) {
	id, err := generator.GenerateRandomID(24)

	assert.NoError(t, err)
	assert.Len(t, id, 24)

	other, err := generator.GenerateRandomID(24)
	assert.NoError(t, err)
	assert.NotEqual(t, id, other)
}

func TestTicketCode(t *testing.T) {
	code, err := generator.TicketCode()

	assert.NoError(t, err)
	assert.True(t, strings.HasPrefix(code, "GG-"))
	assert.Len(t, code, 11)
	assert.NotContains(t, code[3:], "0")
	assert.NotContains(t, code[3:], "O")
}
