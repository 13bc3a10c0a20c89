package terminal

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShowQRWritesCode(t *testing.T) {
	var buf bytes.Buffer
	NewQRPresenter(&buf).ShowQR("2@abcdef,ghijk,lmnop")

	assert.NotEmpty(t, buf.String())
}

func TestShowQRSkipsEmptyCode(t *testing.T) {
	var buf bytes.Buffer
	NewQRPresenter(&buf).ShowQR("")

	assert.Empty(t, buf.String())
}
