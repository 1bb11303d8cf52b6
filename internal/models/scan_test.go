package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScanModeValid(t *testing.T) {
	assert.True(t, ScanModeCheckout.Valid())
	assert.True(t, ScanModeRecycle.Valid())
	assert.False(t, ScanMode("donate").Valid())
	assert.False(t, ScanMode("").Valid())
}
