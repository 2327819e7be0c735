package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunDemo(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, run(&out, "and with", 2))
	s := out.String()

	assert.Contains(t, s, "Error adding document 9:")
	assert.Contains(t, s, "Error adding document -1:")
	assert.Contains(t, s, "Error adding document 10:")
	assert.Contains(t, s, "Before duplicates removed: 10")
	assert.Contains(t, s, "Found duplicate document id 3\n")
	assert.Contains(t, s, "Found duplicate document id 4\n")
	assert.Contains(t, s, "Found duplicate document id 5\n")
	assert.Contains(t, s, "Found duplicate document id 7\n")
	assert.Contains(t, s, "After duplicates removed: 6")
	assert.Contains(t, s, "Error in query:")
	assert.Contains(t, s, "Page break")
	assert.Contains(t, s, "Total empty requests: 3 of last 5")
}
