package main

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/woozymasta/heatlayers/internal/histogram"
)

func TestFormat(t *testing.T) {
	bins := histogram.Build([]float64{2, 3}, 4)

	data, err := format(bins, "json")
	require.NoError(t, err)
	assert.JSONEq(t, `[{"x0":2,"x1":3,"count":1},{"x0":3,"x1":3,"count":1}]`, string(data))

	data, err = format(bins, "yaml")
	require.NoError(t, err)
	assert.Contains(t, string(data), "x0: 2")
	assert.Contains(t, string(data), "count: 1")

	data, err = format(bins, "text")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, []string{"from", "to", "count"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"3", "3", "1"}, strings.Fields(lines[2]))
}
