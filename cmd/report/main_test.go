package main

import (
	"flag"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListFlag(t *testing.T) {
	var region, payment, month listFlag
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	fs.Var(&region, "region", "")
	fs.Var(&payment, "payment", "")
	fs.Var(&month, "month", "")

	require.NoError(t, fs.Parse([]string{"-region", "Asia, Europe", "-region", "North America", "-payment="}))

	assert.True(t, region.set)
	assert.Equal(t, []string{"Asia", "Europe", "North America"}, region.values)
	assert.True(t, payment.set, "an empty value still selects the column")
	assert.Empty(t, payment.values)
	assert.False(t, month.set)
}
