package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pair struct {
	Left  int `json:"left"`
	Right int `json:"right"`
}

func TestJSONRoundTripThroughDriverTypes(t *testing.T) {
	v, err := JSONValue(pair{6, 4})
	require.NoError(t, err)

	var fromString pair
	require.NoError(t, ScanJSON(v, &fromString, "pair"))
	assert.Equal(t, pair{6, 4}, fromString)

	var fromBytes pair
	require.NoError(t, ScanJSON([]byte(`{"left":3,"right":6}`), &fromBytes, "pair"))
	assert.Equal(t, pair{3, 6}, fromBytes)
}

func TestScanJSONRejectsOtherTypes(t *testing.T) {
	var p pair
	assert.NoError(t, ScanJSON(nil, &p, "pair"))
	assert.EqualError(t, ScanJSON(42, &p, "pair"), "pair: expected []byte or string, got int")
}
