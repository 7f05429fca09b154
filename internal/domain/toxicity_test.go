package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestChemicalProfiles(t *testing.T) {
	benzene := tons("JEFFERSON", "BENZENE", 2)
	benzene.CAS = "71-43-2"
	benzene.Toxicity = map[string]float64{"IUR": 7.8e-6}
	benzene2 := tons("ORANGE", "BENZENE", 1)
	toluene := tons("ORANGE", "TOLUENE", 5)
	outside := tons("HARRIS", "XYLENE", 50)

	got := ChemicalProfiles([]EmissionRecord{benzene2, benzene, toluene, outside}, SETx())

	require.Len(t, got, 2)
	assert.Equal(t, "TOLUENE", got[0].Chemical)
	assert.Nil(t, got[0].Toxicity)
	assert.Equal(t, "BENZENE", got[1].Chemical)
	assert.InDelta(t, 3.0, got[1].Tons, 1e-9)
	assert.Equal(t, "71-43-2", got[1].CAS)
	assert.Equal(t, map[string]float64{"IUR": 7.8e-6}, got[1].Toxicity)
}
