package area

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/worldnav/worldnav/resultcode"
)

func TestParseCSVSkipsBlankAndCommentLines(t *testing.T) {
	input := `
# areaid,zoneid,name
12,1,Elwynn Forest

40,1,Westfall
`
	tbl, err := ParseCSV(strings.NewReader(input))
	assert.NoError(t, err)

	zone, areaID := tbl.Resolve(12)
	assert.Equal(t, uint16(1), zone)
	assert.Equal(t, uint16(12), areaID)
	assert.Equal(t, "Elwynn Forest", tbl.Name(12))

	zone2, _ := tbl.Resolve(40)
	assert.Equal(t, uint16(1), zone2)
}

func TestParseCSVNameIsOptional(t *testing.T) {
	tbl, err := ParseCSV(strings.NewReader("5,5\n"))
	assert.NoError(t, err)
	assert.Equal(t, "", tbl.Name(5))
	zone, a := tbl.Resolve(5)
	assert.Equal(t, uint16(5), zone)
	assert.Equal(t, uint16(5), a)
}

func TestParseCSVRejectsMalformedRows(t *testing.T) {
	tests := []string{
		"onlyonefield\n",
		"notanumber,1,Name\n",
		"1,notanumber,Name\n",
	}
	for _, in := range tests {
		_, err := ParseCSV(strings.NewReader(in))
		assert.ErrorIs(t, err, resultcode.ErrCorrupt)
	}
}

func TestResolveUnknownIDDegradesToRawBothWays(t *testing.T) {
	tbl, err := ParseCSV(strings.NewReader("1,1,Known\n"))
	assert.NoError(t, err)

	zone, areaID := tbl.Resolve(9999)
	assert.Equal(t, uint16(9999), zone)
	assert.Equal(t, uint16(9999), areaID)
}

func TestNilTableDegradesToRaw(t *testing.T) {
	var tbl *Table
	zone, areaID := tbl.Resolve(77)
	assert.Equal(t, uint16(77), zone)
	assert.Equal(t, uint16(77), areaID)
	assert.Equal(t, "", tbl.Name(77))
}
