package excel

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"stikpet/domain/core"
)

func writeCSV(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestReadCSV(t *testing.T) {
	path := writeCSV(t, "group,score,rating\na,1.5,low\nb,NA,high\na,3\n")

	table, err := NewDataReader(path).Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"group", "score", "rating"}, table.Headers())
	assert.Equal(t, 3, table.Rows())

	scores, err := table.Numeric("score")
	require.NoError(t, err)
	assert.Equal(t, 1.5, scores[0])
	assert.True(t, math.IsNaN(scores[1]))
	assert.Equal(t, 3.0, scores[2])

	rating, err := table.Column("rating")
	require.NoError(t, err)
	assert.Equal(t, []string{"low", "high", ""}, rating)

	_, err = table.Column("missing")
	assert.ErrorIs(t, err, core.ErrNotFound)

	_, err = table.Numeric("group")
	assert.ErrorIs(t, err, core.ErrInvalidInput)
}

func TestReadRejectsDuplicateHeaders(t *testing.T) {
	_, err := NewDataReader(writeCSV(t, "x,x\n1,2\n")).ReadData()
	assert.Error(t, err)
}

func TestExcelRoundTrip(t *testing.T) {
	src, err := FromColumns([]string{"sex", "age"}, [][]string{{"m", "f", ""}, {"21", "", "40"}})
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "data.xlsx")
	require.NoError(t, WriteExcel(path, src.Data()))

	table, err := NewDataReader(path).Load()
	require.NoError(t, err)
	sex, err := table.Column("sex")
	require.NoError(t, err)
	assert.Equal(t, []string{"m", "f", ""}, sex)
	age, err := table.Numeric("age")
	require.NoError(t, err)
	assert.Equal(t, 21.0, age[0])
	assert.True(t, math.IsNaN(age[1]))
}

func TestInferColumnTypes(t *testing.T) {
	codes := make([]string, 40)
	values := make([]string, 40)
	names := make([]string, 40)
	for i := range codes {
		codes[i] = []string{"1", "2", "3"}[i%3]
		values[i] = strconv.FormatFloat(float64(i)+0.25, 'f', 2, 64)
		names[i] = "id-" + columnIndexToLetter(i)
	}
	table, err := FromColumns([]string{"code", "value", "name"}, [][]string{codes, values, names})
	require.NoError(t, err)

	types := table.InferColumnTypes()
	assert.Equal(t, TypeCategorical, types["code"])
	assert.Equal(t, TypeString, types["name"])
	assert.Equal(t, TypeNumeric, types["value"])
}

func TestColumnIndexToLetter(t *testing.T) {
	assert.Equal(t, "A", columnIndexToLetter(0))
	assert.Equal(t, "Z", columnIndexToLetter(25))
	assert.Equal(t, "AA", columnIndexToLetter(26))
}
