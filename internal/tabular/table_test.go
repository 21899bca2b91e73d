package tabular

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromRecordsTrimsHeaderAndCells(t *testing.T) {
	table, err := FromRecords([][]string{
		{" Address ", "Status Code"},
		{"https://example.com ", " 200"},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"Address", "Status Code"}, table.Columns)
	require.Len(t, table.Rows, 1)
	assert.Equal(t, "https://example.com", table.Rows[0]["Address"])
	assert.Equal(t, "200", table.Rows[0]["Status Code"])
}

func TestFromRecordsPadsShortRows(t *testing.T) {
	table, err := FromRecords([][]string{
		{"Address", "Title 1", "Status Code"},
		{"https://example.com"},
	})
	require.NoError(t, err)

	row := table.Rows[0]
	assert.Equal(t, "https://example.com", row["Address"])
	assert.Equal(t, "", row["Title 1"])
	assert.Equal(t, "", row["Status Code"])
}

func TestFromRecordsTruncatesLongRows(t *testing.T) {
	table, err := FromRecords([][]string{
		{"Address"},
		{"https://example.com", "extra", "cells"},
	})
	require.NoError(t, err)

	require.Len(t, table.Rows, 1)
	assert.Len(t, table.Rows[0], 1)
}

func TestFromRecordsNoHeader(t *testing.T) {
	_, err := FromRecords(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no header row")
}

func TestHasColumn(t *testing.T) {
	table := &Table{Columns: []string{"Address", "Status Code"}}
	assert.True(t, table.HasColumn("Status Code"))
	assert.False(t, table.HasColumn("status code"))
	assert.False(t, table.HasColumn("Indexability"))
}

func TestRowCount(t *testing.T) {
	table := &Table{Rows: []map[string]string{{}, {}}}
	assert.Equal(t, 2, table.RowCount())
}

func TestParseNumber(t *testing.T) {
	cases := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"42", 42, true},
		{" 3.5 ", 3.5, true},
		{"1,234,567", 1234567, true},
		{"87.5%", 87.5, true},
		{"-12", -12, true},
		{"", 0, false},
		{"%", 0, false},
		{"n/a", 0, false},
		{"https://example.com", 0, false},
	}
	for _, tc := range cases {
		got, ok := ParseNumber(tc.in)
		assert.Equal(t, tc.ok, ok, "input %q", tc.in)
		if tc.ok {
			assert.InDelta(t, tc.want, got, 1e-9, "input %q", tc.in)
		}
	}
}
