package fetcher

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collectRows(t *testing.T, rowCh <-chan []string, errCh <-chan error) [][]string {
	t.Helper()
	var rows [][]string
	for row := range rowCh {
		rows = append(rows, row)
	}
	require.NoError(t, <-errCh)
	return rows
}

func TestStreamCSV_HeaderSkipped(t *testing.T) {
	data := "player_name,year\nPaul Skenes,2024\nJuan Soto,2023\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(data), CSVOptions{HasHeader: true})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 2)
	assert.Equal(t, []string{"Paul Skenes", "2024"}, rows[0])
}

func TestStreamCSV_HeaderChannel(t *testing.T) {
	data := "a,b\n1,2\n"
	headerCh := make(chan []string, 1)

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(data), CSVOptions{
		HasHeader: true,
		HeaderCh:  headerCh,
	})
	rows := collectRows(t, rowCh, errCh)

	assert.Equal(t, []string{"a", "b"}, <-headerCh)
	require.Len(t, rows, 1)
}

func TestStreamCSV_TrimSpace(t *testing.T) {
	data := " Paul Skenes , 2024 \n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(data), CSVOptions{TrimSpace: true})
	rows := collectRows(t, rowCh, errCh)

	require.Len(t, rows, 1)
	assert.Equal(t, []string{"Paul Skenes", "2024"}, rows[0])
}

func TestStreamCSV_VariableFieldCounts(t *testing.T) {
	data := "a,b,c\nd,e\n"

	rowCh, errCh := StreamCSV(context.Background(), strings.NewReader(data), CSVOptions{})
	rows := collectRows(t, rowCh, errCh)
	require.Len(t, rows, 2)
	assert.Len(t, rows[1], 2)
}

func TestStreamCSV_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	rowCh, errCh := StreamCSV(ctx, strings.NewReader("a,b\n"), CSVOptions{})
	for range rowCh {
	}
	assert.Error(t, <-errCh)
}
