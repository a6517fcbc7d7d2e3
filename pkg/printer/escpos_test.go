package printer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemLineAlignsToWidth(t *testing.T) {
	d := &Document{width: 20}
	d.ItemLine(2, "Crème brûlée", "9.00")

	line := strings.TrimSuffix(d.buf.String(), "\n")
	assert.Equal(t, 20, len([]rune(line)))
	assert.True(t, strings.HasPrefix(line, "2x Crème brûlée"))
	assert.True(t, strings.HasSuffix(line, "9.00"))
}

func TestItemLineTruncatesLongNames(t *testing.T) {
	d := &Document{width: 20}
	d.ItemLine(1, "Slow roasted lamb shoulder", "24.00")

	line := strings.TrimSuffix(d.buf.String(), "\n")
	assert.Equal(t, "1x Slow roast~ 24.00", line)
}

func TestNewPrinterTypes(t *testing.T) {
	p, err := New("", "", "")
	require.NoError(t, err)
	assert.IsType(t, &Buffer{}, p)

	_, err = New(TypeUSB, "", "")
	assert.Error(t, err)

	_, err = New("carrier-pigeon", "", "")
	assert.Error(t, err)
}

func TestBufferKeepsJobs(t *testing.T) {
	b := NewBuffer()
	require.NoError(t, b.Print(context.Background(), []byte("one")))
	require.NoError(t, b.Print(context.Background(), []byte("two")))
	assert.Equal(t, [][]byte{[]byte("one"), []byte("two")}, b.Jobs())
}
