package pdfextract

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestExtractPagesEmptyInput(t *testing.T) {
	_, err := ExtractPages(nil)
	require.Error(t, err)
}

func TestExtractPagesGarbageInput(t *testing.T) {
	_, err := ExtractPages([]byte("this is not a pdf"))
	require.Error(t, err)
}
