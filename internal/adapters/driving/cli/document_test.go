package cli

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/fetcha-cli/internal/core/domain"
)

func TestDocumentCmd_Use(t *testing.T) {
	assert.Equal(t, "document [doc-id]", documentCmd.Use)
}

func TestDocumentCmd_RequiresExactlyOneArg(t *testing.T) {
	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "accepts 1 arg(s)")
}

func TestDocumentCmd_PrintsContent(t *testing.T) {
	agg, _, cleanup := setupTestServices()
	defer cleanup()
	agg.doc = &domain.DocumentContent{
		ID:           "confluence:99",
		Title:        "Runbook",
		Content:      "Step one: stay calm.",
		Source:       domain.SourceConfluence,
		Author:       "ops",
		LastModified: "2026-08-20T08:00:00Z",
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"document", "confluence:99"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Equal(t, "confluence:99", agg.gotDocID)
	assert.Contains(t, buf.String(), "Runbook")
	assert.Contains(t, buf.String(), "Step one: stay calm.")
}

func TestDocumentCmd_PropagatesError(t *testing.T) {
	agg, _, cleanup := setupTestServices()
	defer cleanup()
	agg.err = domain.ErrNotFound

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"document", "notion:missing"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrNotFound))
}
