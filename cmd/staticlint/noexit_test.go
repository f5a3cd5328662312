package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/tools/go/analysis/analysistest"
)

func TestExitMainAnalyzer(t *testing.T) {
	analysistest.Run(t, analysistest.TestData(), ExitMainAnalyzer, "exitmain", "notmain")
}

func TestAnalyzers(t *testing.T) {
	names := make(map[string]bool)
	for _, a := range analyzers() {
		assert.False(t, names[a.Name], "duplicate analyzer %s", a.Name)
		names[a.Name] = true
	}

	assert.True(t, names["exitmain"])
	assert.True(t, names["printf"])
	assert.True(t, names["SA4006"])
	assert.True(t, names["S1000"])
}
