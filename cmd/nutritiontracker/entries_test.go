package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kanaan7/NutritionTracker/internal"
)

func TestDescribe(t *testing.T) {
	err := describe(&internal.ExtractionParseError{Raw: "not json", Err: errors.New("invalid character")})
	assert.Contains(t, err.Error(), "extraction_parse (502)")
	assert.Contains(t, err.Error(), "raw output:\nnot json")

	err = describe(internal.ErrQuotaExhausted)
	assert.Equal(t, "quota_exhausted (402): Quota exhausted. Please add billing or wait.", err.Error())
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, printJSON(&buf, internal.Entry{ID: 2, Date: "2024-03-09", Fields: internal.Fields{"calories": 10}}))
	assert.JSONEq(t, `{"id":2,"date":"2024-03-09","calories":10,"tips":""}`, buf.String())
}

func TestCommandsRegistered(t *testing.T) {
	for _, cmd := range []string{"serve", "log", "history", "summary"} {
		c, _, err := rootCmd.Find([]string{cmd})
		require.NoError(t, err, cmd)
		assert.Equal(t, cmd, c.Name())
	}
}
