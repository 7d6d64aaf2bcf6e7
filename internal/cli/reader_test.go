package cli

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLineReader_ReadLine(t *testing.T) {
	tests := []struct {
		name          string
		input         string
		expectedValue string
		expectedErr   error
	}{
		{name: "successful read", input: "test input\n", expectedValue: "test input"},
		{name: "extra whitespace", input: "  test input  \n", expectedValue: "test input"},
		{name: "windows line ending", input: "value\r\n", expectedValue: "value"},
		{name: "empty line", input: "\n", expectedValue: ""},
		{name: "last line without newline", input: "tail", expectedValue: "tail"},
		{name: "no input", input: "", expectedErr: io.EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewLineReader(strings.NewReader(tt.input))

			got, err := r.ReadLine(context.Background())
			if tt.expectedErr != nil {
				assert.ErrorIs(t, err, tt.expectedErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expectedValue, got)
		})
	}
}

func TestLineReader_Sequential(t *testing.T) {
	r := NewLineReader(strings.NewReader("one\ntwo\n"))
	ctx := context.Background()

	first, err := r.ReadLine(ctx)
	require.NoError(t, err)
	second, err := r.ReadLine(ctx)
	require.NoError(t, err)

	assert.Equal(t, "one", first)
	assert.Equal(t, "two", second)
}

func TestLineReader_ContextCancellation(t *testing.T) {
	pr, pw := io.Pipe()
	defer func() { _ = pw.Close() }()
	r := NewLineReader(pr)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	_, err := r.ReadLine(ctx)
	assert.ErrorIs(t, err, ErrInputCancelled)
}
