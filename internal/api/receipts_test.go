package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader is enough of a PNG for content sniffing.
var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func bytesReader(s string) io.Reader {
	return strings.NewReader(s)
}

func TestValidateReceipt(t *testing.T) {
	tests := []struct {
		name    string
		file    ReceiptFile
		wantErr bool
	}{
		{name: "jpeg", file: ReceiptFile{MIMEType: "image/jpeg", Size: 100, Content: bytesReader("x")}},
		{name: "jpg alias", file: ReceiptFile{MIMEType: "image/jpg", Size: 100, Content: bytesReader("x")}},
		{name: "png with parameters", file: ReceiptFile{MIMEType: "image/png; charset=binary", Size: 100, Content: bytesReader("x")}},
		{name: "webp", file: ReceiptFile{MIMEType: "image/webp", Size: 100, Content: bytesReader("x")}},
		{name: "gif upper case", file: ReceiptFile{MIMEType: "IMAGE/GIF", Size: 100, Content: bytesReader("x")}},
		{name: "exactly 10MB", file: ReceiptFile{MIMEType: "image/png", Size: MaxReceiptSize, Content: bytesReader("x")}},
		{name: "pdf", file: ReceiptFile{MIMEType: "application/pdf", Size: 100, Content: bytesReader("x")}, wantErr: true},
		{name: "svg", file: ReceiptFile{MIMEType: "image/svg+xml", Size: 100, Content: bytesReader("x")}, wantErr: true},
		{name: "no type", file: ReceiptFile{Size: 100, Content: bytesReader("x")}, wantErr: true},
		{name: "too large", file: ReceiptFile{MIMEType: "image/png", Size: MaxReceiptSize + 1, Content: bytesReader("x")}, wantErr: true},
		{name: "empty", file: ReceiptFile{MIMEType: "image/png", Size: 0, Content: bytesReader("")}, wantErr: true},
		{name: "no content", file: ReceiptFile{MIMEType: "image/png", Size: 10}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg := ValidateReceipt(tt.file)
			if tt.wantErr {
				assert.NotEmpty(t, msg)
			} else {
				assert.Empty(t, msg)
			}
		})
	}
}

func TestUploadReceipt_RejectsWithoutRequest(t *testing.T) {
	tests := []struct {
		name        string
		file        ReceiptFile
		wantMessage string
	}{
		{
			name:        "pdf",
			file:        ReceiptFile{Name: "r.pdf", MIMEType: "application/pdf", Size: 10, Content: bytesReader("%PDF")},
			wantMessage: "Invalid file type. Please upload a JPEG, PNG, WEBP or GIF image.",
		},
		{
			name:        "oversized",
			file:        ReceiptFile{Name: "r.png", MIMEType: "image/png", Size: 11 << 20, Content: bytesReader("x")},
			wantMessage: "File is too large. Maximum size is 10MB.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, func(w http.ResponseWriter, _ *http.Request) {
				writeJSON(t, w, http.StatusOK, ok(nil))
			}, true)

			resp, err := env.client.UploadReceipt(context.Background(), tt.file)

			assert.ErrorIs(t, err, common.ErrInvalidReceipt)
			assert.Equal(t, tt.wantMessage, resp.Message)
			assert.Equal(t, map[string][]string{"receipt": {tt.wantMessage}}, resp.FieldErrors())
			assert.Equal(t, int32(0), env.hits.Load())
			assert.True(t, env.store.Authenticated())
		})
	}
}

func TestUploadReceipt_Multipart(t *testing.T) {
	content := append(append([]byte{}, pngHeader...), bytes.Repeat([]byte("z"), 4096)...)

	var gotName, gotType, gotAuth string
	var gotContent []byte
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/receipts", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)
		gotAuth = r.Header.Get("Authorization")

		file, header, err := r.FormFile("receipt")
		if !assert.NoError(t, err) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		defer func() { _ = file.Close() }()
		gotName = header.Filename
		gotType = header.Header.Get("Content-Type")
		gotContent, _ = io.ReadAll(file)

		writeJSON(t, w, http.StatusCreated, ok(map[string]any{
			"receipt": map[string]any{
				"_id":        "r1",
				"fileUrl":    "/uploads/r1.png",
				"fileName":   "lunch.png",
				"fileSize":   len(content),
				"mimeType":   "image/png",
				"ocrStatus":  "pending",
				"uploadedAt": "2025-03-14T10:00:00.000Z",
			},
			"expense": expenseJSON("e9", 18.75),
		}))
	}, true)

	resp, err := env.client.UploadReceipt(context.Background(), ReceiptFile{
		Name:     "/tmp/lunch.png",
		MIMEType: "image/png",
		Size:     int64(len(content)),
		Content:  bytes.NewReader(content),
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer token-123", gotAuth)
	assert.Equal(t, "lunch.png", gotName)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, content, gotContent)

	assert.Equal(t, "r1", resp.Data.Receipt.ID)
	assert.False(t, resp.Data.Receipt.OCRStatus.Done())
	require.NotNil(t, resp.Data.Expense)
	assert.Equal(t, "e9", resp.Data.Expense.ID)
}

func TestUploadReceipt_ServerRejects(t *testing.T) {
	env := newTestEnv(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.Copy(io.Discard, r.Body)
		writeJSON(t, w, http.StatusBadRequest, map[string]any{
			"success": false,
			"message": "Upload failed",
			"errors":  []map[string]string{{"field": "receipt", "message": "Unreadable image"}},
		})
	}, true)

	resp, err := env.client.UploadReceipt(context.Background(), ReceiptFile{
		Name: "r.gif", MIMEType: "image/gif", Size: 3, Content: bytesReader("GIF"),
	})

	assert.ErrorIs(t, err, common.ErrRequestFailed)
	assert.Equal(t, map[string][]string{"receipt": {"Unreadable image"}}, resp.FieldErrors())
}

func TestOpenReceiptFile(t *testing.T) {
	dir := t.TempDir()

	byExt := filepath.Join(dir, "receipt.JPG")
	require.NoError(t, os.WriteFile(byExt, []byte("not really a jpeg"), 0o600))

	sniffed := filepath.Join(dir, "scan.bin")
	sniffedContent := append(append([]byte{}, pngHeader...), []byte("rest of image")...)
	require.NoError(t, os.WriteFile(sniffed, sniffedContent, 0o600))

	text := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(text, []byte("hello"), 0o600))

	tests := []struct {
		name        string
		path        string
		wantType    string
		wantContent []byte
		wantValid   bool
	}{
		{name: "extension", path: byExt, wantType: "image/jpeg", wantContent: []byte("not really a jpeg"), wantValid: true},
		{name: "sniffed", path: sniffed, wantType: "image/png", wantContent: sniffedContent, wantValid: true},
		{name: "text file", path: text, wantType: "text/plain", wantContent: []byte("hello"), wantValid: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := OpenReceiptFile(tt.path)
			require.NoError(t, err)
			defer func() { _ = f.Close() }()

			assert.Equal(t, filepath.Base(tt.path), f.Name)
			assert.Equal(t, tt.wantType, f.MIMEType)
			assert.Equal(t, int64(len(tt.wantContent)), f.Size)
			assert.Equal(t, tt.wantValid, ValidateReceipt(f) == "")

			got, err := io.ReadAll(f.Content)
			require.NoError(t, err)
			assert.Equal(t, tt.wantContent, got, "sniffing must not consume the content")
		})
	}

	_, err := OpenReceiptFile(filepath.Join(dir, "missing.png"))
	assert.Error(t, err)

	_, err = OpenReceiptFile(dir)
	assert.ErrorIs(t, err, common.ErrInvalidReceipt)
}
