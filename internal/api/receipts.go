package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/smart-expense-tracker/internal/common"
	"github.com/Veraticus/smart-expense-tracker/internal/model"
)

// MaxReceiptSize is the largest receipt image the server accepts.
const MaxReceiptSize = 10 << 20

// receiptField is the multipart field the server reads the image from.
const receiptField = "receipt"

// AllowedReceiptTypes lists the accepted receipt MIME types.
var AllowedReceiptTypes = []string{
	"image/jpeg",
	"image/jpg",
	"image/png",
	"image/webp",
	"image/gif",
}

var receiptExtensions = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
	".webp": "image/webp",
	".gif":  "image/gif",
}

// ReceiptFile is an image to upload.
type ReceiptFile struct {
	Content  io.Reader
	closer   io.Closer
	Name     string
	MIMEType string
	Size     int64
}

// Close releases the underlying file, if any.
func (f ReceiptFile) Close() error {
	if f.closer == nil {
		return nil
	}
	return f.closer.Close()
}

// ReceiptUpload is the server's reply to an upload. Expense is set when the
// server created an expense from the receipt right away.
type ReceiptUpload struct {
	Expense *model.Expense `json:"expense,omitempty"`
	Receipt model.Receipt  `json:"receipt"`
}

// Validate implements validator.
func (u *ReceiptUpload) Validate() error {
	if u.Receipt.ID == "" {
		return errors.New("receipt id is missing")
	}
	return nil
}

// ValidateReceipt checks the file against the accepted types and size. It
// returns a user-facing message, or "" when the file is acceptable.
func ValidateReceipt(f ReceiptFile) string {
	mimeType := normalizeMIME(f.MIMEType)
	allowed := false
	for _, t := range AllowedReceiptTypes {
		if mimeType == t {
			allowed = true
			break
		}
	}

	switch {
	case f.Content == nil:
		return "Please select a receipt image to upload."
	case !allowed:
		return "Invalid file type. Please upload a JPEG, PNG, WEBP or GIF image."
	case f.Size <= 0:
		return "The selected file is empty."
	case f.Size > MaxReceiptSize:
		return "File is too large. Maximum size is 10MB."
	}
	return ""
}

func normalizeMIME(s string) string {
	mediaType, _, err := mime.ParseMediaType(s)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(s))
	}
	return mediaType
}

// OpenReceiptFile opens path for upload. The MIME type comes from the file
// extension, falling back to content sniffing. Callers must Close the result.
func OpenReceiptFile(path string) (ReceiptFile, error) {
	f, err := os.Open(path) //nolint:gosec // path is chosen by the user
	if err != nil {
		return ReceiptFile{}, fmt.Errorf("failed to open receipt: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return ReceiptFile{}, fmt.Errorf("failed to stat receipt: %w", err)
	}
	if info.IsDir() {
		_ = f.Close()
		return ReceiptFile{}, fmt.Errorf("%w: %s is a directory", common.ErrInvalidReceipt, path)
	}

	mimeType, ok := receiptExtensions[strings.ToLower(filepath.Ext(path))]
	if !ok {
		head := make([]byte, 512)
		n, readErr := io.ReadFull(f, head)
		if readErr != nil && !errors.Is(readErr, io.ErrUnexpectedEOF) && !errors.Is(readErr, io.EOF) {
			_ = f.Close()
			return ReceiptFile{}, fmt.Errorf("failed to read receipt: %w", readErr)
		}
		mimeType = normalizeMIME(http.DetectContentType(head[:n]))
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			_ = f.Close()
			return ReceiptFile{}, fmt.Errorf("failed to rewind receipt: %w", err)
		}
	}

	return ReceiptFile{
		Name:     filepath.Base(path),
		MIMEType: mimeType,
		Size:     info.Size(),
		Content:  f,
		closer:   f,
	}, nil
}

// UploadReceipt validates the file locally and uploads it as multipart form
// data. Rejected files fail with common.ErrInvalidReceipt and no request.
func (c *Client) UploadReceipt(ctx context.Context, file ReceiptFile) (*Envelope[ReceiptUpload], error) {
	const op = "upload_receipt"

	if msg := ValidateReceipt(file); msg != "" {
		return localFailure[ReceiptUpload](op, common.ErrInvalidReceipt, msg,
			[]model.FieldError{{Field: receiptField, Message: msg}})
	}

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	contentType := mw.FormDataContentType()

	go func() {
		pw.CloseWithError(writeReceiptPart(mw, file))
	}()
	// Unblocks the writer when the request ends before the body is consumed
	defer func() { _ = pr.Close() }()

	env, err := send[ReceiptUpload](ctx, c, request{
		op:          op,
		method:      http.MethodPost,
		path:        "/receipts",
		rawBody:     pr,
		contentType: contentType,
		auth:        authRedirect,
		failure:     "Failed to upload receipt",
		requireData: true,
	})
	if err == nil {
		c.logger.InfoContext(ctx, "Receipt uploaded",
			"receipt_id", env.Data.Receipt.ID,
			"ocr_status", env.Data.Receipt.OCRStatus)
	}
	return env, err
}

func writeReceiptPart(mw *multipart.Writer, file ReceiptFile) error {
	name := filepath.Base(file.Name)
	if file.Name == "" {
		name = receiptField
	}

	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", mime.FormatMediaType("form-data", map[string]string{
		"name":     receiptField,
		"filename": name,
	}))
	header.Set("Content-Type", normalizeMIME(file.MIMEType))

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("failed to create multipart part: %w", err)
	}
	n, err := io.Copy(part, io.LimitReader(file.Content, MaxReceiptSize+1))
	if err != nil {
		return fmt.Errorf("failed to write receipt: %w", err)
	}
	if n > MaxReceiptSize {
		return fmt.Errorf("%w: receipt grew beyond %d bytes", common.ErrInvalidReceipt, MaxReceiptSize)
	}
	return mw.Close()
}
