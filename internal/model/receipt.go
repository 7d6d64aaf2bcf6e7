package model

import "encoding/json"

// OCRStatus tracks the server-side OCR pipeline for a receipt.
type OCRStatus string

// Known OCR states. Other values are passed through unchanged.
const (
	OCRPending    OCRStatus = "pending"
	OCRProcessing OCRStatus = "processing"
	OCRCompleted  OCRStatus = "completed"
	OCRFailed     OCRStatus = "failed"
)

// Done reports whether the OCR pipeline has finished, successfully or not.
func (s OCRStatus) Done() bool {
	return s == OCRCompleted || s == OCRFailed
}

// Receipt is an uploaded receipt image.
type Receipt struct {
	UploadedAt Time            `json:"uploadedAt"`
	OCRResult  json.RawMessage `json:"ocrResult,omitempty"`
	ID         string          `json:"id"`
	FileURL    string          `json:"fileUrl"`
	FileName   string          `json:"fileName"`
	MIMEType   string          `json:"mimeType"`
	OCRStatus  OCRStatus       `json:"ocrStatus"`
	FileSize   int64           `json:"fileSize"`
}

// UnmarshalJSON accepts both "id" and "_id" for the identifier.
func (r *Receipt) UnmarshalJSON(data []byte) error {
	type alias Receipt
	aux := struct {
		*alias
		MongoID string `json:"_id"`
	}{alias: (*alias)(r)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	if r.ID == "" {
		r.ID = aux.MongoID
	}
	return nil
}
