package backendclient

import (
	"bytes"
	"context"
	"io"
	"mime/multipart"
	"net/http"
)

// UploadAck is the backend's acknowledgment for an ingested document.
// Only DocID and Message are guaranteed; the rest mirrors what the
// document processor reports about chunking.
type UploadAck struct {
	DocID    string `json:"doc_id"`
	Message  string `json:"message"`
	Filename string `json:"filename,omitempty"`
	Chunks   int    `json:"chunks,omitempty"`
}

// UploadDocument posts a document as multipart form data (field "file")
// for backend-side parsing and indexing. The file content is read fully
// into the form body; documents here are book-sized at most.
func (c *Client) UploadDocument(ctx context.Context, filename string, content io.Reader) (UploadAck, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return UploadAck{}, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return UploadAck{}, err
	}
	if err := writer.Close(); err != nil {
		return UploadAck{}, err
	}

	// Uploads share the chat client's long timeout: parsing and graph
	// indexing of a large document is slow on the backend.
	req, err := c.chatBase.NewRequest(ctx, http.MethodPost, "/upload", nil, &buf)
	if err != nil {
		return UploadAck{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := c.chatBase.Do(req)
	if err != nil {
		return UploadAck{}, err
	}

	var out UploadAck
	if err := decodeResponse(resp, &out); err != nil {
		return UploadAck{}, err
	}
	return out, nil
}
