package handlers

import (
	"bytes"
	"errors"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"strings"
)

const maxFrameBytes = 10 * 1024 * 1024

// HandleFrames receives a camera snapshot from a remote client
func (h *Handler) HandleFrames(w http.ResponseWriter, r *http.Request) {
	if h.frames == nil {
		h.writeError(w, "Frames are not accepted over HTTP for this camera source", http.StatusNotFound)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxFrameBytes)

	var body io.Reader
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "multipart/form-data") {
		file, _, err := r.FormFile("frame")
		if errors.Is(err, http.ErrMissingFile) {
			file, _, err = r.FormFile("file")
		}
		if err != nil {
			h.writeError(w, "Failed to read frame: "+err.Error(), frameErrorStatus(err))
			return
		}
		defer file.Close()
		body = file
	} else {
		body = r.Body
	}

	data, err := io.ReadAll(body)
	if err != nil {
		h.writeError(w, "Failed to read frame contents: "+err.Error(), frameErrorStatus(err))
		return
	}

	frame, format, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		h.writeError(w, "Frame is not a supported image: "+err.Error(), http.StatusUnsupportedMediaType)
		return
	}

	h.frames.Push(frame)

	bounds := frame.Bounds()
	h.writeJSONStatus(w, http.StatusAccepted, map[string]any{
		"format": format,
		"width":  bounds.Dx(),
		"height": bounds.Dy(),
		"busy":   h.scanner.Busy(),
	})
}

func frameErrorStatus(err error) int {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return http.StatusRequestEntityTooLarge
	}
	return http.StatusBadRequest
}
