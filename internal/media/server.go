package media

import (
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gorilla/mux"

	"legado/internal/common"
	"legado/internal/dbmongo"
)

// Server handles upload and streaming of audio/video message payloads.
type Server struct {
	storage *dbmongo.MediaStorage
}

func NewServer(mongoClient *dbmongo.MongoClient) *Server {
	return &Server{
		storage: dbmongo.NewMediaStorage(mongoClient),
	}
}

// Upload accepts a multipart payload and stores it in GridFS. The
// returned id goes onto the draft message as its media pointer.
func (s *Server) Upload(w http.ResponseWriter, r *http.Request) {
	profileID, ok := common.ProfileIDFromContext(r.Context())
	if !ok {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "missing file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	mimeType := header.Header.Get("Content-Type")
	if !strings.HasPrefix(mimeType, "audio/") && !strings.HasPrefix(mimeType, "video/") {
		http.Error(w, "only audio and video payloads are accepted", http.StatusUnsupportedMediaType)
		return
	}

	media, err := s.storage.UploadFile(r.Context(), header.Filename, mimeType, profileID, file)
	if err != nil {
		log.Printf("media upload failed: %v", err)
		http.Error(w, "upload failed", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	fmt.Fprintf(w, `{"id":%q,"filename":%q,"size":%d}`, media.ID, media.Filename, media.Size)
}

// Serve streams a stored payload. GET /media/{fileId}
func (s *Server) Serve(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	fileID := vars["fileId"]

	fileReader, mediaFile, err := s.storage.DownloadFile(r.Context(), fileID)
	if err != nil {
		http.Error(w, "File not found", http.StatusNotFound)
		return
	}

	contentType := s.getContentType(mediaFile.Filename)
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Length", fmt.Sprintf("%d", mediaFile.Size))

	_, err = io.Copy(w, fileReader)
	if err != nil {
		log.Printf("Error streaming file: %v", err)
	}
}

func (s *Server) getContentType(filename string) string {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".mp3":
		return "audio/mpeg"
	case ".m4a":
		return "audio/mp4"
	case ".ogg":
		return "audio/ogg"
	case ".wav":
		return "audio/wav"
	case ".mp4":
		return "video/mp4"
	case ".webm":
		return "video/webm"
	default:
		return "application/octet-stream"
	}
}
