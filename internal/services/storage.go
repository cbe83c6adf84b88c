package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// Accepted upload extensions mapped to the MIME type used downstream.
var acceptedExtensions = map[string]string{
	".pdf": "application/pdf",
	".txt": "text/plain",
}

type StorageService interface {
	SaveFile(file *multipart.FileHeader) (*SavedFile, error)
	ReadFile(filename string) ([]byte, error)
	GetFilePath(filename string) string
	DeleteFile(filename string) error
	EnsureUploadDir() error
}

// SavedFile describes a stored upload. ContentHash is the sha256 of the
// bytes, used both for duplicate detection and as the extraction cache key.
type SavedFile struct {
	Filename    string
	FilePath    string
	MimeType    string
	ContentHash string
	Size        int64
}

type storageService struct {
	uploadPath  string
	maxFileSize int64
}

func NewStorageService(uploadPath string, maxFileSize int64) StorageService {
	return &storageService{
		uploadPath:  uploadPath,
		maxFileSize: maxFileSize,
	}
}

func (s *storageService) EnsureUploadDir() error {
	if err := os.MkdirAll(s.uploadPath, 0755); err != nil {
		return fmt.Errorf("failed to create upload directory: %w", err)
	}
	return nil
}

func (s *storageService) SaveFile(file *multipart.FileHeader) (*SavedFile, error) {
	ext := strings.ToLower(filepath.Ext(file.Filename))
	mimeType, ok := acceptedExtensions[ext]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension: %s", ext)
	}
	if file.Size > s.maxFileSize {
		return nil, fmt.Errorf("file exceeds maximum size of %d bytes", s.maxFileSize)
	}

	src, err := file.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	uniqueFilename := fmt.Sprintf("resume_%s%s", uuid.New().String(), ext)
	filePath := filepath.Join(s.uploadPath, uniqueFilename)

	dst, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create destination file: %w", err)
	}
	defer dst.Close()

	// Hash while copying so the file is only read once.
	hasher := sha256.New()
	size, err := io.Copy(io.MultiWriter(dst, hasher), src)
	if err != nil {
		os.Remove(filePath)
		return nil, fmt.Errorf("failed to save file: %w", err)
	}

	return &SavedFile{
		Filename:    uniqueFilename,
		FilePath:    filePath,
		MimeType:    mimeType,
		ContentHash: hex.EncodeToString(hasher.Sum(nil)),
		Size:        size,
	}, nil
}

func (s *storageService) ReadFile(filename string) ([]byte, error) {
	raw, err := os.ReadFile(s.GetFilePath(filename))
	if err != nil {
		return nil, fmt.Errorf("failed to read stored file: %w", err)
	}
	return raw, nil
}

func (s *storageService) GetFilePath(filename string) string {
	return filepath.Join(s.uploadPath, filename)
}

func (s *storageService) DeleteFile(filename string) error {
	if err := os.Remove(s.GetFilePath(filename)); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}
