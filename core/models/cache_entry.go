package models

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"os"
	"time"
)

// CacheEntry pairs extracted imports with the file state they came from.
type CacheEntry struct {
	FilePath   string      `json:"file_path"`
	ModTime    time.Time   `json:"mod_time"`
	Size       int64       `json:"size"`
	FileHash   string      `json:"file_hash"`
	ParsedFile *ParsedFile `json:"parsed_file"`
	CreatedAt  time.Time   `json:"created_at"`
}

func NewCacheEntry(filePath string, parsedFile *ParsedFile) (*CacheEntry, error) {
	stat, err := os.Stat(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat file %s: %w", filePath, err)
	}

	hash, err := HashFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to calculate hash for file %s: %w", filePath, err)
	}

	return &CacheEntry{
		FilePath:   filePath,
		ModTime:    stat.ModTime(),
		Size:       stat.Size(),
		FileHash:   hash,
		ParsedFile: parsedFile,
		CreatedAt:  time.Now(),
	}, nil
}

// IsValid reports whether the file still matches the entry. A changed
// mtime with identical content keeps the entry and refreshes ModTime.
func (ce *CacheEntry) IsValid() (bool, error) {
	stat, err := os.Stat(ce.FilePath)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("failed to stat file %s: %w", ce.FilePath, err)
	}

	if stat.ModTime().Equal(ce.ModTime) && stat.Size() == ce.Size {
		return true, nil
	}

	currentHash, err := HashFile(ce.FilePath)
	if err != nil {
		return false, fmt.Errorf("failed to calculate current hash for file %s: %w", ce.FilePath, err)
	}

	if currentHash == ce.FileHash {
		ce.ModTime = stat.ModTime()
		ce.Size = stat.Size()
		return true, nil
	}

	return false, nil
}

func HashFile(filePath string) (string, error) {
	file, err := os.Open(filePath)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	if _, err := io.Copy(hash, file); err != nil {
		return "", err
	}

	return hex.EncodeToString(hash.Sum(nil)), nil
}
