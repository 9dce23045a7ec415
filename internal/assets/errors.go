package assets

import "fmt"

// MissingAssetError means a required artifact file does not exist.
type MissingAssetError struct {
	Path string
}

func (e *MissingAssetError) Error() string {
	return fmt.Sprintf("required asset not found: %s", e.Path)
}

// CorruptAssetError means an artifact exists but could not be decoded.
type CorruptAssetError struct {
	Path string
	Err  error
}

func (e *CorruptAssetError) Error() string {
	return fmt.Sprintf("failed to decode asset %s: %v", e.Path, e.Err)
}

func (e *CorruptAssetError) Unwrap() error {
	return e.Err
}
