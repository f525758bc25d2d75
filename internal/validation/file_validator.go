package validation

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	apperrors "engcli/internal/errors"
)

// FileValidator checks the input and output locations of a run before it
// starts
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateBundle checks that a log bundle is a directory or a .zip file
func (v *FileValidator) ValidateBundle(path string) error {
	info, err := stat(path)
	if err != nil {
		v.logger.Error("Log bundle not accessible",
			slog.String("path", path),
			slog.String("error", err.Error()))
		return err
	}
	if info.IsDir() {
		return nil
	}
	if ext := strings.ToLower(filepath.Ext(path)); ext != ".zip" {
		v.logger.Error("Log bundle is neither a directory nor a zip archive",
			slog.String("path", path),
			slog.String("extension", ext))
		return apperrors.NewValidationError(
			fmt.Sprintf("log bundle %s is neither a directory nor a zip archive", path), nil)
	}
	return nil
}

// ValidateFile checks if a specific file exists and is readable
func (v *FileValidator) ValidateFile(path string) error {
	info, err := stat(path)
	if err != nil {
		v.logger.Error("File not accessible",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return err
	}
	if info.IsDir() {
		v.logger.Error("Path is a directory, not a file",
			slog.String("path", path))
		return apperrors.NewValidationError(fmt.Sprintf("%s is a directory, not a file", path), nil)
	}

	file, err := os.Open(path)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("file %s is not readable", path), err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateExcelFile checks that path is a readable .xlsx workbook and not
// an Excel lock file
func (v *FileValidator) ValidateExcelFile(path string) error {
	if err := v.ValidateFile(path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if ext != ".xlsx" {
		return apperrors.NewValidationError(
			fmt.Sprintf("file %s is not an Excel workbook (extension: %s)", path, ext), nil)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		return apperrors.NewValidationError(fmt.Sprintf("file %s is a temporary Excel file", path), nil)
	}
	return nil
}

// ValidateOutputDirectory ensures dir exists and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("failed to create output directory %s", dir), err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return apperrors.NewStorageError(fmt.Sprintf("output directory %s is not writable", dir), err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}

func stat(path string) (fs.FileInfo, error) {
	info, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, apperrors.NewNotFoundError(path)
	}
	if err != nil {
		return nil, apperrors.NewStorageError(fmt.Sprintf("failed to stat %s", path), err)
	}
	return info, nil
}
