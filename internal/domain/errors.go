package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrSessionNotFound is returned when a study session has not been created.
	ErrSessionNotFound = errors.New("study session not found")
	// ErrEmptyDocument is returned when ingestion produced no text.
	ErrEmptyDocument = errors.New("document contains no text")
	// ErrUnsupportedFormat is matched by every UnsupportedFormatError.
	ErrUnsupportedFormat = errors.New("unsupported file format")
	// ErrIngestion is matched by every IngestionError.
	ErrIngestion = errors.New("failed to process the file")
	// ErrGeneration indicates the content generator failed or returned unusable content.
	ErrGeneration = errors.New("content generation failed")
	// ErrGenerationInProgress is returned when a session already has a generation in flight.
	ErrGenerationInProgress = errors.New("a generation is already in progress")
	// ErrUnknownKind indicates a generation kind outside the supported set.
	ErrUnknownKind = errors.New("unknown generation kind")
	// ErrUnknownView indicates a navigation target outside the supported set.
	ErrUnknownView = errors.New("unknown view")
	// ErrInvalidScore indicates a quiz score that does not fit the active quiz.
	ErrInvalidScore = errors.New("invalid quiz score")
)

// GenerationErrorMessage is what a session reports after any failed generation.
const GenerationErrorMessage = "An error occurred while generating content. Please try again."

// UnsupportedFormatError rejects an upload by its extension.
type UnsupportedFormatError struct {
	Extension string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("invalid file type %q: please select a .pdf, .docx, .pptx, or .txt file", e.Extension)
}

func (e *UnsupportedFormatError) Is(target error) bool {
	return target == ErrUnsupportedFormat
}

// IngestionError wraps a failure of the text extractor.
type IngestionError struct {
	FileName string
	Err      error
}

func (e *IngestionError) Error() string {
	return fmt.Sprintf("process %s: %v", e.FileName, e.Err)
}

func (e *IngestionError) Unwrap() error {
	return e.Err
}

func (e *IngestionError) Is(target error) bool {
	return target == ErrIngestion
}
