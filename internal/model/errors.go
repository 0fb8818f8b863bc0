package model

import "errors"

var (
	ErrCommon500          error = errors.New("something went wrong. Try again later")          // 500
	ErrInvalidInput       error = errors.New("provided file is not a supported image")         // 400
	ErrDegenerateGeometry error = errors.New("image has zero width or height")                 // 422
	ErrDecodeFailure      error = errors.New("failed to decode image")                         // 422
	ErrExportFailure      error = errors.New("failed to export composite image")               // 500
	ErrExportBusy         error = errors.New("export is already in progress for this document") // 409
	ErrIncorrectPreset    error = errors.New("unknown position preset")                        // 400
	ErrIncorrectParams    error = errors.New("incorrect placement parameters")                 // 400
	ErrIncorrectID        error = errors.New("incorrect UUID")                                 // 400
	ErrIncorrectQuery     error = errors.New("incorrect query parameters")                     // 400
	ErrDocumentNotFound   error = errors.New("specified document doesn't exist")               // 404
	ErrDocumentNotReady   error = errors.New("both base image and logo are required")          // 409
	ErrExportNotFound     error = errors.New("specified export doesn't exist")                 // 404
	ErrResultNotReady     error = errors.New("requested thumbnail is not processed yet")       // 404
)

// ErrorKind - user-facing category of a failed attempt
type ErrorKind string

const (
	InvalidInputKind       ErrorKind = "invalid_input"
	DegenerateGeometryKind ErrorKind = "degenerate_geometry"
	DecodeFailureKind      ErrorKind = "decode_failure"
	ExportFailureKind      ErrorKind = "export_failure"
	UnknownKind            ErrorKind = "unknown"
)

// KindOf maps an error chain onto its ErrorKind
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrIncorrectPreset),
		errors.Is(err, ErrIncorrectParams),
		errors.Is(err, ErrDocumentNotReady):
		return InvalidInputKind
	case errors.Is(err, ErrDegenerateGeometry):
		return DegenerateGeometryKind
	case errors.Is(err, ErrDecodeFailure):
		return DecodeFailureKind
	case errors.Is(err, ErrExportFailure),
		errors.Is(err, ErrExportBusy):
		return ExportFailureKind
	default:
		return UnknownKind
	}
}
