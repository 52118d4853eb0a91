package importer

import "fmt"

// DiscoveryError indicates the workbook could not be read or contains no
// sheets. It is fatal to the import: no partial state is produced.
type DiscoveryError struct {
	FileName string
	Reason   string
	Err      error
}

func (e *DiscoveryError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("discover %s: %s: %v", e.FileName, e.Reason, e.Err)
	}
	return fmt.Sprintf("discover %s: %s", e.FileName, e.Reason)
}

func (e *DiscoveryError) Unwrap() error { return e.Err }

// FileTooLargeError is returned before any parsing when the upload exceeds
// the configured size ceiling.
type FileTooLargeError struct {
	FileName string
	Size     int64
	Limit    int64
}

func (e *FileTooLargeError) Error() string {
	return fmt.Sprintf("file %s is %d bytes, limit is %d", e.FileName, e.Size, e.Limit)
}

// UnsupportedFormatError is returned before any parsing when the file
// extension is not a supported workbook format.
type UnsupportedFormatError struct {
	FileName string
	Ext      string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported file format %q for %s: re-save the workbook as .xlsx", e.Ext, e.FileName)
}

// RowRejectedError fails a batch run when ProcessOptions.AbortOnError is set
// and a row misses a required field. It carries the row's blocking issues.
type RowRejectedError struct {
	Row    int
	Issues []RowIssue
}

func (e *RowRejectedError) Error() string {
	if len(e.Issues) == 0 {
		return fmt.Sprintf("row %d rejected", e.Row)
	}
	return fmt.Sprintf("row %d rejected: %s: %s", e.Row, e.Issues[0].Field, e.Issues[0].Message)
}
