package repository

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	ErrNotFound        = errors.New("document not found")
	ErrVersionConflict = errors.New("document was modified concurrently")
)

// UniqueViolationError reports a write rejected by a unique index.
type UniqueViolationError struct {
	Fields []string
	Err    error
}

func (e *UniqueViolationError) Error() string {
	return fmt.Sprintf("unique constraint violated on %s", strings.Join(e.Fields, ", "))
}

func (e *UniqueViolationError) Unwrap() error { return e.Err }

var dupKeyIndex = regexp.MustCompile(`index: (\S+) dup key`)

// classifyWriteError turns duplicate key failures into UniqueViolationError
// and leaves every other error untouched.
func classifyWriteError(err error) error {
	if err == nil || !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return &UniqueViolationError{Fields: duplicateKeyFields(err), Err: err}
}

func duplicateKeyFields(err error) []string {
	var fields []string

	var we mongo.WriteException
	if errors.As(err, &we) {
		for _, e := range we.WriteErrors {
			doc, ok := e.Raw.Lookup("keyPattern").DocumentOK()
			if !ok {
				continue
			}
			elems, elemErr := doc.Elements()
			if elemErr != nil {
				continue
			}
			for _, el := range elems {
				fields = append(fields, el.Key())
			}
		}
	}
	if len(fields) > 0 {
		return fields
	}

	// Older servers only report the index name in the message.
	if m := dupKeyIndex.FindStringSubmatch(err.Error()); m != nil {
		name := m[1]
		if i := strings.LastIndex(name, "_"); i > 0 {
			name = name[:i]
		}
		return []string{name}
	}
	return []string{"unknown"}
}
