// Package sheet stores survey answers as rows of a spreadsheet-style CSV file.
package sheet

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/petasbytes/support-bot/internal/fsops"
	"github.com/petasbytes/support-bot/tools"
)

// Result is returned to the assistant after a row is appended.
type Result struct {
	Status string `json:"status"`
	RowID  string `json:"row_id"`
	Sheet  string `json:"sheet"`
}

// Writer appends one row per survey. Safe for concurrent use.
type Writer struct {
	root *fsops.Root
	name string
	now  func() time.Time

	mu sync.Mutex
}

// New returns a Writer for the sheet file name (relative to root).
func New(root *fsops.Root, name string) *Writer {
	return &Writer{root: root, name: name, now: time.Now}
}

// Header returns the column names written as the first row of a new sheet.
func Header() []string {
	return append([]string{"row_id", "submitted_at", "thread_id"}, tools.AnswerFields...)
}

func (w *Writer) SaveAnswers(ctx context.Context, threadID string, answers tools.Answers) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	w.mu.Lock()
	defer w.mu.Unlock()

	exists, err := w.root.Exists(w.name)
	if err != nil {
		return nil, fmt.Errorf("sheet %s: %w", w.name, err)
	}

	var buf bytes.Buffer
	cw := csv.NewWriter(&buf)
	if !exists {
		if err := cw.Write(Header()); err != nil {
			return nil, err
		}
	}
	rowID := uuid.NewString()
	row := append([]string{rowID, w.now().UTC().Format(time.RFC3339), threadID}, answers.Values()...)
	if err := cw.Write(row); err != nil {
		return nil, err
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return nil, err
	}

	if err := w.root.AppendFile(w.name, buf.Bytes()); err != nil {
		return nil, fmt.Errorf("sheet %s: %w", w.name, err)
	}
	return Result{Status: "saved", RowID: rowID, Sheet: w.name}, nil
}
