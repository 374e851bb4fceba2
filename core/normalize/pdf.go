package normalize

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"github.com/gaurav-prasanna/readycrawl/core"
	"github.com/ledongthuc/pdf"
)

// PDF extracts the linear text of a PDF document into a single RawText block.
// No structural decomposition is attempted.
func PDF(sourceURL string, data []byte) (block core.Block, err error) {
	// The PDF reader panics on some malformed object graphs.
	defer func() {
		if r := recover(); r != nil {
			block = core.Block{}
			err = &core.ExtractionError{URL: sourceURL, Reason: "malformed PDF", Err: fmt.Errorf("%v", r)}
		}
	}()

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return core.Block{}, &core.ExtractionError{URL: sourceURL, Reason: "not a valid PDF", Err: err}
	}

	plain, err := reader.GetPlainText()
	if err != nil {
		return core.Block{}, &core.ExtractionError{URL: sourceURL, Reason: "reading PDF text", Err: err}
	}

	text, err := io.ReadAll(plain)
	if err != nil {
		return core.Block{}, &core.ExtractionError{URL: sourceURL, Reason: "reading PDF text", Err: err}
	}

	trimmed := strings.TrimSpace(string(text))
	if trimmed == "" {
		return core.Block{}, &core.ExtractionError{URL: sourceURL, Reason: "PDF contains no extractable text"}
	}
	return core.RawText(trimmed), nil
}
