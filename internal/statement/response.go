package statement

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"fjacquet/statement-compare/internal/parsererror"
)

// APIResponse is the JSON body returned by the PDF-to-transaction converter.
type APIResponse struct {
	Normalised []APITransaction `json:"normalised"`
}

// APITransaction is one raw record of the converter output. Amount keeps the
// raw text so that both "-12.50" and -12.5 are accepted.
type APITransaction struct {
	Date        string `json:"date"`
	Description string `json:"description"`
	Amount      Amount `json:"amount"`

	// malformed is set when the record could not be decoded; the processor
	// skips such records.
	malformed *malformedRecord
}

type malformedRecord struct {
	field string
	value string
	err   error
}

// UnmarshalJSON never fails: a record that is not an object, or whose date or
// description is not a string, is kept and marked malformed so that only that
// record is skipped.
func (t *APITransaction) UnmarshalJSON(data []byte) error {
	var raw struct {
		Date        json.RawMessage `json:"date"`
		Description json.RawMessage `json:"description"`
		Amount      Amount          `json:"amount"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		*t = APITransaction{malformed: &malformedRecord{field: "record", value: string(bytes.TrimSpace(data)), err: errors.New("not a JSON object")}}
		return nil
	}

	*t = APITransaction{Amount: raw.Amount}
	var err error
	if t.Date, err = optionalString(raw.Date); err != nil {
		t.malformed = &malformedRecord{field: "date", value: string(raw.Date), err: err}
		return nil
	}
	if t.Description, err = optionalString(raw.Description); err != nil {
		t.malformed = &malformedRecord{field: "description", value: string(raw.Description), err: err}
	}
	return nil
}

func optionalString(data json.RawMessage) (string, error) {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return "", nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", errors.New("not a string")
	}
	return s, nil
}

// Amount is a JSON string or number holding a signed decimal amount.
type Amount string

// UnmarshalJSON accepts a string, a number or null. Any other JSON value is kept
// verbatim and fails amount parsing later, so only that record is skipped.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*a = ""
	case len(data) > 0 && data[0] == '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*a = Amount(s)
	default:
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			*a = Amount(data)
			return nil
		}
		*a = Amount(n.String())
	}
	return nil
}

// DecodeAPIResponse reads a converter response. Both the bare object
// {"normalised": [...]} and the converter's array envelope [{"normalised": [...]}]
// are accepted.
func DecodeAPIResponse(r io.Reader) (*APIResponse, error) {
	return decodeAPIResponse(r, "api response")
}

// LoadAPIResponseFile decodes a converter response saved on disk.
func LoadAPIResponseFile(path string) (*APIResponse, error) {
	f, err := os.Open(path) // #nosec G304 -- user-supplied statement path
	if err != nil {
		return nil, fmt.Errorf("error opening statement file: %w", err)
	}
	defer func() { _ = f.Close() }()
	return decodeAPIResponse(f, path)
}

func decodeAPIResponse(r io.Reader, source string) (*APIResponse, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("error reading %s: %w", source, err)
	}
	data = bytes.TrimSpace(data)

	if len(data) > 0 && data[0] == '[' {
		var envelope []json.RawMessage
		if err := json.Unmarshal(data, &envelope); err != nil {
			return nil, invalidResponse(source, "response is not valid JSON", err)
		}
		if len(envelope) == 0 {
			return nil, invalidResponse(source, "response envelope is empty", parsererror.ErrMissingTransactions)
		}
		data = bytes.TrimSpace(envelope[0])
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return nil, invalidResponse(source, "response is not a JSON object", err)
	}

	raw, ok := fields["normalised"]
	raw = bytes.TrimSpace(raw)
	if !ok || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, invalidResponse(source, "missing normalised transactions", parsererror.ErrMissingTransactions)
	}
	if raw[0] != '[' {
		return nil, invalidResponse(source, "normalised is not a list", parsererror.ErrMissingTransactions)
	}

	var resp APIResponse
	if err := json.Unmarshal(raw, &resp.Normalised); err != nil {
		return nil, invalidResponse(source, "normalised is not valid JSON", err)
	}
	return &resp, nil
}

func invalidResponse(source, reason string, err error) error {
	return &parsererror.ValidationError{FilePath: source, Reason: reason, Err: err}
}
