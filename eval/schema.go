package eval

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrSchema marks input that does not match the expected record shape.
var ErrSchema = errors.New("schema validation failed")

const resultFormatSchema = `{
  "type": "object",
  "required": ["chunks", "questions"],
  "properties": {
    "chunks": {
      "type": "object",
      "additionalProperties": {"type": "string"}
    },
    "questions": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["question", "chunk_ids"],
        "properties": {
          "question": {"type": "string"},
          "chunk_ids": {
            "type": "array",
            "items": {"type": "string"},
            "uniqueItems": true
          }
        }
      }
    }
  }
}`

const referenceRecordsSchema = `{
  "type": "array",
  "items": {
    "type": "object",
    "required": ["id", "text", "question", "long_answers", "short_answers"],
    "properties": {
      "id": {"type": "string"},
      "text": {"type": "string"},
      "question": {"type": "string"},
      "long_answers": {"type": "array", "items": {"type": "string"}},
      "short_answers": {"type": "array", "items": {"type": "string"}}
    }
  }
}`

const responsesSchema = `{
  "type": "array",
  "items": {"type": "array", "items": {"type": "string"}}
}`

var (
	resultFormatValidator     = jsonschema.MustCompileString("result_format.schema.json", resultFormatSchema)
	referenceRecordsValidator = jsonschema.MustCompileString("reference_records.schema.json", referenceRecordsSchema)
	responsesValidator        = jsonschema.MustCompileString("responses.schema.json", responsesSchema)
)

// DecodeResultFormat validates data against the dataset schema and decodes it.
func DecodeResultFormat(data []byte) (*ResultFormat, error) {
	var rf ResultFormat
	if err := decodeValidated(resultFormatValidator, data, &rf); err != nil {
		return nil, err
	}
	return &rf, nil
}

// DecodeReferenceRecords validates and decodes a JSON array of reference records.
func DecodeReferenceRecords(data []byte) ([]ReferenceRecord, error) {
	var records []ReferenceRecord
	if err := decodeValidated(referenceRecordsValidator, data, &records); err != nil {
		return nil, err
	}
	return records, nil
}

// DecodeResponses validates and decodes fuzzy submissions: one ordered list
// of chunk texts per question.
func DecodeResponses(data []byte) ([][]string, error) {
	var responses [][]string
	if err := decodeValidated(responsesValidator, data, &responses); err != nil {
		return nil, err
	}
	return responses, nil
}

func decodeValidated(schema *jsonschema.Schema, data []byte, out any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}

// NewQuestion builds a Question, rejecting duplicate chunk ids.
func NewQuestion(text string, chunkIDs []string) (Question, error) {
	q := Question{Question: text, ChunkIDs: chunkIDs}
	if err := q.Validate(); err != nil {
		return Question{}, err
	}
	return q, nil
}

// Validate checks that ChunkIDs is a set.
func (q Question) Validate() error {
	seen := make(map[string]bool, len(q.ChunkIDs))
	for _, id := range q.ChunkIDs {
		if seen[id] {
			return fmt.Errorf("%w: question %q: duplicate chunk id %q", ErrSchema, q.Question, id)
		}
		seen[id] = true
	}
	return nil
}

// Validate checks a programmatically built dataset with the same rules the
// JSON schema enforces.
func (rf *ResultFormat) Validate() error {
	if rf == nil {
		return fmt.Errorf("%w: nil result format", ErrSchema)
	}
	if rf.Chunks == nil {
		return fmt.Errorf("%w: missing chunks", ErrSchema)
	}
	if rf.Questions == nil {
		return fmt.Errorf("%w: missing questions", ErrSchema)
	}
	for i, q := range rf.Questions {
		if q.ChunkIDs == nil {
			return fmt.Errorf("%w: questions[%d]: missing chunk_ids", ErrSchema, i)
		}
		if err := q.Validate(); err != nil {
			return err
		}
	}
	return nil
}
