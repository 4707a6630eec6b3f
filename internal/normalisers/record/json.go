package record

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
)

// flattenJSON walks the token stream so object keys keep document order.
// Consecutive top-level values (JSON lines) are flattened in sequence.
func flattenJSON(content []byte) ([]string, error) {
	dec := json.NewDecoder(bytes.NewReader(content))
	dec.UseNumber()

	var out []string
	for {
		err := walkJSON(dec, "", &out)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func walkJSON(dec *json.Decoder, path string, out *[]string) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}

	switch v := tok.(type) {
	case json.Delim:
		switch v {
		case '{':
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return err
				}
				key, ok := keyTok.(string)
				if !ok {
					return fmt.Errorf("unexpected object key %v", keyTok)
				}
				if err := walkJSON(dec, joinKey(path, key), out); err != nil {
					return unexpectedEOF(err)
				}
			}
		case '[':
			for i := 0; dec.More(); i++ {
				if err := walkJSON(dec, fmt.Sprintf("%s[%d]", path, i), out); err != nil {
					return unexpectedEOF(err)
				}
			}
		default:
			return fmt.Errorf("unexpected delimiter %q", v)
		}
		// Closing delimiter.
		if _, err := dec.Token(); err != nil {
			return unexpectedEOF(err)
		}
	case nil:
		*out = append(*out, line(path, "null"))
	case string:
		*out = append(*out, line(path, v))
	case json.Number:
		*out = append(*out, line(path, v.String()))
	case bool:
		*out = append(*out, line(path, fmt.Sprint(v)))
	}
	return nil
}

// unexpectedEOF distinguishes truncated input from the clean end of stream.
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
