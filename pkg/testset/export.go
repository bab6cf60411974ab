package testset

import (
	"encoding/json"
	"io"
)

// WriteJSONL writes the testset's samples to w as line-delimited JSON, one
// sample per line. Failures are not exported; they are run metadata.
func (t *Testset) WriteJSONL(w io.Writer) error {
	enc := json.NewEncoder(w)
	for _, sample := range t.Samples {
		if err := enc.Encode(sample); err != nil {
			return err
		}
	}
	return nil
}
