package source

import (
	"github.com/mitchellh/mapstructure"
)

// decodeJSON maps loosely typed JSON (as produced by encoding/json into any)
// onto out using the json struct tags. Numbers and strings are converted
// where the API is inconsistent about them.
func decodeJSON(in, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		TagName:          "json",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}
