package manifest

import (
	"context"

	"github.com/urlordjames/green-lib/errors"
	"github.com/urlordjames/green-lib/fetch"
)

// Fetch retrieves and parses the manifest at rawURL.
func Fetch(ctx context.Context, src fetch.Source, rawURL string) (*Directory, error) {
	data, err := src.Fetch(ctx, rawURL)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.GetCode(err), "fetch manifest",
			map[string]interface{}{"url": rawURL})
	}

	d, err := Parse(data)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeSchemaFailed, "parse manifest",
			map[string]interface{}{"url": rawURL})
	}
	return d, nil
}

// FromURL is Fetch for callers that only care whether a usable manifest was
// obtained. Any network or parse failure is reported as absence.
func FromURL(ctx context.Context, src fetch.Source, rawURL string) (*Directory, bool) {
	d, err := Fetch(ctx, src, rawURL)
	if err != nil {
		return nil, false
	}
	return d, true
}
