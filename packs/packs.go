// Package packs reads pack registries: documents that name the manifests a
// client can install and mark one of them as featured.
//
// A registry is JSON:
//
//	{
//	  "version": "1.0.0",
//	  "packs": {
//	    "vanilla-plus": {
//	      "display_name": "Vanilla+",
//	      "manifest_url": "https://example.com/vanilla-plus.json",
//	      "manifest_sha": "<sha256 hex of the manifest text>"
//	    }
//	  },
//	  "featured_pack": "vanilla-plus"
//	}
//
// The version field is optional; when present it must be a 1.x semantic
// version.
package packs

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sort"

	"github.com/Masterminds/semver/v3"

	"github.com/urlordjames/green-lib/digest"
	"github.com/urlordjames/green-lib/errors"
	"github.com/urlordjames/green-lib/fetch"
	"github.com/urlordjames/green-lib/manifest"
)

// SupportedVersions is the range of registry versions this package reads.
const SupportedVersions = ">= 1.0.0, < 2.0.0"

var (
	// ErrFeaturedUnspecified is returned when a registry names no featured pack.
	ErrFeaturedUnspecified = stderrors.New("registry does not specify a featured pack")

	// ErrFeaturedInvalid is returned when the featured pack is not in the registry.
	ErrFeaturedInvalid = stderrors.New("featured pack is not in the registry")
)

var supported = func() *semver.Constraints {
	c, err := semver.NewConstraint(SupportedVersions)
	if err != nil {
		panic(err)
	}
	return c
}()

// Registry lists the available packs.
type Registry struct {
	Version      string              `json:"version,omitempty"`
	Packs        map[string]Metadata `json:"packs"`
	FeaturedPack string              `json:"featured_pack,omitempty"`
}

// Metadata describes one pack in a Registry.
type Metadata struct {
	DisplayName string `json:"display_name"`
	ManifestURL string `json:"manifest_url"`
	ManifestSHA string `json:"manifest_sha"`
}

// Parse decodes a registry document and checks its version.
func Parse(data []byte) (*Registry, error) {
	var r Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, errors.Wrap(err, errors.CodeSchemaFailed, "decode pack registry")
	}
	if r.Packs == nil {
		r.Packs = make(map[string]Metadata)
	}

	if r.Version != "" {
		v, err := semver.NewVersion(r.Version)
		if err != nil {
			return nil, errors.WrapWithContext(err, errors.CodeSchemaFailed, "invalid registry version",
				map[string]interface{}{"version": r.Version})
		}
		if !supported.Check(v) {
			return nil, errors.WrapWithContext(nil, errors.CodeInvalidInput, "unsupported registry version",
				map[string]interface{}{"version": r.Version, "supported": SupportedVersions})
		}
	}
	return &r, nil
}

// Fetch retrieves and parses the registry at rawURL.
func Fetch(ctx context.Context, src fetch.Source, rawURL string) (*Registry, error) {
	data, err := src.Fetch(ctx, rawURL)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.GetCode(err), "fetch pack registry",
			map[string]interface{}{"url": rawURL})
	}
	return Parse(data)
}

// FromURL is Fetch with any failure reported as absence.
func FromURL(ctx context.Context, src fetch.Source, rawURL string) (*Registry, bool) {
	r, err := Fetch(ctx, src, rawURL)
	if err != nil {
		return nil, false
	}
	return r, true
}

// IDs returns the pack identifiers in sorted order.
func (r *Registry) IDs() []string {
	ids := make([]string, 0, len(r.Packs))
	for id := range r.Packs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the metadata for id.
func (r *Registry) Get(id string) (Metadata, bool) {
	m, ok := r.Packs[id]
	return m, ok
}

// Featured returns the featured pack's metadata. It fails with
// ErrFeaturedUnspecified when none is named and ErrFeaturedInvalid when the
// named pack is missing.
func (r *Registry) Featured() (Metadata, error) {
	if r.FeaturedPack == "" {
		return Metadata{}, ErrFeaturedUnspecified
	}
	m, ok := r.Packs[r.FeaturedPack]
	if !ok {
		return Metadata{}, ErrFeaturedInvalid
	}
	return m, nil
}

// Fetch retrieves the pack's manifest, checks the digest of its raw text
// against ManifestSHA and parses it.
func (m Metadata) Fetch(ctx context.Context, src fetch.Source) (*manifest.Directory, error) {
	data, err := src.Fetch(ctx, m.ManifestURL)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.GetCode(err), "fetch manifest",
			map[string]interface{}{"url": m.ManifestURL})
	}

	if err := digest.Verify(m.ManifestSHA, data); err != nil {
		var mismatch *digest.MismatchError
		actual := ""
		if stderrors.As(err, &mismatch) {
			actual = mismatch.Actual
		}
		return nil, errors.WrapWithContext(err, errors.CodeIntegrity, "manifest does not match registry digest",
			map[string]interface{}{"url": m.ManifestURL, "expected": m.ManifestSHA, "actual": actual})
	}

	d, err := manifest.Parse(data)
	if err != nil {
		return nil, errors.WrapWithContext(err, errors.CodeSchemaFailed, "parse manifest",
			map[string]interface{}{"url": m.ManifestURL})
	}
	return d, nil
}

// Directory is Fetch with any failure, including a digest mismatch, reported
// as absence.
func (m Metadata) Directory(ctx context.Context, src fetch.Source) (*manifest.Directory, bool) {
	d, err := m.Fetch(ctx, src)
	if err != nil {
		return nil, false
	}
	return d, true
}
