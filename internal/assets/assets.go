// Package assets removes stored image objects from the object storage
// backend. Deletion runs after a rejection is committed and is best effort;
// a storage failure never rolls the rejection back.
package assets

import (
	"context"
	"fmt"
	"strings"

	domainerrors "nyumba/pkg/domain-errors"
)

// publicPathMarker separates the storage host from the bucket and object
// path in a public object URL.
const publicPathMarker = "/storage/v1/object/public/"

// ObjectRef identifies one stored object.
type ObjectRef struct {
	Bucket string
	Path   string
}

func (r ObjectRef) String() string {
	return r.Bucket + "/" + r.Path
}

// Remover deletes stored objects.
type Remover interface {
	Remove(ctx context.Context, ref ObjectRef) error
}

// ParseObjectURL extracts the bucket and object path from a public storage
// URL of the form https://host/storage/v1/object/public/<bucket>/<path>.
func ParseObjectURL(rawURL string) (ObjectRef, error) {
	_, after, found := strings.Cut(rawURL, publicPathMarker)
	if !found {
		return ObjectRef{}, domainerrors.New(domainerrors.CodeInvalidInput,
			fmt.Sprintf("url %q is not a public storage object url", rawURL))
	}

	bucket, path, found := strings.Cut(after, "/")
	if !found || bucket == "" || path == "" {
		return ObjectRef{}, domainerrors.New(domainerrors.CodeInvalidInput,
			fmt.Sprintf("url %q has no bucket or object path", rawURL))
	}

	return ObjectRef{Bucket: bucket, Path: path}, nil
}
