package domain

import (
	"crypto/sha1"
	"encoding/hex"
)

// Resource is a piece of persisted content identified by the SHA-1 hash of
// its bytes.
type Resource struct {
	Hash     string `json:"hash"`
	Filename string `json:"filename"`
	Size     int64  `json:"size"`
}

// NewResource fingerprints content.
func NewResource(filename string, content []byte) Resource {
	sum := sha1.Sum(content)
	return Resource{
		Hash:     hex.EncodeToString(sum[:]),
		Filename: filename,
		Size:     int64(len(content)),
	}
}

// Pointer returns the legacy pointer for this resource.
//
// Deprecated: use Resource.Hash.
func (r Resource) Pointer() ResourcePointer {
	return NewResourcePointer(r.Hash)
}

// ResourcePointer wraps the content hash of a resource. It is kept for
// references persisted before Resource existed.
//
// Deprecated: use Resource and its Hash field instead.
type ResourcePointer struct {
	hash string
}

// NewResourcePointer constructs a pointer. The hash is stored verbatim.
//
// Deprecated: use NewResource.
func NewResourcePointer(hash string) ResourcePointer {
	return ResourcePointer{hash: hash}
}

// Hash returns the hash this pointer was created with, usually a 40 character
// hexadecimal SHA-1.
//
// Deprecated: use Resource.Hash.
func (p ResourcePointer) Hash() string { return p.hash }

// String returns the hash.
//
// Deprecated: use Resource.Hash.
func (p ResourcePointer) String() string { return p.hash }
