package transport

import "tokodash/internal/models"

// PayloadKind selects how a request body is encoded.
type PayloadKind int

const (
	KindNone PayloadKind = iota
	KindJSON
	KindMultipart
)

func (k PayloadKind) String() string {
	switch k {
	case KindJSON:
		return "json"
	case KindMultipart:
		return "multipart"
	default:
		return "none"
	}
}

// File is a binary part of a multipart body.
type File struct {
	Field    string
	Filename string
	Content  []byte
}

// MultipartBody carries form fields alongside file parts.
type MultipartBody struct {
	Fields []models.FormField
	Files  []File
}

// Payload is a request body tagged with its encoding.
// Use NoPayload, JSONPayload or MultipartPayload to build one.
type Payload struct {
	kind PayloadKind
	json any
	form MultipartBody
}

// NoPayload is the empty body used by GET and DELETE.
func NoPayload() Payload { return Payload{} }

// JSONPayload encodes v as application/json.
func JSONPayload(v any) Payload {
	return Payload{kind: KindJSON, json: v}
}

// MultipartPayload encodes body as multipart/form-data.
func MultipartPayload(body MultipartBody) Payload {
	return Payload{kind: KindMultipart, form: body}
}

// Kind reports the encoding of p.
func (p Payload) Kind() PayloadKind { return p.kind }

// JSON returns the value of a JSON payload.
func (p Payload) JSON() (any, bool) {
	return p.json, p.kind == KindJSON
}

// Multipart returns the body of a multipart payload.
func (p Payload) Multipart() (MultipartBody, bool) {
	return p.form, p.kind == KindMultipart
}
