package models

// SourcePhoto is one uploaded photo. Data holds the encoded upload and is never
// serialized into cart snapshots; photos are re-loaded from the photo store by ID.
type SourcePhoto struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	FileName    string `json:"fileName"`
	MimeType    string `json:"mimeType"`
	Width       int    `json:"width"`
	Height      int    `json:"height"`
	Data        []byte `json:"-"`
}

// Copy is one physical print of a source photo.
type Copy struct {
	CopyID        string       `json:"copyId"`
	SourcePhotoID string       `json:"sourcePhotoId"`
	PhotoName     string       `json:"photoName,omitempty"`
	CopyIndex     int          `json:"copyIndex"`
	Settings      CopySettings `json:"settings"`
}
