package models

// ImageSource tells which variant of Image is set.
type ImageSource int

const (
	ImageNone ImageSource = iota
	ImageURL
	ImageUpload
)

// Upload is a binary image picked by the user that has not been sent yet.
type Upload struct {
	Filename string
	Content  []byte
}

// Image is either a URL, a pending upload or nothing.
type Image struct {
	Source ImageSource
	URL    string
	Upload *Upload
}

// NoImage returns the empty image.
func NoImage() Image { return Image{} }

// ImageFromURL returns an image that points at an existing URL.
// An empty url yields NoImage.
func ImageFromURL(url string) Image {
	if url == "" {
		return Image{}
	}
	return Image{Source: ImageURL, URL: url}
}

// ImageFromUpload returns an image backed by file content.
func ImageFromUpload(filename string, content []byte) Image {
	return Image{Source: ImageUpload, Upload: &Upload{Filename: filename, Content: content}}
}
