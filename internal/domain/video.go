package domain

type VideoKind string

const (
	VideoKindYoutube VideoKind = "youtube"
	VideoKindDrive   VideoKind = "drive"
	VideoKindGeneric VideoKind = "generic"
)

type Video struct {
	SourceURL  string    `json:"source_url"`
	Kind       VideoKind `json:"kind"`
	ResolvedId string    `json:"resolved_id"`
	Title      string    `json:"title,omitempty"`
}
