package lastfm

// Tag represents a Last.fm tag with popularity count.
type Tag struct {
	Name  string `json:"name"`
	Count int    `json:"count,omitempty"` // Present in track.getTopTags, absent in artist.getTopTags
	URL   string `json:"url"`
}

// Tag sources reported by GetTags.
const (
	SourceTrack  = "track"
	SourceArtist = "artist"
)

type tagAttr struct {
	Artist string `json:"artist"`
	Track  string `json:"track,omitempty"`
}

type tagList struct {
	Tag  []Tag   `json:"tag"`
	Attr tagAttr `json:"@attr"`
}

// topTagsResponse is the JSON response for track.getTopTags and
// artist.getTopTags.
type topTagsResponse struct {
	TopTags tagList `json:"toptags"`
}

// apiError represents a Last.fm API error response.
type apiError struct {
	Error   int    `json:"error"`
	Message string `json:"message"`
}

// Names returns the tag names, at most n of them (all when n <= 0).
func Names(tags []Tag, n int) []string {
	if n <= 0 || n > len(tags) {
		n = len(tags)
	}
	names := make([]string, 0, n)
	for _, t := range tags[:n] {
		names = append(names, t.Name)
	}
	return names
}
