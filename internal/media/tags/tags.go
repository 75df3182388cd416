package tags

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/dhowden/tag"
)

// ErrNoTags reports that the file carries no readable metadata block.
var ErrNoTags = errors.New("no tags")

// Info is the embedded metadata shown next to an audio input.
type Info struct {
	Title  string
	Artist string
	Album  string
	Format string
}

// Label renders "Artist - Title", falling back to whichever part exists.
func (i Info) Label() string {
	title := strings.TrimSpace(i.Title)
	artist := strings.TrimSpace(i.Artist)
	switch {
	case title != "" && artist != "":
		return artist + " - " + title
	case title != "":
		return title
	default:
		return artist
	}
}

// Read extracts ID3, MP4, FLAC, or Vorbis comment tags from path.
func Read(path string) (Info, error) {
	file, err := os.Open(path)
	if err != nil {
		return Info{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	meta, err := tag.ReadFrom(file)
	if err != nil {
		if errors.Is(err, tag.ErrNoTagsFound) {
			return Info{}, ErrNoTags
		}
		return Info{}, fmt.Errorf("read tags %s: %w", path, err)
	}
	return Info{
		Title:  meta.Title(),
		Artist: meta.Artist(),
		Album:  meta.Album(),
		Format: string(meta.Format()),
	}, nil
}
