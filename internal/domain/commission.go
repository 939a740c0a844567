package domain

import "time"

type Entity struct {
	ID   int64
	Name string
	Type EntityType
}

type EntityType string

const (
	EntityArtist    EntityType = "artist"
	EntityCharacter EntityType = "character"
)

type File struct {
	ID          int64
	Key         string
	Size        int64
	Filename    string
	ContentType string
}

type Alternate struct {
	ID           int64
	Key          string
	Size         int64
	Width        int
	Height       int
	Filename     string
	ContentType  string
	UserProvided bool
}

// Image is one processed image slot: a name, its placeholder and every
// uploaded alternate.
type Image struct {
	ID             int64
	Name           string
	PlaceholderURI string
	Alternates     []Alternate
}

type Commission struct {
	ID               int64
	ArtistID         int64
	CharacterIDs     []int64
	Price            float64
	DateCommissioned time.Time
	Invoice          File

	Title        *string
	Description  *string
	DateReceived *time.Time
	NSFW         bool
	Images       []Image
	Thumbnail    *Image

	Artist     *Entity
	Characters []Entity
	CreatedAt  time.Time
}

func (c *Commission) IsComplete() bool {
	if c.Title == nil || c.Description == nil || c.DateReceived == nil {
		return false
	}
	if len(c.Images) == 0 || c.Thumbnail == nil {
		return false
	}
	for _, img := range c.Images {
		if img.Name == c.Thumbnail.Name {
			return true
		}
	}
	return false
}

// StorageKeys lists every object key the commission references, invoice
// first, without duplicates.
func (c *Commission) StorageKeys() []string {
	seen := make(map[string]bool)
	var keys []string
	add := func(key string) {
		if key == "" || seen[key] {
			return
		}
		seen[key] = true
		keys = append(keys, key)
	}

	add(c.Invoice.Key)
	for _, img := range c.Images {
		for _, alt := range img.Alternates {
			add(alt.Key)
		}
	}
	if c.Thumbnail != nil {
		for _, alt := range c.Thumbnail.Alternates {
			add(alt.Key)
		}
	}
	return keys
}

// CompletionDetails is everything a commission gains when it is completed.
type CompletionDetails struct {
	Title        string
	Description  string
	DateReceived time.Time
	NSFW         bool
	Images       []Image
	Thumbnail    Image
}

type CommissionUpdate struct {
	Title       *string
	Description *string
	NSFW        *bool
}

func (u CommissionUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.NSFW == nil
}

type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
