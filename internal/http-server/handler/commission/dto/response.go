package dto

import (
	"time"

	"commission-tracker/internal/domain"
)

type EntityResponse struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type FileResponse struct {
	ID          int64  `json:"id"`
	Key         string `json:"key"`
	Size        int64  `json:"size"`
	Filename    string `json:"filename"`
	ContentType string `json:"contentType"`
}

type AlternateResponse struct {
	ID           int64  `json:"id"`
	Key          string `json:"key"`
	Size         int64  `json:"size"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Filename     string `json:"filename"`
	ContentType  string `json:"contentType"`
	UserProvided bool   `json:"userProvided"`
}

type ImageResponse struct {
	ID             int64               `json:"id"`
	Name           string              `json:"name"`
	PlaceholderURI string              `json:"placeholderURI"`
	Alternates     []AlternateResponse `json:"alternates"`
}

type CommissionResponse struct {
	ID               int64            `json:"id"`
	ArtistID         int64            `json:"artistId"`
	CharacterIDs     []int64          `json:"characterIds"`
	Price            float64          `json:"price"`
	DateCommissioned time.Time        `json:"dateCommissioned"`
	Invoice          FileResponse     `json:"invoice"`
	Title            *string          `json:"title"`
	Description      *string          `json:"description"`
	DateReceived     *time.Time       `json:"dateReceived"`
	NSFW             bool             `json:"nsfw"`
	Complete         bool             `json:"complete"`
	Images           []ImageResponse  `json:"images"`
	Thumbnail        *ImageResponse   `json:"thumbnail"`
	Artist           *EntityResponse  `json:"artist,omitempty"`
	Characters       []EntityResponse `json:"characters,omitempty"`
	CreatedAt        time.Time        `json:"createdAt"`
}

func NewCommissionResponse(c *domain.Commission) CommissionResponse {
	resp := CommissionResponse{
		ID:               c.ID,
		ArtistID:         c.ArtistID,
		CharacterIDs:     c.CharacterIDs,
		Price:            c.Price,
		DateCommissioned: c.DateCommissioned,
		Invoice: FileResponse{
			ID:          c.Invoice.ID,
			Key:         c.Invoice.Key,
			Size:        c.Invoice.Size,
			Filename:    c.Invoice.Filename,
			ContentType: c.Invoice.ContentType,
		},
		Title:        c.Title,
		Description:  c.Description,
		DateReceived: c.DateReceived,
		NSFW:         c.NSFW,
		Complete:     c.IsComplete(),
		Images:       make([]ImageResponse, 0, len(c.Images)),
		CreatedAt:    c.CreatedAt,
	}
	if resp.CharacterIDs == nil {
		resp.CharacterIDs = []int64{}
	}

	for _, img := range c.Images {
		resp.Images = append(resp.Images, newImageResponse(img))
	}
	if c.Thumbnail != nil {
		thumb := newImageResponse(*c.Thumbnail)
		resp.Thumbnail = &thumb
	}
	if c.Artist != nil {
		resp.Artist = &EntityResponse{ID: c.Artist.ID, Name: c.Artist.Name}
	}
	for _, ch := range c.Characters {
		resp.Characters = append(resp.Characters, EntityResponse{ID: ch.ID, Name: ch.Name})
	}

	return resp
}

func NewCommissionListResponse(commissions []domain.Commission) []CommissionResponse {
	out := make([]CommissionResponse, 0, len(commissions))
	for i := range commissions {
		out = append(out, NewCommissionResponse(&commissions[i]))
	}
	return out
}

func newImageResponse(img domain.Image) ImageResponse {
	resp := ImageResponse{
		ID:             img.ID,
		Name:           img.Name,
		PlaceholderURI: img.PlaceholderURI,
		Alternates:     make([]AlternateResponse, 0, len(img.Alternates)),
	}
	for _, alt := range img.Alternates {
		resp.Alternates = append(resp.Alternates, AlternateResponse{
			ID:           alt.ID,
			Key:          alt.Key,
			Size:         alt.Size,
			Width:        alt.Width,
			Height:       alt.Height,
			Filename:     alt.Filename,
			ContentType:  alt.ContentType,
			UserProvided: alt.UserProvided,
		})
	}
	return resp
}
