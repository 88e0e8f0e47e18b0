package rss

import (
	"fmt"
	"strconv"

	"github.com/lysyi3m/news-rss/app/content"
)

const (
	ChannelParamPrefix = "rss.channel."
	imageParamPrefix   = ChannelParamPrefix + "image."

	DefaultMaxItems = 50
)

type ImageConfig struct {
	URL         string
	Width       string
	Height      string
	Description string
}

// ChannelConfig holds the per-book channel parameters. Absent values are empty.
type ChannelConfig struct {
	ManagingEditor string
	WebMaster      string
	TTL            string
	Rating         string
	MaxItems       int
	Image          *ImageConfig
}

func ParseChannelConfig(book *content.Book) (ChannelConfig, error) {
	param := func(name string) string {
		value, _ := book.Param(name)
		return value
	}

	channel := ChannelConfig{
		ManagingEditor: param(ChannelParamPrefix + "managingEditor"),
		WebMaster:      param(ChannelParamPrefix + "webMaster"),
		TTL:            param(ChannelParamPrefix + "ttl"),
		Rating:         param(ChannelParamPrefix + "rating"),
		MaxItems:       DefaultMaxItems,
	}

	if value := param(ChannelParamPrefix + "maxItems"); value != "" {
		maxItems, err := strconv.Atoi(value)
		if err != nil {
			return ChannelConfig{}, fmt.Errorf("%w: book %s: maxItems is not an integer: %q", ErrConfig, book.Name, value)
		}
		if maxItems < 1 {
			return ChannelConfig{}, fmt.Errorf("%w: book %s: maxItems may not be less than one: %d", ErrConfig, book.Name, maxItems)
		}
		channel.MaxItems = maxItems
	}

	image := ImageConfig{
		URL:         param(imageParamPrefix + "url"),
		Width:       param(imageParamPrefix + "width"),
		Height:      param(imageParamPrefix + "height"),
		Description: param(imageParamPrefix + "description"),
	}
	if image.URL != "" {
		channel.Image = &image
	} else {
		orphans := map[string]string{
			"width":       image.Width,
			"height":      image.Height,
			"description": image.Description,
		}
		for _, field := range []string{"width", "height", "description"} {
			if orphans[field] != "" {
				return ChannelConfig{}, fmt.Errorf("%w: book %s: image %s without url", ErrConfig, book.Name, field)
			}
		}
	}

	return channel, nil
}
