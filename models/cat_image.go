package models

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// CatImage is one element of the images/search answer. Only URL is ever
// displayed, so it is the only field that can make an image unusable.
type CatImage struct {
	ID     string    `json:"id"`
	URL    string    `json:"url" validate:"required,http_url"`
	Width  Dimension `json:"width"`
	Height Dimension `json:"height"`
}

func (c CatImage) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("cat image %q: %w", c.ID, err)
	}
	return nil
}

// Dimension is a pixel size kept as text. The API has served it both as a
// JSON number and as a numeric string; anything else decodes to unknown ("")
// rather than failing the image.
type Dimension string

func (d *Dimension) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	if strings.HasPrefix(raw, `"`) {
		unquoted, err := strconv.Unquote(raw)
		if err != nil {
			*d = ""
			return nil
		}
		raw = strings.TrimSpace(unquoted)
	}
	if _, err := strconv.ParseFloat(raw, 64); err != nil {
		*d = ""
		return nil
	}
	*d = Dimension(raw)
	return nil
}

type CatImageResponse struct {
	URL string `json:"url"`
}
