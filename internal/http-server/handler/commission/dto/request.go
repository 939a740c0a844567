package dto

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// FlexBool accepts a JSON boolean or the strings "true" and "false".
type FlexBool bool

func (b *FlexBool) UnmarshalJSON(data []byte) error {
	var v bool
	if err := json.Unmarshal(data, &v); err == nil {
		*b = FlexBool(v)
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("nsfw must be a boolean: %w", err)
	}
	v, err := strconv.ParseBool(s)
	if err != nil {
		return fmt.Errorf("nsfw must be a boolean: %w", err)
	}
	*b = FlexBool(v)
	return nil
}

type UpdateCommissionRequest struct {
	Title       *string   `json:"title" validate:"omitempty,max=256"`
	Description *string   `json:"description" validate:"omitempty,max=10000"`
	NSFW        *FlexBool `json:"nsfw"`
}
