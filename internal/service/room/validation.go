package room

import (
	"errors"
	"math"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	"github.com/marufkhan776/chillman/internal/protocol"
)

var ConnectionIdRule = []validation.Rule{
	validation.Required,
	is.UUIDv4,
}

var RoomCodeRule = []validation.Rule{
	validation.Required,
	validation.Match(regexp.MustCompile(`^[A-HJ-NP-Z2-9]{4,32}(-[0-9]+)?$`)),
}

var DisplayNameRule = []validation.Rule{
	validation.Length(0, 32),
}

var VideoUrlRule = []validation.Rule{
	validation.Required,
	validation.Length(1, 2048),
}

var ChatMessageRule = []validation.Rule{
	validation.Required,
	validation.RuneLength(1, 500),
}

var ActionRule = []validation.Rule{
	validation.Required,
	validation.In(
		protocol.ActionPlay,
		protocol.ActionPause,
		protocol.ActionSeek,
		protocol.ActionChangeVideo,
	),
}

var PositionRule = []validation.Rule{
	validation.By(finite),
	validation.Min(0.0),
}

func finite(value any) error {
	v, isNil := validation.Indirect(value)
	if isNil {
		return nil
	}

	f, ok := v.(float64)
	if !ok {
		return errors.New("must be a number")
	}
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return errors.New("must be a finite number")
	}

	return nil
}

func validateControl(params *ControlParams) error {
	positionRules := make([]validation.Rule, 0, len(PositionRule)+1)
	positionRules = append(positionRules, PositionRule...)
	positionRules = append(positionRules, validation.When(params.Action == protocol.ActionSeek, validation.NotNil))

	return validation.Errors{
		"action":    validation.Validate(params.Action, ActionRule...),
		"position":  validation.Validate(params.Position, positionRules...),
		"video_url": validation.Validate(params.VideoURL, validation.When(params.Action == protocol.ActionChangeVideo, VideoUrlRule...)),
	}.Filter()
}
