package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type createRoomRequest struct {
	VideoURL string `json:"video_url" validate:"required,max=16"`
	Ignored  string `json:"-"`
}

func TestValidate(t *testing.T) {
	v := NewValidator()

	tests := []struct {
		name     string
		input    createRoomRequest
		wantOk   bool
		wantCode string
	}{
		{name: "valid", input: createRoomRequest{VideoURL: "https://a.b"}, wantOk: true},
		{name: "missing", input: createRoomRequest{}, wantCode: "REQUIRED"},
		{name: "too long", input: createRoomRequest{VideoURL: "https://example.com/very/long"}, wantCode: "MAX"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			errs, ok := v.Validate(tt.input)
			assert.Equal(t, tt.wantOk, ok)
			if tt.wantOk {
				assert.Empty(t, errs)
				return
			}

			require.Len(t, errs, 1)
			assert.Equal(t, "video_url", errs[0].Field)
			assert.Equal(t, tt.wantCode, errs[0].Code)
			assert.NotEmpty(t, errs[0].Message)
		})
	}
}
