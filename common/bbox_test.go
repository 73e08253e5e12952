package common

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBoundingBoxValidate(t *testing.T) {
	tests := []struct {
		name    string
		bbox    BoundingBox
		wantErr bool
	}{
		{"valid", BoundingBox{West: -120, South: 35, East: -115, North: 40}, false},
		{"valid whole world", BoundingBox{West: -180, South: -90, East: 180, North: 90}, false},
		{"west after east", BoundingBox{West: -115, South: 35, East: -120, North: 40}, true},
		{"west equals east", BoundingBox{West: -115, South: 35, East: -115, North: 40}, true},
		{"south after north", BoundingBox{West: -120, South: 40, East: -115, North: 35}, true},
		{"south equals north", BoundingBox{West: -120, South: 35, East: -115, North: 35}, true},
		{"west out of range", BoundingBox{West: -190, South: 35, East: -115, North: 40}, true},
		{"east out of range", BoundingBox{West: -120, South: 35, East: 190, North: 40}, true},
		{"south out of range", BoundingBox{West: -120, South: -95, East: -115, North: 40}, true},
		{"north out of range", BoundingBox{West: -120, South: 35, East: -115, North: 95}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.bbox.Validate()
			if !tt.wantErr {
				assert.NoError(t, err)
				return
			}
			assert.Error(t, err)
			var invalid ErrInvalidBoundingBox
			assert.True(t, errors.As(err, &invalid))
		})
	}
}

func TestParseBoundingBox(t *testing.T) {
	bbox, err := ParseBoundingBox("-120,35,-115,40")
	assert.NoError(t, err)
	assert.Equal(t, BoundingBox{West: -120, South: 35, East: -115, North: 40}, bbox)
	assert.Equal(t, "-120,35,-115,40", bbox.String())

	_, err = ParseBoundingBox("-120,35,-115")
	assert.Error(t, err)
	_, err = ParseBoundingBox("-120,35,-115,wrong")
	assert.Error(t, err)
	_, err = ParseBoundingBox("-115,35,-120,40")
	assert.Error(t, err)
}
