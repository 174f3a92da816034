// Glowclock Core
// Copyright (c) 2026 The Glowclock Project Contributors.
// SPDX-License-Identifier: GPL-3.0-or-later
//
// This file is part of Glowclock Core.
//
// Glowclock Core is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Glowclock Core is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with Glowclock Core.  If not, see <http://www.gnu.org/licenses/>.

//nolint:revive // custom validation tags (displaymode, displaycolor) are unknown to revive
package validation

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateDisplayMode(t *testing.T) {
	t.Parallel()

	type testStruct struct {
		Mode string `validate:"displaymode"`
	}

	tests := []struct {
		name      string
		value     string
		wantError bool
	}{
		{name: "empty is valid", value: "", wantError: false},
		{name: "off", value: "off", wantError: false},
		{name: "clock", value: "clock", wantError: false},
		{name: "weather", value: "weather", wantError: false},
		{name: "unknown mode", value: "disco", wantError: true},
		{name: "wrong case", value: "Clock", wantError: true},
		{name: "whitespace", value: " clock", wantError: true},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := testStruct{Mode: tt.value}
			err := v.Validate(&s)
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "is not a display mode")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateDisplayColor(t *testing.T) {
	t.Parallel()

	type testStruct struct {
		Color string `validate:"displaycolor"`
	}

	tests := []struct {
		name      string
		value     string
		wantError bool
	}{
		{name: "empty is valid", value: "", wantError: false},
		{name: "lowercase hex", value: "#ff8800", wantError: false},
		{name: "uppercase hex", value: "#FFAA00", wantError: false},
		{name: "mixed case hex", value: "#DeAdBe", wantError: false},
		{name: "hash is optional", value: "ff8800", wantError: false},
		{name: "black", value: "#000000", wantError: false},
		{name: "white", value: "#ffffff", wantError: false},
		{name: "short form rejected", value: "#fff", wantError: true},
		{name: "named color rejected", value: "red", wantError: true},
		{name: "non-hex digits", value: "#gghhii", wantError: true},
		{name: "too long", value: "#ff88001", wantError: true},
	}

	v := NewValidator()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := testStruct{Color: tt.value}
			err := v.Validate(&s)
			if tt.wantError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "is not a #rrggbb color")
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAndUnmarshal(t *testing.T) {
	t.Parallel()

	// Mirrors the shape of the state.set and display settings params.
	type testParams struct {
		Mode       *string `json:"mode"       validate:"omitempty,displaymode"`
		Color      *string `json:"color"      validate:"omitempty,displaycolor"`
		Brightness *int    `json:"brightness" validate:"omitempty,gte=0,lte=255"`
	}

	tests := []struct {
		wantError error
		name      string
		errorMsg  string
		input     json.RawMessage
	}{
		{
			name:      "nil params returns ErrMissingParams",
			input:     nil,
			wantError: ErrMissingParams,
		},
		{
			name:      "empty params returns ErrMissingParams",
			input:     json.RawMessage{},
			wantError: ErrMissingParams,
		},
		{
			name:      "invalid JSON returns ErrInvalidParams",
			input:     json.RawMessage(`{invalid}`),
			wantError: ErrInvalidParams,
		},
		{
			name:  "valid params pass validation",
			input: json.RawMessage(`{"mode": "clock", "color": "#00ff00", "brightness": 128}`),
		},
		{
			name:  "omitted optional fields pass validation",
			input: json.RawMessage(`{}`),
		},
		{
			name:     "invalid mode",
			input:    json.RawMessage(`{"mode": "disco"}`),
			errorMsg: "is not a display mode",
		},
		{
			name:     "invalid color",
			input:    json.RawMessage(`{"color": "red"}`),
			errorMsg: "is not a #rrggbb color",
		},
		{
			name:     "brightness above range",
			input:    json.RawMessage(`{"brightness": 300}`),
			errorMsg: "brightness must be less than or equal to 255",
		},
		{
			name:     "brightness below range",
			input:    json.RawMessage(`{"brightness": -1}`),
			errorMsg: "brightness must be greater than or equal to 0",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var params testParams
			err := ValidateAndUnmarshal(tt.input, &params)

			switch {
			case tt.wantError != nil:
				require.ErrorIs(t, err, tt.wantError)
			case tt.errorMsg != "":
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			default:
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateAndUnmarshalPopulatesDest(t *testing.T) {
	t.Parallel()

	type testParams struct {
		Mode  *string `json:"mode"  validate:"omitempty,displaymode"`
		Color *string `json:"color" validate:"omitempty,displaycolor"`
	}

	var params testParams
	err := ValidateAndUnmarshal(json.RawMessage(`{"mode": "weather", "color": "#102030"}`), &params)
	require.NoError(t, err)

	require.NotNil(t, params.Mode)
	assert.Equal(t, "weather", *params.Mode)
	require.NotNil(t, params.Color)
	assert.Equal(t, "#102030", *params.Color)
}

func TestErrorFormatting(t *testing.T) {
	t.Parallel()

	type testStruct struct {
		Mode  string `validate:"required,displaymode"`
		Color string `validate:"required,displaycolor"`
	}

	v := NewValidator()
	s := testStruct{Mode: "", Color: ""}
	err := v.Validate(&s)

	require.Error(t, err)

	// Error should contain both field errors
	errStr := err.Error()
	assert.Contains(t, errStr, "mode is required")
	assert.Contains(t, errStr, "color is required")

	// Should be a validation.Error type
	var valErr *Error
	require.ErrorAs(t, err, &valErr)
	assert.Len(t, valErr.Fields, 2)
}

func TestErrorFormattingAllCases(t *testing.T) {
	t.Parallel()

	v := NewValidator()

	tests := []struct {
		name       string
		structDef  any
		wantSubstr string
	}{
		{
			name: "oneof validation",
			structDef: &struct {
				Value string `validate:"oneof=celsius fahrenheit"`
			}{Value: "kelvin"},
			wantSubstr: "must be one of: celsius fahrenheit",
		},
		{
			name: "min validation",
			structDef: &struct {
				Value string `validate:"min=2"`
			}{Value: "x"},
			wantSubstr: "must be at least 2",
		},
		{
			name: "max validation",
			structDef: &struct {
				Value string `validate:"max=5"`
			}{Value: "toolong"},
			wantSubstr: "must be at most 5",
		},
		{
			name: "gte validation",
			structDef: &struct {
				Value int `validate:"gte=10"`
			}{Value: 5},
			wantSubstr: "must be greater than or equal to 10",
		},
		{
			name: "lte validation",
			structDef: &struct {
				Value int `validate:"lte=10"`
			}{Value: 15},
			wantSubstr: "must be less than or equal to 10",
		},
		{
			name: "unknown tag falls back to default",
			structDef: &struct {
				Value string `validate:"alphanum"`
			}{Value: "test!@#"},
			wantSubstr: "failed alphanum validation",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := v.Validate(tt.structDef)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantSubstr)
		})
	}
}

func TestErrorEmptyFields(t *testing.T) {
	t.Parallel()

	err := &Error{Fields: []FieldError{}}
	assert.Equal(t, "validation failed", err.Error())
}
