package services

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePackageInfo_Valid(t *testing.T) {
	info, svcErr := ParsePackageInfo([]byte(`{"weight":1.5,"length":"30","width":20,"height":" 10.5 "}`), false)
	require.Nil(t, svcErr)
	assert.Equal(t, 1.5, info.WeightKg)
	assert.Equal(t, 30.0, info.LengthCm)
	assert.Equal(t, 20.0, info.WidthCm)
	assert.Equal(t, 10.5, info.HeightCm)
	assert.False(t, info.Force)
}

func TestParsePackageInfo_MissingFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"empty body", ``, "Missing required package fields: weight, length, width, height"},
		{"empty object", `{}`, "Missing required package fields: weight, length, width, height"},
		{"null and blank", `{"weight":null,"length":"  ","width":2,"height":3}`, "Missing required package fields: weight, length"},
		{"only height missing", `{"weight":1,"length":2,"width":3}`, "Missing required package fields: height"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svcErr := ParsePackageInfo([]byte(tt.body), false)
			require.NotNil(t, svcErr)
			assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
			assert.Equal(t, KindValidation, svcErr.Kind)
			assert.Equal(t, tt.want, svcErr.Message)
		})
	}
}

func TestParsePackageInfo_InvalidFields(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"zero and negative", `{"weight":0,"length":-1,"width":2,"height":3}`, "Invalid package fields (must be positive numbers): weight, length"},
		{"non numeric string", `{"weight":"heavy","length":1,"width":2,"height":3}`, "Invalid package fields (must be positive numbers): weight"},
		{"non finite string", `{"weight":1,"length":"NaN","width":"Inf","height":3}`, "Invalid package fields (must be positive numbers): length, width"},
		{"wrong type", `{"weight":1,"length":1,"width":2,"height":true}`, "Invalid package fields (must be positive numbers): height"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, svcErr := ParsePackageInfo([]byte(tt.body), false)
			require.NotNil(t, svcErr)
			assert.Equal(t, tt.want, svcErr.Message)
		})
	}
}

func TestParsePackageInfo_MissingReportedBeforeInvalid(t *testing.T) {
	_, svcErr := ParsePackageInfo([]byte(`{"weight":-2,"width":2,"height":3}`), false)
	require.NotNil(t, svcErr)
	assert.Equal(t, "Missing required package fields: length", svcErr.Message)
}

func TestParsePackageInfo_Force(t *testing.T) {
	base := `"weight":1,"length":1,"width":1,"height":1`

	info, svcErr := ParsePackageInfo([]byte(`{`+base+`,"force":true}`), false)
	require.Nil(t, svcErr)
	assert.True(t, info.Force)

	info, svcErr = ParsePackageInfo([]byte(`{`+base+`,"force":"true"}`), false)
	require.Nil(t, svcErr)
	assert.True(t, info.Force)

	info, svcErr = ParsePackageInfo([]byte(`{`+base+`}`), true)
	require.Nil(t, svcErr)
	assert.True(t, info.Force)

	info, svcErr = ParsePackageInfo([]byte(`{`+base+`,"force":"nope"}`), false)
	require.Nil(t, svcErr)
	assert.False(t, info.Force)
}

func TestParsePackageInfo_BadJSON(t *testing.T) {
	_, svcErr := ParsePackageInfo([]byte(`not-json`), false)
	require.NotNil(t, svcErr)
	assert.Equal(t, http.StatusBadRequest, svcErr.StatusCode)
}
