package enceladus_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AbsaOSS/spot/internal/enrichment/enceladus"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name    string
		appName string
		wantOK  bool
		want    enceladus.Classification
		tag     string
	}{
		{
			name:    "standardisation",
			appName: "Standardisation 2.1.0 sales 3 2020-01-31 1",
			wantOK:  true,
			want: enceladus.Classification{
				Project: "enceladus", App: "enceladus", Type: enceladus.TypeStandardization,
				AppVersion: "2.1.0", Dataset: "sales", DatasetVersion: "3",
				InfoDate: "2020-01-31", InfoVersion: "1",
			},
			tag: "standardization_2.1.0_sales_3",
		},
		{
			name:    "conformance",
			appName: "Dynamic Conformance 2.1.0 sales 3 2020-01-31 2",
			wantOK:  true,
			want: enceladus.Classification{
				Project: "enceladus", App: "enceladus", Type: enceladus.TypeConformance,
				AppVersion: "2.1.0", Dataset: "sales", DatasetVersion: "3",
				InfoDate: "2020-01-31", InfoVersion: "2",
			},
			tag: "conformance_2.1.0_sales_3",
		},
		{name: "too few tokens", appName: "Standardisation 2.1.0 sales 3 2020-01-31"},
		{name: "conformance without dynamic", appName: "Conformance 2.1.0 sales 3 2020-01-31 2 x"},
		{name: "other app", appName: "spark-shell"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := enceladus.Classify(tt.appName)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantOK, enceladus.IsEnceladusRun(tt.appName))
			if !tt.wantOK {
				return
			}
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.tag, got.Tag())
		})
	}
}

func TestClassification_MapCastsVersions(t *testing.T) {
	c, ok := enceladus.Classify("Standardisation 2.1.0 sales 3 2020-01-31 v1")
	assert.True(t, ok)

	m := c.Map()
	assert.Equal(t, int64(3), m["dataset_version"])
	assert.Equal(t, "v1", m["info_version"])
	assert.Equal(t, "2.1.0", m["app_version"])
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in     string
		want   int64
		wantOK bool
	}{
		{"42", 42, true},
		{"007", 7, true},
		{"", 0, false},
		{"-1", 0, false},
		{"1.5", 0, false},
		{" 1", 0, false},
		{"99999999999999999999", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := enceladus.ParseInt(tt.in)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}
