package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTypeDesignator_Name(t *testing.T) {
	tests := []struct {
		name string
		d    TypeDesignator
		want string
	}{
		{"both", TypeDesignator{Manufacturer: "BOEING", Model: "737-800"}, "BOEING 737-800"},
		{"model only", TypeDesignator{Model: "737-800"}, "737-800"},
		{"manufacturer only", TypeDesignator{Manufacturer: "BOEING"}, "BOEING"},
		{"empty", TypeDesignator{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.d.Name())
		})
	}
}

func TestClassificationRecord_Corrected(t *testing.T) {
	assert.True(t, (&ClassificationRecord{ICAO: "B738", ReportedICAO: ""}).Corrected())
	assert.False(t, (&ClassificationRecord{ICAO: "B738", ReportedICAO: "B738"}).Corrected())
}
