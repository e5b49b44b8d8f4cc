package models_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"smarttender/models"
)

func validTender() *models.Tender {
	return &models.Tender{
		ID:              "t1",
		Email:           "owner@example.com",
		Title:           "Road resurfacing",
		Type:            "Construction",
		StartDate:       time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		EndDate:         time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		Materials:       []string{"Asphalt", "Gravel"},
		Quantities:      []int64{10, 5},
		ProposedAmounts: []float64{100, 200},
	}
}

func TestComputeTotal(t *testing.T) {
	tender := validTender()
	require.Equal(t, float64(10*100+5*200), tender.ComputeTotal())
}

func TestRefreshRecomputesCachedTotal(t *testing.T) {
	tender := validTender()
	tender.TotalQuotation = 1 // stale cache
	tender.Refresh(tender.StartDate)
	require.Equal(t, 2000.0, tender.TotalQuotation)
}

func TestEffectiveStatus(t *testing.T) {
	tender := validTender()
	require.Equal(t, models.TenderStatusActive, tender.EffectiveStatus(tender.EndDate.Add(-time.Hour)))
	require.Equal(t, models.TenderStatusInactive, tender.EffectiveStatus(tender.EndDate.Add(time.Hour)))
}

func TestValidateLineItems(t *testing.T) {
	tender := validTender()
	require.NoError(t, tender.ValidateLineItems())

	mismatched := validTender()
	mismatched.Quantities = []int64{10}
	err := mismatched.ValidateLineItems()
	var ve *models.ValidationError
	require.ErrorAs(t, err, &ve)

	zeroQty := validTender()
	zeroQty.Quantities = []int64{0, 5}
	require.Error(t, zeroQty.ValidateLineItems())

	negative := validTender()
	negative.ProposedAmounts = []float64{-1, 200}
	require.Error(t, negative.ValidateLineItems())

	badDates := validTender()
	badDates.EndDate = badDates.StartDate
	require.Error(t, badDates.ValidateLineItems())
}
