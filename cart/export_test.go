package cart

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mifoto-print/catalog"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
)

func TestBuildPrintJobRequiresFinalizedOrder(t *testing.T) {
	a := newTestAggregator()
	order, err := a.AddCopies(a.NewOrder(), "large", copiesOf("p1", 1))
	require.NoError(t, err)

	_, err = BuildPrintJob(catalog.Default(), order, models.PrintJobLazy)
	assert.ErrorIs(t, err, pkgerrors.ErrInvalidTransition)
}

func TestBuildPrintJobLazy(t *testing.T) {
	a := newTestAggregator()
	copies := copiesOf("p1", 2)
	copies[1].Settings = models.CopySettings{
		Margins:         models.MarginSpec{Style: models.MarginBlackWide},
		RotationDegrees: 90,
		FitMode:         models.FitFit,
	}
	order, err := a.AddCopies(a.NewOrder(), "kiosco", copies)
	require.NoError(t, err)
	order, err = a.Validate(order)
	require.NoError(t, err)
	order, err = a.Finalize(order)
	require.NoError(t, err)

	job, err := BuildPrintJob(catalog.Default(), order, models.PrintJobLazy)
	require.NoError(t, err)

	require.Len(t, job.Lines, 1)
	line := job.Lines[0]
	assert.Equal(t, "10x15 cm", line.Dimensions)
	assert.True(t, line.IsPairPricing)
	require.Len(t, line.Copies, 2)

	plain := line.Copies[0].Processing
	assert.Equal(t, "cover", plain.ObjectFit)
	assert.Equal(t, "rotate(0deg)", plain.Transform)
	assert.Nil(t, plain.BorderConfig)

	edited := line.Copies[1].Processing
	assert.Equal(t, "contain", edited.ObjectFit)
	assert.Equal(t, "rotate(90deg)", edited.Transform)
	require.NotNil(t, edited.BorderConfig)
	assert.Equal(t, "10mm", edited.BorderConfig.Width)
	assert.Equal(t, models.MarginColorBlack, edited.BorderConfig.Color)
	assert.Nil(t, line.Copies[1].Rendered)
}

func TestBuildPrintJobEagerNeedsEveryRender(t *testing.T) {
	a := newTestAggregator()
	order := finalizedOrder(t, a)

	_, err := BuildPrintJob(catalog.Default(), order, models.PrintJobEager)
	assert.ErrorIs(t, err, pkgerrors.ErrMissingRender)

	itemID := order.Items[0].ID
	for _, id := range []string{"p1-1", "p1-2"} {
		order, err = a.AttachResult(order, itemID, id, &models.CompositionResult{SizeID: "kiosco", Raster: []byte(id)})
		require.NoError(t, err)
	}

	job, err := BuildPrintJob(catalog.Default(), order, models.PrintJobEager)
	require.NoError(t, err)
	assert.Equal(t, []byte("p1-2"), job.Lines[0].Copies[1].Rendered)
	assert.Nil(t, job.Lines[0].Copies[1].Settings)
}
