package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mifoto-print/catalog"
	pkgerrors "mifoto-print/errors"
	"mifoto-print/models"
)

func jobFor(photo models.SourcePhoto, copyID string) RenderJob {
	return RenderJob{
		LineItemID: "li-1",
		SizeID:     "kiosco",
		Copy:       models.Copy{CopyID: copyID, SourcePhotoID: photo.ID, Settings: models.DefaultCopySettings()},
		Photo:      photo,
		Scale:      0.1,
	}
}

func TestRenderBatchIsolatesFailures(t *testing.T) {
	c := NewCompositor(catalog.Default(), nil, DefaultQuality)
	good := fixturePhoto(t, "good", 120, 180)
	bad := models.SourcePhoto{ID: "bad", Data: []byte("garbage")}

	jobs := []RenderJob{jobFor(good, "c1"), jobFor(bad, "c2"), jobFor(good, "c3")}
	outcomes := c.RenderBatch(context.Background(), jobs, 2)

	require.Len(t, outcomes, 3)
	assert.NoError(t, outcomes[0].Err)
	assert.NoError(t, outcomes[2].Err)
	var decodeErr *pkgerrors.ImageDecodeError
	assert.True(t, errors.As(outcomes[1].Err, &decodeErr))
	assert.Equal(t, "c2", outcomes[1].Job.Copy.CopyID)

	results := Results(outcomes)
	assert.Len(t, results, 2)
	assert.Contains(t, results, "c1")
	assert.Contains(t, results, "c3")
	assert.Equal(t, outcomes[1].Err, FirstError(outcomes))
}

func TestRenderBatchStopsOnCancelledContext(t *testing.T) {
	c := NewCompositor(catalog.Default(), nil, DefaultQuality)
	photo := fixturePhoto(t, "p1", 60, 90)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	outcomes := c.RenderBatch(ctx, []RenderJob{jobFor(photo, "c1"), jobFor(photo, "c2")}, 0)

	for _, o := range outcomes {
		assert.ErrorIs(t, o.Err, context.Canceled)
		assert.Nil(t, o.Result)
	}
}

func TestFirstErrorWithoutFailures(t *testing.T) {
	assert.NoError(t, FirstError([]RenderOutcome{{Job: RenderJob{}}}))
	assert.NoError(t, FirstError(nil))
}
