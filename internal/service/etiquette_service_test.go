package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/astrxnomo/agendaun/internal/models"
	"github.com/astrxnomo/agendaun/internal/repository"
	appErrors "github.com/astrxnomo/agendaun/pkg/errors"
)

func TestEtiquetteServiceCreateDefaultsActive(t *testing.T) {
	repo := newEtiquetteRepoStub()
	svc := NewEtiquetteService(repo, newCalendarRepoStub(), nil, nil)

	etiquette, err := svc.Create(context.Background(), "academico", EtiquetteRequest{Name: "Exámenes", Color: " RED "})
	require.NoError(t, err)
	assert.Equal(t, models.ColorRed, etiquette.Color)
	assert.True(t, etiquette.IsActive)
	assert.Equal(t, "cal-1", etiquette.CalendarID)

	list, err := svc.List(context.Background(), "academico")
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestEtiquetteServiceValidation(t *testing.T) {
	svc := NewEtiquetteService(newEtiquetteRepoStub(), newCalendarRepoStub(), nil, nil)

	_, err := svc.Create(context.Background(), "academico", EtiquetteRequest{Name: "Otros", Color: "teal"})
	assert.True(t, errors.Is(err, appErrors.ErrValidation))

	_, err = svc.Create(context.Background(), "inexistente", EtiquetteRequest{Name: "Otros", Color: "gray"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestEtiquetteServiceUpdateKeepsActiveWhenOmitted(t *testing.T) {
	repo := newEtiquetteRepoStub(models.Etiquette{ID: "et-1", CalendarID: "cal-1", Name: "Cultural", Color: models.ColorGreen, IsActive: false})
	svc := NewEtiquetteService(repo, newCalendarRepoStub(), nil, nil)

	updated, err := svc.Update(context.Background(), "et-1", EtiquetteRequest{Name: "Cultura", Color: "orange"})
	require.NoError(t, err)
	assert.Equal(t, models.ColorOrange, updated.Color)
	assert.False(t, updated.IsActive)

	active := true
	updated, err = svc.Update(context.Background(), "et-1", EtiquetteRequest{Name: "Cultura", Color: "orange", IsActive: &active})
	require.NoError(t, err)
	assert.True(t, updated.IsActive)

	_, err = svc.Update(context.Background(), "et-x", EtiquetteRequest{Name: "X", Color: "gray"})
	assert.True(t, errors.Is(err, appErrors.ErrNotFound))
}

func TestEtiquetteServiceDuplicateAndDelete(t *testing.T) {
	repo := newEtiquetteRepoStub(models.Etiquette{ID: "et-1", CalendarID: "cal-1", Name: "Cultural", Color: models.ColorGreen})
	repo.err = fmt.Errorf("create etiquette: %w", repository.ErrDuplicate)
	svc := NewEtiquetteService(repo, newCalendarRepoStub(), nil, nil)

	_, err := svc.Create(context.Background(), "academico", EtiquetteRequest{Name: "Cultural", Color: "green"})
	assert.True(t, errors.Is(err, appErrors.ErrConflict))

	repo.err = nil
	require.NoError(t, svc.Delete(context.Background(), "et-1"))
	assert.True(t, errors.Is(svc.Delete(context.Background(), "et-1"), appErrors.ErrNotFound))
}
