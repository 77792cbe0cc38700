package handlers

import (
	"testing"

	"github.com/andresuchdata/reorder-dashboard/internal/dashboard"
	"github.com/andresuchdata/reorder-dashboard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOfferKeepsNewestStates(t *testing.T) {
	send := make(chan dashboard.State, 2)

	offer(send, dashboard.State{Tab: domain.TabOverview})
	offer(send, dashboard.State{Tab: domain.TabRecommendations})
	offer(send, dashboard.State{Tab: domain.TabAnalytics})

	require.Len(t, send, 2)
	assert.Equal(t, domain.TabRecommendations, (<-send).Tab)
	assert.Equal(t, domain.TabAnalytics, (<-send).Tab)
}

func TestOfferIntoEmptyQueue(t *testing.T) {
	send := make(chan dashboard.State, 1)

	offer(send, dashboard.State{Phase: dashboard.PhaseReady})

	require.Len(t, send, 1)
	assert.Equal(t, dashboard.PhaseReady, (<-send).Phase)
}
