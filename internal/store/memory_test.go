package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/saintvisionai/crm-bridge/internal/models"
)

func TestWorkspaceByLocation(t *testing.T) {
	st := NewMemoryStore()
	st.SeedWorkspace(models.Workspace{ID: "ws-1", UserID: "user-1", GHLLocationID: "loc_1"})

	ws, err := st.WorkspaceByLocation(context.Background(), "loc_1")
	require.NoError(t, err)
	require.Equal(t, "user-1", ws.UserID)

	_, err = st.WorkspaceByLocation(context.Background(), "loc_unknown")
	require.ErrorIs(t, err, ErrNotFound)
}

func TestUpsertContactLastWriteWins(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	first := models.Contact{
		WorkspaceID:  "ws-1",
		GHLContactID: "con_1",
		FirstName:    "Ada",
		Email:        "ada@example.com",
	}
	require.NoError(t, st.UpsertContact(ctx, first))

	second := first
	second.FirstName = "Ada Louise"
	second.Phone = "+15550100"
	require.NoError(t, st.UpsertContact(ctx, second))

	require.Len(t, st.Contacts, 1, "replay must converge to one row")
	got := st.Contacts["con_1"]
	require.Equal(t, "Ada Louise", got.FirstName)
	require.Equal(t, "+15550100", got.Phone)
	require.Equal(t, got.CreatedAt, st.Contacts["con_1"].CreatedAt)
}

func TestUpsertContactRequiresExternalID(t *testing.T) {
	st := NewMemoryStore()
	err := st.UpsertContact(context.Background(), models.Contact{WorkspaceID: "ws-1"})
	require.Error(t, err)
}

func TestUpsertOpportunityLastWriteWins(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.UpsertOpportunity(ctx, models.Opportunity{
		WorkspaceID: "ws-1", GHLOpportunityID: "opp_1", Title: "Demo", Value: 100,
	}))
	require.NoError(t, st.UpsertOpportunity(ctx, models.Opportunity{
		WorkspaceID: "ws-1", GHLOpportunityID: "opp_1", Title: "Demo", Value: 250, Stage: "won",
	}))

	require.Len(t, st.Opportunities, 1)
	require.Equal(t, 250.0, st.Opportunities["opp_1"].Value)
	require.Equal(t, "won", st.Opportunities["opp_1"].Stage)
}

func TestWebhookEventAudit(t *testing.T) {
	st := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, st.RecordWebhookEvent(ctx, "contact.created", "loc_1", []byte(`{}`)))
	require.NoError(t, st.RecordWebhookEvent(ctx, "contact.created", "loc_1", []byte(`{}`)))
	require.NoError(t, st.RecordWebhookEvent(ctx, "opportunity.created", "loc_1", []byte(`{}`)))

	n, err := st.CountWebhookEvents(ctx, "contact.created")
	require.NoError(t, err)
	require.EqualValues(t, 2, n)
}
