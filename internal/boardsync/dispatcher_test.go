package boardsync

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FilBrou/grandprix-grab-go-sub000/internal/auth"
	"github.com/FilBrou/grandprix-grab-go-sub000/internal/orders"
)

// fakeBoard serves the query API with a fixed column set and records
// created items.
type fakeBoard struct {
	columns []Column
	created []map[string]any
}

func (f *fakeBoard) server(t *testing.T) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		query, _ := body["query"].(string)

		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.Contains(query, "columns"):
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{
					"boards": []any{map[string]any{"columns": f.columns}},
				},
			})
		case strings.Contains(query, "create_item"):
			f.created = append(f.created, body)
			_ = json.NewEncoder(w).Encode(map[string]any{
				"data": map[string]any{"create_item": map[string]any{"id": "42"}},
			})
		default:
			t.Fatalf("unexpected query: %s", query)
		}
	}))
}

func grandPrixColumns() []Column {
	return []Column{
		{ID: "text_1", Title: "Nom du client", Type: "text"},
		{ID: "status_1", Title: "Statut commande", Type: "status"},
		{ID: "num_1", Title: "Montant ($)", Type: "numbers"},
		{ID: "date_1", Title: "Date", Type: "date"},
	}
}

func TestResolveBindingMatchesAccentedTitles(t *testing.T) {
	board := &fakeBoard{columns: grandPrixColumns()}
	srv := board.server(t)
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	b, err := ResolveBinding(context.Background(), client, "7", BindingTitles{
		Client: "client", Status: "statut", Amount: "montant",
	})
	require.NoError(t, err)
	assert.Equal(t, "text_1", b.Client)
	assert.Equal(t, "status_1", b.Status)
	assert.Equal(t, "num_1", b.Amount)
}

func TestResolveBindingFailsOnMissingColumn(t *testing.T) {
	board := &fakeBoard{columns: grandPrixColumns()[:2]} // no amount column
	srv := board.server(t)
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	_, err := ResolveBinding(context.Background(), client, "7", BindingTitles{
		Client: "client", Status: "statut", Amount: "montant",
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "montant")
}

type staticProfiles struct{ name string }

func (s staticProfiles) Get(ctx context.Context, userID string) (auth.Profile, error) {
	return auth.Profile{UserID: userID, DisplayName: s.name}, nil
}

func TestSyncOrderPushesTypedColumns(t *testing.T) {
	board := &fakeBoard{columns: grandPrixColumns()}
	srv := board.server(t)
	defer srv.Close()

	client := NewClient(srv.URL, "secret")
	binding, err := ResolveBinding(context.Background(), client, "7", BindingTitles{
		Client: "client", Status: "statut", Amount: "montant",
	})
	require.NoError(t, err)

	d := &Dispatcher{
		API:      client,
		BoardID:  "7",
		GroupID:  "topics",
		Binding:  binding,
		Profiles: staticProfiles{name: "Gilles V."},
	}
	o := orders.Order{
		ID:         "11111111-2222-3333-4444-555555555555",
		UserID:     "u1",
		Status:     orders.StatusPending,
		TotalCents: 2500,
	}
	require.NoError(t, d.SyncOrder(context.Background(), o))
	require.Len(t, board.created, 1)

	vars := board.created[0]["variables"].(map[string]any)
	assert.Equal(t, "11111111 — Gilles V.", vars["name"])

	var values map[string]any
	require.NoError(t, json.Unmarshal([]byte(vars["values"].(string)), &values))
	assert.Equal(t, "Gilles V.", values["text_1"])
	assert.Equal(t, map[string]any{"label": "En attente"}, values["status_1"])
	assert.Equal(t, "25.00", values["num_1"])
}
