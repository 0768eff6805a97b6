package remote_test

import (
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmynk/debtfree/internal/config"
	"github.com/mmynk/debtfree/internal/models"
	"github.com/mmynk/debtfree/internal/server"
	"github.com/mmynk/debtfree/internal/storage/remote"
)

func startServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := &config.Config{
		DataDir:      t.TempDir(),
		JWTSecret:    "test-secret-key-of-at-least-32-chars",
		TokenTTL:     time.Hour,
		SyncAPIKey:   "project-sync-key",
		RateLimitRPS: 1000,
		LogLevel:     "error",
	}
	srv, err := server.New(cfg)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
	})
	return ts
}

func signUp(t *testing.T, ts *httptest.Server, email string) remote.Session {
	t.Helper()
	session, err := remote.Register(context.Background(), ts.URL, email, "Tester", "a strong password")
	require.NoError(t, err)
	return session
}

func TestRegisterAndLogin(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()

	session := signUp(t, ts, "alex@example.com")
	assert.Equal(t, "alex@example.com", session.Email)
	assert.Equal(t, "alex@example_com", session.UserKey)
	assert.NotEmpty(t, session.Token)

	t.Run("login with correct password", func(t *testing.T) {
		again, err := remote.Login(ctx, ts.URL, "alex@example.com", "a strong password")
		require.NoError(t, err)
		assert.Equal(t, session.UserKey, again.UserKey)
	})

	t.Run("login with wrong password fails", func(t *testing.T) {
		_, err := remote.Login(ctx, ts.URL, "alex@example.com", "nope nope nope")
		assert.Error(t, err)
	})

	t.Run("duplicate registration fails", func(t *testing.T) {
		_, err := remote.Register(ctx, ts.URL, "alex@example.com", "Imposter", "another password")
		assert.Error(t, err)
	})
}

func TestPunctuatedEmailReachesPartition(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()

	session, err := remote.Register(ctx, ts.URL, "o'brien!x%y@example.com", "O'Brien", "a strong password")
	require.NoError(t, err)
	assert.Equal(t, "o_brien_x_y@example_com", session.UserKey)

	client := session.Client()
	p := models.Person{ID: uuid.New().String(), Name: "Sam", CreatedAt: 1}
	require.NoError(t, client.SavePerson(ctx, p))

	people, err := client.ListPeople(ctx)
	require.NoError(t, err)
	require.Len(t, people, 1)
	assert.Equal(t, p.ID, people[0].ID)
}

func TestDocumentCRUD(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()
	client := signUp(t, ts, "alex@example.com").Client()

	p := models.Person{
		ID:        uuid.New().String(),
		Name:      "Sam",
		Phone:     "555-0100",
		Notes:     "roommate",
		CreatedAt: time.Now().UnixMilli(),
	}
	require.NoError(t, client.SavePerson(ctx, p))

	tx := models.Transaction{
		ID:        uuid.New().String(),
		PersonID:  p.ID,
		Amount:    decimal.RequireFromString("123.45"),
		Direction: models.YouLent,
		Date:      time.Now().UnixMilli(),
		Note:      "lunch",
		CreatedAt: time.Now().UnixMilli(),
	}
	require.NoError(t, client.SaveTransaction(ctx, tx))

	t.Run("records roundtrip exactly", func(t *testing.T) {
		people, err := client.ListPeople(ctx)
		require.NoError(t, err)
		require.Len(t, people, 1)
		assert.Equal(t, p, people[0])

		txs, err := client.ListTransactions(ctx)
		require.NoError(t, err)
		require.Len(t, txs, 1)
		assert.Equal(t, tx.ID, txs[0].ID)
		assert.True(t, tx.Amount.Equal(txs[0].Amount), "amount changed in transit")
	})

	t.Run("history filter by transaction", func(t *testing.T) {
		h := models.TransactionHistory{
			ID:                uuid.New().String(),
			TransactionID:     tx.ID,
			PreviousAmount:    decimal.NewFromInt(100),
			PreviousDirection: models.YouLent,
			ChangedAt:         time.Now().UnixMilli(),
		}
		require.NoError(t, client.AppendHistory(ctx, h))

		entries, err := client.HistoryForTransaction(ctx, tx.ID)
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Equal(t, h.ID, entries[0].ID)

		none, err := client.HistoryForTransaction(ctx, "other-tx")
		require.NoError(t, err)
		assert.Empty(t, none)
	})

	t.Run("person delete cascades remotely", func(t *testing.T) {
		require.NoError(t, client.DeletePerson(ctx, p.ID))

		txs, err := client.ListTransactions(ctx)
		require.NoError(t, err)
		assert.Empty(t, txs, "transactions should cascade with their person")

		history, err := client.ListHistory(ctx)
		require.NoError(t, err)
		assert.Empty(t, history, "history should cascade with its transaction")
	})
}

func TestListsSortNewestFirst(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()
	client := signUp(t, ts, "alex@example.com").Client()

	for i, name := range []string{"oldest", "middle", "newest"} {
		p := models.Person{
			ID:        uuid.New().String(),
			Name:      name,
			CreatedAt: int64(1000 * (i + 1)),
		}
		require.NoError(t, client.SavePerson(ctx, p))
	}

	people, err := client.ListPeople(ctx)
	require.NoError(t, err)
	require.Len(t, people, 3)
	assert.Equal(t, "newest", people[0].Name)
	assert.Equal(t, "oldest", people[2].Name)
}

func TestPartitionIsolationAndAuth(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()

	alex := signUp(t, ts, "alex@example.com")
	sam := signUp(t, ts, "sam@example.com")

	p := models.Person{ID: uuid.New().String(), Name: "Private", CreatedAt: 1}
	require.NoError(t, alex.Client().SavePerson(ctx, p))

	t.Run("users see only their own partition", func(t *testing.T) {
		people, err := sam.Client().ListPeople(ctx)
		require.NoError(t, err)
		assert.Empty(t, people)
	})

	t.Run("token cannot reach another user's key", func(t *testing.T) {
		crossed := remote.ForUser(ts.URL, sam.Token, alex.UserKey)
		_, err := crossed.ListPeople(ctx)
		assert.Error(t, err)
	})

	t.Run("no token is rejected", func(t *testing.T) {
		anon := remote.ForUser(ts.URL, "", alex.UserKey)
		_, err := anon.ListPeople(ctx)
		assert.Error(t, err)
	})
}

func TestProjectSurface(t *testing.T) {
	ts := startServer(t)
	ctx := context.Background()

	t.Run("valid sync key works", func(t *testing.T) {
		client := remote.ForProject(ts.URL, "project-sync-key")
		p := models.Person{ID: uuid.New().String(), Name: "Flat", CreatedAt: 1}
		require.NoError(t, client.SavePerson(ctx, p))

		people, err := client.ListPeople(ctx)
		require.NoError(t, err)
		assert.Len(t, people, 1)
	})

	t.Run("wrong sync key is rejected", func(t *testing.T) {
		client := remote.ForProject(ts.URL, "wrong-key")
		_, err := client.ListPeople(ctx)
		assert.Error(t, err)
	})
}
