package db

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/podcast-studio/backend/internal/db/models"
)

func newTestDB(t *testing.T) *Database {
	t.Helper()
	database, err := NewSQLite(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { database.Close() })
	return database
}

func createTestSeries(t *testing.T, database *Database) int64 {
	t.Helper()
	id, err := database.CreateSeries(&models.Series{
		Name:     "Tech Weekly",
		Author:   "Jordan",
		Category: "Technology",
		Language: "en",
	})
	require.NoError(t, err)
	return id
}

func createTestEpisode(t *testing.T, database *Database, seriesID int64, title string) int64 {
	t.Helper()
	id, err := database.CreateEpisode(&models.Episode{
		SeriesID:      seriesID,
		Title:         title,
		EpisodeNumber: 1,
		SeasonNumber:  1,
		Tags:          []string{"tech", "golang"},
	})
	require.NoError(t, err)
	return id
}

func TestEnsureAdmin(t *testing.T) {
	database := newTestDB(t)
	require.NoError(t, database.EnsureAdmin("admin", "secret"))
	// Idempotent on second call.
	require.NoError(t, database.EnsureAdmin("admin", "other"))

	user, err := database.GetUserByUsername("admin")
	require.NoError(t, err)
	require.Equal(t, "admin", user.Role)

	byID, err := database.GetUserByID(user.ID)
	require.NoError(t, err)
	require.Equal(t, user.Username, byID.Username)
}

func TestSeriesCRUD(t *testing.T) {
	database := newTestDB(t)
	id := createTestSeries(t, database)

	series, err := database.GetSeries(id)
	require.NoError(t, err)
	require.Equal(t, "Tech Weekly", series.Name)
	require.Equal(t, "Jordan", series.Author)

	series.Description = "Weekly tech news"
	require.NoError(t, database.UpdateSeries(series))

	all, err := database.ListSeries()
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, "Weekly tech news", all[0].Description)

	require.NoError(t, database.DeleteSeries(id))
	_, err = database.GetSeries(id)
	require.Error(t, err)
}

func TestEpisodeCRUD(t *testing.T) {
	database := newTestDB(t)
	seriesID := createTestSeries(t, database)
	id := createTestEpisode(t, database, seriesID, "Pilot")

	episode, err := database.GetEpisode(id)
	require.NoError(t, err)
	require.Equal(t, "Pilot", episode.Title)
	require.Equal(t, "Tech Weekly", episode.SeriesName)
	require.Equal(t, models.EpisodeDraft, episode.Status)
	require.Equal(t, []string{"tech", "golang"}, episode.Tags)
	require.False(t, episode.Synced())

	episode.Title = "Pilot (remastered)"
	episode.Tags = []string{"tech"}
	require.NoError(t, database.UpdateEpisode(episode))

	updated, err := database.GetEpisode(id)
	require.NoError(t, err)
	require.Equal(t, "Pilot (remastered)", updated.Title)
	require.Equal(t, []string{"tech"}, updated.Tags)

	require.NoError(t, database.DeleteEpisode(id))
	_, err = database.GetEpisode(id)
	require.Error(t, err)
}

func TestListEpisodesFilters(t *testing.T) {
	database := newTestDB(t)
	seriesA := createTestSeries(t, database)
	seriesB, err := database.CreateSeries(&models.Series{Name: "Other Show", Author: "Sam"})
	require.NoError(t, err)

	ep1 := createTestEpisode(t, database, seriesA, "A1")
	createTestEpisode(t, database, seriesA, "A2")
	createTestEpisode(t, database, seriesB, "B1")

	require.NoError(t, database.UpdateEpisodeStatus(ep1, models.EpisodePublished, nil))

	all, err := database.ListEpisodes(0, "")
	require.NoError(t, err)
	require.Len(t, all, 3)

	bySeries, err := database.ListEpisodes(seriesA, "")
	require.NoError(t, err)
	require.Len(t, bySeries, 2)

	published, err := database.ListEpisodes(seriesA, models.EpisodePublished)
	require.NoError(t, err)
	require.Len(t, published, 1)
	require.Equal(t, "A1", published[0].Title)
}

func TestEpisodeStatusTransitions(t *testing.T) {
	database := newTestDB(t)
	seriesID := createTestSeries(t, database)
	id := createTestEpisode(t, database, seriesID, "Pilot")

	when := time.Date(2026, 9, 1, 8, 0, 0, 0, time.UTC)
	require.NoError(t, database.UpdateEpisodeStatus(id, models.EpisodeScheduled, &when))

	episode, err := database.GetEpisode(id)
	require.NoError(t, err)
	require.Equal(t, models.EpisodeScheduled, episode.Status)
	require.NotNil(t, episode.PublishDate)
	require.True(t, episode.PublishDate.Equal(when))

	require.Error(t, database.UpdateEpisodeStatus(id, "bogus", nil))
}

func TestEpisodeProductionFields(t *testing.T) {
	database := newTestDB(t)
	seriesID := createTestSeries(t, database)
	id := createTestEpisode(t, database, seriesID, "Pilot")

	require.NoError(t, database.SetEpisodeTranscription(id, "hello world"))
	require.NoError(t, database.SetEpisodeProductionKit(id, "notes", "social"))
	require.NoError(t, database.SetEpisodeDriveFiles(id, "audio-1", "notes-1"))
	require.NoError(t, database.SetEpisodeTranscriptFile(id, "transcript-1"))

	episode, err := database.GetEpisode(id)
	require.NoError(t, err)
	require.Equal(t, "hello world", episode.Transcription)
	require.Equal(t, "notes", episode.ShowNotes)
	require.Equal(t, "social", episode.SocialKit)
	require.Equal(t, "audio-1", episode.AudioFileID)
	require.Equal(t, "notes-1", episode.NotesFileID)
	require.Equal(t, "transcript-1", episode.TranscriptFileID)
	require.True(t, episode.Synced())
}

func TestGuestsCRUDAndLinks(t *testing.T) {
	database := newTestDB(t)
	seriesID := createTestSeries(t, database)
	episodeID := createTestEpisode(t, database, seriesID, "Pilot")

	guestID, err := database.CreateGuest(&models.Guest{Name: "Dana Expert", Email: "dana@example.com"})
	require.NoError(t, err)

	found, err := database.ListGuests("dana")
	require.NoError(t, err)
	require.Len(t, found, 1)

	none, err := database.ListGuests("nobody")
	require.NoError(t, err)
	require.Empty(t, none)

	require.NoError(t, database.LinkGuest(episodeID, guestID))
	// Linking twice is a no-op.
	require.NoError(t, database.LinkGuest(episodeID, guestID))

	linked, err := database.ListEpisodeGuests(episodeID)
	require.NoError(t, err)
	require.Len(t, linked, 1)
	require.Equal(t, "Dana Expert", linked[0].Name)

	require.NoError(t, database.UnlinkGuest(episodeID, guestID))
	linked, err = database.ListEpisodeGuests(episodeID)
	require.NoError(t, err)
	require.Empty(t, linked)

	require.NoError(t, database.DeleteGuest(guestID))
	_, err = database.GetGuest(guestID)
	require.Error(t, err)
}

func TestDeleteSeriesCascades(t *testing.T) {
	database := newTestDB(t)
	seriesID := createTestSeries(t, database)
	episodeID := createTestEpisode(t, database, seriesID, "Pilot")

	guestID, err := database.CreateGuest(&models.Guest{Name: "Guest"})
	require.NoError(t, err)
	require.NoError(t, database.LinkGuest(episodeID, guestID))
	require.NoError(t, database.RecordEvent(episodeID, "view", "hash", "agent"))

	require.NoError(t, database.DeleteSeries(seriesID))

	_, err = database.GetEpisode(episodeID)
	require.Error(t, err)

	// The guest itself survives; only the link goes.
	_, err = database.GetGuest(guestID)
	require.NoError(t, err)
}

func TestAnalytics(t *testing.T) {
	database := newTestDB(t)
	seriesID := createTestSeries(t, database)
	ep1 := createTestEpisode(t, database, seriesID, "Pilot")
	ep2 := createTestEpisode(t, database, seriesID, "Second")

	require.NoError(t, database.RecordEvent(ep1, "view", "hash-a", "agent"))
	require.NoError(t, database.RecordEvent(ep1, "view", "hash-b", "agent"))
	require.NoError(t, database.RecordEvent(ep1, "download", "hash-a", "agent"))
	require.NoError(t, database.RecordEvent(ep2, "view", "hash-c", "agent"))
	require.Error(t, database.RecordEvent(ep1, "listen", "hash", "agent"))

	totals, err := database.Totals()
	require.NoError(t, err)
	require.Equal(t, int64(1), totals.Series)
	require.Equal(t, int64(2), totals.Episodes)
	require.Equal(t, int64(3), totals.Views)
	require.Equal(t, int64(1), totals.Downloads)

	stats, err := database.EpisodeStats()
	require.NoError(t, err)
	require.Len(t, stats, 2)
	require.Equal(t, ep1, stats[0].EpisodeID)
	require.Equal(t, int64(2), stats[0].Views)
	require.Equal(t, "Tech Weekly", stats[0].SeriesName)

	events, err := database.EpisodeEvents(ep1, 10)
	require.NoError(t, err)
	require.Len(t, events, 3)
}

func TestSettings(t *testing.T) {
	database := newTestDB(t)

	require.Equal(t, "fallback", database.GetSetting("missing", "fallback"))

	require.NoError(t, database.SetSetting("openai_api_key", "sk-test"))
	require.Equal(t, "sk-test", database.GetSetting("openai_api_key", ""))

	// Upsert overwrites.
	require.NoError(t, database.SetSetting("openai_api_key", "sk-new"))

	all, err := database.GetAllSettings()
	require.NoError(t, err)
	require.Equal(t, "sk-new", all["openai_api_key"])
}

func TestResetWipesContentButKeepsUsers(t *testing.T) {
	database := newTestDB(t)
	require.NoError(t, database.EnsureAdmin("admin", "test-password"))

	seriesID := createTestSeries(t, database)
	episodeID := createTestEpisode(t, database, seriesID, "Pilot")
	guestID, err := database.CreateGuest(&models.Guest{Name: "Dana"})
	require.NoError(t, err)
	require.NoError(t, database.LinkGuest(episodeID, guestID))
	require.NoError(t, database.RecordEvent(episodeID, "play", "hash", "test-agent"))
	require.NoError(t, database.SetSetting("openai_api_key", "sk-test"))

	require.NoError(t, database.Reset())

	series, err := database.ListSeries()
	require.NoError(t, err)
	require.Empty(t, series)

	episodes, err := database.ListEpisodes(0, "")
	require.NoError(t, err)
	require.Empty(t, episodes)

	guests, err := database.ListGuests("")
	require.NoError(t, err)
	require.Empty(t, guests)

	require.Equal(t, "", database.GetSetting("openai_api_key", ""))

	// Admin account survives the wipe.
	user, err := database.GetUserByUsername("admin")
	require.NoError(t, err)
	require.Equal(t, "admin", user.Role)
}
