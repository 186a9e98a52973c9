package model_test

import (
	"testing"
	"time"

	"github.com/pagebound/inkdesk/model"
	"github.com/pagebound/inkdesk/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAutoMigrate_InsertAndQuery(t *testing.T) {
	db := testutil.SetupTestDB(t)

	// Account
	acc := &model.Account{Username: "test_writer", PasswordHash: "hash", Status: 1}
	require.NoError(t, db.Create(acc).Error)
	assert.Greater(t, acc.ID, int64(0))

	var found model.Account
	require.NoError(t, db.First(&found, acc.ID).Error)
	assert.Equal(t, "test_writer", found.Username)

	// Project
	proj := &model.Project{AccountID: acc.ID, Title: "The Long Draft", Genre: "fantasy"}
	require.NoError(t, db.Create(proj).Error)
	assert.Greater(t, proj.ID, int64(0))

	// Ticket
	ticket := &model.Ticket{ProjectID: proj.ID, Title: "Write chapter 1", TaskType: model.TaskTypeChapter}
	require.NoError(t, db.Create(ticket).Error)
	assert.Equal(t, model.TicketStatusTodo, func() string {
		var tt model.Ticket
		require.NoError(t, db.First(&tt, ticket.ID).Error)
		return tt.Status
	}())

	// Manuscript
	ms := &model.Manuscript{ProjectID: proj.ID, Title: "Chapter 1", Content: "It was a dark and stormy night.", WordCount: 8}
	require.NoError(t, db.Create(ms).Error)

	// Novel kit entities
	require.NoError(t, db.Create(&model.StoryCharacter{ProjectID: proj.ID, Name: "Mira", Role: "protagonist"}).Error)
	require.NoError(t, db.Create(&model.Location{ProjectID: proj.ID, Name: "Harrowgate"}).Error)
	require.NoError(t, db.Create(&model.SceneCard{ProjectID: proj.ID, Title: "The arrival"}).Error)
	require.NoError(t, db.Create(&model.PlotBeat{ProjectID: proj.ID, Name: "Inciting incident", Act: 1}).Error)
	require.NoError(t, db.Create(&model.WorldElement{ProjectID: proj.ID, Kind: "faction", Name: "The Ledgerkeepers"}).Error)
	require.NoError(t, db.Create(&model.TimelineEvent{ProjectID: proj.ID, Title: "The fall of Harrowgate", When: "Year 312"}).Error)

	// WritingSession
	now := time.Now()
	sess := &model.WritingSession{AccountID: acc.ID, ProjectID: proj.ID, WordsWritten: 500, StartedAt: now.Add(-time.Hour), EndedAt: now}
	require.NoError(t, db.Create(sess).Error)

	// AuditLog
	al := &model.AuditLog{TraceID: "trace-001", Action: "login", CreatedAt: time.Now()}
	require.NoError(t, db.Create(al).Error)
}

func TestUnlockIdentity_UniqueIndex(t *testing.T) {
	db := testutil.SetupTestDB(t)

	rec := &model.AchievementUnlock{
		AccountID:        1,
		AchievementID:    10,
		ProjectID:        7,
		ProgressAtUnlock: 1000,
		UnlockedAt:       time.Now(),
	}
	require.NoError(t, db.Create(rec).Error)

	// Exact same identity must violate the unique index.
	dup := &model.AchievementUnlock{
		AccountID:        1,
		AchievementID:    10,
		ProjectID:        7,
		ProgressAtUnlock: 2000,
		UnlockedAt:       time.Now(),
	}
	require.Error(t, db.Create(dup).Error)

	// Same achievement for the account-global identity is a different row.
	global := &model.AchievementUnlock{
		AccountID:        1,
		AchievementID:    10,
		ProjectID:        model.GlobalProject,
		ProgressAtUnlock: 1,
		UnlockedAt:       time.Now(),
	}
	require.NoError(t, db.Create(global).Error)

	// And only one global row is allowed either.
	globalDup := &model.AchievementUnlock{
		AccountID:        1,
		AchievementID:    10,
		ProjectID:        model.GlobalProject,
		ProgressAtUnlock: 1,
		UnlockedAt:       time.Now(),
	}
	require.Error(t, db.Create(globalDup).Error)

	var count int64
	require.NoError(t, db.Model(&model.AchievementUnlock{}).Where("account_id = ?", 1).Count(&count).Error)
	assert.Equal(t, int64(2), count)
}
