package cli

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rostra-labs/rostra-cli/internal/core/domain"
)

func TestSyncCmd_Use(t *testing.T) {
	assert.Equal(t, "sync", syncCmd.Use)
}

func TestSyncCmd_Executes(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sync"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Synchronised 3 records (2 new, 1 updated)")
}

func TestSyncCmd_RequiresFeedURL(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	configStore = newMockConfigStore() // no feed.url

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sync"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed URL not configured")
}

func TestSyncCmd_RetentionFlagFloorsCutoff(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sync", "--retention-months", "6"})
	defer func() {
		rootCmd.SetArgs(nil)
		syncRetentionMonths = -1 // Reset flag
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	runner := syncService.(*mockSyncRunner)
	want := domain.MonthFloor(time.Now().UTC().AddDate(0, -6, 0))
	assert.Equal(t, want, runner.retentionStart)
	assert.Contains(t, buf.String(), "Retention floor: "+want.Format("2006-01"))
}

func TestSyncCmd_RetentionFromConfig(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	configStore.Set("sync.retention_months", 12) //nolint:errcheck

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sync"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()
	require.NoError(t, err)

	runner := syncService.(*mockSyncRunner)
	want := domain.MonthFloor(time.Now().UTC().AddDate(0, -12, 0))
	assert.Equal(t, want, runner.retentionStart)
}

func TestSyncCmd_AlreadyUpToDate(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	syncService = &mockSyncRunner{
		result: domain.SyncResult{Success: true, Duration: 80 * time.Millisecond},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sync"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Already up to date")
}

func TestSyncCmd_ConcurrentSyncIsNotAnError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	syncService = &mockSyncRunner{
		result: domain.SyncResult{Success: false, Error: domain.ErrSyncInProgress.Error()},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"sync"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.NoError(t, err)
	assert.Contains(t, buf.String(), "Another sync is already in progress")
}

func TestSyncCmd_FailedRunReturnsError(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	syncService = &mockSyncRunner{
		result: domain.SyncResult{Success: false, Error: "feed unreachable"},
	}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"sync"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "feed unreachable")
}
