package scheduler

import (
	"testing"

	"martilhaven-backend/internal/config"
	"martilhaven-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	t.Run("Registers Both Jobs", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			RefreshCertificateStatuses: "0 0 1 * * *",
			SendCertificateNotices:     "0 0 7 * * *",
		}}
		s, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
		require.NoError(t, err)

		entries := s.Entries()
		require.Len(t, entries, 2)
		for _, e := range entries {
			assert.True(t, e.Next.IsZero(), "not started yet")
		}
	})

	t.Run("Invalid Schedule", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			RefreshCertificateStatuses: "every night",
			SendCertificateNotices:     "0 0 7 * * *",
		}}
		_, err := NewScheduler(jobs.NewJobRunner(&jobs.Services{}, cfg))
		assert.Error(t, err)
	})
}
