package services

import (
	"context"
	"testing"
	"time"

	"github.com/ihute/transit-backend/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCronService_SchedulesJobs(t *testing.T) {
	store := newMemStore()
	holds := NewHoldExpirationService(store, NewAvailabilityService(store.Seats(), nil, quietLogger()), nil, 10, quietLogger())
	audit := NewAuditService(new(MockAuditStore), true, quietLogger())

	svc := NewCronService(holds, audit, "0 * * * * *", 90*24*time.Hour, quietLogger())
	require.NoError(t, svc.Start())
	defer svc.Stop()

	status := svc.GetJobStatus()
	assert.Equal(t, true, status["running"])
	assert.Equal(t, 2, status["job_count"])

	var names []string
	for _, job := range status["jobs"].([]map[string]interface{}) {
		names = append(names, job["name"].(string))
	}
	assert.ElementsMatch(t, []string{"release_expired_holds", "cleanup_audit_logs"}, names)
}

func TestCronService_RejectsBadSchedule(t *testing.T) {
	store := newMemStore()
	holds := NewHoldExpirationService(store, NewAvailabilityService(store.Seats(), nil, quietLogger()), nil, 10, quietLogger())

	svc := NewCronService(holds, nil, "every minute", 0, quietLogger())
	assert.Error(t, svc.Start())
}

func TestCronService_RunHoldSweepNow(t *testing.T) {
	store := newMemStore()
	store.initLedger(models.CarRef(5), 4)
	bookings, _ := newTestBookingService(store, earlyMorning())
	_, err := bookings.CreateBooking(context.Background(), carRequest(5, 2))
	require.NoError(t, err)

	holds := NewHoldExpirationService(store, NewAvailabilityService(store.Seats(), nil, quietLogger()), nil, 10, quietLogger())
	holds.now = func() time.Time { return earlyMorning().Add(time.Hour) }
	svc := NewCronService(holds, nil, "0 * * * * *", 0, quietLogger())

	released, err := svc.RunHoldSweepNow(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, released)
	assert.Equal(t, 0, store.entry(models.CarRef(5)).LockedSeats)
}
