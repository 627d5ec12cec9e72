package service_test

import (
	"context"
	"testing"
	"time"

	"martilhaven-backend/internal/domain"
	"martilhaven-backend/internal/policy"
	"martilhaven-backend/internal/repository"
	"martilhaven-backend/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var supervisor = domain.Actor{ID: "staff-1", Role: domain.RoleStaff}

func (f *fixture) forklift(t *testing.T, code string, hourMeter float64) *domain.Forklift {
	t.Helper()
	fl, err := f.forklifts.CreateForklift(context.Background(), service.ForkliftInput{
		Code:       code,
		Model:      "Toyota 8FGU25",
		Type:       domain.ForkliftTypeGas,
		CapacityKg: 2500,
		HourMeter:  hourMeter,
	})
	require.NoError(t, err)
	return fl
}

func (f *fixture) operator(t *testing.T, registration string) *domain.Operator {
	t.Helper()
	today := time.Now().UTC()
	op, err := f.operators.CreateOperator(context.Background(), service.OperatorInput{
		Name:              "Rui Operator",
		Registration:      registration,
		ASOExpirationDate: today.AddDate(1, 0, 0),
		NRExpirationDate:  today.AddDate(1, 0, 0),
	})
	require.NoError(t, err)
	return op
}

func shift(forkliftID, operatorID string, initial float64) service.OperationInput {
	return service.OperationInput{
		ForkliftID:       forkliftID,
		OperatorID:       operatorID,
		Sector:           "Dock A",
		InitialHourMeter: initial,
		StartTime:        time.Now().UTC().Add(-2 * time.Hour),
	}
}

func TestForkliftService(t *testing.T) {
	ctx := context.Background()

	t.Run("Create Defaults", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, " g001 ", 10)
		assert.Equal(t, "G001", fl.Code)
		assert.Equal(t, domain.ForkliftStatusOperational, fl.Status)
	})

	t.Run("Duplicate Code", func(t *testing.T) {
		f := newFixture(t)
		f.forklift(t, "G001", 0)

		_, err := f.forklifts.CreateForklift(ctx, service.ForkliftInput{Code: "g001", Model: "X", Type: domain.ForkliftTypeElectric, CapacityKg: 1000})
		assert.True(t, domain.IsKind(err, domain.ErrorKindConflict))
	})

	t.Run("Invalid Type", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.forklifts.CreateForklift(ctx, service.ForkliftInput{Code: "E1", Model: "X", Type: "diesel", CapacityKg: 1000})
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))
	})

	t.Run("Maintenance Blocked By Active Operation", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, "G001", 100)
		op := f.operator(t, "R-1")
		_, err := f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, op.ID, 100))
		require.NoError(t, err)

		_, err = f.forklifts.TransitionForklift(ctx, fl.ID, domain.ForkliftStatusMaintenance)
		assert.True(t, domain.IsKind(err, domain.ErrorKindConflict))

		err = f.forklifts.DeleteForklift(ctx, fl.ID)
		assert.True(t, domain.IsKind(err, domain.ErrorKindConflict))
	})

	t.Run("Maintenance Cycle", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, "G001", 100)

		fl, err := f.forklifts.TransitionForklift(ctx, fl.ID, domain.ForkliftStatusMaintenance)
		require.NoError(t, err)
		assert.Equal(t, domain.ForkliftStatusMaintenance, fl.Status)
		require.NotNil(t, fl.LastMaintenance)
		assert.True(t, policy.Day(time.Now()).Equal(*fl.LastMaintenance))

		fl, err = f.forklifts.TransitionForklift(ctx, fl.ID, domain.ForkliftStatusStopped)
		require.NoError(t, err)
		fl, err = f.forklifts.TransitionForklift(ctx, fl.ID, domain.ForkliftStatusOperational)
		require.NoError(t, err)
		assert.Equal(t, domain.ForkliftStatusOperational, fl.Status)

		_, err = f.forklifts.TransitionForklift(ctx, fl.ID, domain.ForkliftStatusOperational)
		assert.True(t, domain.IsKind(err, domain.ErrorKindInvalidTransition))
	})

	t.Run("Hour Meter Cannot Go Back", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, "G001", 100)

		_, err := f.forklifts.UpdateForklift(ctx, fl.ID, service.ForkliftInput{Code: "G001", Model: "X", Type: domain.ForkliftTypeGas, CapacityKg: 2500, HourMeter: 90})
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))
	})
}

func TestOperatorService(t *testing.T) {
	ctx := context.Background()
	today := time.Now().UTC()

	t.Run("Statuses Computed On Create", func(t *testing.T) {
		f := newFixture(t)

		op, err := f.operators.CreateOperator(ctx, service.OperatorInput{
			Name:              "Rui",
			Registration:      "R-1",
			ASOExpirationDate: today.AddDate(0, 0, 10),
			NRExpirationDate:  today.AddDate(0, 0, -1),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.CertificateStatusWarning, op.ASOStatus)
		assert.Equal(t, domain.CertificateStatusExpired, op.NRStatus)
		assert.Equal(t, domain.OperatorRoleOperator, op.Role)
		assert.Equal(t, domain.UserStatusActive, op.Status)
	})

	t.Run("Update Recomputes", func(t *testing.T) {
		f := newFixture(t)
		op := f.operator(t, "R-1")

		op, err := f.operators.UpdateOperator(ctx, op.ID, service.OperatorInput{
			Name:              op.Name,
			Registration:      op.Registration,
			ASOExpirationDate: today.AddDate(0, 0, 5),
			NRExpirationDate:  op.NRExpirationDate,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.CertificateStatusWarning, op.ASOStatus)

		stored, err := f.store.OperatorRepository.GetByID(ctx, op.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.CertificateStatusWarning, stored.ASOStatus)
	})

	t.Run("Missing Dates", func(t *testing.T) {
		f := newFixture(t)

		_, err := f.operators.CreateOperator(ctx, service.OperatorInput{Name: "Rui", Registration: "R-1"})
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))
	})

	t.Run("Refresh Persists Changes", func(t *testing.T) {
		f := newFixture(t)
		op, err := f.operators.CreateOperator(ctx, service.OperatorInput{
			Name:              "Rui",
			Registration:      "R-1",
			ASOExpirationDate: today.AddDate(0, 0, 40),
			NRExpirationDate:  today.AddDate(1, 0, 0),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.CertificateStatusRegular, op.ASOStatus)
		f.operator(t, "R-2")

		changed, err := f.operators.RefreshCertificateStatuses(ctx, today.AddDate(0, 0, 30))
		require.NoError(t, err)
		assert.Equal(t, 1, changed)

		stored, err := f.store.OperatorRepository.GetByID(ctx, op.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.CertificateStatusWarning, stored.ASOStatus)

		changed, err = f.operators.RefreshCertificateStatuses(ctx, today.AddDate(0, 0, 30))
		require.NoError(t, err)
		assert.Zero(t, changed)
	})

	t.Run("Certificate Alerts", func(t *testing.T) {
		f := newFixture(t)
		f.operator(t, "R-1")
		_, err := f.operators.CreateOperator(ctx, service.OperatorInput{
			Name:              "Ines",
			Registration:      "R-2",
			ASOExpirationDate: today.AddDate(0, 0, -3),
			NRExpirationDate:  today.AddDate(1, 0, 0),
		})
		require.NoError(t, err)

		alerts, err := f.operators.CertificateAlerts(ctx, today)
		require.NoError(t, err)
		require.Len(t, alerts, 1)
		assert.Equal(t, "R-2", alerts[0].Registration)
	})
}

func TestOperationService_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Complete Below Initial Reading", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, "G001", 100)
		op := f.operator(t, "R-1")
		o, err := f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, op.ID, 100))
		require.NoError(t, err)

		_, err = f.operations.CompleteOperation(ctx, supervisor, o.ID, domain.MeterReading{CurrentHourMeter: ptr(90.0)})
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))

		stored, err := f.operations.GetOperation(ctx, o.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.OperationStatusActive, stored.Status)
		assert.Nil(t, stored.EndTime)
	})

	t.Run("Complete Advances Forklift", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, "G001", 100)
		op := f.operator(t, "R-1")
		o, err := f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, op.ID, 100))
		require.NoError(t, err)
		assert.Equal(t, 100.0, o.CurrentHourMeter)

		done, err := f.operations.CompleteOperation(ctx, supervisor, o.ID, domain.MeterReading{
			CurrentHourMeter: ptr(120.0),
			GasConsumption:   ptr(35.5),
		})
		require.NoError(t, err)
		assert.Equal(t, domain.OperationStatusCompleted, done.Status)
		require.NotNil(t, done.EndTime)
		assert.True(t, done.EndTime.After(done.StartTime))
		assert.Equal(t, 120.0, done.CurrentHourMeter)
		require.NotNil(t, done.GasConsumption)
		assert.Equal(t, 35.5, *done.GasConsumption)

		fl, err = f.forklifts.GetForklift(ctx, fl.ID)
		require.NoError(t, err)
		assert.Equal(t, 120.0, fl.HourMeter)

		_, err = f.operations.CompleteOperation(ctx, supervisor, o.ID, domain.MeterReading{})
		assert.True(t, domain.IsKind(err, domain.ErrorKindInvalidTransition))

		_, err = f.operations.UpdateOperation(ctx, supervisor, o.ID, service.OperationUpdate{Notes: ptr("late")})
		assert.True(t, domain.IsKind(err, domain.ErrorKindInvalidTransition))

		// completed history pins both resources
		assert.True(t, domain.IsKind(f.forklifts.DeleteForklift(ctx, fl.ID), domain.ErrorKindConflict))
		assert.True(t, domain.IsKind(f.operators.DeleteOperator(ctx, op.ID), domain.ErrorKindConflict))
		_, err = f.operations.GetOperation(ctx, o.ID)
		assert.NoError(t, err)
	})

	t.Run("Derived Duration And Usage", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, "G001", 100)
		op := f.operator(t, "R-1")
		o, err := f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, op.ID, 100))
		require.NoError(t, err)

		active, err := f.operations.GetOperation(ctx, o.ID)
		require.NoError(t, err)
		require.NotNil(t, active.Duration)
		assert.True(t, active.Duration.Ongoing)
		assert.False(t, active.Duration.Inconsistent)
		assert.GreaterOrEqual(t, active.Duration.Elapsed, 2*time.Hour)
		assert.Equal(t, 0.0, active.HoursUsed)

		done, err := f.operations.CompleteOperation(ctx, supervisor, o.ID, domain.MeterReading{
			CurrentHourMeter: ptr(120.0),
			GasConsumption:   ptr(30.0),
		})
		require.NoError(t, err)
		require.NotNil(t, done.Duration)
		assert.False(t, done.Duration.Ongoing)
		assert.Equal(t, done.EndTime.Sub(done.StartTime), done.Duration.Elapsed)
		assert.Equal(t, 20.0, done.HoursUsed)
		assert.Equal(t, 1.5, done.FuelPerHour)

		listed, err := f.operations.ListOperations(ctx, repository.OperationFilter{ForkliftID: fl.ID})
		require.NoError(t, err)
		require.Len(t, listed, 1)
		require.NotNil(t, listed[0].Duration)
		assert.False(t, listed[0].Duration.Ongoing)
		assert.Equal(t, done.Duration.Elapsed, listed[0].Duration.Elapsed)
	})

	t.Run("Open Operation Holds Forklift", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, "G001", 100)
		op := f.operator(t, "R-1")
		other := f.operator(t, "R-2")
		_, err := f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, op.ID, 100))
		require.NoError(t, err)

		later := shift(fl.ID, other.ID, 100)
		later.StartTime = time.Now().UTC().Add(24 * time.Hour)
		_, err = f.operations.CreateOperation(ctx, supervisor, later)
		assert.True(t, domain.IsKind(err, domain.ErrorKindConflict))
	})

	t.Run("Bounded Windows Do Not Collide", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, "G001", 100)
		op := f.operator(t, "R-1")
		start := time.Now().UTC().Add(-4 * time.Hour)

		morning := shift(fl.ID, op.ID, 100)
		morning.StartTime = start
		morning.EndTime = ptr(start.Add(2 * time.Hour))
		_, err := f.operations.CreateOperation(ctx, supervisor, morning)
		require.NoError(t, err)

		afternoon := shift(fl.ID, op.ID, 100)
		afternoon.StartTime = start.Add(2 * time.Hour)
		_, err = f.operations.CreateOperation(ctx, supervisor, afternoon)
		assert.NoError(t, err)
	})

	t.Run("Preconditions", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, "G001", 100)
		op := f.operator(t, "R-1")

		_, err := f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, op.ID, 99))
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation), "initial below forklift meter")

		_, err = f.operations.CreateOperation(ctx, supervisor, shift("missing", op.ID, 100))
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))

		_, err = f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, "missing", 100))
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))

		_, err = f.forklifts.TransitionForklift(ctx, fl.ID, domain.ForkliftStatusMaintenance)
		require.NoError(t, err)
		_, err = f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, op.ID, 100))
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))
	})

	t.Run("Update Active Operation", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, "G001", 100)
		op := f.operator(t, "R-1")
		o, err := f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, op.ID, 100))
		require.NoError(t, err)

		o, err = f.operations.UpdateOperation(ctx, supervisor, o.ID, service.OperationUpdate{
			CurrentHourMeter: ptr(104.5),
			GasConsumption:   ptr(6.0),
			Sector:           ptr("Dock B"),
		})
		require.NoError(t, err)
		assert.Equal(t, 104.5, o.CurrentHourMeter)
		assert.Equal(t, "Dock B", o.Sector)

		_, err = f.operations.UpdateOperation(ctx, supervisor, o.ID, service.OperationUpdate{CurrentHourMeter: ptr(50.0)})
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))

		_, err = f.operations.UpdateOperation(ctx, supervisor, o.ID, service.OperationUpdate{GasConsumption: ptr(-1.0)})
		assert.True(t, domain.IsKind(err, domain.ErrorKindValidation))
	})

	t.Run("List By Status", func(t *testing.T) {
		f := newFixture(t)
		fl := f.forklift(t, "G001", 100)
		op := f.operator(t, "R-1")
		_, err := f.operations.CreateOperation(ctx, supervisor, shift(fl.ID, op.ID, 100))
		require.NoError(t, err)

		active, err := f.operations.ListOperations(ctx, repository.OperationFilter{Statuses: []domain.OperationStatus{domain.OperationStatusActive}})
		require.NoError(t, err)
		assert.Len(t, active, 1)
	})
}
